// Package https_server builds the gin engine with its middleware stack.
package https_server

import (
	"beacon_chat_server/internal/handler"
	"beacon_chat_server/internal/infrastructure/logger"
	"beacon_chat_server/internal/router"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Init returns the configured engine: zap request logging, panic
// recovery, cors, and the full route surface.
func Init(handlers *handler.Handlers) *gin.Engine {
	engine := gin.New()

	engine.Use(logger.GinLogger())
	engine.Use(logger.GinRecovery(true))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))

	// TLS redirection is optional; enable when not behind a
	// TLS-terminating proxy.
	// engine.Use(middleware.TlsHandler(config.GetConfig().Host, config.GetConfig().Port))

	rt := router.NewRouter(handlers)
	rt.RegisterRoutes(engine)

	return engine
}
