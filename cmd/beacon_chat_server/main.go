package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"beacon_chat_server/internal/config"
	dao "beacon_chat_server/internal/dao/mysql"
	myredis "beacon_chat_server/internal/dao/redis"
	"beacon_chat_server/internal/handler"
	"beacon_chat_server/internal/https_server"
	"beacon_chat_server/internal/infrastructure/logger"
	"beacon_chat_server/internal/service/chats"
	"beacon_chat_server/internal/service/community"
	"beacon_chat_server/internal/service/contact"
	"beacon_chat_server/internal/service/membership"
	"beacon_chat_server/internal/service/message"
	"beacon_chat_server/internal/service/notify"
	"beacon_chat_server/internal/service/realtime"
	"beacon_chat_server/internal/service/user"
	"beacon_chat_server/pkg/constants"
	"beacon_chat_server/pkg/util/jwt"
	"beacon_chat_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

func main() {
	conf := config.GetConfig()

	if err := logger.Init(&conf.LogConfig, "dev"); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	zap.L().Info("logger initialized")

	repos := dao.Init()
	zap.L().Info("mysql initialized")

	myredis.Init()
	zap.L().Info("redis initialized")

	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry, conf.JWTConfig.RefreshTokenExpiry)
	snowflake.Init(conf.SnowflakeConfig.MachineID)

	if err := handler.InitTrans(); err != nil {
		zap.L().Fatal("init validator translator failed", zap.Error(err))
	}

	// Realtime gateway: membership verdicts go through a short TTL
	// cache; broadcasts funnel through one event bus consumer so a
	// chat's events keep their commit order.
	membershipSvc := membership.NewService(repos)
	cacheTTL := conf.RealtimeConfig.MembershipCacheTTL * time.Second
	if cacheTTL <= 0 {
		cacheTTL = constants.MEMBERSHIP_CACHE_TTL
	}
	verifier := realtime.NewCachedVerifier(membershipSvc, cacheTTL)
	gateway := realtime.NewGateway(verifier)

	var bus realtime.EventBus
	if conf.KafkaConfig.MessageMode == "kafka" {
		bus = realtime.NewKafkaBus(conf.KafkaConfig, gateway.Route)
	} else {
		bus = realtime.NewChannelBus(gateway.Route)
	}
	gateway.AttachBus(bus)
	go bus.Start()
	zap.L().Info("realtime gateway initialized", zap.String("bus", conf.KafkaConfig.MessageMode))

	// Push fan-out targets members who are not connected to the room.
	var dispatcher message.NotifyDispatcher
	if conf.PushConfig.Enabled {
		dispatcher = notify.NewDispatcher(repos, gateway, notify.NewExpoDeliverer(conf.PushConfig))
		zap.L().Info("push dispatcher initialized")
	}

	userSvc := user.NewService(repos)
	chatSvc := chats.NewService(repos)
	messageSvc := message.NewService(repos, membershipSvc, gateway, dispatcher, myredis.GetCacheService())
	communitySvc := community.NewService(repos)
	contactSvc := contact.NewService(repos)

	handlers := handler.NewHandlers(userSvc, chatSvc, messageSvc, communitySvc, contactSvc, gateway)
	engine := https_server.Init(handlers)

	go func() {
		addr := fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port)
		if err := engine.Run(addr); err != nil {
			zap.L().Fatal("http server stopped", zap.Error(err))
		}
	}()
	zap.L().Info("server started",
		zap.String("host", conf.MainConfig.Host),
		zap.Int("port", conf.MainConfig.Port),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	bus.Close()
	zap.L().Info("server shut down")
}
