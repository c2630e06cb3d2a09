package router_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"beacon_chat_server/internal/handler"
	"beacon_chat_server/internal/https_server"

	"github.com/gin-gonic/gin"
)

// newTestEngine builds the full engine over empty handlers. None of the
// requests below reach a service: they stop at the auth middleware, the
// body binding, or the route table itself.
func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("route registration panicked: %v", r)
		}
	}()
	return https_server.Init(handler.NewHandlers(nil, nil, nil, nil, nil, nil))
}

func do(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)
	return w
}

// The messages tree mixes chat-addressed and message-addressed routes
// on the same segment; all of them must coexist in one route table.
func TestRegisterRoutesBuildsFullMessageTree(t *testing.T) {
	engine := newTestEngine(t)

	// 401 (not 404) proves the route exists and stops at bearer auth.
	protected := []struct {
		method, path string
	}{
		{http.MethodGet, "/messages/C123"},
		{http.MethodPost, "/messages/C123"},
		{http.MethodPut, "/messages/987654321"},
		{http.MethodDelete, "/messages/987654321"},
		{http.MethodPost, "/messages/987654321/react"},
		{http.MethodDelete, "/messages/987654321/react/%F0%9F%91%8D"},
		{http.MethodPost, "/messages/987654321/read"},
		{http.MethodPost, "/messages/987654321/pin"},
		{http.MethodDelete, "/messages/987654321/pin"},
		{http.MethodGet, "/messages/pins/C123"},
		{http.MethodGet, "/chats"},
		{http.MethodPost, "/chats/C123/members"},
		{http.MethodPost, "/communities/S123/invites"},
		{http.MethodPost, "/invites/abc/join"},
		{http.MethodGet, "/friends"},
		{http.MethodGet, "/users/me"},
	}
	for _, tc := range protected {
		if w := do(engine, tc.method, tc.path); w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: got %d, want 401", tc.method, tc.path, w.Code)
		}
	}

	if w := do(engine, http.MethodGet, "/no-such-route"); w.Code != http.StatusNotFound {
		t.Errorf("unknown route: got %d, want 404", w.Code)
	}
}

func TestAuthRoutesArepublic(t *testing.T) {
	engine := newTestEngine(t)

	// An empty body fails binding, not auth: public routes answer 400.
	for _, path := range []string{"/auth/register", "/auth/login", "/auth/refresh"} {
		if w := do(engine, http.MethodPost, path); w.Code != http.StatusBadRequest {
			t.Errorf("POST %s: got %d, want 400", path, w.Code)
		}
	}
}
