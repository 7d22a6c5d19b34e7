package http

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/lobby-server/internal/auth"
	"github.com/vovakirdan/lobby-server/internal/config"
	"github.com/vovakirdan/lobby-server/internal/lobby"
	"github.com/vovakirdan/lobby-server/internal/store"
)

const testSecret = "test-secret"

type testEnv struct {
	manager *lobby.Manager
	auth    *auth.Service
	router  *gin.Engine
}

// newTestEnv builds a router over a fresh manager. journal may be nil.
func newTestEnv(t *testing.T, journal store.Journal, mutate func(*config.Config)) *testEnv {
	t.Helper()

	cfg := config.Default()
	cfg.JWTSecret = testSecret
	cfg.DatabasePath = ""
	if mutate != nil {
		mutate(&cfg)
	}

	authService := createTestAuthService(t, cfg.JWTSecret)
	manager := lobby.NewManager()
	disabledLogger := zerolog.New(nil)

	return &testEnv{
		manager: manager,
		auth:    authService,
		router:  NewRouter(manager, authService, journal, &cfg, &disabledLogger),
	}
}

// createTestAuthService creates an auth service for testing.
func createTestAuthService(t *testing.T, jwtSecret string) *auth.Service {
	t.Helper()

	return auth.NewService(&auth.JWTConfig{
		Secret:   []byte(jwtSecret),
		Issuer:   "lobby-server",
		Audience: "lobby",
		TTL:      24 * time.Hour,
	})
}

func (e *testEnv) token(t *testing.T, userID string) string {
	t.Helper()

	token, err := e.auth.Issue(userID, "")
	if err != nil {
		t.Fatalf("issue token for %s: %v", userID, err)
	}
	return token
}

// do performs a request as userID ("" for anonymous) and returns the recorder.
func (e *testEnv) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+e.token(t, userID))
	}

	resp := httptest.NewRecorder()
	e.router.ServeHTTP(resp, req)
	return resp
}

func decodeRoom(t *testing.T, resp *httptest.ResponseRecorder) RoomResponse {
	t.Helper()

	var room RoomResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &room); err != nil {
		t.Fatalf("failed to unmarshal room: %v (%s)", err, resp.Body.String())
	}
	return room
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()

	var body ErrorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal error: %v (%s)", err, resp.Body.String())
	}
	return body
}

func expectStatus(t *testing.T, resp *httptest.ResponseRecorder, want int) {
	t.Helper()

	if resp.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, resp.Code, resp.Body.String())
	}
}
