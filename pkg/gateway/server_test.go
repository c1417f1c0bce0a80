package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rotor-hq/rotor/pkg/config"
	"rotor-hq/rotor/pkg/dispatch"
)

type stubDispatcher struct{}

func (stubDispatcher) Dispatch(ctx context.Context, req *dispatch.Request) (*dispatch.Result, error) {
	return &dispatch.Result{Content: "stub reply", TokenType: "gemini"}, nil
}

func testServerConfig() config.ServerConfig {
	return config.ServerConfig{
		ListenAddress:   ":0",
		ShutdownTimeout: time.Second,
	}
}

func TestServer_Routes(t *testing.T) {
	srv := NewServer(testServerConfig(), stubDispatcher{})
	handler := srv.Handler()

	t.Run("chat", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/chat?prompt=hi&system_prompt=", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), "stub reply") {
			t.Errorf("body = %s", rec.Body.String())
		}
	})

	t.Run("health", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/health", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("unknown path", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/nope", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("request id echoed", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/health", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Header().Get("X-Request-ID") == "" {
			t.Error("no X-Request-ID header")
		}
	})
}

func TestServer_AccessTokenProtectsAPIOnly(t *testing.T) {
	cfg := testServerConfig()
	cfg.AccessToken = "tok-abc"
	srv := NewServer(cfg, stubDispatcher{})
	handler := srv.Handler()

	// API without token is rejected.
	req := httptest.NewRequest("GET", "/api/chat?prompt=hi&system_prompt=", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("api without token: status = %d, want 401", rec.Code)
	}

	// API with token succeeds.
	req = httptest.NewRequest("GET", "/api/chat?prompt=hi&system_prompt=", nil)
	req.Header.Set("Authorization", "Bearer tok-abc")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("api with token: status = %d, want 200", rec.Code)
	}

	// Health stays open.
	req = httptest.NewRequest("GET", "/health", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("health: status = %d, want 200", rec.Code)
	}
}

func TestServer_SetAccessToken(t *testing.T) {
	cfg := testServerConfig()
	cfg.AccessToken = "old-token"
	srv := NewServer(cfg, stubDispatcher{})
	handler := srv.Handler()

	srv.SetAccessToken("new-token")

	req := httptest.NewRequest("GET", "/api/chat?prompt=hi&system_prompt=", nil)
	req.Header.Set("Authorization", "Bearer old-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("old token after rotation: status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest("GET", "/api/chat?prompt=hi&system_prompt=", nil)
	req.Header.Set("Authorization", "Bearer new-token")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("new token after rotation: status = %d, want 200", rec.Code)
	}
}

func TestServer_MetricsMount(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("# metrics"))
	})
	srv := NewServer(testServerConfig(), stubDispatcher{}, WithMetrics(metrics, "/metrics"))

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "# metrics") {
		t.Errorf("status = %d, body = %q", rec.Code, rec.Body.String())
	}
}
