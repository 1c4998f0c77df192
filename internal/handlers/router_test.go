package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"navigator/internal/auth"
	"navigator/internal/middleware"
	"navigator/internal/store"
)

type testServer struct {
	router *gin.Engine
	users  *store.MemoryStore
	issuer *auth.TokenIssuer
	now    time.Time
}

func newTestServer(t *testing.T, opts ...func(*Deps)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ts := &testServer{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return ts.now }
	ts.users = store.NewMemoryStore().WithClock(clock)
	ts.issuer = auth.NewTokenIssuer("test-secret", time.Hour).WithClock(clock)

	deps := Deps{
		Store:     ts.users,
		StoreName: "memory",
		Issuer:    ts.issuer,
		Now:       clock,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	ts.router = NewRouter(deps)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

// signup registers a password user and returns its access token.
func (ts *testServer) signup(t *testing.T, email string) string {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{"email": email, "password": "hunter22"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	decode(t, w, &resp)
	return resp.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	decode(t, w, &body)
	return body.Error
}

type fakeIdentity struct {
	tokens map[string]auth.Subject
}

func (f fakeIdentity) Authenticate(_ context.Context, token string) (auth.Subject, error) {
	if s, ok := f.tokens[token]; ok {
		return s, nil
	}
	return auth.Subject{}, auth.ErrUnauthorized
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/api/health", "", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	require.JSONEq(t, `{"status":"ok","store":"memory"}`, w.Body.String())
}

type unreachableStore struct {
	store.UserStore
}

func (unreachableStore) Exists(context.Context, string) (bool, error) {
	return false, store.ErrUnavailable
}

func TestHealthReportsUnreachableStore(t *testing.T) {
	ts := newTestServer(t, func(d *Deps) {
		d.Store = unreachableStore{UserStore: d.Store}
	})
	w := ts.do(t, http.MethodGet, "/api/health", "", nil)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.JSONEq(t, `{"status":"unavailable","store":"memory"}`, w.Body.String())
}

// allowedWithForwardedFor sends n requests from the same peer, each claiming a
// different client in X-Forwarded-For, and counts the ones not rate limited.
func allowedWithForwardedFor(ts *testServer, n int) int {
	allowed := 0
	for i := 0; i < n; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		w := httptest.NewRecorder()
		ts.router.ServeHTTP(w, req)
		if w.Code != http.StatusTooManyRequests {
			allowed++
		}
	}
	return allowed
}

func TestRateLimitIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	ts := newTestServer(t, func(d *Deps) {
		d.RateLimiter = middleware.NewRateLimiter(1, 1)
	})

	require.Equal(t, 1, allowedWithForwardedFor(ts, 20))
}

func TestRateLimitHonoursForwardedForFromTrustedProxy(t *testing.T) {
	ts := newTestServer(t, func(d *Deps) {
		d.RateLimiter = middleware.NewRateLimiter(1, 1)
		d.TrustedProxies = []string{"192.0.2.1"}
	})

	require.Equal(t, 5, allowedWithForwardedFor(ts, 5))
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/api/nope", "", nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	require.JSONEq(t, `{"error":"Not found"}`, w.Body.String())
}
