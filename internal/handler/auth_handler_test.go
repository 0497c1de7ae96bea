package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vortechdev/enilai-gateway/internal/middleware"
	"github.com/vortechdev/enilai-gateway/internal/screen"
	"github.com/vortechdev/enilai-gateway/internal/service"
	"github.com/vortechdev/enilai-gateway/internal/session"
	"github.com/vortechdev/enilai-gateway/internal/upstream"
	"github.com/vortechdev/enilai-gateway/pkg/config"
)

func newAuthFixture(t *testing.T, upstreamHandler http.HandlerFunc) (*gin.Engine, *session.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	server := httptest.NewServer(upstreamHandler)
	t.Cleanup(server.Close)

	client := upstream.New(config.UpstreamConfig{BaseURL: server.URL, Timeout: 5 * time.Second}, zap.NewNop(), nil)
	store := session.NewMemoryStore()
	manager := screen.NewManager(client, screen.Registry(), 3*time.Second, zap.NewNop())
	svc := service.NewAuthService(client, store, manager, zap.NewNop())

	sessionCfg := config.SessionConfig{Secret: "secret", TTL: time.Hour, CookieName: testCookie}
	codec := session.NewCookieCodec(sessionCfg.Secret, sessionCfg.TTL)
	h := NewAuthHandler(svc, codec, sessionCfg)

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.POST("/auth/logout", h.Logout)
	r.GET("/auth/me", middleware.Authenticate(store, codec, testCookie), h.Me)
	return r, store
}

func TestLoginSetsSessionCookie(t *testing.T) {
	r, store := newAuthFixture(t, func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(`{"token":"up","role":"teacher","user":{"id":"4","name":"Bu Sari","email":"sari@sekolah.id","role":"teacher"}}`))
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"sari@sekolah.id","password":"rahasia"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, store.Len())

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	var found *http.Cookie
	for _, c := range cookies {
		if c.Name == testCookie {
			found = c
		}
	}
	require.NotNil(t, found)
	assert.True(t, found.HttpOnly)
	assert.NotContains(t, found.Value, "up", "upstream token must not reach the browser")

	assert.Contains(t, rec.Body.String(), "/teacher/dashboard")
}

func TestLoginFailureSetsNoCookie(t *testing.T) {
	r, store := newAuthFixture(t, func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Email atau password salah!"}`))
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"a@b.c","password":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, store.Len())
	assert.Contains(t, rec.Body.String(), "Email atau password salah!")
}

func TestLogoutClearsSession(t *testing.T) {
	r, store := newAuthFixture(t, func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(`{"token":"up","role":"admin","user":{"id":"1","name":"A","email":"a@b.c","role":"admin"}}`))
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"a@b.c","password":"p"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var loginCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == testCookie {
			loginCookie = c
		}
	}
	require.NotNil(t, loginCookie)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(loginCookie)
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, store.Len())

	// The session is gone; the guard now redirects to login.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(loginCookie)
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
