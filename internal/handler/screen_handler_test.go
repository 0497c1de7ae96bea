package handler

import (
	"context"
	"encoding/json"
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
	"github.com/vortechdev/enilai-gateway/internal/models"
	"github.com/vortechdev/enilai-gateway/internal/screen"
	"github.com/vortechdev/enilai-gateway/internal/session"
	"github.com/vortechdev/enilai-gateway/internal/upstream"
	"github.com/vortechdev/enilai-gateway/pkg/config"
	"github.com/vortechdev/enilai-gateway/pkg/response"
)

const testCookie = "enilai_session"

type screenFixture struct {
	router *gin.Engine
	store  *session.MemoryStore
	codec  *session.CookieCodec
}

func newScreenFixture(t *testing.T, upstreamHandler http.HandlerFunc) *screenFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	server := httptest.NewServer(upstreamHandler)
	t.Cleanup(server.Close)

	client := upstream.New(config.UpstreamConfig{BaseURL: server.URL, Timeout: 5 * time.Second}, zap.NewNop(), nil)
	manager := screen.NewManager(client, screen.Registry(), 3*time.Second, zap.NewNop())

	store := session.NewMemoryStore()
	codec := session.NewCookieCodec("secret", time.Hour)

	h := NewScreenHandler(manager)

	r := gin.New()
	group := r.Group("/screens/:entity", middleware.Authenticate(store, codec, testCookie))
	group.GET("", h.Show)
	group.POST("/draft", h.Draft)
	group.POST("/submit", h.Submit)
	group.POST("/delete/confirm", h.ConfirmDelete)
	group.POST("/delete/:id", h.Delete)

	return &screenFixture{router: r, store: store, codec: codec}
}

func (f *screenFixture) login(t *testing.T, role models.Role) *http.Cookie {
	t.Helper()
	sess := &models.Session{
		ID:    "sess-" + string(role),
		Token: "token",
		User:  models.User{ID: "1", Role: role},
	}
	require.NoError(t, f.store.Save(context.Background(), sess))
	value, err := f.codec.Issue(sess.ID)
	require.NoError(t, err)
	return &http.Cookie{Name: testCookie, Value: value}
}

func (f *screenFixture) do(t *testing.T, method, path string, cookie *http.Cookie, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func emptyLists(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`[]`))
}

func TestScreenRequiresSession(t *testing.T) {
	f := newScreenFixture(t, emptyLists)

	rec := f.do(t, http.MethodGet, "/screens/majors", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "/login", envelope.Redirect)
}

func TestScreenRedirectsForeignRole(t *testing.T) {
	f := newScreenFixture(t, emptyLists)
	cookie := f.login(t, models.RoleStudent)

	rec := f.do(t, http.MethodGet, "/screens/students", cookie, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "/student/dashboard", envelope.Redirect)
}

func TestScreenUnknownEntity(t *testing.T) {
	f := newScreenFixture(t, emptyLists)
	cookie := f.login(t, models.RoleAdmin)

	rec := f.do(t, http.MethodGet, "/screens/inventory", cookie, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScreenShowRendersSnapshot(t *testing.T) {
	f := newScreenFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/majors" {
			_, _ = w.Write([]byte(`[{"id":"1","name":"RPL","abbreviation":"RPL"}]`))
			return
		}
		emptyLists(w, r)
	})
	cookie := f.login(t, models.RoleAdmin)

	rec := f.do(t, http.MethodGet, "/screens/majors", cookie, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data snapshotView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, screen.PhaseLoaded, envelope.Data.Phase)
	assert.Len(t, envelope.Data.Records, 1)
}

// snapshotView decodes snapshots on the wire without the Record interface.
type snapshotView struct {
	Phase   screen.Phase      `json:"phase"`
	Records []json.RawMessage `json:"records"`
	Draft   map[string]string `json:"draft"`
	Toast   *screen.Toast     `json:"toast"`
}

func TestScreenTeacherMayGradeScores(t *testing.T) {
	f := newScreenFixture(t, emptyLists)
	cookie := f.login(t, models.RoleTeacher)

	rec := f.do(t, http.MethodGet, "/screens/scores", cookie, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestScreenSubmitFlow(t *testing.T) {
	posted := false
	f := newScreenFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/majors" {
			posted = true
			_, _ = w.Write([]byte(`{"id":"9"}`))
			return
		}
		emptyLists(w, r)
	})
	cookie := f.login(t, models.RoleAdmin)

	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/screens/majors", cookie, "").Code)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/screens/majors/draft", cookie, `{"name":"Teknik","abbreviation":"TK"}`).Code)

	rec := f.do(t, http.MethodPost, "/screens/majors/submit", cookie, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, posted)

	var envelope struct {
		Data snapshotView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Data.Toast)
	assert.Empty(t, envelope.Data.Draft["name"])
}
