package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workeradmin/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Port: 3000, GinMode: gin.TestMode, PublicBaseURL: "https://localhost:3000"},
		Email:    config.EmailConfig{SMTPHost: "127.0.0.1", SMTPPort: 2525, FromName: "Panel"},
		Session:  config.SessionConfig{Backend: "memory", Name: "sid", MaxAge: 3600},
		Security: config.SecurityConfig{BcryptCost: 4},
		Secrets: config.Secrets{
			AESKey:        "aes",
			TokenKey:      []byte("jwt"),
			TokenTTL:      time.Hour,
			MailUser:      "bot@example.com",
			MailPassword:  "pw",
			SessionSecret: []byte("session"),
		},
	}
}

func TestNewRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	r, err := NewRouter(testConfig(), db, nil)
	require.NoError(t, err)

	mock.ExpectPing()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public/js/app.js", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="usuario"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusFound, w.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewRouter_BadSessionBackend(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cfg := testConfig()
	cfg.Session.Backend = "etcd"
	_, err = NewRouter(cfg, db, nil)
	assert.Error(t, err)
}
