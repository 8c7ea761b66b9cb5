// Package session keeps the per-browser login state (pending code, pending
// worker, authenticated snapshot) on top of gin-contrib/sessions. Values are
// opaque strings; the callers encrypt them before they get here.
package session

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/memstore"
	ginredis "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"

	"workeradmin/internal/config"
)

const (
	KeyToken    = "token"
	KeyUserData = "userData"
	KeyUser     = "user"
)

type Store interface {
	Get(c *gin.Context, key string) (string, bool)
	Set(c *gin.Context, values map[string]string) error
	Delete(c *gin.Context, keys ...string) error
	Destroy(c *gin.Context) error
}

type ginStore struct{}

// New returns a Store that works on the session attached by Middleware.
func New() Store { return ginStore{} }

func (ginStore) Get(c *gin.Context, key string) (string, bool) {
	v, ok := sessions.Default(c).Get(key).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (ginStore) Set(c *gin.Context, values map[string]string) error {
	s := sessions.Default(c)
	for k, v := range values {
		s.Set(k, v)
	}
	return s.Save()
}

func (ginStore) Delete(c *gin.Context, keys ...string) error {
	s := sessions.Default(c)
	for _, k := range keys {
		s.Delete(k)
	}
	return s.Save()
}

func (ginStore) Destroy(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{Path: "/", MaxAge: -1})
	return s.Save()
}

// ErrClientSideBackend rejects stores that keep the values in the browser.
// A client could replay an old cookie and get another try at a pending code.
var ErrClientSideBackend = errors.New("session backend must keep values server-side")

// NewBackend builds the configured gin-contrib/sessions store. Only
// server-side stores are accepted; the cookie carries the session id.
func NewBackend(cfg config.SessionConfig, rc config.RedisConfig, secret []byte, secure bool) (sessions.Store, error) {
	var (
		store sessions.Store
		err   error
	)
	switch cfg.Backend {
	case "", "memory":
		store = memstore.NewStore(secret)
	case "cookie":
		return nil, fmt.Errorf("session backend %q: %w", cfg.Backend, ErrClientSideBackend)
	case "redis":
		if rc.Addr == "" {
			return nil, fmt.Errorf("session backend redis: redis.addr is empty")
		}
		store, err = ginredis.NewStore(10, "tcp", rc.Addr, "", rc.Password, secret)
		if err != nil {
			return nil, fmt.Errorf("session backend redis: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.MaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
	return store, nil
}

func Middleware(name string, store sessions.Store) gin.HandlerFunc {
	return sessions.Sessions(name, store)
}
