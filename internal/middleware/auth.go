package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"workeradmin/internal/models"
	"workeradmin/internal/repositories"
	"workeradmin/internal/services"
	"workeradmin/internal/session"
	"workeradmin/internal/utils"
)

// CookieName holds the signed token after the second login step.
const CookieName = "tokenKey"

const ctxWorkerKey = "worker"

// State is where a request stands in the two-step login.
type State int

const (
	Anonymous State = iota
	PendingSecondFactor
	Authenticated
)

func (s State) String() string {
	switch s {
	case PendingSecondFactor:
		return "pending"
	case Authenticated:
		return "authenticated"
	}
	return "anonymous"
}

type Gate struct {
	tokens  services.TokenService
	workers repositories.WorkerRepository
	codec   *utils.Codec
	store   session.Store
}

func NewGate(tokens services.TokenService, workers repositories.WorkerRepository, codec *utils.Codec, store session.Store) *Gate {
	return &Gate{tokens: tokens, workers: workers, codec: codec, store: store}
}

// CheckAuthenticated validates the tokenKey cookie and re-reads the worker
// from the store. On success the worker is attached to the request and its
// encrypted snapshot is written under the "user" session key; on any failure
// nothing is written.
func (g *Gate) CheckAuthenticated(c *gin.Context) bool {
	w, ok := g.lookup(c)
	if !ok {
		return false
	}
	if err := g.Remember(c, w); err != nil {
		slog.ErrorContext(c.Request.Context(), "store snapshot failed", "component", "gate", "usuario", w.Usuario, "err", err)
		return false
	}
	return true
}

// lookup resolves the cookie to a worker that still has access.
func (g *Gate) lookup(c *gin.Context) (*models.Worker, bool) {
	raw, err := c.Cookie(CookieName)
	if err != nil || raw == "" {
		return nil, false
	}
	usuario, err := g.tokens.Verify(raw)
	if err != nil {
		slog.DebugContext(c.Request.Context(), "token rejected", "component", "gate", "err", err)
		return nil, false
	}
	w, err := g.workers.FindByHandleWithAccess(c.Request.Context(), usuario)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "worker lookup failed", "component", "gate", "usuario", usuario, "err", err)
		return nil, false
	}
	return w, w != nil
}

// Remember writes w as the authenticated snapshot of this session and
// attaches it to the request.
func (g *Gate) Remember(c *gin.Context, w *models.Worker) error {
	enc, err := g.codec.EncryptJSON(w)
	if err != nil {
		return err
	}
	if err := g.store.Set(c, map[string]string{session.KeyUser: enc}); err != nil {
		return err
	}
	c.Set(ctxWorkerKey, w)
	return nil
}

// StateOf reports the login state without touching the session. It
// agrees with CheckAuthenticated on who is Authenticated.
func (g *Gate) StateOf(c *gin.Context) State {
	if _, ok := g.lookup(c); ok {
		return Authenticated
	}
	if _, ok := g.store.Get(c, session.KeyToken); ok {
		return PendingSecondFactor
	}
	return Anonymous
}

// OnlyPublic sends authenticated workers to the dashboard.
func (g *Gate) OnlyPublic() gin.HandlerFunc {
	return func(c *gin.Context) {
		if g.CheckAuthenticated(c) {
			c.Redirect(http.StatusFound, "/dashboard")
			c.Abort()
			return
		}
		c.Next()
	}
}

// OnlyLogged sends everyone else to the home page.
func (g *Gate) OnlyLogged() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !g.CheckAuthenticated(c) {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentWorker returns the worker attached by CheckAuthenticated.
func CurrentWorker(c *gin.Context) (*models.Worker, bool) {
	v, ok := c.Get(ctxWorkerKey)
	if !ok {
		return nil, false
	}
	w, ok := v.(*models.Worker)
	return w, ok && w != nil
}
