package handlers

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"workeradmin/internal/middleware"
	"workeradmin/internal/models"
	"workeradmin/internal/services"
	"workeradmin/internal/session"
	"workeradmin/internal/utils"
)

const (
	msgBadCredentials = "Credenciales incorrectas o no tiene permiso para acceder."
	msgSendFailure    = "Error al enviar correo de autenticación."
	msgLoginFailure   = "Error al iniciar sesión."
	msgCodeMismatch   = "Error de autenticación."
	msgBadFormat      = "Los datos no cumplen con el formato."
)

type AuthHandler struct {
	workers services.WorkerService
	codes   services.CodeIssuer
	tokens  services.TokenService
	codec   *utils.Codec
	store   session.Store
	gate    *middleware.Gate
}

func NewAuthHandler(workers services.WorkerService, codes services.CodeIssuer, tokens services.TokenService,
	codec *utils.Codec, store session.Store, gate *middleware.Gate) *AuthHandler {
	return &AuthHandler{workers: workers, codes: codes, tokens: tokens, codec: codec, store: store, gate: gate}
}

func (h *AuthHandler) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "main.html", pageData(c))
}

func (h *AuthHandler) Politicy(c *gin.Context) {
	c.HTML(http.StatusOK, "politicy.html", pageData(c))
}

func (h *AuthHandler) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", pageData(c))
}

// Login is the first step: password check, then a code by email. The
// pending code and worker are kept encrypted in the session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		slog.InfoContext(c.Request.Context(), "login rejected: bad format", "component", "auth", "op", "login", "err", err)
		redirectWith(c, "/login", "error", msgBadFormat)
		return
	}
	ctx := c.Request.Context()

	w, err := h.workers.Authenticate(ctx, req.Usuario, req.Clave)
	if err != nil {
		if errors.Is(err, services.ErrCredentialMismatch) {
			slog.InfoContext(ctx, "login rejected", "component", "auth", "op", "login", "usuario", req.Usuario)
			redirectWith(c, "/login", "error", msgBadCredentials)
			return
		}
		slog.ErrorContext(ctx, "login lookup failed", "component", "auth", "op", "login", "err", err)
		redirectWith(c, "/login", "error", msgLoginFailure)
		return
	}

	code, err := h.codes.IssueCode(ctx, w.Email)
	if err != nil {
		redirectWith(c, "/login", "error", msgSendFailure)
		return
	}
	if err := h.storePending(c, code, w); err != nil {
		slog.ErrorContext(ctx, "store pending login failed", "component", "auth", "op", "login", "err", err)
		redirectWith(c, "/login", "error", msgLoginFailure)
		return
	}
	slog.InfoContext(ctx, "code sent", "component", "auth", "op", "login", "usuario", w.Usuario)
	c.HTML(http.StatusOK, "check.html", gin.H{})
}

func (h *AuthHandler) storePending(c *gin.Context, code string, w *models.Worker) error {
	encCode, err := h.codec.Encrypt(code)
	if err != nil {
		return err
	}
	encUser, err := h.codec.EncryptJSON(w)
	if err != nil {
		return err
	}
	return h.store.Set(c, map[string]string{
		session.KeyToken:    encCode,
		session.KeyUserData: encUser,
	})
}

// VerifyCode is the second step. The pending state is dropped whatever the
// outcome, so each code can be tried once. A worker who is already signed in
// goes back to the dashboard.
func (h *AuthHandler) VerifyCode(c *gin.Context) {
	ctx := c.Request.Context()
	var req models.CodeRequest
	_ = c.ShouldBind(&req)

	encCode, hasCode := h.store.Get(c, session.KeyToken)
	encUser, hasUser := h.store.Get(c, session.KeyUserData)
	if hasCode || hasUser {
		if err := h.store.Delete(c, session.KeyToken, session.KeyUserData); err != nil {
			slog.ErrorContext(ctx, "clear pending login failed", "component", "auth", "op", "verify", "err", err)
		}
	}
	if h.gate.StateOf(c) == middleware.Authenticated {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	if !hasCode || !hasUser {
		redirectWith(c, "/login", "error", msgCodeMismatch)
		return
	}

	w, err := h.pendingWorker(encCode, encUser, strings.TrimSpace(req.CodigoMFA))
	if err != nil {
		slog.InfoContext(ctx, "second factor rejected", "component", "auth", "op", "verify", "err", err)
		redirectWith(c, "/login", "error", msgCodeMismatch)
		return
	}

	token, exp, err := h.tokens.Issue(w.Usuario)
	if err != nil {
		slog.ErrorContext(ctx, "issue token failed", "component", "auth", "op", "verify", "err", err)
		redirectWith(c, "/login", "error", msgLoginFailure)
		return
	}
	setAuthCookie(c, token, exp)
	if err := h.gate.Remember(c, w); err != nil {
		slog.WarnContext(ctx, "store snapshot failed", "component", "auth", "op", "verify", "err", err)
	}
	slog.InfoContext(ctx, "login complete", "component", "auth", "op", "verify", "usuario", w.Usuario)
	c.Redirect(http.StatusFound, "/dashboard")
}

var errCodeMismatch = errors.New("code mismatch")

func (h *AuthHandler) pendingWorker(encCode, encUser, submitted string) (*models.Worker, error) {
	code, err := h.codec.Decrypt(encCode)
	if err != nil {
		return nil, err
	}
	if submitted == "" || subtle.ConstantTimeCompare([]byte(submitted), []byte(code)) != 1 {
		return nil, errCodeMismatch
	}
	var w models.Worker
	if err := h.codec.DecryptJSON(encUser, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// DeleteByEmail serves the link from the registration email. Possession of
// the link is the only check.
func (h *AuthHandler) DeleteByEmail(c *gin.Context) {
	ctx := c.Request.Context()
	err := h.workers.DeleteByCapability(ctx, c.Param("id"))
	switch {
	case err == nil:
		slog.InfoContext(ctx, "account deleted by link", "component", "auth", "op", "deleteByEmail")
		redirectWith(c, "/", "success", "Cuenta eliminada.")
	case errors.Is(err, services.ErrNotFound):
		redirectWith(c, "/", "error", "Usuario no encontrado.")
	default:
		slog.WarnContext(ctx, "delete by link failed", "component", "auth", "op", "deleteByEmail", "err", err)
		redirectWith(c, "/", "error", "Error al eliminar la cuenta.")
	}
}

// Healthz pings the database.
func Healthz(ping func(context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func setAuthCookie(c *gin.Context, token string, exp time.Time) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearAuthCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}
