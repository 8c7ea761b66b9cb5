package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"workeradmin/internal/authz"
	"workeradmin/internal/middleware"
	"workeradmin/internal/models"
	"workeradmin/internal/pdf"
	"workeradmin/internal/services"
	"workeradmin/internal/session"
)

const (
	msgNoResults     = "No se encontraron resultados."
	msgLoadFailure   = "Error al cargar los datos."
	msgRequestFailed = "Error al procesar la solicitud."
	msgNotFound      = "Usuario no encontrado."

	textShowUsuario = "Mostrar mi usuario a otros trabajadores"
	textHideUsuario = "Ocultar mi usuario de otros trabajadores"
)

type WorkerHandler struct {
	workers services.WorkerService
	tokens  services.TokenService
	gate    *middleware.Gate
	store   session.Store
	pdf     pdf.Generator
}

func NewWorkerHandler(workers services.WorkerService, tokens services.TokenService, gate *middleware.Gate,
	store session.Store, gen pdf.Generator) *WorkerHandler {
	return &WorkerHandler{workers: workers, tokens: tokens, gate: gate, store: store, pdf: gen}
}

func (h *WorkerHandler) Dashboard(c *gin.Context) {
	c.HTML(http.StatusOK, "dashboard.html", pageData(c))
}

func (h *WorkerHandler) Workers(c *gin.Context) {
	c.HTML(http.StatusOK, "workers.html", pageData(c))
}

func (h *WorkerHandler) FilterWorkers(c *gin.Context) {
	data := pageData(c)
	var f models.WorkerFilter
	_ = c.ShouldBind(&f)

	list, err := h.workers.Filter(c.Request.Context(), f)
	switch {
	case err != nil:
		slog.ErrorContext(c.Request.Context(), "filter workers failed", "component", "workers", "op", "filter", "err", err)
		data["error"] = msgLoadFailure
	case len(list) == 0:
		data["error"] = msgNoResults
	default:
		data["workers"] = list
	}
	c.HTML(http.StatusOK, "workers.html", data)
}

// @Summary      Registrar trabajador
// @Description  Crea el trabajador y envía el correo de confirmación con el enlace de baja
// @Tags         Workers
// @Accept       json
// @Produce      json
// @Param        worker  body      models.WorkerForm  true  "Datos del trabajador"
// @Success      201     {object}  map[string]string
// @Failure      400     {object}  map[string]interface{}
// @Failure      500     {object}  map[string]string
// @Router       /dashboard/registerWorker [post]
func (h *WorkerHandler) Register(c *gin.Context) {
	form, ok := bindWorkerForm(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	w, err := h.workers.Register(ctx, form)
	switch {
	case err == nil:
		slog.InfoContext(ctx, "worker registered", "component", "workers", "op", "register", "id", w.ID)
		jsonMessage(c, http.StatusCreated, "Registro exitoso.")
	case errors.Is(err, services.ErrDuplicateUsuario):
		jsonMessages(c, http.StatusInternalServerError, "Error al registrar el nombre de usuario.")
	case errors.Is(err, services.ErrDuplicateEmail):
		jsonMessages(c, http.StatusInternalServerError, "Error al registrar el email.")
	case errors.Is(err, services.ErrSendFailure):
		jsonMessages(c, http.StatusInternalServerError, "Error al enviar correo de confirmación.")
	default:
		slog.ErrorContext(ctx, "register worker failed", "component", "workers", "op", "register", "err", err)
		jsonMessages(c, http.StatusInternalServerError, msgRequestFailed)
	}
}

func (h *WorkerHandler) UpdateAccess(c *gin.Context) {
	h.updateFlag(c, "updateAcceso", h.workers.SetAccess)
}

func (h *WorkerHandler) UpdateAdmin(c *gin.Context) {
	h.updateFlag(c, "updateAdministrador", h.workers.SetAdmin)
}

func (h *WorkerHandler) updateFlag(c *gin.Context, op string, set func(ctx context.Context, id int, v bool) error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		redirectWith(c, "/dashboard/workers", "error", "Error al modificar el atributo.")
		return
	}
	v, err := authz.ParseFlag(c.Param("value"))
	if err != nil {
		redirectWith(c, "/dashboard/workers", "error", "Error al modificar el atributo.")
		return
	}
	err = set(c.Request.Context(), id, v)
	switch {
	case err == nil:
		slog.InfoContext(c.Request.Context(), "worker flag changed", "component", "workers", "op", op, "id", id, "value", v)
		redirectWith(c, "/dashboard/workers", "success", "Modificación realizada.")
	case errors.Is(err, services.ErrNotFound):
		redirectWith(c, "/dashboard/workers", "error", msgNotFound)
	default:
		slog.ErrorContext(c.Request.Context(), "update flag failed", "component", "workers", "op", op, "err", err)
		redirectWith(c, "/dashboard/workers", "error", "Error al modificar el atributo.")
	}
}

func (h *WorkerHandler) Profile(c *gin.Context) {
	data := pageData(c)
	if _, ok := data["worker"]; !ok {
		data["error"] = msgLoadFailure
	}
	c.HTML(http.StatusOK, "profile.html", data)
}

func (h *WorkerHandler) ExportProfile(c *gin.Context) {
	w, ok := middleware.CurrentWorker(c)
	if !ok {
		jsonMessage(c, http.StatusInternalServerError, msgRequestFailed)
		return
	}
	b, err := h.pdf.WorkerProfile(w)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "render profile failed", "component", "workers", "op", "export", "err", err)
		jsonMessage(c, http.StatusInternalServerError, msgRequestFailed)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="DatosPersonales.pdf"`)
	c.Data(http.StatusOK, "application/pdf", b)
}

// @Summary      Eliminar cuenta propia
// @Tags         Profile
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /dashboard/deleteWorker [get]
func (h *WorkerHandler) DeleteSelf(c *gin.Context) {
	w, ok := middleware.CurrentWorker(c)
	if !ok {
		jsonMessage(c, http.StatusInternalServerError, msgRequestFailed)
		return
	}
	ctx := c.Request.Context()
	err := h.workers.DeleteSelf(ctx, w.Usuario)
	switch {
	case err == nil:
		clearAuthCookie(c)
		if err := h.store.Destroy(c); err != nil {
			slog.WarnContext(ctx, "destroy session failed", "component", "workers", "op", "deleteWorker", "err", err)
		}
		slog.InfoContext(ctx, "worker deleted own account", "component", "workers", "op", "deleteWorker", "id", w.ID)
		jsonMessage(c, http.StatusOK, "Cuenta eliminada.")
	case errors.Is(err, services.ErrNotFound):
		jsonMessage(c, http.StatusNotFound, msgNotFound)
	default:
		slog.ErrorContext(ctx, "delete worker failed", "component", "workers", "op", "deleteWorker", "err", err)
		jsonMessage(c, http.StatusInternalServerError, msgRequestFailed)
	}
}

// ChangePrivacity flips usuarioVisible and returns the next button label.
//
// @Summary      Cambiar privacidad
// @Tags         Profile
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /dashboard/changePrivacity [get]
func (h *WorkerHandler) ChangePrivacity(c *gin.Context) {
	w, ok := middleware.CurrentWorker(c)
	if !ok {
		jsonMessage(c, http.StatusInternalServerError, msgRequestFailed)
		return
	}
	ctx := c.Request.Context()
	text := textHideUsuario
	if w.UsuarioVisible {
		text = textShowUsuario
	}
	err := h.workers.ToggleVisibility(ctx, w)
	if errors.Is(err, services.ErrNotFound) {
		jsonMessage(c, http.StatusNotFound, msgNotFound)
		return
	}
	if err != nil {
		slog.ErrorContext(ctx, "toggle visibility failed", "component", "workers", "op", "changePrivacity", "err", err)
		jsonMessage(c, http.StatusInternalServerError, msgRequestFailed)
		return
	}
	if err := h.gate.Remember(c, w); err != nil {
		slog.WarnContext(ctx, "store snapshot failed", "component", "workers", "op", "changePrivacity", "err", err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Configuración actualizada.", "textContent": text})
}

// UpdateSelf saves the profile form and re-issues the cookie, since the
// handle in the token may have changed.
//
// @Summary      Actualizar datos propios
// @Tags         Profile
// @Accept       json
// @Produce      json
// @Param        worker  body      models.WorkerForm  true  "Datos nuevos; una clave de asteriscos conserva la actual"
// @Success      200     {object}  map[string]string
// @Failure      400     {object}  map[string]interface{}
// @Failure      500     {object}  map[string]string
// @Router       /dashboard/updateWorker [post]
func (h *WorkerHandler) UpdateSelf(c *gin.Context) {
	current, ok := middleware.CurrentWorker(c)
	if !ok {
		jsonMessage(c, http.StatusInternalServerError, msgRequestFailed)
		return
	}
	form, ok := bindWorkerForm(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	updated, err := h.workers.UpdateProfile(ctx, current, form)
	if errors.Is(err, services.ErrNotFound) {
		jsonMessage(c, http.StatusNotFound, msgNotFound)
		return
	}
	if err != nil {
		slog.ErrorContext(ctx, "update worker failed", "component", "workers", "op", "updateWorker", "err", err)
		jsonMessage(c, http.StatusInternalServerError, msgRequestFailed)
		return
	}

	token, exp, err := h.tokens.Issue(updated.Usuario)
	if err != nil {
		slog.ErrorContext(ctx, "issue token failed", "component", "workers", "op", "updateWorker", "err", err)
		jsonMessage(c, http.StatusInternalServerError, msgRequestFailed)
		return
	}
	setAuthCookie(c, token, exp)
	if err := h.gate.Remember(c, updated); err != nil {
		slog.WarnContext(ctx, "store snapshot failed", "component", "workers", "op", "updateWorker", "err", err)
	}
	jsonMessage(c, http.StatusOK, "Datos actualizados.")
}

func (h *WorkerHandler) Logout(c *gin.Context) {
	if err := h.store.Destroy(c); err != nil {
		slog.ErrorContext(c.Request.Context(), "destroy session failed", "component", "auth", "op", "logout", "err", err)
		redirectWith(c, "/dashboard", "error", msgRequestFailed)
		return
	}
	clearAuthCookie(c)
	c.Redirect(http.StatusFound, "/")
}
