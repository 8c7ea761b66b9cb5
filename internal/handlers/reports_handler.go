package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"workeradmin/internal/services"
)

type ReportHandler struct {
	Service *services.ReportService
}

func NewReportHandler(service *services.ReportService) *ReportHandler {
	return &ReportHandler{Service: service}
}

// @Summary      Edades de clientes que se fueron
// @Tags         Storage
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /storage/ageCustomersExited [get]
func (h *ReportHandler) AgeCustomersExited(c *gin.Context) {
	respond(c, "ageCustomersExited", func(ctx context.Context) (any, error) { return h.Service.AgesOfExited(ctx) })
}

// @Summary      Clientes por tipo de tarjeta
// @Tags         Storage
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /storage/cardTypes [get]
func (h *ReportHandler) CardTypes(c *gin.Context) {
	respond(c, "cardTypes", func(ctx context.Context) (any, error) { return h.Service.CardTypes(ctx) })
}

// @Summary      Clientes activos e inactivos por país
// @Tags         Storage
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /storage/customersByCountry [get]
func (h *ReportHandler) CustomersByCountry(c *gin.Context) {
	respond(c, "customersByCountry", func(ctx context.Context) (any, error) { return h.Service.CustomersByCountry(ctx) })
}

// @Summary      Información general de clientes
// @Tags         Storage
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /storage/generalInformation [get]
func (h *ReportHandler) GeneralInformation(c *gin.Context) {
	respond(c, "generalInformation", func(ctx context.Context) (any, error) { return h.Service.GeneralInformation(ctx) })
}

func respond(c *gin.Context, op string, load func(context.Context) (any, error)) {
	data, err := load(c.Request.Context())
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "report query failed", "component", "reports", "op", op, "err", err)
		jsonMessage(c, http.StatusInternalServerError, "Error al conectar con la BD.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": data, "message": "Ok."})
}
