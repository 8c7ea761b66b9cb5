package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"workeradmin/internal/models"
	"workeradmin/internal/services"
)

type CustomerHandler struct {
	Service *services.CustomerService
}

func NewCustomerHandler(service *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{Service: service}
}

func (h *CustomerHandler) Customers(c *gin.Context) {
	c.HTML(http.StatusOK, "customers.html", pageData(c))
}

// Filter renders the search result. With the decryption key the sensitive
// columns come back in clear.
func (h *CustomerHandler) Filter(c *gin.Context) {
	data := pageData(c)
	var f models.CustomerFilter
	_ = c.ShouldBind(&f)

	list, err := h.Service.Filter(c.Request.Context(), f)
	switch {
	case err != nil:
		slog.ErrorContext(c.Request.Context(), "filter customers failed", "component", "customers", "op", "filter", "err", err)
		data["error"] = msgLoadFailure
	case len(list) == 0:
		data["error"] = msgNoResults
	default:
		data["customers"] = list
	}
	c.HTML(http.StatusOK, "customers.html", data)
}
