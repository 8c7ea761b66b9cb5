package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"workeradmin/internal/authz"
)

var adminDenied = "/dashboard?" + url.Values{"error": {"No tiene autorización para esta sección"}}.Encode()

// RequireAdmin must run after OnlyLogged. Without a worker on the request it
// denies.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		w, _ := CurrentWorker(c)
		if !authz.IsAdmin(w) {
			c.Redirect(http.StatusFound, adminDenied)
			c.Abort()
			return
		}
		c.Next()
	}
}
