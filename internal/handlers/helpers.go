package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"workeradmin/internal/middleware"
	"workeradmin/internal/models"
)

// ErrValidation marks a request body that failed the form rules.
var ErrValidation = errors.New("validation failed")

var (
	reAlphaES     = regexp.MustCompile(`^[A-Za-zñÑáéíóúÁÉÍÓÚüÜ\s]+$`)
	reAlphaNumAst = regexp.MustCompile(`^[A-Za-z0-9*]+$`)
	registerOnce  sync.Once
)

// RegisterValidators installs the alphaes and alphanumast rules on gin's
// validator and reports field names by their form tag.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("alphaes", func(fl validator.FieldLevel) bool {
			return reAlphaES.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("alphanumast", func(fl validator.FieldLevel) bool {
			return reAlphaNumAst.MatchString(fl.Field().String())
		})
	})
}

type fieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func validationMessages(err error) []fieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []fieldError{{Message: "Los datos no cumplen con el formato."}}
	}
	out := make([]fieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	f := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("El campo %s es obligatorio.", f)
	case "alphaes":
		return fmt.Sprintf("El campo %s solo puede contener letras y espacios.", f)
	case "email":
		return fmt.Sprintf("El campo %s debe tener formato de correo electrónico", f)
	case "min", "max":
		return fmt.Sprintf("El campo %s debe tener mínimo 8 caracteres y máximo 20", f)
	case "alphanumast":
		return fmt.Sprintf("El campo %s solo puede contener letras, números y asteriscos.", f)
	}
	return fmt.Sprintf("El formato del campo %s no es válido.", f)
}

// bindWorkerForm accepts JSON or form bodies. On failure it has already
// written the 400 response.
func bindWorkerForm(c *gin.Context) (models.WorkerForm, bool) {
	var form models.WorkerForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": validationMessages(fmt.Errorf("%w: %w", ErrValidation, err))})
		return form, false
	}
	return form, true
}

func redirectWith(c *gin.Context, path, key, msg string) {
	c.Redirect(http.StatusFound, path+"?"+url.Values{key: {msg}}.Encode())
}

func jsonMessage(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

// jsonMessages is the list shape the browser forms read.
func jsonMessages(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": []fieldError{{Message: msg}}})
}

// pageData starts the template data with the query messages and the
// logged-in worker, when there is one.
func pageData(c *gin.Context) gin.H {
	h := gin.H{}
	if v := c.Query("error"); v != "" {
		h["error"] = v
	}
	if v := c.Query("success"); v != "" {
		h["success"] = v
	}
	if w, ok := middleware.CurrentWorker(c); ok {
		h["worker"] = w
	}
	return h
}
