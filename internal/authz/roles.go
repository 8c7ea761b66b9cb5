package authz

import (
	"fmt"

	"workeradmin/internal/models"
)

// CanLogin reports whether the worker may pass the first login step.
func CanLogin(w *models.Worker) bool {
	return w != nil && w.Permiso
}

// IsAdmin guards the worker management section.
func IsAdmin(w *models.Worker) bool {
	return CanLogin(w) && w.Administrador
}

// ParseFlag reads the 0/1 value of the updateAcceso and updateAdministrador
// routes.
func ParseFlag(v string) (bool, error) {
	switch v {
	case "1":
		return true, nil
	case "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid flag value %q", v)
}
