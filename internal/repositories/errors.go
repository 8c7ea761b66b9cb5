package repositories

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	// ErrStore wraps every driver failure returned by this package.
	ErrStore = errors.New("store error")

	ErrDuplicateUsuario = errors.New("usuario already registered")
	ErrDuplicateEmail   = errors.New("email already registered")
)

const (
	uniqueUsuarioConstraint = "usuario_unico"
	uniqueEmailConstraint   = "email_unico"
	uniqueViolationCode     = "23505"
)

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrStore, err)
}

// classify turns unique violations on the usuarios constraints into
// sentinel errors and wraps everything else as ErrStore.
func classify(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolationCode {
		switch pqErr.Constraint {
		case uniqueUsuarioConstraint:
			return fmt.Errorf("%s: %w", op, ErrDuplicateUsuario)
		case uniqueEmailConstraint:
			return fmt.Errorf("%s: %w", op, ErrDuplicateEmail)
		}
	}
	return storeErr(op, err)
}
