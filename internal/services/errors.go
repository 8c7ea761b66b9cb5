package services

import "errors"

var (
	ErrCredentialMismatch = errors.New("credential mismatch")
	ErrNotAuthorized      = errors.New("not authorized")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrTokenExpired       = errors.New("token expired")
	ErrSendFailure        = errors.New("mail send failure")
	ErrNotFound           = errors.New("not found")
	ErrDuplicateUsuario   = errors.New("usuario already registered")
	ErrDuplicateEmail     = errors.New("email already registered")
)
