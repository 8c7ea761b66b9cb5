package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"workeradmin/internal/authz"
	"workeradmin/internal/models"
	"workeradmin/internal/repositories"
	"workeradmin/internal/utils"
)

type WorkerService interface {
	Authenticate(ctx context.Context, usuario, clave string) (*models.Worker, error)
	Register(ctx context.Context, form models.WorkerForm) (*models.Worker, error)
	SetAccess(ctx context.Context, id int, enabled bool) error
	SetAdmin(ctx context.Context, id int, admin bool) error
	Filter(ctx context.Context, f models.WorkerFilter) ([]*models.Worker, error)
	DeleteSelf(ctx context.Context, usuario string) error
	DeleteByCapability(ctx context.Context, encryptedUsuario string) error
	ToggleVisibility(ctx context.Context, w *models.Worker) error
	UpdateProfile(ctx context.Context, current *models.Worker, form models.WorkerForm) (*models.Worker, error)
	DeleteLink(usuario string) (string, error)
}

type workerService struct {
	repo    repositories.WorkerRepository
	auth    AuthService
	emails  EmailService
	codec   *utils.Codec
	baseURL string
}

func NewWorkerService(repo repositories.WorkerRepository, auth AuthService, emails EmailService, codec *utils.Codec, baseURL string) WorkerService {
	return &workerService{
		repo:    repo,
		auth:    auth,
		emails:  emails,
		codec:   codec,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Authenticate returns ErrCredentialMismatch for an unknown handle, a
// disabled worker and a wrong password alike.
func (s *workerService) Authenticate(ctx context.Context, usuario, clave string) (*models.Worker, error) {
	w, err := s.repo.FindByHandleWithAccess(ctx, usuario)
	if err != nil {
		return nil, err
	}
	if !authz.CanLogin(w) || !s.auth.CheckPassword(clave, w.Clave) {
		return nil, ErrCredentialMismatch
	}
	return w, nil
}

// Register inserts the worker and mails the confirmation. A mail failure
// is returned even though the row already exists.
func (s *workerService) Register(ctx context.Context, form models.WorkerForm) (*models.Worker, error) {
	digest, err := s.auth.HashPassword(form.Clave)
	if err != nil {
		return nil, err
	}
	w := &models.Worker{
		Nombre:   strings.TrimSpace(form.Nombre),
		Apellido: strings.TrimSpace(form.Apellido),
		Email:    strings.TrimSpace(form.Email),
		Usuario:  form.Usuario,
		Clave:    digest,
	}
	if err := s.repo.Create(ctx, w); err != nil {
		return nil, mapRepoErr(err)
	}

	link, err := s.DeleteLink(w.Usuario)
	if err != nil {
		return w, err
	}
	if err := s.emails.SendConfirmation(ctx, w.Email, w.Usuario, form.Clave, link); err != nil {
		slog.ErrorContext(ctx, "worker stored but confirmation failed",
			"component", "workers", "op", "register", "usuario", w.Usuario, "err", err)
		return w, err
	}
	return w, nil
}

// DeleteLink builds the self-deletion capability URL. Holding the link is
// the only authorization the endpoint checks.
func (s *workerService) DeleteLink(usuario string) (string, error) {
	enc, err := s.codec.Encrypt(usuario)
	if err != nil {
		return "", err
	}
	return s.baseURL + "/deleteByEmail/" + url.PathEscape(enc), nil
}

func (s *workerService) SetAccess(ctx context.Context, id int, enabled bool) error {
	ok, err := s.repo.UpdateAccess(ctx, id, enabled)
	return foundOr(ok, err)
}

func (s *workerService) SetAdmin(ctx context.Context, id int, admin bool) error {
	ok, err := s.repo.UpdateAdmin(ctx, id, admin)
	return foundOr(ok, err)
}

func (s *workerService) Filter(ctx context.Context, f models.WorkerFilter) ([]*models.Worker, error) {
	return s.repo.Filter(ctx, strings.TrimSpace(f.Nombre), strings.TrimSpace(f.Apellido))
}

func (s *workerService) DeleteSelf(ctx context.Context, usuario string) error {
	ok, err := s.repo.DeleteByUsuario(ctx, usuario)
	return foundOr(ok, err)
}

// DeleteByCapability decrypts the handle from the link and deletes it.
// Replaying a used link yields ErrNotFound.
func (s *workerService) DeleteByCapability(ctx context.Context, encryptedUsuario string) error {
	usuario, err := s.codec.Decrypt(encryptedUsuario)
	if err != nil {
		return err
	}
	return s.DeleteSelf(ctx, usuario)
}

// ToggleVisibility flips UsuarioVisible in the store and on w.
func (s *workerService) ToggleVisibility(ctx context.Context, w *models.Worker) error {
	next := !w.UsuarioVisible
	ok, err := s.repo.UpdateVisibility(ctx, w.Usuario, next)
	if err := foundOr(ok, err); err != nil {
		return err
	}
	w.UsuarioVisible = next
	return nil
}

// UpdateProfile keeps the stored digest when the submitted password is the
// all-asterisks placeholder.
func (s *workerService) UpdateProfile(ctx context.Context, current *models.Worker, form models.WorkerForm) (*models.Worker, error) {
	digest := current.Clave
	if !isPlaceholder(form.Clave) {
		h, err := s.auth.HashPassword(form.Clave)
		if err != nil {
			return nil, err
		}
		digest = h
	}
	updated := *current
	updated.Nombre = strings.TrimSpace(form.Nombre)
	updated.Apellido = strings.TrimSpace(form.Apellido)
	updated.Email = strings.TrimSpace(form.Email)
	updated.Usuario = form.Usuario
	updated.Clave = digest

	ok, err := s.repo.UpdateProfile(ctx, current.Usuario, &updated)
	if err := foundOr(ok, mapRepoErr(err)); err != nil {
		return nil, err
	}
	return &updated, nil
}

func isPlaceholder(clave string) bool {
	return clave != "" && strings.Trim(clave, "*") == ""
}

func foundOr(ok bool, err error) error {
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func mapRepoErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrDuplicateUsuario):
		return fmt.Errorf("%w: %v", ErrDuplicateUsuario, err)
	case errors.Is(err, repositories.ErrDuplicateEmail):
		return fmt.Errorf("%w: %v", ErrDuplicateEmail, err)
	}
	return err
}
