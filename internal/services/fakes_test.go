package services

import (
	"context"
	"errors"
	"sync"

	"workeradmin/internal/models"
)

type sentMail struct {
	To, Subject, Body string
}

type fakeTransport struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeTransport) Send(_ context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to, subject, body})
	return nil
}

// fakeWorkerRepo keeps workers keyed by usuario.
type fakeWorkerRepo struct {
	byUsuario map[string]*models.Worker
	nextID    int
	createErr error
}

func newFakeWorkerRepo(ws ...*models.Worker) *fakeWorkerRepo {
	r := &fakeWorkerRepo{byUsuario: map[string]*models.Worker{}, nextID: 1}
	for _, w := range ws {
		cp := *w
		if cp.ID == 0 {
			cp.ID = r.nextID
			r.nextID++
		}
		r.byUsuario[w.Usuario] = &cp
	}
	return r
}

func (r *fakeWorkerRepo) byID(id int) *models.Worker {
	for _, w := range r.byUsuario {
		if w.ID == id {
			return w
		}
	}
	return nil
}

func (r *fakeWorkerRepo) FindByHandleWithAccess(_ context.Context, usuario string) (*models.Worker, error) {
	w, ok := r.byUsuario[usuario]
	if !ok || !w.Permiso {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *fakeWorkerRepo) Create(_ context.Context, w *models.Worker) error {
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.byUsuario[w.Usuario]; ok {
		return errors.New("duplicate")
	}
	w.ID = r.nextID
	r.nextID++
	cp := *w
	r.byUsuario[w.Usuario] = &cp
	return nil
}

func (r *fakeWorkerRepo) UpdateAccess(_ context.Context, id int, enabled bool) (bool, error) {
	w := r.byID(id)
	if w == nil {
		return false, nil
	}
	w.Permiso = enabled
	return true, nil
}

func (r *fakeWorkerRepo) UpdateAdmin(_ context.Context, id int, admin bool) (bool, error) {
	w := r.byID(id)
	if w == nil {
		return false, nil
	}
	w.Administrador = admin
	return true, nil
}

func (r *fakeWorkerRepo) Filter(_ context.Context, _, _ string) ([]*models.Worker, error) {
	var res []*models.Worker
	for _, w := range r.byUsuario {
		res = append(res, w)
	}
	return res, nil
}

func (r *fakeWorkerRepo) DeleteByUsuario(_ context.Context, usuario string) (bool, error) {
	if _, ok := r.byUsuario[usuario]; !ok {
		return false, nil
	}
	delete(r.byUsuario, usuario)
	return true, nil
}

func (r *fakeWorkerRepo) UpdateVisibility(_ context.Context, usuario string, visible bool) (bool, error) {
	w, ok := r.byUsuario[usuario]
	if !ok {
		return false, nil
	}
	w.UsuarioVisible = visible
	return true, nil
}

func (r *fakeWorkerRepo) UpdateProfile(_ context.Context, current string, w *models.Worker) (bool, error) {
	if _, ok := r.byUsuario[current]; !ok {
		return false, nil
	}
	delete(r.byUsuario, current)
	cp := *w
	r.byUsuario[w.Usuario] = &cp
	return true, nil
}
