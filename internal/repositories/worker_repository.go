package repositories

import (
	"context"
	"database/sql"
	"errors"

	"workeradmin/internal/models"
)

type WorkerRepository interface {
	// FindByHandleWithAccess returns nil, nil when no enabled worker has
	// the handle. The permiso filter lives in the query.
	FindByHandleWithAccess(ctx context.Context, usuario string) (*models.Worker, error)
	Create(ctx context.Context, w *models.Worker) error
	UpdateAccess(ctx context.Context, id int, enabled bool) (bool, error)
	UpdateAdmin(ctx context.Context, id int, admin bool) (bool, error)
	Filter(ctx context.Context, nombre, apellido string) ([]*models.Worker, error)
	DeleteByUsuario(ctx context.Context, usuario string) (bool, error)
	UpdateVisibility(ctx context.Context, usuario string, visible bool) (bool, error)
	UpdateProfile(ctx context.Context, currentUsuario string, w *models.Worker) (bool, error)
}

type workerRepository struct {
	DB *sql.DB
}

func NewWorkerRepository(db *sql.DB) WorkerRepository {
	return &workerRepository{DB: db}
}

const workerColumns = `idusuarios, nombre, apellido, email, usuario, clave, permiso, administrador, "usuarioVisible"`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorker(row rowScanner) (*models.Worker, error) {
	w := &models.Worker{}
	var permiso, admin, visible sql.NullInt64
	if err := row.Scan(
		&w.ID, &w.Nombre, &w.Apellido, &w.Email, &w.Usuario, &w.Clave,
		&permiso, &admin, &visible,
	); err != nil {
		return nil, err
	}
	w.Permiso = permiso.Valid && permiso.Int64 == 1
	w.Administrador = admin.Valid && admin.Int64 == 1
	w.UsuarioVisible = visible.Valid && visible.Int64 == 1
	return w, nil
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (r *workerRepository) FindByHandleWithAccess(ctx context.Context, usuario string) (*models.Worker, error) {
	q := `SELECT ` + workerColumns + ` FROM usuarios WHERE usuario = $1 AND permiso = 1 LIMIT 1`
	w, err := scanWorker(r.DB.QueryRowContext(ctx, q, usuario))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storeErr("find worker", err)
	}
	return w, nil
}

func (r *workerRepository) Create(ctx context.Context, w *models.Worker) error {
	const q = `
		INSERT INTO usuarios (nombre, apellido, email, usuario, clave)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING idusuarios
	`
	if err := r.DB.QueryRowContext(ctx, q, w.Nombre, w.Apellido, w.Email, w.Usuario, w.Clave).Scan(&w.ID); err != nil {
		return classify("create worker", err)
	}
	return nil
}

func (r *workerRepository) exec(ctx context.Context, op, q string, args ...any) (bool, error) {
	res, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil {
		return false, classify(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storeErr(op, err)
	}
	return n > 0, nil
}

func (r *workerRepository) UpdateAccess(ctx context.Context, id int, enabled bool) (bool, error) {
	return r.exec(ctx, "update access", `UPDATE usuarios SET permiso = $1 WHERE idusuarios = $2`, flag(enabled), id)
}

func (r *workerRepository) UpdateAdmin(ctx context.Context, id int, admin bool) (bool, error) {
	return r.exec(ctx, "update admin", `UPDATE usuarios SET administrador = $1 WHERE idusuarios = $2`, flag(admin), id)
}

func (r *workerRepository) Filter(ctx context.Context, nombre, apellido string) ([]*models.Worker, error) {
	q := `SELECT ` + workerColumns + `
		FROM usuarios
		WHERE nombre ILIKE '%' || $1 || '%' AND apellido ILIKE '%' || $2 || '%'
		ORDER BY nombre, apellido`
	rows, err := r.DB.QueryContext(ctx, q, nombre, apellido)
	if err != nil {
		return nil, storeErr("filter workers", err)
	}
	defer rows.Close()

	var res []*models.Worker
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, storeErr("filter workers", err)
		}
		res = append(res, w)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("filter workers", err)
	}
	return res, nil
}

func (r *workerRepository) DeleteByUsuario(ctx context.Context, usuario string) (bool, error) {
	return r.exec(ctx, "delete worker", `DELETE FROM usuarios WHERE usuario = $1`, usuario)
}

func (r *workerRepository) UpdateVisibility(ctx context.Context, usuario string, visible bool) (bool, error) {
	return r.exec(ctx, "update visibility", `UPDATE usuarios SET "usuarioVisible" = $1 WHERE usuario = $2`, flag(visible), usuario)
}

func (r *workerRepository) UpdateProfile(ctx context.Context, currentUsuario string, w *models.Worker) (bool, error) {
	const q = `
		UPDATE usuarios
		SET usuario = $1, clave = $2, email = $3, nombre = $4, apellido = $5
		WHERE usuario = $6
	`
	return r.exec(ctx, "update worker", q, w.Usuario, w.Clave, w.Email, w.Nombre, w.Apellido, currentUsuario)
}
