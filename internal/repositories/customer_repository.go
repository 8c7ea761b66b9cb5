package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"workeradmin/internal/models"
)

type CustomerRepository interface {
	// FindBySurname returns masked rows, or decrypted rows when key is set.
	FindBySurname(ctx context.Context, surname, key string) ([]models.Customer, error)
}

type customerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) FindBySurname(ctx context.Context, surname, key string) ([]models.Customer, error) {
	var (
		raw sql.NullString
		err error
	)
	if key != "" {
		err = r.db.QueryRowContext(ctx, `SELECT decrypt_customer_data($1, $2) AS result`, key, surname).Scan(&raw)
	} else {
		err = r.db.QueryRowContext(ctx, `SELECT estandar_customer_data($1) AS result`, surname).Scan(&raw)
	}
	if err != nil {
		return nil, storeErr("filter customers", err)
	}
	if !raw.Valid || raw.String == "" || raw.String == "null" {
		return nil, nil
	}

	var res []models.Customer
	if err := json.Unmarshal([]byte(raw.String), &res); err != nil {
		return nil, fmt.Errorf("filter customers: decode result: %w", err)
	}
	return res, nil
}
