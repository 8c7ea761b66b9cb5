package repositories

import (
	"context"
	"database/sql"

	"workeradmin/internal/models"
)

type ReportRepository interface {
	AgesOfExited(ctx context.Context) ([]models.AgeRow, error)
	CardTypes(ctx context.Context) ([]models.CardTypeCount, error)
	CountByGeography(ctx context.Context, active bool) ([]models.GeographyCount, error)
	Count(ctx context.Context, filter CustomerCount) (int, error)
	Average(ctx context.Context, tipo string) (float64, error)
}

// CustomerCount selects which customers Count aggregates over.
type CustomerCount int

const (
	CountAll CustomerCount = iota
	CountWithCard
	CountWithoutCard
	CountComplain
)

var countQueries = map[CustomerCount]string{
	CountAll:         `SELECT COUNT(*) FROM customers`,
	CountWithCard:    `SELECT COUNT(*) FROM customers WHERE "HasCrCard" = 1`,
	CountWithoutCard: `SELECT COUNT(*) FROM customers WHERE "HasCrCard" = 0`,
	CountComplain:    `SELECT COUNT(*) FROM customers WHERE "Complain" = 1`,
}

type reportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) AgesOfExited(ctx context.Context) ([]models.AgeRow, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT "Age" FROM customers WHERE "Exited" = 1`)
	if err != nil {
		return nil, storeErr("ages of exited", err)
	}
	defer rows.Close()

	res := []models.AgeRow{}
	for rows.Next() {
		var a models.AgeRow
		if err := rows.Scan(&a.Age); err != nil {
			return nil, storeErr("ages of exited", err)
		}
		res = append(res, a)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("ages of exited", err)
	}
	return res, nil
}

func (r *reportRepository) CardTypes(ctx context.Context) ([]models.CardTypeCount, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT "cardType", COUNT(*) FROM customers GROUP BY "cardType" ORDER BY "cardType"`)
	if err != nil {
		return nil, storeErr("card types", err)
	}
	defer rows.Close()

	res := []models.CardTypeCount{}
	for rows.Next() {
		var c models.CardTypeCount
		if err := rows.Scan(&c.CardType, &c.Cantidad); err != nil {
			return nil, storeErr("card types", err)
		}
		res = append(res, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("card types", err)
	}
	return res, nil
}

func (r *reportRepository) CountByGeography(ctx context.Context, active bool) ([]models.GeographyCount, error) {
	const q = `
		SELECT COUNT(*), "Geography"
		FROM customers
		WHERE "IsActiveMember" = $1
		GROUP BY "Geography"
		ORDER BY "Geography"
	`
	rows, err := r.db.QueryContext(ctx, q, flag(active))
	if err != nil {
		return nil, storeErr("count by geography", err)
	}
	defer rows.Close()

	res := []models.GeographyCount{}
	for rows.Next() {
		var g models.GeographyCount
		if err := rows.Scan(&g.Cantidad, &g.Geography); err != nil {
			return nil, storeErr("count by geography", err)
		}
		res = append(res, g)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("count by geography", err)
	}
	return res, nil
}

func (r *reportRepository) Count(ctx context.Context, filter CustomerCount) (int, error) {
	q, ok := countQueries[filter]
	if !ok {
		q = countQueries[CountAll]
	}
	var n int
	if err := r.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, storeErr("count customers", err)
	}
	return n, nil
}

// Average reads a precomputed mean from the estadisticas table; a missing
// row is reported as zero.
func (r *reportRepository) Average(ctx context.Context, tipo string) (float64, error) {
	var v sql.NullFloat64
	err := r.db.QueryRowContext(ctx, `SELECT promedio FROM estadisticas WHERE tipo = $1`, tipo).Scan(&v)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, storeErr("average "+tipo, err)
	}
	return v.Float64, nil
}
