package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"workeradmin/internal/models"
	"workeradmin/internal/repositories"
)

// ReportCache stores JSON-encoded aggregates. Get reports false on miss.
type ReportCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
}

type redisReportCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisReportCache(rdb *redis.Client, ttl time.Duration) ReportCache {
	return &redisReportCache{rdb: rdb, ttl: ttl, prefix: "reports:"}
}

func (c *redisReportCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *redisReportCache) Set(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.prefix+key, b, c.ttl).Err()
}

type ReportService struct {
	repo  repositories.ReportRepository
	cache ReportCache
}

// NewReportService accepts a nil cache, in which case every call hits the
// database.
func NewReportService(repo repositories.ReportRepository, cache ReportCache) *ReportService {
	return &ReportService{repo: repo, cache: cache}
}

// cached runs load on a miss and stores its result. Cache failures are
// logged and never fail the request.
func cached[T any](ctx context.Context, s *ReportService, key string, load func(context.Context) (T, error)) (T, error) {
	var out T
	if s.cache != nil {
		hit, err := s.cache.Get(ctx, key, &out)
		if err != nil {
			slog.WarnContext(ctx, "report cache read failed", "component", "reports", "key", key, "err", err)
		} else if hit {
			return out, nil
		}
	}
	out, err := load(ctx)
	if err != nil {
		return out, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, out); err != nil {
			slog.WarnContext(ctx, "report cache write failed", "component", "reports", "key", key, "err", err)
		}
	}
	return out, nil
}

func (s *ReportService) AgesOfExited(ctx context.Context) ([]models.AgeRow, error) {
	return cached(ctx, s, "ageCustomersExited", s.repo.AgesOfExited)
}

func (s *ReportService) CardTypes(ctx context.Context) ([]models.CardTypeCount, error) {
	return cached(ctx, s, "cardTypes", s.repo.CardTypes)
}

func (s *ReportService) CustomersByCountry(ctx context.Context) (*models.CountryBreakdown, error) {
	return cached(ctx, s, "customersByCountry", func(ctx context.Context) (*models.CountryBreakdown, error) {
		var res models.CountryBreakdown
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			res.Activo, err = s.repo.CountByGeography(gctx, true)
			return err
		})
		g.Go(func() (err error) {
			res.Inactivo, err = s.repo.CountByGeography(gctx, false)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return &res, nil
	})
}

func (s *ReportService) GeneralInformation(ctx context.Context) (*models.GeneralInformation, error) {
	return cached(ctx, s, "generalInformation", func(ctx context.Context) (*models.GeneralInformation, error) {
		var (
			total, card, noCard, complain int
			salary, balance               float64
		)
		g, gctx := errgroup.WithContext(ctx)
		count := func(dst *int, f repositories.CustomerCount) func() error {
			return func() (err error) {
				*dst, err = s.repo.Count(gctx, f)
				return err
			}
		}
		avg := func(dst *float64, tipo string) func() error {
			return func() (err error) {
				*dst, err = s.repo.Average(gctx, tipo)
				return err
			}
		}
		g.Go(count(&total, repositories.CountAll))
		g.Go(count(&card, repositories.CountWithCard))
		g.Go(count(&noCard, repositories.CountWithoutCard))
		g.Go(count(&complain, repositories.CountComplain))
		g.Go(avg(&salary, "EstimatedSalary"))
		g.Go(avg(&balance, "Balance"))
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return &models.GeneralInformation{
			Total:         []map[string]int{{"Total": total}},
			CreditCard:    []map[string]int{{"Card": card}},
			NotCreditCard: []map[string]int{{"notCard": noCard}},
			Complain:      []map[string]int{{"Complain": complain}},
			Salary:        []map[string]float64{{"Salary": salary}},
			Balance:       []map[string]float64{{"Balance": balance}},
		}, nil
	})
}
