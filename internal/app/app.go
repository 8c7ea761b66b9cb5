package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"workeradmin/internal/config"
	"workeradmin/internal/handlers"
	"workeradmin/internal/logging"
	"workeradmin/internal/middleware"
	"workeradmin/internal/pdf"
	"workeradmin/internal/repositories"
	"workeradmin/internal/routes"
	"workeradmin/internal/services"
	"workeradmin/internal/session"
	"workeradmin/internal/utils"
	"workeradmin/web"
)

func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	slog.SetDefault(logging.New(cfg.Log.Level, cfg.Log.Format))
	gin.SetMode(cfg.Server.GinMode)

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("close db failed", "err", err)
		}
	}()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	if cfg.Database.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	}

	// === Redis (optional) ===
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
	}

	router, err := NewRouter(cfg, db, rdb)
	if err != nil {
		return err
	}

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	slog.Info("server listening", "addr", listenAddr, "mode", cfg.Server.GinMode, "session", cfg.Session.Backend)
	return router.Run(listenAddr)
}

// NewRouter wires repositories, services and handlers onto a gin engine.
// rdb may be nil.
func NewRouter(cfg *config.Config, db *sql.DB, rdb *redis.Client) (*gin.Engine, error) {
	codec, err := utils.NewCodec(cfg.Secrets.AESKey)
	if err != nil {
		return nil, fmt.Errorf("codec: %w", err)
	}
	handlers.RegisterValidators()

	// === Repos ===
	workerRepo := repositories.NewWorkerRepository(db)
	customerRepo := repositories.NewCustomerRepository(db)
	reportRepo := repositories.NewReportRepository(db)

	// === Services ===
	authService := services.NewAuthService(cfg.Security.BcryptCost)
	tokenService := services.NewTokenService(cfg.Secrets.TokenKey, cfg.Secrets.TokenTTL)
	emailService := services.NewEmailService(services.NewSMTPTransport(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Secrets.MailUser,
		cfg.Secrets.MailPassword,
		cfg.Email.FromName,
	))
	codeIssuer := services.NewMailCodeIssuer(emailService)
	workerService := services.NewWorkerService(workerRepo, authService, emailService, codec, cfg.Server.PublicBaseURL)
	customerService := services.NewCustomerService(customerRepo)

	var cache services.ReportCache
	if rdb != nil && cfg.Reports.CacheTTL > 0 {
		cache = services.NewRedisReportCache(rdb, cfg.Reports.CacheTTL)
	}
	reportService := services.NewReportService(reportRepo, cache)

	// === Session ===
	backend, err := session.NewBackend(cfg.Session, cfg.Redis, cfg.Secrets.SessionSecret, cfg.Server.GinMode == gin.ReleaseMode)
	if err != nil {
		return nil, err
	}
	store := session.New()
	gate := middleware.NewGate(tokenService, workerRepo, codec, store)

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(workerService, codeIssuer, tokenService, codec, store, gate)
	workerHandler := handlers.NewWorkerHandler(workerService, tokenService, gate, store, pdf.NewProfileGenerator(cfg.PDF.FontPath))
	customerHandler := handlers.NewCustomerHandler(customerService)
	reportHandler := handlers.NewReportHandler(reportService)

	// === Gin ===
	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(session.Middleware(cfg.Session.Name, backend))
	router.SetHTMLTemplate(tmpl)
	router.StaticFS("/public", http.FS(web.Static()))

	routes.SetupRoutes(
		router,
		gate,
		authHandler,
		workerHandler,
		customerHandler,
		reportHandler,
		func(ctx context.Context) error { return db.PingContext(ctx) },
	)
	return router, nil
}
