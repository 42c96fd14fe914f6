package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"example.com/storefront/internal/handlers"
	"example.com/storefront/internal/identity"
	"example.com/storefront/internal/notify"
	"example.com/storefront/internal/service"
	"example.com/storefront/internal/store"
)

type Server struct {
	Engine     *gin.Engine
	Dispatcher *notify.Dispatcher
	cfg        Config
	log        *slog.Logger
}

func NewLogger(cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	if cfg.Production() {
		opts.Level = slog.LevelInfo
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func OpenDB(cfg Config) (*gorm.DB, error) {
	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN is not set")
	}
	lvl := logger.Warn
	if cfg.Production() {
		lvl = logger.Error
	}
	db, err := gorm.Open(postgres.Open(cfg.DBDSN), &gorm.Config{
		Logger:                                   logger.Default.LogMode(lvl),
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// NewServer connects, migrates and wires everything. cleanup closes the pool.
func NewServer(cfg Config, log *slog.Logger) (*Server, func(), error) {
	db, err := OpenDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if s, err := db.DB(); err == nil {
			_ = s.Close()
		}
	}
	if err := store.Migrate(db); err != nil {
		cleanup()
		return nil, nil, err
	}
	return New(cfg, db, log), cleanup, nil
}

// New wires services and routes over an already migrated database.
func New(cfg Config, db *gorm.DB, log *slog.Logger) *Server {
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	profiles := store.NewProfiles(db)
	products := store.NewProducts(db)
	orders := store.NewOrders(db)
	gateway := identity.NewLocal(db, []byte(cfg.JWTSecret), cfg.TokenTTL)

	var mailer notify.Mailer
	if cfg.SMTP.Host != "" {
		mailer = notify.NewSMTPMailer(cfg.SMTP)
	} else {
		mailer = notify.NewLogMailer(log)
	}
	dispatcher := notify.NewDispatcher(orders, profiles, mailer, log, cfg.NotifyQueueSize)

	resp := handlers.Responder{Production: cfg.Production(), Log: log}
	authSvc := service.NewAuthService(gateway, profiles, log)
	h := routeHandlers{
		resp:     resp,
		gateway:  gateway,
		auth:     handlers.NewAuthHTTP(authSvc, resp),
		products: handlers.NewProductsHTTP(service.NewProductService(products, log), resp),
		orders:   handlers.NewOrdersHTTP(service.NewOrderService(orders, products, dispatcher, log), resp),
		users:    handlers.NewUsersHTTP(service.NewUserService(profiles, log), resp),
		roles:    authSvc,
	}

	r := gin.Default()
	registerRoutes(r, h)
	return &Server{Engine: r, Dispatcher: dispatcher, cfg: cfg, log: log}
}

// Run serves HTTP and the confirmation worker until ctx is cancelled, then
// shuts both down.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: ":" + s.cfg.Port, Handler: s.Engine}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return s.Dispatcher.Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
		defer cancel()
		s.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
