package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"snack-shop/config"
	"snack-shop/controllers"
	"snack-shop/libs"
	"snack-shop/middleware"
	"snack-shop/repositories"
	"snack-shop/routes"
	"snack-shop/services"

	"github.com/gin-gonic/gin"
)

// App owns every long-lived component of one server process.
type App struct {
	Router     *gin.Engine
	Projection *services.Projection
	Session    *services.Session
	Orders     *services.OrderService

	log     *slog.Logger
	closers []func()
	checks  map[string]controllers.HealthCheck
}

func NewApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	app := &App{log: log, checks: map[string]controllers.HealthCheck{}}

	var (
		store services.OrderStore
		menu  services.MenuProvider
	)
	switch cfg.StoreDriver {
	case "memory":
		store = repositories.NewMemoryOrderRepository()
		menu = repositories.NewMemoryMenuRepository(repositories.DefaultMenu()...)
		log.Warn("using in-memory order store, orders are lost on restart")
	case "postgres":
		pool, err := config.ConnectDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, pool.Close)
		app.checks["postgres"] = pool.Ping
		store = repositories.NewOrderRepository(pool, log)
		menu = repositories.NewMenuRepository(pool)
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	rdb := config.ConnectRedis(ctx, cfg)
	if rdb != nil {
		app.closers = append(app.closers, func() { _ = rdb.Close() })
		app.checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	cache := repositories.NewSnapshotCache(rdb, cfg.SnapshotCacheKey)

	printer := app.printer(cfg)

	notifier := services.NewNotifier(100)
	app.Projection = services.NewProjection(store, cache, log)
	app.Session = services.NewSession(ctx, cfg.AutoPrint, services.ParsePrintMode(cfg.AutoPrintMode), app.Projection, printer, cache, notifier, log)
	app.Orders = services.NewOrderService(store, menu, app.Projection, notifier, printer, services.OrderServiceConfig{
		Tables:       cfg.Tables,
		WriteTimeout: cfg.WriteTimeout,
		Location:     cfg.Location,
	}, log)

	var mailer services.ReportMailer
	if m, err := libs.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom); err != nil {
		log.Warn("email reports disabled", "error", err)
	} else {
		mailer = m
	}
	reports := services.NewReportService(app.Orders, mailer)

	auth, err := services.NewAuthService(cfg.OwnerPasscode, cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("init auth: %w", err)
	}

	app.Router = gin.New()
	app.Router.Use(gin.Logger(), gin.Recovery())
	app.Router.Use(middleware.CORSMiddleware(cfg.OriginURL))
	routes.SetupRoutes(app.Router, routes.Services{
		Orders:  app.Orders,
		Reports: reports,
		Auth:    auth,
		Session: app.Session,
		Health:  app.checks,
	})

	return app, nil
}

func (a *App) printer(cfg *config.Config) services.Printer {
	fallback := libs.LogPrinter{Log: a.log}
	if cfg.RabbitMQURL == "" {
		a.log.Warn("RABBITMQ_URL not set, tickets go to the log")
		return fallback
	}
	client, err := libs.DialRabbit(cfg.RabbitMQURL)
	if err != nil {
		a.log.Warn("failed to connect to rabbitmq, tickets go to the log", "error", err)
		return fallback
	}
	printer, err := libs.NewQueuePrinter(client, cfg.PrintQueue)
	if err != nil {
		client.Close()
		a.log.Warn("print queue unavailable, tickets go to the log", "error", err)
		return fallback
	}
	a.closers = append(a.closers, client.Close)
	a.checks["rabbitmq"] = func(context.Context) error { return client.Ping() }
	return printer
}

// Start bootstraps the projection and subscribes to the order store.
func (a *App) Start(ctx context.Context) error {
	return a.Projection.Start(ctx)
}

func (a *App) Handler() http.Handler {
	return a.Router
}

// Close stops the feed and releases connections in reverse order.
func (a *App) Close() {
	if a.Projection != nil {
		a.Projection.Stop()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
