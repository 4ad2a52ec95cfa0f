// Package server assembles the API from configuration and runs it.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"spooky-styles/config"
	"spooky-styles/controllers"
	"spooky-styles/libs"
	"spooky-styles/logger"
	"spooky-styles/middleware"
	"spooky-styles/repositories"
	"spooky-styles/routes"
	"spooky-styles/services"
	"spooky-styles/utils"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 2 * time.Minute
)

type App struct {
	Router *gin.Engine

	cfg   *config.Config
	log   *logger.Logger
	db    *pgxpool.Pool
	redis *redis.Client
	hub   *libs.Hub
}

// New connects to Postgres (required) and Redis (optional) and wires every
// layer into a gin router.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	zerolog.DefaultContextLogger = &log.Logger
	utils.RegisterValidators()

	db, err := config.ConnectDB(ctx, cfg.DB, log)
	if err != nil {
		return nil, err
	}
	redisClient := config.ConnectRedis(ctx, cfg.Redis, log)

	store, err := libs.NewImageStore(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create image store: %w", err)
	}

	app := &App{
		cfg:   cfg,
		log:   log,
		db:    db,
		redis: redisClient,
		hub:   libs.NewHub(cfg.App.AllowedOrigins, log.GetChildLogger()),
	}

	csrf := middleware.NewCSRFStore(redisClient)
	if cfg.App.CSRFEnabled && !csrf.Enabled() {
		log.Warn().Msg("CSRF_ENABLED is set but Redis is disabled, CSRF protection disabled")
	}

	tokens := utils.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	app.Router = gin.New()
	routes.SetupRoutes(app.Router, app.controllers(store, tokens, csrf), routes.Options{
		Config: cfg,
		Log:    log,
		Tokens: tokens,
		Redis:  redisClient,
		CSRF:   csrf,
	})
	return app, nil
}

func (a *App) controllers(store libs.ImageStore, tokens *utils.TokenManager, csrf *middleware.CSRFStore) routes.Controllers {
	cfg := a.cfg

	userRepo := repositories.NewUserRepository(a.db)
	cartRepo := repositories.NewCartRepository(a.db)
	productRepo := repositories.NewProductRepository(a.db)
	orderRepo := repositories.NewOrderRepository(a.db)
	inspirationRepo := repositories.NewInspirationRepository(a.db)
	analyticsRepo := repositories.NewAnalyticsRepository(a.db)

	cache := libs.NewCache(a.redis, a.log)
	mailer := libs.NewEmailService(cfg.SMTP, cfg.App.FrontendURL, libs.Currencies{Stripe: cfg.Stripe.Currency, Paystack: cfg.Paystack.Currency}, a.log)
	stripe := libs.NewStripeClient(cfg.Stripe)
	paystack := libs.NewPaystackClient(cfg.Paystack)

	uploads := services.NewUploadService(store, cfg.Upload.MaxSize)

	return routes.Controllers{
		Auth:    controllers.NewAuthController(services.NewAuthService(userRepo, cartRepo, tokens)),
		Product: controllers.NewProductController(services.NewProductService(productRepo, uploads, cache, cfg.Redis.CacheTTL)),
		Cart:    controllers.NewCartController(services.NewCartService(cartRepo, productRepo)),
		Order: controllers.NewOrderController(
			services.NewOrderService(orderRepo, cartRepo, userRepo, mailer, a.hub),
			a.hub,
		),
		Payment:     controllers.NewPaymentController(services.NewPaymentService(orderRepo, stripe, paystack, a.hub)),
		Inspiration: controllers.NewInspirationController(services.NewInspirationService(inspirationRepo, cache, cfg.Redis.CacheTTL)),
		Analytics:   controllers.NewAnalyticsController(services.NewAnalyticsService(analyticsRepo)),
		User:        controllers.NewUserController(services.NewUserService(userRepo)),
		Upload:      controllers.NewUploadController(uploads),
		Health:      controllers.NewHealthController(a.db, a.redis),
		CSRF:        controllers.NewCSRFController(csrf, cfg.App.CSRFEnabled),
	}
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests
// for up to SHUTDOWN_TIMEOUT.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + a.cfg.App.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().
			Str("port", a.cfg.App.Port).
			Str("env", a.cfg.App.Env).
			Str("swagger", a.cfg.App.BaseURL+"/swagger/index.html").
			Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.App.ShutdownTimeout)
	defer cancel()

	// Hijacked websocket connections are not tracked by Shutdown.
	a.hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	a.log.Info().Msg("server stopped gracefully")
	return nil
}

func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close redis")
		}
	}
	a.db.Close()
}
