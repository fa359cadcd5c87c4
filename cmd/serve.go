package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vovarama1992/edushare/internal/config"
	"github.com/Vovarama1992/edushare/internal/delivery"
	"github.com/Vovarama1992/edushare/internal/delivery/ws"
	"github.com/Vovarama1992/edushare/internal/domain"
	"github.com/Vovarama1992/edushare/internal/infra"
	"github.com/Vovarama1992/edushare/internal/metrics"
	"github.com/Vovarama1992/edushare/internal/ports"
	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

const (
	resourceLimit  = 10
	resourceWindow = time.Minute
	donationLimit  = 3
	donationWindow = time.Hour
	eventBuffer    = 256
)

// newLimiter picks the backend. The returned closer is never nil.
func newLimiter(backend string, pool *pgxpool.Pool, limit int, window time.Duration, log *logger.ZapLogger) (ports.RateLimiter, io.Closer) {
	if backend == "postgres" {
		return infra.NewPostgresLimiter(pool, limit, window, log), io.NopCloser(nil)
	}
	l := infra.NewMemoryLimiter(limit, window, window)
	return l, l
}

func runServe(cmd *cobra.Command, _ []string) error {
	// LOGGER
	zl := newLogger()

	// CONFIG
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// POSTGRES
	pool, err := infra.NewPgxPool(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	// REPOS
	resourceRepo := infra.NewPostgresResourceRepo(pool)
	lookupRepo := infra.NewPostgresLookupRepo(pool)
	donationRepo := infra.NewPostgresDonationRepo(pool)

	// LIMITERS
	resourceLimiter, closeResources := newLimiter(cfg.RateLimit.Backend, pool, resourceLimit, resourceWindow, zl)
	defer closeResources.Close()
	donationLimiter, closeDonations := newLimiter(cfg.RateLimit.Backend, pool, donationLimit, donationWindow, zl)
	defer closeDonations.Close()

	// SERVICES
	authService := domain.NewAuthService(cfg.Auth.JWTSecret, cfg.AdminEmails())
	bus := domain.NewEventBus(eventBuffer, zl)
	resourceService := domain.NewResourceService(resourceRepo, lookupRepo, bus, zl)
	configService := domain.NewConfigService(lookupRepo)
	captcha := infra.NewRecaptchaVerifier(cfg.Recaptcha.SecretKey, cfg.Recaptcha.MinScore, cfg.Recaptcha.VerifyURL)
	donationService := domain.NewDonationService(donationRepo, captcha, bus)

	// WS HUB
	hub := ws.NewHub(zl)
	defer hub.CloseAll()

	// PUBLISHERS
	publishers := infra.MultiPublisher{ws.HubPublisher{Hub: hub}}
	if brokers := cfg.KafkaBrokers(); len(brokers) > 0 {
		kp := infra.NewKafkaPublisher(brokers, cfg.Kafka.Topic)
		defer kp.Close()
		publishers = append(publishers, kp)
	}

	// BROADCAST LISTENER
	broadcastDone := make(chan struct{})
	go func() {
		defer close(broadcastDone)
		for ev := range bus.Events() {
			pctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := publishers.Publish(pctx, ev); err != nil {
				zl.Log(logger.LogEntry{
					Level:   "warn",
					Message: "event publish failed",
					Fields:  map[string]any{"type": ev.Type, "id": ev.ID},
					Error:   err,
				})
			}
			cancel()
		}
	}()

	// HANDLERS
	handlers := delivery.Handlers{
		Auth:      delivery.NewAuthHandler(zl),
		Resources: delivery.NewResourceHandler(resourceService, zl),
		Admin:     delivery.NewAdminHandler(resourceService, donationService, zl),
		Config:    delivery.NewConfigHandler(configService, zl),
		Donations: delivery.NewDonationHandler(donationService, donationLimiter, zl),
	}

	// ROUTER
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	delivery.RegisterRoutes(r, handlers, authService, resourceLimiter, hub, zl)

	r.Handle("/metrics", metrics.Handler())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Log(logger.LogEntry{
			Level:   "info",
			Message: "server started",
			Fields:  map[string]any{"port": cfg.HTTP.Port, "ratelimit": cfg.RateLimit.Backend},
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			zl.Log(logger.LogEntry{Level: "error", Message: "server crashed", Error: err})
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Log(logger.LogEntry{Level: "error", Message: "shutdown failed", Error: err})
	}

	// emits from handlers that outlived Shutdown are dropped
	bus.Close()
	<-broadcastDone

	zl.Log(logger.LogEntry{Level: "info", Message: "server stopped"})
	return nil
}
