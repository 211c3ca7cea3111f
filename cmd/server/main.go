package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iliyamo/video-rental/internal/config"
	"github.com/iliyamo/video-rental/internal/database"
	"github.com/iliyamo/video-rental/internal/handler"
	"github.com/iliyamo/video-rental/internal/middleware"
	"github.com/iliyamo/video-rental/internal/queue"
	"github.com/iliyamo/video-rental/internal/repository"
	"github.com/iliyamo/video-rental/internal/repository/memstore"
	"github.com/iliyamo/video-rental/internal/router"
	"github.com/iliyamo/video-rental/internal/service"
)

func main() {
	cfg := config.Load()
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, closeStore, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("open store")
	}
	defer closeStore()

	rdb, err := config.NewRedisClient(ctx, config.LoadRedisConfig())
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable: rate limiting is per-process and the response cache is off")
	} else {
		defer rdb.Close()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	fee, err := service.FeeFor(cfg.FeeMode)
	if err != nil {
		log.Fatal().Err(err).Msg("fee mode")
	}

	catalog := service.NewCatalog(stores, cfg.StoreTimeout)
	rentals := service.NewRentalService(stores, service.RentalConfig{
		Fee:          fee,
		StoreTimeout: cfg.StoreTimeout,
		Events:       service.NewAMQPPublisher(cfg.RabbitURL, log),
		Metrics:      service.NewMetrics(reg),
		Log:          log,
	})
	auth := service.NewAuthService(stores.Users, service.AuthConfig{
		JWTSecret:    cfg.JWTSecret,
		AccessTTLMin: cfg.AccessTTLMin,
		BcryptCost:   cfg.BcryptCost,
		StoreTimeout: cfg.StoreTimeout,
		Log:          log,
	})

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.ErrorHandler(log)
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))
	e.Use(middleware.HTTPMetrics(reg))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, auth, log))
	e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb, log))

	router.RegisterRoutes(e, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	router.RegisterAPI(e, router.Handlers{
		Genres:    handler.NewGenreHandler(catalog),
		Movies:    handler.NewMovieHandler(catalog),
		Customers: handler.NewCustomerHandler(catalog),
		Rentals:   handler.NewRentalHandler(rentals),
		Auth:      handler.NewAuthHandler(auth),
	}, auth)

	if cfg.ConsumeQueue {
		consumer := queue.NewConsumer(cfg.RabbitURL, "logs", log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("rental consumer stopped")
			}
		}()
	}

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Str("store", cfg.StoreDriver).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	rentals.Wait()
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	var log zerolog.Logger
	if cfg.Env == "dev" {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		log = zerolog.New(os.Stderr)
	}
	return log.Level(level).With().Timestamp().Str("service", "video-rental").Logger()
}

// openStores returns the backends selected by STORE_DRIVER and a func that
// releases them.
func openStores(ctx context.Context, cfg config.Config) (service.Stores, func(), error) {
	if cfg.StoreDriver == config.StoreMemory {
		st := memstore.New()
		return service.Stores{
			Genres:    st.Genres(),
			Movies:    st.Movies(),
			Customers: st.Customers(),
			Rentals:   st.Rentals(),
			Users:     st.Users(),
		}, func() {}, nil
	}

	db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, time.Minute)
	if err != nil {
		return service.Stores{}, nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return service.Stores{}, nil, err
	}
	return service.Stores{
		Genres:    repository.NewGenreRepo(db),
		Movies:    repository.NewMovieRepo(db),
		Customers: repository.NewCustomerRepo(db),
		Rentals:   repository.NewRentalRepo(db),
		Users:     repository.NewUserRepo(db),
	}, func() { _ = db.Close() }, nil
}
