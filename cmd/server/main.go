package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/peptide_shop/internal/cache"
	"github.com/Skotchmaster/peptide_shop/internal/es"
	"github.com/Skotchmaster/peptide_shop/internal/httpserver"
	"github.com/Skotchmaster/peptide_shop/internal/mykafka"
	"github.com/Skotchmaster/peptide_shop/internal/repo"
	"github.com/Skotchmaster/peptide_shop/internal/service"
	"github.com/Skotchmaster/peptide_shop/internal/worker"
	"github.com/Skotchmaster/peptide_shop/pkg/config"
	pkgdb "github.com/Skotchmaster/peptide_shop/pkg/db"
	"github.com/Skotchmaster/peptide_shop/pkg/logging"
	loggingmw "github.com/Skotchmaster/peptide_shop/pkg/middleware/logging"
)

type eventPublisher interface {
	service.EventPublisher
	Close() error
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		cancel()
		log.Fatalf("db open: %v", err)
	}

	store := repo.New(db)
	if err := store.AutoMigrate(ctx); err != nil {
		cancel()
		log.Fatalf("db migrate: %v", err)
	}
	cancel()

	var events eventPublisher = mykafka.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		events = mykafka.NewProducer(cfg.KafkaBrokers, logger)
	} else {
		logger.Warn("kafka_disabled", "reason", "KAFKA_BROKERS is empty")
	}

	var searcher service.ProductSearcher = service.StoreSearcher{Repo: store}
	if cfg.ESURL != "" {
		client, err := es.NewClient(es.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword})
		if err != nil {
			logger.Warn("search_index_disabled", "reason", "cannot reach elasticsearch", "error", err)
		} else {
			index := es.NewProductIndex(client, cfg.ESIndex)
			if err := index.EnsureIndex(context.Background()); err != nil {
				logger.Warn("search_index_disabled", "reason", "cannot create index", "error", err)
			} else {
				searcher = index
			}
		}
	}

	var listingCache cache.ListingCache = cache.Noop{}
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		listingCache = cache.NewRedisCache(rdb)
	}

	catalog := &service.CatalogService{Repo: store, Searcher: searcher, Cache: listingCache, Events: events}
	orders := &service.OrderService{Repo: store, Events: events, StockChanged: catalog.StockDeducted}
	auth := &service.AuthService{Repo: store, JWTSecret: cfg.JWTAccessSecret}

	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if created, err := auth.SeedAdmin(seedCtx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		logger.Error("seed_admin_failed", "error", err)
	} else if created {
		logger.Info("seed_admin_created", "username", cfg.AdminUsername)
	}
	if _, isIndex := searcher.(*es.ProductIndex); isIndex {
		if n, err := catalog.ReindexAll(seedCtx); err != nil {
			logger.Warn("reindex_failed", "indexed", n, "error", err)
		}
	}
	seedCancel()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	if len(cfg.CORSOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.CORSOrigins, AllowCredentials: true}))
	} else {
		e.Use(echomw.CORS())
	}

	httpserver.Register(e, &httpserver.Deps{
		Orders: &httpserver.OrderHTTP{
			Svc:      orders,
			Checkout: &service.CheckoutService{Repo: store, Events: events},
		},
		Catalog:      &httpserver.CatalogHTTP{Svc: catalog},
		Categories:   &httpserver.CategoryHTTP{Svc: &service.CategoryService{Repo: store}},
		Testimonials: &httpserver.TestimonialHTTP{Svc: &service.TestimonialService{Repo: store}},
		Payments:     &httpserver.PaymentHTTP{Svc: &service.PaymentService{Repo: store}},
		Auth:         &httpserver.AuthHTTP{Svc: auth},
		JWTSecret:    cfg.JWTAccessSecret,
		Ready:        store.Ping,
	})

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	go worker.NewDeductionPoller(orders, cfg.DeductionRetryInterval, logger).Run(workerCtx)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("server_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	stopWorkers()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)

	if err := events.Close(); err != nil {
		logger.Warn("kafka_close_failed", "error", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	_ = pkgdb.Close(db)

	logger.Info("server_stopped")
}
