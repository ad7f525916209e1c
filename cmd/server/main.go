package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/atabek/storefront/internal/auth"
	"github.com/atabek/storefront/internal/config"
	"github.com/atabek/storefront/internal/es"
	"github.com/atabek/storefront/internal/events"
	"github.com/atabek/storefront/internal/handlers"
	"github.com/atabek/storefront/internal/hash"
	"github.com/atabek/storefront/internal/logging"
	authmw "github.com/atabek/storefront/internal/middleware"
	"github.com/atabek/storefront/internal/models"
	"github.com/atabek/storefront/internal/repo"
	"github.com/atabek/storefront/internal/search"
	"github.com/atabek/storefront/internal/tokens"
	httpserver "github.com/atabek/storefront/internal/transport/http"
	"github.com/atabek/storefront/pkg/db"
	loggingmw "github.com/atabek/storefront/pkg/middleware/logging"
)

// seedSuperuser makes sure an administrative identity exists on a fresh
// database.
func seedSuperuser(ctx context.Context, r *repo.GormRepo) error {
	_, err := r.FindUserByUsername(ctx, "admin")
	if err == nil {
		return nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return err
	}

	pwHash, err := hash.HashPassword("admin")
	if err != nil {
		return err
	}
	return r.CreateUser(ctx, &models.User{
		Username:     "admin",
		FullName:     "Super User",
		PasswordHash: pwHash,
		IsSuperuser:  true,
	})
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	config.MustNonEmpty(cfg.Secret, "SECRET")
	config.MustNonEmpty(cfg.Algorithm, "ALGORITHM")

	logger := logging.New(cfg.LogLevel)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, db.DSN(cfg.DB_USER, cfg.DB_PASSWORD, cfg.DB_HOST, cfg.DB_PORT, cfg.DB_NAME))
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	if err := gdb.AutoMigrate(&models.User{}, &models.Product{}, &models.Order{}, &models.OrderDetail{}); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	ttl := time.Duration(cfg.AccessTokenTTLMn) * time.Minute
	issuer, err := tokens.NewIssuer([]byte(cfg.Secret), cfg.Algorithm, ttl)
	if err != nil {
		log.Fatalf("token issuer error: %v", err)
	}

	gormRepo := repo.NewGormRepo(gdb)
	blacklist := auth.NewBlacklist(ttl)
	authSvc := auth.NewService(gormRepo, issuer, blacklist)

	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = seedSuperuser(seedCtx, gormRepo)
	cancel()
	if err != nil {
		log.Fatalf("superuser seed error: %v", err)
	}

	producer := events.NewProducer(cfg.KafkaBrokers)

	var searchSvc *search.Service
	if cfg.ES_URL != "" {
		esClient, err := es.NewClient(cfg)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		searchSvc = search.NewService(esClient, "product")
	}

	e := echo.New()
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover(), echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		Auth:           authmw.NewAuth(authSvc),
		AuthHandler:    &handlers.AuthHandler{Svc: authSvc, Producer: producer},
		UserHandler:    &handlers.UserHandler{Repo: gormRepo, Producer: producer},
		ProductHandler: &handlers.ProductHandler{Repo: gormRepo, Producer: producer, Search: searchSvc},
		OrderHandler:   &handlers.OrderHandler{Repo: gormRepo, Producer: producer},
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	closeDB(gdb)

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}

func closeDB(gdb *gorm.DB) {
	sqlDB, err := gdb.DB()
	if err != nil {
		log.Printf("db() error: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Printf("db close error: %v", err)
	}
}
