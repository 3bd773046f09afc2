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
	"github.com/labstack/echo/v4/middleware"

	"github.com/skvortsov/shop-backend/internal/config"
	"github.com/skvortsov/shop-backend/internal/es"
	"github.com/skvortsov/shop-backend/internal/handlers"
	"github.com/skvortsov/shop-backend/internal/logging"
	authmw "github.com/skvortsov/shop-backend/internal/middleware/auth"
	loggingmw "github.com/skvortsov/shop-backend/internal/middleware/logging"
	"github.com/skvortsov/shop-backend/internal/mykafka"
	"github.com/skvortsov/shop-backend/internal/service"
	"github.com/skvortsov/shop-backend/internal/token"
	httpserver "github.com/skvortsov/shop-backend/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LogLevel)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Ошибка инициализации БД: %v", err)
	}

	tokens := &token.Service{Secret: []byte(cfg.JWTSecret)}

	var prod *mykafka.Producer
	if cfg.KafkaAddress != "" {
		prod = mykafka.NewProducer([]string{cfg.KafkaAddress})
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		Gate:           &authmw.Gate{DB: db, Tokens: tokens},
		AuthHandler:    &handlers.AuthHandler{DB: db, Tokens: tokens, Producer: prod},
		ProductHandler: &handlers.ProductHandler{DB: db, Producer: prod},
		PostHandler:    &handlers.PostHandler{DB: db, Producer: prod},
		ReviewHandler:  &handlers.ReviewHandler{DB: db, Producer: prod},
		CartHandler:    &handlers.CartHandler{Svc: &service.CartService{DB: db}, Producer: prod},
		OrderHandler:   &handlers.OrderHandler{Svc: &service.OrderService{DB: db}, Producer: prod},
		UploadHandler:  &handlers.UploadHandler{Dir: cfg.UploadDir},
		UploadDir:      cfg.UploadDir,
	}

	if cfg.ESURL != "" {
		esClient, err := es.NewClient(cfg)
		if err != nil {
			log.Fatal(err)
		}
		deps.SearchHandler = &handlers.SearchHandler{ES: esClient, Index: "product"}
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
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

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
