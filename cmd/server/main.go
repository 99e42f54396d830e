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

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/tbuchert/accounting-api/internal/config"
	"github.com/tbuchert/accounting-api/internal/events"
	"github.com/tbuchert/accounting-api/internal/handlers"
	"github.com/tbuchert/accounting-api/internal/logging"
	"github.com/tbuchert/accounting-api/internal/mail"
	loggingmw "github.com/tbuchert/accounting-api/internal/middleware/logging"
	"github.com/tbuchert/accounting-api/internal/repo"
	"github.com/tbuchert/accounting-api/internal/search"
	authsvc "github.com/tbuchert/accounting-api/internal/service/auth"
	"github.com/tbuchert/accounting-api/internal/service/vat"
	"github.com/tbuchert/accounting-api/internal/tokens"
	httpserver "github.com/tbuchert/accounting-api/internal/transport/http"
)

const (
	appName    = "accounting-api"
	appVersion = "0.1.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	cfg.MustValidate()

	logger := logging.New(cfg.LogLevel)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	store := repo.New(db, cfg.RefreshTokenTTL)
	signer := tokens.NewSigner(cfg.JWTSecret, cfg.AccessTokenTTL)
	mailer := &mail.SMTPMailer{
		Host:        cfg.EmailServer,
		Port:        cfg.EmailPort,
		Username:    cfg.EmailUsername,
		Password:    cfg.EmailPassword,
		From:        cfg.EmailFrom,
		FromName:    cfg.EmailFromName,
		FrontendURL: cfg.FrontendURL,
	}

	auth := &authsvc.Service{
		Repo:     store,
		Signer:   signer,
		Mailer:   mailer,
		ResetTTL: cfg.ResetTokenTTL,
	}

	ctx := logging.IntoContext(context.Background(), logger)
	if err := auth.EnsureDefaultAdmin(ctx, authsvc.AdminSeed{
		Email:     cfg.DefaultAdminEmail,
		Password:  cfg.DefaultAdminPassword,
		FirstName: cfg.DefaultAdminFirstName,
		LastName:  cfg.DefaultAdminLastName,
	}); err != nil {
		log.Fatalf("admin bootstrap error: %v", err)
	}

	producer := events.NewProducer(cfg.KafkaAddress)

	validator := vat.NewValidator(cfg.VIESURL, cfg.VATRetries, cfg.VATRetryDelay, cfg.VATTimeout)

	var esClient *elasticsearch.Client
	if cfg.ES_URL != "" {
		esClient, err = search.NewClient(cfg)
		if err != nil {
			logger.Warn("elasticsearch unavailable, search disabled", "error", err)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		Auth:               auth,
		AuthHandler:        &handlers.AuthHandler{Auth: auth, Producer: producer},
		UserHandler:        &handlers.UserHandler{DB: db, Producer: producer},
		ClientHandler:      &handlers.ClientHandler{DB: db, VAT: validator, ES: esClient},
		ItemHandler:        &handlers.ItemHandler{DB: db, ES: esClient},
		InvoiceHandler:     &handlers.InvoiceHandler{DB: db, Producer: producer},
		PaymentHandler:     &handlers.PaymentHandler{DB: db, Producer: producer},
		PreferencesHandler: &handlers.PreferencesHandler{DB: db},
		SearchHandler:      &handlers.SearchHandler{ES: esClient},
		StatusHandler:      handlers.NewStatusHandler(db, appName, appVersion, os.Getenv("ENVIRONMENT")),
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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()
	logger.Info("server started", "port", cfg.ServerPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if err := producer.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
