package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/MahiShah30/hospital-sop-generator/internal/app"
	"github.com/MahiShah30/hospital-sop-generator/internal/authpw"
	"github.com/MahiShah30/hospital-sop-generator/internal/config"
	"github.com/MahiShah30/hospital-sop-generator/internal/email"
	"github.com/MahiShah30/hospital-sop-generator/internal/export"
	"github.com/MahiShah30/hospital-sop-generator/internal/schema"
	"github.com/MahiShah30/hospital-sop-generator/internal/search"
	"github.com/MahiShah30/hospital-sop-generator/internal/session"
	"github.com/MahiShah30/hospital-sop-generator/internal/storage"
	"github.com/MahiShah30/hospital-sop-generator/internal/store"
	"github.com/MahiShah30/hospital-sop-generator/internal/suggest"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := store.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	dataStore := store.NewPostgresStore(db)
	registry := schema.Load()

	objects, err := storage.NewMinioStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL, cfg.MinioBucket)
	if err != nil {
		log.Fatalf("object storage connection failed: %v", err)
	}

	pgfts := search.NewPgFTS(db)
	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
	}
	searchService := search.NewService(meiliClient, pgfts)
	if meiliClient != nil {
		defer meiliClient.Close()
	}
	searchService.ReindexAllFromPG(ctx)

	var sessions session.Store
	if strings.TrimSpace(cfg.RedisURL) != "" {
		log.Printf("Using Redis for refresh token storage")
		redisStore, err := session.NewRedisStore(cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer redisStore.Close()
		sessions = redisStore
	} else {
		log.Printf("Using PostgreSQL for refresh token storage")
		sessions = session.PGFallback{DB: dataStore}
	}

	accounts := authpw.NewService(dataStore)
	mailer := email.NewService(email.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
	})
	if !mailer.IsConfigured() {
		log.Printf("SMTP not configured; verification and reset tokens are returned in API responses")
	}

	var advisor *suggest.Service
	if strings.TrimSpace(cfg.OpenAIKey) != "" {
		advisor = suggest.NewOpenAIService(cfg.OpenAIKey)
	} else {
		log.Printf("OPENAI_API_KEY not set; AI suggestions disabled")
	}

	compiler := export.NewCompiler(registry, cfg.CompileExclude)
	renderer := export.NewChromeRenderer()

	service := app.New(cfg, dataStore, sessions, registry, objects, compiler, renderer, searchService, accounts, mailer, advisor)
	defer service.Close()

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("SOP generator API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
