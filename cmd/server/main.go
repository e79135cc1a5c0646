package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"

	"mycogenesis/internal/auth"
	"mycogenesis/internal/cache"
	"mycogenesis/internal/config"
	"mycogenesis/internal/content"
	"mycogenesis/internal/coordinator"
	"mycogenesis/internal/data"
	"mycogenesis/internal/handler"
	"mycogenesis/internal/logger"
	"mycogenesis/internal/middleware"
	"mycogenesis/internal/render"
	"mycogenesis/internal/resilience"
	"mycogenesis/internal/sanity"
	"mycogenesis/internal/seo"
	"mycogenesis/internal/service"
	"mycogenesis/internal/session"
	"mycogenesis/internal/view"
	"mycogenesis/web"

	"github.com/jmoiron/sqlx"
)

// secondaryDB is implemented by both the Firestore and the SQL store.
type secondaryDB interface {
	content.Database
	service.RatingRepository
	coordinator.Pinger
	Close() error
}

func main() {
	// --- Configuration Loading ---
	cfg, err := config.LoadConfig()
	if err != nil {
		// Use fmt.Printf here because the logger is not yet initialized.
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Initialization ---
	log := logger.New(cfg.Log, nil)

	// --- Pre-flight Checks ---
	if cfg.Sanity.ProjectID == "" {
		log.Fatal(errors.New("sanity project id not set"), "Please set the MYCO_SANITY_PROJECT_ID environment variable.")
	}

	// --- Cache Initialization ---
	log.Info(fmt.Sprintf("Initializing %s cache...", cfg.Cache.Type))
	store, err := cache.New(cfg.Cache)
	if err != nil {
		log.Fatal(err, "Failed to initialize cache")
	}
	defer store.Close()

	// --- CMS Client ---
	cms, err := sanity.New(cfg.Sanity, store, log)
	if err != nil {
		log.Fatal(err, "Failed to initialize CMS client")
	}

	// --- Secondary Database ---
	ctx := context.Background()
	db, sqlDB, err := openDatabase(ctx, cfg, log)
	if err != nil {
		log.Fatal(err, "Failed to connect to the secondary database")
	}
	defer db.Close()

	// --- Content Orchestration ---
	var execOpts []resilience.Option
	if cfg.Resilience.Disabled {
		execOpts = append(execOpts, resilience.WithoutRetries())
	}
	executor := resilience.NewExecutor(log, resilience.NewFallbackStore(store, cfg.Resilience.FallbackTTL), execOpts...)
	orchestrator := content.NewOrchestrator(content.NewRegistry(cms, db), executor, log, content.Config{
		CacheTTL:         cfg.Content.CacheTTL,
		OperationTimeout: cfg.Content.OperationTimeout,
	})

	// --- Session Management Setup ---
	sessionManager := session.New(cfg.Session, cfg.Server.TLS.Enabled, cfg.DB.Driver, sqlDB)

	// --- Authentication and Authorization Setup ---
	log.Info("Initializing authentication and authorization...")
	authenticator, err := auth.NewAuthenticator(ctx, cfg.OIDC)
	if errors.Is(err, auth.ErrOIDCDisabled) {
		log.Warn("OIDC is disabled, the admin area is not reachable.")
	} else if err != nil {
		log.Fatal(err, "Failed to initialize authenticator")
	}
	enforcer, err := auth.NewEnforcer(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err, "Failed to initialize enforcer")
	}
	auth.SeedDefaultPolicies(enforcer, log)
	log.Info("Auth components initialized and policies seeded.")

	// --- View Template Initialization ---
	renderer := render.New(cms.Images())
	viewService, err := view.New(web.TemplateFS, cfg.Site, renderer.FuncMap())
	if err != nil {
		log.Fatal(err, "Failed to initialize view templates")
	}

	// --- Health Checks ---
	health := coordinator.New(log, 5*time.Second)
	health.Register("cms", cms)
	health.Register("database", db)
	health.Register("cache", coordinator.PingFunc(func(ctx context.Context) error {
		if _, err := store.Get(ctx, "healthcheck"); err != nil && !errors.Is(err, cache.ErrMiss) {
			return err
		}
		return nil
	}))

	// --- Dependency Injection and Handler Initialization ---
	seoBuilder := seo.NewBuilder(cfg.Site)
	handlers := handler.Handlers{
		Pages: handler.NewPageHandler(
			orchestrator,
			service.NewFAQService(db),
			service.NewTutorialService(sessionManager),
			sessionManager, viewService, seoBuilder, renderer, log, cfg.Site.PageSize,
		),
		API:   handler.NewAPIHandler(orchestrator),
		SEO:   handler.NewSeoHandler(cms, seoBuilder, log),
		Admin: handler.NewAdminHandler(orchestrator, health, sessionManager, viewService, log, cms),
		Auth:  handler.NewAuthHandler(authenticator, sessionManager, enforcer, cfg.OIDC.AdminEmails, log),
	}

	authzMiddleware := middleware.Authorizer(enforcer, sessionManager)
	errorMiddleware := middleware.Error(log, viewService)

	// --- Router Setup ---
	router := handler.NewRouter(handlers, authzMiddleware, errorMiddleware, sessionManager, web.StaticFS)

	// --- Server Initialization and Graceful Shutdown ---
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if cfg.Server.TLS.Enabled {
			log.Info(fmt.Sprintf("Starting HTTPS server on %s", server.Addr))
			if err := server.ListenAndServeTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err, "Could not start HTTPS server")
			}
		} else {
			log.Info(fmt.Sprintf("Starting HTTP server on %s", server.Addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err, "Could not start HTTP server")
			}
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Warn("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err, "Server forced to shutdown")
	}
	log.Info("Server exiting")
}

// openDatabase connects the secondary database selected by cfg.DB.Driver.
// The SQL handle is returned too so sessions can share it; it is nil for
// Firestore.
func openDatabase(ctx context.Context, cfg *config.Config, log logger.Logger) (secondaryDB, *sqlx.DB, error) {
	switch cfg.DB.Driver {
	case "firestore":
		var opts []option.ClientOption
		if cfg.Firebase.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.Firebase.CredentialsFile))
		}
		client, err := firestore.NewClient(ctx, cfg.Firebase.ProjectID, opts...)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Connected to Firestore.")
		return data.NewFirestoreStore(client), nil, nil
	default:
		log.Info("Connecting to the database...")
		db, err := data.NewDB(cfg.DB.Driver, cfg.DB.DSN)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Applying database migrations...")
		if err := data.ApplyMigrations(db, cfg.DB.Driver); err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Info("Migrations applied successfully.")
		return data.NewSQLStore(db), db, nil
	}
}
