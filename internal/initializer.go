package internal

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	log "github.com/sirupsen/logrus"

	"server-notes/internal/config"
	"server-notes/internal/handlers"
	"server-notes/internal/managers"
	"server-notes/internal/migrations"
	"server-notes/internal/routing"
	"server-notes/internal/services"
	"server-notes/internal/store"
)

const shutdownTimeout = 10 * time.Second

func Init() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading configuration: ", err)
	}
	setLogLevel(cfg.LogLevel)

	// Connect to database and bring the schema up to date
	pool := initializeDatabase(cfg.Database)
	defer pool.Close()

	if err := migrations.RunMigrations(context.Background(), stdlib.OpenDBFromPool(pool)); err != nil {
		log.Fatal("Error running migrations: ", err)
	}

	// Initialize managers
	databaseMgr := managers.NewDatabaseManager(pool, cfg.Database.Timeout)
	mailMgr := managers.NewMailManagerFromConfig(cfg)
	throttleMgr := managers.NewThrottleManager(cfg.Redis)

	jwtMgr, err := managers.NewJWTManagerFromFile(cfg.Token.KeyPairPath, cfg.Token.LinkSecret)
	if err != nil {
		log.Fatal("Error initializing JWT manager: ", err)
	}

	// Initialize stores and services
	userStore := store.NewUserStore(databaseMgr.GetPool(), cfg.Database.Timeout)
	noteStore := store.NewNoteStore(databaseMgr.GetPool(), cfg.Database.Timeout)
	authService := services.NewAuthService(userStore, jwtMgr, mailMgr, throttleMgr, cfg)

	// Initialize router
	r := routing.InitRouter(databaseMgr, jwtMgr, authService, handlers.NewNoteHandler(noteStore), cfg.AllowedOrigins)
	log.Info("Initialized router")

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		log.Infof("Starting server on port %s...", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Error starting server: ", err)
		}
	}()

	// Handle interrupt signal gracefully
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Error shutting down server: ", err)
	}
}

func initializeDatabase(dbConfig config.Database) *pgxpool.Pool {
	log.Info("Initializing database")

	poolConfig, err := pgxpool.ParseConfig(dbConfig.DSN())
	if err != nil {
		log.Fatal("error configuring database: ", err)
	}

	poolConfig.MinConns = 5
	poolConfig.MaxConns = 30
	poolConfig.MaxConnIdleTime = time.Minute * 2
	poolConfig.HealthCheckPeriod = time.Minute * 1

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatal("error connecting to database: ", err)
	}
	log.Info("Connected to database")
	return pool
}

func setLogLevel(logLevel string) {
	switch logLevel {
	case "DEBUG":
		log.SetLevel(log.DebugLevel)
	case "INFO":
		log.SetLevel(log.InfoLevel)
	case "WARN":
		log.SetLevel(log.WarnLevel)
	case "ERROR":
		log.SetLevel(log.ErrorLevel)
	case "FATAL":
		log.SetLevel(log.FatalLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}

	log.SetReportCaller(true)

	log.SetOutput(os.Stdout)
}
