package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ghostwriterhq/linkedin-ghostwriter/backend/internal/config"
	"github.com/ghostwriterhq/linkedin-ghostwriter/backend/internal/gemini"
	"github.com/ghostwriterhq/linkedin-ghostwriter/backend/internal/handlers"
	"github.com/ghostwriterhq/linkedin-ghostwriter/backend/internal/linkedin"
	"github.com/ghostwriterhq/linkedin-ghostwriter/backend/internal/workers"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/cors"
	"golang.org/x/time/rate"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := config.FromEnv()

	// Root context for background workers and graceful shutdown
	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable is required")
	}

	// Database is optional. Without it the deferred-publish queue is
	// disabled; content generation and immediate publishing still work.
	var db *sql.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			log.Fatalf("Failed to ping database: %v", err)
		}

		// Run migrations on startup
		driver, err := postgres.WithInstance(db, &postgres.Config{})
		if err != nil {
			log.Fatalf("Failed to init migration driver: %v", err)
		}
		migrator, err := migrate.NewWithDatabaseInstance("file://db/migrations", "postgres", driver)
		if err != nil {
			log.Fatalf("Failed to create migrator: %v", err)
		}
		if err := migrator.Up(); err != nil && err != migrate.ErrNoChange {
			log.Fatalf("Database migration failed: %v", err)
		}
		log.Println("Database is up-to-date")
	} else {
		log.Println("DATABASE_URL not set; deferred publishing disabled")
	}

	gc, err := gemini.NewClient(rootCtx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatalf("Failed to init Gemini client: %v", err)
	}
	gen := gemini.NewService(gc)

	pub := &linkedin.Client{
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		Limiter: rate.NewLimiter(rate.Limit(cfg.LinkedInRPS), cfg.LinkedInBurst),
		Logger:  log.Default(),
	}

	var auth handlers.Authenticator
	if cfg.HasLinkedIn() {
		auth = &linkedin.OAuth{
			ClientID:     cfg.LinkedInClientID,
			ClientSecret: cfg.LinkedInClientSecret,
			RedirectURI:  cfg.LinkedInRedirectURI,
			HTTP:         &http.Client{Timeout: 30 * time.Second},
		}
	} else {
		log.Println("LinkedIn credentials not set; auth routes will return 503")
	}

	// Initialize handlers
	h := handlers.New(db, gen, pub, auth).WithTokenFile(cfg.TokenFile)
	if cfg.PublicOrigin != "" {
		h.WithPublicOrigin(cfg.PublicOrigin)
	}
	if cfg.SecureCookies {
		h.WithSecureCookies()
	}

	// Setup router
	r := mux.NewRouter()
	handlers.RegisterRoutes(h, r)

	// CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	srv := &http.Server{
		Handler:      handler,
		Addr:         ":" + cfg.Port,
		WriteTimeout: 60 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	// Handle graceful shutdown on SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Background: deferred-publish queue dispatcher and cleanup
	if db != nil && cfg.SchedulerEnabled {
		go h.StartScheduledPostsWorker(rootCtx, cfg.SchedulerInterval)

		cw := &workers.QueueCleanupWorker{
			DB:             db,
			RetentionHours: int(cfg.CleanupRetention / time.Hour),
		}
		go cw.Start(rootCtx)
	} else if !cfg.SchedulerEnabled {
		log.Println("[ScheduledPosts] disabled via SCHEDULER_ENABLED=false")
	}

	go func() {
		<-stop
		log.Println("Shutting down server...")
		cancel()
		ctx, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("Server starting on port %s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
	log.Println("Server stopped")
}
