package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/fibre-signup/internal/api"
	"github.com/ignite/fibre-signup/internal/botcheck"
	"github.com/ignite/fibre-signup/internal/config"
	"github.com/ignite/fibre-signup/internal/emailcheck"
	"github.com/ignite/fibre-signup/internal/notify"
	"github.com/ignite/fibre-signup/internal/repository/postgres"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v", port, addr, err)
	}
	ln.Close()
	return nil
}

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Database.URL == "" {
		log.Fatal("No database configured: set DATABASE_URL or database.url in config/config.yaml")
	}

	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}

	// Read-only reference database. Connections are recycled before the
	// replica's idle timeout and health-checked by the pool on checkout.
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime())

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 10*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		log.Fatalf("Database unreachable: %v", err)
	}
	cancelPing()
	log.Println("[Server] Database connection verified")

	// Blocked bot submissions go to a dedicated append-only log for
	// operator review; the client only ever sees a generic 400.
	blockedFile, err := os.OpenFile(cfg.Signup.BlockedLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Fatalf("Failed to open blocked-attempts log: %v", err)
	}
	defer blockedFile.Close()
	blockedLog := log.New(blockedFile, "", log.LstdFlags)

	repo := postgres.NewSiteRepo(db)
	emails := emailcheck.NewValidator()
	bots := botcheck.New()
	notifier := notify.NewSender(cfg.Mail)
	if cfg.Mail.SuppressSend {
		log.Println("[Server] Mail sending suppressed (MAIL_SUPPRESS_SEND)")
	}

	handlers := api.NewHandlers(repo, emails, bots, notifier, blockedLog)
	healthChecker := api.NewHealthChecker(db)
	router := api.SetupRoutes(handlers, healthChecker, cfg.Signup.RatePerMinute)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  90 * time.Second,
	}

	go func() {
		log.Printf("[Server] Fibre signup API listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("[Server] Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Server] Shutdown error: %v", err)
	}
	if err := db.Close(); err != nil {
		log.Printf("[Server] Database close error: %v", err)
	}
	log.Println("[Server] Stopped")
}
