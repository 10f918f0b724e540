package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/ignite/fibre-signup/internal/notify"
	"github.com/ignite/fibre-signup/internal/repository/postgres"
)

// SiteRepository provides read-only access to site and unit reference data.
type SiteRepository interface {
	ListSites(ctx context.Context) ([]postgres.Site, error)
	ListInactiveUnits(ctx context.Context, siteID int) ([]string, error)
	GetSiteName(ctx context.Context, siteID int) (string, error)
}

// EmailValidator checks address syntax and domain deliverability.
type EmailValidator interface {
	Validate(ctx context.Context, email string) (string, error)
}

// BotChecker evaluates a submission for automation signals.
type BotChecker interface {
	Check(honeypot, formLoadedAt string) (bool, string)
}

// Notifier relays accepted signups to support.
type Notifier interface {
	Send(ctx context.Context, n notify.Notification) error
}

// Handlers holds the request handlers and their collaborators.
type Handlers struct {
	repo       SiteRepository
	emails     EmailValidator
	bots       BotChecker
	notifier   Notifier
	blockedLog *log.Logger
}

// NewHandlers wires the handlers with their collaborators. blockedLog
// receives an entry for every submission the bot heuristic rejects; pass
// a file-backed logger in production.
func NewHandlers(repo SiteRepository, emails EmailValidator, bots BotChecker, notifier Notifier, blockedLog *log.Logger) *Handlers {
	return &Handlers{
		repo:       repo,
		emails:     emails,
		bots:       bots,
		notifier:   notifier,
		blockedLog: blockedLog,
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
