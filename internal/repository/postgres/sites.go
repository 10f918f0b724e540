package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Site is a fibre-enabled property served by the network.
type Site struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ErrSiteNotFound is returned when a site id has no matching row.
var ErrSiteNotFound = errors.New("site not found")

// SiteRepo reads site and unit reference data from the Heimdall replica.
// All access is read-only; connections come from the shared pool and are
// returned to it when the result set is closed.
type SiteRepo struct{ db *sql.DB }

// NewSiteRepo creates a Postgres-backed site repository.
func NewSiteRepo(db *sql.DB) *SiteRepo { return &SiteRepo{db: db} }

// ListSites returns all sites ordered by name.
func (r *SiteRepo) ListSites(ctx context.Context) ([]Site, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM sites ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	defer rows.Close()

	sites := []Site{}
	for rows.Next() {
		var s Site
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("scan site: %w", err)
		}
		sites = append(sites, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	return sites, nil
}

// ListInactiveUnits returns unit numbers at the site whose service status
// is 'Inactive', ordered ascending. Only inactive units are open for signup.
func (r *SiteRepo) ListInactiveUnits(ctx context.Context, siteID int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.unit_number
		FROM services s
		WHERE s.site_id = $1
		  AND s.status = 'Inactive'
		ORDER BY s.unit_number
	`, siteID)
	if err != nil {
		return nil, fmt.Errorf("list inactive units: %w", err)
	}
	defer rows.Close()

	units := []string{}
	for rows.Next() {
		var unit string
		if err := rows.Scan(&unit); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		units = append(units, unit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list inactive units: %w", err)
	}
	return units, nil
}

// GetSiteName resolves a site id to its name.
func (r *SiteRepo) GetSiteName(ctx context.Context, siteID int) (string, error) {
	var name string
	err := r.db.QueryRowContext(ctx, `SELECT name FROM sites WHERE id = $1`, siteID).Scan(&name)
	if err == sql.ErrNoRows {
		return "", ErrSiteNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get site name: %w", err)
	}
	return name, nil
}
