// Package store persists analyzed jobs and loads portal configurations from
// PostgreSQL.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"jobmate/workday-discovery/internal/model"
)

// Store wraps the connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New constructs a Store.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// LoadActivePortalConfigs fetches all is_active = true portal configs.
func (s *Store) LoadActivePortalConfigs(ctx context.Context) ([]model.PortalConfig, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, portal_url, search_text, country_id, location_hierarchy_id,
		        today_only, exclude_terms
		 FROM portal_configs
		 WHERE is_active = true`,
	)
	if err != nil {
		return nil, fmt.Errorf("query portal_configs: %w", err)
	}
	defer rows.Close()

	var configs []model.PortalConfig
	for rows.Next() {
		var c model.PortalConfig
		if err := rows.Scan(
			&c.ID, &c.PortalURL, &c.SearchText, &c.CountryID,
			&c.LocationHierarchyID, &c.TodayOnly, &c.ExcludeTerms,
		); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		configs = append(configs, c)
	}

	return configs, rows.Err()
}

// InsertAnalyzedJob upserts one analyzed job into job_feed with status
// PENDING, skipping duplicates by source_url. Returns true when a row was
// inserted, false for a duplicate.
func (s *Store) InsertAnalyzedJob(ctx context.Context, job model.AnalyzedJob) (bool, error) {
	rawJSON, err := json.Marshal(job)
	if err != nil {
		return false, fmt.Errorf("json.Marshal: %w", err)
	}

	tag, err := s.pool.Exec(ctx,
		`INSERT INTO job_feed (raw_data, source_url, status)
		 SELECT $1::jsonb, $2, 'PENDING'
		 WHERE NOT EXISTS (
		   SELECT 1 FROM job_feed WHERE source_url = $2
		 )`,
		string(rawJSON), job.Summary.URL,
	)
	if err != nil {
		return false, fmt.Errorf("insert job_feed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		log.Printf("[store] Duplicate job skipped: %s", job.Summary.URL)
		return false, nil
	}
	return true, nil
}
