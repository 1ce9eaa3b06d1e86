package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"poewiki/internal/model"
)

// RawRepository keeps the latest fetched body per source URL.
type RawRepository struct {
	DB *sql.DB
}

func (r *RawRepository) Save(ctx context.Context, p model.RawPage) error {
	var exists bool
	err := r.DB.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM wiki_raw_page WHERE source_url = $1)", p.SourceURL).Scan(&exists)
	if err != nil {
		return err
	}

	if exists {
		_, err = r.DB.ExecContext(ctx, `
			UPDATE wiki_raw_page
			SET run_id = $1, pipeline = $2, body = $3, fetched_at = $4
			WHERE source_url = $5
		`, p.RunID, p.Pipeline, p.Body, p.FetchedAt, p.SourceURL)
	} else {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		_, err = r.DB.ExecContext(ctx, `
			INSERT INTO wiki_raw_page
			(id, run_id, pipeline, source_url, body, fetched_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, p.ID, p.RunID, p.Pipeline, p.SourceURL, p.Body, p.FetchedAt)
	}

	return err
}

// Get returns the stored page for sourceURL, or sql.ErrNoRows.
func (r *RawRepository) Get(ctx context.Context, sourceURL string) (model.RawPage, error) {
	var p model.RawPage
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, run_id, pipeline, source_url, body, fetched_at
		FROM wiki_raw_page
		WHERE source_url = $1
	`, sourceURL).Scan(&p.ID, &p.RunID, &p.Pipeline, &p.SourceURL, &p.Body, &p.FetchedAt)
	return p, err
}

func (r *RawRepository) ListByPipeline(ctx context.Context, pipeline string) ([]model.RawPage, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, run_id, pipeline, source_url, body, fetched_at
		FROM wiki_raw_page
		WHERE pipeline = $1
		ORDER BY source_url
	`, pipeline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.RawPage
	for rows.Next() {
		var p model.RawPage
		if err := rows.Scan(&p.ID, &p.RunID, &p.Pipeline, &p.SourceURL, &p.Body, &p.FetchedAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}

	return list, rows.Err()
}
