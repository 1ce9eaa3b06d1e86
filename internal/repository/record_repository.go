package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"poewiki/internal/model"
)

// RecordRepository stores finished runs together with their records.
type RecordRepository struct {
	DB *pgxpool.Pool
}

type recordRow struct {
	Position int
	Name     *string
	Data     string
}

func recordRows(rs model.RecordSet) ([]recordRow, error) {
	rows := make([]recordRow, len(rs))
	for i, rec := range rs {
		b, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		rows[i] = recordRow{Position: i, Data: string(b)}
		if name := rec.String("name"); name != "" {
			rows[i].Name = &name
		}
	}
	return rows, nil
}

// SaveRun inserts the run and all of its records in one transaction.
func (r *RecordRepository) SaveRun(ctx context.Context, run model.Run, rs model.RecordSet) error {
	rows, err := recordRows(rs)
	if err != nil {
		return err
	}

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO scrape_run
		(id, pipeline, started_at, finished_at, record_count, output_path)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, run.ID, run.Pipeline, run.StartedAt, run.FinishedAt, run.RecordCount, run.OutputPath)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(`
			INSERT INTO scrape_record (run_id, position, name, data)
			VALUES ($1, $2, $3, $4::json)
		`, run.ID, row.Position, row.Name, row.Data)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert records: %w", err)
	}

	return tx.Commit(ctx)
}

// Records loads the records of a run in their original order.
func (r *RecordRepository) Records(ctx context.Context, runID string) (model.RecordSet, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT data::text FROM scrape_record
		WHERE run_id = $1
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rs := model.RecordSet{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var rec model.Record
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, err
		}
		rs = append(rs, rec)
	}
	return rs, rows.Err()
}
