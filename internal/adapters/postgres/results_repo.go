package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"browserperf/internal/domain"
)

type ResultsRepository struct {
	db    *pgxpool.Pool
	runID uuid.UUID
}

func NewResultsRepository(db *pgxpool.Pool, runID uuid.UUID) *ResultsRepository {
	return &ResultsRepository{db: db, runID: runID}
}

// Submit stores one summary record. The record itself is kept verbatim in
// the data column.
func (r *ResultsRepository) Submit(ctx context.Context, record domain.SummaryRecord) error {
	stat, value := singleValue(record.Values)

	query := `
		INSERT INTO cpu_results (id, run_id, test, stat, value, unit, data, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		uuid.New(),
		r.runID,
		record.Test,
		stat,
		value,
		record.Unit,
		record,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert cpu result: %w", err)
	}

	return nil
}

func singleValue(values map[string]float64) (string, float64) {
	for k, v := range values {
		return k, v
	}
	return "", 0
}
