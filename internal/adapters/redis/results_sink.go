package redis

import (
	"context"

	"github.com/google/uuid"

	"browserperf/internal/domain"
)

const resultsStreamMaxLen = 10000

// ResultsSink appends each record to a stream, tagged with the run id so a
// consumer can regroup the three records of a scenario.
type ResultsSink struct {
	registry *Registry
	stream   string
	runID    uuid.UUID
}

func NewResultsSink(registry *Registry, stream string, runID uuid.UUID) *ResultsSink {
	return &ResultsSink{registry: registry, stream: stream, runID: runID}
}

func (s *ResultsSink) Submit(ctx context.Context, record domain.SummaryRecord) error {
	_, err := s.registry.Append(ctx, s.stream, record, map[string]any{
		"run_id": s.runID.String(),
		"test":   record.Test,
	}, resultsStreamMaxLen)
	return err
}
