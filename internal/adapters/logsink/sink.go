// Package logsink writes summary records to the log. It is the default
// results endpoint for local runs.
package logsink

import (
	"context"
	"encoding/json"
	"fmt"

	"browserperf/internal/domain"
	"browserperf/internal/logger"
)

type Sink struct {
	log logger.Logger
}

func New(log logger.Logger) *Sink {
	return &Sink{log: log}
}

func (s *Sink) Submit(_ context.Context, record domain.SummaryRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	s.log.Info("cpu result", "record", string(data))
	return nil
}
