package cpu

import (
	"context"
	"fmt"

	"browserperf/internal/domain"
	"browserperf/internal/logger"
)

type Reporter struct {
	sink domain.ResultsSink
	log  logger.Logger
}

func NewReporter(sink domain.ResultsSink, log logger.Logger) *Reporter {
	return &Reporter{sink: sink, log: log}
}

// Records builds the per-scenario summary in submission order: avg, min, max.
func Records(scenario string, stats domain.CPUStats) []domain.SummaryRecord {
	return []domain.SummaryRecord{
		domain.NewCPURecord(scenario, domain.StatAvg, stats.Avg),
		domain.NewCPURecord(scenario, domain.StatMin, stats.Min),
		domain.NewCPURecord(scenario, domain.StatMax, stats.Max),
	}
}

// Report submits the three records in order and stops at the first failure.
func (r *Reporter) Report(ctx context.Context, scenario string, stats domain.CPUStats) error {
	for _, record := range Records(scenario, stats) {
		if err := r.sink.Submit(ctx, record); err != nil {
			return fmt.Errorf("failed to submit %s: %w", record.Test, err)
		}
		r.log.Debug("cpu: record submitted", "test", record.Test, "values", record.Values)
	}

	r.log.Info("cpu: scenario reported",
		"scenario", scenario,
		"avg", stats.Avg,
		"min", stats.Min,
		"max", stats.Max,
	)

	return nil
}
