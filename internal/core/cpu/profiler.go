// Package cpu samples the tested application's CPU usage on a device during
// a scenario and reports avg, min and max to the results endpoint.
package cpu

import (
	"context"
	"fmt"
	"time"

	"browserperf/internal/core/event"
	"browserperf/internal/domain"
	"browserperf/internal/logger"
	"browserperf/internal/workers"
)

type Options struct {
	Enabled      bool
	AppName      string
	Scenario     string
	PollInterval time.Duration
	Commands     Commands
}

// Profiler runs the polling task for one scenario.
type Profiler struct {
	opts     Options
	sampler  *Sampler
	reporter *Reporter
	bus      *event.Bus
	log      logger.Logger

	task *workers.Task
}

// StartProfiler attaches to the device, takes a first sample and starts
// polling. It returns nil when profiling is disabled or no device is
// attached. Shell errors during setup are returned.
func StartProfiler(
	ctx context.Context,
	shell domain.DeviceShell,
	sink domain.ResultsSink,
	scheduler *workers.Scheduler,
	bus *event.Bus,
	opts Options,
	log logger.Logger,
) (*Profiler, error) {
	if !opts.Enabled || shell == nil {
		log.Info("cpu: profiler not started", "enabled", opts.Enabled, "device", shell != nil)
		return nil, nil
	}

	p := NewProfiler(sink, bus, opts, log)

	if err := p.sampler.Attach(ctx, shell); err != nil {
		return nil, fmt.Errorf("failed to attach cpu sampler: %w", err)
	}

	if _, _, err := p.sampler.Poll(ctx); err != nil {
		return nil, fmt.Errorf("failed to take initial cpu sample: %w", err)
	}

	p.task = scheduler.RunByDuration(ctx, opts.PollInterval, &pollWorker{sampler: p.sampler})

	log.Info("cpu: profiler started", "scenario", opts.Scenario, "interval", opts.PollInterval)

	return p, nil
}

// NewProfiler builds an unattached profiler. Most callers want StartProfiler.
func NewProfiler(sink domain.ResultsSink, bus *event.Bus, opts Options, log logger.Logger) *Profiler {
	return &Profiler{
		opts:     opts,
		sampler:  NewSampler(opts.AppName, opts.Scenario, NewRouter(opts.Commands), bus, log),
		reporter: NewReporter(sink, log),
		bus:      bus,
		log:      log,
	}
}

func (p *Profiler) Sampler() *Sampler {
	return p.sampler
}

// Done is closed when polling ended on its own because of a shell failure.
// It is nil when no polling task is running.
func (p *Profiler) Done() <-chan struct{} {
	if p.task == nil {
		return nil
	}
	return p.task.Done()
}

// Stop ends polling, letting a poll in progress finish and keep its sample.
func (p *Profiler) Stop() error {
	if p.task == nil {
		return nil
	}

	err := p.task.Stop()
	p.task = nil

	if err != nil {
		return fmt.Errorf("cpu polling stopped: %w", err)
	}

	return nil
}

// Finish stops polling, aggregates the series and reports it.
func (p *Profiler) Finish(ctx context.Context) (domain.CPUStats, error) {
	if err := p.Stop(); err != nil {
		return domain.CPUStats{}, err
	}

	return p.Generate(ctx, p.opts.Scenario)
}

// Generate aggregates the series collected so far and reports it under
// scenario.
func (p *Profiler) Generate(ctx context.Context, scenario string) (domain.CPUStats, error) {
	series := p.sampler.Series()
	stats := Aggregate(series)

	if err := p.reporter.Report(ctx, scenario, stats); err != nil {
		return stats, err
	}

	if p.bus != nil {
		p.bus.Publish(domain.EventScenarioReported{
			Scenario: scenario,
			Stats:    stats,
			Samples:  len(series),
		})
	}

	return stats, nil
}

type pollWorker struct {
	sampler *Sampler
}

func (w *pollWorker) Name() string {
	return "cpu_poll"
}

func (w *pollWorker) Run(ctx context.Context) error {
	_, _, err := w.sampler.Poll(ctx)
	return err
}
