package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"browserperf/internal/config"
	"browserperf/internal/core/cpu"
	"browserperf/internal/core/event"
	"browserperf/internal/device"
	"browserperf/internal/device/command"
	"browserperf/internal/domain"
	"browserperf/internal/logger"
	"browserperf/internal/workers"
)

// openResultsSink is swapped in tests.
var openResultsSink = newResultsSink

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("INFO: No .env file found, relying on system environment variables")
	}

	cfg := config.Load()

	scenario := flag.String("scenario", cfg.ScenarioName, "scenario name used in result test ids")
	duration := flag.Duration("duration", cfg.ScenarioDuration, "scenario length when no scenario command is set")
	flag.Parse()

	cfg.ScenarioName = *scenario
	cfg.ScenarioDuration = *duration

	if err := cfg.Validate(); err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	appLog := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, cfg, appLog)
	stop()

	if err != nil {
		appLog.Error("profiler failed", "scenario", cfg.ScenarioName, "error", err)
		os.Exit(1)
	}
}

// run owns every resource it opens; all of them are closed before it returns.
func run(ctx context.Context, cfg *config.Config, appLog logger.Logger) error {
	runID := uuid.New()
	appLog.Info("profiler: starting...", "scenario", cfg.ScenarioName, "run_id", runID)

	sink, closeSink, err := openResultsSink(ctx, cfg, runID, appLog)
	if err != nil {
		return fmt.Errorf("failed to init results sink %q: %w", cfg.ResultsSink, err)
	}
	defer closeSink()

	shell, deviceCloser, err := device.Open(ctx, cfg, appLog)
	if err != nil {
		return fmt.Errorf("failed to open device transport %q: %w", cfg.DeviceTransport, err)
	}
	defer deviceCloser.Close()

	bus := event.New(appLog)
	bus.Subscribe(domain.EventCPUSampled{}, func(e any) {
		ev := e.(domain.EventCPUSampled)
		appLog.Debug("cpu sampled", "scenario", ev.Scenario, "value", ev.Value, "capability", ev.Capability.String())
	})

	prof, err := cpu.StartProfiler(ctx, shell, sink, workers.NewScheduler(appLog), bus, cpu.Options{
		Enabled:      cfg.CPUTest,
		AppName:      cfg.AppName,
		Scenario:     cfg.ScenarioName,
		PollInterval: cfg.PollInterval,
		Commands: cpu.Commands{
			Version: cfg.VersionCommand,
			Modern:  cfg.ModernCPUCommand,
			Legacy:  cfg.LegacyCPUCommand,
		},
	}, appLog)
	if err != nil {
		return fmt.Errorf("failed to start cpu profiler: %w", err)
	}

	if err := runScenario(ctx, cfg, prof, appLog); err != nil {
		if prof != nil {
			_ = prof.Stop()
		}
		return fmt.Errorf("scenario failed: %w", err)
	}

	if prof == nil {
		appLog.Info("profiler: cpu profiling inactive, nothing to report")
		return nil
	}

	// Report even when the scenario was interrupted by a signal.
	stats, err := prof.Finish(context.WithoutCancel(ctx))
	if err != nil {
		return fmt.Errorf("failed to finish cpu profile: %w", err)
	}

	appLog.Info("profiler: done", "avg", stats.Avg, "min", stats.Min, "max", stats.Max)
	return nil
}

// runScenario drives the foreground scenario until it ends, the duration
// elapses, or polling fails.
func runScenario(ctx context.Context, cfg *config.Config, prof *cpu.Profiler, log logger.Logger) error {
	scenarioCtx, endScenario := context.WithTimeout(ctx, cfg.ScenarioDuration)
	defer endScenario()

	g, gCtx := errgroup.WithContext(scenarioCtx)

	g.Go(func() error {
		defer endScenario()
		return driveScenario(gCtx, cfg.ScenarioCommand, log)
	})

	if prof != nil {
		g.Go(func() error {
			select {
			case <-gCtx.Done():
				return nil
			case <-prof.Done():
				return prof.Stop()
			}
		})
	}

	return g.Wait()
}

func driveScenario(ctx context.Context, scenarioCommand string, log logger.Logger) error {
	if scenarioCommand == "" {
		<-ctx.Done()
		return nil
	}

	start := time.Now()
	parts := strings.Fields(scenarioCommand)

	_, err := command.NewCommand(parts[0], parts[1:]...).Run(ctx, func(line string, isErr bool) {
		log.Debug("scenario output", "line", line, "stderr", isErr)
	})
	if err != nil && ctx.Err() == nil {
		return err
	}

	log.Info("scenario finished", "time", time.Since(start))
	return nil
}
