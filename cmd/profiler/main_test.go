package main

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"browserperf/internal/adapters/logsink"
	"browserperf/internal/config"
	"browserperf/internal/domain"
	"browserperf/internal/logger"
)

func stubResultsSink(t *testing.T) *bool {
	t.Helper()

	closed := new(bool)
	orig := openResultsSink
	openResultsSink = func(_ context.Context, _ *config.Config, _ uuid.UUID, log logger.Logger) (domain.ResultsSink, func(), error) {
		return logsink.New(log), func() { *closed = true }, nil
	}
	t.Cleanup(func() { openResultsSink = orig })

	return closed
}

func testConfig(scenarioCommand string) *config.Config {
	return &config.Config{
		ScenarioName:     "cpuunittest",
		ScenarioDuration: time.Second,
		ScenarioCommand:  scenarioCommand,
		DeviceTransport:  config.TransportNone,
		ResultsSink:      config.SinkLog,
	}
}

func TestRunClosesSinkWhenScenarioFails(t *testing.T) {
	closed := stubResultsSink(t)

	err := run(context.Background(), testConfig("false"), logger.Nop())
	require.Error(t, err)
	assert.ErrorContains(t, err, "scenario failed")
	assert.True(t, *closed)
}

func TestRunClosesSinkOnSuccess(t *testing.T) {
	closed := stubResultsSink(t)

	err := run(context.Background(), testConfig("true"), logger.Nop())
	require.NoError(t, err)
	assert.True(t, *closed)
}
