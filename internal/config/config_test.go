package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SCENARIO_NAME", "tp6-google")

	cfg := Load()

	assert.True(t, cfg.CPUTest)
	assert.Equal(t, "org.mozilla.geckoview_example", cfg.AppName)
	assert.Equal(t, time.Second, cfg.PollInterval)
	assert.Equal(t, TransportADB, cfg.DeviceTransport)
	assert.Equal(t, SinkLog, cfg.ResultsSink)
	assert.Equal(t, "top -O %CPU -n 1", cfg.ModernCPUCommand)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SCENARIO_NAME", "tp6-google")
	t.Setenv("CPU_TEST", "false")
	t.Setenv("CPU_POLL_INTERVAL", "250ms")
	t.Setenv("SCENARIO_DURATION", "not-a-duration")
	t.Setenv("RESULTS_SINK", "REDIS")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")
	t.Setenv("REDIS_DB", "3")

	cfg := Load()

	assert.False(t, cfg.CPUTest)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 30*time.Second, cfg.ScenarioDuration)
	assert.Equal(t, SinkRedis, cfg.ResultsSink)
	assert.Equal(t, 3, cfg.RedisDB)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	t.Run("missing scenario", func(t *testing.T) {
		cfg := Load()
		cfg.ScenarioName = ""
		assert.ErrorContains(t, cfg.Validate(), "ScenarioName")
	})

	t.Run("http sink needs url", func(t *testing.T) {
		t.Setenv("SCENARIO_NAME", "s")
		t.Setenv("RESULTS_SINK", "http")
		assert.ErrorContains(t, Load().Validate(), "ResultsURL")
	})

	t.Run("ssh transport needs address", func(t *testing.T) {
		t.Setenv("SCENARIO_NAME", "s")
		t.Setenv("DEVICE_TRANSPORT", "ssh")
		assert.ErrorContains(t, Load().Validate(), "SSHAddress")
	})

	t.Run("ssh transport needs known hosts", func(t *testing.T) {
		t.Setenv("SCENARIO_NAME", "s")
		t.Setenv("DEVICE_TRANSPORT", "ssh")
		t.Setenv("SSH_ADDR", "lab-host:22")
		t.Setenv("SSH_USER", "ci")
		t.Setenv("SSH_KEY_FILE", "/keys/id_ed25519")
		assert.ErrorContains(t, Load().Validate(), "SSHKnownHosts")

		t.Setenv("SSH_KNOWN_HOSTS", "/keys/known_hosts")
		assert.NoError(t, Load().Validate())
	})

	t.Run("unknown sink", func(t *testing.T) {
		t.Setenv("SCENARIO_NAME", "s")
		t.Setenv("RESULTS_SINK", "kafka")
		assert.ErrorContains(t, Load().Validate(), "ResultsSink")
	})
}
