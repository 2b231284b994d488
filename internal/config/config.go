// Package config
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	TransportADB  = "adb"
	TransportSSH  = "ssh"
	TransportNone = "none"

	SinkLog      = "log"
	SinkHTTP     = "http"
	SinkWS       = "ws"
	SinkRedis    = "redis"
	SinkPostgres = "postgres"
)

type Config struct {
	LogLevel  string
	LogFormat string `validate:"oneof=text json"`

	// Scenario
	CPUTest          bool
	AppName          string        `validate:"required"`
	ScenarioName     string        `validate:"required"`
	ScenarioDuration time.Duration `validate:"gte=0"`
	PollInterval     time.Duration `validate:"gt=0"`
	ScenarioCommand  string

	// Device
	DeviceTransport  string `validate:"oneof=adb ssh none"`
	DeviceSerial     string
	ADBPath          string `validate:"required_unless=DeviceTransport none"`
	SSHAddress       string `validate:"required_if=DeviceTransport ssh"`
	SSHUser          string `validate:"required_if=DeviceTransport ssh"`
	SSHKeyFile       string `validate:"required_if=DeviceTransport ssh"`
	SSHKnownHosts    string `validate:"required_if=DeviceTransport ssh"`
	VersionCommand   string `validate:"required"`
	ModernCPUCommand string `validate:"required"`
	LegacyCPUCommand string `validate:"required"`

	// Results
	ResultsSink      string `validate:"oneof=log http ws redis postgres"`
	ResultsURL       string `validate:"required_if=ResultsSink http"`
	ResultsWsURL     string `validate:"required_if=ResultsSink ws"`
	ResultsJWTSecret string
	ResultsJWTExpiry time.Duration

	RedisAddress  string `validate:"required_if=ResultsSink redis"`
	RedisUsername string
	RedisPassword string
	RedisDB       int
	ResultsStream string

	DatabaseURL string `validate:"required_if=ResultsSink postgres"`
}

var validate = validator.New()

func Load() *Config {
	_ = godotenv.Load()

	// Logs
	logLevel := getEnv("LOG_LEVEL", "info")
	logFormat := getEnv("LOG_FORMAT", "text")

	// Scenario
	cpuTest := getEnvBool("CPU_TEST", true)
	appName := getEnv("APP_NAME", "org.mozilla.geckoview_example")
	scenarioName := getEnv("SCENARIO_NAME", "")
	scenarioDuration := getEnvDuration("SCENARIO_DURATION", 30*time.Second)
	pollInterval := getEnvDuration("CPU_POLL_INTERVAL", time.Second)

	// Device
	transport := strings.ToLower(getEnv("DEVICE_TRANSPORT", TransportADB))
	serial := getEnv("DEVICE_SERIAL", "")
	adbPath := getEnv("ADB_PATH", "adb")

	var redisDB int
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		if db, err := strconv.Atoi(raw); err == nil {
			redisDB = db
		}
	}

	return &Config{
		LogLevel:  logLevel,
		LogFormat: logFormat,

		CPUTest:          cpuTest,
		AppName:          appName,
		ScenarioName:     scenarioName,
		ScenarioDuration: scenarioDuration,
		PollInterval:     pollInterval,
		ScenarioCommand:  getEnv("SCENARIO_COMMAND", ""),

		DeviceTransport:  transport,
		DeviceSerial:     serial,
		ADBPath:          adbPath,
		SSHAddress:       getEnv("SSH_ADDR", ""),
		SSHUser:          getEnv("SSH_USER", ""),
		SSHKeyFile:       getEnv("SSH_KEY_FILE", ""),
		SSHKnownHosts:    getEnv("SSH_KNOWN_HOSTS", ""),
		VersionCommand:   getEnv("VERSION_COMMAND", "getprop ro.build.version.release"),
		ModernCPUCommand: getEnv("MODERN_CPU_COMMAND", "top -O %CPU -n 1"),
		LegacyCPUCommand: getEnv("LEGACY_CPU_COMMAND", "top -n 1"),

		ResultsSink:      strings.ToLower(getEnv("RESULTS_SINK", SinkLog)),
		ResultsURL:       getEnv("RESULTS_URL", ""),
		ResultsWsURL:     getEnv("RESULTS_WS_URL", ""),
		ResultsJWTSecret: getEnv("RESULTS_JWT_SECRET", ""),
		ResultsJWTExpiry: getEnvDuration("RESULTS_JWT_EXPIRY", 5*time.Minute),

		RedisAddress:  getEnv("REDIS_ADDRESS", ""),
		RedisUsername: getEnv("REDIS_USERNAME", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,
		ResultsStream: getEnv("RESULTS_STREAM", "perf:cpu"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
	}
}

// Validate reports the first invalid field in a form suitable for a fatal log line.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	if validationErrors, ok := err.(validator.ValidationErrors); ok && len(validationErrors) > 0 {
		fe := validationErrors[0]
		return fmt.Errorf("invalid config: field %s failed %q", fe.Field(), fe.Tag())
	}

	return fmt.Errorf("invalid config: %w", err)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
