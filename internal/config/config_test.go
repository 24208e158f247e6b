package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/meetpilot/internal/instrumentation"
)

var envKeys = []string{
	"ORACLE_API_KEY", "GROQ_API_KEY", "ORACLE_BASE_URL", "ORACLE_MODEL",
	"ORACLE_SUMMARY_TEMPERATURE", "ORACLE_PROPOSAL_TEMPERATURE",
	"MEETING_LOOKBACK_DAYS", "MEETING_CALL_TIMEOUT",
	"ORGANIZER_EMAIL", "ORGANIZER_NAME",
	"CALENDAR_BACKEND", "CALDAV_URL", "CALDAV_USERNAME", "CALDAV_PASSWORD",
	"CALDAV_CALENDAR_PATH", "CALDAV_CONCURRENCY",
	"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "GOOGLE_ACCOUNT",
	"METRICS_ADDR",
	"OTEL_SERVICE_NAME", "OTEL_SERVICE_INSTANCE_ID", "INSTRUMENTATION_ENABLED",
	"METRICS_EXPORTER", "TRACING_EXPORTER", "OTEL_EXPORTER_OTLP_ENDPOINT",
	"OTEL_EXPORTER_OTLP_INSECURE", "OTEL_TRACES_SAMPLER_ARG",
}

// clearEnv unsets every variable Load reads and restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, DefaultOracleBaseURL, cfg.Oracle.BaseURL)
	assert.Equal(t, DefaultOracleModel, cfg.Oracle.Model)
	assert.InDelta(t, 0.2, cfg.Oracle.SummaryTemperature, 0.001)
	assert.InDelta(t, 0.3, cfg.Oracle.ProposalTemperature, 0.001)
	assert.Equal(t, 14*24*time.Hour, cfg.Lookback)
	assert.Equal(t, DefaultCallTimeout, cfg.CallTimeout)
	assert.Equal(t, DefaultOrganizerEmail, cfg.Organizer.Email)
	assert.Equal(t, DefaultOrganizerName, cfg.Organizer.Name)
	assert.Equal(t, BackendGoogle, cfg.CalendarBackend)
	assert.Equal(t, DefaultGoogleAccount, cfg.Google.Account)
	assert.Equal(t, DefaultCalDAVPath, cfg.CalDAV.CalendarPath)
	assert.Equal(t, DefaultMetricsAddr, cfg.MetricsAddr)
	assert.Empty(t, cfg.Oracle.APIKey)
	assert.Equal(t, instrumentation.DefaultConfig(), cfg.Telemetry)
}

func TestLoad_GroqKeyFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("GROQ_API_KEY", "groq")

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, "groq", cfg.Oracle.APIKey)

	t.Setenv("ORACLE_API_KEY", "explicit")
	cfg, err = Load(missingEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, "explicit", cfg.Oracle.APIKey)
}

func TestLoad_ZeroTemperature(t *testing.T) {
	clearEnv(t)
	t.Setenv("ORACLE_SUMMARY_TEMPERATURE", "0")
	t.Setenv("ORACLE_PROPOSAL_TEMPERATURE", "0.0")

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)
	assert.Zero(t, cfg.Oracle.SummaryTemperature)
	assert.Zero(t, cfg.Oracle.ProposalTemperature)
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("ORACLE_MODEL", "from-env")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(`ORACLE_API_KEY=from-file
ORACLE_MODEL=ignored
MEETING_LOOKBACK_DAYS=7
MEETING_CALL_TIMEOUT=5s
CALENDAR_BACKEND=CalDAV
CALDAV_URL=https://dav.example.com
GOOGLE_CLIENT_ID=id
GOOGLE_CLIENT_SECRET=secret
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.Oracle.APIKey)
	assert.Equal(t, "from-env", cfg.Oracle.Model, "environment wins over .env")
	assert.Equal(t, 7*24*time.Hour, cfg.Lookback)
	assert.Equal(t, 5*time.Second, cfg.CallTimeout)
	assert.Equal(t, BackendCalDAV, cfg.CalendarBackend)
	assert.Equal(t, "https://dav.example.com", cfg.CalDAV.URL)
	require.NoError(t, cfg.Validate())
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"MEETING_LOOKBACK_DAYS", "two weeks"},
		{"MEETING_CALL_TIMEOUT", "20"},
		{"ORACLE_SUMMARY_TEMPERATURE", "warm"},
		{"ORACLE_PROPOSAL_TEMPERATURE", "hot"},
		{"CALDAV_CONCURRENCY", "many"},
		{"INSTRUMENTATION_ENABLED", "maybe"},
		{"OTEL_TRACES_SAMPLER_ARG", "lots"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load(missingEnvFile(t))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Oracle:          OracleConfig{APIKey: "k"},
			Google:          GoogleConfig{ClientID: "id", ClientSecret: "secret"},
			CalDAV:          CalDAVConfig{URL: "https://dav.example.com", CalendarPath: DefaultCalDAVPath},
			CalendarBackend: BackendGoogle,
			Telemetry:       instrumentation.DefaultConfig(),
			Lookback:        time.Hour,
			CallTimeout:     time.Second,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid google", mutate: func(*Config) {}},
		{name: "valid caldav", mutate: func(c *Config) { c.CalendarBackend = BackendCalDAV }},
		{name: "missing api key", mutate: func(c *Config) { c.Oracle.APIKey = "" }, wantErr: "ORACLE_API_KEY"},
		{name: "zero lookback", mutate: func(c *Config) { c.Lookback = 0 }, wantErr: "lookback"},
		{name: "zero timeout", mutate: func(c *Config) { c.CallTimeout = 0 }, wantErr: "timeout"},
		{
			name:    "bad telemetry",
			mutate:  func(c *Config) { c.Telemetry.TracingExporter = instrumentation.ExporterOTLP },
			wantErr: "telemetry",
		},
		{name: "unknown backend", mutate: func(c *Config) { c.CalendarBackend = "exchange" }, wantErr: "invalid calendar backend"},
		{name: "google without credentials", mutate: func(c *Config) { c.Google.ClientSecret = "" }, wantErr: "GOOGLE_CLIENT_ID"},
		{
			name:    "caldav without google credentials",
			mutate:  func(c *Config) { c.CalendarBackend = BackendCalDAV; c.Google.ClientID = "" },
			wantErr: "GOOGLE_CLIENT_ID",
		},
		{
			name:    "caldav without url",
			mutate:  func(c *Config) { c.CalendarBackend = BackendCalDAV; c.CalDAV.URL = "" },
			wantErr: "CALDAV_URL",
		},
		{
			name:    "caldav path without placeholder",
			mutate:  func(c *Config) { c.CalendarBackend = BackendCalDAV; c.CalDAV.CalendarPath = "/cal/" },
			wantErr: "{email}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_Telemetry(t *testing.T) {
	clearEnv(t)
	t.Setenv("ORACLE_API_KEY", "k")
	t.Setenv("OTEL_SERVICE_NAME", "meetpilot-test")
	t.Setenv("TRACING_EXPORTER", "OTLP")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "true")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.5")

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "meetpilot-test", cfg.Telemetry.ServiceName)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, instrumentation.ExporterPrometheus, cfg.Telemetry.MetricsExporter)
	assert.Equal(t, instrumentation.ExporterOTLP, cfg.Telemetry.TracingExporter)
	assert.Equal(t, "localhost:4318", cfg.Telemetry.OTLPEndpoint)
	assert.True(t, cfg.Telemetry.OTLPInsecure)
	assert.InDelta(t, 0.5, cfg.Telemetry.TraceSamplingRate, 1e-6)
	assert.NoError(t, cfg.Telemetry.Validate())
}
