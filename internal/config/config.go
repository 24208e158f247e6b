// Package config loads meetpilot settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/teemow/meetpilot/internal/instrumentation"
)

// Calendar backends.
const (
	BackendGoogle = "google"
	BackendCalDAV = "caldav"
)

// Defaults applied when a variable is unset.
const (
	DefaultOracleBaseURL     = "https://api.groq.com/openai/v1"
	DefaultOracleModel       = "llama3-8b-8192"
	DefaultLookbackDays      = 14
	DefaultCallTimeout       = 20 * time.Second
	DefaultOrganizerEmail    = "no-reply@meetpilot.dev"
	DefaultOrganizerName     = "MeetPilot User"
	DefaultGoogleAccount     = "default"
	DefaultCalDAVPath        = "/calendars/{email}/default/"
	DefaultMetricsAddr       = ":9090"
	defaultSummaryTemp       = 0.2
	defaultProposalTemp      = 0.3
	defaultCalDAVConcurrency = 4
)

// Config is the complete runtime configuration.
type Config struct {
	Oracle    OracleConfig
	Google    GoogleConfig
	CalDAV    CalDAVConfig
	Organizer OrganizerConfig

	// CalendarBackend selects where attendee calendars are read and the
	// meeting is written: "google" or "caldav".
	CalendarBackend string

	Lookback    time.Duration
	CallTimeout time.Duration

	MetricsAddr string

	// Telemetry selects the OpenTelemetry exporters.
	Telemetry instrumentation.Config
}

// OracleConfig configures the chat completions backend.
type OracleConfig struct {
	APIKey              string
	BaseURL             string
	Model               string
	SummaryTemperature  float32
	ProposalTemperature float32
}

// GoogleConfig holds OAuth client credentials and the cached token account.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	Account      string
}

// CalDAVConfig holds the CalDAV server settings.
type CalDAVConfig struct {
	URL          string
	Username     string
	Password     string
	CalendarPath string
	Concurrency  int
}

// OrganizerConfig is the identity used when none can be resolved from Google.
type OrganizerConfig struct {
	Email string
	Name  string
}

// Load reads the given .env files (default ".env"; missing files are not
// an error) and then the environment. Variables already present in the
// environment win over .env values.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	lookbackDays, err := getEnvInt("MEETING_LOOKBACK_DAYS", DefaultLookbackDays)
	if err != nil {
		return nil, err
	}
	callTimeout, err := getEnvDuration("MEETING_CALL_TIMEOUT", DefaultCallTimeout)
	if err != nil {
		return nil, err
	}
	summaryTemp, err := getEnvFloat("ORACLE_SUMMARY_TEMPERATURE", defaultSummaryTemp)
	if err != nil {
		return nil, err
	}
	proposalTemp, err := getEnvFloat("ORACLE_PROPOSAL_TEMPERATURE", defaultProposalTemp)
	if err != nil {
		return nil, err
	}
	concurrency, err := getEnvInt("CALDAV_CONCURRENCY", defaultCalDAVConcurrency)
	if err != nil {
		return nil, err
	}
	telemetry, err := loadTelemetry()
	if err != nil {
		return nil, err
	}

	return &Config{
		Oracle: OracleConfig{
			APIKey:              getEnvDefault("ORACLE_API_KEY", os.Getenv("GROQ_API_KEY")),
			BaseURL:             getEnvDefault("ORACLE_BASE_URL", DefaultOracleBaseURL),
			Model:               getEnvDefault("ORACLE_MODEL", DefaultOracleModel),
			SummaryTemperature:  float32(summaryTemp),
			ProposalTemperature: float32(proposalTemp),
		},
		Google: GoogleConfig{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			Account:      getEnvDefault("GOOGLE_ACCOUNT", DefaultGoogleAccount),
		},
		CalDAV: CalDAVConfig{
			URL:          os.Getenv("CALDAV_URL"),
			Username:     os.Getenv("CALDAV_USERNAME"),
			Password:     os.Getenv("CALDAV_PASSWORD"),
			CalendarPath: getEnvDefault("CALDAV_CALENDAR_PATH", DefaultCalDAVPath),
			Concurrency:  concurrency,
		},
		Organizer: OrganizerConfig{
			Email: getEnvDefault("ORGANIZER_EMAIL", DefaultOrganizerEmail),
			Name:  getEnvDefault("ORGANIZER_NAME", DefaultOrganizerName),
		},
		CalendarBackend: strings.ToLower(getEnvDefault("CALENDAR_BACKEND", BackendGoogle)),
		Lookback:        time.Duration(lookbackDays) * 24 * time.Hour,
		CallTimeout:     callTimeout,
		MetricsAddr:     getEnvDefault("METRICS_ADDR", DefaultMetricsAddr),
		Telemetry:       telemetry,
	}, nil
}

// loadTelemetry reads the OTEL_* and exporter variables over the
// instrumentation defaults.
func loadTelemetry() (instrumentation.Config, error) {
	t := instrumentation.DefaultConfig()

	enabled, err := getEnvBool("INSTRUMENTATION_ENABLED", t.Enabled)
	if err != nil {
		return t, err
	}
	insecure, err := getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", false)
	if err != nil {
		return t, err
	}
	rate, err := getEnvFloat("OTEL_TRACES_SAMPLER_ARG", t.TraceSamplingRate)
	if err != nil {
		return t, err
	}

	t.ServiceName = getEnvDefault("OTEL_SERVICE_NAME", t.ServiceName)
	t.ServiceInstanceID = os.Getenv("OTEL_SERVICE_INSTANCE_ID")
	t.Enabled = enabled
	t.MetricsExporter = strings.ToLower(getEnvDefault("METRICS_EXPORTER", t.MetricsExporter))
	t.TracingExporter = strings.ToLower(getEnvDefault("TRACING_EXPORTER", t.TracingExporter))
	t.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	t.OTLPInsecure = insecure
	t.TraceSamplingRate = rate
	return t, nil
}

// Validate checks the settings needed to run a negotiation.
func (c *Config) Validate() error {
	if c.Oracle.APIKey == "" {
		return errors.New("ORACLE_API_KEY (or GROQ_API_KEY) is required")
	}
	if c.Lookback <= 0 {
		return fmt.Errorf("lookback must be positive, got %s", c.Lookback)
	}
	if c.CallTimeout <= 0 {
		return fmt.Errorf("call timeout must be positive, got %s", c.CallTimeout)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	switch c.CalendarBackend {
	case BackendGoogle:
	case BackendCalDAV:
		if c.CalDAV.URL == "" {
			return errors.New("CALDAV_URL is required for the caldav backend")
		}
		if !strings.Contains(c.CalDAV.CalendarPath, "{email}") {
			return fmt.Errorf("CALDAV_CALENDAR_PATH must contain {email}, got %q", c.CalDAV.CalendarPath)
		}
	default:
		return fmt.Errorf("invalid calendar backend %q, must be one of: google, caldav", c.CalendarBackend)
	}
	// Invitations always go out through Gmail.
	return c.ValidateGoogle()
}

// ValidateGoogle checks the OAuth client credentials.
func (c *Config) ValidateGoogle() error {
	if c.Google.ClientID == "" || c.Google.ClientSecret == "" {
		return errors.New("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required")
	}
	return nil
}

func getEnvDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return b, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return f, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}
