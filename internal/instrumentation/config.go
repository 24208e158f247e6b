package instrumentation

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// Exporter names.
const (
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// DefaultMetricInterval is the push interval of the OTLP and stdout metric readers.
const DefaultMetricInterval = 10 * time.Second

// Config selects the telemetry exporters. The environment is read by the
// config package; this type carries no env lookups of its own.
type Config struct {
	ServiceName       string
	ServiceVersion    string
	ServiceInstanceID string // defaults to the hostname

	// Enabled false yields a provider whose recorder and tracer are no-ops.
	Enabled bool

	MetricsExporter string // prometheus, otlp or stdout
	TracingExporter string // otlp, stdout or none

	// OTLPEndpoint is host:port without scheme, shared by both OTLP exporters.
	OTLPEndpoint string
	// OTLPInsecure disables TLS. Spans carry hashed attendee identifiers only.
	OTLPInsecure bool

	TraceSamplingRate float64

	// ConsoleOutput receives the stdout exporters' output. It defaults to
	// os.Stderr because stdout carries the MCP stdio transport.
	ConsoleOutput io.Writer

	// Logger receives exporter warnings. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns the settings used when nothing is configured:
// Prometheus metrics, no tracing.
func DefaultConfig() Config {
	return Config{
		ServiceName:       "meetpilot",
		ServiceVersion:    "unknown",
		Enabled:           true,
		MetricsExporter:   ExporterPrometheus,
		TracingExporter:   ExporterNone,
		TraceSamplingRate: 0.1,
	}
}

func (c Config) withDefaults() Config {
	if c.ServiceName == "" {
		c.ServiceName = "meetpilot"
	}
	if c.ConsoleOutput == nil {
		c.ConsoleOutput = os.Stderr
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Validate checks exporter names, the sampling rate and OTLP prerequisites.
func (c *Config) Validate() error {
	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		return fmt.Errorf("trace sampling rate must be between 0.0 and 1.0, got %f", c.TraceSamplingRate)
	}

	switch c.MetricsExporter {
	case "", ExporterPrometheus, ExporterOTLP, ExporterStdout:
	default:
		return fmt.Errorf("invalid metrics exporter %q, must be one of: prometheus, otlp, stdout", c.MetricsExporter)
	}

	switch c.TracingExporter {
	case "", ExporterOTLP, ExporterStdout, ExporterNone:
	default:
		return fmt.Errorf("invalid tracing exporter %q, must be one of: otlp, stdout, none", c.TracingExporter)
	}

	if c.OTLPEndpoint == "" && (c.MetricsExporter == ExporterOTLP || c.TracingExporter == ExporterOTLP) {
		return errors.New("OTLP endpoint is required when an OTLP exporter is selected")
	}
	return nil
}
