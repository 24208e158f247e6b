package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	attrOutcome   = "outcome"
	attrState     = "state"
	attrPort      = "port"
	attrOperation = "operation"
	attrStatus    = "status"
	attrTool      = "tool"
)

// Metrics records negotiation and MCP tool metrics. A zero Metrics is a
// valid no-op recorder. It satisfies the engine's Observer contract.
type Metrics struct {
	negotiationsTotal   metric.Int64Counter
	negotiationDuration metric.Float64Histogram
	stateTransitions    metric.Int64Counter

	portCallsTotal   metric.Int64Counter
	portCallDuration metric.Float64Histogram

	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram
}

// NewMetrics creates a new Metrics instance with all instruments registered on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.negotiationsTotal, err = meter.Int64Counter(
		"meeting_negotiations_total",
		metric.WithDescription("Total number of finished meeting negotiations by outcome"),
		metric.WithUnit("{negotiation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create meeting_negotiations_total counter: %w", err)
	}

	m.negotiationDuration, err = meter.Float64Histogram(
		"meeting_negotiation_duration_seconds",
		metric.WithDescription("End-to-end meeting negotiation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.5, 1, 2.5, 5, 10, 20, 40, 60, 120),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create meeting_negotiation_duration_seconds histogram: %w", err)
	}

	m.stateTransitions, err = meter.Int64Counter(
		"meeting_state_transitions_total",
		metric.WithDescription("Total number of negotiation state transitions by target state"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create meeting_state_transitions_total counter: %w", err)
	}

	m.portCallsTotal, err = meter.Int64Counter(
		"meeting_port_calls_total",
		metric.WithDescription("Total number of calls to external collaborators"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create meeting_port_calls_total counter: %w", err)
	}

	m.portCallDuration, err = meter.Float64Histogram(
		"meeting_port_call_duration_seconds",
		metric.WithDescription("External collaborator call duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 20.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create meeting_port_call_duration_seconds histogram: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2.5, 5, 10, 30, 60),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// StateChanged records a transition into state.
func (m *Metrics) StateChanged(ctx context.Context, state string) {
	if m == nil || m.stateTransitions == nil {
		return
	}
	m.stateTransitions.Add(ctx, 1, metric.WithAttributes(attribute.String(attrState, state)))
}

// PortCall records one call to a calendar, notification or oracle port.
func (m *Metrics) PortCall(ctx context.Context, port, operation string, err error, duration time.Duration) {
	if m == nil || m.portCallsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrPort, port),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, statusOf(err)),
	)
	m.portCallsTotal.Add(ctx, 1, attrs)
	m.portCallDuration.Record(ctx, duration.Seconds(), attrs)
}

// Finished records the outcome of a negotiation. outcome is a final state
// or a failure kind.
func (m *Metrics) Finished(ctx context.Context, outcome string, duration time.Duration) {
	if m == nil || m.negotiationsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String(attrOutcome, outcome))
	m.negotiationsTotal.Add(ctx, 1, attrs)
	m.negotiationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordToolInvocation records an MCP tool invocation.
func (m *Metrics) RecordToolInvocation(ctx context.Context, tool, status string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrTool, tool),
		attribute.String(attrStatus, status),
	)
	m.toolInvocationsTotal.Add(ctx, 1, attrs)
	m.toolDuration.Record(ctx, duration.Seconds(), attrs)
}

func statusOf(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}
