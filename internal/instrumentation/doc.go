// Package instrumentation provides OpenTelemetry metrics and tracing for
// meetpilot.
//
// # Metrics
//
// Negotiation metrics:
//   - meeting_negotiations_total: finished negotiations by outcome (scheduled, suggested or a failure kind)
//   - meeting_negotiation_duration_seconds: end-to-end negotiation duration by outcome
//   - meeting_state_transitions_total: state machine transitions by target state
//
// Port metrics (calendar reads and writes, notifications, the text oracle):
//   - meeting_port_calls_total: calls by port, operation and status
//   - meeting_port_call_duration_seconds: call duration by port, operation and status
//
// MCP tool metrics:
//   - mcp_tool_invocations_total: tool invocations by tool name and status
//   - mcp_tool_duration_seconds: tool execution duration
//
// *Metrics implements the negotiation engine's Observer, so the provider's
// recorder can be handed to the scheduler directly.
//
// # Tracing
//
// Spans are created for each negotiation (meeting.schedule, meeting.suggest),
// each external call (<port>.<operation>) and each MCP tool invocation
// (tool.<name>).
//
// # Configuration
//
// Config is filled from the environment by the config package:
//
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp or stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout or none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_EXPORTER_OTLP_INSECURE: Disable TLS for OTLP (default: false)
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: meetpilot)
//
// Console (stdout) exporters write to Config.ConsoleOutput, stderr by default.
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	scheduler, err := meeting.NewScheduler(meeting.SchedulerConfig{
//		// ...
//		Observer: provider.Metrics(),
//	})
package instrumentation
