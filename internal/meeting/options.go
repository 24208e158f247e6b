package meeting

import (
	"context"
	"log/slog"
	"time"

	"github.com/teemow/meetpilot/internal/instrumentation"
	"github.com/teemow/meetpilot/internal/logging"
)

// Options carries the ambient dependencies shared by every engine component.
type Options struct {
	Logger   *slog.Logger
	Observer Observer
	Timeouts Timeouts

	// Now returns the negotiation clock. Defaults to time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Observer == nil {
		o.Observer = nopObserver{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	o.Timeouts = o.Timeouts.withDefaults()
	return o
}

// callPort runs fn under its own timeout and span and reports the call.
func (o Options) callPort(ctx context.Context, port, operation string, timeout time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ctx, span := instrumentation.StartPortSpan(ctx, port, operation)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	o.Observer.PortCall(ctx, port, operation, err, time.Since(start))

	if err != nil {
		instrumentation.SetSpanError(span, err)
		o.Logger.DebugContext(ctx, "port call failed",
			logging.Port(port), logging.Operation(operation), logging.Err(err))
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	return err
}
