package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/teemow/meetpilot/internal/caldav"
	"github.com/teemow/meetpilot/internal/calendar"
	"github.com/teemow/meetpilot/internal/config"
	"github.com/teemow/meetpilot/internal/gmail"
	"github.com/teemow/meetpilot/internal/google"
	"github.com/teemow/meetpilot/internal/instrumentation"
	"github.com/teemow/meetpilot/internal/logging"
	"github.com/teemow/meetpilot/internal/meeting"
	"github.com/teemow/meetpilot/internal/oracle"
)

// loadConfig reads and validates the runtime configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newProvider starts telemetry. Console exporters write to stderr, which
// keeps stdout free for command output and the stdio transport.
func newProvider(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*instrumentation.Provider, error) {
	instrConfig := cfg.Telemetry
	instrConfig.ServiceVersion = version
	instrConfig.ConsoleOutput = os.Stderr
	instrConfig.Logger = logger

	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	return provider, nil
}

func googleCredentials(cfg *config.Config) google.Credentials {
	return google.Credentials{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
	}
}

// newScheduler wires the engine to the configured calendar backend, Gmail
// and the text oracle.
func newScheduler(ctx context.Context, cfg *config.Config, logger *slog.Logger, observer meeting.Observer) (*meeting.Scheduler, error) {
	conf := google.OAuthConfig(googleCredentials(cfg))
	httpClient, err := google.HTTPClient(ctx, conf, google.NewFileTokenProvider(), cfg.Google.Account)
	if err != nil {
		if errors.Is(err, google.ErrNoToken) {
			return nil, errors.New(google.GetAuthenticationErrorMessage(cfg.Google.Account))
		}
		return nil, err
	}

	identity, err := google.ResolveIdentity(ctx, httpClient, google.Identity{
		Name:  cfg.Organizer.Name,
		Email: cfg.Organizer.Email,
	})
	if err != nil {
		logger.Warn("could not resolve organizer from Google, using configured identity",
			logging.Err(err), logging.UserHash(identity.Email))
	}

	var (
		reader meeting.CalendarReader
		writer meeting.CalendarWriter
	)
	switch cfg.CalendarBackend {
	case config.BackendCalDAV:
		client, err := caldav.NewClient(caldav.Config{
			Endpoint:     cfg.CalDAV.URL,
			Username:     cfg.CalDAV.Username,
			Password:     cfg.CalDAV.Password,
			CalendarPath: cfg.CalDAV.CalendarPath,
			Concurrency:  cfg.CalDAV.Concurrency,
		}, logger)
		if err != nil {
			return nil, err
		}
		adapter := caldav.NewAdapter(client)
		reader, writer = adapter, adapter
	default:
		client, err := calendar.NewClient(ctx, httpClient)
		if err != nil {
			return nil, err
		}
		adapter := calendar.NewAdapter(client)
		reader, writer = adapter, adapter
	}

	mail, err := gmail.NewClient(ctx, httpClient)
	if err != nil {
		return nil, err
	}

	textOracle, err := oracle.NewClient(oracle.Config{
		APIKey:              cfg.Oracle.APIKey,
		BaseURL:             cfg.Oracle.BaseURL,
		Model:               cfg.Oracle.Model,
		SummaryTemperature:  &cfg.Oracle.SummaryTemperature,
		ProposalTemperature: &cfg.Oracle.ProposalTemperature,
	}, logger)
	if err != nil {
		return nil, err
	}

	logger.Debug("scheduler wired",
		"backend", cfg.CalendarBackend,
		logging.UserHash(identity.Email))

	return meeting.NewScheduler(meeting.SchedulerConfig{
		Reader:       reader,
		Writer:       writer,
		Notifier:     gmail.NewNotifier(mail, logger),
		Oracle:       textOracle,
		Organizer:    meeting.Attendee{Name: identity.Name, Email: identity.Email},
		Lookback:     cfg.Lookback,
		NewRequestID: uuid.NewString,
		Logger:       logger,
		Observer:     observer,
		Timeouts:     meeting.Uniform(cfg.CallTimeout),
	})
}

// parseAttendees parses "Name <email>;role" flag values.
func parseAttendees(values []string) ([]meeting.Attendee, error) {
	attendees := make([]meeting.Attendee, 0, len(values))
	for _, v := range values {
		a, err := meeting.ParseAttendee(v)
		if err != nil {
			return nil, err
		}
		attendees = append(attendees, a)
	}
	return attendees, nil
}

// withScheduler runs fn with a fully wired scheduler and a context that is
// canceled on SIGINT or SIGTERM.
func withScheduler(cmd *cobra.Command, fn func(ctx context.Context, scheduler *meeting.Scheduler) error) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	provider, err := newProvider(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := provider.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	scheduler, err := newScheduler(ctx, cfg, logger, provider.Metrics())
	if err != nil {
		return err
	}
	return fn(ctx, scheduler)
}
