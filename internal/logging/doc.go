// Package logging provides structured logging helpers for meetpilot.
//
// All components log through log/slog. This package keeps attribute names
// consistent and makes sure attendee emails never reach the logs in clear
// text: use UserHash to correlate log lines for one attendee.
//
//	logger := logging.WithOperation(slog.Default(), "meeting.verify")
//	logger.Warn("availability unknown",
//	    logging.UserHash(email),
//	    logging.Err(err))
//
// NewLogger builds the process-wide handler used by the commands.
package logging
