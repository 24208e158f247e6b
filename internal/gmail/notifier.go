package gmail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/teemow/meetpilot/internal/invite"
	"github.com/teemow/meetpilot/internal/logging"
	"github.com/teemow/meetpilot/internal/meeting"
)

// InviteFilename is the name of the attached calendar request.
const InviteFilename = "invite.ics"

// Sender submits a single email.
type Sender interface {
	SendEmail(ctx context.Context, msg *EmailMessage) (string, error)
}

// Notifier delivers meeting invitations by email.
type Notifier struct {
	sender Sender
	logger *slog.Logger
}

var _ meeting.Notifier = (*Notifier)(nil)

// NewNotifier creates a notifier that sends through sender.
func NewNotifier(sender Sender, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{sender: sender, logger: logger}
}

// Send emails the invitation with a text/calendar REQUEST attached.
func (n *Notifier) Send(ctx context.Context, attendeeEmail string, inv meeting.Invitation) error {
	ics, err := invite.Request(inv)
	if err != nil {
		return fmt.Errorf("failed to render calendar request: %w", err)
	}

	id, err := n.sender.SendEmail(ctx, &EmailMessage{
		To:      []string{attendeeEmail},
		Subject: invite.Subject(inv),
		Body:    invite.Body(inv),
		Attachments: []Attachment{{
			Filename:    InviteFilename,
			ContentType: `text/calendar; charset="UTF-8"; method=` + invite.MethodRequest,
			Data:        ics,
		}},
	})
	if err != nil {
		return err
	}

	n.logger.Debug("invitation sent",
		logging.UserHash(attendeeEmail),
		logging.Domain(attendeeEmail),
		slog.String("message_id", id))
	return nil
}
