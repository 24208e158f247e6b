package invite

import (
	"fmt"
	"strings"

	"github.com/teemow/meetpilot/internal/meeting"
)

// Subject renders the invitation email subject.
func Subject(inv meeting.Invitation) string {
	return fmt.Sprintf("Meeting Invite: %s from %s", inv.Meeting.Topic, displayName(inv.Organizer))
}

// Body renders the plain-text invitation.
func Body(inv meeting.Invitation) string {
	m := inv.Meeting
	var b strings.Builder

	fmt.Fprintf(&b, "Hi %s,\n\n", displayName(inv.Recipient))
	fmt.Fprintf(&b, "%s has invited you to a meeting.\n\n", displayName(inv.Organizer))
	fmt.Fprintf(&b, "Topic: %s\n", m.Topic)
	if inv.Recipient.Role != "" {
		fmt.Fprintf(&b, "Your role: %s\n", inv.Recipient.Role)
	}
	fmt.Fprintf(&b, "Time: %s\n", m.Start.UTC().Format(meeting.HumanTimeLayout))
	fmt.Fprintf(&b, "Duration: %d minutes\n", int(m.End.Sub(m.Start).Minutes()))
	if m.HasConference() {
		fmt.Fprintf(&b, "Join: %s\n", m.ConferenceLink)
	}
	if m.CalendarLink != "" {
		fmt.Fprintf(&b, "Calendar: %s\n", m.CalendarLink)
	}
	b.WriteString("\nScheduled via MeetPilot\n")
	return b.String()
}

func displayName(a meeting.Attendee) string {
	if a.Name != "" {
		return a.Name
	}
	return a.Email
}
