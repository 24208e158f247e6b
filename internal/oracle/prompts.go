package oracle

import (
	"fmt"
	"strings"
	"time"

	"github.com/teemow/meetpilot/internal/meeting"
)

// eventTimeLayout renders event bounds in summarization prompts.
const eventTimeLayout = time.RFC3339

// defaultEventLabel is used for events without a title.
const defaultEventLabel = "Busy"

// SummarizeRoutinePrompt asks for a one-sentence UTC routine of one attendee.
func SummarizeRoutinePrompt(attendee meeting.Attendee, events []meeting.PastEvent) string {
	var b strings.Builder
	b.WriteString("You are a calendar assistant. Based on the following event history, ")
	b.WriteString("summarize this user's preferred weekly routine in UTC.\n\n")
	if name := attendee.Label(); name != "" {
		fmt.Fprintf(&b, "User: %s\n\n", name)
	}
	b.WriteString("Event history:\n")
	for _, e := range events {
		label := strings.TrimSpace(e.Label)
		if label == "" {
			label = defaultEventLabel
		}
		fmt.Fprintf(&b, "- %s to %s | %s\n",
			e.Start.UTC().Format(eventTimeLayout),
			e.End.UTC().Format(eventTimeLayout),
			label)
	}
	b.WriteString("\nOnly return the summary like: ")
	b.WriteString(`"Usually free 10:00-12:00 and 14:00-16:00 UTC on weekdays."`)
	b.WriteString("\n")
	return b.String()
}

// ProposeSlotsPrompt asks for compatible slots on the target day.
func ProposeSlotsPrompt(profiles []meeting.RoutineProfile, targetDay time.Time, minSlots, maxSlots int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a meeting negotiation assistant. Based on the following participant routines, "+
		"suggest %d-%d compatible %d-minute time slots on %s in UTC that fit everyone's routine.\n\n",
		minSlots, maxSlots, int(meeting.SlotDuration.Minutes()), targetDay.UTC().Format("2006-01-02"))

	b.WriteString("Participant routines:\n")
	for _, p := range profiles {
		name := p.AttendeeName
		if name == "" {
			name = p.AttendeeEmail
		}
		fmt.Fprintf(&b, "- %s: %s\n", name, p.TextSummary)
	}

	b.WriteString("\nReturn only a bullet list of times in this format:\n")
	b.WriteString("- YYYY-MM-DD HH:MM\n")
	b.WriteString("- YYYY-MM-DD HH:MM\n")
	return b.String()
}
