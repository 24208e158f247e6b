package meeting

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// ParseAttendee parses "Name <email>" or a bare address, optionally
// followed by ";role".
func ParseAttendee(s string) (Attendee, error) {
	addr, role, _ := strings.Cut(s, ";")
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return Attendee{}, fmt.Errorf("empty attendee %q", s)
	}

	parsed, err := mail.ParseAddress(addr)
	if err != nil {
		// Retry with the display name quoted, for "Doe, Jane <jane@x.com>".
		quoted, ok := quoteDisplayName(addr)
		if !ok {
			return Attendee{}, fmt.Errorf("invalid attendee %q: %w", s, err)
		}
		if parsed, err = mail.ParseAddress(quoted); err != nil {
			return Attendee{}, fmt.Errorf("invalid attendee %q: %w", s, err)
		}
	}
	return Attendee{
		Name:  parsed.Name,
		Email: parsed.Address,
		Role:  strings.TrimSpace(role),
	}, nil
}

func quoteDisplayName(addr string) (string, bool) {
	i := strings.LastIndex(addr, "<")
	if i <= 0 {
		return "", false
	}
	name := strings.TrimSpace(addr[:i])
	if name == "" || strings.Contains(name, `"`) {
		return "", false
	}
	return `"` + name + `" ` + addr[i:], true
}

// ParseSlot parses a slot start given as "YYYY-MM-DD HH:MM" (UTC) or RFC 3339.
func ParseSlot(s string) (CandidateSlot, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "UTC"))
	if t, err := time.ParseInLocation(slotLayout, s, time.UTC); err == nil {
		return NewCandidateSlot(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return CandidateSlot{}, fmt.Errorf("invalid slot %q: want %q or RFC 3339", s, slotLayout)
	}
	return NewCandidateSlot(t), nil
}
