// Package meeting_tools exposes the meeting negotiation engine as MCP tools.
//
// Two tools mirror the two-step flow of the CLI:
//   - meeting_suggest_slots profiles the attendees and returns the
//     negotiated candidate slots without committing anything.
//   - meeting_schedule runs the full negotiation, optionally with a
//     preselected slot, creates the event and sends the invitations.
//
// Attendees are given as "Name <email>" or a bare address, optionally
// followed by ";role", either comma-separated or as an array.
package meeting_tools
