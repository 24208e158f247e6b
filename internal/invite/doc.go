// Package invite renders meeting invitations: the iCalendar (RFC 5545) event
// attached to invitation emails and written to CalDAV calendars, and the
// plain-text email subject and body.
package invite
