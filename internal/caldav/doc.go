// Package caldav reads and writes meeting calendars on a CalDAV server.
//
// Attendee calendars are addressed through a path template in which
// "{email}" is replaced by the attendee's address, for example
// "/calendars/{email}/default/". CalDAV has no portable free/busy report, so
// busy windows are derived from the VEVENTs that overlap the query window.
// Recurring events are expanded locally from their RRULE.
package caldav
