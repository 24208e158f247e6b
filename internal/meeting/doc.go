// Package meeting implements the meeting negotiation and scheduling engine.
//
// A negotiation turns a MeetingRequest (topic plus attendees) into either a
// committed ScheduledMeeting or a typed failure. The pipeline runs in stages:
//
//	COLLECTING_PROFILES -> NEGOTIATING -> VERIFYING -> COMMITTING -> NOTIFYING -> DONE
//
// Each attendee's past events are summarized into a RoutineProfile by the
// Profiler, the Negotiator asks a TextOracle for candidate slots and parses
// the reply, the Verifier checks real free/busy data for every candidate in
// order, and the Scheduler commits the first slot that is free for everyone
// and then notifies attendees.
//
// All external systems are reached through narrow ports (CalendarReader,
// CalendarWriter, Notifier, TextOracle). Adapters for Google Calendar, CalDAV,
// Gmail and OpenAI-compatible chat APIs live in sibling packages.
//
// Example usage:
//
//	sched, err := meeting.NewScheduler(meeting.SchedulerConfig{
//	    Reader:    calendarPort,
//	    Writer:    calendarPort,
//	    Notifier:  gmailNotifier,
//	    Oracle:    oracleClient,
//	    Organizer: meeting.Attendee{Name: "Ana", Email: "ana@example.com"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := sched.Schedule(ctx, meeting.MeetingRequest{
//	    Topic:     "Standup",
//	    Attendees: []meeting.Attendee{{Name: "Bo", Email: "bo@example.com", Role: "eng"}},
//	})
package meeting
