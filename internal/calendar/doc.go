// Package calendar provides a client for the Google Calendar API and the
// adapter that exposes it to the negotiation engine as its calendar reader
// and writer.
//
// The client reads an attendee's past events (single, expanded events
// ordered by start time), queries free/busy for a batch of attendees and
// creates events with a Google Meet conference.
//
// Example usage:
//
//	httpClient, err := google.HTTPClient(ctx, conf, google.NewFileTokenProvider(), "default")
//	if err != nil {
//	    return err
//	}
//	client, err := calendar.NewClient(ctx, httpClient)
//	if err != nil {
//	    return err
//	}
//	adapter := calendar.NewAdapter(client, organizerName)
package calendar
