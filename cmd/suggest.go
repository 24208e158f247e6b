package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/meetpilot/internal/meeting"
	"github.com/teemow/meetpilot/internal/tools/meeting_tools"
)

func newSuggestCmd() *cobra.Command {
	var (
		topic     string
		attendees []string
	)

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Propose meeting slots without booking anything",
		Long: `Profile every attendee's recent calendar and ask the language model for
slots that fit all routines. Nothing is verified, written or sent.

Attendees are given as "Name <email>" or a bare address, optionally followed
by ";role", e.g. --attendee "Ana <ana@example.com>;Product owner".`,
		Example: `  meetpilot suggest --topic "Roadmap" --attendee "Ana <ana@example.com>" --attendee bob@example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildRequest(topic, attendees, "")
			if err != nil {
				return err
			}
			return runSuggest(cmd, req)
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "Meeting topic")
	cmd.Flags().StringArrayVar(&attendees, "attendee", nil, "Attendee as \"Name <email>;role\" (repeatable)")
	_ = cmd.MarkFlagRequired("topic")
	_ = cmd.MarkFlagRequired("attendee")

	return cmd
}

func runSuggest(cmd *cobra.Command, req meeting.MeetingRequest) error {
	return withScheduler(cmd, func(ctx context.Context, scheduler *meeting.Scheduler) error {
		suggestion, err := scheduler.Suggest(ctx, req)
		if err != nil {
			return errors.New(meeting_tools.FormatError(err))
		}
		fmt.Fprint(cmd.OutOrStdout(), meeting_tools.FormatSuggestion(suggestion))
		return nil
	})
}

// buildRequest assembles a request from command flags. slot may be empty.
func buildRequest(topic string, attendeeValues []string, slot string) (meeting.MeetingRequest, error) {
	attendees, err := parseAttendees(attendeeValues)
	if err != nil {
		return meeting.MeetingRequest{}, err
	}
	req := meeting.MeetingRequest{Topic: topic, Attendees: attendees}
	if slot != "" {
		s, err := meeting.ParseSlot(slot)
		if err != nil {
			return meeting.MeetingRequest{}, fmt.Errorf("invalid slot %q: %w", slot, err)
		}
		req.PreselectedSlot = &s
	}
	return req, nil
}
