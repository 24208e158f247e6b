package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/meetpilot/internal/meeting"
	"github.com/teemow/meetpilot/internal/tools/meeting_tools"
)

func newScheduleCmd() *cobra.Command {
	var (
		topic     string
		attendees []string
		slot      string
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Negotiate, book and send invitations",
		Long: `Find the first slot where every attendee is free, create the event on the
organizer's calendar and email each attendee an invitation.

With --slot the negotiation is skipped and only that slot is verified.
Slots are "YYYY-MM-DD HH:MM" in UTC or RFC 3339.`,
		Example: `  meetpilot schedule --topic "Roadmap" --attendee ana@example.com --attendee "Bob <bob@example.com>;Engineering"
  meetpilot schedule --topic "Roadmap" --attendee ana@example.com --slot "2025-03-05 10:00"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildRequest(topic, attendees, slot)
			if err != nil {
				return err
			}
			return runSchedule(cmd, req)
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "Meeting topic")
	cmd.Flags().StringArrayVar(&attendees, "attendee", nil, "Attendee as \"Name <email>;role\" (repeatable)")
	cmd.Flags().StringVar(&slot, "slot", "", "Book this slot instead of negotiating one")
	_ = cmd.MarkFlagRequired("topic")
	_ = cmd.MarkFlagRequired("attendee")

	return cmd
}

func runSchedule(cmd *cobra.Command, req meeting.MeetingRequest) error {
	return withScheduler(cmd, func(ctx context.Context, scheduler *meeting.Scheduler) error {
		result, err := scheduler.Schedule(ctx, req)
		if err != nil {
			return errors.New(meeting_tools.FormatError(err))
		}
		fmt.Fprint(cmd.OutOrStdout(), result.Summary())
		return nil
	})
}
