package meeting_tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/meetpilot/internal/meeting"
	"github.com/teemow/meetpilot/internal/tools/common"
)

// Tool names.
const (
	ToolSuggestSlots = "meeting_suggest_slots"
	ToolSchedule     = "meeting_schedule"
)

// Service is the part of the scheduler the tools use.
type Service interface {
	Suggest(ctx context.Context, req meeting.MeetingRequest) (*meeting.Suggestion, error)
	Schedule(ctx context.Context, req meeting.MeetingRequest) (*meeting.Result, error)
}

var _ Service = (*meeting.Scheduler)(nil)

// RegisterTools registers the meeting tools with the MCP server.
func RegisterTools(s *mcpserver.MCPServer, svc Service, recorder common.ToolRecorder, logger *slog.Logger) {
	suggestTool := mcp.NewTool(ToolSuggestSlots,
		mcp.WithDescription("Profile the attendees' recent calendars and propose 30-minute meeting slots for the next day (UTC). Nothing is booked."),
		mcp.WithString("topic",
			mcp.Required(),
			mcp.Description("Meeting topic"),
		),
		mcp.WithArray("attendees",
			mcp.Required(),
			mcp.Description("Attendees as \"Name <email>\" or \"email\", optionally followed by \";role\""),
			mcp.WithStringItems(),
		),
	)
	s.AddTool(suggestTool, common.InstrumentedToolHandler(ToolSuggestSlots, recorder, logger,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSuggest(ctx, request, svc)
		}))

	scheduleTool := mcp.NewTool(ToolSchedule,
		mcp.WithDescription("Negotiate a 30-minute slot every attendee is free for, create the calendar event and send invitations. Pass slot to book a previously suggested time."),
		mcp.WithString("topic",
			mcp.Required(),
			mcp.Description("Meeting topic"),
		),
		mcp.WithArray("attendees",
			mcp.Required(),
			mcp.Description("Attendees as \"Name <email>\" or \"email\", optionally followed by \";role\""),
			mcp.WithStringItems(),
		),
		mcp.WithString("slot",
			mcp.Description("Preselected slot start (\"YYYY-MM-DD HH:MM\" UTC or RFC3339). When set, no new slots are negotiated."),
		),
	)
	s.AddTool(scheduleTool, common.InstrumentedToolHandler(ToolSchedule, recorder, logger,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSchedule(ctx, request, svc)
		}))
}

func handleSuggest(ctx context.Context, request mcp.CallToolRequest, svc Service) (*mcp.CallToolResult, error) {
	req, err := parseRequest(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	suggestion, err := svc.Suggest(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(FormatError(err)), nil
	}
	return mcp.NewToolResultText(FormatSuggestion(suggestion)), nil
}

func handleSchedule(ctx context.Context, request mcp.CallToolRequest, svc Service) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	req, err := parseRequest(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if slotStr := common.GetStringArg(args, "slot"); slotStr != "" {
		slot, err := meeting.ParseSlot(slotStr)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		req.PreselectedSlot = &slot
	}

	result, err := svc.Schedule(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(FormatError(err)), nil
	}
	return mcp.NewToolResultText(result.Summary()), nil
}

func parseRequest(args map[string]interface{}) (meeting.MeetingRequest, error) {
	topic := common.GetStringArg(args, "topic")
	if topic == "" {
		return meeting.MeetingRequest{}, errors.New("topic is required")
	}

	raw, err := common.ParseStringOrArray(args["attendees"], "attendees")
	if err != nil {
		return meeting.MeetingRequest{}, err
	}
	attendees := make([]meeting.Attendee, 0, len(raw))
	for _, s := range raw {
		a, err := meeting.ParseAttendee(s)
		if err != nil {
			return meeting.MeetingRequest{}, err
		}
		attendees = append(attendees, a)
	}

	return meeting.MeetingRequest{Topic: topic, Attendees: attendees}, nil
}

// FormatSuggestion renders the candidates and the routine each was based on.
func FormatSuggestion(s *meeting.Suggestion) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Suggested slots for %s:\n", s.TargetDay.UTC().Format("Monday, 02 January 2006"))
	for i, c := range s.Candidates {
		fmt.Fprintf(&b, "%d. %s\n", i+1, c)
	}

	b.WriteString("\nRoutines:\n")
	for _, p := range s.Profiles {
		name := p.AttendeeName
		if name == "" {
			name = p.AttendeeEmail
		}
		fmt.Fprintf(&b, "- %s: %s", name, p.TextSummary)
		if p.Degraded() {
			b.WriteString(" (calendar unavailable)")
		}
		b.WriteString("\n")
	}

	b.WriteString("\nPass one of the slots to meeting_schedule to book it.\n")
	return b.String()
}

// FormatError renders an engine failure for the caller.
func FormatError(err error) string {
	var merr *meeting.Error
	if !errors.As(err, &merr) {
		return fmt.Sprintf("Scheduling failed: %v", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Scheduling failed (%s): %s", merr.Kind, merr.Reason)
	if merr.Cause != nil {
		fmt.Fprintf(&b, ": %v", merr.Cause)
	}
	b.WriteString("\n")

	for _, v := range merr.Verdicts {
		fmt.Fprintf(&b, "- %s busy: %s", v.Slot, strings.Join(v.BusyAttendees, ", "))
		if len(v.Unverified) > 0 {
			fmt.Fprintf(&b, " (unverified: %s)", strings.Join(v.Unverified, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}
