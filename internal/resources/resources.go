package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/meetpilot/internal/meeting"
)

// Resource URIs.
const (
	OrganizerURI = "meetpilot://organizer"
	SettingsURI  = "meetpilot://settings"
)

// Settings is the scheduling configuration exposed to clients.
type Settings struct {
	CalendarBackend string
	OracleModel     string
	Lookback        time.Duration
	CallTimeout     time.Duration
}

// OrganizerSource returns the identity meetings are booked for.
// *meeting.Scheduler implements it.
type OrganizerSource interface {
	Organizer() meeting.Attendee
}

// RegisterResources registers the organizer and settings resources.
func RegisterResources(s *mcpserver.MCPServer, organizer OrganizerSource, settings Settings) {
	organizerResource := mcp.NewResource(
		OrganizerURI,
		"Meeting Organizer",
		mcp.WithResourceDescription("The account meetings are created on and invitations are sent from"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(organizerResource, organizerHandler(organizer))

	settingsResource := mcp.NewResource(
		SettingsURI,
		"Scheduling Settings",
		mcp.WithResourceDescription("Calendar backend, profiling window, slot length and timeouts used for negotiation"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(settingsResource, settingsHandler(settings))
}

func organizerHandler(organizer OrganizerSource) mcpserver.ResourceHandlerFunc {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		o := organizer.Organizer()
		return jsonContents(request.Params.URI, map[string]interface{}{
			"name":  o.Name,
			"email": o.Email,
		})
	}
}

func settingsHandler(settings Settings) mcpserver.ResourceHandlerFunc {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return jsonContents(request.Params.URI, map[string]interface{}{
			"calendarBackend":    settings.CalendarBackend,
			"oracleModel":        settings.OracleModel,
			"lookbackDays":       int(settings.Lookback / (24 * time.Hour)),
			"callTimeoutSeconds": settings.CallTimeout.Seconds(),
			"slotMinutes":        int(meeting.SlotDuration / time.Minute),
			"timezone":           "UTC",
			"minProposedSlots":   meeting.MinProposedSlots,
			"maxProposedSlots":   meeting.MaxProposedSlots,
		})
	}
}

func jsonContents(uri string, data map[string]interface{}) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
