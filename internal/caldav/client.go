package caldav

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"

	"github.com/teemow/meetpilot/internal/logging"
)

// DefaultCalendarPath is used when no path template is configured.
const DefaultCalendarPath = "/calendars/{email}/default/"

// DefaultConcurrency bounds parallel calendar reads in QueryFreeBusy.
const DefaultConcurrency = 4

const userAgent = "meetpilot/1.0"

// Config holds the CalDAV connection settings.
type Config struct {
	Endpoint string
	Username string
	Password string

	// CalendarPath is a template; "{email}" is replaced by the calendar
	// owner's address.
	CalendarPath string

	Concurrency int
	HTTPClient  *http.Client
}

// customTransport adds basic auth and the user agent to every request.
type customTransport struct {
	Username  string
	Password  string
	Transport http.RoundTripper
}

// RoundTrip adds required headers and authentication to each request.
func (t *customTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if t.Username != "" {
		req.SetBasicAuth(t.Username, t.Password)
	}
	req.Header.Set("User-Agent", userAgent)
	return t.Transport.RoundTrip(req)
}

// Client is a CalDAV client scoped to per-owner calendar collections.
type Client struct {
	caldav       *caldav.Client
	endpoint     *url.URL
	pathTemplate string
	concurrency  int
	logger       *slog.Logger
}

// NewClient creates a client for the server at cfg.Endpoint.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("caldav endpoint is required")
	}
	endpoint, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid caldav endpoint: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	base := http.DefaultTransport
	if cfg.HTTPClient != nil && cfg.HTTPClient.Transport != nil {
		base = cfg.HTTPClient.Transport
	}
	httpClient := &http.Client{
		Transport: &customTransport{Username: cfg.Username, Password: cfg.Password, Transport: base},
	}
	if cfg.HTTPClient != nil {
		httpClient.Timeout = cfg.HTTPClient.Timeout
	}

	c, err := caldav.NewClient(httpClient, cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}

	tmpl := cfg.CalendarPath
	if tmpl == "" {
		tmpl = DefaultCalendarPath
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	return &Client{
		caldav:       c,
		endpoint:     endpoint,
		pathTemplate: tmpl,
		concurrency:  concurrency,
		logger:       logger,
	}, nil
}

// CalendarPath returns the collection path of the owner's calendar.
func (c *Client) CalendarPath(owner string) string {
	email := url.PathEscape(strings.ToLower(strings.TrimSpace(owner)))
	p := strings.ReplaceAll(c.pathTemplate, "{email}", email)
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}

// ObjectPath returns the path of a calendar object in the owner's calendar.
func (c *Client) ObjectPath(owner, uid string) string {
	return path.Join(c.CalendarPath(owner), url.PathEscape(uid)+".ics")
}

// ObjectURL resolves an object path against the endpoint.
func (c *Client) ObjectURL(objectPath string) string {
	return c.endpoint.ResolveReference(&url.URL{Path: objectPath}).String()
}

// ListEvents returns the owner's events overlapping [start, end), with
// recurrences expanded.
func (c *Client) ListEvents(ctx context.Context, owner string, start, end time.Time) ([]Event, error) {
	calPath := c.CalendarPath(owner)
	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name:  ical.CompCalendar,
			Props: []string{ical.PropVersion},
			Comps: []caldav.CalendarCompRequest{{
				Name:     ical.CompEvent,
				AllProps: true,
			}},
		},
		CompFilter: caldav.CompFilter{
			Name: ical.CompCalendar,
			Comps: []caldav.CompFilter{{
				Name:  ical.CompEvent,
				Start: start.UTC(),
				End:   end.UTC(),
			}},
		},
	}

	objects, err := c.caldav.QueryCalendar(ctx, calPath, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query calendar: %w", err)
	}

	window := span{start: start, end: end}
	var events []Event
	for _, obj := range objects {
		if obj.Data == nil {
			continue
		}
		evs, err := eventsFromCalendar(obj.Data, window)
		if err != nil {
			c.logger.Warn("skipping unreadable calendar object",
				slog.String("path", obj.Path),
				logging.UserHash(owner),
				logging.Err(err))
			continue
		}
		events = append(events, evs...)
	}
	sortEvents(events)
	return events, nil
}

// PutEvent stores cal as the owner's calendar object uid. Writing the same
// uid twice replaces the object.
func (c *Client) PutEvent(ctx context.Context, owner, uid string, cal *ical.Calendar) (*caldav.CalendarObject, error) {
	objPath := c.ObjectPath(owner, uid)
	obj, err := c.caldav.PutCalendarObject(ctx, objPath, cal)
	if err != nil {
		return nil, fmt.Errorf("failed to put calendar object: %w", err)
	}
	if obj.Path == "" {
		obj.Path = objPath
	}
	return obj, nil
}
