package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/teemow/meetpilot/internal/meeting"
)

// fakeGmailAPI records sent messages and serves a send-as signature.
type fakeGmailAPI struct {
	mu         sync.Mutex
	raw        [][]byte
	signature  string
	sigLookups int
	failSend   bool
}

func (f *fakeGmailAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/settings/sendAs/me"):
		f.sigLookups++
		if f.signature == "" {
			http.Error(w, `{"error":{"code":404,"message":"not found"}}`, http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"sendAsEmail": "me@x.com", "signature": f.signature})
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/messages/send"):
		if f.failSend {
			http.Error(w, `{"error":{"code":500,"message":"backend error"}}`, http.StatusInternalServerError)
			return
		}
		var msg struct {
			Raw string `json:"raw"`
		}
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		raw, err := base64.URLEncoding.DecodeString(msg.Raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.raw = append(f.raw, raw)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "msg-1"})
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, fake *fakeGmailAPI) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), srv.Client(), option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	return c
}

func TestSendEmail_Validation(t *testing.T) {
	c := newTestClient(t, &fakeGmailAPI{})
	ctx := context.Background()

	_, err := c.SendEmail(ctx, &EmailMessage{Subject: "s", Body: "b"})
	assert.ErrorContains(t, err, "recipient")
	_, err = c.SendEmail(ctx, &EmailMessage{To: []string{"a@x.com"}, Body: "b"})
	assert.ErrorContains(t, err, "subject")
	_, err = c.SendEmail(ctx, &EmailMessage{To: []string{"a@x.com"}, Subject: "s"})
	assert.ErrorContains(t, err, "body")
}

func TestSendEmail_PlainText(t *testing.T) {
	fake := &fakeGmailAPI{signature: "Olivia"}
	c := newTestClient(t, fake)

	id, err := c.SendEmail(context.Background(), &EmailMessage{
		To:      []string{"a@x.com", "b@x.com"},
		Subject: "Grüße",
		Body:    "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)

	require.Len(t, fake.raw, 1)
	m, err := mail.ReadMessage(bytes.NewReader(fake.raw[0]))
	require.NoError(t, err)

	assert.Equal(t, "a@x.com, b@x.com", m.Header.Get("To"))
	subject, err := new(mime.WordDecoder).DecodeHeader(m.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "Grüße", subject)

	body, err := io.ReadAll(m.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello\n\n-- \nOlivia", string(body))
}

func TestGetSignature_Cached(t *testing.T) {
	fake := &fakeGmailAPI{}
	c := newTestClient(t, fake)

	assert.Empty(t, c.GetSignature(context.Background()))
	assert.Empty(t, c.GetSignature(context.Background()))
	assert.Equal(t, 1, fake.sigLookups)
}

func TestSendEmail_Error(t *testing.T) {
	c := newTestClient(t, &fakeGmailAPI{failSend: true})

	_, err := c.SendEmail(context.Background(), &EmailMessage{To: []string{"a@x.com"}, Subject: "s", Body: "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send email")
}

func TestNotifier_Send(t *testing.T) {
	fake := &fakeGmailAPI{}
	n := NewNotifier(newTestClient(t, fake), nil)

	start := time.Date(2025, 3, 11, 10, 0, 0, 0, time.UTC)
	ana := meeting.Attendee{Name: "Ana", Email: "ana@x.com"}
	inv := meeting.Invitation{
		Recipient: ana,
		Organizer: meeting.Attendee{Name: "Olivia", Email: "olivia@x.com"},
		Meeting: meeting.ScheduledMeeting{
			EventID:        "evt-1",
			Start:          start,
			End:            start.Add(meeting.SlotDuration),
			Topic:          "Roadmap",
			Attendees:      []meeting.Attendee{ana},
			CalendarLink:   "https://calendar.example.com/evt-1",
			ConferenceLink: "https://meet.google.com/abc-defg-hij",
		},
	}

	require.NoError(t, n.Send(context.Background(), "ana@x.com", inv))
	require.Len(t, fake.raw, 1)

	m, err := mail.ReadMessage(bytes.NewReader(fake.raw[0]))
	require.NoError(t, err)
	assert.Equal(t, "ana@x.com", m.Header.Get("To"))
	assert.Equal(t, "Meeting Invite: Roadmap from Olivia", m.Header.Get("Subject"))

	mediaType, params, err := mime.ParseMediaType(m.Header.Get("Content-Type"))
	require.NoError(t, err)
	require.Equal(t, "multipart/mixed", mediaType)

	mr := multipart.NewReader(m.Body, params["boundary"])

	text, err := mr.NextPart()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text.Header.Get("Content-Type"), "text/plain"))
	textBody, err := io.ReadAll(text)
	require.NoError(t, err)
	assert.Contains(t, string(textBody), "Join: https://meet.google.com/abc-defg-hij")

	calPart, err := mr.NextPart()
	require.NoError(t, err)
	calType, calParams, err := mime.ParseMediaType(calPart.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "text/calendar", calType)
	assert.Equal(t, "REQUEST", calParams["method"])
	assert.Contains(t, calPart.Header.Get("Content-Disposition"), InviteFilename)

	encoded, err := io.ReadAll(calPart)
	require.NoError(t, err)
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(string(encoded), "\r\n", ""))
	require.NoError(t, err)

	cal, err := ical.NewDecoder(bytes.NewReader(decoded)).Decode()
	require.NoError(t, err)
	method, _ := cal.Props.Text(ical.PropMethod)
	assert.Equal(t, "REQUEST", method)
	require.Len(t, cal.Events(), 1)

	_, err = mr.NextPart()
	assert.Equal(t, io.EOF, err)
}

func TestNotifier_SendError(t *testing.T) {
	n := NewNotifier(newTestClient(t, &fakeGmailAPI{failSend: true}), nil)

	err := n.Send(context.Background(), "ana@x.com", meeting.Invitation{
		Recipient: meeting.Attendee{Email: "ana@x.com"},
		Meeting:   meeting.ScheduledMeeting{Topic: "t", Start: time.Now(), End: time.Now().Add(time.Minute)},
	})
	assert.Error(t, err)
}
