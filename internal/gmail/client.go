package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"sync"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Client wraps the Gmail Users service
type Client struct {
	svc *gmail.UsersService

	mu        sync.Mutex
	signature *string // Cached signature of the primary send-as address
}

// NewClient creates a Gmail client on top of an authenticated HTTP client.
func NewClient(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return &Client{svc: svc.Users}, nil
}

// encodeRFC2047 encodes a string for use in email headers according to RFC 2047
// This is necessary for non-ASCII characters (like German umlauts) in subjects
func encodeRFC2047(s string) string {
	for _, r := range s {
		if r > 127 {
			return mime.BEncoding.Encode("UTF-8", s)
		}
	}
	return s
}

// GetSignature fetches the user's Gmail signature (primary send-as address)
// The signature is cached after the first fetch
func (c *Client) GetSignature(ctx context.Context) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.signature != nil {
		return *c.signature
	}

	// A missing signature never blocks sending.
	sendAs, err := c.svc.Settings.SendAs.Get("me", "me").Context(ctx).Do()
	if err != nil {
		return ""
	}
	sig := sendAs.Signature
	c.signature = &sig
	return sig
}

// appendSignature adds the user's signature to the email body
func (c *Client) appendSignature(ctx context.Context, body string, isHTML bool) string {
	signature := c.GetSignature(ctx)
	if signature == "" {
		return body
	}
	if isHTML {
		return body + "<br><br>-- <br>" + signature
	}
	return body + "\n\n-- \n" + signature
}

// SendEmail sends an email through Gmail API and returns the message id.
func (c *Client) SendEmail(ctx context.Context, msg *EmailMessage) (string, error) {
	if len(msg.To) == 0 {
		return "", fmt.Errorf("at least one recipient is required")
	}
	if msg.Subject == "" {
		return "", fmt.Errorf("subject is required")
	}
	if msg.Body == "" {
		return "", fmt.Errorf("body is required")
	}

	body := c.appendSignature(ctx, msg.Body, msg.IsHTML)
	raw, err := buildMessage(msg, body)
	if err != nil {
		return "", err
	}

	sent, err := c.svc.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	return sent.Id, nil
}

// buildMessage renders msg in RFC 2822 format. Messages with attachments
// become multipart/mixed.
func buildMessage(msg *EmailMessage, body string) ([]byte, error) {
	var b strings.Builder

	b.WriteString("To: " + strings.Join(msg.To, ", ") + "\r\n")
	if len(msg.Cc) > 0 {
		b.WriteString("Cc: " + strings.Join(msg.Cc, ", ") + "\r\n")
	}
	if len(msg.Bcc) > 0 {
		b.WriteString("Bcc: " + strings.Join(msg.Bcc, ", ") + "\r\n")
	}
	b.WriteString("Subject: " + encodeRFC2047(msg.Subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")

	bodyType := `text/plain; charset="UTF-8"`
	if msg.IsHTML {
		bodyType = `text/html; charset="UTF-8"`
	}

	if len(msg.Attachments) == 0 {
		b.WriteString("Content-Type: " + bodyType + "\r\n\r\n")
		b.WriteString(body)
		return []byte(b.String()), nil
	}

	mw := multipart.NewWriter(&b)
	b.WriteString("Content-Type: multipart/mixed; boundary=\"" + mw.Boundary() + "\"\r\n\r\n")

	part, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {bodyType}})
	if err != nil {
		return nil, fmt.Errorf("failed to create body part: %w", err)
	}
	if _, err := part.Write([]byte(body)); err != nil {
		return nil, fmt.Errorf("failed to write body part: %w", err)
	}

	for _, att := range msg.Attachments {
		disposition := "attachment"
		if att.Inline {
			disposition = "inline"
		}
		header := textproto.MIMEHeader{
			"Content-Type":              {att.ContentType},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {mime.FormatMediaType(disposition, map[string]string{"filename": att.Filename})},
		}
		part, err := mw.CreatePart(header)
		if err != nil {
			return nil, fmt.Errorf("failed to create attachment part: %w", err)
		}
		if _, err := part.Write(wrapBase64(att.Data)); err != nil {
			return nil, fmt.Errorf("failed to write attachment %s: %w", att.Filename, err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish message: %w", err)
	}
	return []byte(b.String()), nil
}

// wrapBase64 encodes data in 76 character lines.
func wrapBase64(data []byte) []byte {
	enc := base64.StdEncoding.EncodeToString(data)
	var b strings.Builder
	for len(enc) > 76 {
		b.WriteString(enc[:76] + "\r\n")
		enc = enc[76:]
	}
	b.WriteString(enc + "\r\n")
	return []byte(b.String())
}
