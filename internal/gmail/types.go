package gmail

// EmailMessage represents an email to be sent
type EmailMessage struct {
	To      []string
	Cc      []string
	Bcc     []string
	Subject string
	Body    string
	IsHTML  bool

	Attachments []Attachment
}

// Attachment is an additional MIME part of an outgoing message.
type Attachment struct {
	Filename string

	// ContentType may carry parameters, e.g. "text/calendar; method=REQUEST".
	ContentType string
	Data        []byte

	// Inline parts are shown by the mail client instead of being offered
	// as a download.
	Inline bool
}
