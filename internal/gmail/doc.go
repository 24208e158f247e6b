// Package gmail sends meeting invitations through the Gmail API.
//
// Messages are built as RFC 2822 MIME documents and submitted with
// users.messages.send on behalf of the authenticated organizer. An
// invitation carries a plain-text body and a text/calendar REQUEST part so
// mail clients can offer accept and decline buttons.
//
// Example usage:
//
//	httpClient, err := google.HTTPClient(ctx, conf, google.NewFileTokenProvider(), "default")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client, err := gmail.NewClient(ctx, httpClient)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	msgID, err := client.SendEmail(ctx, &gmail.EmailMessage{
//	    To:      []string{"recipient@example.com"},
//	    Subject: "Hello",
//	    Body:    "This is a test email",
//	})
package gmail
