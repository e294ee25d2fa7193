package mail

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"strings"
)

var (
	// ErrNoRecipients is returned when To is empty.
	ErrNoRecipients = errors.New("no recipients provided")
	// ErrNoSender is returned when From is empty.
	ErrNoSender = errors.New("no sender provided")
	// ErrInvalidHeader is returned when a header value contains a line break.
	ErrInvalidHeader = errors.New("header value contains a line break")
)

// Message represents a plain-text email payload.
type Message struct {
	// From is the sender address.
	From string
	// To lists the recipients.
	To []string
	// Subject is the email subject line.
	Subject string
	// TextBody is the plain-text body, sent as is.
	TextBody string
	// MessageID is the optional Message-ID header, angle brackets included.
	MessageID string
}

// Mail abstracts an email provider.
type Mail interface {
	io.Closer
	// Send dispatches the given message using the underlying provider.
	Send(ctx context.Context, msg Message) error
}

// Validate checks that the message can be delivered.
func (m Message) Validate() error {
	if strings.TrimSpace(m.From) == "" {
		return ErrNoSender
	}
	if len(m.To) == 0 {
		return ErrNoRecipients
	}

	values := append([]string{m.From, m.Subject, m.MessageID}, m.To...)
	for _, v := range values {
		if strings.ContainsAny(v, "\r\n") {
			return ErrInvalidHeader
		}
	}
	return nil
}

// Bytes serializes the message as RFC 5322 text. No header depends on the
// time of the call, so equal messages serialize identically.
func (m Message) Bytes() []byte {
	var buf bytes.Buffer

	header := func(k, v string) {
		buf.WriteString(k)
		buf.WriteString(": ")
		buf.WriteString(v)
		buf.WriteString("\r\n")
	}

	header("From", m.From)
	header("To", strings.Join(m.To, ", "))
	header("Subject", mime.QEncoding.Encode("utf-8", m.Subject))
	if m.MessageID != "" {
		header("Message-ID", m.MessageID)
	}
	header("MIME-Version", "1.0")
	header("Content-Type", "text/plain; charset=UTF-8")
	header("Content-Transfer-Encoding", "8bit")
	buf.WriteString("\r\n")
	buf.WriteString(m.TextBody)

	return buf.Bytes()
}
