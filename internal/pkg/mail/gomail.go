package mail

import (
	"context"

	"gopkg.in/gomail.v2"
)

// Gomail is a Mail implementation backed by gopkg.in/gomail.v2.
//
// gomail has no context support; ctx is checked before dialing and gomail
// applies its own fixed dial timeout.
type Gomail struct {
	cfg SMTPConfig
}

// NewGomail constructs a gomail sender.
func NewGomail(cfg SMTPConfig) (*Gomail, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, ErrSMTPHostPortRequired
	}
	return &Gomail{cfg: cfg}, nil
}

// Send delivers a message with a fresh gomail dialer.
func (g *Gomail) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	if msg.MessageID != "" {
		m.SetHeader("Message-ID", msg.MessageID)
	}
	m.SetBody("text/plain", msg.TextBody)

	// The dialer caches the negotiated auth, so it is never shared.
	d := gomail.NewDialer(g.cfg.Host, g.cfg.Port, g.cfg.Username, g.cfg.Password)
	d.SSL = g.cfg.ImplicitTLS
	d.TLSConfig = g.cfg.tlsConfig()
	d.LocalName = g.cfg.LocalName

	return d.DialAndSend(m)
}

// Close implements io.Closer for interface compatibility.
func (g *Gomail) Close() error {
	return nil
}
