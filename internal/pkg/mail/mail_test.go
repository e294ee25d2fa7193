package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageBytes(t *testing.T) {
	msg := Message{
		From:      "sender@gmail.com",
		To:        []string{"receiver@gmail.com"},
		Subject:   "Daily update",
		TextBody:  "Shipped feature X\n",
		MessageID: "<1b4e28ba@gmail.com>",
	}

	want := "From: sender@gmail.com\r\n" +
		"To: receiver@gmail.com\r\n" +
		"Subject: Daily update\r\n" +
		"Message-ID: <1b4e28ba@gmail.com>\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"Content-Transfer-Encoding: 8bit\r\n" +
		"\r\n" +
		"Shipped feature X\n"

	assert.Equal(t, want, string(msg.Bytes()))
	assert.Equal(t, msg.Bytes(), msg.Bytes())
}

func TestMessageBytesEncodesSubject(t *testing.T) {
	msg := Message{From: "a@b.c", To: []string{"d@e.f"}, Subject: "Mise à jour"}

	assert.Contains(t, string(msg.Bytes()), "Subject: =?utf-8?q?Mise_=C3=A0_jour?=\r\n")
	assert.NotContains(t, string(msg.Bytes()), "Message-ID")
}

func TestMessageValidate(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want error
	}{
		{"Valid", Message{From: "a@b.c", To: []string{"d@e.f"}}, nil},
		{"NoSender", Message{From: " ", To: []string{"d@e.f"}}, ErrNoSender},
		{"NoRecipients", Message{From: "a@b.c"}, ErrNoRecipients},
		{"SubjectInjection", Message{From: "a@b.c", To: []string{"d@e.f"}, Subject: "x\r\nBcc: z@y.x"}, ErrInvalidHeader},
		{"RecipientInjection", Message{From: "a@b.c", To: []string{"d@e.f\nBcc: z@y.x"}}, ErrInvalidHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.msg.Validate(), tt.want)
		})
	}
}

func TestNewFromDriver(t *testing.T) {
	cfg := SMTPConfig{Host: "smtp.gmail.com", Port: 465}

	m, err := NewFromDriver("", cfg)
	assert.NoError(t, err)
	assert.IsType(t, &SMTP{}, m)

	m, err = NewFromDriver("GoMail", cfg)
	assert.NoError(t, err)
	assert.IsType(t, &Gomail{}, m)

	_, err = NewFromDriver("sendgrid", cfg)
	assert.ErrorIs(t, err, ErrUnknownDriver)

	_, err = NewFromDriver(DriverSMTP, SMTPConfig{})
	assert.ErrorIs(t, err, ErrSMTPHostPortRequired)
}
