package usecase

import (
	"strings"

	"github.com/shandysiswandi/mailinator/internal/dailyupdate/entity"
	"github.com/shandysiswandi/mailinator/internal/pkg/mail"
	"github.com/shandysiswandi/mailinator/internal/pkg/uid"
)

// BuildMessage assembles the daily update email. It has no side effects: the
// Message-ID is derived from sender, receiver and date.
func BuildMessage(cfg entity.Config, body string) mail.Message {
	date := cfg.DateString()

	return mail.Message{
		From:      cfg.Sender,
		To:        []string{cfg.Receiver},
		Subject:   entity.Subject,
		TextBody:  body,
		MessageID: "<" + uid.Named(cfg.Sender, cfg.Receiver, date) + "@" + domain(cfg.Sender) + ">",
	}
}

func domain(addr string) string {
	if i := strings.LastIndexByte(addr, '@'); i >= 0 && i < len(addr)-1 {
		return addr[i+1:]
	}
	return "mailinator.local"
}
