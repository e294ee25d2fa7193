package email

import (
	"context"

	"github.com/shandysiswandi/mailinator/internal/pkg/instrument"
	"github.com/shandysiswandi/mailinator/internal/pkg/mail"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Mail sends through a driver built for each send, since the credential is
// only known once the run's configuration is resolved.
type Mail struct {
	driver string
	base   mail.SMTPConfig
	ins    instrument.Instrumentation
}

func New(driver string, base mail.SMTPConfig, ins instrument.Instrumentation) *Mail {
	return &Mail{driver: driver, base: base, ins: ins}
}

func (m *Mail) Send(ctx context.Context, username, password string, msg mail.Message) error {
	ctx, span := m.ins.Tracer("dailyupdate.outbound.email").Start(ctx, "Send")
	defer span.End()

	span.SetAttributes(
		attribute.String("mail.driver", m.driver),
		attribute.String("mail.host", m.base.Host),
		attribute.Int("mail.port", m.base.Port),
	)

	cfg := m.base
	cfg.Username = username
	cfg.Password = password

	client, err := mail.NewFromDriver(m.driver, cfg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer client.Close()

	if err := client.Send(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
