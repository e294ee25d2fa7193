package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/mailinator/internal/dailyupdate/entity"
	"github.com/shandysiswandi/mailinator/internal/pkg/goerror"
	"github.com/shandysiswandi/mailinator/internal/pkg/mail"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

// PrepareMessage resolves the body and builds the message without sending.
func (s *Usecase) PrepareMessage(ctx context.Context, cfg entity.Config) (mail.Message, error) {
	body, err := s.ResolveBody(ctx, cfg)
	if err != nil {
		return mail.Message{}, err
	}
	return BuildMessage(cfg, body), nil
}

// SendDailyUpdate sends the update for cfg.Date. Delivery failures are
// returned as CodeMailNotSent errors carrying the server's reply.
func (s *Usecase) SendDailyUpdate(ctx context.Context, cfg entity.Config) error {
	ctx, span := s.startSpan(ctx, "SendDailyUpdate")
	defer span.End()

	span.SetAttributes(attribute.String("dailyupdate.date", cfg.DateString()))

	msg, err := s.PrepareMessage(ctx, cfg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	attrs := metric.WithAttributes(attribute.String("date", cfg.DateString()))
	if err := s.repoMail.Send(ctx, cfg.Sender, cfg.Password, msg); err != nil {
		s.failed.Add(ctx, 1, attrs)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.ErrorContext(ctx, "failed to send daily update", "config", cfg, "error", err)
		return goerror.NewMailNotSent(err)
	}

	s.sent.Add(ctx, 1, attrs)
	slog.InfoContext(ctx, "daily update sent", "config", cfg, "message_id", msg.MessageID)

	return nil
}
