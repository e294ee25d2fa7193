package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/mailinator/internal/pkg/clock"
	"github.com/shandysiswandi/mailinator/internal/pkg/config"
	"github.com/shandysiswandi/mailinator/internal/pkg/instrument"
	"github.com/shandysiswandi/mailinator/internal/pkg/mail"
	"github.com/shandysiswandi/mailinator/internal/pkg/validator"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

type repoSource interface {
	Read(ctx context.Context, dir, name string) ([]byte, error)
}

type repoMail interface {
	Send(ctx context.Context, username, password string, msg mail.Message) error
}

type Usecase struct {
	cfg        config.Config
	clock      clock.Clocker
	validator  validator.Validator
	repoSource repoSource
	repoMail   repoMail
	ins        instrument.Instrumentation

	sent   metric.Int64Counter
	failed metric.Int64Counter
}

type Dependency struct {
	Config     config.Config
	Clock      clock.Clocker
	Validator  validator.Validator
	RepoSource repoSource
	RepoMail   repoMail
	Instrument instrument.Instrumentation
}

func NewDailyUpdate(dep Dependency) *Usecase {
	meter := dep.Instrument.Meter("dailyupdate.usecase")

	return &Usecase{
		cfg:        dep.Config,
		clock:      dep.Clock,
		validator:  dep.Validator,
		repoSource: dep.RepoSource,
		repoMail:   dep.RepoMail,
		ins:        dep.Instrument,
		sent:       counter(meter, "dailyupdate.sent", "Daily updates delivered"),
		failed:     counter(meter, "dailyupdate.failed", "Daily updates that could not be delivered"),
	}
}

func counter(meter metric.Meter, name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		slog.Warn("failed to create counter, using noop", "name", name, "error", err)
		return metricnoop.Int64Counter{}
	}
	return c
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("dailyupdate.usecase").Start(ctx, name)
}
