package dailyupdate

import (
	"io"

	"github.com/shandysiswandi/mailinator/internal/dailyupdate/inbound"
	"github.com/shandysiswandi/mailinator/internal/dailyupdate/outbound/email"
	"github.com/shandysiswandi/mailinator/internal/dailyupdate/outbound/source"
	"github.com/shandysiswandi/mailinator/internal/dailyupdate/usecase"
	"github.com/shandysiswandi/mailinator/internal/pkg/clock"
	"github.com/shandysiswandi/mailinator/internal/pkg/config"
	"github.com/shandysiswandi/mailinator/internal/pkg/instrument"
	"github.com/shandysiswandi/mailinator/internal/pkg/mail"
	"github.com/shandysiswandi/mailinator/internal/pkg/validator"
)

type Dependency struct {
	Config     config.Config
	Instrument instrument.Instrumentation
	Clock      clock.Clocker
	Validator  validator.Validator
	MailDriver string
	Mail       mail.SMTPConfig
	Storage    source.Opener
	Out        io.Writer
}

func New(dep Dependency) *inbound.CLI {
	repoSource := source.New(dep.Storage, dep.Instrument)
	repoMail := email.New(dep.MailDriver, dep.Mail, dep.Instrument)

	uc := usecase.NewDailyUpdate(usecase.Dependency{
		Config:     dep.Config,
		Clock:      dep.Clock,
		Validator:  dep.Validator,
		RepoSource: repoSource,
		RepoMail:   repoMail,
		Instrument: dep.Instrument,
	})

	return inbound.NewCLI(uc, dep.Out)
}
