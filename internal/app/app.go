package app

import (
	"context"
	"io"

	"github.com/shandysiswandi/mailinator/internal/dailyupdate/inbound"
	"github.com/shandysiswandi/mailinator/internal/pkg/clock"
	"github.com/shandysiswandi/mailinator/internal/pkg/config"
	"github.com/shandysiswandi/mailinator/internal/pkg/instrument"
	"github.com/shandysiswandi/mailinator/internal/pkg/mail"
	"github.com/shandysiswandi/mailinator/internal/pkg/storage"
	"github.com/shandysiswandi/mailinator/internal/pkg/uid"
	"github.com/shandysiswandi/mailinator/internal/pkg/validator"
)

// Version is stamped at build time with -ldflags "-X ...app.Version=...".
var Version = "dev"

const serviceName = "mailinator"

// App wires dependencies for one invocation.
type App struct {
	ctx    context.Context
	opts   Options
	stdout io.Writer
	stderr io.Writer

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	validator validator.Validator
	clock     clock.Clocker
	uuid      uid.StringID

	// resources
	mailDriver string
	mailConfig mail.SMTPConfig
	storage    storage.FactoryOptions

	// modules
	dailyUpdate *inbound.CLI

	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New loads configuration and wires the application. Errors carry a
// goerror code that decides the exit status.
func New(ctx context.Context, opts Options, stdout, stderr io.Writer) (*App, error) {
	app := &App{
		ctx:    ctx,
		opts:   opts,
		stdout: stdout,
		stderr: stderr,
	}

	for _, step := range []func() error{
		app.initLibraries,
		app.initConfig,
		app.initInstrument,
		app.initMail,
		app.initStorage,
		app.initModules,
		app.initClosers,
	} {
		if err := step(); err != nil {
			app.Stop(context.Background())
			return nil, err
		}
	}

	return app, nil
}
