package app

import (
	"github.com/shandysiswandi/mailinator/internal/dailyupdate"
)

func (a *App) initModules() error {
	a.dailyUpdate = dailyupdate.New(dailyupdate.Dependency{
		Config:     a.config,
		Instrument: a.ins,
		Clock:      a.clock,
		Validator:  a.validator,
		MailDriver: a.mailDriver,
		Mail:       a.mailConfig,
		Storage:    a.openStorage,
		Out:        a.stdout,
	})

	return nil
}
