package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/mailinator/internal/dailyupdate/inbound"
)

// shutdownTimeout bounds flushing telemetry on exit.
const shutdownTimeout = 5 * time.Second

// SendDailyUpdate runs the daily update once.
func (a *App) SendDailyUpdate(in inbound.SendInput) error {
	return a.dailyUpdate.Send(a.ctx, in)
}

// Stop closes resources in order. Safe on a partially built App.
func (a *App) Stop(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	for _, closer := range a.closers {
		if err := closer.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", closer.name, "error", err)
		}
	}
}
