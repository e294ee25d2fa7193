package inbound

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/shandysiswandi/mailinator/internal/dailyupdate/entity"
	"github.com/shandysiswandi/mailinator/internal/pkg/mail"
)

type usecase interface {
	ResolveConfig(ctx context.Context, date time.Time) (entity.Config, error)
	PrepareMessage(ctx context.Context, cfg entity.Config) (mail.Message, error)
	SendDailyUpdate(ctx context.Context, cfg entity.Config) error
}

// CLI runs the daily update for the command line and prints the outcome to
// out.
type CLI struct {
	uc  usecase
	out io.Writer
}

func NewCLI(uc usecase, out io.Writer) *CLI {
	return &CLI{uc: uc, out: out}
}

// SendInput holds the per-invocation options.
type SendInput struct {
	// Date selects the update file; zero means today.
	Date time.Time
	// DryRun prints the message instead of sending it.
	DryRun bool
}

// Send resolves the configuration and sends, or prints, the daily update.
func (h *CLI) Send(ctx context.Context, in SendInput) error {
	cfg, err := h.uc.ResolveConfig(ctx, in.Date)
	if err != nil {
		return err
	}

	if in.DryRun {
		msg, err := h.uc.PrepareMessage(ctx, cfg)
		if err != nil {
			return err
		}
		_, err = h.out.Write(msg.Bytes())
		return err
	}

	if err := h.uc.SendDailyUpdate(ctx, cfg); err != nil {
		return err
	}

	_, err = fmt.Fprintf(h.out, "Daily email update sent for %s\n", cfg.DateString())
	return err
}
