package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shandysiswandi/mailinator/internal/dailyupdate/entity"
	"github.com/shandysiswandi/mailinator/internal/pkg/goerror"
)

// ResolveBody returns the update file for cfg.Date verbatim, or the
// placeholder when there is none.
func (s *Usecase) ResolveBody(ctx context.Context, cfg entity.Config) (string, error) {
	ctx, span := s.startSpan(ctx, "ResolveBody")
	defer span.End()

	name := cfg.FileName()
	data, err := s.repoSource.Read(ctx, cfg.DailyUpdateDir, name)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.InfoContext(ctx, "no daily update file, sending placeholder", "dir", cfg.DailyUpdateDir, "file", name)
		return entity.PlaceholderBody, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to read daily update file", "dir", cfg.DailyUpdateDir, "file", name, "error", err)
		return "", goerror.NewInternal(fmt.Errorf("read daily update %s: %w", name, err))
	}

	if len(data) == 0 {
		if cfg.EmptyAsPlaceholder {
			slog.InfoContext(ctx, "daily update file is empty, sending placeholder", "file", name)
			return entity.PlaceholderBody, nil
		}
		return "", nil
	}

	return string(data), nil
}
