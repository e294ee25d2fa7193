package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shandysiswandi/mailinator/internal/dailyupdate/entity"
	"github.com/shandysiswandi/mailinator/internal/pkg/clock"
	"github.com/shandysiswandi/mailinator/internal/pkg/goerror"
	"github.com/shandysiswandi/mailinator/internal/pkg/secret"
	"github.com/shandysiswandi/mailinator/internal/pkg/storage"
	"github.com/shandysiswandi/mailinator/internal/pkg/validator"
)

// ResolveConfig builds the run configuration from the loaded config source.
// A zero date means today on the usecase clock.
func (s *Usecase) ResolveConfig(ctx context.Context, date time.Time) (entity.Config, error) {
	ctx, span := s.startSpan(ctx, "ResolveConfig")
	defer span.End()

	if date.IsZero() {
		date = clock.Today(s.clock)
	}

	password, err := secret.Resolve(ctx,
		s.cfg.GetString(entity.KeyPassword),
		secret.Encoding(s.cfg.GetString(entity.KeyPasswordEncoding)),
	)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return entity.Config{}, err
	}
	if err != nil {
		return entity.Config{}, goerror.NewConfigInvalidField(err, entity.KeyPassword)
	}

	cfg := entity.Config{
		Sender:             strings.TrimSpace(s.cfg.GetString(entity.KeySender)),
		Password:           password,
		Receiver:           strings.TrimSpace(s.cfg.GetString(entity.KeyReceiver)),
		DailyUpdateDir:     strings.TrimSpace(s.cfg.GetString(entity.KeyDailyUpdateDir)),
		Extension:          strings.TrimPrefix(strings.TrimSpace(s.cfg.GetString(entity.KeyExtension)), "."),
		EmptyAsPlaceholder: s.cfg.GetBool(entity.KeyEmptyAsPlaceholder),
		Date:               date,
	}

	if err := s.validator.Validate(cfg); err != nil {
		var verr validator.V10ValidationError
		if errors.As(err, &verr) {
			return entity.Config{}, goerror.NewConfigInvalidFields(verr.Values())
		}
		return entity.Config{}, goerror.NewInternal(err)
	}

	if _, err := storage.ParseLocation(cfg.DailyUpdateDir); err != nil {
		return entity.Config{}, goerror.NewConfigInvalidField(err, entity.KeyDailyUpdateDir)
	}

	return cfg, nil
}
