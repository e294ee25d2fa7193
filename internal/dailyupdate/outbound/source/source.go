package source

import (
	"context"
	"io"

	"github.com/shandysiswandi/mailinator/internal/pkg/instrument"
	"github.com/shandysiswandi/mailinator/internal/pkg/storage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Opener returns the storage backend for a driver.
type Opener func(ctx context.Context, driver string) (storage.Storage, error)

// Source reads update files from a local directory or an object store.
type Source struct {
	open Opener
	ins  instrument.Instrumentation
}

func New(open Opener, ins instrument.Instrumentation) *Source {
	return &Source{open: open, ins: ins}
}

// Read returns the content of name under dir. A missing file yields an error
// wrapping goerror.ErrNotFound.
func (s *Source) Read(ctx context.Context, dir, name string) ([]byte, error) {
	ctx, span := s.ins.Tracer("dailyupdate.outbound.source").Start(ctx, "Read")
	defer span.End()

	data, err := s.read(ctx, dir, name)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("dailyupdate.size", len(data)))

	return data, nil
}

func (s *Source) read(ctx context.Context, dir, name string) ([]byte, error) {
	loc, err := storage.ParseLocation(dir)
	if err != nil {
		return nil, err
	}

	stg, err := s.open(ctx, loc.Driver)
	if err != nil {
		return nil, err
	}
	defer stg.Close()

	rc, _, err := stg.GetObject(ctx, loc.Bucket, loc.Key(name))
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}
