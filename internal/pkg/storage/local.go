package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"

	"github.com/shandysiswandi/mailinator/internal/pkg/goerror"
)

// LocalAdapter implements Storage on the local filesystem. The bucket is a
// directory and the key a path relative to it.
type LocalAdapter struct{}

// NewLocal constructs a local filesystem adapter.
func NewLocal() *LocalAdapter {
	return &LocalAdapter{}
}

// GetObject opens the file at bucket/key.
func (l *LocalAdapter) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, ObjectInfo{}, err
	}

	name := filepath.Join(bucket, filepath.FromSlash(key))
	// #nosec G304 -- path is built from the operator's configured directory.
	f, err := os.Open(name)
	if err != nil {
		return nil, ObjectInfo{}, localErr(err, bucket, key)
	}

	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, ObjectInfo{}, err
	}
	if st.IsDir() {
		_ = f.Close()
		return nil, ObjectInfo{}, fmt.Errorf("storage: %s is a directory", name)
	}

	return f, localInfo(bucket, key, st), nil
}

// StatObject returns metadata for the file at bucket/key.
func (l *LocalAdapter) StatObject(ctx context.Context, bucket, key string) (ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, err
	}

	st, err := os.Stat(filepath.Join(bucket, filepath.FromSlash(key)))
	if err != nil {
		return ObjectInfo{}, localErr(err, bucket, key)
	}
	return localInfo(bucket, key, st), nil
}

// Close is a no-op.
func (l *LocalAdapter) Close() error {
	return nil
}

func localErr(err error, bucket, key string) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", goerror.ErrNotFound, filepath.Join(bucket, key))
	}
	return err
}

func localInfo(bucket, key string, st fs.FileInfo) ObjectInfo {
	return ObjectInfo{
		Bucket:      bucket,
		Key:         key,
		Size:        st.Size(),
		ContentType: mime.TypeByExtension(filepath.Ext(key)),
		UpdatedAt:   st.ModTime(),
	}
}
