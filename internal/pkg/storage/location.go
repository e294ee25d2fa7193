package storage

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Location points at a directory-like prefix in some backend.
type Location struct {
	// Driver is one of the Driver constants.
	Driver string
	// Bucket is the bucket name, or the absolute directory for DriverLocal.
	Bucket string
	// Prefix is prepended to object names; always empty for DriverLocal.
	Prefix string
}

// ParseLocation interprets dir as a local path ("~" is expanded) or as an
// object store URL: s3://bucket/prefix, minio://bucket/prefix or
// gs://bucket/prefix.
func ParseLocation(dir string) (Location, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return Location{}, fmt.Errorf("storage: empty location")
	}

	scheme, rest, ok := strings.Cut(dir, "://")
	if !ok {
		abs, err := expandPath(dir)
		if err != nil {
			return Location{}, err
		}
		return Location{Driver: DriverLocal, Bucket: abs}, nil
	}

	u, err := url.Parse(dir)
	if err != nil {
		return Location{}, fmt.Errorf("storage: parse location: %w", err)
	}

	var driver string
	switch strings.ToLower(scheme) {
	case "file":
		abs, err := expandPath(rest)
		if err != nil {
			return Location{}, err
		}
		return Location{Driver: DriverLocal, Bucket: abs}, nil
	case "s3":
		driver = DriverS3
	case "minio":
		driver = DriverMinIO
	case "gs", "gcs":
		driver = DriverGCS
	default:
		return Location{}, fmt.Errorf("%w: %s", ErrUnknownDriver, scheme)
	}

	if u.Host == "" {
		return Location{}, fmt.Errorf("storage: location %q has no bucket", dir)
	}

	return Location{
		Driver: driver,
		Bucket: u.Host,
		Prefix: strings.Trim(u.Path, "/"),
	}, nil
}

// Key joins the location prefix and name into an object key.
func (l Location) Key(name string) string {
	if l.Prefix == "" {
		return name
	}
	return path.Join(l.Prefix, name)
}

// String renders the location back in URL or path form.
func (l Location) String() string {
	if l.Driver == DriverLocal {
		return l.Bucket
	}
	scheme := l.Driver
	if scheme == DriverGCS {
		scheme = "gs"
	}
	return scheme + "://" + path.Join(l.Bucket, l.Prefix)
}

func expandPath(p string) (string, error) {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("storage: expand %q: %w", p, err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return filepath.Abs(p)
}
