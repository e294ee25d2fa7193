package config

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

//go:embed templates/*
var templateFS embed.FS

var (
	// ErrUnsupportedFormat is returned for config files with an unknown extension.
	ErrUnsupportedFormat = errors.New("config: unsupported file format")
	// ErrFileExists is returned when a template would replace an existing file.
	ErrFileExists = errors.New("config: file already exists")
)

// Format returns the config format implied by path's extension.
func Format(path string) (string, error) {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case "toml", "ini", "json":
		return ext, nil
	case "yaml", "yml":
		return "yaml", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Template returns the empty configuration template for format.
func Template(format string) ([]byte, error) {
	b, err := templateFS.ReadFile("templates/config." + format)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return b, nil
}

// WriteTemplate writes the template matching path's extension to path.
//
// An existing file is left alone and ErrFileExists returned unless replace is
// set, in which case the file is first renamed to a free "<path>.bak" name and
// that name is returned.
func WriteTemplate(path string, replace bool) (backup string, err error) {
	format, err := Format(path)
	if err != nil {
		return "", err
	}
	tpl, err := Template(format)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(path); err == nil {
		if !replace {
			return "", fmt.Errorf("%w: %s", ErrFileExists, path)
		}
		if backup, err = backupName(path); err != nil {
			return "", err
		}
		if err := os.Rename(path, backup); err != nil {
			return "", err
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return backup, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return backup, err
	}
	if _, err := f.Write(tpl); err != nil {
		_ = f.Close()
		return backup, err
	}

	return backup, f.Close()
}

// backupName returns "<path>.bak", or "<path>.bak.N" for the first free N.
func backupName(path string) (string, error) {
	candidate := path + ".bak"
	for i := 1; ; i++ {
		_, err := os.Stat(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s.bak.%d", path, i)
	}
}
