package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"github.com/shandysiswandi/mailinator/internal/pkg/goerror"
)

// LoadOptions describes where configuration comes from and what it must hold.
type LoadOptions struct {
	// Path is the config file. It may not exist when the environment
	// provides every required key.
	Path string
	// EnvFile is a dotenv file loaded into the process environment first.
	// Variables already set win over the file. Missing files are skipped.
	EnvFile string
	// EnvPrefix enables automatic binding of every key to
	// <PREFIX>_<SECTION>_<KEY>.
	EnvPrefix string
	// Bindings maps keys to extra environment variable names.
	Bindings map[string][]string
	// Aliases maps legacy keys to their current name.
	Aliases map[string]string
	// Defaults are used for keys no source sets.
	Defaults map[string]any
	// Required keys must resolve to a non-blank value.
	Required []string
}

// Load resolves configuration from the environment, the dotenv file and the
// config file, in that order of precedence.
//
// A missing config file with an incomplete environment, or a file that cannot
// be parsed, results in a fresh template at Path and a CodeConfigNotFound
// error; an unparsable file is kept as a backup. Missing required keys result
// in a CodeConfigInvalid error whose fields name the keys.
func Load(opts LoadOptions) (*Viper, error) {
	if _, err := Format(opts.Path); err != nil {
		return nil, goerror.NewConfigNotFound(err, "config file "+opts.Path)
	}

	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, goerror.NewConfigNotFound(err, "cannot read env file "+opts.EnvFile)
	}

	v := newViper()
	for key, val := range opts.Defaults {
		v.SetDefault(key, val)
	}
	if opts.EnvPrefix != "" {
		v.SetEnvPrefix(opts.EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}
	for key, names := range opts.Bindings {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, goerror.NewInternal(err)
		}
	}

	vc := &Viper{v: v}

	_, statErr := os.Stat(opts.Path)
	switch {
	case statErr == nil:
		v.SetConfigFile(opts.Path)
		if err := v.ReadInConfig(); err != nil {
			return nil, replaceUnreadable(opts.Path, err)
		}
		vc.file = opts.Path

	case errors.Is(statErr, fs.ErrNotExist):
		if len(vc.missing(opts.Required)) == 0 {
			slog.Debug("config file not found, using environment only", "path", opts.Path)
			break
		}
		if _, err := WriteTemplate(opts.Path, false); err != nil {
			return nil, goerror.NewConfigNotFound(err, "config file not found at "+opts.Path+" and the template could not be written")
		}
		slog.Info("config template written", "path", opts.Path)
		return nil, goerror.NewConfigNotFound(nil, fmt.Sprintf(
			"config file not found at %s; a template was generated there, fill it out before running again", opts.Path))

	default:
		return nil, goerror.NewConfigNotFound(statErr, "cannot access config file "+opts.Path)
	}

	vc.applyAliases(opts.Aliases)

	if missing := vc.missing(opts.Required); len(missing) > 0 {
		kv := lo.FlatMap(missing, func(key string, _ int) []string {
			return []string{key, "required"}
		})
		return nil, goerror.NewConfigInvalid(nil, kv...)
	}

	return vc, nil
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

// replaceUnreadable moves a config file that failed to parse out of the way
// and puts a template in its place.
func replaceUnreadable(path string, cause error) error {
	backup, err := WriteTemplate(path, true)
	if err != nil {
		return goerror.NewConfigNotFound(errors.Join(cause, err), "config file "+path+" is unreadable")
	}
	slog.Warn("unreadable config file replaced by template", "path", path, "backup", backup, "error", cause)

	return goerror.NewConfigNotFound(cause, fmt.Sprintf(
		"config file %s could not be read, it was moved to %s and a new template was generated; fill it out before running again",
		path, backup))
}

// applyAliases copies values found under a legacy key to its current key
// when the current key has no value.
func (vc *Viper) applyAliases(aliases map[string]string) {
	for alias, key := range aliases {
		if vc.filled(key) || !vc.filled(alias) {
			continue
		}
		vc.v.Set(key, vc.v.Get(alias))
	}
}

func (vc *Viper) missing(keys []string) []string {
	return lo.Filter(keys, func(key string, _ int) bool {
		return !vc.filled(key)
	})
}

func (vc *Viper) filled(key string) bool {
	return strings.TrimSpace(vc.v.GetString(key)) != ""
}
