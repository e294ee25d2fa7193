package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/mailinator/internal/dailyupdate/entity"
	"github.com/shandysiswandi/mailinator/internal/pkg/clock"
	"github.com/shandysiswandi/mailinator/internal/pkg/config"
	"github.com/shandysiswandi/mailinator/internal/pkg/goerror"
	"github.com/shandysiswandi/mailinator/internal/pkg/instrument"
	"github.com/shandysiswandi/mailinator/internal/pkg/mail"
	"github.com/shandysiswandi/mailinator/internal/pkg/storage"
	"github.com/shandysiswandi/mailinator/internal/pkg/uid"
	"github.com/shandysiswandi/mailinator/internal/pkg/validator"
)

// envPrefix binds every key to MAILINATOR_<SECTION>_<KEY>.
const envPrefix = "MAILINATOR"

func configDefaults() map[string]any {
	return map[string]any{
		entity.KeyPasswordEncoding:           "plain",
		entity.KeyExtension:                  "md",
		entity.KeyEmptyAsPlaceholder:         true,
		"smtp.driver":                        mail.DriverSMTP,
		"smtp.host":                          "smtp.gmail.com",
		"smtp.port":                          465,
		"smtp.implicit_tls":                  true,
		"smtp.timeout_seconds":               30,
		"log.level":                          "info",
		"log.format":                         "text",
		"log.mask_fields":                    "password,credential,secret,secret_key,session_token,credentials_json",
		"instrument.enabled":                 false,
		"instrument.service_name":            serviceName,
		"instrument.trace_sample_ratio":      1.0,
		"instrument.metric_interval_seconds": 60,
	}
}

func (a *App) initLibraries() error {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.ctx = instrument.WithRunID(a.ctx, a.uuid.Generate())

	v, err := validator.NewV10Validator()
	if err != nil {
		slog.Error("failed to init validation v10 validator", "error", err)
		return goerror.NewInternal(err)
	}
	a.validator = v

	return nil
}

func (a *App) initConfig() error {
	cfg, err := config.Load(config.LoadOptions{
		Path:      a.opts.ConfigPath,
		EnvFile:   a.opts.EnvFile,
		EnvPrefix: envPrefix,
		Bindings: map[string][]string{
			entity.KeySender:           {"EMAIL_SENDER"},
			entity.KeyPassword:         {"EMAIL_PASSWORD"},
			entity.KeyPasswordEncoding: {"EMAIL_PASSWORD_ENCODING"},
			entity.KeyReceiver:         {"EMAIL_RECEIVER"},
			entity.KeyDailyUpdateDir:   {"DAILY_UPDATE_DIR"},
		},
		Aliases:  map[string]string{entity.KeyDailyUpdatePath: entity.KeyDailyUpdateDir},
		Defaults: configDefaults(),
		Required: []string{
			entity.KeySender,
			entity.KeyPassword,
			entity.KeyReceiver,
			entity.KeyDailyUpdateDir,
		},
	})
	if err != nil {
		return err
	}

	a.config = cfg
	return nil
}

func (a *App) initInstrument() error {
	ins, err := instrument.New(a.ctx, &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   Version,
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		Log: instrument.LogConfig{
			Level:      a.config.GetString("log.level"),
			Format:     a.config.GetString("log.format"),
			Output:     a.stderr,
			MaskFields: a.config.GetArray("log.mask_fields"),
		},
	})
	if errors.Is(err, instrument.ErrUnknownLogFormat) {
		return goerror.NewConfigInvalidField(err, "log.format")
	}
	if err != nil {
		if _, lvlErr := instrument.ParseLevel(a.config.GetString("log.level")); lvlErr != nil {
			return goerror.NewConfigInvalidField(lvlErr, "log.level")
		}
		slog.Error("failed to init instrumentation", "error", err)
		return goerror.NewInternal(err)
	}

	a.ins = ins
	slog.DebugContext(a.ctx, "config loaded", "source", a.config.Source(), "version", Version)

	return nil
}

func (a *App) initMail() error {
	a.mailDriver = strings.TrimSpace(a.config.GetString("smtp.driver"))
	a.mailConfig = mail.SMTPConfig{
		Host:        strings.TrimSpace(a.config.GetString("smtp.host")),
		Port:        a.config.GetInt("smtp.port"),
		ImplicitTLS: a.config.GetBool("smtp.implicit_tls"),
		Timeout:     a.config.GetSecond("smtp.timeout_seconds"),
		LocalName:   strings.TrimSpace(a.config.GetString("smtp.local_name")),
	}

	// build once to surface a bad driver or address as a config error
	if _, err := mail.NewFromDriver(a.mailDriver, a.mailConfig); err != nil {
		slog.Error("failed to init mail", "error", err, "driver", a.mailDriver)
		return goerror.NewConfigInvalidField(err, "smtp")
	}

	return nil
}

func (a *App) initStorage() error {
	a.storage = storage.FactoryOptions{
		S3: storage.S3Options{
			Region:       strings.TrimSpace(a.config.GetString("storage.s3.region")),
			Endpoint:     strings.TrimSpace(a.config.GetString("storage.s3.endpoint")),
			AccessKey:    strings.TrimSpace(a.config.GetString("storage.s3.access_key")),
			SecretKey:    strings.TrimSpace(a.config.GetString("storage.s3.secret_key")),
			SessionToken: strings.TrimSpace(a.config.GetString("storage.s3.session_token")),
			UsePathStyle: a.config.GetBool("storage.s3.use_path_style"),
		},
		GCS: storage.GCSOptions{
			WithoutAuth:     a.config.GetBool("storage.gcs.without_auth"),
			CredentialsFile: strings.TrimSpace(a.config.GetString("storage.gcs.credentials_file")),
			CredentialsJSON: a.config.GetBinary("storage.gcs.credentials_json"),
			Endpoint:        strings.TrimSpace(a.config.GetString("storage.gcs.endpoint")),
			UserAgent:       serviceName + "/" + Version,
		},
		MinIO: storage.MinIOOptions{
			Region:       strings.TrimSpace(a.config.GetString("storage.minio.region")),
			Endpoint:     strings.TrimSpace(a.config.GetString("storage.minio.endpoint")),
			AccessKey:    strings.TrimSpace(a.config.GetString("storage.minio.access_key")),
			SecretKey:    strings.TrimSpace(a.config.GetString("storage.minio.secret_key")),
			SessionToken: strings.TrimSpace(a.config.GetString("storage.minio.session_token")),
			UseSSL:       a.config.GetBool("storage.minio.use_ssl"),
		},
	}

	return nil
}

// openStorage builds the backend lazily, so cloud clients are only created
// when the update directory points at them.
func (a *App) openStorage(ctx context.Context, driver string) (storage.Storage, error) {
	stg, err := storage.NewFromDriver(ctx, driver, a.storage)
	if err != nil {
		slog.ErrorContext(ctx, "failed to init storage", "error", err, "driver", driver)
		return nil, err
	}
	return stg, nil
}

func (a *App) initClosers() error {
	a.closers = []struct {
		name string
		fn   func(context.Context) error
	}{
		{
			name: "Instrument",
			fn: func(ctx context.Context) error {
				return a.ins.Shutdown(ctx)
			},
		},
		{
			name: "Config",
			fn: func(context.Context) error {
				return a.config.Close()
			},
		},
	}

	return nil
}
