package entity

import (
	"log/slog"
	"strings"
	"time"
)

// Configuration keys. Environment variables bind to the first four.
const (
	KeySender             = "email.sender"
	KeyPassword           = "email.password"
	KeyPasswordEncoding   = "email.password_encoding"
	KeyReceiver           = "email.receiver"
	KeyDailyUpdateDir     = "data.daily_update_dir"
	KeyDailyUpdatePath    = "data.daily_update_path"
	KeyExtension          = "data.extension"
	KeyEmptyAsPlaceholder = "data.empty_as_placeholder"
)

const (
	// Subject is the subject of every daily update.
	Subject = "Daily update"
	// PlaceholderBody is sent when there is no update for the day.
	PlaceholderBody = "No updates for today\n"
	// DateLayout names update files and appears in the status line.
	DateLayout = "2006-01-02"
)

// Config is everything one run needs. It is built once and never mutated.
type Config struct {
	Sender             string    `key:"email.sender" validate:"required,email"`
	Password           string    `key:"email.password" validate:"required,notblank"`
	Receiver           string    `key:"email.receiver" validate:"required,email"`
	DailyUpdateDir     string    `key:"data.daily_update_dir" validate:"required,notblank"`
	Extension          string    `key:"data.extension" validate:"required,notblank,excludesall=/\\"`
	EmptyAsPlaceholder bool      `key:"data.empty_as_placeholder"`
	Date               time.Time `key:"-"`
}

// DateString formats Date with DateLayout.
func (c Config) DateString() string {
	return c.Date.Format(DateLayout)
}

// FileName is the update file for Date, for example 2024-05-02.md.
func (c Config) FileName() string {
	return c.DateString() + "." + strings.TrimPrefix(c.Extension, ".")
}

// LogValue implements slog.LogValuer and leaves the password out.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("sender", c.Sender),
		slog.String("receiver", c.Receiver),
		slog.String("daily_update_dir", c.DailyUpdateDir),
		slog.String("date", c.DateString()),
	)
}
