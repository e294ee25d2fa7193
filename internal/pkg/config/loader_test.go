package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shandysiswandi/mailinator/internal/pkg/goerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEnv = []string{
	"EMAIL_SENDER", "EMAIL_PASSWORD", "EMAIL_RECEIVER", "DAILY_UPDATE_DIR",
	"MAILINATOR_SMTP_HOST",
}

// unsetEnv removes the variables for the duration of the test.
func unsetEnv(t *testing.T) {
	t.Helper()
	for _, k := range testEnv {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func testOptions(path string) LoadOptions {
	return LoadOptions{
		Path:      path,
		EnvPrefix: "MAILINATOR",
		Bindings: map[string][]string{
			"email.sender":          {"EMAIL_SENDER"},
			"email.password":        {"EMAIL_PASSWORD"},
			"email.receiver":        {"EMAIL_RECEIVER"},
			"data.daily_update_dir": {"DAILY_UPDATE_DIR"},
		},
		Aliases:  map[string]string{"data.daily_update_path": "data.daily_update_dir"},
		Defaults: map[string]any{"smtp.host": "smtp.gmail.com", "smtp.port": 465},
		Required: []string{"email.sender", "email.password", "email.receiver", "data.daily_update_dir"},
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func codeOf(t *testing.T, err error) goerror.Code {
	t.Helper()
	var e *goerror.Error
	require.True(t, errors.As(err, &e), "expected *goerror.Error, got %T: %v", err, err)
	return e.Code()
}

func TestLoadEnvironmentOnly(t *testing.T) {
	unsetEnv(t)
	t.Setenv("EMAIL_SENDER", "sender@gmail.com")
	t.Setenv("EMAIL_PASSWORD", "senderpass$")
	t.Setenv("EMAIL_RECEIVER", "receiver@gmail.com")
	t.Setenv("DAILY_UPDATE_DIR", "/srv/updates")
	path := filepath.Join(t.TempDir(), "mailinator", "config.toml")

	cfg, err := Load(testOptions(path))

	require.NoError(t, err)
	assert.Equal(t, "", cfg.Source())
	assert.Equal(t, "sender@gmail.com", cfg.GetString("email.sender"))
	assert.Equal(t, "/srv/updates", cfg.GetString("data.daily_update_dir"))
	assert.Equal(t, 465, cfg.GetInt("smtp.port"))
	assert.NoFileExists(t, path, "no template when the environment is complete")
}

func TestLoadMissingFileBootstrapsTemplate(t *testing.T) {
	unsetEnv(t)
	path := filepath.Join(t.TempDir(), "mailinator", "config.toml")

	_, err := Load(testOptions(path))

	require.Error(t, err)
	assert.Equal(t, goerror.CodeConfigNotFound, codeOf(t, err))
	assert.Contains(t, err.Error(), "config file not found at "+path)
	tpl, _ := Template("toml")
	got, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, tpl, got)

	info, statErr := os.Stat(path)
	require.NoError(t, statErr)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	t.Run("SecondRunReportsMissingFields", func(t *testing.T) {
		_, err := Load(testOptions(path))

		require.Error(t, err)
		assert.Equal(t, goerror.CodeConfigInvalid, codeOf(t, err))
		var e *goerror.Error
		require.True(t, errors.As(err, &e))
		assert.Equal(t,
			[]string{"data.daily_update_dir", "email.password", "email.receiver", "email.sender"},
			e.FieldNames())

		again, _ := os.ReadFile(path)
		assert.Equal(t, got, again, "template must not be rewritten")
	})
}

func TestLoadPartialEnvironment(t *testing.T) {
	unsetEnv(t)
	t.Setenv("EMAIL_SENDER", "sender@gmail.com")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	writeFile(t, path, `
[email]
password = "senderpass$"
receiver = ""

[data]
daily_update_dir = "/srv/updates"
`)

	_, err := Load(testOptions(path))

	var e *goerror.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, goerror.CodeConfigInvalid, e.Code())
	assert.Equal(t, []string{"email.receiver"}, e.FieldNames())
}

func TestLoadTOML(t *testing.T) {
	unsetEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `
[email]
sender = "sender@gmail.com"
password = "c2VuZGVycGFzcyQK"
password_encoding = "base64"
receiver = "receiver@gmail.com"

[data]
daily_update_dir = "~/updates"
empty_as_placeholder = false

[smtp]
timeout_seconds = 12
`)

	cfg, err := Load(testOptions(path))

	require.NoError(t, err)
	assert.Equal(t, path, cfg.Source())
	assert.Equal(t, "base64", cfg.GetString("email.password_encoding"))
	assert.Equal(t, "~/updates", cfg.GetString("data.daily_update_dir"))
	assert.False(t, cfg.GetBool("data.empty_as_placeholder"))
	assert.Equal(t, "smtp.gmail.com", cfg.GetString("smtp.host"))
	assert.Equal(t, int64(12), int64(cfg.GetSecond("smtp.timeout_seconds").Seconds()))
}

func TestLoadINIWithLegacyKey(t *testing.T) {
	unsetEnv(t)
	path := filepath.Join(t.TempDir(), "config.ini")
	writeFile(t, path, `
[email]
sender = sender@gmail.com
password = senderpass$
receiver = receiver@gmail.com

[data]
daily_update_path = /srv/legacy
`)

	cfg, err := Load(testOptions(path))

	require.NoError(t, err)
	assert.Equal(t, "sender@gmail.com", cfg.GetString("email.sender"))
	assert.Equal(t, "senderpass$", cfg.GetString("email.password"))
	assert.Equal(t, "/srv/legacy", cfg.GetString("data.daily_update_dir"))
}

func TestLoadINIKeepsCommentCharsInValues(t *testing.T) {
	unsetEnv(t)
	path := filepath.Join(t.TempDir(), "config.ini")
	writeFile(t, path, `
[Email]
Sender = sender@gmail.com
password = abc #def;ghi
receiver = receiver@gmail.com

[data]
daily_update_dir = /srv/updates
`)

	cfg, err := Load(testOptions(path))

	require.NoError(t, err)
	assert.Equal(t, "abc #def;ghi", cfg.GetString("email.password"))
	assert.Equal(t, "sender@gmail.com", cfg.GetString("email.sender"))
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	unsetEnv(t)
	t.Setenv("EMAIL_RECEIVER", "override@gmail.com")
	t.Setenv("MAILINATOR_SMTP_HOST", "127.0.0.1")
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `
email:
  sender: sender@gmail.com
  password: senderpass$
  receiver: receiver@gmail.com
data:
  daily_update_dir: /srv/updates
`)

	cfg, err := Load(testOptions(path))

	require.NoError(t, err)
	assert.Equal(t, "override@gmail.com", cfg.GetString("email.receiver"))
	assert.Equal(t, "sender@gmail.com", cfg.GetString("email.sender"))
	assert.Equal(t, "127.0.0.1", cfg.GetString("smtp.host"))
}

func TestLoadDotEnvFile(t *testing.T) {
	unsetEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	writeFile(t, envFile, "EMAIL_SENDER=dotenv@gmail.com\nEMAIL_PASSWORD=pw\nEMAIL_RECEIVER=receiver@gmail.com\nDAILY_UPDATE_DIR=/srv/updates\n")
	t.Setenv("EMAIL_RECEIVER", "process@gmail.com")

	opts := testOptions(filepath.Join(dir, "config.toml"))
	opts.EnvFile = envFile
	cfg, err := Load(opts)

	require.NoError(t, err)
	assert.Equal(t, "dotenv@gmail.com", cfg.GetString("email.sender"))
	assert.Equal(t, "process@gmail.com", cfg.GetString("email.receiver"), "process env wins over .env")
}

func TestLoadMissingDotEnvFileIsIgnored(t *testing.T) {
	unsetEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	writeFile(t, path, `
[email]
sender = "sender@gmail.com"
password = "pw"
receiver = "receiver@gmail.com"
[data]
daily_update_dir = "/srv"
`)

	opts := testOptions(path)
	opts.EnvFile = filepath.Join(dir, "nope.env")
	_, err := Load(opts)

	assert.NoError(t, err)
}

func TestLoadUnreadableFileIsBackedUp(t *testing.T) {
	unsetEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	// an INI file that was renamed to .toml
	legacy := "[email]\nsender = sender@gmail.com\n"
	writeFile(t, path, legacy)
	writeFile(t, path+".bak", "older backup")

	_, err := Load(testOptions(path))

	require.Error(t, err)
	assert.Equal(t, goerror.CodeConfigNotFound, codeOf(t, err))
	assert.Contains(t, err.Error(), path+".bak.1")

	backup, readErr := os.ReadFile(path + ".bak.1")
	require.NoError(t, readErr)
	assert.Equal(t, legacy, string(backup))

	older, _ := os.ReadFile(path + ".bak")
	assert.Equal(t, "older backup", string(older))

	tpl, _ := Template("toml")
	fresh, _ := os.ReadFile(path)
	assert.Equal(t, tpl, fresh)
}

func TestLoadUnsupportedFormat(t *testing.T) {
	unsetEnv(t)
	path := filepath.Join(t.TempDir(), "config.conf")

	_, err := Load(testOptions(path))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Equal(t, goerror.CodeConfigNotFound, codeOf(t, err))
	assert.NoFileExists(t, path)
}
