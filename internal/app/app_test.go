package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/shandysiswandi/mailinator/internal/pkg/goerror"
	"github.com/shandysiswandi/mailinator/internal/pkg/mail/mailtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var appEnv = []string{
	"EMAIL_SENDER", "EMAIL_PASSWORD", "EMAIL_PASSWORD_ENCODING", "EMAIL_RECEIVER", "DAILY_UPDATE_DIR",
	"MAILINATOR_CONFIG", "MAILINATOR_ENV_FILE",
	"MAILINATOR_SMTP_HOST", "MAILINATOR_SMTP_PORT", "MAILINATOR_SMTP_IMPLICIT_TLS", "MAILINATOR_SMTP_DRIVER",
}

type harness struct {
	t       *testing.T
	dir     string
	updates string
	config  string
	srv     *mailtest.Server
	stdout  bytes.Buffer
	stderr  bytes.Buffer
}

func newHarness(t *testing.T, opts ...mailtest.Option) *harness {
	t.Helper()
	for _, k := range appEnv {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	dir := t.TempDir()
	h := &harness{
		t:       t,
		dir:     dir,
		updates: filepath.Join(dir, "updates"),
		config:  filepath.Join(dir, "config.toml"),
		srv:     mailtest.NewServer(t, opts...),
	}
	require.NoError(t, os.MkdirAll(h.updates, 0o700))
	return h
}

func (h *harness) writeConfig(driver, password string) {
	h.t.Helper()
	content := fmt.Sprintf(`
[email]
sender = "sender@gmail.com"
password = %q
receiver = "receiver@gmail.com"

[data]
daily_update_dir = %q

[smtp]
driver = %q
host = %q
port = %d
implicit_tls = false
timeout_seconds = 5
`, password, h.updates, driver, h.srv.Host, h.srv.Port)
	require.NoError(h.t, os.WriteFile(h.config, []byte(content), 0o600))
}

func (h *harness) writeUpdate(date, content string) {
	h.t.Helper()
	require.NoError(h.t, os.WriteFile(filepath.Join(h.updates, date+".md"), []byte(content), 0o600))
}

func (h *harness) run(args ...string) int {
	h.t.Helper()
	h.stdout.Reset()
	h.stderr.Reset()
	base := []string{"--config", h.config, "--env-file", filepath.Join(h.dir, "missing.env")}
	return Run(context.Background(), append(base, args...), &h.stdout, &h.stderr)
}

func TestRunSendsDailyUpdate(t *testing.T) {
	for _, driver := range []string{"smtp", "gomail"} {
		t.Run(driver, func(t *testing.T) {
			h := newHarness(t, mailtest.WithCredentials("sender@gmail.com", "senderpass$"))
			h.writeConfig(driver, "senderpass$")
			h.writeUpdate("2024-05-01", "- shipped the release\n- reviewed PRs\n")

			code := h.run("--date", "2024-05-01")

			require.Equal(t, goerror.ExitOK, code, h.stderr.String())
			assert.Equal(t, "Daily email update sent for 2024-05-01\n", h.stdout.String())
			require.Len(t, h.srv.Messages(), 1)
			got := h.srv.Messages()[0]
			assert.Equal(t, "sender@gmail.com", got.AuthUser)
			assert.Equal(t, "sender@gmail.com", got.From)
			assert.Equal(t, []string{"receiver@gmail.com"}, got.To)
			assert.Contains(t, string(got.Data), "Subject: Daily update")
			assert.Contains(t, string(got.Data), "shipped the release")
		})
	}
}

func TestRunPlaceholderWhenFileMissing(t *testing.T) {
	h := newHarness(t)
	h.writeConfig("smtp", "senderpass$")

	code := h.run("--date", "2024-05-02")

	require.Equal(t, goerror.ExitOK, code, h.stderr.String())
	require.Len(t, h.srv.Messages(), 1)
	assert.Contains(t, string(h.srv.Messages()[0].Data), "No updates for today")
}

func TestRunAuthRejected(t *testing.T) {
	h := newHarness(t, mailtest.WithCredentials("sender@gmail.com", "senderpass$"))
	h.writeConfig("smtp", "wrong")
	h.writeUpdate("2024-05-01", "update\n")

	code := h.run("--date", "2024-05-01")

	assert.Equal(t, goerror.ExitEmailNotSent, code)
	assert.Empty(t, h.stdout.String())
	assert.Contains(t, h.stderr.String(), "Could not send email, encountered an error:")
	assert.Contains(t, h.stderr.String(), "535")
	assert.Empty(t, h.srv.Messages())
}

func TestRunMissingFields(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, os.WriteFile(h.config, []byte("[email]\nsender = \"sender@gmail.com\"\n"), 0o600))

	code := h.run()

	assert.Equal(t, goerror.ExitConfigNotFound, code)
	assert.Contains(t, h.stderr.String(), "Config is missing required fields: data.daily_update_dir, email.password, email.receiver")
	assert.Zero(t, h.srv.Connections())
}

func TestRunInvalidSender(t *testing.T) {
	h := newHarness(t)
	h.writeConfig("smtp", "senderpass$")
	t.Setenv("EMAIL_SENDER", "not-an-address")

	code := h.run("--date", "2024-05-01")

	assert.Equal(t, goerror.ExitConfigNotFound, code)
	assert.Contains(t, h.stderr.String(), "Config is invalid:")
	assert.Zero(t, h.srv.Connections())
}

func TestRunUnsupportedUpdateDir(t *testing.T) {
	h := newHarness(t)
	h.writeConfig("smtp", "senderpass$")
	t.Setenv("DAILY_UPDATE_DIR", "ftp://host/updates")

	code := h.run("--date", "2024-05-01")

	assert.Equal(t, goerror.ExitConfigNotFound, code)
	assert.Contains(t, h.stderr.String(), "Config field data.daily_update_dir is invalid")
	assert.Zero(t, h.srv.Connections())
}

func TestRunMissingConfigWritesTemplate(t *testing.T) {
	h := newHarness(t)
	h.config = filepath.Join(h.dir, "nested", "config.ini")

	code := h.run()

	assert.Equal(t, goerror.ExitConfigNotFound, code)
	assert.Contains(t, h.stderr.String(), "Config file not found at "+h.config)
	assert.FileExists(t, h.config)
	assert.Zero(t, h.srv.Connections())
}

func TestRunEnvironmentOnly(t *testing.T) {
	h := newHarness(t)
	h.writeUpdate("2024-05-01", "from env\n")
	t.Setenv("EMAIL_SENDER", "sender@gmail.com")
	t.Setenv("EMAIL_PASSWORD", "senderpass$")
	t.Setenv("EMAIL_RECEIVER", "receiver@gmail.com")
	t.Setenv("DAILY_UPDATE_DIR", h.updates)
	t.Setenv("MAILINATOR_SMTP_HOST", h.srv.Host)
	t.Setenv("MAILINATOR_SMTP_PORT", fmt.Sprint(h.srv.Port))
	t.Setenv("MAILINATOR_SMTP_IMPLICIT_TLS", "false")

	code := h.run("--date", "2024-05-01")

	require.Equal(t, goerror.ExitOK, code, h.stderr.String())
	assert.NoFileExists(t, h.config)
	require.Len(t, h.srv.Messages(), 1)
	assert.Contains(t, string(h.srv.Messages()[0].Data), "from env")
}

func TestRunDryRun(t *testing.T) {
	h := newHarness(t)
	h.writeConfig("smtp", "senderpass$")
	h.writeUpdate("2024-05-01", "dry\n")

	code := h.run("--date", "2024-05-01", "--dry-run")

	require.Equal(t, goerror.ExitOK, code, h.stderr.String())
	assert.Contains(t, h.stdout.String(), "Subject: Daily update\r\n")
	assert.Contains(t, h.stdout.String(), "To: receiver@gmail.com\r\n")
	assert.Contains(t, h.stdout.String(), "\r\n\r\ndry\n")
	assert.NotContains(t, h.stdout.String(), "senderpass$")
	assert.Zero(t, h.srv.Connections())
}

func TestRunInvalidDate(t *testing.T) {
	h := newHarness(t)
	h.writeConfig("smtp", "senderpass$")

	code := h.run("--date", "05/01/2024")

	assert.Equal(t, goerror.ExitFailure, code)
	assert.Contains(t, h.stderr.String(), "Error: invalid --date")
	assert.Zero(t, h.srv.Connections())
}

func TestRunUnknownDriver(t *testing.T) {
	h := newHarness(t)
	h.writeConfig("pigeon", "senderpass$")

	code := h.run("--date", "2024-05-01")

	assert.Equal(t, goerror.ExitConfigNotFound, code)
	assert.Contains(t, h.stderr.String(), "Config field smtp is invalid")
}

func TestRunConfigInit(t *testing.T) {
	h := newHarness(t)

	code := h.run("config", "init")
	require.Equal(t, goerror.ExitOK, code, h.stderr.String())
	assert.Equal(t, "Config template written to "+h.config+"\n", h.stdout.String())
	assert.FileExists(t, h.config)

	code = h.run("config", "init")
	assert.Equal(t, goerror.ExitFailure, code)
	assert.Contains(t, h.stderr.String(), "use --force")

	code = h.run("config", "init", "--force")
	require.Equal(t, goerror.ExitOK, code, h.stderr.String())
	assert.Contains(t, h.stdout.String(), "Previous config saved to "+h.config+".bak")
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer

	assert.Equal(t, goerror.ExitOK, report(&buf, nil))
	assert.Empty(t, buf.String())

	buf.Reset()
	code := report(&buf, goerror.NewMailNotSent(fmt.Errorf("dial tcp: connection refused")))
	assert.Equal(t, goerror.ExitEmailNotSent, code)
	assert.Equal(t, "Could not send email, encountered an error: dial tcp: connection refused\n", buf.String())

	buf.Reset()
	code = report(&buf, goerror.NewConfigInvalid(nil, "email.sender", "required"))
	assert.Equal(t, goerror.ExitConfigNotFound, code)
	assert.Equal(t, "Config is missing required fields: email.sender\n", buf.String())

	buf.Reset()
	code = report(&buf, context.Canceled)
	assert.Equal(t, goerror.ExitFailure, code)
	assert.Equal(t, "Interrupted\n", buf.String())
}
