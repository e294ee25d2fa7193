package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	"unicode"

	"github.com/shandysiswandi/mailinator/internal/dailyupdate/entity"
	"github.com/shandysiswandi/mailinator/internal/dailyupdate/inbound"
	"github.com/shandysiswandi/mailinator/internal/pkg/config"
	"github.com/shandysiswandi/mailinator/internal/pkg/goerror"
	"github.com/shandysiswandi/mailinator/internal/pkg/instrument"
	"github.com/spf13/cobra"
)

// Run executes the command line and returns the process exit status.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// replaced once the config is loaded
	if err := instrument.SetupLogging(serviceName, instrument.LogConfig{Level: "warn", Output: stderr}, nil); err != nil {
		return report(stderr, goerror.NewInternal(err))
	}

	opts, err := LoadOptions()
	if err != nil {
		return report(stderr, goerror.NewConfigNotFound(err, "cannot read bootstrap environment"))
	}

	root := newRootCommand(&opts, stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	return report(stderr, root.ExecuteContext(ctx))
}

func newRootCommand(opts *Options, stdout, stderr io.Writer) *cobra.Command {
	var (
		date   string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   serviceName,
		Short: "Send today's status file by email",
		Long: "mailinator reads <dir>/<YYYY-MM-DD>.md and emails it with the subject \"" + entity.Subject + "\".\n" +
			"Settings come from EMAIL_SENDER, EMAIL_PASSWORD, EMAIL_RECEIVER and DAILY_UPDATE_DIR,\n" +
			"a .env file or the config file, in that order.",
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := inbound.SendInput{DryRun: dryRun}
			if date != "" {
				d, err := time.ParseInLocation(entity.DateLayout, date, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --date %q, expected YYYY-MM-DD", date)
				}
				in.Date = d
			}

			app, err := New(cmd.Context(), *opts, stdout, stderr)
			if err != nil {
				return err
			}
			defer app.Stop(context.Background())

			return app.SendDailyUpdate(in)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", opts.ConfigPath, "config file (toml, ini, yaml or json)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", opts.EnvFile, "dotenv file loaded before the config file")
	cmd.Flags().StringVar(&date, "date", "", "send the update of this day (YYYY-MM-DD) instead of today")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the message instead of sending it")

	cmd.AddCommand(newConfigCommand(opts, stdout))

	return cmd
}

func newConfigCommand(opts *Options, stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config template",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			backup, err := config.WriteTemplate(opts.ConfigPath, force)
			if errors.Is(err, config.ErrFileExists) {
				return fmt.Errorf("config file already exists at %s, use --force to replace it", opts.ConfigPath)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(stdout, "Config template written to %s\n", opts.ConfigPath)
			if backup != "" {
				fmt.Fprintf(stdout, "Previous config saved to %s\n", backup)
			}
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "replace an existing file, keeping a backup")

	cmd.AddCommand(initCmd)
	return cmd
}

// report prints err for the operator and maps it to an exit status.
func report(w io.Writer, err error) int {
	if err == nil {
		return goerror.ExitOK
	}

	var e *goerror.Error
	switch {
	case errors.As(err, &e) && e.Code() == goerror.CodeMailNotSent:
		cause := err
		if e.Unwrap() != nil {
			cause = e.Unwrap()
		}
		fmt.Fprintf(w, "Could not send email, encountered an error: %v\n", cause)
	case errors.As(err, &e) && (e.Code() == goerror.CodeConfigNotFound || e.Code() == goerror.CodeConfigInvalid):
		fmt.Fprintln(w, capitalize(err.Error()))
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(w, "Interrupted")
	default:
		fmt.Fprintf(w, "Error: %v\n", err)
	}

	code := goerror.ExitCode(err)
	slog.Debug("exit", "code", code, "error", err)
	return code
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
