package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"jellypot/internal/config"
	"jellypot/internal/instance"
	"jellypot/internal/logging"
	"jellypot/internal/playback"
)

func newOpenCommand(ctx *commandContext) *cobra.Command {
	var noPause bool

	cmd := &cobra.Command{
		Use:   "open <jellypot://item-id>",
		Short: "Play a launch URL in the configured player",
		Long: "Play a launch URL in the configured player.\n\n" +
			"This is the command the operating system runs for the registered scheme. " +
			"A running handler is asked to exit so the newest launch wins.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOpenWithPause(cmd, ctx, args[0], !noPause)
		},
	}
	cmd.Flags().BoolVar(&noPause, "no-pause", false, "Do not wait for a key press after a failure")
	return cmd
}

// runOpenWithPause runs the handler and, on failure, keeps an attached
// console open until a key is pressed so the error can be read.
func runOpenWithPause(cmd *cobra.Command, ctx *commandContext, rawURL string, pause bool) error {
	err := runOpen(cmd, ctx, rawURL)
	if err != nil && pause && cmd.Context().Err() == nil && canPause(cmd.InOrStdin()) {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		waitForKey(cmd.InOrStdin(), cmd.ErrOrStderr())
		return reportedError{err: err}
	}
	return err
}

// reportedError has already been shown to the user.
type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }

func (e reportedError) Unwrap() error { return e.err }

func runOpen(cmd *cobra.Command, ctx *commandContext, rawURL string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}
	client, err := ctx.jellyfinClient()
	if err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	session := playback.NewSession(playback.Options{
		Config:    cfg,
		Server:    client,
		Exclusive: exclusiveHandler(cfg, logger),
		Logger:    logger,
	})
	summary, err := session.Run(signalCtx, rawURL)
	if err != nil {
		logging.ErrorWithContext(logger, "playback failed", "playback_failed",
			logging.String(logging.FieldItemID, summary.ItemID),
			logging.Error(err))
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), summary.Describe())
	return nil
}

// exclusiveHandler makes the handler single-instance: a new launch asks the
// running one to exit and waits for its lock.
func exclusiveHandler(cfg *config.Config, logger *slog.Logger) playback.ExclusiveFunc {
	return func(ctx context.Context) (context.Context, func(), error) {
		inst, runCtx, err := instance.Acquire(ctx, cfg.Paths.StateDir, cfg.ReplaceTimeout(), logger)
		if err != nil {
			return nil, nil, err
		}
		return runCtx, inst.Release, nil
	}
}
