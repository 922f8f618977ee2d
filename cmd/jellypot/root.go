package main

import (
	"github.com/spf13/cobra"

	"jellypot/internal/protocol"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "jellypot [jellypot://<item-id>]",
		Short:         "Play Jellyfin items in an external player",
		SilenceUsage:  true,
		SilenceErrors: true,
		// The registered scheme handler is invoked as `jellypot <url>`.
		Args: cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !protocol.IsLaunchURL(cfg.Bridge.Scheme, args[0]) {
				return unknownCommandError(cmd, args[0])
			}
			return runOpenWithPause(cmd, ctx, args[0], true)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newBridgeCommand(ctx))
	rootCmd.AddCommand(newOpenCommand(ctx))
	rootCmd.AddCommand(newResolveCommand(ctx))
	rootCmd.AddCommand(newRegisterCommand(ctx))
	rootCmd.AddCommand(newUnregisterCommand(ctx))
	rootCmd.AddCommand(newLoginCommand(ctx))
	rootCmd.AddCommand(newDepsCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
