package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"jellypot/internal/protocol"
)

func newRegisterCommand(ctx *commandContext) *cobra.Command {
	var executable string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register jellypot as the handler for launch URLs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			reg, err := protocol.NewRegistration(cfg.Bridge.Scheme)
			if err != nil {
				return err
			}
			if exe := strings.TrimSpace(executable); exe != "" {
				reg.Executable = exe
			}

			out := cmd.OutOrStdout()
			if dryRun {
				fmt.Fprintf(out, "%s:// -> %s\n", reg.Scheme, reg.Command())
				return nil
			}
			if err := protocol.Register(reg); err != nil {
				return fmt.Errorf("register %s://: %w", reg.Scheme, err)
			}
			fmt.Fprintf(out, "Registered %s:// -> %s\n", reg.Scheme, reg.Command())
			return nil
		},
	}
	cmd.Flags().StringVar(&executable, "executable", "", "Handler binary to register (defaults to this executable)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the handler command line without registering it")
	return cmd
}

func newUnregisterCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "unregister",
		Short: "Remove the launch URL handler registration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := protocol.Unregister(cfg.Bridge.Scheme); err != nil {
				return fmt.Errorf("unregister %s://: %w", cfg.Bridge.Scheme, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unregistered %s://\n", cfg.Bridge.Scheme)
			return nil
		},
	}
}
