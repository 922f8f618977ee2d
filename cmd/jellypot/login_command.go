package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"jellypot/internal/services/jellyfin"
)

func newLoginCommand(ctx *commandContext) *cobra.Command {
	var logout bool
	var skipVerify bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the Jellyfin password in the OS keyring",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireServer(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if logout {
				if err := ctx.secrets.DeletePassword(cfg.Jellyfin.URL, cfg.Jellyfin.Username); err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed stored password for %s\n", cfg.Jellyfin.Username)
				return nil
			}

			prompt := fmt.Sprintf("Password for %s on %s: ", cfg.Jellyfin.Username, cfg.Jellyfin.URL)
			password, err := readSecret(cmd.InOrStdin(), cmd.ErrOrStderr(), prompt)
			if err != nil {
				return err
			}
			if strings.TrimSpace(password) == "" {
				return fmt.Errorf("password must not be empty")
			}
			if !skipVerify {
				if err := verifyLogin(cmd.Context(), jellyfin.NewFromConfig(cfg, password)); err != nil {
					return err
				}
			}
			if err := ctx.secrets.SetPassword(cfg.Jellyfin.URL, cfg.Jellyfin.Username, password); err != nil {
				return err
			}
			fmt.Fprintf(out, "Stored password for %s\n", cfg.Jellyfin.Username)
			if !cfg.Jellyfin.UseKeyring {
				fmt.Fprintln(out, "Set jellyfin.use_keyring = true so the handler reads it.")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&logout, "logout", false, "Remove the stored password instead")
	cmd.Flags().BoolVar(&skipVerify, "no-verify", false, "Store the password without signing in first")
	return cmd
}

func verifyLogin(ctx context.Context, client *jellyfin.Client) error {
	if err := client.Authenticate(ctx); err != nil {
		return fmt.Errorf("sign in to jellyfin: %w", err)
	}
	return nil
}
