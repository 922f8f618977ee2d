package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"jellypot/internal/launcher"
	"jellypot/internal/resolver"
	"jellypot/internal/services/jellyfin"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <item-id>",
		Short: "Show which item the button would launch for a detail page",
		Long: "Show which item the button would launch for a detail page.\n\n" +
			"Series resolve to the next episode to watch, seasons and collections to their first child. " +
			"Lookups go through the Jellyfin HTTP API.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			id := strings.TrimSpace(args[0])
			if id == "" {
				return fmt.Errorf("item id is required")
			}

			res, err := resolver.New(jellyfinHost(client), logger).Resolve(cmd.Context(), resolver.ItemRef(id))
			if err != nil {
				return err
			}

			rows := [][]string{
				{"Source", string(res.Source)},
				{"Source type", res.SourceType},
				{"Resolved", res.ID},
				{"Fallback", yesNo(res.Fallback)},
				{"Launch URL", launcher.BuildURL(cfg.Bridge.Scheme, res.ID)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
			return nil
		},
	}
}

func jellyfinHost(client *jellyfin.Client) resolver.HostAPI {
	return jellyfin.HostAdapter{Client: client}
}
