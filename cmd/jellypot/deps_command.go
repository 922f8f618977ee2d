package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"jellypot/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check the external programs jellypot uses",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			color := shouldColorize(out)

			statuses := deps.Check(cfg)
			rows := make([][]string, 0, len(statuses))
			missing := 0
			for _, status := range statuses {
				state := colorize("ok", ansiGreen, color)
				switch {
				case status.Available:
				case status.Optional:
					state = colorize("missing (optional)", ansiYellow, color)
				default:
					state = colorize("missing", ansiRed, color)
					missing++
				}
				rows = append(rows, []string{status.Name, status.Command, state, status.Detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Dependency", "Command", "Status", "Detail"}, rows, nil))
			if missing > 0 {
				return errors.New("required dependencies are missing")
			}
			return nil
		},
	}
}
