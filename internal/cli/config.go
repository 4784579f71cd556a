package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func configCommand(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective settings as yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := load()
			if err != nil {
				return err
			}
			out, err := settings.YAML()
			if err != nil {
				return fmt.Errorf("encoding settings: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
