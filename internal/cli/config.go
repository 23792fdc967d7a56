package cli

import (
	"github.com/spf13/cobra"
)

// configCommand creates the config command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration as TOML",
		Long: `Print the configuration after layering defaults, depends.toml,
DEPENDS_* environment variables and flags. The output is a valid
depends.toml and can be saved as a starting point.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			return cfg.Write(cmd.OutOrStdout())
		},
	})

	return cmd
}
