package cli

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(true)
		if err != nil {
			return err
		}
		defer a.close()

		return output(map[string]any{
			"driver":   a.cfg.Database.Driver,
			"migrated": true,
		}, "database schema is up to date")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
