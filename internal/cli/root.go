package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	jsonOutput bool
	rootCmd    = &cobra.Command{
		Use:   "timeclock",
		Short: "Job-site timeclock service",
		Long: `timeclock tracks attendance at job sites: QR-coded sites, clock-in,
breaks and clock-out with geofence checks, manager approval and
attendance statistics.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// a missing .env is normal outside development
			_ = godotenv.Load()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the YAML config file (default ./config.yaml if present)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// output prints v as JSON with --json, otherwise text.
func output(v any, text string) error {
	if !jsonOutput {
		fmt.Println(text)
		return nil
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
