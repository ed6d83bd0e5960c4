package cli

import (
	"fmt"
	"time"

	"jobsite-timeclock/internal/config"
	"jobsite-timeclock/internal/identity"
	"jobsite-timeclock/internal/util"

	"github.com/spf13/cobra"
)

var (
	tokenRole string
	tokenTTL  time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Mint an API token for local use",
	Long: `Mint a signed bearer token for <user-id>. Users are managed by an
upstream identity provider; this command exists for development and
scripted smoke tests.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if cfg.JWT.Secret == "" {
			return errMissingSecret
		}
		ttl := tokenTTL
		if ttl <= 0 {
			ttl = time.Duration(cfg.JWT.ExpireHours) * time.Hour
		}

		role := identity.ParseRole(tokenRole)
		tok, err := util.GenerateToken(cfg.JWT.Secret, cfg.JWT.Issuer, args[0], string(role), ttl)
		if err != nil {
			return err
		}
		return output(map[string]any{
			"user_id": args[0],
			"role":    role,
			"token":   tok,
		}, tok)
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenRole, "role", string(identity.RoleUser), "role claim (user or approver)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (defaults to jwt.expire_hours)")
	rootCmd.AddCommand(tokenCmd)
}
