package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	jwttoken "podium/internal/jwt_token"
	"podium/internal/platform/config"
)

// tokenCmd signs an admin token with the server's JWT settings, read from
// the same environment variables the server uses.
func tokenCmd(_ *options) *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)

	c := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the admin endpoints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if ttl <= 0 {
				return fmt.Errorf("ttl must be positive")
			}
			svc := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience)
			token, err := svc.GenerateToken(subject, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	c.Flags().StringVar(&subject, "subject", "", "token subject, recorded as the audit actor (required)")
	c.Flags().StringVar(&role, "role", jwttoken.RoleAdmin, "token role")
	c.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = c.MarkFlagRequired("subject")
	return c
}
