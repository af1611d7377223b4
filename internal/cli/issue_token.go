package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"longevity-frame/internal/domain"
	"longevity-frame/internal/identity"
)

// NewIssueTokenCmd mints an identity token for local testing of the
// authenticated endpoints.
func NewIssueTokenCmd(configPath *string) *cobra.Command {
	var (
		fid      int64
		username string
		ttl      time.Duration
	)
	cmd := &cobra.Command{
		Use:   "issue-token",
		Short: "Issue a signed identity token for development",
		RunE: func(cmd *cobra.Command, args []string) error {
			if fid <= 0 {
				return fmt.Errorf("--fid must be positive")
			}
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			verifier := identity.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
			token, err := verifier.Issue(domain.Identity{UserID: fid, Username: username}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().Int64Var(&fid, "fid", 0, "Farcaster id to embed")
	cmd.Flags().StringVar(&username, "username", "", "username to embed")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
