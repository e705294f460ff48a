package commands

import (
	"fmt"
	"time"

	"github.com/lifeos/lifeos-api/internal/config"
	"github.com/lifeos/lifeos-api/internal/middleware"
	"github.com/spf13/cobra"
)

// NewTokenCmd creates the token command
func NewTokenCmd() *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API auth token",
		Long:  "Issue a signed bearer token for the API using AUTH_TOKEN_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			token, err := middleware.IssueToken([]byte(cfg.AuthTokenSecret), ttl)
			if err != nil {
				return fmt.Errorf("failed to issue token: %w", err)
			}

			fmt.Println(token)
			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}
