package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/anahernandes-vtex/rbaciam-novo/internal/auth"
	"github.com/anahernandes-vtex/rbaciam-novo/internal/platform/config"
)

var tokenTTL time.Duration

var tokenCmd = &cobra.Command{
	Use:   "token <email>",
	Short: "Mint a signed bearer token for local development",
	Args:  cobra.ExactArgs(1),
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "token lifetime")
}

func runToken(_ *cobra.Command, args []string) error {
	cfg := config.FromEnv()
	token, err := auth.NewTokenService(cfg.JWTSigningKey).GenerateToken(args[0], tokenTTL)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
