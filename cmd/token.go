package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/Vovarama1992/edushare/internal/config"
	"github.com/Vovarama1992/edushare/internal/domain"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a signed bearer token for local testing",
	Long: `Mint an HS256 token signed with AUTH_JWT_SECRET.

Admin rights still come from ADMIN_EMAILS, not from the token.`,
	RunE: runToken,
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("AUTH_JWT_SECRET is not set")
	}

	email, _ := cmd.Flags().GetString("email")
	name, _ := cmd.Flags().GetString("name")
	rawID, _ := cmd.Flags().GetString("id")
	ttl, _ := cmd.Flags().GetDuration("ttl")
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	id := uuid.New()
	if rawID != "" {
		if id, err = uuid.Parse(rawID); err != nil {
			return fmt.Errorf("invalid --id: %w", err)
		}
	}

	token, err := domain.SignToken(cfg.Auth.JWTSecret, id, email, name, ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
