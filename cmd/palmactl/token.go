package main

import (
	"errors"
	"fmt"
	"time"

	"palma-lending/internal/core/domain"
	"palma-lending/internal/core/ports"
	"palma-lending/internal/service"

	"github.com/spf13/cobra"
)

const (
	accountKey = "account"
	roleKey    = "role"
)

func tokenCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "token",
		Short: "Manage API access tokens",
	}
	c.AddCommand(issueCommand())
	return c
}

func issueCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "issue",
		Short: "Issues a JWT for an account",
		RunE:  issueFunc,
	}
	flags := c.Flags()
	flags.String(accountKey, "", "Account address the token authenticates (required)")
	flags.String(roleKey, ports.RoleUser, "Role claim: user or admin")
	_ = c.MarkFlagRequired(accountKey)
	return c
}

func issueFunc(c *cobra.Command, _ []string) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.JWT.Secret == "" {
		return errors.New("jwt.secret is not configured")
	}

	flags := c.Flags()
	rawAccount, err := flags.GetString(accountKey)
	if err != nil {
		return err
	}
	account, ok := domain.ParseAddress(rawAccount)
	if !ok {
		return fmt.Errorf("--%s: invalid address %q", accountKey, rawAccount)
	}
	role, err := flags.GetString(roleKey)
	if err != nil {
		return err
	}
	if role != ports.RoleUser && role != ports.RoleAdmin {
		return fmt.Errorf("--%s: must be %q or %q", roleKey, ports.RoleUser, ports.RoleAdmin)
	}

	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	token, expiry, err := tokenSvc.Generate(account, role)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.OutOrStdout(), token)
	fmt.Fprintf(c.ErrOrStderr(), "expires %s\n", expiry.UTC().Format(time.RFC3339))
	return nil
}
