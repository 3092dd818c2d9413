package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tokenshield/modules"
)

var errNoWalletKey = errors.New("no wallet key configured: set PRIVATE_KEY, or SOLANA_PRIVATE_KEY with WALLET_KIND=solana")

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in with the configured wallet and print the bearer token",
		Long: `Signs a login message with the configured wallet key and exchanges it for
a bearer token. Export the token as RISK_API_TOKEN to reuse it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, appOptions{}, func(a *app) error {
				signer, err := a.cfg.Signer()
				if err != nil {
					return err
				}
				if signer == nil {
					return errNoWalletKey
				}
				res, err := a.session.Login(cmd.Context(), signer)
				if err != nil {
					a.logger.Error("wallet login failed", "error", err)
					return &modules.FailureError{Op: "wallet login", Err: err}
				}
				if rootFlags.json {
					return printReply(cmd, modules.Reply{Data: res})
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Logged in as %s (%s)\n", res.Address, signer.Kind())
				if !res.ExpiresAt.IsZero() {
					fmt.Fprintf(out, "Expires: %s\n", res.ExpiresAt.UTC().Format(time.RFC3339))
				}
				fmt.Fprintf(out, "RISK_API_TOKEN=%s\n", res.Token)
				return nil
			})
		},
	}
}
