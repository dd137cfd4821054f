package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bistroboss/bistro/app/repositories"
	"github.com/bistroboss/bistro/config"
	"github.com/bistroboss/bistro/pkg/auth"
)

var (
	tokenEmail   string
	tokenName    string
	promoteEmail string
)

func init() {
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "email to put in the token")
	tokenCmd.Flags().StringVar(&tokenName, "name", "", "display name to put in the token")
	_ = tokenCmd.MarkFlagRequired("email")

	promoteCmd.Flags().StringVar(&promoteEmail, "email", "", "email of the user to promote")
	_ = promoteCmd.MarkFlagRequired("email")
}

// bistro token --email a@b.c
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print a signed access token, for local testing",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}
		issuer := auth.NewIssuer(config.JWTSecret(), config.TokenTTL())
		tok, err := issuer.Issue(auth.IdentityClaims{Email: tokenEmail, Name: tokenName})
		if err != nil {
			return err
		}
		fmt.Println(tok)
		return nil
	},
}

// bistro promote --email a@b.c
var promoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Give an existing user the admin role",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close(context.Background())

		res, err := repositories.NewUserRepository(store).PromoteByEmail(ctx, promoteEmail)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return fmt.Errorf("no user with email %q; they must sign in once first", promoteEmail)
		}
		fmt.Printf("✅ %s is now an admin\n", promoteEmail)
		return nil
	},
}
