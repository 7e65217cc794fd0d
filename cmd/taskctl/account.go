package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func accountCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Show or delete your account",
	}
	cmd.AddCommand(accountShowCmd(a), accountDeleteCmd(a))
	return cmd
}

func accountShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.protected(cmd.Context(), "/profile", func(ctx context.Context, _ string) error {
				p, err := a.client.Profile(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "ID:       %s\nUsername: %s\nEmail:    %s\nCreated:  %s\n",
					p.ID, p.Username, p.Email, p.CreatedAt.Format("2006-01-02"))
				return nil
			})
		},
	}
}

func accountDeleteCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete your account with all tasks and categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("account deletion is permanent; pass --yes to confirm")
			}
			return a.protected(cmd.Context(), "/profile", func(ctx context.Context, _ string) error {
				msg, err := a.client.DeleteAccount(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, msg)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}
