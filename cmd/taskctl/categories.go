package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func categoriesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cat"},
		Short:   "Manage categories",
	}
	cmd.AddCommand(categoriesListCmd(a), categoriesAddCmd(a), categoriesRemoveCmd(a))
	return cmd
}

func categoriesListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.protected(cmd.Context(), "/categories", func(ctx context.Context, _ string) error {
				categories, err := a.client.ListCategories(ctx)
				if err != nil {
					return err
				}
				if len(categories) == 0 {
					fmt.Fprintln(a.out, "No categories")
					return nil
				}
				tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tCOLOR\tNAME")
				for _, c := range categories {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, c.Color, c.Name)
				}
				return tw.Flush()
			})
		},
	}
}

func categoriesAddCmd(a *app) *cobra.Command {
	var color string

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.protected(cmd.Context(), "/categories", func(ctx context.Context, _ string) error {
				c, err := a.client.CreateCategory(ctx, args[0], color)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Created category %s\n", c.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&color, "color", "", "Color as #rrggbb")
	return cmd
}

func categoriesRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a category (its tasks are kept without a category)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.protected(cmd.Context(), "/categories", func(ctx context.Context, _ string) error {
				if err := a.client.DeleteCategory(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Category %s deleted\n", args[0])
				return nil
			})
		},
	}
}
