package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hitoshi/taskman/internal/client/api"
)

func tasksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage tasks",
	}
	cmd.AddCommand(tasksListCmd(a), tasksAddCmd(a), tasksDoneCmd(a), tasksRemoveCmd(a))
	return cmd
}

func tasksListCmd(a *app) *cobra.Command {
	var status, category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.protected(cmd.Context(), "/tasks", func(ctx context.Context, _ string) error {
				tasks, err := a.client.ListTasks(ctx, status, category)
				if err != nil {
					return err
				}
				printTasks(a, tasks)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (todo, in_progress, done)")
	cmd.Flags().StringVar(&category, "category", "", "Filter by category ID")
	return cmd
}

func printTasks(a *app, tasks []api.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(a.out, "No tasks")
		return
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tPRIORITY\tDUE\tTITLE")
	for _, t := range tasks {
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Status, t.Priority, due, t.Title)
	}
	tw.Flush()
}

func tasksAddCmd(a *app) *cobra.Command {
	var in api.NewTask
	var due, category string

	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Title = args[0]
			if due != "" {
				in.DueDate = &due
			}
			if category != "" {
				in.CategoryID = &category
			}
			return a.protected(cmd.Context(), "/tasks/new", func(ctx context.Context, _ string) error {
				task, err := a.client.CreateTask(ctx, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Created task %s\n", task.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.Description, "description", "", "Task description")
	cmd.Flags().StringVar(&in.Priority, "priority", "", "Priority (low, medium, high)")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&category, "category", "", "Category ID")
	return cmd
}

func tasksDoneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "done ID",
		Short: "Mark a task as done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			done := "done"
			return a.protected(cmd.Context(), "/tasks/"+args[0], func(ctx context.Context, _ string) error {
				if _, err := a.client.UpdateTask(ctx, args[0], api.TaskPatch{Status: &done}); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Task %s marked as done\n", args[0])
				return nil
			})
		},
	}
}

func tasksRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.protected(cmd.Context(), "/tasks/"+args[0], func(ctx context.Context, _ string) error {
				if err := a.client.DeleteTask(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Task %s deleted\n", args[0])
				return nil
			})
		},
	}
}
