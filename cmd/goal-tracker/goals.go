package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/calculate1024/goal-tracker/internal/goal"
)

func lsCmd() *cobra.Command {
	var filter, sortBy string

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List goals",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			goals := st.FilteredGoals(filter, sortBy)
			if len(goals) == 0 {
				cmd.Println("no goals")
				return nil
			}

			for _, g := range goals {
				marker := " "
				if g.Status == goal.StatusCompleted {
					marker = "x"
				}
				line := fmt.Sprintf("[%s] %s  %s (%s, %d%%)", marker, shortID(g.ID), g.Title, g.Category, g.Progress)
				if g.Deadline != "" {
					line += " due " + g.Deadline
				}
				cmd.Println(line)
				for _, sub := range g.Subtasks {
					subMarker := " "
					if sub.Completed {
						subMarker = "x"
					}
					cmd.Printf("      [%s] %s  %s\n", subMarker, shortID(sub.ID), sub.Text)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "", "Status filter (all, active, completed)")
	cmd.Flags().StringVarP(&sortBy, "sort", "s", "", "Sort order (deadline, created, progress)")

	return cmd
}

func addCmd() *cobra.Command {
	var category, deadline string
	var subtasks []string

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a goal manually",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if deadline != "" && !goal.IsValidDate(deadline) {
				return fmt.Errorf("deadline must be YYYY-MM-DD")
			}

			_, st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			created, err := st.AddGoal(goal.Input{
				Title:    args[0],
				Category: category,
				Deadline: deadline,
				Subtasks: subtasks,
			})
			if err != nil {
				return err
			}
			cmd.Printf("created %s (%s)\n", created.Title, shortID(created.ID))
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Category (defaults to the first one)")
	cmd.Flags().StringVarP(&deadline, "deadline", "d", "", "Deadline (YYYY-MM-DD)")
	cmd.Flags().StringSliceVarP(&subtasks, "subtask", "t", nil, "Subtask (repeatable)")

	return cmd
}

func doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done [goal-id]",
		Short: "Toggle a goal between active and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			g, found, err := toggleByPrefix(st, args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no goal matches %q", args[0])
			}
			cmd.Printf("%s is now %s\n", g.Title, g.Status)
			return nil
		},
	}
}

func subtaskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subtask [goal-id] [subtask-id]",
		Short: "Toggle a subtask",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			goalID, ok := resolvePrefix(st, args[0])
			if !ok {
				return fmt.Errorf("no goal matches %q", args[0])
			}

			subtaskID := args[1]
			for _, g := range st.Goals() {
				if g.ID != goalID {
					continue
				}
				for _, sub := range g.Subtasks {
					if sub.ID == subtaskID || hasPrefix(sub.ID, args[1]) {
						subtaskID = sub.ID
					}
				}
			}

			g, found, err := st.ToggleSubtask(goalID, subtaskID)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no subtask matches %q", args[1])
			}
			cmd.Printf("%s: %d%% complete (%s)\n", g.Title, g.Progress, g.Status)
			return nil
		},
	}
}

func rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm [goal-id]",
		Short: "Delete a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			id, ok := resolvePrefix(st, args[0])
			if !ok {
				return fmt.Errorf("no goal matches %q", args[0])
			}
			if err := st.DeleteGoal(id); err != nil {
				return err
			}
			cmd.Println("deleted")
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show goal statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			s := st.Stats()
			cmd.Printf("total: %d\ncompleted: %d\non track: %d\noverdue: %d\n",
				s.Total, s.Completed, s.OnTrack, s.Overdue)
			return nil
		},
	}
}
