package main

import (
	"github.com/spf13/cobra"
)

func categoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage goal categories",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			for _, c := range st.Categories() {
				cmd.Println(c)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add [name]",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			added, err := st.AddCategory(args[0])
			if err != nil {
				return err
			}
			if added {
				cmd.Printf("added %s\n", args[0])
			} else {
				cmd.Printf("%s already exists\n", args[0])
			}
			return nil
		},
	})

	var reassignTo string
	rm := &cobra.Command{
		Use:   "rm [name]",
		Short: "Remove a category, re-pointing its goals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.RemoveCategory(args[0], reassignTo); err != nil {
				return err
			}
			cmd.Printf("removed %s\n", args[0])
			return nil
		},
	}
	rm.Flags().StringVar(&reassignTo, "reassign-to", "", "Category to move affected goals into")
	cmd.AddCommand(rm)

	return cmd
}
