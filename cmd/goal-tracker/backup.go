package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/calculate1024/goal-tracker/internal/store"
)

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Export all goals to a backup file (stdout if omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			data, err := st.ExportData()
			if err != nil {
				return err
			}

			if len(args) == 0 {
				cmd.Println(string(data))
				return nil
			}
			if err := os.WriteFile(args[0], data, 0644); err != nil {
				return err
			}
			cmd.Printf("exported to %s\n", args[0])
			return nil
		},
	}
}

func importCmd() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import goals from a backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			_, st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			result := st.ImportState(payload, mode)
			cmd.Println(result.Message)
			if !result.OK {
				return fmt.Errorf("import failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", store.ImportMerge, "Import mode (merge or overwrite)")

	return cmd
}
