package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch recent emails, extract goals with AI and save them",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			orch, err := buildOrchestrator(cfg, st)
			if err != nil {
				return err
			}

			result := orch.Run(cmd.Context())

			if asJSON {
				out, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				cmd.Println(string(out))
			} else {
				cmd.Println(result.Message)
				for _, g := range result.Goals {
					if g.Error != "" {
						cmd.Printf("  FAILED  %s: %s\n", g.Title, g.Error)
					} else {
						cmd.Printf("  created %s\n", g.Title)
					}
				}
				if result.Warning != "" {
					cmd.Printf("warning: %s\n", result.Warning)
				}
			}

			if !result.OK {
				return fmt.Errorf("run did not complete")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output the full result as JSON")

	return cmd
}
