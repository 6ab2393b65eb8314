package main

import (
	"github.com/spf13/cobra"

	"github.com/calculate1024/goal-tracker/internal/web"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the local web viewer",
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

			if addr == "" {
				addr = cfg.Web.Addr
			}

			cmd.Printf("goal-tracker viewer on http://localhost%s\n", addr)
			return web.NewServer(st, orch).Run(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")

	return cmd
}
