package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/calculate1024/goal-tracker/internal/config"
	"github.com/calculate1024/goal-tracker/internal/extract"
	"github.com/calculate1024/goal-tracker/internal/gmail"
	"github.com/calculate1024/goal-tracker/internal/store"
	"github.com/calculate1024/goal-tracker/internal/workflow"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "goal-tracker",
		Short:   "Goal tracker - turn actionable emails into tracked goals",
		Version: Version,
	}

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(lsCmd())
	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(doneCmd())
	rootCmd.AddCommand(subtaskCmd())
	rootCmd.AddCommand(rmCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(categoryCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(authCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openStore loads the config and opens the goal store.
func openStore() (*config.Config, *store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	st, err := store.Open(cfg.Storage.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	return cfg, st, nil
}

// buildOrchestrator wires the provider clients and the workflow from
// persisted settings. ANTHROPIC_API_KEY in the environment overrides the
// stored key.
func buildOrchestrator(cfg *config.Config, st *store.Store) (*workflow.Orchestrator, error) {
	settings, err := st.LoadSettings()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	apiKey := settings.AnthropicAPIKey
	if env := os.Getenv("ANTHROPIC_API_KEY"); env != "" {
		apiKey = env
	}

	tokens := gmail.NewTokenSource(gmail.Credentials{
		ClientID:     settings.GmailClientID,
		ClientSecret: settings.GmailClientSecret,
		RefreshToken: settings.GmailRefreshToken,
	})

	return workflow.New(
		gmail.NewClient(tokens),
		extract.NewClient(apiKey, cfg.Analysis.Model),
		st,
		workflow.Options{
			MaxEmails: cfg.Analysis.MaxEmails,
			Notify:    cfg.Notify.Enabled && settings.NotifyEmail,
		},
	), nil
}
