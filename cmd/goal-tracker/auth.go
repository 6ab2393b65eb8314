package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/calculate1024/goal-tracker/internal/gmail"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Store provider credentials",
		Long: `Store provider credentials in the local database.

Credentials are kept in a reversible encoding that only guards against
casual reads of the database file; treat the file itself as sensitive.
Access tokens derived from them are held in memory only.`,
	}

	cmd.AddCommand(authGmailCmd())
	cmd.AddCommand(authAnthropicCmd())

	return cmd
}

func authGmailCmd() *cobra.Command {
	var clientID, clientSecret, refreshToken string
	var verify bool

	cmd := &cobra.Command{
		Use:   "gmail",
		Short: "Store Gmail OAuth credentials (from the external authorization flow)",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			settings, err := st.LoadSettings()
			if err != nil {
				return err
			}
			settings.GmailClientID = clientID
			settings.GmailClientSecret = clientSecret
			settings.GmailRefreshToken = refreshToken
			settings.NotifyEmail = true

			if verify {
				tokens := gmail.NewTokenSource(gmail.Credentials{
					ClientID:     clientID,
					ClientSecret: clientSecret,
					RefreshToken: refreshToken,
				})
				addr, err := gmail.NewClient(tokens).FetchUserEmail(cmd.Context())
				if err != nil {
					return fmt.Errorf("credential check failed: %w", err)
				}
				cmd.Printf("authenticated as %s\n", addr)
			}

			if err := st.SaveSettings(settings); err != nil {
				return err
			}
			cmd.Println("Gmail credentials saved")
			return nil
		},
	}

	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth client id")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth client secret")
	cmd.Flags().StringVar(&refreshToken, "refresh-token", "", "OAuth refresh token")
	cmd.Flags().BoolVar(&verify, "verify", true, "Verify the credentials with a profile call before saving")
	_ = cmd.MarkFlagRequired("client-id")
	_ = cmd.MarkFlagRequired("client-secret")
	_ = cmd.MarkFlagRequired("refresh-token")

	return cmd
}

func authAnthropicCmd() *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "anthropic",
		Short: "Store the Anthropic API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			settings, err := st.LoadSettings()
			if err != nil {
				return err
			}
			settings.AnthropicAPIKey = key

			if err := st.SaveSettings(settings); err != nil {
				return err
			}
			cmd.Println("Anthropic API key saved")
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Anthropic API key")
	_ = cmd.MarkFlagRequired("key")

	return cmd
}
