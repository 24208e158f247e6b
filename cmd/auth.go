package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/meetpilot/internal/config"
	"github.com/teemow/meetpilot/internal/google"
)

func newAuthCmd() *cobra.Command {
	var (
		account string
		code    string
	)

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize meetpilot to use a Google account",
		Long: `Print the Google consent URL and store the resulting token.

The token grants access to calendars, free/busy, Gmail send and the user's
profile. It is cached per account in the user cache directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			if err := cfg.ValidateGoogle(); err != nil {
				return err
			}
			if account == "" {
				account = cfg.Google.Account
			}

			conf := google.OAuthConfig(googleCredentials(cfg))
			if code == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Visit this URL to authorize meetpilot:\n\n%s\n\n", google.AuthURL(conf, account))
				fmt.Fprint(cmd.OutOrStdout(), "Enter the authorization code: ")

				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read authorization code: %w", err)
				}
				code = strings.TrimSpace(line)
			}
			if code == "" {
				return fmt.Errorf("authorization code is required")
			}

			if err := google.ExchangeAndSave(cmd.Context(), conf, google.NewFileTokenProvider(), account, code); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token saved for account %q\n", account)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Account name for the cached token (default: GOOGLE_ACCOUNT or \"default\")")
	cmd.Flags().StringVar(&code, "code", "", "Authorization code; prompted for when omitted")

	return cmd
}
