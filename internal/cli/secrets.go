package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gigfinder/internal/secrets"
)

func secretsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Manage the Gemini API key in the OS keychain",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set-key [key]",
		Short: "Store the API key (reads stdin when no argument is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var key string
			if len(args) == 1 {
				key = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read key: %w", err)
				}
				key = strings.TrimSpace(line)
			}
			if err := secrets.SetAPIKey(keyStore, key); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "API key saved to keychain.")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete-key",
		Short: "Remove the stored API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := secrets.DeleteAPIKey(keyStore); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "API key removed.")
			return nil
		},
	})
	return cmd
}
