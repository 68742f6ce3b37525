// Package cli builds the gigfinder command tree.
//
//	gigfinder
//	├── serve              run the HTTP API, SSE stream and demand scheduler
//	├── history [--json]   print accepted jobs from the configured backend
//	├── demand             fetch one demand map and print it
//	└── secrets
//	    ├── set-key [key]  store the Gemini API key in the OS keychain
//	    └── delete-key
//
// Every command reads --config (YAML) and then environment overrides.
package cli

import (
	"github.com/spf13/cobra"

	"gigfinder/internal/config"
	"gigfinder/internal/secrets"
)

var (
	configFile string

	// keyStore is swapped in tests.
	keyStore secrets.Store = secrets.Keyring
)

func BuildCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gigfinder",
		Short:         "GigFinder NT: simulated on-demand gig work",
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to YAML config file")

	rootCmd.AddCommand(
		serveCmd(),
		historyCmd(),
		demandCmd(),
		secretsCmd(),
	)
	return rootCmd
}

func loadConfig() (config.Config, error) {
	return config.Load(configFile)
}
