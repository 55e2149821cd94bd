// Package commands defines all Cobra CLI commands for the supportrag binary.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/54b3r/supportrag-go/internal/audit"
	"github.com/54b3r/supportrag-go/internal/config"
	"github.com/54b3r/supportrag-go/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// envFiles holds the --env-file flag values.
var envFiles []string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "supportrag",
		Short: "Customer support assistant answering from a FAQ/policy document",
		Long: `supportrag answers customer questions for TechNova AB using
retrieval-augmented generation over the company's FAQ and policy document.

Ingest the document once with 'supportrag ingest', then ask questions with
'supportrag ask', chat interactively with 'supportrag chat', or expose the
JSON API with 'supportrag serve'.

Settings are read from the environment, a .env file and an optional YAML
config file (~/.supportrag/config.yaml). Environment variables always win.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log := logging.New()

			if err := config.LoadDotEnv(envFiles...); err != nil {
				return err
			}

			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}

			audit.LogCommandStart(cmd.Context(), log, cmd.Name(), path)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.supportrag/config.yaml)")
	root.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "Path to .env file(s) to load (default: ./.env)")

	root.AddCommand(
		NewIngestCmd(),
		NewAskCmd(),
		NewChatCmd(),
		NewServeCmd(),
		NewMigrateCmd(),
		NewVersionCmd(),
	)

	return root
}
