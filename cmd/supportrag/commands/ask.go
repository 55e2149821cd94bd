package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/54b3r/supportrag-go/internal/config"
	"github.com/54b3r/supportrag-go/internal/logging"
)

// NewAskCmd constructs the `supportrag ask` command, which answers a single
// question and prints the answer followed by its sources.
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask the support assistant a single question",
		Long: `Answer one customer question from the ingested FAQ/policy document.

The answer is printed to stdout followed by up to two cited sources.

Examples:
  supportrag ask "Hur lång är leveranstiden?"
  supportrag ask "Kan jag returnera en vara jag har öppnat?"
  MODEL_PROVIDER=openai supportrag ask "Vad gäller för garanti?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			cfg, err := config.FromEnv()
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			defer installLangfuse(cfg, log)()

			a, b, err := buildAssistant(ctx, cfg, log)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			defer b.Close()

			answer, err := a.Answer(ctx, strings.Join(args, " "), nil)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			printAnswer(cmd.OutOrStdout(), answer, a.Prompts().SourceLabel, true)
			return nil
		},
	}

	return cmd
}
