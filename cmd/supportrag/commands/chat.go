package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/54b3r/supportrag-go/internal/assistant"
	"github.com/54b3r/supportrag-go/internal/budget"
	"github.com/54b3r/supportrag-go/internal/config"
	"github.com/54b3r/supportrag-go/internal/logging"
)

var (
	userLabel   = color.New(color.FgGreen, color.Bold)
	botLabel    = color.New(color.FgCyan, color.Bold)
	sourceStyle = color.New(color.Faint)
	errorStyle  = color.New(color.FgRed)
)

// NewChatCmd constructs the `supportrag chat` command, an interactive
// terminal conversation that keeps its history in memory.
func NewChatCmd() *cobra.Command {
	var showSources bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the support assistant in the terminal",
		Long: `Start an interactive conversation with the support assistant.

Earlier turns are sent as history with every question, trimmed to
HISTORY_TOKEN_BUDGET. Type 'exit' or press Ctrl+D to quit.

Examples:
  supportrag chat
  supportrag chat --sources=false`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Keep the terminal readable: only warnings and errors are logged.
			log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
			ctx = logging.WithLogger(ctx, log)

			cfg, err := config.FromEnv()
			if err != nil {
				return fmt.Errorf("chat: %w", err)
			}

			defer installLangfuse(cfg, log)()

			a, b, err := buildAssistant(ctx, cfg, log)
			if err != nil {
				return fmt.Errorf("chat: %w", err)
			}
			defer b.Close()

			return runREPL(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), a, a.Prompts(), replOptions{
				historyTokens: cfg.Server.HistoryTokens,
				showSources:   showSources,
				log:           log,
			})
		},
	}

	cmd.Flags().BoolVar(&showSources, "sources", true, "Print cited sources after each answer")

	return cmd
}

// replAnswerer is the part of *assistant.Assistant the REPL needs.
type replAnswerer interface {
	Answer(ctx context.Context, question string, history []assistant.ChatMessage) (*assistant.Answer, error)
}

// replOptions tunes runREPL.
type replOptions struct {
	historyTokens int
	showSources   bool
	log           *slog.Logger
}

// runREPL reads questions from in until EOF, "exit" or "quit" and writes
// each answer to out. Speaker labels come from the prompt set.
func runREPL(ctx context.Context, in io.Reader, out io.Writer, a replAnswerer, prompts *assistant.PromptSet, opts replOptions) error {
	userPrefix := prompts.UserLabel + ": "
	botPrefix := prompts.BotLabel + ": "

	_, _ = botLabel.Fprint(out, botPrefix)
	_, _ = fmt.Fprintln(out, prompts.Welcome)
	_, _ = fmt.Fprintln(out)

	var history []assistant.ChatMessage
	scanner := bufio.NewScanner(in)
	for {
		_, _ = userLabel.Fprint(out, userPrefix)
		if !scanner.Scan() {
			_, _ = fmt.Fprintln(out)
			return scanner.Err()
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if strings.EqualFold(question, "exit") || strings.EqualFold(question, "quit") {
			return nil
		}

		trimmed := budget.TrimHistory(budget.Estimate(question), history, opts.historyTokens)
		answer, err := a.Answer(ctx, question, trimmed)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			opts.log.Error("chat: answer failed", slog.Any("error", err))
			_, _ = errorStyle.Fprintln(out, prompts.ErrorMessage)
			_, _ = fmt.Fprintln(out)
			continue
		}

		_, _ = botLabel.Fprint(out, botPrefix)
		printAnswer(out, answer, prompts.SourceLabel, opts.showSources)
		_, _ = fmt.Fprintln(out)

		history = append(history,
			assistant.ChatMessage{Role: assistant.RoleUser, Content: question},
			assistant.ChatMessage{Role: assistant.RoleAssistant, Content: answer.Answer, Sources: answer.Sources},
		)
	}
}

// printAnswer writes the answer text and, when withSources is set, its
// numbered sources.
func printAnswer(w io.Writer, answer *assistant.Answer, label string, withSources bool) {
	_, _ = fmt.Fprintln(w, answer.Answer)
	if !withSources {
		return
	}
	for i, src := range answer.Sources {
		_, _ = sourceStyle.Fprintf(w, "  [%s %d] %s\n", label, i+1, src.Title)
		if src.Preview != "" {
			_, _ = sourceStyle.Fprintf(w, "      %s\n", src.Preview)
		}
	}
}
