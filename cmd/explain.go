package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bimmerbailey/logshare/internal/config"
	"github.com/bimmerbailey/logshare/internal/explain"
)

var explainCmd = &cobra.Command{
	Use:   "explain [flags] [file]",
	Short: "Ask a local model to explain some output",
	Long: `Redact terminal output, classify it and ask a local Ollama model what
went wrong. Only the redacted text is sent to the model. The answer is
streamed as it is generated. Reads stdin when no file is given.

Examples:
  cargo build 2>&1 | logshare explain
  logshare explain --model qwen2.5-coder build.log`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExplain,
}

func init() {
	explainCmd.Flags().String("model", "", "Ollama model to use (default llm.ollama.model)")

	rootCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
	model, _ := cmd.Flags().GetString("model")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	in, err := readSingleInput(cmd, args)
	if err != nil {
		return err
	}

	if model == "" {
		model = cfg.LLM.Ollama.Model
	}
	provider, err := explain.NewOllama(explain.Config{
		Host:      cfg.LLM.Ollama.Host,
		Model:     model,
		KeepAlive: config.Duration(cfg.LLM.Ollama.KeepAlive, 5*time.Minute),
		NumCtx:    cfg.LLM.Ollama.NumCtx,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create Ollama client: %w", err)
	}

	ctx := commandContext(cmd)
	if err := provider.Heartbeat(ctx); err != nil {
		return fmt.Errorf("cannot connect to Ollama at %s: %w\n\nStart Ollama with: ollama serve",
			cfg.LLM.Ollama.Host, err)
	}
	if ok, err := provider.ModelAvailable(ctx, provider.Model()); err == nil && !ok {
		return fmt.Errorf("%w: %s\n\nPull it with: ollama pull %s", explain.ErrModelNotFound, provider.Model(), provider.Model())
	}

	classifier, err := newClassifier(cfg)
	if err != nil {
		return err
	}
	explainer, err := explain.New(provider, classifier, nil, explain.ChatOptions{
		Model:       provider.Model(),
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	}, logger)
	if err != nil {
		return err
	}
	explainer.WithTokenBudget(promptBudget(cfg.LLM.Ollama.NumCtx, cfg.LLM.MaxTokens))

	out := cmd.OutOrStdout()
	res, err := explainer.Explain(ctx, in.Content, out)
	fmt.Fprintln(out)
	if err != nil {
		if errors.Is(err, explain.ErrProviderUnavailable) {
			return fmt.Errorf("explanation failed: %w", err)
		}
		return err
	}

	if cfg.Verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "context: %s, redacted: %t, model: %s, tokens: %d prompt / %d generated\n",
			res.Context, res.Redacted, res.Model, res.TokensPrompt, res.TokensEval)
	} else if res.Redacted {
		fmt.Fprintln(cmd.ErrOrStderr(), "Sensitive data was replaced with [REDACTED_*] markers before sending.")
	}
	if res.Condensed {
		fmt.Fprintln(cmd.ErrOrStderr(), "The output was too long for the model and was condensed first.")
	}
	return nil
}

// promptReserve leaves room for the system prompt and framing.
const promptReserve = 512

// promptBudget is how many tokens of log text fit in a numCtx window after
// the answer and the prompt framing. Zero means no limit.
func promptBudget(numCtx, maxTokens int) int {
	if numCtx <= 0 {
		return 0
	}
	return max(numCtx-maxTokens-promptReserve, 0)
}
