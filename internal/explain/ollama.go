package explain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
)

// Common errors
var (
	ErrProviderUnavailable = errors.New("llm provider is not reachable")
	ErrContextCanceled     = errors.New("operation was canceled")
	ErrModelNotFound       = errors.New("requested model is not available")
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "llama3.2"

// Config holds Ollama settings.
type Config struct {
	// Host is the Ollama API endpoint (e.g., "http://localhost:11434").
	// Empty uses OLLAMA_HOST or the Ollama default.
	Host string

	// Model is the default model to use (e.g., "llama3.2")
	Model string

	// KeepAlive controls how long the model stays loaded after a request.
	KeepAlive time.Duration

	// NumCtx is the context window size; zero keeps the model default.
	NumCtx int
}

// Message represents a single message in a conversation.
type Message struct {
	Role    string
	Content string
}

// ChatOptions configures chat behavior.
type ChatOptions struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

// StreamEvent represents a single event in a streaming response.
type StreamEvent struct {
	Content string
	Done    bool
	Error   error

	// Set on the final event.
	Model        string
	TokensPrompt int
	TokensEval   int
}

// Ollama talks to a local Ollama server.
type Ollama struct {
	client *api.Client
	config Config
	logger *slog.Logger
}

// NewOllama creates an Ollama provider.
// If cfg.Host is empty, it uses the OLLAMA_HOST environment variable or defaults to http://localhost:11434.
func NewOllama(cfg Config, logger *slog.Logger) (*Ollama, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	// Start with environment-based client (respects OLLAMA_HOST)
	client, err := api.ClientFromEnvironment()
	if err != nil {
		logger.Error("failed to create ollama client from environment", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	if cfg.Host != "" {
		parsedURL, err := url.Parse(cfg.Host)
		if err != nil {
			logger.Error("invalid ollama host URL", "host", cfg.Host, "error", err)
			return nil, fmt.Errorf("invalid ollama host: %w", err)
		}

		client = api.NewClient(parsedURL, http.DefaultClient)
		logger.Debug("created ollama client with explicit host", "host", cfg.Host)
	} else {
		logger.Debug("created ollama client from environment")
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel
		logger.Debug("using default model", "model", cfg.Model)
	}

	return &Ollama{
		client: client,
		config: cfg,
		logger: logger,
	}, nil
}

// Model returns the configured default model.
func (o *Ollama) Model() string {
	return o.config.Model
}

// ChatStream sends messages to Ollama and returns a channel of streaming events.
// The channel is closed after the final event.
func (o *Ollama) ChatStream(ctx context.Context, messages []Message, opts *ChatOptions) (<-chan StreamEvent, error) {
	if len(messages) == 0 {
		return nil, errors.New("messages cannot be empty")
	}

	model := o.config.Model
	temperature := float32(0)
	maxTokens := 0
	if opts != nil {
		if opts.Model != "" {
			model = opts.Model
		}
		temperature = opts.Temperature
		maxTokens = opts.MaxTokens
	}

	o.logger.Debug("starting chat stream", "model", model, "messages", len(messages), "temperature", temperature)

	ollamaMessages := make([]api.Message, len(messages))
	for i, msg := range messages {
		ollamaMessages[i] = api.Message{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	stream := true
	req := &api.ChatRequest{
		Model:    model,
		Messages: ollamaMessages,
		Options: map[string]interface{}{
			"temperature": temperature,
		},
		Stream: &stream,
	}
	if maxTokens > 0 {
		req.Options["num_predict"] = maxTokens
	}
	if o.config.NumCtx > 0 {
		req.Options["num_ctx"] = o.config.NumCtx
	}
	if o.config.KeepAlive > 0 {
		req.KeepAlive = &api.Duration{Duration: o.config.KeepAlive}
	}

	eventChan := make(chan StreamEvent, 10)

	go func() {
		defer close(eventChan)

		err := o.client.Chat(ctx, req, func(resp api.ChatResponse) error {
			select {
			case <-ctx.Done():
				o.logger.Debug("chat stream canceled by context")
				eventChan <- StreamEvent{
					Error: fmt.Errorf("%w: %v", ErrContextCanceled, ctx.Err()),
					Done:  true,
				}
				return ctx.Err()
			default:
			}

			if resp.Done {
				o.logger.Debug("chat stream completed",
					"model", resp.Model,
					"prompt_tokens", resp.PromptEvalCount,
					"total_tokens", resp.EvalCount)
				eventChan <- StreamEvent{
					Content:      resp.Message.Content,
					Done:         true,
					Model:        resp.Model,
					TokensPrompt: resp.PromptEvalCount,
					TokensEval:   resp.EvalCount,
				}
				return nil
			}

			if resp.Message.Content != "" {
				eventChan <- StreamEvent{Content: resp.Message.Content}
			}
			return nil
		})

		if err != nil && !errors.Is(err, context.Canceled) {
			o.logger.Error("chat stream failed", "error", err, "model", model)
			eventChan <- StreamEvent{
				Error: fmt.Errorf("%w: %v", ErrProviderUnavailable, err),
				Done:  true,
			}
		}
	}()

	return eventChan, nil
}

// Heartbeat checks if the Ollama service is reachable and healthy.
func (o *Ollama) Heartbeat(ctx context.Context) error {
	o.logger.Debug("checking ollama heartbeat")

	if err := o.client.Heartbeat(ctx); err != nil {
		o.logger.Error("ollama heartbeat failed", "error", err)
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	return nil
}

// ModelAvailable checks if a specific model is available (i.e., has been pulled).
func (o *Ollama) ModelAvailable(ctx context.Context, model string) (bool, error) {
	listResp, err := o.client.List(ctx)
	if err != nil {
		o.logger.Error("failed to list models", "error", err)
		return false, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	for _, modelInfo := range listResp.Models {
		if modelInfo.Name == model || modelInfo.Model == model {
			return true, nil
		}
	}

	o.logger.Debug("model not found", "model", model, "available_count", len(listResp.Models))
	return false, nil
}
