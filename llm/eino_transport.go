package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"
)

// EinoTransport is the concrete multi-provider Transport implementation,
// grounded on internal/llm/client.go's NewCloseableChatModel provider
// switch and internal/knowledge/classify.go's Stream-then-accumulate call
// shape.
type EinoTransport struct {
	cfg      Config
	newModel func(ctx context.Context, modelName string, timeout time.Duration) (model.BaseChatModel, io.Closer, error)
}

// NewEinoTransport builds a Transport for cfg.Provider. The concrete chat
// model is constructed lazily per-call (model name can vary per request
// via ChatRequest.Model, e.g. for a fallback model of a different size on
// the same provider).
func NewEinoTransport(cfg Config) (*EinoTransport, error) {
	if _, err := ValidateProvider(string(cfg.Provider)); err != nil {
		return nil, err
	}
	t := &EinoTransport{cfg: cfg}
	t.newModel = t.buildModel
	return t, nil
}

func (t *EinoTransport) buildModel(ctx context.Context, modelName string, timeout time.Duration) (model.BaseChatModel, io.Closer, error) {
	cfg := t.cfg
	switch cfg.Provider {
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, nil, fmt.Errorf("openai API key is required")
		}
		chatCfg := &openai.ChatModelConfig{Model: modelName, APIKey: cfg.APIKey, Timeout: timeout}
		if cfg.BaseURL != "" {
			chatCfg.BaseURL = cfg.BaseURL
		}
		m, err := openai.NewChatModel(ctx, chatCfg)
		return m, nil, err

	case ProviderOllama:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = DefaultOllamaURL
		}
		m, err := ollama.NewChatModel(ctx, &ollama.ChatModelConfig{BaseURL: baseURL, Model: modelName, Timeout: timeout})
		return m, nil, err

	case ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, nil, fmt.Errorf("anthropic API key is required")
		}
		claudeCfg := &claude.Config{APIKey: cfg.APIKey, Model: modelName}
		if timeout > 0 {
			claudeCfg.HTTPClient = &http.Client{Timeout: timeout}
		}
		m, err := claude.NewChatModel(ctx, claudeCfg)
		return m, nil, err

	case ProviderGemini:
		if cfg.APIKey == "" {
			return nil, nil, fmt.Errorf("gemini API key is required")
		}
		var httpClient *http.Client
		if timeout > 0 {
			httpClient = &http.Client{Timeout: timeout}
		}
		genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:     cfg.APIKey,
			Backend:    genai.BackendGeminiAPI,
			HTTPClient: httpClient,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		m, err := gemini.NewChatModel(ctx, &gemini.Config{Client: genaiClient, Model: modelName})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Gemini chat model: %w", err)
		}
		return m, &genaiClientCloser{client: genaiClient}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// genaiClientCloser adapts a *genai.Client to io.Closer, mirroring
// internal/llm/client.go's genaiClientCloser wrapper.
type genaiClientCloser struct {
	client *genai.Client
}

func (g *genaiClientCloser) Close() error {
	g.client = nil
	return nil
}

// NewEinoTransportWithModel is an escape hatch for tests: it injects an
// externally constructed model.BaseChatModel so unit tests never need real
// provider credentials.
func NewEinoTransportWithModel(m model.BaseChatModel) *EinoTransport {
	return &EinoTransport{
		newModel: func(ctx context.Context, modelName string, timeout time.Duration) (model.BaseChatModel, io.Closer, error) {
			return m, nil, nil
		},
	}
}

// Chat issues one chat-style request: system prompt in the system slot, user
// prompt in the user slot, never concatenated (spec.md §4.1).
func (t *EinoTransport) Chat(ctx context.Context, req ChatRequest) (string, error) {
	timeout := time.Duration(req.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	chatModel, closer, err := t.newModel(callCtx, req.Model, timeout)
	if err != nil {
		return "", classifyConstructionError(err)
	}
	if closer != nil {
		defer closer.Close()
	}

	var messages []*schema.Message
	if strings.TrimSpace(req.System) != "" {
		messages = append(messages, &schema.Message{Role: schema.System, Content: req.System})
	}
	messages = append(messages, &schema.Message{Role: schema.User, Content: req.User})

	stream, err := chatModel.Stream(callCtx, messages)
	if err != nil {
		return "", classifyCallError(err)
	}

	var sb strings.Builder
	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", classifyCallError(err)
		}
		sb.WriteString(chunk.Content)
	}
	return sb.String(), nil
}

func classifyConstructionError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "model not found") || strings.Contains(msg, "404"):
		return &TransportError{Kind: ErrModelNotFound, Err: err}
	case strings.Contains(msg, "unauthorized") || strings.Contains(msg, "401"):
		return &TransportError{Kind: ErrHTTPStatus, StatusCode: 401, Err: err}
	default:
		return &TransportError{Kind: ErrConnection, Err: err}
	}
}

func classifyCallError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TransportError{Kind: ErrTimeout, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &TransportError{Kind: ErrCancelled, Err: err}
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "429"):
		return &TransportError{Kind: ErrRateLimited, StatusCode: 429, Err: err}
	case strings.Contains(msg, "model not found") || strings.Contains(msg, "404"):
		return &TransportError{Kind: ErrModelNotFound, StatusCode: 404, Err: err}
	case strings.Contains(msg, "unauthorized") || strings.Contains(msg, "401"):
		return &TransportError{Kind: ErrHTTPStatus, StatusCode: 401, Err: err}
	case strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host"):
		return &TransportError{Kind: ErrConnection, Err: err}
	default:
		return &TransportError{Kind: ErrConnection, Err: err}
	}
}
