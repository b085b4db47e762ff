package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Completer answers a single system+user prompt pair with plain text.
// The chat pipeline depends on this interface so tests can supply fakes.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// LLMClient defines the supported client behaviours.
type LLMClient interface {
	Completer
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
	GetConfig() *Config
	Close() error
}

// ErrEmptyCompletion is returned when the model produced no choices.
var ErrEmptyCompletion = errors.New("llm: completion returned no choices")

// Client talks to an OpenAI compatible chat completion endpoint.
type Client struct {
	config       *Config
	openaiClient *openai.Client
	logger       Logger
	retryHandler *RetryHandler
}

// ClientOption configures optional client behaviour.
type ClientOption func(*clientOptions)

type clientOptions struct {
	logger       Logger
	retry        *RetryHandler
	httpClient   *http.Client
	openaiClient *openai.Client
}

// WithLogger injects a custom logger implementation.
func WithLogger(logger Logger) ClientOption {
	return func(opts *clientOptions) {
		opts.logger = logger
	}
}

// WithRetryHandler injects a custom retry handler.
func WithRetryHandler(handler *RetryHandler) ClientOption {
	return func(opts *clientOptions) {
		opts.retry = handler
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(opts *clientOptions) {
		opts.httpClient = client
	}
}

// WithOpenAIClient injects a pre-configured OpenAI client.
func WithOpenAIClient(client *openai.Client) ClientOption {
	return func(opts *clientOptions) {
		opts.openaiClient = client
	}
}

// NewClient constructs a new LLM client using the provided configuration.
func NewClient(cfg *Config, opts ...ClientOption) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("llm: config cannot be nil")
	}

	clientCfg := cfg.Clone()
	if err := clientCfg.Validate(); err != nil {
		return nil, err
	}

	optState := clientOptions{}
	for _, opt := range opts {
		opt(&optState)
	}

	logger := optState.logger
	if logger == nil {
		logger = NewLogger(clientCfg.LogLevel)
	}

	retryHandler := optState.retry
	if retryHandler == nil {
		retryHandler = NewRetryHandler(RetryConfig{MaxRetries: clientCfg.MaxRetries})
	}

	oaClient := optState.openaiClient
	if oaClient == nil {
		// Retries are owned by RetryHandler; the SDK's own loop is disabled.
		oaOpts := []option.RequestOption{
			option.WithAPIKey(clientCfg.APIKey),
			option.WithBaseURL(clientCfg.BaseURL),
			option.WithMaxRetries(0),
		}
		if clientCfg.Timeout > 0 {
			oaOpts = append(oaOpts, option.WithRequestTimeout(clientCfg.Timeout))
		}
		if optState.httpClient != nil {
			oaOpts = append(oaOpts, option.WithHTTPClient(optState.httpClient))
		}
		clientVal := openai.NewClient(oaOpts...)
		oaClient = &clientVal
	}

	return &Client{
		config:       clientCfg,
		openaiClient: oaClient,
		logger:       logger,
		retryHandler: retryHandler,
	}, nil
}

// Complete sends systemPrompt and userPrompt with the default model and
// returns the trimmed text of the first choice.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	msgs := make([]Message, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		msgs = append(msgs, Message{Role: RoleSystem, Content: systemPrompt})
	}
	msgs = append(msgs, Message{Role: RoleUser, Content: userPrompt})

	resp, err := c.Chat(ctx, &ChatRequest{Messages: msgs})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return strings.TrimSpace(resp.Text()), nil
}

// Chat performs a single synchronous completion request.
func (c *Client) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if req == nil {
		return nil, errors.New("llm: request cannot be nil")
	}
	params, modelID, err := c.buildChatParams(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	c.logger.Debug(ctx, "llm chat request", Fields{
		"model":    modelID,
		"messages": len(req.Messages),
		"prompt":   summarizeMessages(req.Messages),
	})

	var completion *openai.ChatCompletion
	err = c.retryHandler.Do(ctx, func() error {
		resp, callErr := c.openaiClient.Chat.Completions.New(ctx, params)
		if callErr != nil {
			c.logger.Warn(ctx, "llm chat attempt failed", Fields{
				"model": modelID,
				"error": callErr.Error(),
			})
			return callErr
		}
		completion = resp
		return nil
	})
	if err != nil {
		c.logger.Error(ctx, fmt.Errorf("chat completion failed: %w", err), Fields{"model": modelID})
		return nil, err
	}

	result := convertCompletion(completion)
	c.logger.Info(ctx, "llm chat success", Fields{
		"model":             modelID,
		"duration_ms":       time.Since(start).Milliseconds(),
		"prompt_tokens":     result.Usage.PromptTokens,
		"completion_tokens": result.Usage.CompletionTokens,
	})
	return result, nil
}

// GetConfig returns a copy of the client configuration.
func (c *Client) GetConfig() *Config {
	return c.config.Clone()
}

// Close releases resources held by the client.
func (c *Client) Close() error {
	return nil
}

func (c *Client) buildChatParams(req *ChatRequest) (openai.ChatCompletionNewParams, string, error) {
	if len(req.Messages) == 0 {
		return openai.ChatCompletionNewParams{}, "", errors.New("llm: request requires at least one message")
	}

	alias := strings.TrimSpace(req.Model)
	if alias == "" {
		alias = c.config.DefaultModel
	}
	modelCfg, _ := c.config.Model(alias)
	modelID := ResolveModelID(alias, modelCfg)
	if modelID == "" {
		return openai.ChatCompletionNewParams{}, "", errors.New("llm: model is required")
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(modelID),
		Messages: buildMessageParams(req.Messages),
	}

	switch {
	case req.Temperature != nil:
		params.Temperature = openai.Float(*req.Temperature)
	case modelCfg.Temperature != nil:
		params.Temperature = openai.Float(*modelCfg.Temperature)
	}
	switch {
	case req.MaxCompletionTokens != nil:
		params.MaxCompletionTokens = openai.Int(int64(*req.MaxCompletionTokens))
	case modelCfg.MaxCompletionTokens != nil:
		params.MaxCompletionTokens = openai.Int(int64(*modelCfg.MaxCompletionTokens))
	}
	switch {
	case req.TopP != nil:
		params.TopP = openai.Float(*req.TopP)
	case modelCfg.TopP != nil:
		params.TopP = openai.Float(*modelCfg.TopP)
	}
	return params, modelID, nil
}

func buildMessageParams(msgs []Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch strings.ToLower(strings.TrimSpace(m.Role)) {
		case RoleSystem:
			result = append(result, openai.SystemMessage(m.Content))
		case RoleAssistant:
			result = append(result, openai.ChatCompletionMessageParamOfAssistant(m.Content))
		default:
			result = append(result, openai.UserMessage(m.Content))
		}
	}
	return result
}

func convertCompletion(resp *openai.ChatCompletion) *ChatResponse {
	if resp == nil {
		return &ChatResponse{}
	}
	out := &ChatResponse{
		ID:      resp.ID,
		Model:   resp.Model,
		Created: resp.Created,
		RawJSON: resp.RawJSON(),
		Usage: Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}
	out.Choices = make([]Choice, 0, len(resp.Choices))
	for _, choice := range resp.Choices {
		out.Choices = append(out.Choices, Choice{
			Index:        int(choice.Index),
			FinishReason: string(choice.FinishReason),
			Message: Message{
				Role:    RoleAssistant,
				Content: choice.Message.Content,
			},
		})
	}
	return out
}

func summarizeMessages(msgs []Message) string {
	const limit = 160
	if len(msgs) == 0 {
		return ""
	}
	last := strings.TrimSpace(msgs[len(msgs)-1].Content)
	if len(last) > limit {
		return last[:limit] + "..."
	}
	return last
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return f(ctx, systemPrompt, userPrompt)
}

// WithTimeout bounds every Complete call on c by d. A non-positive d returns c.
func WithTimeout(c Completer, d time.Duration) Completer {
	if d <= 0 {
		return c
	}
	return CompleterFunc(func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return c.Complete(ctx, systemPrompt, userPrompt)
	})
}
