package completion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/minhyannv/assistente-go/pkg/config"
	"github.com/minhyannv/assistente-go/pkg/history"
	loggerpkg "github.com/minhyannv/assistente-go/pkg/logger"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var (
	errNoCompletion = errors.New("empty completion response")
	errNoChoices    = errors.New("empty completion choices")
	errNoMessage    = errors.New("completion choice has no message")
)

// Option configures optional dependencies for OpenAIClient.
type Option func(*OpenAIClient)

// WithLogger injects a diagnostic logger.
func WithLogger(l loggerpkg.Logger, verbose bool) Option {
	return func(c *OpenAIClient) {
		if l != nil {
			c.logger = l
		}
		c.verbose = verbose
	}
}

// OpenAIClient talks to an OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	client      openai.Client
	model       string
	temperature float64
	timeout     time.Duration

	logger  loggerpkg.Logger
	verbose bool
}

// NewOpenAIClient builds a client for cfg.BaseURL using cfg.Model and cfg.Temperature.
// Retries are disabled; cfg.Timeout of zero leaves each request unbounded.
func NewOpenAIClient(cfg config.Config, opts ...Option) *OpenAIClient {
	cfg = config.Normalize(cfg)
	c := &OpenAIClient{
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		logger:      loggerpkg.NopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	reqOpts := []option.RequestOption{option.WithMaxRetries(0)}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(cfg.Timeout))
	}
	c.client = openai.NewClient(reqOpts...)

	loggerpkg.Debug(c.verbose, c.logger, "completion client ready", map[string]any{
		"base_url":    cfg.BaseURL,
		"model":       cfg.Model,
		"temperature": cfg.Temperature,
		"timeout":     cfg.Timeout.String(),
	})
	return c
}

// Complete sends messages to the endpoint and returns the first choice's content.
func (c *OpenAIClient) Complete(ctx context.Context, messages []history.Message) Result {
	if ctx == nil {
		ctx = context.Background()
	}
	params, err := c.newChatParams(messages)
	if err != nil {
		return TransportFailure(err)
	}

	start := time.Now()
	loggerpkg.Debug(c.verbose, c.logger, "completion request", map[string]any{
		"messages": len(messages),
	})
	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return classifyError(err)
	}
	if completion == nil {
		return ShapeFailure(errNoCompletion)
	}
	if len(completion.Choices) == 0 {
		return ShapeFailure(errNoChoices)
	}
	if !completion.Choices[0].JSON.Message.Valid() {
		return ShapeFailure(errNoMessage)
	}

	loggerpkg.Debug(c.verbose, c.logger, "completion response", map[string]any{
		"choices":     len(completion.Choices),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return Reply(completion.Choices[0].Message.Content)
}

// classifyError separates failed calls from 2xx responses whose body could
// not be decoded.
func classifyError(err error) Result {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return TransportFailure(err)
	}
	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return TransportFailure(err)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) ||
		strings.Contains(err.Error(), "error parsing response json") {
		return ShapeFailure(err)
	}
	return TransportFailure(err)
}

func (c *OpenAIClient) newChatParams(messages []history.Message) (openai.ChatCompletionNewParams, error) {
	out, err := toOpenAIMessages(messages)
	if err != nil {
		return openai.ChatCompletionNewParams{}, err
	}
	return openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    out,
		Temperature: openai.Float(c.temperature),
	}, nil
}

func toOpenAIMessages(messages []history.Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case history.RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		case history.RoleUser:
			out = append(out, openai.UserMessage(msg.Content))
		case history.RoleAssistant:
			out = append(out, openai.AssistantMessage(msg.Content))
		default:
			return nil, fmt.Errorf("invalid message role at index %d: %q", i, msg.Role)
		}
	}
	return out, nil
}
