package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"addrcore/internal/config"
)

var errNoChoices = errors.New("no choices in chat completion response")

// OpenAIClient handles OpenAI-compatible API interactions
type OpenAIClient struct {
	config     *config.OpenAIConfig
	httpClient *http.Client
	parser     ChatResponseParser // Provider-specific response parser
	extraBody  map[string]any
	log        *slog.Logger
}

// NewOpenAIClient creates a new OpenAI-compatible client with auto-detection of provider
func NewOpenAIClient(cfg *config.OpenAIConfig, logger *slog.Logger) *OpenAIClient {
	logger = logger.With("component", "openai")

	// Auto-detect provider based on base URL
	var parser ChatResponseParser
	switch {
	case IsNVIDIAProvider(cfg.APIBase):
		parser = &NVIDIAResponseParser{}
		logger.Info("detected NVIDIA API provider (supports reasoning)")
	case IsOpenAIProvider(cfg.APIBase):
		parser = &OpenAIResponseParser{}
		logger.Info("detected OpenAI API provider")
	default:
		// Default to OpenAI format for unknown providers
		parser = &OpenAIResponseParser{}
		logger.Info("using standard OpenAI format", slog.String("api_base", cfg.APIBase))
	}

	var extraBody map[string]any
	if cfg.ChatExtraBody != "" {
		if err := json.Unmarshal([]byte(cfg.ChatExtraBody), &extraBody); err != nil {
			logger.Warn("failed to parse OPENAI_CHAT_EXTRA_BODY", slog.String("error", err.Error()))
			extraBody = nil
		}
	}

	return &OpenAIClient{
		config:    cfg,
		parser:    parser,
		extraBody: extraBody,
		log:       logger,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// IsEnabled returns whether the client is configured and ready
func (c *OpenAIClient) IsEnabled() bool {
	return c.config.Enabled
}

// ChatCompletionRequest is the subset of the chat completions body the
// detail normalizer sends. Zero Temperature / MaxTokens take the configured defaults.
type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
	ExtraBody      map[string]any  `json:"extra_body,omitempty"` // e.g. {"chat_template_kwargs":{"thinking":false}}
}

// ChatMessage represents a single message in the conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat specifies the format of the response
type ResponseFormat struct {
	Type string `json:"type"` // "json_object" or "text"
}

// ErrChatDisabled is returned when no API key is configured
var ErrChatDisabled = errors.New("chat completion disabled: missing API key")

// ChatAPIError is a non-200 reply from the chat endpoint
type ChatAPIError struct {
	StatusCode int
	Body       string
}

func (e *ChatAPIError) Error() string {
	return fmt.Sprintf("chat API returned status %d: %s", e.StatusCode, e.Body)
}

const maxErrorBody = 512

// ChatCompletion sends req to {APIBase}/chat/completions and parses the
// reply with the provider's parser.
func (c *OpenAIClient) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatReply, error) {
	if !c.config.Enabled {
		return nil, ErrChatDisabled
	}

	body, err := c.post(ctx, c.withDefaults(req))
	if err != nil {
		return nil, err
	}

	reply, err := c.parser.ParseResponse(body)
	if err != nil {
		return nil, fmt.Errorf("parse chat reply: %w", err)
	}

	c.log.DebugContext(ctx, "chat completion done",
		slog.String("model", reply.Model),
		slog.String("finish_reason", reply.FinishReason),
		slog.Int("total_tokens", reply.TotalTokens),
	)
	return reply, nil
}

func (c *OpenAIClient) withDefaults(req ChatCompletionRequest) ChatCompletionRequest {
	if req.Model == "" {
		req.Model = c.config.ChatModel
	}
	if req.Temperature == 0 {
		req.Temperature = c.config.ChatTemperature
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = c.config.ChatMaxTokens
	}
	if req.ExtraBody == nil {
		req.ExtraBody = c.extraBody
	}
	return req
}

func (c *OpenAIClient) post(ctx context.Context, req ChatCompletionRequest) ([]byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.config.APIBase, "/")+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read chat reply: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &ChatAPIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}
