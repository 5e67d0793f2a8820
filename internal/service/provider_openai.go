package service

import (
	"encoding/json"
	"strings"
)

// ChatResponseParser is the interface for provider-specific response parsing
type ChatResponseParser interface {
	ParseResponse(data []byte) (*ChatReply, error)
}

// OpenAIResponseParser parses standard OpenAI-format chat completions
type OpenAIResponseParser struct{}

// ParseResponse converts a standard OpenAI response to a generic ChatReply
func (p *OpenAIResponseParser) ParseResponse(data []byte) (*ChatReply, error) {
	var raw struct {
		Model   string `json:"model"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
		Usage struct {
			TotalTokens int `json:"total_tokens"`
		} `json:"usage"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if len(raw.Choices) == 0 {
		return nil, errNoChoices
	}

	return &ChatReply{
		Model:        raw.Model,
		Content:      raw.Choices[0].Message.Content,
		FinishReason: raw.Choices[0].FinishReason,
		TotalTokens:  raw.Usage.TotalTokens,
	}, nil
}

// IsOpenAIProvider checks if the base URL is official OpenAI API
func IsOpenAIProvider(baseURL string) bool {
	return strings.Contains(baseURL, "api.openai.com")
}
