package service

import (
	"encoding/json"
	"strings"
)

// NVIDIAResponseParser parses NVIDIA-hosted chat completions
type NVIDIAResponseParser struct{}

// ParseResponse converts an NVIDIA/DeepSeek response to a generic ChatReply
func (p *NVIDIAResponseParser) ParseResponse(data []byte) (*ChatReply, error) {
	// NVIDIA/DeepSeek adds reasoning_content next to content
	var raw struct {
		Model   string `json:"model"`
		Choices []struct {
			Message struct {
				Content          string  `json:"content"`
				ReasoningContent *string `json:"reasoning_content,omitempty"`
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

	reply := &ChatReply{
		Model:        raw.Model,
		Content:      raw.Choices[0].Message.Content,
		FinishReason: raw.Choices[0].FinishReason,
		TotalTokens:  raw.Usage.TotalTokens,
	}
	if rc := raw.Choices[0].Message.ReasoningContent; rc != nil {
		reply.Reasoning = *rc
	}
	return reply, nil
}

// IsNVIDIAProvider checks if the base URL is NVIDIA API
func IsNVIDIAProvider(baseURL string) bool {
	return strings.TrimRight(baseURL, "/") == "https://integrate.api.nvidia.com/v1"
}
