package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"addrcore/internal/model"
	"addrcore/internal/utils"
)

// ErrAIDisabled is returned when the chat client has no credentials.
var ErrAIDisabled = errors.New("ai normalizer is not enabled")

const detailSystemPrompt = `You normalize the detail part of Korean addresses (block "동", unit "호", floor "층").

You receive the raw detail text, the building class and the building name.
Rewrite the detail into the canonical form used by the Korean road-name address registry:
- block and unit: "101동 505호"
- unit only: "302호"
- floor: "3층", basement: "지하1층"
- single letter or syllable blocks keep their letter: "A동 1203호", "가동 201호"

Respond ONLY with valid JSON of this shape:
{"normalized": string, "confidence": number between 0 and 1, "reasoning": string, "has_error": boolean}

Important rules:
- Never invent a block or unit number that is not in the input
- If the text is not a detail address (memo, phone number, nonsense), set has_error to true and normalized to ""
- confidence reflects how sure you are that normalized means the same place as the input

Examples:
Input: detail="101-505" class="strict_apartment" building="래미안아파트"
Response: {"normalized": "101동 505호", "confidence": 0.97, "reasoning": "hyphen pair is block-unit", "has_error": false}

Input: detail="비동 삼층" class="relaxed_apartment" building="하이빌"
Response: {"normalized": "B동 3층", "confidence": 0.7, "reasoning": "spelled letter and number", "has_error": false}

Input: detail="문앞에 놔주세요" class="strict_apartment" building="자이"
Response: {"normalized": "", "confidence": 0.0, "reasoning": "delivery memo", "has_error": true}`

// AIDetailNormalizer normalizes detail addresses with a chat model
type AIDetailNormalizer struct {
	client ChatClient
	log    *slog.Logger
}

// NewAIDetailNormalizer creates a new AI detail normalizer
func NewAIDetailNormalizer(client ChatClient, logger *slog.Logger) *AIDetailNormalizer {
	return &AIDetailNormalizer{
		client: client,
		log:    logger.With("component", "ai_normalizer"),
	}
}

type aiDetailAnswer struct {
	Normalized string  `json:"normalized"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
	HasError   bool    `json:"has_error"`
}

// NormalizeDetail asks the model for the canonical form of detail
func (n *AIDetailNormalizer) NormalizeDetail(ctx context.Context, detail string, class model.BuildingClass, buildingName string) (*model.AINormalization, error) {
	if n.client == nil || !n.client.IsEnabled() {
		return nil, ErrAIDisabled
	}

	req := ChatCompletionRequest{
		Messages: []ChatMessage{
			{Role: "system", Content: detailSystemPrompt},
			{Role: "user", Content: fmt.Sprintf("Input: detail=%q class=%q building=%q", detail, class, buildingName)},
		},
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}

	reply, err := n.client.ChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	// Use robust JSON parser to handle various AI output formats
	var answer aiDetailAnswer
	if err := utils.ParseAIJSON(reply.Content, &answer); err != nil {
		n.log.WarnContext(ctx, "unparseable ai answer", slog.String("content", reply.Content))
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}

	result := &model.AINormalization{
		Normalized: strings.TrimSpace(answer.Normalized),
		Confidence: clampUnit(answer.Confidence),
		Reasoning:  answer.Reasoning,
		HasError:   answer.HasError,
	}
	if result.Reasoning == "" {
		result.Reasoning = strings.TrimSpace(reply.Reasoning)
	}
	if !result.HasError && result.Normalized == "" {
		result.HasError = true
	}

	n.log.DebugContext(ctx, "ai detail normalized",
		slog.String("detail", detail),
		slog.String("normalized", result.Normalized),
		slog.Float64("confidence", result.Confidence),
	)
	return result, nil
}

func clampUnit(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
