package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"addrcore/internal/config"
)

const openAIReply = `{
  "model": "gpt-4o-mini",
  "choices": [{"message": {"role": "assistant", "content": "{\"normalized\":\"101동 505호\"}"}, "finish_reason": "stop"}],
  "usage": {"total_tokens": 42}
}`

func TestOpenAIClient_ChatCompletion(t *testing.T) {
	var got ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, openAIReply)
	}))
	defer srv.Close()

	client := NewOpenAIClient(&config.OpenAIConfig{
		APIKey:          "sk-test",
		APIBase:         srv.URL,
		ChatModel:       "gpt-4o-mini",
		ChatTemperature: 0.1,
		ChatMaxTokens:   256,
		ChatExtraBody:   `{"chat_template_kwargs":{"thinking":false}}`,
		Timeout:         5,
		Enabled:         true,
	}, discardLogger())

	reply, err := client.ChatCompletion(context.Background(), ChatCompletionRequest{
		Messages: []ChatMessage{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)

	assert.Equal(t, `{"normalized":"101동 505호"}`, reply.Content)
	assert.Equal(t, "stop", reply.FinishReason)
	assert.Equal(t, 42, reply.TotalTokens)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.InDelta(t, 0.1, got.Temperature, 1e-9)
	assert.Equal(t, 256, got.MaxTokens)
	assert.Contains(t, got.ExtraBody, "chat_template_kwargs")
}

func TestOpenAIClient_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewOpenAIClient(&config.OpenAIConfig{APIKey: "k", APIBase: srv.URL, Timeout: 5, Enabled: true}, discardLogger())

	_, err := client.ChatCompletion(context.Background(), ChatCompletionRequest{})
	require.Error(t, err)

	var apiErr *ChatAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "rate limited")
}

func TestOpenAIClient_RequestOverridesDefaults(t *testing.T) {
	var got ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = io.WriteString(w, openAIReply)
	}))
	defer srv.Close()

	client := NewOpenAIClient(&config.OpenAIConfig{
		APIKey:          "k",
		APIBase:         srv.URL + "/v1/",
		ChatModel:       "gpt-4o-mini",
		ChatTemperature: 0.1,
		ChatMaxTokens:   256,
		Timeout:         5,
		Enabled:         true,
	}, discardLogger())

	_, err := client.ChatCompletion(context.Background(), ChatCompletionRequest{
		Model:       "deepseek-r1",
		Temperature: 0.6,
		MaxTokens:   64,
		ExtraBody:   map[string]any{"chat_template_kwargs": map[string]any{"thinking": true}},
	})
	require.NoError(t, err)

	assert.Equal(t, "deepseek-r1", got.Model)
	assert.InDelta(t, 0.6, got.Temperature, 1e-9)
	assert.Equal(t, 64, got.MaxTokens)
	assert.Contains(t, got.ExtraBody, "chat_template_kwargs")
}

func TestOpenAIClient_Disabled(t *testing.T) {
	client := NewOpenAIClient(&config.OpenAIConfig{APIBase: "https://api.openai.com/v1"}, discardLogger())

	assert.False(t, client.IsEnabled())
	_, err := client.ChatCompletion(context.Background(), ChatCompletionRequest{})
	assert.ErrorIs(t, err, ErrChatDisabled)
}

func TestResponseParsers(t *testing.T) {
	reply, err := (&OpenAIResponseParser{}).ParseResponse([]byte(openAIReply))
	require.NoError(t, err)
	assert.Empty(t, reply.Reasoning)

	nvidia := `{"model":"deepseek-r1","choices":[{"message":{"content":"{}","reasoning_content":"think"},"finish_reason":"stop"}]}`
	reply, err = (&NVIDIAResponseParser{}).ParseResponse([]byte(nvidia))
	require.NoError(t, err)
	assert.Equal(t, "think", reply.Reasoning)
	assert.Equal(t, "deepseek-r1", reply.Model)

	_, err = (&OpenAIResponseParser{}).ParseResponse([]byte(`{"choices":[]}`))
	assert.ErrorIs(t, err, errNoChoices)
	_, err = (&NVIDIAResponseParser{}).ParseResponse([]byte(`{"choices":[]}`))
	assert.ErrorIs(t, err, errNoChoices)
}

func TestProviderDetection(t *testing.T) {
	assert.True(t, IsNVIDIAProvider("https://integrate.api.nvidia.com/v1/"))
	assert.False(t, IsNVIDIAProvider("https://api.openai.com/v1"))
	assert.True(t, IsOpenAIProvider("https://api.openai.com/v1"))
	assert.False(t, IsOpenAIProvider("http://localhost:11434/v1"))
}
