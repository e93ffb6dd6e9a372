package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mautops/approval-agent/internal/config"
	"github.com/mautops/approval-agent/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestOpenAIGenerator_Rewrite 正常改写时返回模型输出
func TestOpenAIGenerator_Rewrite(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]string{
				{"text": "  Friendly reminder: please review approval app-001.  "},
			},
		})
	}))
	defer server.Close()

	generator := llm.NewOpenAIGenerator(config.LLMConfig{
		APIKey:    "test-key",
		BaseURL:   server.URL,
		Model:     "gpt-4o-mini",
		MaxTokens: 150,
	}, nil)

	result := generator.Rewrite(context.Background(), "Reminder: please review")
	assert.Equal(t, "Friendly reminder: please review approval app-001.", result)
	assert.Equal(t, "gpt-4o-mini", captured["model"])
	assert.Equal(t, "Reminder: please review", captured["prompt"])
}

// TestOpenAIGenerator_NoAPIKey 未配置凭据时直接透传
func TestOpenAIGenerator_NoAPIKey(t *testing.T) {
	generator := llm.NewOpenAIGenerator(config.LLMConfig{}, nil)
	assert.Equal(t, "original text", generator.Rewrite(context.Background(), "original text"))
}

// TestOpenAIGenerator_ServerError 非 2xx 响应回落到原文
func TestOpenAIGenerator_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	generator := llm.NewOpenAIGenerator(config.LLMConfig{APIKey: "test-key", BaseURL: server.URL}, nil)
	assert.Equal(t, "original text", generator.Rewrite(context.Background(), "original text"))
}

// TestOpenAIGenerator_EmptyChoices 空响应回落到原文
func TestOpenAIGenerator_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	generator := llm.NewOpenAIGenerator(config.LLMConfig{APIKey: "test-key", BaseURL: server.URL}, nil)
	assert.Equal(t, "original text", generator.Rewrite(context.Background(), "original text"))
}

// TestOpenAIGenerator_Unreachable 网络失败回落到原文
func TestOpenAIGenerator_Unreachable(t *testing.T) {
	generator := llm.NewOpenAIGenerator(config.LLMConfig{
		APIKey:         "test-key",
		BaseURL:        "http://127.0.0.1:1",
		TimeoutSeconds: 1,
	}, nil)
	assert.Equal(t, "original text", generator.Rewrite(context.Background(), "original text"))
}

// TestStaticGenerator 固定文本替身
func TestStaticGenerator(t *testing.T) {
	generator := &llm.StaticGenerator{Text: "rewritten"}
	assert.Equal(t, "rewritten", generator.Rewrite(context.Background(), "anything"))

	passthrough := &llm.PassthroughGenerator{}
	assert.Equal(t, "anything", passthrough.Rewrite(context.Background(), "anything"))
}
