package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/mautops/approval-agent/internal/config"
	"github.com/sirupsen/logrus"
)

// OpenAIGenerator 基于 OpenAI completions 接口的文本生成器
type OpenAIGenerator struct {
	apiKey    string
	baseURL   string
	model     string
	maxTokens int
	client    *http.Client
	logger    *logrus.Logger
}

// NewOpenAIGenerator 创建 OpenAI 文本生成器
// cfg.APIKey 为空时生成器处于未配置状态,Rewrite 直接透传
func NewOpenAIGenerator(cfg config.LLMConfig, logger *logrus.Logger) *OpenAIGenerator {
	if logger == nil {
		logger = logrus.New()
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 150
	}

	timeout := cfg.TimeoutSeconds
	if timeout == 0 {
		timeout = 8
	}

	return &OpenAIGenerator{
		apiKey:    cfg.APIKey,
		baseURL:   baseURL,
		model:     cfg.Model,
		maxTokens: maxTokens,
		client: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
		logger: logger,
	}
}

// completionRequest completions 请求体
type completionRequest struct {
	Model     string `json:"model"`
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens"`
}

// completionResponse completions 响应体
type completionResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
}

// Rewrite 改写 prompt 文本
// 未配置 API Key、网络失败、非 2xx 响应或响应无内容时,原样返回 prompt
func (g *OpenAIGenerator) Rewrite(ctx context.Context, prompt string) string {
	if g.apiKey == "" {
		// 未配置模型凭据不是错误,直接使用模板文本
		return prompt
	}

	body, err := json.Marshal(completionRequest{
		Model:     g.model,
		Prompt:    prompt,
		MaxTokens: g.maxTokens,
	})
	if err != nil {
		g.logger.WithError(err).Warn("Failed to marshal completion request")
		return prompt
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/completions", bytes.NewReader(body))
	if err != nil {
		g.logger.WithError(err).Warn("Failed to create completion request")
		return prompt
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.WithError(err).Warn("Completion request failed, falling back to template")
		return prompt
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		g.logger.WithField("status", resp.StatusCode).Warn("Completion request returned non-2xx, falling back to template")
		return prompt
	}

	var result completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		g.logger.WithError(err).Warn("Failed to decode completion response, falling back to template")
		return prompt
	}

	if len(result.Choices) == 0 {
		return prompt
	}

	text := strings.TrimSpace(result.Choices[0].Text)
	if text == "" {
		return prompt
	}
	return text
}
