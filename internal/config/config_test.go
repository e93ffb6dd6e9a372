package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mautops/approval-agent/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefault 默认配置
func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "approvals.db", cfg.Database.Path)
	assert.Equal(t, "admin@example.com", cfg.Agent.AdminEmail)
	assert.Equal(t, 8, cfg.Agent.RequestTimeoutSeconds)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Empty(t, cfg.LLM.APIKey)
	assert.False(t, cfg.Notify.EmailEnabled)
	assert.Equal(t, 587, cfg.Notify.SMTPPort)
	assert.Equal(t, 50.0, cfg.RateLimit.RPS)
	assert.Equal(t, "debug", cfg.Log.Level)
}

// TestLoad_FromFile 从 YAML 文件加载
func TestLoad_FromFile(t *testing.T) {
	configContent := `
env: production
server:
  port: 9090
database:
  driver: postgres
  host: db.internal
  dbname: approvals_prod
agent:
  admin_email: ops@corp.example.com
llm:
  api_key: sk-test
notify:
  teams_webhook_url: https://example.webhook.office.com/hook
`
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(configContent), 0644))

	cfg, err := config.Load(configFile)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.True(t, config.IsProduction(cfg))
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "ops@corp.example.com", cfg.Agent.AdminEmail)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "https://example.webhook.office.com/hook", cfg.Notify.TeamsWebhookURL)

	// 文件未覆盖的字段保留默认值
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
}

// TestLoad_FromEnv 环境变量覆盖
func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_SERVER_PORT", "9999")
	t.Setenv("APP_LLM_API_KEY", "sk-env")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "sk-env", cfg.LLM.APIKey)
}

// TestLoad_InvalidFile 配置文件不存在时报错
func TestLoad_InvalidFile(t *testing.T) {
	_, err := config.Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

// TestIsProduction 环境判断
func TestIsProduction(t *testing.T) {
	assert.False(t, config.IsProduction(nil))
	assert.False(t, config.IsProduction(&config.Config{Env: "development"}))
	assert.True(t, config.IsProduction(&config.Config{Env: "production"}))
}
