package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/mautops/approval-agent/internal/metrics"
	"github.com/sirupsen/logrus"
)

// TeamsNotifier 通过 Incoming Webhook 向 Microsoft Teams 频道发送消息
type TeamsNotifier struct {
	webhookURL string
	client     *http.Client
	logger     *logrus.Logger
}

// NewTeamsNotifier 创建 Teams 通知器
// webhookURL 为空时通知器处于未配置状态,Notify 记录一条提示后跳过发送
func NewTeamsNotifier(webhookURL string, timeoutSeconds int, logger *logrus.Logger) *TeamsNotifier {
	if logger == nil {
		logger = logrus.New()
	}
	if timeoutSeconds == 0 {
		timeoutSeconds = 5
	}
	return &TeamsNotifier{
		webhookURL: webhookURL,
		client: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
		logger: logger,
	}
}

// teamsPayload Teams Adaptive Card 消息体
type teamsPayload struct {
	Type        string            `json:"type"`
	Attachments []teamsAttachment `json:"attachments"`
}

type teamsAttachment struct {
	ContentType string       `json:"contentType"`
	Content     adaptiveCard `json:"content"`
}

type adaptiveCard struct {
	Type    string      `json:"type"`
	Body    []textBlock `json:"body"`
	Schema  string      `json:"$schema"`
	Version string      `json:"version"`
}

type textBlock struct {
	Type   string `json:"type"`
	Text   string `json:"text"`
	Weight string `json:"weight,omitempty"`
	Size   string `json:"size,omitempty"`
	Wrap   bool   `json:"wrap,omitempty"`
}

// buildCard 构建 Adaptive Card 消息体
func buildCard(title string, message string) *teamsPayload {
	return &teamsPayload{
		Type: "message",
		Attachments: []teamsAttachment{
			{
				ContentType: "application/vnd.microsoft.card.adaptive",
				Content: adaptiveCard{
					Type: "AdaptiveCard",
					Body: []textBlock{
						{Type: "TextBlock", Text: title, Weight: "bolder", Size: "medium"},
						{Type: "TextBlock", Text: message, Wrap: true},
					},
					Schema:  "http://adaptivecards.io/schemas/adaptive-card.json",
					Version: "1.0",
				},
			},
		},
	}
}

// Notify 向 Teams 频道发送一条消息
// recipient 对频道消息无意义,仅为满足 Notifier 接口
func (t *TeamsNotifier) Notify(ctx context.Context, title string, message string, recipient string) bool {
	if t.webhookURL == "" {
		t.logger.WithField("title", title).Info("Teams webhook not configured, notification skipped")
		metrics.RecordNotification("teams", "skipped")
		return false
	}

	body, err := json.Marshal(buildCard(title, message))
	if err != nil {
		t.logger.WithError(err).Error("Failed to marshal Teams payload")
		metrics.RecordNotification("teams", "failed")
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.webhookURL, bytes.NewReader(body))
	if err != nil {
		t.logger.WithError(err).Error("Failed to create Teams request")
		metrics.RecordNotification("teams", "failed")
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.WithError(err).Error("Failed to send Teams notification")
		metrics.RecordNotification("teams", "failed")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		t.logger.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"title":  title,
		}).Error("Teams notification rejected")
		metrics.RecordNotification("teams", "failed")
		return false
	}

	t.logger.WithField("title", title).Info("Teams notification sent")
	metrics.RecordNotification("teams", "sent")
	return true
}
