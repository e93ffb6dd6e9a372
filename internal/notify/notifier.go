// Package notify 提供尽力而为的出站通知能力。
// 通知投递不保证送达,失败只记录日志,不向调用方抛错。
package notify

import (
	"context"
	"sync"
)

// Notifier 通知发送接口
// 返回值表示是否确认发出,实现不允许 panic 或返回错误
type Notifier interface {
	Notify(ctx context.Context, title string, message string, recipient string) bool
}

// MultiNotifier 组合多个通知渠道,逐个发送
type MultiNotifier struct {
	notifiers []Notifier
}

// NewMultiNotifier 创建组合通知器,nil 渠道会被过滤
func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	filtered := make([]Notifier, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			filtered = append(filtered, n)
		}
	}
	return &MultiNotifier{notifiers: filtered}
}

// Notify 发送到所有渠道,任一渠道确认发出即返回 true
func (m *MultiNotifier) Notify(ctx context.Context, title string, message string, recipient string) bool {
	delivered := false
	for _, n := range m.notifiers {
		if n.Notify(ctx, title, message, recipient) {
			delivered = true
		}
	}
	return delivered
}

// NoopNotifier 空通知器,用于关闭通知或测试
type NoopNotifier struct{}

// Notify 什么都不做
func (n *NoopNotifier) Notify(_ context.Context, _ string, _ string, _ string) bool {
	return false
}

// Notification 一次通知请求的记录
type Notification struct {
	Title     string
	Message   string
	Recipient string
}

// RecordingNotifier 记录所有通知请求的测试替身
type RecordingNotifier struct {
	mu            sync.Mutex
	notifications []Notification
	Delivered     bool // Notify 的返回值,默认 false
}

// Notify 记录通知内容
func (r *RecordingNotifier) Notify(_ context.Context, title string, message string, recipient string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, Notification{
		Title:     title,
		Message:   message,
		Recipient: recipient,
	})
	return r.Delivered
}

// Notifications 返回已记录的通知副本
func (r *RecordingNotifier) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.notifications))
	copy(out, r.notifications)
	return out
}
