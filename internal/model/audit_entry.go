package model

import (
	"encoding/json"
	"errors"
	"time"
)

// 审计操作类型
const (
	ActionCreated    = "created"
	ActionApproved   = "approved"
	ActionReminder   = "reminder"
	ActionEscalation = "escalation"
)

// AuditEntryModel 审计日志数据模型
// 只追加,不允许修改或删除
type AuditEntryModel struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	Timestamp  time.Time `gorm:"not null;index" json:"timestamp"`
	ApprovalID string    `gorm:"type:varchar(64);not null;index" json:"approval_id"`
	Actor      string    `gorm:"type:varchar(64);not null" json:"actor"` // system/user/agent
	Action     string    `gorm:"type:varchar(64);not null;index" json:"action"`
	Message    string    `gorm:"type:text" json:"message,omitempty"`
	Meta       json.RawMessage `gorm:"type:jsonb" json:"meta,omitempty"` // 结构化元数据,序列化时保持 JSON 原样
}

// TableName 指定表名
func (AuditEntryModel) TableName() string {
	return "audit_entries"
}

// Validate 验证审计日志模型
func (ae *AuditEntryModel) Validate() error {
	if ae.ApprovalID == "" {
		return errors.New("approval ID is required")
	}
	if ae.Actor == "" {
		return errors.New("actor is required")
	}
	if ae.Action == "" {
		return errors.New("action is required")
	}
	return nil
}
