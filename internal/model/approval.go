package model

import (
	"encoding/json"
	"errors"
	"time"
)

// 审批状态
const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusEscalated = "ESCALATED"
)

// MaxEscalationLevel 最大升级级别
// 级别含义: 0 = 无升级, 1 = 委员会主席, 2 = 财务负责人
const MaxEscalationLevel = 2

// Approver 审批人
type Approver struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Level int    `json:"level"`
}

// ApprovalModel 采购审批数据模型
type ApprovalModel struct {
	ID              string     `gorm:"primaryKey;type:varchar(64)" json:"id"`
	VendorName      string     `gorm:"type:varchar(255);not null" json:"vendor_name"`
	Amount          float64    `gorm:"not null" json:"amount"`
	Approvers       []byte     `gorm:"type:jsonb" json:"-"` // 审批人列表
	Status          string     `gorm:"type:varchar(32);not null;index" json:"status"`
	SubmittedAt     time.Time  `gorm:"not null;index" json:"submitted_at"`
	SLAHours        int        `gorm:"not null" json:"sla_hours"`
	LastReminderAt  *time.Time `json:"last_reminder_at"`
	EscalationLevel int        `gorm:"not null;default:0" json:"escalation_level"`
	Requester       string     `gorm:"type:varchar(64);index" json:"requester,omitempty"`
}

// TableName 指定表名
func (ApprovalModel) TableName() string {
	return "approvals"
}

// MarshalJSON 序列化时把存储为 JSON 字节的审批人内联为结构化列表
func (am ApprovalModel) MarshalJSON() ([]byte, error) {
	type alias ApprovalModel

	approvers, err := am.GetApprovers()
	if err != nil {
		return nil, err
	}
	if approvers == nil {
		approvers = []Approver{}
	}

	return json.Marshal(struct {
		alias
		Approvers []Approver `json:"approvers"`
	}{
		alias:     alias(am),
		Approvers: approvers,
	})
}

// Validate 验证审批模型
func (am *ApprovalModel) Validate() error {
	if am.ID == "" {
		return errors.New("approval ID is required")
	}
	if am.VendorName == "" {
		return errors.New("vendor name is required")
	}
	if am.Status == "" {
		return errors.New("approval status is required")
	}
	if am.SLAHours <= 0 {
		return errors.New("SLA hours must be positive")
	}
	if am.EscalationLevel < 0 || am.EscalationLevel > MaxEscalationLevel {
		return errors.New("escalation level out of range")
	}
	return nil
}

// SetApprovers 序列化并设置审批人列表
func (am *ApprovalModel) SetApprovers(approvers []Approver) error {
	data, err := json.Marshal(approvers)
	if err != nil {
		return err
	}
	am.Approvers = data
	return nil
}

// GetApprovers 反序列化审批人列表
func (am *ApprovalModel) GetApprovers() ([]Approver, error) {
	if len(am.Approvers) == 0 {
		return nil, nil
	}
	var approvers []Approver
	if err := json.Unmarshal(am.Approvers, &approvers); err != nil {
		return nil, err
	}
	return approvers, nil
}

// IsPending 判断审批是否处于待处理状态
func (am *ApprovalModel) IsPending() bool {
	return am.Status == StatusPending
}

// PendingHours 计算从提交到参考时刻的小时数（含小数部分）
func (am *ApprovalModel) PendingHours(now time.Time) float64 {
	return now.Sub(am.SubmittedAt).Hours()
}
