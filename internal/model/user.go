package model

import "errors"

// 用户角色
const (
	RoleRequester = "REQUESTER"
	RoleApprover  = "APPROVER"
	RoleChair     = "CHAIR"
	RoleFinance   = "FINANCE"
)

// UserModel 用户数据模型
// 仅用于按升级级别解析通知接收人,不做认证
type UserModel struct {
	Username string `gorm:"primaryKey;type:varchar(64)" json:"username"`
	Password string `gorm:"type:varchar(255);not null" json:"-"` // bcrypt 哈希
	Role     string `gorm:"type:varchar(32);not null;index" json:"role"`
	Email    string `gorm:"type:varchar(255)" json:"email,omitempty"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// Validate 验证用户模型
func (um *UserModel) Validate() error {
	if um.Username == "" {
		return errors.New("username is required")
	}
	if um.Role == "" {
		return errors.New("role is required")
	}
	return nil
}

// RoleForEscalationLevel 根据升级级别返回对应角色
// 级别 0 -> 审批人, 1 -> 主席, 2 -> 财务;未知级别返回空串
func RoleForEscalationLevel(level int) string {
	switch level {
	case 0:
		return RoleApprover
	case 1:
		return RoleChair
	case 2:
		return RoleFinance
	default:
		return ""
	}
}
