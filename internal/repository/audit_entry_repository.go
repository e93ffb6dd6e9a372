package repository

import (
	"fmt"

	"github.com/mautops/approval-agent/internal/model"
	"gorm.io/gorm"
)

// AuditEntryRepository 审计日志仓储接口
// 日志只追加,不提供更新或删除
type AuditEntryRepository interface {
	Append(entry *model.AuditEntryModel) error
	FindByApprovalID(approvalID string) ([]*model.AuditEntryModel, error)
	FindRecent(limit int) ([]*model.AuditEntryModel, error)
}

// auditEntryRepository 审计日志仓储实现
type auditEntryRepository struct {
	db *gorm.DB
}

// NewAuditEntryRepository 创建审计日志仓储
func NewAuditEntryRepository(db *gorm.DB) AuditEntryRepository {
	return &auditEntryRepository{db: db}
}

// Append 追加审计日志
func (r *auditEntryRepository) Append(entry *model.AuditEntryModel) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("invalid audit entry: %w", err)
	}
	return r.db.Create(entry).Error
}

// FindByApprovalID 查找单个审批的审计日志,按时间倒序
func (r *auditEntryRepository) FindByApprovalID(approvalID string) ([]*model.AuditEntryModel, error) {
	var entries []*model.AuditEntryModel
	err := r.db.Where("approval_id = ?", approvalID).Order("timestamp DESC").Find(&entries).Error
	return entries, err
}

// FindRecent 查找最近的审计日志
func (r *auditEntryRepository) FindRecent(limit int) ([]*model.AuditEntryModel, error) {
	if limit <= 0 {
		limit = 200
	}
	var entries []*model.AuditEntryModel
	err := r.db.Order("timestamp DESC").Limit(limit).Find(&entries).Error
	return entries, err
}
