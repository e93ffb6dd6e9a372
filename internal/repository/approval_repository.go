package repository

import (
	"errors"
	"fmt"

	"github.com/mautops/approval-agent/internal/model"
	"gorm.io/gorm"
)

// ErrApprovalNotFound 审批记录不存在
var ErrApprovalNotFound = errors.New("approval not found")

// ApprovalRepository 审批仓储接口
type ApprovalRepository interface {
	Save(approval *model.ApprovalModel) error
	FindByID(id string) (*model.ApprovalModel, error)
	FindAll() ([]*model.ApprovalModel, error)
	FindByStatus(status string) ([]*model.ApprovalModel, error)
}

// approvalRepository 审批仓储实现
type approvalRepository struct {
	db *gorm.DB
}

// NewApprovalRepository 创建审批仓储
func NewApprovalRepository(db *gorm.DB) ApprovalRepository {
	return &approvalRepository{db: db}
}

// Save 保存审批记录
func (r *approvalRepository) Save(approval *model.ApprovalModel) error {
	if err := approval.Validate(); err != nil {
		return fmt.Errorf("invalid approval: %w", err)
	}
	return r.db.Save(approval).Error
}

// FindByID 根据 ID 查找审批记录
func (r *approvalRepository) FindByID(id string) (*model.ApprovalModel, error) {
	var approval model.ApprovalModel
	if err := r.db.Where("id = ?", id).First(&approval).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApprovalNotFound
		}
		return nil, err
	}
	return &approval, nil
}

// FindAll 查找所有审批记录,按提交时间倒序
func (r *approvalRepository) FindAll() ([]*model.ApprovalModel, error) {
	var approvals []*model.ApprovalModel
	err := r.db.Order("submitted_at DESC").Find(&approvals).Error
	return approvals, err
}

// FindByStatus 根据状态查找审批记录,按提交时间倒序
func (r *approvalRepository) FindByStatus(status string) ([]*model.ApprovalModel, error) {
	var approvals []*model.ApprovalModel
	err := r.db.Where("status = ?", status).Order("submitted_at DESC").Find(&approvals).Error
	return approvals, err
}
