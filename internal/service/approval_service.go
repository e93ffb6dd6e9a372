package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/mautops/approval-agent/internal/metrics"
	"github.com/mautops/approval-agent/internal/model"
	"github.com/mautops/approval-agent/internal/repository"
	"github.com/sirupsen/logrus"
)

// ApprovalService 审批服务接口
type ApprovalService interface {
	Create(ctx context.Context, req *CreateApprovalRequest) (*model.ApprovalModel, error)
	Get(id string) (*model.ApprovalModel, error)
	List() ([]*model.ApprovalModel, error)
	Approve(ctx context.Context, id string) error
	AuditTrail(id string) ([]*model.AuditEntryModel, error)
	RecentAudit(limit int) ([]*model.AuditEntryModel, error)
}

// CreateApprovalRequest 创建审批请求
// 所有字段可选,缺省时生成演示数据(与原型行为一致)
type CreateApprovalRequest struct {
	VendorName string  `json:"vendor_name"`
	Amount     float64 `json:"amount"`
	SLAHours   int     `json:"sla_hours"`
	Requester  string  `json:"requester"`
}

// 演示数据候选值
var (
	demoVendors  = []string{"Acme Supplies", "Global Widgets", "NorthTech", "Zenith Services"}
	demoSLAHours = []int{24, 48, 72}
)

// approvalService 审批服务实现
type approvalService struct {
	approvals repository.ApprovalRepository
	audits    repository.AuditEntryRepository
	logger    *logrus.Logger
}

// NewApprovalService 创建审批服务
func NewApprovalService(approvals repository.ApprovalRepository, audits repository.AuditEntryRepository, logger *logrus.Logger) ApprovalService {
	if logger == nil {
		logger = logrus.New()
	}
	return &approvalService{
		approvals: approvals,
		audits:    audits,
		logger:    logger,
	}
}

// Create 创建采购审批
// 未指定的字段按演示规则随机填充;创建动作写入审计日志
func (s *approvalService) Create(ctx context.Context, req *CreateApprovalRequest) (*model.ApprovalModel, error) {
	if req == nil {
		req = &CreateApprovalRequest{}
	}

	vendor := req.VendorName
	if vendor == "" {
		vendor = demoVendors[rand.Intn(len(demoVendors))]
	}
	amount := req.Amount
	if amount == 0 {
		amount = float64(int(rand.Float64()*4950000+50000)) / 100 // 500.00 ~ 50000.00
	}
	slaHours := req.SLAHours
	if slaHours == 0 {
		slaHours = demoSLAHours[rand.Intn(len(demoSLAHours))]
	}

	now := time.Now().UTC()
	approval := &model.ApprovalModel{
		ID:              uuid.New().String(),
		VendorName:      vendor,
		Amount:          amount,
		Status:          model.StatusPending,
		SubmittedAt:     now,
		SLAHours:        slaHours,
		EscalationLevel: 0,
		Requester:       req.Requester,
	}
	if err := approval.SetApprovers([]model.Approver{
		{Name: "Alice", Role: "Reviewer", Level: 1},
		{Name: "Bob", Role: "Chair", Level: 2},
	}); err != nil {
		return nil, fmt.Errorf("failed to set approvers: %w", err)
	}

	if err := s.approvals.Save(approval); err != nil {
		return nil, fmt.Errorf("failed to save approval: %w", err)
	}

	s.appendAudit(&model.AuditEntryModel{
		Timestamp:  now,
		ApprovalID: approval.ID,
		Actor:      "system",
		Action:     model.ActionCreated,
		Message:    fmt.Sprintf("Approval created for %s $%.2f", vendor, amount),
	})

	metrics.RecordApprovalCreated()
	return approval, nil
}

// Get 获取单个审批
func (s *approvalService) Get(id string) (*model.ApprovalModel, error) {
	return s.approvals.FindByID(id)
}

// List 列出全部审批
func (s *approvalService) List() ([]*model.ApprovalModel, error) {
	return s.approvals.FindAll()
}

// Approve 将审批标记为已通过
// 未找到记录时返回 repository.ErrApprovalNotFound,不产生任何变更
func (s *approvalService) Approve(ctx context.Context, id string) error {
	approval, err := s.approvals.FindByID(id)
	if err != nil {
		return err
	}

	approval.Status = model.StatusApproved
	if err := s.approvals.Save(approval); err != nil {
		return fmt.Errorf("failed to save approval: %w", err)
	}

	s.appendAudit(&model.AuditEntryModel{
		Timestamp:  time.Now().UTC(),
		ApprovalID: id,
		Actor:      "user",
		Action:     model.ActionApproved,
		Message:    "Marked approved via API",
	})
	return nil
}

// AuditTrail 获取单个审批的审计日志
func (s *approvalService) AuditTrail(id string) ([]*model.AuditEntryModel, error) {
	if _, err := s.approvals.FindByID(id); err != nil {
		return nil, err
	}
	return s.audits.FindByApprovalID(id)
}

// RecentAudit 获取最近的审计日志
func (s *approvalService) RecentAudit(limit int) ([]*model.AuditEntryModel, error) {
	return s.audits.FindRecent(limit)
}

// appendAudit 追加审计日志,失败记录日志但不阻断主流程
func (s *approvalService) appendAudit(entry *model.AuditEntryModel) {
	if err := s.audits.Append(entry); err != nil {
		s.logger.WithError(err).WithField("approval_id", entry.ApprovalID).Error("Failed to append audit entry")
	}
}
