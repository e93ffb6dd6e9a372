package agent

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/mautops/approval-agent/internal/model"
	"github.com/mautops/approval-agent/internal/repository"
	"github.com/sirupsen/logrus"
)

// ErrRunInProgress 已有一次评估在执行
var ErrRunInProgress = errors.New("agent run already in progress")

// ActionTaken 一次评估中实际执行的动作
type ActionTaken struct {
	ApprovalID string `json:"id"`
	Action     Action `json:"action"`
}

// Runner 工作流运行器
// 扫描全部 PENDING 审批,逐个评估并落库状态变更与审计日志
type Runner struct {
	approvals repository.ApprovalRepository
	audits    repository.AuditEntryRepository
	evaluator *Evaluator
	logger    *logrus.Logger

	// 单飞锁: 同一时刻只允许一次评估
	mu sync.Mutex
}

// NewRunner 创建工作流运行器
func NewRunner(approvals repository.ApprovalRepository, audits repository.AuditEntryRepository, evaluator *Evaluator, logger *logrus.Logger) *Runner {
	if logger == nil {
		logger = logrus.New()
	}
	return &Runner{
		approvals: approvals,
		audits:    audits,
		evaluator: evaluator,
		logger:    logger,
	}
}

// Run 执行一次评估
// 整次运行使用同一个 now 时间戳;单个审批的持久化失败只记录日志,
// 不中断其余审批的处理。并发触发时第二次调用返回 ErrRunInProgress。
func (r *Runner) Run(ctx context.Context) ([]ActionTaken, error) {
	if !r.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer r.mu.Unlock()

	now := time.Now().UTC()

	pending, err := r.approvals.FindByStatus(model.StatusPending)
	if err != nil {
		return nil, err
	}

	actions := make([]ActionTaken, 0)
	for _, approval := range pending {
		result := r.evaluator.Evaluate(ctx, approval, now)

		switch result.Action {
		case ActionReminder:
			if r.applyReminder(approval, result, now) {
				actions = append(actions, ActionTaken{ApprovalID: approval.ID, Action: ActionReminder})
			}

		case ActionEscalate:
			if r.applyEscalation(approval, result, now) {
				actions = append(actions, ActionTaken{ApprovalID: approval.ID, Action: ActionEscalate})
			}
		}
	}

	return actions, nil
}

// applyReminder 落库提醒动作: 更新 last_reminder_at 并写审计
func (r *Runner) applyReminder(approval *model.ApprovalModel, result Result, now time.Time) bool {
	approval.LastReminderAt = &now
	if err := r.approvals.Save(approval); err != nil {
		r.logger.WithError(err).WithField("approval_id", approval.ID).Error("Failed to persist reminder")
		return false
	}

	r.appendAudit(&model.AuditEntryModel{
		Timestamp:  now,
		ApprovalID: approval.ID,
		Actor:      "agent",
		Action:     model.ActionReminder,
		Message:    result.Message,
	})
	return true
}

// applyEscalation 落库升级动作: 提升级别、置为 ESCALATED 并写审计
func (r *Runner) applyEscalation(approval *model.ApprovalModel, result Result, now time.Time) bool {
	nextLevel := approval.EscalationLevel + 1
	if nextLevel > model.MaxEscalationLevel {
		nextLevel = model.MaxEscalationLevel
	}
	approval.EscalationLevel = nextLevel
	approval.Status = model.StatusEscalated

	if err := r.approvals.Save(approval); err != nil {
		r.logger.WithError(err).WithField("approval_id", approval.ID).Error("Failed to persist escalation")
		return false
	}

	meta, _ := json.Marshal(map[string]int{"escalation_level": nextLevel})
	r.appendAudit(&model.AuditEntryModel{
		Timestamp:  now,
		ApprovalID: approval.ID,
		Actor:      "agent",
		Action:     model.ActionEscalation,
		Message:    result.Message,
		Meta:       meta,
	})
	return true
}

// appendAudit 追加审计日志,失败只记录
func (r *Runner) appendAudit(entry *model.AuditEntryModel) {
	if err := r.audits.Append(entry); err != nil {
		r.logger.WithError(err).WithField("approval_id", entry.ApprovalID).Error("Failed to append audit entry")
	}
}
