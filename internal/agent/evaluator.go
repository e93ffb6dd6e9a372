package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mautops/approval-agent/internal/llm"
	"github.com/mautops/approval-agent/internal/model"
	"github.com/mautops/approval-agent/internal/notify"
	"github.com/mautops/approval-agent/internal/repository"
	"github.com/sirupsen/logrus"
)

// 通知标题
const (
	reminderTitle   = "Approval Reminder"
	escalationTitle = "Approval Escalation"
)

// Result 单次评估结果
// Evaluate 不修改审批记录,状态变更由运行器根据 Action 执行
type Result struct {
	Action    Action
	Message   string
	Recipient string
}

// RecipientResolver 根据升级级别解析通知接收人
type RecipientResolver struct {
	users      repository.UserRepository
	adminEmail string
}

// NewRecipientResolver 创建接收人解析器
// adminEmail 是级别或用户缺失时的兜底地址
func NewRecipientResolver(users repository.UserRepository, adminEmail string) *RecipientResolver {
	return &RecipientResolver{
		users:      users,
		adminEmail: adminEmail,
	}
}

// ResolveForLevel 解析某个升级级别的接收人地址
// 未知级别、角色无用户或用户无邮箱时返回管理员地址,不报错
func (r *RecipientResolver) ResolveForLevel(level int) string {
	role := model.RoleForEscalationLevel(level)
	if role == "" {
		return r.adminEmail
	}

	user, err := r.users.FindByRole(role)
	if err != nil || user.Email == "" {
		return r.adminEmail
	}
	return user.Email
}

// Evaluator SLA 评估器
// 对单个审批分级,并为提醒/升级两种动作组装消息、请求一次通知
type Evaluator struct {
	mu         sync.RWMutex
	generator  llm.Generator
	notifier   notify.Notifier
	recipients *RecipientResolver
	timeout    time.Duration
	logger     *logrus.Logger
}

// NewEvaluator 创建 SLA 评估器
// timeout 约束单次评估内的外呼调用(语言模型与通知投递)
func NewEvaluator(generator llm.Generator, notifier notify.Notifier, recipients *RecipientResolver, timeout time.Duration, logger *logrus.Logger) *Evaluator {
	if logger == nil {
		logger = logrus.New()
	}
	if timeout == 0 {
		timeout = 8 * time.Second
	}
	return &Evaluator{
		generator:  generator,
		notifier:   notifier,
		recipients: recipients,
		timeout:    timeout,
		logger:     logger,
	}
}

// SetOutbound 替换语言模型与通知客户端
// 配置热更新时由容器调用,进行中的评估继续使用旧客户端
func (e *Evaluator) SetOutbound(generator llm.Generator, notifier notify.Notifier) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generator = generator
	e.notifier = notifier
}

// outbound 获取当前的外呼客户端
func (e *Evaluator) outbound() (llm.Generator, notify.Notifier) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.generator, e.notifier
}

// reminderMessage 提醒消息模板
func reminderMessage(a *model.ApprovalModel) string {
	return fmt.Sprintf(
		"Reminder: Approval %s for vendor %s ($%.2f) is approaching SLA (submitted %s). Please review and approve if ready.",
		a.ID, a.VendorName, a.Amount, a.SubmittedAt.UTC().Format(time.RFC3339),
	)
}

// escalationMessage 升级消息模板
func escalationMessage(a *model.ApprovalModel) string {
	return fmt.Sprintf(
		"Escalation: Approval %s for %s ($%.2f) has breached SLA (submitted %s). Please escalate to the next authority with necessary context.",
		a.ID, a.VendorName, a.Amount, a.SubmittedAt.UTC().Format(time.RFC3339),
	)
}

// Evaluate 评估单个审批的紧急度
// 语言模型失败时使用原始模板;通知失败只记录,不影响返回结果
func (e *Evaluator) Evaluate(ctx context.Context, approval *model.ApprovalModel, now time.Time) Result {
	pending := approval.PendingHours(now)
	action := Classify(pending, float64(approval.SLAHours))
	generator, notifier := e.outbound()

	switch action {
	case ActionReminder:
		callCtx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()

		message := generator.Rewrite(callCtx, reminderMessage(approval))
		recipient := e.recipients.ResolveForLevel(0)
		notifier.Notify(callCtx, reminderTitle, message, recipient)

		return Result{Action: ActionReminder, Message: message, Recipient: recipient}

	case ActionEscalate:
		callCtx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()

		message := generator.Rewrite(callCtx, escalationMessage(approval))

		nextLevel := approval.EscalationLevel + 1
		if nextLevel > model.MaxEscalationLevel {
			nextLevel = model.MaxEscalationLevel
		}
		recipient := e.recipients.ResolveForLevel(nextLevel)
		notifier.Notify(callCtx, escalationTitle, message, recipient)

		return Result{Action: ActionEscalate, Message: message, Recipient: recipient}

	default:
		return Result{Action: ActionNone}
	}
}
