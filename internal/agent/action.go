// Package agent 实现 SLA 评估与升级工作流。
// 评估器对单个审批做纯粹的紧急度分级并组装通知;运行器驱动评估器扫描全部
// 待处理审批,落库状态变更并写入审计日志。
package agent

// Action 代理对单个审批的处置结果
type Action string

const (
	// ActionNone 未到提醒窗口,不做处理
	ActionNone Action = "no_action"
	// ActionReminder 接近 SLA,发送提醒
	ActionReminder Action = "reminder"
	// ActionEscalate 已超出 SLA,升级处理
	ActionEscalate Action = "escalation"
)

// Classify 根据已等待时长对审批分级
// 区间边界: [0.5*sla, sla] 双侧闭区间为提醒,严格大于 sla 才升级
func Classify(pendingHours float64, slaHours float64) Action {
	if pendingHours < 0.5*slaHours {
		return ActionNone
	}
	if pendingHours <= slaHours {
		return ActionReminder
	}
	return ActionEscalate
}
