package agent_test

import (
	"testing"

	"github.com/mautops/approval-agent/internal/agent"
	"github.com/stretchr/testify/assert"
)

// TestClassify_Ranges 测试三个分级区间
func TestClassify_Ranges(t *testing.T) {
	// 未到提醒窗口
	assert.Equal(t, agent.ActionNone, agent.Classify(10, 72))
	assert.Equal(t, agent.ActionNone, agent.Classify(0, 24))
	assert.Equal(t, agent.ActionNone, agent.Classify(11.9, 24))

	// 提醒窗口内
	assert.Equal(t, agent.ActionReminder, agent.Classify(30, 48))
	assert.Equal(t, agent.ActionReminder, agent.Classify(23.5, 24))

	// 已超出 SLA
	assert.Equal(t, agent.ActionEscalate, agent.Classify(30, 24))
	assert.Equal(t, agent.ActionEscalate, agent.Classify(72.1, 72))
}

// TestClassify_Boundaries 测试区间边界
// 下边界 0.5*sla 与上边界 sla 都属于提醒区间
func TestClassify_Boundaries(t *testing.T) {
	// 恰好等于 0.5*sla -> 提醒
	assert.Equal(t, agent.ActionReminder, agent.Classify(12, 24))

	// 恰好等于 sla -> 提醒,不升级
	assert.Equal(t, agent.ActionReminder, agent.Classify(24, 24))

	// 略超出 sla -> 升级
	assert.Equal(t, agent.ActionEscalate, agent.Classify(24.01, 24))
}

// TestClassify_NegativePending 提交时间在未来时按未到窗口处理
func TestClassify_NegativePending(t *testing.T) {
	assert.Equal(t, agent.ActionNone, agent.Classify(-1, 24))
}
