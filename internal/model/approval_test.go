package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/mautops/approval-agent/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validApproval() *model.ApprovalModel {
	return &model.ApprovalModel{
		ID:          "app-001",
		VendorName:  "Acme Supplies",
		Amount:      1000,
		Status:      model.StatusPending,
		SubmittedAt: time.Now().UTC(),
		SLAHours:    48,
	}
}

// TestApprovalModel_Validate 模型校验
func TestApprovalModel_Validate(t *testing.T) {
	assert.NoError(t, validApproval().Validate())

	noID := validApproval()
	noID.ID = ""
	assert.Error(t, noID.Validate())

	noVendor := validApproval()
	noVendor.VendorName = ""
	assert.Error(t, noVendor.Validate())

	noStatus := validApproval()
	noStatus.Status = ""
	assert.Error(t, noStatus.Validate())

	badSLA := validApproval()
	badSLA.SLAHours = 0
	assert.Error(t, badSLA.Validate())

	badLevel := validApproval()
	badLevel.EscalationLevel = model.MaxEscalationLevel + 1
	assert.Error(t, badLevel.Validate())
}

// TestApprovalModel_Approvers 审批人序列化往返
func TestApprovalModel_Approvers(t *testing.T) {
	approval := validApproval()
	require.NoError(t, approval.SetApprovers([]model.Approver{
		{Name: "Alice", Role: "Reviewer", Level: 1},
	}))

	approvers, err := approval.GetApprovers()
	require.NoError(t, err)
	require.Len(t, approvers, 1)
	assert.Equal(t, "Alice", approvers[0].Name)

	// 未设置审批人时返回空
	empty := validApproval()
	approvers, err = empty.GetApprovers()
	require.NoError(t, err)
	assert.Nil(t, approvers)
}

// TestApprovalModel_MarshalJSON 序列化时内联审批人列表
func TestApprovalModel_MarshalJSON(t *testing.T) {
	approval := validApproval()
	require.NoError(t, approval.SetApprovers([]model.Approver{
		{Name: "Alice", Role: "Reviewer", Level: 1},
		{Name: "Bob", Role: "Chair", Level: 2},
	}))

	data, err := json.Marshal(approval)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	approvers, ok := decoded["approvers"].([]interface{})
	require.True(t, ok, "approvers must be a JSON array")
	require.Len(t, approvers, 2)

	first := approvers[0].(map[string]interface{})
	assert.Equal(t, "Alice", first["name"])
	assert.Equal(t, "Reviewer", first["role"])
	assert.Equal(t, float64(1), first["level"])

	// 原始字节列不出现在输出中
	assert.NotContains(t, string(data), "Approvers")
}

// TestApprovalModel_MarshalJSON_NoApprovers 未设置审批人时输出空数组而非 null
func TestApprovalModel_MarshalJSON_NoApprovers(t *testing.T) {
	data, err := json.Marshal(validApproval())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"approvers":[]`)
}

// TestAuditEntryModel_MarshalJSON meta 序列化为结构化 JSON 而非 base64
func TestAuditEntryModel_MarshalJSON(t *testing.T) {
	meta, err := json.Marshal(map[string]int{"escalation_level": 1})
	require.NoError(t, err)

	entry := &model.AuditEntryModel{
		Timestamp:  time.Now().UTC(),
		ApprovalID: "app-001",
		Actor:      "agent",
		Action:     model.ActionEscalation,
		Message:    "escalated",
		Meta:       meta,
	}

	data, err := json.Marshal(entry)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"meta":{"escalation_level":1}`)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	decodedMeta := decoded["meta"].(map[string]interface{})
	assert.Equal(t, float64(1), decodedMeta["escalation_level"])
}

// TestApprovalModel_PendingHours 挂起时长计算
func TestApprovalModel_PendingHours(t *testing.T) {
	approval := validApproval()
	approval.SubmittedAt = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	now := time.Date(2025, 6, 1, 36, 0, 0, 0, time.UTC)
	assert.InDelta(t, 36.0, approval.PendingHours(now), 0.001)

	// 带小数部分
	now = approval.SubmittedAt.Add(90 * time.Minute)
	assert.InDelta(t, 1.5, approval.PendingHours(now), 0.001)
}

// TestApprovalModel_IsPending 状态判断
func TestApprovalModel_IsPending(t *testing.T) {
	approval := validApproval()
	assert.True(t, approval.IsPending())

	approval.Status = model.StatusApproved
	assert.False(t, approval.IsPending())

	approval.Status = model.StatusEscalated
	assert.False(t, approval.IsPending())
}

// TestRoleForEscalationLevel 升级级别到角色的映射
func TestRoleForEscalationLevel(t *testing.T) {
	assert.Equal(t, model.RoleApprover, model.RoleForEscalationLevel(0))
	assert.Equal(t, model.RoleChair, model.RoleForEscalationLevel(1))
	assert.Equal(t, model.RoleFinance, model.RoleForEscalationLevel(2))
	assert.Equal(t, "", model.RoleForEscalationLevel(3))
	assert.Equal(t, "", model.RoleForEscalationLevel(-1))
}

// TestAuditEntryModel_Validate 审计日志校验
func TestAuditEntryModel_Validate(t *testing.T) {
	entry := &model.AuditEntryModel{
		Timestamp:  time.Now().UTC(),
		ApprovalID: "app-001",
		Actor:      "agent",
		Action:     model.ActionReminder,
	}
	assert.NoError(t, entry.Validate())

	entry.ApprovalID = ""
	assert.Error(t, entry.Validate())
}
