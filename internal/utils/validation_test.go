package utils_test

import (
	"strings"
	"testing"

	"github.com/mautops/approval-agent/internal/utils"
	"github.com/stretchr/testify/assert"
)

// TestValidateApprovalID 审批 ID 格式校验
func TestValidateApprovalID(t *testing.T) {
	// 合法格式
	assert.NoError(t, utils.ValidateApprovalID("app-001"))
	assert.NoError(t, utils.ValidateApprovalID("550e8400-e29b-41d4-a716-446655440000"))
	assert.NoError(t, utils.ValidateApprovalID("abc_123"))

	// 空 ID
	assert.ErrorIs(t, utils.ValidateApprovalID(""), utils.ErrEmptyID)

	// 非法字符
	assert.ErrorIs(t, utils.ValidateApprovalID("app 001"), utils.ErrInvalidIDFormat)
	assert.ErrorIs(t, utils.ValidateApprovalID("app/001"), utils.ErrInvalidIDFormat)
	assert.ErrorIs(t, utils.ValidateApprovalID("app;drop table"), utils.ErrInvalidIDFormat)

	// 超长 ID
	assert.ErrorIs(t, utils.ValidateApprovalID(strings.Repeat("a", 65)), utils.ErrIDTooLong)
	assert.NoError(t, utils.ValidateApprovalID(strings.Repeat("a", 64)))
}
