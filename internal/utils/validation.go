package utils

import (
	"errors"
	"regexp"
)

// 校验错误
var (
	ErrEmptyID         = errors.New("ID cannot be empty")
	ErrInvalidIDFormat = errors.New("ID contains invalid characters")
	ErrIDTooLong       = errors.New("ID is too long")
)

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateApprovalID 验证审批 ID 格式
// 只允许字母、数字、连字符、下划线,最长 64 字符
func ValidateApprovalID(id string) error {
	if id == "" {
		return ErrEmptyID
	}
	if len(id) > 64 {
		return ErrIDTooLong
	}
	if !idPattern.MatchString(id) {
		return ErrInvalidIDFormat
	}
	return nil
}
