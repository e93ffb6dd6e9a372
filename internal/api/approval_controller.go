package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mautops/approval-agent/internal/repository"
	"github.com/mautops/approval-agent/internal/service"
	"github.com/mautops/approval-agent/internal/utils"
)

// ApprovalController 审批控制器
type ApprovalController struct {
	approvalService service.ApprovalService
}

// NewApprovalController 创建审批控制器
func NewApprovalController(approvalService service.ApprovalService) *ApprovalController {
	return &ApprovalController{
		approvalService: approvalService,
	}
}

// validateApprovalID 验证审批 ID 并返回错误响应(如果无效)
func (c *ApprovalController) validateApprovalID(ctx *gin.Context, id string) bool {
	if err := utils.ValidateApprovalID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid approval ID", err.Error())
		return false
	}
	return true
}

// Create 创建审批
// POST /api/v1/approvals
// 请求体可选,缺省字段按演示规则填充
func (c *ApprovalController) Create(ctx *gin.Context) {
	var req service.CreateApprovalRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
			return
		}
	}

	approval, err := c.approvalService.Create(ctx.Request.Context(), &req)
	if err != nil {
		Error(ctx, http.StatusInternalServerError, "failed to create approval", err.Error())
		return
	}

	Success(ctx, approval)
}

// List 列出全部审批
// GET /api/v1/approvals
func (c *ApprovalController) List(ctx *gin.Context) {
	approvals, err := c.approvalService.List()
	if err != nil {
		Error(ctx, http.StatusInternalServerError, "failed to list approvals", err.Error())
		return
	}

	Success(ctx, approvals)
}

// Get 获取审批详情
// GET /api/v1/approvals/:id
func (c *ApprovalController) Get(ctx *gin.Context) {
	id := ctx.Param("id")
	if !c.validateApprovalID(ctx, id) {
		return
	}

	approval, err := c.approvalService.Get(id)
	if err != nil {
		if errors.Is(err, repository.ErrApprovalNotFound) {
			Error(ctx, http.StatusNotFound, "approval not found", "")
			return
		}
		Error(ctx, http.StatusInternalServerError, "failed to get approval", err.Error())
		return
	}

	Success(ctx, approval)
}

// Approve 标记审批为已通过
// POST /api/v1/approvals/:id/approve
func (c *ApprovalController) Approve(ctx *gin.Context) {
	id := ctx.Param("id")
	if !c.validateApprovalID(ctx, id) {
		return
	}

	if err := c.approvalService.Approve(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrApprovalNotFound) {
			Error(ctx, http.StatusNotFound, "approval not found", "")
			return
		}
		Error(ctx, http.StatusInternalServerError, "failed to approve", err.Error())
		return
	}

	Success(ctx, gin.H{"ok": true})
}

// AuditTrail 获取单个审批的审计日志
// GET /api/v1/approvals/:id/audit
func (c *ApprovalController) AuditTrail(ctx *gin.Context) {
	id := ctx.Param("id")
	if !c.validateApprovalID(ctx, id) {
		return
	}

	entries, err := c.approvalService.AuditTrail(id)
	if err != nil {
		if errors.Is(err, repository.ErrApprovalNotFound) {
			Error(ctx, http.StatusNotFound, "approval not found", "")
			return
		}
		Error(ctx, http.StatusInternalServerError, "failed to get audit trail", err.Error())
		return
	}

	Success(ctx, entries)
}

// RecentAudit 获取最近的审计日志
// GET /api/v1/audit
func (c *ApprovalController) RecentAudit(ctx *gin.Context) {
	entries, err := c.approvalService.RecentAudit(200)
	if err != nil {
		Error(ctx, http.StatusInternalServerError, "failed to get audit log", err.Error())
		return
	}

	Success(ctx, entries)
}
