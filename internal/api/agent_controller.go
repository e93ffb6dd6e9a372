package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mautops/approval-agent/internal/agent"
	"github.com/mautops/approval-agent/internal/service"
)

// AgentController 代理控制器
type AgentController struct {
	agentService service.AgentService
}

// NewAgentController 创建代理控制器
func NewAgentController(agentService service.AgentService) *AgentController {
	return &AgentController{
		agentService: agentService,
	}
}

// Run 触发一次 SLA 评估
// POST /api/v1/agent/run
// 返回本次实际执行的动作列表;已有评估在执行时返回 409
func (c *AgentController) Run(ctx *gin.Context) {
	actions, err := c.agentService.RunOnce(ctx.Request.Context())
	if err != nil {
		if errors.Is(err, agent.ErrRunInProgress) {
			Error(ctx, http.StatusConflict, "agent run already in progress", "")
			return
		}
		Error(ctx, http.StatusInternalServerError, "failed to run agent", err.Error())
		return
	}

	Success(ctx, gin.H{"actions": actions})
}
