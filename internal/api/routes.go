package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mautops/approval-agent/internal/config"
	"github.com/mautops/approval-agent/internal/websocket"
	"gorm.io/gorm"
)

// SetupRoutes 配置路由
func SetupRoutes(
	db *gorm.DB,
	hub *websocket.Hub,
	approvalController *ApprovalController,
	agentController *AgentController,
	cfg *config.Config,
) *gin.Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	if config.IsProduction(cfg) {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// 中间件
	router.Use(RequestIDMiddleware())
	router.Use(RequestLogMiddleware())
	router.Use(SecurityHeadersMiddleware())
	router.Use(CORSMiddleware(cfg.CORS.AllowedOrigins))
	router.Use(RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))

	// 健康检查
	healthController := NewHealthController(db)
	router.GET("/health", healthController.Check)

	// Prometheus 指标端点
	router.GET("/metrics", MetricsHandler)

	// WebSocket 审计事件推送
	if hub != nil {
		router.GET("/ws/audit", websocket.AuditFeedHandler(hub))
	}

	// API v1 路由组
	v1 := router.Group("/api/v1")
	{
		// 审批管理路由
		approvals := v1.Group("/approvals")
		{
			approvals.POST("", approvalController.Create)
			approvals.GET("", approvalController.List)
			approvals.GET("/:id", approvalController.Get)
			approvals.POST("/:id/approve", approvalController.Approve)
			approvals.GET("/:id/audit", approvalController.AuditTrail)
		}

		// 审计日志路由
		v1.GET("/audit", approvalController.RecentAudit)

		// 代理路由
		agent := v1.Group("/agent")
		{
			agent.POST("/run", agentController.Run)
		}
	}

	// 自定义 NoRoute 处理器,返回 JSON 格式的 404
	// 必须在所有业务路由注册之后设置,确保未匹配的路由返回 JSON 而不是 HTML
	router.NoRoute(func(c *gin.Context) {
		Error(c, http.StatusNotFound, "route not found", "the requested route does not exist")
	})

	return router
}
