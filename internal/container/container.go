package container

import (
	"fmt"
	"time"

	"github.com/mautops/approval-agent/internal/agent"
	"github.com/mautops/approval-agent/internal/api"
	"github.com/mautops/approval-agent/internal/config"
	"github.com/mautops/approval-agent/internal/database"
	"github.com/mautops/approval-agent/internal/llm"
	"github.com/mautops/approval-agent/internal/metrics"
	"github.com/mautops/approval-agent/internal/notify"
	"github.com/mautops/approval-agent/internal/repository"
	"github.com/mautops/approval-agent/internal/service"
	"github.com/mautops/approval-agent/internal/websocket"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Container 依赖注入容器
// 管理所有应用依赖,包括数据库、仓储、外呼客户端和服务
type Container struct {
	db              *gorm.DB
	logger          *logrus.Logger
	hub             *websocket.Hub
	collector       *metrics.Collector
	evaluator       *agent.Evaluator
	approvalService service.ApprovalService
	agentService    service.AgentService
}

// NewContainer 创建依赖注入容器
// 根据配置初始化所有依赖组件
func NewContainer(cfg *config.Config) (*Container, error) {
	// 1. 初始化日志
	logger, err := api.NewLoggerFromConfig(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	// 2. 初始化数据库（带重试机制）
	// 默认重试 3 次,初始间隔 1 秒,指数退避
	db, err := database.ConnectWithRetry(cfg.Database, 3, time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// 执行数据库迁移
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// 写入默认用户（接收人解析依赖角色到用户的映射）
	if err := database.SeedUsers(db); err != nil {
		return nil, fmt.Errorf("failed to seed users: %w", err)
	}

	// 3. 初始化仓储
	approvalRepo := repository.NewApprovalRepository(db)
	auditRepo := repository.NewAuditEntryRepository(db)
	userRepo := repository.NewUserRepository(db)

	// 4. 初始化外呼客户端
	generator, notifier := buildOutbound(cfg, logger)

	// 5. 初始化代理
	recipients := agent.NewRecipientResolver(userRepo, cfg.Agent.AdminEmail)
	timeout := time.Duration(cfg.Agent.RequestTimeoutSeconds) * time.Second
	evaluator := agent.NewEvaluator(generator, notifier, recipients, timeout, logger)
	runner := agent.NewRunner(approvalRepo, auditRepo, evaluator, logger)

	// 6. 初始化 WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// 7. 启动指标收集器
	collector := metrics.NewCollector(db, 30*time.Second)
	collector.Start()

	// 8. 初始化服务
	approvalService := service.NewApprovalService(approvalRepo, auditRepo, logger)
	agentService := service.NewAgentService(runner, hub, logger)

	return &Container{
		db:              db,
		logger:          logger,
		hub:             hub,
		collector:       collector,
		evaluator:       evaluator,
		approvalService: approvalService,
		agentService:    agentService,
	}, nil
}

// buildOutbound 根据配置构建语言模型与通知客户端
func buildOutbound(cfg *config.Config, logger *logrus.Logger) (llm.Generator, notify.Notifier) {
	generator := llm.NewOpenAIGenerator(cfg.LLM, logger)
	teams := notify.NewTeamsNotifier(cfg.Notify.TeamsWebhookURL, cfg.Notify.TimeoutSeconds, logger)

	var notifier notify.Notifier = teams
	if cfg.Notify.EmailEnabled {
		email := notify.NewEmailNotifier(cfg.Notify, logger)
		notifier = notify.NewMultiNotifier(teams, email)
	}
	return generator, notifier
}

// ReloadOutbound 按新配置重建外呼客户端并替换到评估器
// 配置文件热更新时调用,数据库等其余依赖不受影响
func (c *Container) ReloadOutbound(cfg *config.Config) {
	generator, notifier := buildOutbound(cfg, c.logger)
	c.evaluator.SetOutbound(generator, notifier)
	c.logger.Info("Outbound clients rebuilt from new config")
}

// DB 获取数据库连接
func (c *Container) DB() *gorm.DB {
	return c.db
}

// Logger 获取日志记录器
func (c *Container) Logger() *logrus.Logger {
	return c.logger
}

// Hub 获取 WebSocket Hub
func (c *Container) Hub() *websocket.Hub {
	return c.hub
}

// ApprovalService 获取审批服务
func (c *Container) ApprovalService() service.ApprovalService {
	return c.approvalService
}

// AgentService 获取代理服务
func (c *Container) AgentService() service.AgentService {
	return c.agentService
}

// Close 关闭容器,清理资源
func (c *Container) Close() error {
	if c.collector != nil {
		c.collector.Stop()
	}
	if c.db != nil {
		sqlDB, err := c.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	return nil
}
