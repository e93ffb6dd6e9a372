package service

import (
	"context"

	"github.com/mautops/approval-agent/internal/agent"
	"github.com/mautops/approval-agent/internal/metrics"
	"github.com/sirupsen/logrus"
)

// Broadcaster 实时推送通道,由 websocket Hub 实现
type Broadcaster interface {
	BroadcastEvent(event string, payload interface{})
}

// AgentService 代理服务接口
type AgentService interface {
	RunOnce(ctx context.Context) ([]agent.ActionTaken, error)
}

// agentService 代理服务实现
// 在运行器之上叠加指标采集与实时推送
type agentService struct {
	runner      *agent.Runner
	broadcaster Broadcaster
	logger      *logrus.Logger
}

// NewAgentService 创建代理服务
// broadcaster 可为 nil,此时不做实时推送
func NewAgentService(runner *agent.Runner, broadcaster Broadcaster, logger *logrus.Logger) AgentService {
	if logger == nil {
		logger = logrus.New()
	}
	return &agentService{
		runner:      runner,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// RunOnce 执行一次评估,记录指标并推送动作
func (s *agentService) RunOnce(ctx context.Context) ([]agent.ActionTaken, error) {
	actions, err := s.runner.Run(ctx)
	if err != nil {
		return nil, err
	}

	metrics.RecordAgentRun()
	for _, action := range actions {
		metrics.RecordAgentAction(string(action.Action))

		s.logger.WithFields(logrus.Fields{
			"approval_id": action.ApprovalID,
			"action":      action.Action,
		}).Info("Agent action taken")

		if s.broadcaster != nil {
			s.broadcaster.BroadcastEvent("agent_action", action)
		}
	}

	return actions, nil
}
