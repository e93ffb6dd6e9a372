package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mautops/approval-agent/internal/agent"
	"github.com/mautops/approval-agent/internal/llm"
	"github.com/mautops/approval-agent/internal/model"
	"github.com/mautops/approval-agent/internal/notify"
	"github.com/mautops/approval-agent/internal/repository"
	"github.com/mautops/approval-agent/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// recordingBroadcaster 记录广播事件的测试替身
type recordingBroadcaster struct {
	mu     sync.Mutex
	events []string
}

func (b *recordingBroadcaster) BroadcastEvent(event string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBroadcaster) Events() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.events))
	copy(out, b.events)
	return out
}

// fakeRoleRepo 只按角色返回固定用户
type fakeRoleRepo struct{}

func (f *fakeRoleRepo) Save(user *model.UserModel) error { return nil }

func (f *fakeRoleRepo) FindByUsername(username string) (*model.UserModel, error) {
	return nil, repository.ErrUserNotFound
}

func (f *fakeRoleRepo) FindByRole(role string) (*model.UserModel, error) {
	return &model.UserModel{Username: "someone", Role: role, Email: "someone@example.com"}, nil
}

// setupAgentService 创建基于内存数据库的代理服务
func setupAgentService(t *testing.T, broadcaster service.Broadcaster) (service.AgentService, repository.ApprovalRepository) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&model.ApprovalModel{}, &model.AuditEntryModel{}, &model.UserModel{})
	require.NoError(t, err)

	approvalRepo := repository.NewApprovalRepository(db)
	auditRepo := repository.NewAuditEntryRepository(db)

	resolver := agent.NewRecipientResolver(&fakeRoleRepo{}, "admin@example.com")
	evaluator := agent.NewEvaluator(&llm.PassthroughGenerator{}, &notify.RecordingNotifier{}, resolver, 0, nil)
	runner := agent.NewRunner(approvalRepo, auditRepo, evaluator, nil)

	return service.NewAgentService(runner, broadcaster, nil), approvalRepo
}

// TestAgentService_RunOnce 每个动作广播一条事件
func TestAgentService_RunOnce(t *testing.T) {
	broadcaster := &recordingBroadcaster{}
	svc, approvalRepo := setupAgentService(t, broadcaster)

	require.NoError(t, approvalRepo.Save(&model.ApprovalModel{
		ID: "app-001", VendorName: "Acme Supplies", Amount: 100,
		Status: model.StatusPending, SubmittedAt: time.Now().UTC().Add(-30 * time.Hour), SLAHours: 24,
	}))

	actions, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, agent.ActionEscalate, actions[0].Action)

	events := broadcaster.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "agent_action", events[0])
}

// TestAgentService_RunOnce_NilBroadcaster 不配置广播器也能运行
func TestAgentService_RunOnce_NilBroadcaster(t *testing.T) {
	svc, _ := setupAgentService(t, nil)

	actions, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, actions)
}
