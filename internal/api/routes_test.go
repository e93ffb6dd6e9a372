package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mautops/approval-agent/internal/agent"
	"github.com/mautops/approval-agent/internal/api"
	"github.com/mautops/approval-agent/internal/config"
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

// setupTestRouter 创建带内存数据库的完整路由
func setupTestRouter(t *testing.T) (*gin.Engine, repository.ApprovalRepository) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&model.ApprovalModel{}, &model.AuditEntryModel{}, &model.UserModel{})
	require.NoError(t, err)

	approvalRepo := repository.NewApprovalRepository(db)
	auditRepo := repository.NewAuditEntryRepository(db)
	userRepo := repository.NewUserRepository(db)

	require.NoError(t, userRepo.Save(&model.UserModel{
		Username: "reviewer", Password: "hash", Role: model.RoleApprover, Email: "reviewer@example.com",
	}))

	resolver := agent.NewRecipientResolver(userRepo, "admin@example.com")
	evaluator := agent.NewEvaluator(&llm.PassthroughGenerator{}, &notify.RecordingNotifier{}, resolver, 0, nil)
	runner := agent.NewRunner(approvalRepo, auditRepo, evaluator, nil)

	approvalController := api.NewApprovalController(service.NewApprovalService(approvalRepo, auditRepo, nil))
	agentController := api.NewAgentController(service.NewAgentService(runner, nil, nil))

	router := api.SetupRoutes(db, nil, approvalController, agentController, config.Default())
	return router, approvalRepo
}

func doRequest(router *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// TestCreateApproval 创建审批,空请求体生成演示数据
func TestCreateApproval(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/approvals", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Code)

	data := resp.Data.(map[string]interface{})
	assert.NotEmpty(t, data["id"])
	assert.Equal(t, model.StatusPending, data["status"])

	// 审批人列表在响应中呈现为结构化数组
	approvers, ok := data["approvers"].([]interface{})
	require.True(t, ok)
	require.Len(t, approvers, 2)
	assert.Equal(t, "Alice", approvers[0].(map[string]interface{})["name"])
}

// TestCreateApproval_WithBody 显式字段创建
func TestCreateApproval_WithBody(t *testing.T) {
	router, _ := setupTestRouter(t)

	body, _ := json.Marshal(map[string]interface{}{
		"vendor_name": "Contoso Ltd",
		"amount":      500.25,
		"sla_hours":   24,
	})
	w := doRequest(router, http.MethodPost, "/api/v1/approvals", body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "Contoso Ltd", data["vendor_name"])
	assert.Equal(t, 500.25, data["amount"])
}

// TestListAndGetApproval 列表与详情
func TestListAndGetApproval(t *testing.T) {
	router, approvalRepo := setupTestRouter(t)

	require.NoError(t, approvalRepo.Save(&model.ApprovalModel{
		ID: "app-001", VendorName: "Acme Supplies", Amount: 100,
		Status: model.StatusPending, SubmittedAt: time.Now().UTC(), SLAHours: 48,
	}))

	w := doRequest(router, http.MethodGet, "/api/v1/approvals", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listResp api.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	assert.Len(t, listResp.Data.([]interface{}), 1)

	w = doRequest(router, http.MethodGet, "/api/v1/approvals/app-001", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/approvals/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestGetApproval_InvalidID 非法 ID 返回 400
func TestGetApproval_InvalidID(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/approvals/bad%20id", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestApproveApproval 批准接口
func TestApproveApproval(t *testing.T) {
	router, approvalRepo := setupTestRouter(t)

	require.NoError(t, approvalRepo.Save(&model.ApprovalModel{
		ID: "app-001", VendorName: "Acme Supplies", Amount: 100,
		Status: model.StatusPending, SubmittedAt: time.Now().UTC(), SLAHours: 48,
	}))

	w := doRequest(router, http.MethodPost, "/api/v1/approvals/app-001/approve", nil)
	require.Equal(t, http.StatusOK, w.Code)

	approval, err := approvalRepo.FindByID("app-001")
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, approval.Status)

	w = doRequest(router, http.MethodPost, "/api/v1/approvals/missing/approve", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestAuditEndpoints 审计日志接口
func TestAuditEndpoints(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/approvals", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	id := resp.Data.(map[string]interface{})["id"].(string)

	w = doRequest(router, http.MethodGet, "/api/v1/approvals/"+id+"/audit", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var auditResp api.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &auditResp))
	entries := auditResp.Data.([]interface{})
	require.Len(t, entries, 1)
	assert.Equal(t, model.ActionCreated, entries[0].(map[string]interface{})["action"])

	w = doRequest(router, http.MethodGet, "/api/v1/audit", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/approvals/missing/audit", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestAgentRun 手动触发一次评估
func TestAgentRun(t *testing.T) {
	router, approvalRepo := setupTestRouter(t)

	require.NoError(t, approvalRepo.Save(&model.ApprovalModel{
		ID: "app-001", VendorName: "Acme Supplies", Amount: 100,
		Status: model.StatusPending, SubmittedAt: time.Now().UTC().Add(-30 * time.Hour), SLAHours: 24,
	}))

	w := doRequest(router, http.MethodPost, "/api/v1/agent/run", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	actions := resp.Data.(map[string]interface{})["actions"].([]interface{})
	require.Len(t, actions, 1)
	assert.Equal(t, "escalation", actions[0].(map[string]interface{})["action"])
}

// TestHealthCheck 健康检查
func TestHealthCheck(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := doRequest(router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

// TestNoRoute 未知路由返回 JSON 404
func TestNoRoute(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := doRequest(router, http.MethodGet, "/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
}

// TestSecurityHeaders 安全响应头
func TestSecurityHeaders(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := doRequest(router, http.MethodGet, "/health", nil)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
