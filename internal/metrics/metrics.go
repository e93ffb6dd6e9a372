package metrics

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

var (
	// API 请求计数器
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	// API 请求响应时间
	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// 审批创建数
	approvalsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "approvals_created_total",
			Help: "Total number of approvals created",
		},
	)

	// 代理运行次数
	agentRunsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "agent_runs_total",
			Help: "Total number of agent evaluation passes",
		},
	)

	// 代理动作数
	agentActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_actions_total",
			Help: "Total number of agent actions taken",
		},
		[]string{"action"}, // reminder, escalation
	)

	// 通知发送数
	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Total number of notification attempts",
		},
		[]string{"channel", "outcome"}, // teams/email, sent/failed/skipped
	)

	// 数据库连接数
	databaseConnectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_active",
			Help: "Number of active database connections",
		},
	)

	databaseConnectionsIdle = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	// 审批状态分布
	approvalsByStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "approvals_by_status",
			Help: "Number of approvals by status",
		},
		[]string{"status"},
	)
)

var (
	once sync.Once
)

func init() {
	// 注册指标
	prometheus.MustRegister(apiRequestsTotal)
	prometheus.MustRegister(apiRequestDuration)
	prometheus.MustRegister(approvalsCreatedTotal)
	prometheus.MustRegister(agentRunsTotal)
	prometheus.MustRegister(agentActionsTotal)
	prometheus.MustRegister(notificationsTotal)
	prometheus.MustRegister(databaseConnectionsActive)
	prometheus.MustRegister(databaseConnectionsIdle)
	prometheus.MustRegister(approvalsByStatus)

	// 注册 Go 运行时指标（只注册一次）
	once.Do(func() {
		// 尝试注册 Go 运行时指标,如果已注册则忽略错误
		_ = prometheus.Register(prometheus.NewGoCollector())
		_ = prometheus.Register(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	})
}

// Handler 返回 Prometheus 指标处理器
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAPIRequest 记录 API 请求
func RecordAPIRequest(method, path string, status int, duration float64) {
	statusText := http.StatusText(status)
	if statusText == "" {
		statusText = fmt.Sprintf("%d", status)
	}
	apiRequestsTotal.WithLabelValues(method, path, statusText).Inc()
	apiRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordApprovalCreated 记录审批创建
func RecordApprovalCreated() {
	approvalsCreatedTotal.Inc()
}

// RecordAgentRun 记录一次代理评估
func RecordAgentRun() {
	agentRunsTotal.Inc()
}

// RecordAgentAction 记录代理动作
func RecordAgentAction(action string) {
	agentActionsTotal.WithLabelValues(action).Inc()
}

// RecordNotification 记录通知尝试
func RecordNotification(channel string, outcome string) {
	notificationsTotal.WithLabelValues(channel, outcome).Inc()
}

// UpdateApprovalsByStatus 更新审批状态分布指标
func UpdateApprovalsByStatus(status string, count float64) {
	approvalsByStatus.WithLabelValues(status).Set(count)
}

// UpdateDatabaseConnections 更新数据库连接数指标
func UpdateDatabaseConnections(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	stats := sqlDB.Stats()
	databaseConnectionsActive.Set(float64(stats.InUse))
	databaseConnectionsIdle.Set(float64(stats.Idle))
	return nil
}
