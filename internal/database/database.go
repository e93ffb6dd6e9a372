package database

import (
	"context"
	"fmt"
	"time"

	"github.com/mautops/approval-agent/internal/config"
	"github.com/mautops/approval-agent/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// PoolConfig 连接池配置
type PoolConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime int // 秒
	ConnMaxIdleTime int // 秒
}

// BuildDSN 构建 PostgreSQL DSN
func BuildDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
}

// GetPoolConfig 获取连接池配置
func GetPoolConfig() *PoolConfig {
	return &PoolConfig{
		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: 3600, // 1 小时
		ConnMaxIdleTime: 600,  // 10 分钟
	}
}

// Connect 连接数据库
// driver 为 sqlite 时使用 cfg.Path,否则按 PostgreSQL DSN 连接
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if cfg.Driver == "postgres" {
		dialector = postgres.Open(BuildDSN(cfg))
	} else {
		path := cfg.Path
		if path == "" {
			path = "approvals.db"
		}
		dialector = sqlite.Open(path)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	// 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// 从配置中读取连接池参数,如果没有配置则使用默认值
	poolConfig := GetPoolConfig()
	if cfg.MaxIdleConns > 0 {
		poolConfig.MaxIdleConns = cfg.MaxIdleConns
	}
	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxOpenConns = cfg.MaxOpenConns
	}
	if cfg.ConnMaxLifetime > 0 {
		poolConfig.ConnMaxLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		poolConfig.ConnMaxIdleTime = cfg.ConnMaxIdleTime
	}

	sqlDB.SetMaxIdleConns(poolConfig.MaxIdleConns)
	sqlDB.SetMaxOpenConns(poolConfig.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(poolConfig.ConnMaxLifetime) * time.Second)
	sqlDB.SetConnMaxIdleTime(time.Duration(poolConfig.ConnMaxIdleTime) * time.Second)

	return db, nil
}

// ConnectWithRetry 带重试的数据库连接
func ConnectWithRetry(cfg config.DatabaseConfig, maxRetries int, retryInterval time.Duration) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for i := 0; i < maxRetries; i++ {
		db, err = Connect(cfg)
		if err == nil {
			return db, nil
		}

		// 如果不是最后一次重试,等待后重试
		if i < maxRetries-1 {
			time.Sleep(retryInterval)
			retryInterval *= 2 // 指数退避
		}
	}

	return nil, fmt.Errorf("failed to connect database after %d retries: %w", maxRetries, err)
}

// Migrate 执行数据库迁移
func Migrate(db *gorm.DB) error {
	// 检测数据库类型
	dialector := db.Dialector.Name()

	// SQLite 不支持 jsonb,需要手动创建表
	// GORM SQLite dialector 的名称可能是 "sqlite" 或 "sqlite3"
	if dialector == "sqlite" || dialector == "sqlite3" {
		if err := createSQLiteTables(db); err != nil {
			return fmt.Errorf("failed to create SQLite tables: %w", err)
		}
	} else {
		// PostgreSQL 等其他数据库使用 AutoMigrate
		if err := db.AutoMigrate(
			&model.ApprovalModel{},
			&model.AuditEntryModel{},
			&model.UserModel{},
		); err != nil {
			return fmt.Errorf("failed to auto migrate: %w", err)
		}
	}

	// 创建索引
	if err := CreateIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// createSQLiteTables 为 SQLite 手动创建表（使用 TEXT 替代 jsonb）
func createSQLiteTables(db *gorm.DB) error {
	// 创建 approvals 表
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS approvals (
			id VARCHAR(64) PRIMARY KEY,
			vendor_name VARCHAR(255) NOT NULL,
			amount REAL NOT NULL,
			approvers TEXT,
			status VARCHAR(32) NOT NULL,
			submitted_at DATETIME NOT NULL,
			sla_hours INTEGER NOT NULL,
			last_reminder_at DATETIME,
			escalation_level INTEGER NOT NULL DEFAULT 0,
			requester VARCHAR(64)
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create approvals table: %w", err)
	}

	// 创建 audit_entries 表
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS audit_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp DATETIME NOT NULL,
			approval_id VARCHAR(64) NOT NULL,
			actor VARCHAR(64) NOT NULL,
			action VARCHAR(64) NOT NULL,
			message TEXT,
			meta TEXT
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create audit_entries table: %w", err)
	}

	// 创建 users 表
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			username VARCHAR(64) PRIMARY KEY,
			password VARCHAR(255) NOT NULL,
			role VARCHAR(32) NOT NULL,
			email VARCHAR(255)
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	return nil
}

// CreateIndexes 创建数据库索引
func CreateIndexes(db *gorm.DB) error {
	// approvals 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_approvals_status ON approvals(status)").Error; err != nil {
		return fmt.Errorf("failed to create idx_approvals_status: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_approvals_submitted_at ON approvals(submitted_at)").Error; err != nil {
		return fmt.Errorf("failed to create idx_approvals_submitted_at: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_approvals_requester ON approvals(requester)").Error; err != nil {
		return fmt.Errorf("failed to create idx_approvals_requester: %w", err)
	}

	// audit_entries 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_audit_approval_id ON audit_entries(approval_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_audit_approval_id: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_entries(timestamp)").Error; err != nil {
		return fmt.Errorf("failed to create idx_audit_timestamp: %w", err)
	}

	// users 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_users_role ON users(role)").Error; err != nil {
		return fmt.Errorf("failed to create idx_users_role: %w", err)
	}

	return nil
}

// defaultUsers 默认种子用户
// 密码仅用于本地演示,入库前会做 bcrypt 哈希
var defaultUsers = []struct {
	Username string
	Password string
	Role     string
	Email    string
}{
	{"requester1", "pass123", model.RoleRequester, "requester1@example.com"},
	{"requester2", "pass123", model.RoleRequester, "requester2@example.com"},
	{"reviewer", "pass123", model.RoleApprover, "reviewer@example.com"},
	{"chair", "pass123", model.RoleChair, "chair@example.com"},
	{"finance", "pass123", model.RoleFinance, "finance@example.com"},
}

// SeedUsers 写入默认用户,已存在的用户不会被覆盖
func SeedUsers(db *gorm.DB) error {
	for _, u := range defaultUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", u.Username, err)
		}

		user := model.UserModel{
			Username: u.Username,
			Password: string(hash),
			Role:     u.Role,
			Email:    u.Email,
		}
		if err := db.Where("username = ?", u.Username).FirstOrCreate(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.Username, err)
		}
	}
	return nil
}

// CheckHealth 检查数据库连接健康状态
func CheckHealth(db *gorm.DB) bool {
	if db == nil {
		return false
	}

	sqlDB, err := db.DB()
	if err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return false
	}

	return true
}
