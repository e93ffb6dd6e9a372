package repository

import (
	"errors"

	"github.com/mautops/approval-agent/internal/model"
	"gorm.io/gorm"
)

// ErrUserNotFound 用户不存在
var ErrUserNotFound = errors.New("user not found")

// UserRepository 用户仓储接口
type UserRepository interface {
	Save(user *model.UserModel) error
	FindByUsername(username string) (*model.UserModel, error)
	FindByRole(role string) (*model.UserModel, error)
}

// userRepository 用户仓储实现
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Save 保存用户
func (r *userRepository) Save(user *model.UserModel) error {
	return r.db.Save(user).Error
}

// FindByUsername 根据用户名查找用户
func (r *userRepository) FindByUsername(username string) (*model.UserModel, error) {
	var user model.UserModel
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByRole 根据角色查找用户,同角色多个用户时返回用户名最小的一个
func (r *userRepository) FindByRole(role string) (*model.UserModel, error) {
	var user model.UserModel
	if err := r.db.Where("role = ?", role).Order("username ASC").First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
