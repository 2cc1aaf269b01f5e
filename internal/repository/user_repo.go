package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"storefront_v1_202509/internal/model"
)

// ==================== UserRepository 用户仓储 ====================

// UserRepository 用户仓储接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}

// ==================== SessionRepository 匿名会话仓储 ====================

// SessionRepository 匿名会话仓储接口
type SessionRepository interface {
	GetOrCreate(ctx context.Context, sessionKey, ip, userAgent string) (*model.AnonymousSession, error)
	Touch(ctx context.Context, sessionKey string) error
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository 创建匿名会话仓储
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) GetOrCreate(ctx context.Context, sessionKey, ip, userAgent string) (*model.AnonymousSession, error) {
	var session model.AnonymousSession
	err := r.db.WithContext(ctx).Where("session_key = ?", sessionKey).First(&session).Error
	if err == nil {
		return &session, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	session = model.AnonymousSession{
		SessionKey: sessionKey,
		IPAddress:  ip,
		UserAgent:  userAgent,
	}
	if createErr := r.db.WithContext(ctx).Create(&session).Error; createErr != nil {
		// 并发创建同一会话时唯一约束冲突，回查即可
		if refetchErr := r.db.WithContext(ctx).Where("session_key = ?", sessionKey).First(&session).Error; refetchErr == nil {
			return &session, nil
		}
		return nil, createErr
	}
	return &session, nil
}

func (r *sessionRepository) Touch(ctx context.Context, sessionKey string) error {
	return r.db.WithContext(ctx).Model(&model.AnonymousSession{}).
		Where("session_key = ?", sessionKey).
		Update("last_activity", gorm.Expr("CURRENT_TIMESTAMP")).Error
}
