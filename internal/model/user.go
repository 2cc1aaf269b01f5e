package model

import (
	"time"

	"gorm.io/gorm"
)

// ==================== User 用户 ====================

// User 用户账号
type User struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	Email    string `gorm:"size:255;uniqueIndex;not null"`
	Password string `gorm:"size:255;not null" json:"-"` // bcrypt hash

	// 基本信息
	FirstName string `gorm:"size:100"`
	LastName  string `gorm:"size:100"`
	Phone     string `gorm:"size:20"`

	// 默认收货地址
	Address string `gorm:"type:text"`
	City    string `gorm:"size:100"`
	State   string `gorm:"size:100"`
	ZipCode string `gorm:"size:20"`
	Country string `gorm:"size:100;default:India"`

	// 权限
	IsAdmin bool `gorm:"default:false"`

	// 审计字段
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (*User) TableName() string {
	return "users"
}

// FullName 获取用户全名
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// ==================== AnonymousSession 匿名会话 ====================

// AnonymousSession 匿名访客会话，session_key 即 Cookie 中的访客令牌
type AnonymousSession struct {
	SessionKey   string    `gorm:"size:40;primaryKey"`
	IPAddress    string    `gorm:"size:45"`
	UserAgent    string    `gorm:"type:text"`
	CreatedAt    time.Time
	LastActivity time.Time `gorm:"autoUpdateTime"`
}

func (*AnonymousSession) TableName() string {
	return "anonymous_sessions"
}
