package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront_v1_202509/internal/model"
	"storefront_v1_202509/internal/repository"
)

// ==================== 访客会话配置 ====================

// VisitorConfig 匿名会话配置
type VisitorConfig struct {
	CookieName string // 会话 Cookie 名
	MaxAgeDays int    // Cookie 有效期（天）
	Secure     bool
}

// DefaultVisitorConfig 默认配置
func DefaultVisitorConfig() *VisitorConfig {
	return &VisitorConfig{
		CookieName: "sf_session",
		MaxAgeDays: 30,
	}
}

var visitorConfig = DefaultVisitorConfig()

// SetVisitorConfig 设置匿名会话配置
func SetVisitorConfig(cfg *VisitorConfig) {
	visitorConfig = cfg
}

// Context Keys
const (
	ContextKeySessionKey = "session_key"
)

// ==================== 会话中间件 ====================

// VisitorSession 匿名会话中间件
// 无 sf_session Cookie 的请求分配新的会话键并落库，
// 已有 Cookie 的请求刷新会话活跃时间
func VisitorSession(sessionRepo repository.SessionRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionKey, err := c.Cookie(visitorConfig.CookieName)
		if err != nil || sessionKey == "" {
			sessionKey = uuid.NewString()
			c.SetCookie(
				visitorConfig.CookieName,
				sessionKey,
				visitorConfig.MaxAgeDays*24*3600,
				"/",
				"",
				visitorConfig.Secure,
				true, // HttpOnly
			)
		}

		// 确保会话记录存在并刷新活跃时间，失败不阻断请求
		if _, err := sessionRepo.GetOrCreate(c.Request.Context(), sessionKey, c.ClientIP(), c.Request.UserAgent()); err == nil {
			_ = sessionRepo.Touch(c.Request.Context(), sessionKey)
		}

		c.Set(ContextKeySessionKey, sessionKey)
		c.Next()
	}
}

// GetSessionKey 从 Context 获取会话键
func GetSessionKey(c *gin.Context) string {
	if v, exists := c.Get(ContextKeySessionKey); exists {
		if key, ok := v.(string); ok {
			return key
		}
	}
	return ""
}

// ResolveVisitor 解析当前请求的访客身份
// 已登录用户取账号身份，否则取匿名会话身份
func ResolveVisitor(c *gin.Context) model.VisitorIdentity {
	if userID := GetUserID(c); userID > 0 {
		return model.AccountVisitor(userID)
	}
	return model.AnonymousVisitor(GetSessionKey(c))
}
