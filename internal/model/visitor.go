package model

import "fmt"

// ==================== VisitorIdentity 访客身份 ====================

// VisitorIdentity 访客身份：已登录账号 或 匿名会话，二者必居其一
// 通过构造函数保证只有一个分支被填充，购物车、行为记录均以此为归属键
type VisitorIdentity struct {
	userID     int64
	sessionKey string
}

// AccountVisitor 已登录账号身份
func AccountVisitor(userID int64) VisitorIdentity {
	return VisitorIdentity{userID: userID}
}

// AnonymousVisitor 匿名会话身份
func AnonymousVisitor(sessionKey string) VisitorIdentity {
	return VisitorIdentity{sessionKey: sessionKey}
}

// IsAccount 是否为登录用户
func (v VisitorIdentity) IsAccount() bool {
	return v.userID > 0
}

// UserID 获取用户 ID（匿名时为 0）
func (v VisitorIdentity) UserID() int64 {
	return v.userID
}

// SessionKey 获取会话标识（登录用户为空串）
func (v VisitorIdentity) SessionKey() string {
	if v.userID > 0 {
		return ""
	}
	return v.sessionKey
}

// Valid 身份是否有效
func (v VisitorIdentity) Valid() bool {
	return v.userID > 0 || v.sessionKey != ""
}

func (v VisitorIdentity) String() string {
	if v.userID > 0 {
		return fmt.Sprintf("user:%d", v.userID)
	}
	if len(v.sessionKey) > 8 {
		return "session:" + v.sessionKey[:8]
	}
	return "session:" + v.sessionKey
}
