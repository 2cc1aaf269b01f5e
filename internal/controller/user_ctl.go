package controller

import (
	"log"

	"github.com/gin-gonic/gin"

	"storefront_v1_202509/internal/api/dto"
	"storefront_v1_202509/internal/middleware"
	"storefront_v1_202509/internal/service"
)

type UserController struct {
	userService  *service.UserService
	cartService  *service.CartService
	orderService *service.OrderService
}

func NewUserController(userService *service.UserService, cartService *service.CartService, orderService *service.OrderService) *UserController {
	return &UserController{
		userService:  userService,
		cartService:  cartService,
		orderService: orderService,
	}
}

// ==================== 认证 ====================

// Register 注册
// @Summary 用户注册，注册即登录
// @Tags User
// @Param request body dto.RegisterRequest true "注册信息"
// @Success 200 {object} dto.LoginResponse
// @Router /api/auth/register [post]
func (ctrl *UserController) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	resp, err := ctrl.userService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	ctrl.absorbSession(c, resp.User.ID)
	respondOK(c, resp)
}

// Login 登录
// @Summary 用户登录，匿名购物车并入账号购物车
// @Tags User
// @Param request body dto.LoginRequest true "登录凭证"
// @Success 200 {object} dto.LoginResponse
// @Router /api/auth/login [post]
func (ctrl *UserController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	resp, err := ctrl.userService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	ctrl.absorbSession(c, resp.User.ID)
	respondOK(c, resp)
}

// absorbSession 登录成功后吸收匿名会话：合并购物车、认领历史订单
// 失败只记日志，不影响登录结果
func (ctrl *UserController) absorbSession(c *gin.Context, userID int64) {
	sessionKey := middleware.GetSessionKey(c)
	if sessionKey == "" {
		return
	}

	if _, err := ctrl.cartService.MergeOnLogin(c.Request.Context(), sessionKey, userID); err != nil {
		log.Printf("购物车合并失败 session=%s user=%d: %v", sessionKey, userID, err)
	}
	if err := ctrl.orderService.ClaimSessionOrders(c.Request.Context(), sessionKey, userID); err != nil {
		log.Printf("订单认领失败 session=%s user=%d: %v", sessionKey, userID, err)
	}
}

// RefreshToken 刷新 Token
// @Summary 刷新 Token
// @Tags User
// @Param request body dto.RefreshTokenRequest true "Refresh Token"
// @Success 200 {object} dto.RefreshTokenResponse
// @Router /api/auth/refresh [post]
func (ctrl *UserController) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	resp, err := ctrl.userService.RefreshToken(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, resp)
}

// Logout 登出
// @Summary 登出（幂等，客户端丢弃 Token 即可）
// @Tags User
// @Router /api/auth/logout [post]
func (ctrl *UserController) Logout(c *gin.Context) {
	// JWT 无服务端会话，登出只是约定动作
	respondOK(c, nil)
}

// ==================== 个人信息 ====================

// GetProfile 获取个人信息
// @Summary 获取个人信息
// @Tags User
// @Security BearerAuth
// @Success 200 {object} dto.UserInfo
// @Router /api/users/me [get]
func (ctrl *UserController) GetProfile(c *gin.Context) {
	info, err := ctrl.userService.GetProfile(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, info)
}

// UpdateProfile 更新个人信息
// @Summary 更新个人信息
// @Tags User
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "更新字段"
// @Success 200 {object} dto.UserInfo
// @Router /api/users/me [put]
func (ctrl *UserController) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	info, err := ctrl.userService.UpdateProfile(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, info)
}

// ChangePassword 修改密码
// @Summary 修改密码
// @Tags User
// @Security BearerAuth
// @Param request body dto.ChangePasswordRequest true "新旧密码"
// @Router /api/users/me/password [put]
func (ctrl *UserController) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	if err := ctrl.userService.ChangePassword(c.Request.Context(), middleware.GetUserID(c), &req); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}
