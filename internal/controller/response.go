package controller

import (
	"errors"

	"github.com/gin-gonic/gin"

	"storefront_v1_202509/internal/service"
)

// respondError 服务层错误到 HTTP 状态码的统一映射
func respondError(c *gin.Context, err error) {
	if service.IsInsufficientStock(err) {
		c.JSON(409, gin.H{"code": 409, "message": err.Error()})
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrInvalidOldPassword):
		c.JSON(401, gin.H{"code": 401, "message": err.Error()})
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrCategoryNotFound),
		errors.Is(err, service.ErrCartNotFound),
		errors.Is(err, service.ErrCartItemNotFound),
		errors.Is(err, service.ErrOrderNotFound):
		c.JSON(404, gin.H{"code": 404, "message": err.Error()})
	case errors.Is(err, service.ErrEmailExists),
		errors.Is(err, service.ErrSlugExists):
		c.JSON(409, gin.H{"code": 409, "message": err.Error()})
	case errors.Is(err, service.ErrCartEmpty),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrProductUnavailable),
		errors.Is(err, service.ErrInvalidOrderStatus),
		errors.Is(err, service.ErrInvalidPaymentStatus),
		errors.Is(err, service.ErrInvalidInteractionType),
		errors.Is(err, service.ErrInvalidExportScope):
		c.JSON(400, gin.H{"code": 400, "message": err.Error()})
	case errors.Is(err, service.ErrPaymentNotConfirmed):
		c.JSON(402, gin.H{"code": 402, "message": err.Error()})
	default:
		c.JSON(500, gin.H{"code": 500, "message": "服务内部错误: " + err.Error()})
	}
}

// respondOK 成功响应
func respondOK(c *gin.Context, data interface{}) {
	c.JSON(200, gin.H{"code": 0, "message": "success", "data": data})
}
