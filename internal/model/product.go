package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ==================== Category 商品分类 ====================

// Category 商品分类
type Category struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"size:100;uniqueIndex;not null"`
	Slug        string `gorm:"size:100;uniqueIndex;not null"`
	Description string `gorm:"type:text"`
	ImageURL    string `gorm:"size:500"`
	IsActive    bool   `gorm:"default:true"`

	// 审计字段
	CreatedAt time.Time
	UpdatedAt time.Time

	// 关联
	Products []Product `gorm:"foreignKey:CategoryID"`
}

func (*Category) TableName() string {
	return "categories"
}

// ==================== Product 商品 ====================

// Product 商品
type Product struct {
	ID               int64  `gorm:"primaryKey;autoIncrement"`
	Name             string `gorm:"size:255;not null"`
	Slug             string `gorm:"size:255;uniqueIndex;not null"`
	SKU              string `gorm:"size:50;uniqueIndex;not null"`
	Description      string `gorm:"type:text"`
	ShortDescription string `gorm:"size:500"`
	Brand            string `gorm:"size:100"`

	// 价格（分为单位存储）
	PriceAmount    int64 `gorm:"not null"`
	DiscountAmount int64 // 折扣价，0 表示无折扣

	// 库存（只被订单引擎扣减，购物车只读取校验）
	Stock int `gorm:"not null;default:0"`

	// 分类
	CategoryID int64 `gorm:"index;not null"`

	// 图片与规格（PostgreSQL JSONB）
	ImageURL       string         `gorm:"size:500"`
	Specifications datatypes.JSONMap `gorm:"type:jsonb"`

	// 状态
	IsActive   bool `gorm:"default:true;index"`
	IsFeatured bool `gorm:"default:false"`

	// 审计字段
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	// 关联
	Category *Category `gorm:"foreignKey:CategoryID"`
}

func (*Product) TableName() string {
	return "products"
}

// GetPrice 获取原价（元）
func (p *Product) GetPrice() float64 {
	return float64(p.PriceAmount) / 100
}

// FinalPriceAmount 获取实际售价（分）：有折扣价用折扣价，否则用原价
func (p *Product) FinalPriceAmount() int64 {
	if p.DiscountAmount > 0 {
		return p.DiscountAmount
	}
	return p.PriceAmount
}

// GetFinalPrice 获取实际售价（元）
func (p *Product) GetFinalPrice() float64 {
	return float64(p.FinalPriceAmount()) / 100
}

// DiscountPercentage 计算折扣百分比
func (p *Product) DiscountPercentage() int {
	if p.DiscountAmount > 0 && p.PriceAmount > 0 {
		return int(float64(p.PriceAmount-p.DiscountAmount) / float64(p.PriceAmount) * 100)
	}
	return 0
}

// InStock 是否有库存
func (p *Product) InStock() bool {
	return p.Stock > 0
}
