package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"storefront_v1_202509/internal/api/dto"
)

// ==================== PaymentService 支付服务 ====================

// PaymentConfig Stripe 接入配置
type PaymentConfig struct {
	SecretKey string
	BaseURL   string // 默认 https://api.stripe.com
	Currency  string // 默认 inr
}

// PaymentService Stripe 支付服务
// 只做两件事：创建支付意向、回查支付意向状态
type PaymentService struct {
	client *resty.Client
	cfg    *PaymentConfig
}

// NewPaymentService 创建支付服务
func NewPaymentService(cfg *PaymentConfig) *PaymentService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.stripe.com"
	}
	if cfg.Currency == "" {
		cfg.Currency = "inr"
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(10 * time.Second)

	return &PaymentService{client: client, cfg: cfg}
}

// stripeIntent Stripe PaymentIntent 响应（只取用到的字段）
type stripeIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

type stripeError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateIntent 创建支付意向，amountCents 为分
func (s *PaymentService) CreateIntent(ctx context.Context, amountCents int64) (*dto.CreatePaymentIntentResponse, error) {
	var intent stripeIntent
	var apiErr stripeError

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+s.cfg.SecretKey).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetFormData(map[string]string{
			"amount":                 strconv.FormatInt(amountCents, 10),
			"currency":               s.cfg.Currency,
			"payment_method_types[]": "card",
		}).
		SetResult(&intent).
		SetError(&apiErr).
		Post("/v1/payment_intents")

	if err != nil {
		return nil, fmt.Errorf("请求中断: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("Stripe API 错误 [%d]: %s", resp.StatusCode(), apiErr.Error.Message)
	}

	return &dto.CreatePaymentIntentResponse{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Amount:          float64(intent.Amount) / 100,
		Currency:        intent.Currency,
	}, nil
}

// VerifyIntent 回查支付意向是否已成功扣款
func (s *PaymentService) VerifyIntent(ctx context.Context, intentID string) (bool, error) {
	var intent stripeIntent
	var apiErr stripeError

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+s.cfg.SecretKey).
		SetResult(&intent).
		SetError(&apiErr).
		Get("/v1/payment_intents/" + intentID)

	if err != nil {
		return false, fmt.Errorf("请求中断: %w", err)
	}
	if resp.StatusCode() != 200 {
		return false, fmt.Errorf("Stripe API 错误 [%d]: %s", resp.StatusCode(), apiErr.Error.Message)
	}

	return intent.Status == "succeeded", nil
}
