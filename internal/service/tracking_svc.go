package service

import (
	"context"
	"time"

	"gorm.io/datatypes"

	"storefront_v1_202509/internal/api/dto"
	"storefront_v1_202509/internal/model"
	"storefront_v1_202509/internal/repository"
)

// ==================== TrackingService 交互追踪服务 ====================

// RequestContext 请求上下文，随事件一起落库
type RequestContext struct {
	IPAddress string
	UserAgent string
	Referrer  string
}

// TrackingService 交互事件追踪服务
// 事件流只追加，行为汇总随事件同步折叠
type TrackingService struct {
	interactionRepo repository.InteractionRepository
	behaviorRepo    repository.BehaviorRepository
	productRepo     repository.ProductRepository
}

// NewTrackingService 创建交互追踪服务
func NewTrackingService(
	interactionRepo repository.InteractionRepository,
	behaviorRepo repository.BehaviorRepository,
	productRepo repository.ProductRepository,
) *TrackingService {
	return &TrackingService{
		interactionRepo: interactionRepo,
		behaviorRepo:    behaviorRepo,
		productRepo:     productRepo,
	}
}

// Track 记录一条交互事件并折叠进行为汇总
func (s *TrackingService) Track(ctx context.Context, visitor model.VisitorIdentity, req *dto.TrackInteractionRequest, reqCtx RequestContext) error {
	if !model.ValidInteractionType(req.InteractionType) {
		return ErrInvalidInteractionType
	}
	if !visitor.Valid() {
		return ErrInvalidToken
	}

	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotFound
	}

	now := time.Now()
	interaction := &model.ProductInteraction{
		ProductID:       req.ProductID,
		InteractionType: req.InteractionType,
		Metadata:        datatypes.JSONMap(req.Metadata),
		IPAddress:       reqCtx.IPAddress,
		UserAgent:       reqCtx.UserAgent,
		Referrer:        reqCtx.Referrer,
		CreatedAt:       now,
	}
	if visitor.IsAccount() {
		uid := visitor.UserID()
		interaction.UserID = &uid
	} else {
		key := visitor.SessionKey()
		interaction.SessionKey = &key
	}

	if err := s.interactionRepo.Create(ctx, interaction); err != nil {
		return err
	}

	// 事件落库成功后折叠汇总，汇总失败不回滚事件
	summary, err := s.behaviorRepo.GetOrCreate(ctx, visitor, req.ProductID)
	if err != nil {
		return err
	}
	return s.behaviorRepo.ApplyInteraction(ctx, summary.ID, req.InteractionType, now)
}

// TrackSimple 内部调用的简化入口（购物车、下单流程埋点）
func (s *TrackingService) TrackSimple(ctx context.Context, visitor model.VisitorIdentity, productID int64, interactionType string, metadata map[string]interface{}, reqCtx RequestContext) error {
	return s.Track(ctx, visitor, &dto.TrackInteractionRequest{
		ProductID:       productID,
		InteractionType: interactionType,
		Metadata:        metadata,
	}, reqCtx)
}

// GetBehavior 获取访客对某商品的行为汇总，无记录时返回全零视图
func (s *TrackingService) GetBehavior(ctx context.Context, visitor model.VisitorIdentity, productID int64) (*dto.BehaviorSummaryVO, error) {
	summary, err := s.behaviorRepo.Get(ctx, visitor, productID)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return &dto.BehaviorSummaryVO{ProductID: productID}, nil
	}

	return &dto.BehaviorSummaryVO{
		ProductID:       summary.ProductID,
		Viewed:          summary.Viewed,
		Clicked:         summary.Clicked,
		AddedToCart:     summary.AddedToCart,
		RemovedFromCart: summary.RemovedFromCart,
		Purchased:       summary.Purchased,
		ViewCount:       summary.ViewCount,
		CartAddCount:    summary.CartAddCount,
		CartRemoveCount: summary.CartRemoveCount,
		PurchaseCount:   summary.PurchaseCount,
		FirstViewAt:     summary.FirstViewAt,
		LastViewAt:      summary.LastViewAt,
		AddedToCartAt:   summary.AddedToCartAt,
		PurchasedAt:     summary.PurchasedAt,
	}, nil
}
