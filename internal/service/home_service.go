package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"summitly-data/internal/domain"
	"summitly-data/internal/repository"
	"summitly-data/internal/valuation"

	"go.uber.org/zap"
)

// HomeService 业主房产与估值仪表盘服务接口
type HomeService interface {
	RegisterHome(ctx context.Context, req RegisterHomeRequest) (*RegisterHomeResponse, error)
	UpdateHome(ctx context.Context, req UpdateHomeRequest) (*UpdateHomeResponse, error)
	DeleteHome(ctx context.Context, req DeleteHomeRequest) (*DeleteHomeResponse, error)

	// Dashboard 返回业主全部房产及估值/行情卡片
	Dashboard(ctx context.Context, req DashboardRequest) (*DashboardResponse, error)
}

// homeService 实现
type homeService struct {
	homesRepo repository.HomesRepository
	market    MarketDataProvider
	logger    *zap.Logger
}

// NewHomeService 创建 HomeService 实例
func NewHomeService(homesRepo repository.HomesRepository, market MarketDataProvider, logger *zap.Logger) HomeService {
	return &homeService{
		homesRepo: homesRepo,
		market:    market,
		logger:    logger,
	}
}

// ============================================
// 请求/响应结构
// ============================================

type RegisterHomeRequest struct {
	OwnerEmail    string   // 必填
	Address       string   // 必填
	City          string   // 必填
	Province      string   // 可选
	PostalCode    string   // 可选
	PropertyType  string   // 可选（condo/townhouse/semi/detached）
	Beds          float64  // 可选
	Baths         float64  // 可选
	AreaSqft      int      // 可选
	YearBuilt     int      // 可选（0 表示未知）
	PurchasePrice *float64 // 可选
	PurchaseDate  string   // 可选（"2006-01-02"）
}

type RegisterHomeResponse struct {
	HomeID string `json:"home_id"`
}

type UpdateHomeRequest struct {
	HomeID        string   // 必填
	OwnerEmail    string   // 必填（校验归属）
	Address       string   // 可选
	City          string   // 可选
	Province      string   // 可选
	PostalCode    string   // 可选
	PropertyType  string   // 可选
	Beds          *float64 // 可选
	Baths         *float64 // 可选
	AreaSqft      *int     // 可选
	YearBuilt     *int     // 可选
	PurchasePrice *float64 // 可选
	PurchaseDate  string   // 可选
}

type UpdateHomeResponse struct {
	Success bool `json:"success"`
}

type DeleteHomeRequest struct {
	HomeID     string // 必填
	OwnerEmail string // 必填（校验归属）
}

type DeleteHomeResponse struct {
	Success bool `json:"success"`
}

type DashboardRequest struct {
	OwnerEmail string // 必填
}

// HomeCard 仪表盘单套房产卡片
type HomeCard struct {
	Home     *domain.Home             `json:"home"`
	Estimate *valuation.ValueEstimate `json:"estimate,omitempty"` // 无行情数据时缺省
	Trend    *valuation.TrendResult   `json:"trend,omitempty"`    // 无月度历史时缺省
}

type DashboardResponse struct {
	Items []HomeCard `json:"items"`
	Total int        `json:"total"`
}

// ============================================
// 方法实现
// ============================================

// RegisterHome 登记房产
func (s *homeService) RegisterHome(ctx context.Context, req RegisterHomeRequest) (*RegisterHomeResponse, error) {
	// 1. 参数验证
	email, err := normalizeOwnerEmail(req.OwnerEmail)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Address) == "" {
		return nil, fmt.Errorf("%w: address is required", ErrInvalidArgument)
	}
	if strings.TrimSpace(req.City) == "" {
		return nil, fmt.Errorf("%w: city is required", ErrInvalidArgument)
	}
	propertyType, err := normalizePropertyType(req.PropertyType)
	if err != nil {
		return nil, err
	}

	// 2. 构建 domain.Home
	home := &domain.Home{
		OwnerEmail:    email,
		Address:       strings.TrimSpace(req.Address),
		City:          strings.TrimSpace(req.City),
		Province:      strings.TrimSpace(req.Province),
		PostalCode:    strings.TrimSpace(req.PostalCode),
		PropertyType:  propertyType,
		Beds:          req.Beds,
		Baths:         req.Baths,
		AreaSqft:      req.AreaSqft,
		YearBuilt:     req.YearBuilt,
		PurchasePrice: nullFloat(req.PurchasePrice),
		PurchaseDate:  normalizePurchaseDate(req.PurchaseDate),
	}

	// 3. 调用 Repository
	homeID, err := s.homesRepo.CreateHome(ctx, home)
	if err != nil {
		s.logger.Error("RegisterHome failed",
			zap.String("owner_email", email),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to register home: %w", err)
	}

	return &RegisterHomeResponse{
		HomeID: homeID,
	}, nil
}

// UpdateHome 更新房产（部分更新，校验归属）
func (s *homeService) UpdateHome(ctx context.Context, req UpdateHomeRequest) (*UpdateHomeResponse, error) {
	// 1. 参数验证
	if req.HomeID == "" {
		return nil, fmt.Errorf("%w: home_id is required", ErrInvalidArgument)
	}
	email, err := normalizeOwnerEmail(req.OwnerEmail)
	if err != nil {
		return nil, err
	}

	// 2. 先获取当前房产并校验归属
	current, err := s.homesRepo.GetHome(ctx, req.HomeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get home: %w", err)
	}
	if !strings.EqualFold(current.OwnerEmail, email) {
		// 不属于该业主的房产按不存在处理，避免泄露他人登记信息
		return nil, repository.ErrNotFound
	}

	// 3. 覆盖提供的字段
	home := *current

	if req.Address != "" {
		home.Address = strings.TrimSpace(req.Address)
	}
	if req.City != "" {
		home.City = strings.TrimSpace(req.City)
	}
	if req.Province != "" {
		home.Province = strings.TrimSpace(req.Province)
	}
	if req.PostalCode != "" {
		home.PostalCode = strings.TrimSpace(req.PostalCode)
	}
	if req.PropertyType != "" {
		propertyType, err := normalizePropertyType(req.PropertyType)
		if err != nil {
			return nil, err
		}
		home.PropertyType = propertyType
	}
	if req.Beds != nil {
		home.Beds = *req.Beds
	}
	if req.Baths != nil {
		home.Baths = *req.Baths
	}
	if req.AreaSqft != nil {
		home.AreaSqft = *req.AreaSqft
	}
	if req.YearBuilt != nil {
		home.YearBuilt = *req.YearBuilt
	}
	if req.PurchasePrice != nil {
		home.PurchasePrice = nullFloat(req.PurchasePrice)
	}
	if req.PurchaseDate != "" {
		home.PurchaseDate = normalizePurchaseDate(req.PurchaseDate)
	}

	// 4. 调用 Repository
	if err := s.homesRepo.UpdateHome(ctx, req.HomeID, &home); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("UpdateHome failed",
			zap.String("home_id", req.HomeID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to update home: %w", err)
	}

	return &UpdateHomeResponse{
		Success: true,
	}, nil
}

// DeleteHome 删除房产（校验归属）
func (s *homeService) DeleteHome(ctx context.Context, req DeleteHomeRequest) (*DeleteHomeResponse, error) {
	if req.HomeID == "" {
		return nil, fmt.Errorf("%w: home_id is required", ErrInvalidArgument)
	}
	email, err := normalizeOwnerEmail(req.OwnerEmail)
	if err != nil {
		return nil, err
	}

	current, err := s.homesRepo.GetHome(ctx, req.HomeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get home: %w", err)
	}
	if !strings.EqualFold(current.OwnerEmail, email) {
		return nil, repository.ErrNotFound
	}

	if err := s.homesRepo.DeleteHome(ctx, req.HomeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("DeleteHome failed",
			zap.String("home_id", req.HomeID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to delete home: %w", err)
	}

	return &DeleteHomeResponse{
		Success: true,
	}, nil
}

// Dashboard 业主仪表盘：每套房产附带可比估值和城市行情走势
func (s *homeService) Dashboard(ctx context.Context, req DashboardRequest) (*DashboardResponse, error) {
	// 1. 参数验证
	email, err := normalizeOwnerEmail(req.OwnerEmail)
	if err != nil {
		return nil, err
	}

	// 2. 查询业主房产
	homes, err := s.homesRepo.ListHomesByOwner(ctx, email)
	if err != nil {
		s.logger.Error("Dashboard: failed to list homes",
			zap.String("owner_email", email),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to list homes: %w", err)
	}

	// 3. 逐套估值（城市无行情时跳过估值，不报错）
	items := make([]HomeCard, 0, len(homes))
	for _, home := range homes {
		card := HomeCard{Home: home}

		snap, err := s.market.Snapshot(ctx, home.City)
		if err != nil {
			s.logger.Warn("Dashboard: market snapshot failed",
				zap.String("city", home.City),
				zap.Error(err),
			)
		} else if snap != nil {
			est := valuation.Estimate(valuation.HomeFacts{
				PropertyType: home.PropertyType,
				Beds:         home.Beds,
				Baths:        home.Baths,
				AreaSqft:     home.AreaSqft,
				YearBuilt:    home.YearBuilt,
			}, valuation.MarketStats{
				MedianPricePerSqft: snap.MedianPricePerSqft,
				AsOfYear:           snap.AsOfYear,
			})
			if est.Estimate > 0 {
				card.Estimate = &est
			}

			if len(snap.History) >= 2 {
				trend := valuation.Trend(snap.History)
				card.Trend = &trend
			}
		}

		items = append(items, card)
	}

	return &DashboardResponse{
		Items: items,
		Total: len(items),
	}, nil
}

// ============================================
// 辅助函数
// ============================================

// normalizeOwnerEmail 规范化业主邮箱（小写，必填，须含@）
func normalizeOwnerEmail(email string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(email))
	if e == "" {
		return "", fmt.Errorf("%w: owner_email is required", ErrInvalidArgument)
	}
	if !strings.Contains(e, "@") {
		return "", fmt.Errorf("%w: owner_email is not valid", ErrInvalidArgument)
	}
	return e, nil
}

// normalizePropertyType 规范化房型：空字符串 → condo，非法值报错
func normalizePropertyType(propertyType string) (string, error) {
	t := strings.ToLower(strings.TrimSpace(propertyType))
	switch t {
	case "":
		return "condo", nil
	case "condo", "townhouse", "semi", "detached":
		return t, nil
	default:
		return "", fmt.Errorf("%w: property_type must be condo, townhouse, semi or detached", ErrInvalidArgument)
	}
}

// normalizePurchaseDate 规范化购入日期：空字符串视为 NULL
func normalizePurchaseDate(date string) sql.NullString {
	d := strings.TrimSpace(date)
	if d == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: d, Valid: true}
}
