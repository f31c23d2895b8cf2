package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"summitly-data/internal/domain"
	"summitly-data/internal/repository"

	"go.uber.org/zap"
)

// UnitService 户型单元管理服务接口
type UnitService interface {
	ListUnits(ctx context.Context, req ListUnitsRequest) (*ListUnitsResponse, error)
	GetUnit(ctx context.Context, req GetUnitRequest) (*GetUnitResponse, error)
	CreateUnit(ctx context.Context, req CreateUnitRequest) (*CreateUnitResponse, error)
	UpdateUnit(ctx context.Context, req UpdateUnitRequest) (*UpdateUnitResponse, error)
	DeleteUnit(ctx context.Context, req DeleteUnitRequest) (*DeleteUnitResponse, error)

	// Excel 批量导入（按 unit_number upsert，逐行容错）
	ImportUnits(ctx context.Context, req ImportUnitsRequest) (*ImportUnitsResponse, error)
}

// unitService 实现
type unitService struct {
	unitsRepo    repository.UnitsRepository
	projectsRepo repository.ProjectsRepository
	logger       *zap.Logger
}

// NewUnitService 创建 UnitService 实例
func NewUnitService(
	unitsRepo repository.UnitsRepository,
	projectsRepo repository.ProjectsRepository,
	logger *zap.Logger,
) UnitService {
	return &unitService{
		unitsRepo:    unitsRepo,
		projectsRepo: projectsRepo,
		logger:       logger,
	}
}

// ============================================
// 请求/响应结构
// ============================================

type ListUnitsRequest struct {
	ProjectID string // 必填
	Available *bool  // 可选
	MinBeds   float64 // 可选
	MaxPrice  float64 // 可选
	Page      int    // 可选，默认 1
	Size      int    // 可选，默认 50
}

type ListUnitsResponse struct {
	Items []*domain.Unit `json:"items"`
	Total int            `json:"total"`
}

type GetUnitRequest struct {
	UnitID string // 必填
}

type GetUnitResponse struct {
	Unit *domain.Unit `json:"unit"`
}

type CreateUnitRequest struct {
	ProjectID    string  // 必填
	MLSNumber    string  // 可选（非空时全局唯一）
	UnitNumber   string  // 必填
	ModelName    string  // 可选
	Beds         float64 // 可选
	Baths        float64 // 可选
	AreaSqft     int     // 可选
	Price        float64 // 可选
	Floor        string  // 可选
	Exposure     string  // 可选
	FloorPlanURL string  // 可选
	Available    *bool   // 可选（默认 true）
}

type CreateUnitResponse struct {
	UnitID string `json:"unit_id"`
}

type UpdateUnitRequest struct {
	UnitID       string   // 必填
	MLSNumber    *string  // 可选（nil 保持原值，空字符串清除）
	UnitNumber   string   // 可选
	ModelName    string   // 可选
	Beds         *float64 // 可选
	Baths        *float64 // 可选
	AreaSqft     *int     // 可选
	Price        *float64 // 可选
	Floor        string   // 可选
	Exposure     string   // 可选
	FloorPlanURL string   // 可选
	Available    *bool    // 可选
}

type UpdateUnitResponse struct {
	Success bool `json:"success"`
}

type DeleteUnitRequest struct {
	UnitID string // 必填
}

type DeleteUnitResponse struct {
	Success bool `json:"success"`
}

// UnitImportRow 导入的一行（Excel 解析层产出）
type UnitImportRow struct {
	Row          int     // 源文件行号（报错定位用）
	UnitNumber   string
	MLSNumber    string
	ModelName    string
	Beds         float64
	Baths        float64
	AreaSqft     int
	Price        float64
	Floor        string
	Exposure     string
	FloorPlanURL string
	Available    bool
}

type ImportUnitsRequest struct {
	ProjectID string          // 必填
	Rows      []UnitImportRow // 必填
}

type ImportUnitsResponse struct {
	Imported int      `json:"imported"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// ============================================
// 方法实现
// ============================================

// ListUnits 查询项目下的单元列表
func (s *unitService) ListUnits(ctx context.Context, req ListUnitsRequest) (*ListUnitsResponse, error) {
	// 1. 参数验证
	if req.ProjectID == "" {
		return nil, fmt.Errorf("%w: project_id is required", ErrInvalidArgument)
	}

	// 2. 分页参数
	page := req.Page
	if page <= 0 {
		page = 1
	}
	size := req.Size
	if size <= 0 {
		size = 50
	}

	// 3. 调用 Repository
	filters := repository.UnitFilters{
		Available: req.Available,
		MinBeds:   req.MinBeds,
		MaxPrice:  req.MaxPrice,
	}

	items, total, err := s.unitsRepo.ListUnits(ctx, req.ProjectID, filters, page, size)
	if err != nil {
		s.logger.Error("ListUnits failed",
			zap.String("project_id", req.ProjectID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to list units: %w", err)
	}

	return &ListUnitsResponse{
		Items: items,
		Total: total,
	}, nil
}

// GetUnit 获取单个单元详情
func (s *unitService) GetUnit(ctx context.Context, req GetUnitRequest) (*GetUnitResponse, error) {
	if req.UnitID == "" {
		return nil, fmt.Errorf("%w: unit_id is required", ErrInvalidArgument)
	}

	unit, err := s.unitsRepo.GetUnit(ctx, req.UnitID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("GetUnit failed",
			zap.String("unit_id", req.UnitID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to get unit: %w", err)
	}

	return &GetUnitResponse{
		Unit: unit,
	}, nil
}

// CreateUnit 创建单元
func (s *unitService) CreateUnit(ctx context.Context, req CreateUnitRequest) (*CreateUnitResponse, error) {
	// 1. 参数验证（必填字段）
	if req.ProjectID == "" {
		return nil, fmt.Errorf("%w: project_id is required", ErrInvalidArgument)
	}
	if strings.TrimSpace(req.UnitNumber) == "" {
		return nil, fmt.Errorf("%w: unit_number is required", ErrInvalidArgument)
	}
	if err := validateUnitNumbers(req.Beds, req.Baths, req.AreaSqft, req.Price); err != nil {
		return nil, err
	}

	// 2. 父项目必须存在（内存模式下外键由这里兜底，Postgres 下还有外键约束）
	if _, err := s.projectsRepo.GetProject(ctx, req.ProjectID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrProjectGone
		}
		return nil, fmt.Errorf("failed to check project: %w", err)
	}

	// 3. 构建 domain.Unit
	available := true
	if req.Available != nil {
		available = *req.Available
	}

	unit := &domain.Unit{
		ProjectID:    req.ProjectID,
		MLSNumber:    normalizeMLSNumber(req.MLSNumber),
		UnitNumber:   strings.TrimSpace(req.UnitNumber),
		ModelName:    strings.TrimSpace(req.ModelName),
		Beds:         req.Beds,
		Baths:        req.Baths,
		AreaSqft:     req.AreaSqft,
		Price:        req.Price,
		Floor:        strings.TrimSpace(req.Floor),
		Exposure:     strings.TrimSpace(req.Exposure),
		FloorPlanURL: strings.TrimSpace(req.FloorPlanURL),
		Available:    available,
	}

	// 4. 调用 Repository
	unitID, err := s.unitsRepo.CreateUnit(ctx, unit)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateMLS) || errors.Is(err, repository.ErrProjectGone) {
			return nil, err
		}
		s.logger.Error("CreateUnit failed",
			zap.String("project_id", req.ProjectID),
			zap.String("unit_number", req.UnitNumber),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to create unit: %w", err)
	}

	return &CreateUnitResponse{
		UnitID: unitID,
	}, nil
}

// UpdateUnit 更新单元（部分更新：先取当前值再覆盖提供的字段）
func (s *unitService) UpdateUnit(ctx context.Context, req UpdateUnitRequest) (*UpdateUnitResponse, error) {
	// 1. 参数验证
	if req.UnitID == "" {
		return nil, fmt.Errorf("%w: unit_id is required", ErrInvalidArgument)
	}

	// 2. 先获取当前单元
	current, err := s.unitsRepo.GetUnit(ctx, req.UnitID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("UpdateUnit: failed to get current unit",
			zap.String("unit_id", req.UnitID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to get unit: %w", err)
	}

	// 3. 覆盖提供的字段
	unit := *current

	if req.MLSNumber != nil {
		unit.MLSNumber = normalizeMLSNumber(*req.MLSNumber)
	}
	if req.UnitNumber != "" {
		unit.UnitNumber = strings.TrimSpace(req.UnitNumber)
	}
	if req.ModelName != "" {
		unit.ModelName = strings.TrimSpace(req.ModelName)
	}
	if req.Beds != nil {
		unit.Beds = *req.Beds
	}
	if req.Baths != nil {
		unit.Baths = *req.Baths
	}
	if req.AreaSqft != nil {
		unit.AreaSqft = *req.AreaSqft
	}
	if req.Price != nil {
		unit.Price = *req.Price
	}
	if req.Floor != "" {
		unit.Floor = strings.TrimSpace(req.Floor)
	}
	if req.Exposure != "" {
		unit.Exposure = strings.TrimSpace(req.Exposure)
	}
	if req.FloorPlanURL != "" {
		unit.FloorPlanURL = strings.TrimSpace(req.FloorPlanURL)
	}
	if req.Available != nil {
		unit.Available = *req.Available
	}

	if err := validateUnitNumbers(unit.Beds, unit.Baths, unit.AreaSqft, unit.Price); err != nil {
		return nil, err
	}

	// 4. 调用 Repository
	if err := s.unitsRepo.UpdateUnit(ctx, req.UnitID, &unit); err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrDuplicateMLS) {
			return nil, err
		}
		s.logger.Error("UpdateUnit failed",
			zap.String("unit_id", req.UnitID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to update unit: %w", err)
	}

	return &UpdateUnitResponse{
		Success: true,
	}, nil
}

// DeleteUnit 删除单元
func (s *unitService) DeleteUnit(ctx context.Context, req DeleteUnitRequest) (*DeleteUnitResponse, error) {
	if req.UnitID == "" {
		return nil, fmt.Errorf("%w: unit_id is required", ErrInvalidArgument)
	}

	if err := s.unitsRepo.DeleteUnit(ctx, req.UnitID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("DeleteUnit failed",
			zap.String("unit_id", req.UnitID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to delete unit: %w", err)
	}

	return &DeleteUnitResponse{
		Success: true,
	}, nil
}

// ImportUnits 批量导入单元
// 逐行 upsert（按 project_id + unit_number），单行失败不中断整批
func (s *unitService) ImportUnits(ctx context.Context, req ImportUnitsRequest) (*ImportUnitsResponse, error) {
	// 1. 参数验证
	if req.ProjectID == "" {
		return nil, fmt.Errorf("%w: project_id is required", ErrInvalidArgument)
	}
	if len(req.Rows) == 0 {
		return nil, fmt.Errorf("%w: no rows to import", ErrInvalidArgument)
	}

	// 2. 父项目必须存在
	if _, err := s.projectsRepo.GetProject(ctx, req.ProjectID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrProjectGone
		}
		return nil, fmt.Errorf("failed to check project: %w", err)
	}

	// 3. 逐行导入
	resp := &ImportUnitsResponse{}
	for _, row := range req.Rows {
		if strings.TrimSpace(row.UnitNumber) == "" {
			resp.Failed++
			resp.Errors = append(resp.Errors, fmt.Sprintf("row %d: unit_number is required", row.Row))
			continue
		}
		if err := validateUnitNumbers(row.Beds, row.Baths, row.AreaSqft, row.Price); err != nil {
			resp.Failed++
			resp.Errors = append(resp.Errors, fmt.Sprintf("row %d: %v", row.Row, err))
			continue
		}

		unit := &domain.Unit{
			ProjectID:    req.ProjectID,
			MLSNumber:    normalizeMLSNumber(row.MLSNumber),
			UnitNumber:   strings.TrimSpace(row.UnitNumber),
			ModelName:    strings.TrimSpace(row.ModelName),
			Beds:         row.Beds,
			Baths:        row.Baths,
			AreaSqft:     row.AreaSqft,
			Price:        row.Price,
			Floor:        strings.TrimSpace(row.Floor),
			Exposure:     strings.TrimSpace(row.Exposure),
			FloorPlanURL: strings.TrimSpace(row.FloorPlanURL),
			Available:    row.Available,
		}

		if _, err := s.unitsRepo.UpsertUnitByNumber(ctx, unit); err != nil {
			resp.Failed++
			resp.Errors = append(resp.Errors, fmt.Sprintf("row %d: %v", row.Row, err))
			continue
		}
		resp.Imported++
	}

	s.logger.Info("Units imported",
		zap.String("project_id", req.ProjectID),
		zap.Int("imported", resp.Imported),
		zap.Int("failed", resp.Failed),
	)

	return resp, nil
}

// ============================================
// 辅助函数
// ============================================

// normalizeMLSNumber 规范化 MLS 编号：空字符串视为 NULL（不占用唯一约束）
func normalizeMLSNumber(mls string) sql.NullString {
	m := strings.ToUpper(strings.TrimSpace(mls))
	if m == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: m, Valid: true}
}

// validateUnitNumbers 数值字段不允许负数
func validateUnitNumbers(beds, baths float64, areaSqft int, price float64) error {
	if beds < 0 {
		return fmt.Errorf("%w: beds must not be negative", ErrInvalidArgument)
	}
	if baths < 0 {
		return fmt.Errorf("%w: baths must not be negative", ErrInvalidArgument)
	}
	if areaSqft < 0 {
		return fmt.Errorf("%w: area_sqft must not be negative", ErrInvalidArgument)
	}
	if price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidArgument)
	}
	return nil
}
