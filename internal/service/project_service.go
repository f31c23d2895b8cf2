package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"summitly-data/internal/analytics"
	"summitly-data/internal/domain"
	"summitly-data/internal/repository"

	"go.uber.org/zap"
)

// EngagementPublisher 互动事件发布接口（analytics.Publisher 实现）
type EngagementPublisher interface {
	PublishEngagement(ctx context.Context, event *analytics.EngagementEvent)
}

// Geocoder 地理编码接口（GeocodeClient 实现）
type Geocoder interface {
	Geocode(ctx context.Context, query string) (lat, lng float64, err error)
}

// ProjectService 楼盘项目管理服务接口
type ProjectService interface {
	// 公开查询
	ListProjects(ctx context.Context, req ListProjectsRequest) (*ListProjectsResponse, error)
	GetProjectBySlug(ctx context.Context, req GetProjectBySlugRequest) (*GetProjectResponse, error)
	ListCities(ctx context.Context) (*ListCitiesResponse, error)

	// 管理端
	GetProject(ctx context.Context, req GetProjectRequest) (*GetProjectResponse, error)
	CreateProject(ctx context.Context, req CreateProjectRequest) (*CreateProjectResponse, error)
	UpdateProject(ctx context.Context, req UpdateProjectRequest) (*UpdateProjectResponse, error)
	DeleteProject(ctx context.Context, req DeleteProjectRequest) (*DeleteProjectResponse, error)
	GeocodeProject(ctx context.Context, req GeocodeProjectRequest) (*GeocodeProjectResponse, error)
}

// projectService 实现
type projectService struct {
	projectsRepo repository.ProjectsRepository
	geocoder     Geocoder
	publisher    EngagementPublisher
	logger       *zap.Logger
}

// NewProjectService 创建 ProjectService 实例
// geocoder 和 publisher 允许为 nil（本地开发不接 Nominatim / Redis 时）
func NewProjectService(
	projectsRepo repository.ProjectsRepository,
	geocoder Geocoder,
	publisher EngagementPublisher,
	logger *zap.Logger,
) ProjectService {
	return &projectService{
		projectsRepo: projectsRepo,
		geocoder:     geocoder,
		publisher:    publisher,
		logger:       logger,
	}
}

// ============================================
// 请求/响应结构
// ============================================

type ListProjectsRequest struct {
	Status   string   // 可选（公开端固定传 published）
	City     string   // 可选
	Progress *int     // 可选（0/1/2）
	Featured *bool    // 可选
	MinPrice float64  // 可选
	MaxPrice float64  // 可选
	Search   string   // 可选（模糊搜索 name）
	Page     int      // 可选，默认 1
	Size     int      // 可选，默认 20
}

type ListProjectsResponse struct {
	Items []*domain.Project `json:"items"`
	Total int               `json:"total"`
}

type GetProjectBySlugRequest struct {
	Slug          string // 必填
	PublishedOnly bool   // 公开路由传 true，非 published 项目按 404 处理
	CountView     bool   // 公开详情页传 true，计入浏览事件
}

type GetProjectRequest struct {
	ProjectID string // 必填
}

type GetProjectResponse struct {
	Project *domain.Project `json:"project"`
}

type ListCitiesResponse struct {
	Items []repository.CityCount `json:"items"`
}

type CreateProjectRequest struct {
	Name             string                   // 必填
	Slug             string                   // 可选（为空时从 Name 生成）
	Developer        *domain.DeveloperInfo    // 可选
	Address          string                   // 可选
	City             string                   // 可选
	Province         string                   // 可选
	PostalCode       string                   // 可选
	OccupancyDate    string                   // 可选
	Progress         int                      // 可选（默认 0 = Pre Construction）
	Status           string                   // 可选（默认 draft）
	Featured         bool                     // 可选
	PriceFrom        *float64                 // 可选
	PriceTo          *float64                 // 可选
	Amenities        []string                 // 可选
	Documents        []domain.ProjectDocument // 可选
	Description      string                   // 可选
	DepositStructure string                   // 可选
}

type CreateProjectResponse struct {
	ProjectID string `json:"project_id"`
	Slug      string `json:"slug"`
}

type UpdateProjectRequest struct {
	ProjectID        string                   // 必填
	Name             string                   // 可选（空字符串保持原值）
	Slug             string                   // 可选
	Developer        *domain.DeveloperInfo    // 可选（nil 保持原值）
	Address          string                   // 可选
	City             string                   // 可选
	Province         string                   // 可选
	PostalCode       string                   // 可选
	OccupancyDate    string                   // 可选
	Progress         *int                     // 可选（nil 保持原值）
	Status           string                   // 可选
	Featured         *bool                    // 可选（nil 保持原值）
	PriceFrom        *float64                 // 可选（nil 保持原值）
	PriceTo          *float64                 // 可选（nil 保持原值）
	Amenities        []string                 // 可选（nil 保持原值，空切片清空）
	Documents        []domain.ProjectDocument // 可选（nil 保持原值，空切片清空）
	Description      string                   // 可选
	DepositStructure string                   // 可选
}

type UpdateProjectResponse struct {
	Success bool `json:"success"`
}

type DeleteProjectRequest struct {
	ProjectID string // 必填
}

type DeleteProjectResponse struct {
	Success bool `json:"success"`
}

type GeocodeProjectRequest struct {
	ProjectID string // 必填
}

type GeocodeProjectResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ============================================
// 方法实现
// ============================================

// ListProjects 查询项目列表
func (s *projectService) ListProjects(ctx context.Context, req ListProjectsRequest) (*ListProjectsResponse, error) {
	// 1. 参数验证
	if req.Progress != nil && !domain.ValidProgress(*req.Progress) {
		return nil, fmt.Errorf("%w: progress must be 0, 1 or 2", ErrInvalidArgument)
	}

	// 2. 分页参数
	page := req.Page
	if page <= 0 {
		page = 1
	}
	size := req.Size
	if size <= 0 {
		size = 20
	}

	// 3. 调用 Repository
	filters := repository.ProjectFilters{
		Status:   strings.TrimSpace(req.Status),
		City:     strings.TrimSpace(req.City),
		Progress: req.Progress,
		Featured: req.Featured,
		MinPrice: req.MinPrice,
		MaxPrice: req.MaxPrice,
		Search:   strings.TrimSpace(req.Search),
	}

	items, total, err := s.projectsRepo.ListProjects(ctx, filters, page, size)
	if err != nil {
		s.logger.Error("ListProjects failed",
			zap.String("city", req.City),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return &ListProjectsResponse{
		Items: items,
		Total: total,
	}, nil
}

// GetProjectBySlug 公开详情页查询
// PublishedOnly 为 true 时非 published 项目按不存在处理；
// CountView 为 true 时发布 page_view 事件（聚合到热度计数）
func (s *projectService) GetProjectBySlug(ctx context.Context, req GetProjectBySlugRequest) (*GetProjectResponse, error) {
	if req.Slug == "" {
		return nil, fmt.Errorf("%w: slug is required", ErrInvalidArgument)
	}

	project, err := s.projectsRepo.GetProjectBySlug(ctx, strings.TrimSpace(req.Slug))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("GetProjectBySlug failed",
			zap.String("slug", req.Slug),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if req.PublishedOnly && project.Status != domain.ProjectStatusPublished {
		return nil, repository.ErrNotFound
	}

	if req.CountView && s.publisher != nil {
		s.publisher.PublishEngagement(ctx, &analytics.EngagementEvent{
			Event:     analytics.EventPageView,
			ProjectID: project.ProjectID,
			Slug:      project.Slug,
			City:      project.City,
		})
	}

	return &GetProjectResponse{
		Project: project,
	}, nil
}

// ListCities 按城市统计已发布项目数
func (s *projectService) ListCities(ctx context.Context) (*ListCitiesResponse, error) {
	items, err := s.projectsRepo.ListCities(ctx)
	if err != nil {
		s.logger.Error("ListCities failed", zap.Error(err))
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}

	return &ListCitiesResponse{
		Items: items,
	}, nil
}

// GetProject 管理端按ID查询
func (s *projectService) GetProject(ctx context.Context, req GetProjectRequest) (*GetProjectResponse, error) {
	if req.ProjectID == "" {
		return nil, fmt.Errorf("%w: project_id is required", ErrInvalidArgument)
	}

	project, err := s.projectsRepo.GetProject(ctx, req.ProjectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("GetProject failed",
			zap.String("project_id", req.ProjectID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return &GetProjectResponse{
		Project: project,
	}, nil
}

// CreateProject 创建项目
func (s *projectService) CreateProject(ctx context.Context, req CreateProjectRequest) (*CreateProjectResponse, error) {
	// 1. 参数验证（必填字段）
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidArgument)
	}
	if !domain.ValidProgress(req.Progress) {
		return nil, fmt.Errorf("%w: progress must be 0, 1 or 2", ErrInvalidArgument)
	}

	// 2. 应用默认值和格式转换
	slug := normalizeSlug(req.Slug)
	if slug == "" {
		slug = normalizeSlug(req.Name)
	}
	if slug == "" {
		return nil, fmt.Errorf("%w: cannot derive slug from name", ErrInvalidArgument)
	}

	status := normalizeProjectStatus(req.Status)
	if status == "" {
		return nil, fmt.Errorf("%w: status must be draft, published or archived", ErrInvalidArgument)
	}

	// 3. 构建 domain.Project
	project := &domain.Project{
		Name:             strings.TrimSpace(req.Name),
		Slug:             slug,
		Developer:        marshalDeveloper(req.Developer),
		Address:          strings.TrimSpace(req.Address),
		City:             strings.TrimSpace(req.City),
		Province:         strings.TrimSpace(req.Province),
		PostalCode:       strings.TrimSpace(req.PostalCode),
		OccupancyDate:    strings.TrimSpace(req.OccupancyDate),
		Progress:         req.Progress,
		Status:           status,
		Featured:         req.Featured,
		PriceFrom:        nullFloat(req.PriceFrom),
		PriceTo:          nullFloat(req.PriceTo),
		Amenities:        req.Amenities,
		Documents:        marshalDocuments(req.Documents),
		Description:      req.Description,
		DepositStructure: req.DepositStructure,
	}

	// 4. 业务规则验证：价格区间
	if project.PriceFrom.Valid && project.PriceTo.Valid && project.PriceFrom.Float64 > project.PriceTo.Float64 {
		return nil, fmt.Errorf("%w: price_from must not exceed price_to", ErrInvalidArgument)
	}

	// 5. 调用 Repository
	projectID, err := s.projectsRepo.CreateProject(ctx, project)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateSlug) {
			return nil, err
		}
		s.logger.Error("CreateProject failed",
			zap.String("name", req.Name),
			zap.String("slug", slug),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	// 6. 地址齐全时顺手解析坐标（尽力而为，失败不影响创建）
	if s.geocoder != nil {
		if query := buildGeocodeQuery(project); query != "" {
			if lat, lng, err := s.geocoder.Geocode(ctx, query); err != nil {
				s.logger.Warn("CreateProject: geocoding failed",
					zap.String("project_id", projectID),
					zap.String("query", query),
					zap.Error(err),
				)
			} else if err := s.projectsRepo.SetProjectCoordinates(ctx, projectID, lat, lng); err != nil {
				s.logger.Warn("CreateProject: failed to save coordinates",
					zap.String("project_id", projectID),
					zap.Error(err),
				)
			}
		}
	}

	return &CreateProjectResponse{
		ProjectID: projectID,
		Slug:      slug,
	}, nil
}

// UpdateProject 更新项目（部分更新：先取当前值再覆盖提供的字段）
func (s *projectService) UpdateProject(ctx context.Context, req UpdateProjectRequest) (*UpdateProjectResponse, error) {
	// 1. 参数验证
	if req.ProjectID == "" {
		return nil, fmt.Errorf("%w: project_id is required", ErrInvalidArgument)
	}
	if req.Progress != nil && !domain.ValidProgress(*req.Progress) {
		return nil, fmt.Errorf("%w: progress must be 0, 1 or 2", ErrInvalidArgument)
	}

	// 2. 先获取当前项目
	current, err := s.projectsRepo.GetProject(ctx, req.ProjectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("UpdateProject: failed to get current project",
			zap.String("project_id", req.ProjectID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	// 3. 覆盖提供的字段
	project := *current

	if req.Name != "" {
		project.Name = strings.TrimSpace(req.Name)
	}
	if req.Slug != "" {
		project.Slug = normalizeSlug(req.Slug)
	}
	if req.Developer != nil {
		project.Developer = marshalDeveloper(req.Developer)
	}
	if req.Address != "" {
		project.Address = strings.TrimSpace(req.Address)
	}
	if req.City != "" {
		project.City = strings.TrimSpace(req.City)
	}
	if req.Province != "" {
		project.Province = strings.TrimSpace(req.Province)
	}
	if req.PostalCode != "" {
		project.PostalCode = strings.TrimSpace(req.PostalCode)
	}
	if req.OccupancyDate != "" {
		project.OccupancyDate = strings.TrimSpace(req.OccupancyDate)
	}
	if req.Progress != nil {
		project.Progress = *req.Progress
	}
	if req.Status != "" {
		status := normalizeProjectStatus(req.Status)
		if status == "" {
			return nil, fmt.Errorf("%w: status must be draft, published or archived", ErrInvalidArgument)
		}
		project.Status = status
	}
	if req.Featured != nil {
		project.Featured = *req.Featured
	}
	if req.PriceFrom != nil {
		project.PriceFrom = nullFloat(req.PriceFrom)
	}
	if req.PriceTo != nil {
		project.PriceTo = nullFloat(req.PriceTo)
	}
	if req.Amenities != nil {
		project.Amenities = req.Amenities
	}
	if req.Documents != nil {
		project.Documents = marshalDocuments(req.Documents)
	}
	if req.Description != "" {
		project.Description = req.Description
	}
	if req.DepositStructure != "" {
		project.DepositStructure = req.DepositStructure
	}

	if project.PriceFrom.Valid && project.PriceTo.Valid && project.PriceFrom.Float64 > project.PriceTo.Float64 {
		return nil, fmt.Errorf("%w: price_from must not exceed price_to", ErrInvalidArgument)
	}

	// 4. 调用 Repository
	if err := s.projectsRepo.UpdateProject(ctx, req.ProjectID, &project); err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrDuplicateSlug) {
			return nil, err
		}
		s.logger.Error("UpdateProject failed",
			zap.String("project_id", req.ProjectID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return &UpdateProjectResponse{
		Success: true,
	}, nil
}

// DeleteProject 删除项目（归档，不做物理删除）
func (s *projectService) DeleteProject(ctx context.Context, req DeleteProjectRequest) (*DeleteProjectResponse, error) {
	if req.ProjectID == "" {
		return nil, fmt.Errorf("%w: project_id is required", ErrInvalidArgument)
	}

	if err := s.projectsRepo.DeleteProject(ctx, req.ProjectID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("DeleteProject failed",
			zap.String("project_id", req.ProjectID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to delete project: %w", err)
	}

	return &DeleteProjectResponse{
		Success: true,
	}, nil
}

// GeocodeProject 根据项目地址解析经纬度并回写
func (s *projectService) GeocodeProject(ctx context.Context, req GeocodeProjectRequest) (*GeocodeProjectResponse, error) {
	// 1. 参数验证
	if req.ProjectID == "" {
		return nil, fmt.Errorf("%w: project_id is required", ErrInvalidArgument)
	}
	if s.geocoder == nil {
		return nil, fmt.Errorf("geocoding is not configured")
	}

	// 2. 获取项目地址
	project, err := s.projectsRepo.GetProject(ctx, req.ProjectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	query := buildGeocodeQuery(project)
	if query == "" {
		return nil, fmt.Errorf("%w: project has no address to geocode", ErrInvalidArgument)
	}

	// 3. 调用地理编码
	lat, lng, err := s.geocoder.Geocode(ctx, query)
	if err != nil {
		s.logger.Error("GeocodeProject failed",
			zap.String("project_id", req.ProjectID),
			zap.String("query", query),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to geocode project: %w", err)
	}

	// 4. 回写坐标
	if err := s.projectsRepo.SetProjectCoordinates(ctx, req.ProjectID, lat, lng); err != nil {
		return nil, fmt.Errorf("failed to save coordinates: %w", err)
	}

	s.logger.Info("Project geocoded",
		zap.String("project_id", req.ProjectID),
		zap.Float64("latitude", lat),
		zap.Float64("longitude", lng),
	)

	return &GeocodeProjectResponse{
		Latitude:  lat,
		Longitude: lng,
	}, nil
}

// ============================================
// 辅助函数
// ============================================

var slugStripper = regexp.MustCompile(`[^a-z0-9]+`)

// normalizeSlug 规范化 URL slug：小写，非字母数字折叠为 "-"
func normalizeSlug(s string) string {
	slug := strings.ToLower(strings.TrimSpace(s))
	slug = slugStripper.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// normalizeProjectStatus 规范化项目状态：空字符串 → draft，非法值 → ""
func normalizeProjectStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "":
		return domain.ProjectStatusDraft
	case domain.ProjectStatusDraft:
		return domain.ProjectStatusDraft
	case domain.ProjectStatusPublished:
		return domain.ProjectStatusPublished
	case domain.ProjectStatusArchived:
		return domain.ProjectStatusArchived
	default:
		return ""
	}
}

// marshalDeveloper 开发商信息转 JSONB（nil → {}）
func marshalDeveloper(dev *domain.DeveloperInfo) json.RawMessage {
	if dev == nil {
		return json.RawMessage(`{}`)
	}
	b, err := json.Marshal(dev)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return b
}

// marshalDocuments 文档列表转 JSONB（nil → []）
func marshalDocuments(docs []domain.ProjectDocument) json.RawMessage {
	if docs == nil {
		return json.RawMessage(`[]`)
	}
	b, err := json.Marshal(docs)
	if err != nil {
		return json.RawMessage(`[]`)
	}
	return b
}

// nullFloat *float64 → sql.NullFloat64（nil → NULL）
func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{Valid: false}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

// buildGeocodeQuery 拼接地理编码查询串
func buildGeocodeQuery(p *domain.Project) string {
	parts := []string{}
	for _, s := range []string{p.Address, p.City, p.Province, p.PostalCode} {
		if strings.TrimSpace(s) != "" {
			parts = append(parts, strings.TrimSpace(s))
		}
	}
	return strings.Join(parts, ", ")
}
