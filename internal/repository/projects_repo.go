package repository

import (
	"context"

	"summitly-data/internal/domain"
)

// ProjectsRepository 楼花项目Repository接口
// 使用强类型领域模型，不使用map[string]any
// 设计原则：从底层（数据库）向上设计，Repository层只负责数据访问
type ProjectsRepository interface {
	// ========== 查询（单个）==========
	// GetProject 根据project_id获取项目
	GetProject(ctx context.Context, projectID string) (*domain.Project, error)

	// GetProjectBySlug 根据slug获取项目（用于楼盘页路由）
	// 注意：slug有唯一索引，支持此查询
	GetProjectBySlug(ctx context.Context, slug string) (*domain.Project, error)

	// ========== 查询（列表）==========
	// ListProjects 查询项目列表（支持分页、过滤、搜索）
	// 过滤条件：status/city/progress/featured/价格区间
	// 搜索条件：name（模糊匹配）
	// 排序：创建时间倒序（新盘在前）
	ListProjects(ctx context.Context, filter ProjectFilters, page, size int) ([]*domain.Project, int, error)

	// ListCities 统计各城市已发布项目数（城市导航）
	ListCities(ctx context.Context) ([]CityCount, error)

	// ========== 创建 ==========
	// CreateProject 创建项目
	// 注意：slug唯一性约束由数据库保证，冲突返回ErrDuplicateSlug
	CreateProject(ctx context.Context, project *domain.Project) (string, error)

	// ========== 更新 ==========
	// UpdateProject 更新项目（整行更新，部分更新的字段合并在Service层完成）
	UpdateProject(ctx context.Context, projectID string, project *domain.Project) error

	// SetProjectStatus 更新项目状态（draft/published/archived）
	SetProjectStatus(ctx context.Context, projectID string, status string) error

	// SetProjectCoordinates 写入地理编码结果
	SetProjectCoordinates(ctx context.Context, projectID string, lat, lng float64) error

	// ========== 删除 ==========
	// DeleteProject 删除项目（软删除：设置status='archived'）
	DeleteProject(ctx context.Context, projectID string) error
}

// ProjectFilters 项目查询过滤器
type ProjectFilters struct {
	Status   string // 可选，按status过滤（draft/published/archived）
	City     string // 可选，按城市过滤（精确匹配，不区分大小写）
	Progress *int   // 可选，按完工进度过滤（0-2）
	Featured *bool  // 可选，只看精选盘
	MinPrice float64
	MaxPrice float64
	Search   string // 可选，按name搜索（模糊匹配）
}

// CityCount 城市及其已发布项目数
type CityCount struct {
	City  string `json:"city"`
	Count int    `json:"count"`
}
