package repository

import (
	"context"

	"summitly-data/internal/domain"
)

// UnitsRepository 户型单元Repository接口
type UnitsRepository interface {
	// GetUnit 根据unit_id获取单元
	GetUnit(ctx context.Context, unitID string) (*domain.Unit, error)

	// ListUnits 查询某项目下的单元列表
	// 过滤条件：available/卧室数/价格区间
	// 排序：楼层、单元号
	ListUnits(ctx context.Context, projectID string, filter UnitFilters, page, size int) ([]*domain.Unit, int, error)

	// CreateUnit 创建单元
	// MLS编号唯一性由数据库保证，冲突返回ErrDuplicateMLS；
	// project_id外键失败返回ErrProjectGone
	CreateUnit(ctx context.Context, unit *domain.Unit) (string, error)

	// UpsertUnitByNumber 按(project_id, unit_number)插入或更新（Excel导入用）
	UpsertUnitByNumber(ctx context.Context, unit *domain.Unit) (string, error)

	// UpdateUnit 更新单元（整行更新，字段合并在Service层完成）
	UpdateUnit(ctx context.Context, unitID string, unit *domain.Unit) error

	// DeleteUnit 删除单元（硬删除：价格表会整表重导）
	DeleteUnit(ctx context.Context, unitID string) error
}

// UnitFilters 单元查询过滤器
type UnitFilters struct {
	Available *bool   // 可选，只看在售
	MinBeds   float64 // 可选，最少卧室数
	MaxPrice  float64 // 可选，价格上限
}
