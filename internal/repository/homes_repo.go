package repository

import (
	"context"

	"summitly-data/internal/domain"
)

// HomesRepository 业主房产Repository接口
type HomesRepository interface {
	// GetHome 根据home_id获取房产
	GetHome(ctx context.Context, homeID string) (*domain.Home, error)

	// ListHomesByOwner 查询某业主登记的全部房产（仪表盘）
	ListHomesByOwner(ctx context.Context, ownerEmail string) ([]*domain.Home, error)

	// CreateHome 登记房产
	CreateHome(ctx context.Context, home *domain.Home) (string, error)

	// UpdateHome 更新房产（整行更新，字段合并在Service层完成）
	UpdateHome(ctx context.Context, homeID string, home *domain.Home) error

	// DeleteHome 删除房产（硬删除）
	DeleteHome(ctx context.Context, homeID string) error
}
