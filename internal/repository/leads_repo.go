package repository

import (
	"context"

	"summitly-data/internal/domain"
)

// LeadsRepository 客户线索Repository接口
type LeadsRepository interface {
	// CreateLead 写入一条线索（楼盘页/计算器页的表单提交）
	CreateLead(ctx context.Context, lead *domain.Lead) (string, error)

	// ListLeads 查询线索列表（后台）
	// 过滤条件：project_id/source
	// 排序：提交时间倒序
	ListLeads(ctx context.Context, filter LeadFilters, page, size int) ([]*domain.Lead, int, error)
}

// LeadFilters 线索查询过滤器
type LeadFilters struct {
	ProjectID string // 可选，按项目过滤
	Source    string // 可选，按来源页面过滤
}
