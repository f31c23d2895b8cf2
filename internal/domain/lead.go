package domain

import (
	"database/sql"
)

// Lead 客户线索领域模型（对应 leads 表）
// 来自楼盘页的注册/咨询表单
type Lead struct {
	// 主键
	LeadID string `db:"lead_id"` // UUID, PRIMARY KEY

	// 关联项目（可空：部分表单不挂在具体项目下）
	ProjectID sql.NullString `db:"project_id"` // UUID, nullable, FK

	// 联系信息
	Name  string `db:"name"`  // VARCHAR(100), NOT NULL
	Email string `db:"email"` // VARCHAR(255), NOT NULL
	Phone string `db:"phone"` // VARCHAR(50), nullable

	// 咨询内容
	Message string `db:"message"` // TEXT, nullable

	// 来源页面标识（如 "project_page"/"calculator"/"home_valuation"）
	Source string `db:"source"` // VARCHAR(50), nullable

	// 是否为经纪人
	IsRealtor bool `db:"is_realtor"` // BOOLEAN, DEFAULT false

	// 时间戳
	CreatedAt string `db:"created_at"` // TIMESTAMPTZ
}
