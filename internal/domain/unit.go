package domain

import (
	"database/sql"
)

// Unit 户型单元领域模型（对应 units 表）
// 基于实际DB表结构：14个字段
type Unit struct {
	// 主键
	UnitID string `db:"unit_id"` // UUID, PRIMARY KEY

	// 所属项目（外键，units.project_id → projects.project_id）
	ProjectID string `db:"project_id"` // UUID, NOT NULL, FK

	// MLS 编号（全表唯一，允许为空）
	MLSNumber sql.NullString `db:"mls_number"` // VARCHAR(50), UNIQUE WHERE mls_number IS NOT NULL

	// 户型信息
	UnitNumber string  `db:"unit_number"` // VARCHAR(50), NOT NULL
	ModelName  string  `db:"model_name"`  // VARCHAR(100), nullable
	Beds       float64 `db:"beds"`        // NUMERIC(3,1), NOT NULL（允许 1.5 这类半间）
	Baths      float64 `db:"baths"`       // NUMERIC(3,1), NOT NULL
	AreaSqft   int     `db:"area_sqft"`   // INTEGER, NOT NULL

	// 价格
	Price float64 `db:"price"` // NUMERIC(12,2), NOT NULL

	// 位置
	Floor    string `db:"floor"`    // VARCHAR(20), nullable
	Exposure string `db:"exposure"` // VARCHAR(20), nullable (N/NE/E/...)

	// 户型图
	FloorPlanURL string `db:"floor_plan_url"` // VARCHAR(500), nullable

	// 在售状态
	Available bool `db:"available"` // BOOLEAN, DEFAULT true

	// 时间戳
	CreatedAt string `db:"created_at"` // TIMESTAMPTZ
	UpdatedAt string `db:"updated_at"` // TIMESTAMPTZ
}
