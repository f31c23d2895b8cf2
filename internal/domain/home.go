package domain

import (
	"database/sql"
)

// Home 业主房产领域模型（对应 homes 表）
// 业主在仪表盘登记的自有房产，用于估值展示
type Home struct {
	// 主键
	HomeID string `db:"home_id"` // UUID, PRIMARY KEY

	// 业主标识（无登录体系，以邮箱归属）
	OwnerEmail string `db:"owner_email"` // VARCHAR(255), NOT NULL

	// 地址
	Address    string `db:"address"`     // VARCHAR(255), NOT NULL
	City       string `db:"city"`        // VARCHAR(100), NOT NULL
	Province   string `db:"province"`    // VARCHAR(50), nullable
	PostalCode string `db:"postal_code"` // VARCHAR(20), nullable

	// 房产属性
	PropertyType string  `db:"property_type"` // VARCHAR(50), NOT NULL (condo/townhouse/detached/semi)
	Beds         float64 `db:"beds"`          // NUMERIC(3,1), NOT NULL
	Baths        float64 `db:"baths"`         // NUMERIC(3,1), NOT NULL
	AreaSqft     int     `db:"area_sqft"`     // INTEGER, NOT NULL
	YearBuilt    int     `db:"year_built"`    // INTEGER, nullable（0 表示未知）

	// 购入信息（用于估值对比）
	PurchasePrice sql.NullFloat64 `db:"purchase_price"` // NUMERIC(12,2), nullable
	PurchaseDate  sql.NullString  `db:"purchase_date"`  // DATE, nullable

	// 时间戳
	CreatedAt string `db:"created_at"` // TIMESTAMPTZ
	UpdatedAt string `db:"updated_at"` // TIMESTAMPTZ
}
