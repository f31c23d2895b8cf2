package domain

import (
	"database/sql"
	"encoding/json"
)

// 项目完工进度（progress 列，0-2）
const (
	ProgressPreConstruction   = 0 // 未动工（预售）
	ProgressUnderConstruction = 1 // 在建
	ProgressCompleted         = 2 // 已完工
)

// 项目状态（status 列）
const (
	ProjectStatusDraft     = "draft"
	ProjectStatusPublished = "published"
	ProjectStatusArchived  = "archived" // 软删除
)

// Project 楼花项目领域模型（对应 projects 表）
// 基于实际DB表结构：22个字段
type Project struct {
	// 主键
	ProjectID string `db:"project_id"` // UUID, PRIMARY KEY

	// 基本信息
	Name string `db:"name"` // VARCHAR(255), NOT NULL
	Slug string `db:"slug"` // VARCHAR(255), UNIQUE, NOT NULL

	// 开发商信息（JSON 子对象：name/website/phone/about）
	Developer json.RawMessage `db:"developer"` // JSONB, nullable

	// 地址
	Address    string `db:"address"`     // VARCHAR(255), nullable
	City       string `db:"city"`        // VARCHAR(100), nullable
	Province   string `db:"province"`    // VARCHAR(50), nullable
	PostalCode string `db:"postal_code"` // VARCHAR(20), nullable

	// 坐标（缺失时由地理编码补齐）
	Latitude  sql.NullFloat64 `db:"latitude"`  // DOUBLE PRECISION, nullable
	Longitude sql.NullFloat64 `db:"longitude"` // DOUBLE PRECISION, nullable

	// 销售信息
	OccupancyDate string          `db:"occupancy_date"` // VARCHAR(50), nullable（营销文案，如 "Fall 2027"）
	Progress      int             `db:"progress"`       // SMALLINT, NOT NULL, 0-2
	Status        string          `db:"status"`         // VARCHAR(20), DEFAULT 'draft' (draft/published/archived)
	Featured      bool            `db:"featured"`       // BOOLEAN, DEFAULT false
	PriceFrom     sql.NullFloat64 `db:"price_from"`     // NUMERIC, nullable
	PriceTo       sql.NullFloat64 `db:"price_to"`       // NUMERIC, nullable

	// 配套与资料（JSON 子对象）
	Amenities Amenities       `db:"amenities"` // JSONB, nullable（字符串数组）
	Documents json.RawMessage `db:"documents"` // JSONB, nullable（[{title,url,kind}]）

	// 描述
	Description      string `db:"description"`       // TEXT, nullable
	DepositStructure string `db:"deposit_structure"` // TEXT, nullable

	// 时间戳
	CreatedAt string `db:"created_at"` // TIMESTAMPTZ
	UpdatedAt string `db:"updated_at"` // TIMESTAMPTZ
}

// Amenities 配套设施（JSONB 字符串数组）
type Amenities []string

// DeveloperInfo 开发商信息（projects.developer JSONB 的结构）
type DeveloperInfo struct {
	Name    string `json:"name"`
	Website string `json:"website,omitempty"`
	Phone   string `json:"phone,omitempty"`
	About   string `json:"about,omitempty"`
}

// ProjectDocument 项目资料（projects.documents JSONB 数组元素）
type ProjectDocument struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Kind  string `json:"kind,omitempty"` // brochure/floor_plans/price_list/...
}

// progressLabels 完工进度显示文本（0-2 ↔ 显示字符串）
var progressLabels = map[int]string{
	ProgressPreConstruction:   "Pre Construction",
	ProgressUnderConstruction: "Under Construction",
	ProgressCompleted:         "Completed",
}

// ProgressLabel 返回完工进度的显示文本
// 未知值返回 ok=false
func ProgressLabel(progress int) (string, bool) {
	label, ok := progressLabels[progress]
	return label, ok
}

// ParseProgress 将完工进度显示文本解析回整数值
// 未知文本返回 ok=false
func ParseProgress(label string) (int, bool) {
	for v, l := range progressLabels {
		if l == label {
			return v, true
		}
	}
	return 0, false
}

// ValidProgress 校验完工进度取值（0-2）
func ValidProgress(progress int) bool {
	_, ok := progressLabels[progress]
	return ok
}
