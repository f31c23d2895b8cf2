package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"summitly-data/internal/domain"
)

// PostgresUnitsRepository 户型单元Repository实现
type PostgresUnitsRepository struct {
	db *sql.DB
}

// NewPostgresUnitsRepository 创建单元Repository
func NewPostgresUnitsRepository(db *sql.DB) *PostgresUnitsRepository {
	return &PostgresUnitsRepository{db: db}
}

// 确保实现了接口
var _ UnitsRepository = (*PostgresUnitsRepository)(nil)

// unitColumns SELECT 列表（与 scanUnit 的扫描顺序一一对应）
const unitColumns = `
	unit_id::text,
	project_id::text,
	mls_number,
	unit_number,
	COALESCE(model_name, '') as model_name,
	COALESCE(beds, 0) as beds,
	COALESCE(baths, 0) as baths,
	COALESCE(area_sqft, 0) as area_sqft,
	COALESCE(price, 0) as price,
	COALESCE(floor, '') as floor,
	COALESCE(exposure, '') as exposure,
	COALESCE(floor_plan_url, '') as floor_plan_url,
	COALESCE(available, true) as available,
	COALESCE(created_at::text, '') as created_at,
	COALESCE(updated_at::text, '') as updated_at`

// scanUnit 按 unitColumns 顺序扫描一行
func scanUnit(scan func(dest ...any) error) (*domain.Unit, error) {
	var u domain.Unit
	err := scan(
		&u.UnitID,
		&u.ProjectID,
		&u.MLSNumber,
		&u.UnitNumber,
		&u.ModelName,
		&u.Beds,
		&u.Baths,
		&u.AreaSqft,
		&u.Price,
		&u.Floor,
		&u.Exposure,
		&u.FloorPlanURL,
		&u.Available,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// mapUnitWriteError 写入错误映射：唯一冲突（MLS）和外键失败（project）转为哨兵错误
func mapUnitWriteError(err error) error {
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case pqUniqueViolation:
			if strings.Contains(pqErr.Constraint, "mls") {
				return ErrDuplicateMLS
			}
			return fmt.Errorf("unit already exists: %w", err)
		case pqForeignKeyViolation:
			return ErrProjectGone
		}
	}
	return nil
}

// GetUnit 根据unit_id获取单元
func (r *PostgresUnitsRepository) GetUnit(ctx context.Context, unitID string) (*domain.Unit, error) {
	if unitID == "" {
		return nil, fmt.Errorf("unit_id is required")
	}

	query := fmt.Sprintf(`SELECT %s FROM units WHERE unit_id = $1::uuid`, unitColumns)

	row := r.db.QueryRowContext(ctx, query, unitID)
	unit, err := scanUnit(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get unit: %w", err)
	}
	return unit, nil
}

// ListUnits 查询某项目下的单元列表
func (r *PostgresUnitsRepository) ListUnits(ctx context.Context, projectID string, filter UnitFilters, page, size int) ([]*domain.Unit, int, error) {
	if projectID == "" {
		return nil, 0, fmt.Errorf("project_id is required")
	}
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 50
	}
	offset := (page - 1) * size

	// 构建WHERE条件
	where := []string{"project_id = $1::uuid"}
	args := []any{projectID}
	argIdx := 2

	if filter.Available != nil {
		where = append(where, fmt.Sprintf("available = $%d", argIdx))
		args = append(args, *filter.Available)
		argIdx++
	}

	if filter.MinBeds > 0 {
		where = append(where, fmt.Sprintf("beds >= $%d", argIdx))
		args = append(args, filter.MinBeds)
		argIdx++
	}

	if filter.MaxPrice > 0 {
		where = append(where, fmt.Sprintf("price <= $%d", argIdx))
		args = append(args, filter.MaxPrice)
		argIdx++
	}

	whereClause := "WHERE " + strings.Join(where, " AND ")

	// 查询总数
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM units %s`, whereClause)
	var total int
	err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count units: %w", err)
	}

	// 查询列表（带分页）
	query := fmt.Sprintf(`
		SELECT %s
		FROM units
		%s
		ORDER BY floor, unit_number
		LIMIT $%d OFFSET $%d
	`, unitColumns, whereClause, argIdx, argIdx+1)

	args = append(args, size, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list units: %w", err)
	}
	defer rows.Close()

	units := []*domain.Unit{}
	for rows.Next() {
		unit, err := scanUnit(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan unit: %w", err)
		}
		units = append(units, unit)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate units: %w", err)
	}

	return units, total, nil
}

// CreateUnit 创建单元
func (r *PostgresUnitsRepository) CreateUnit(ctx context.Context, unit *domain.Unit) (string, error) {
	if unit == nil {
		return "", fmt.Errorf("unit is required")
	}
	if unit.ProjectID == "" {
		return "", fmt.Errorf("project_id is required")
	}
	if unit.UnitNumber == "" {
		return "", fmt.Errorf("unit_number is required")
	}

	var unitID string
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO units (
			project_id, mls_number, unit_number, model_name,
			beds, baths, area_sqft, price,
			floor, exposure, floor_plan_url, available
		) VALUES (
			$1::uuid, $2, $3, NULLIF($4, ''),
			$5, $6, $7, $8,
			NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''), $12
		)
		RETURNING unit_id::text`,
		unit.ProjectID,
		nullStringToAny(unit.MLSNumber),
		unit.UnitNumber,
		unit.ModelName,
		unit.Beds,
		unit.Baths,
		unit.AreaSqft,
		unit.Price,
		unit.Floor,
		unit.Exposure,
		unit.FloorPlanURL,
		unit.Available,
	).Scan(&unitID)
	if err != nil {
		if mapped := mapUnitWriteError(err); mapped != nil {
			return "", mapped
		}
		return "", fmt.Errorf("failed to create unit: %w", err)
	}

	return unitID, nil
}

// UpsertUnitByNumber 按(project_id, unit_number)插入或更新（Excel导入用）
func (r *PostgresUnitsRepository) UpsertUnitByNumber(ctx context.Context, unit *domain.Unit) (string, error) {
	if unit == nil {
		return "", fmt.Errorf("unit is required")
	}
	if unit.ProjectID == "" {
		return "", fmt.Errorf("project_id is required")
	}
	if unit.UnitNumber == "" {
		return "", fmt.Errorf("unit_number is required")
	}

	var unitID string
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO units (
			project_id, mls_number, unit_number, model_name,
			beds, baths, area_sqft, price,
			floor, exposure, floor_plan_url, available
		) VALUES (
			$1::uuid, $2, $3, NULLIF($4, ''),
			$5, $6, $7, $8,
			NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''), $12
		)
		ON CONFLICT (project_id, unit_number) DO UPDATE SET
			mls_number = EXCLUDED.mls_number,
			model_name = EXCLUDED.model_name,
			beds = EXCLUDED.beds,
			baths = EXCLUDED.baths,
			area_sqft = EXCLUDED.area_sqft,
			price = EXCLUDED.price,
			floor = EXCLUDED.floor,
			exposure = EXCLUDED.exposure,
			floor_plan_url = EXCLUDED.floor_plan_url,
			available = EXCLUDED.available,
			updated_at = now()
		RETURNING unit_id::text`,
		unit.ProjectID,
		nullStringToAny(unit.MLSNumber),
		unit.UnitNumber,
		unit.ModelName,
		unit.Beds,
		unit.Baths,
		unit.AreaSqft,
		unit.Price,
		unit.Floor,
		unit.Exposure,
		unit.FloorPlanURL,
		unit.Available,
	).Scan(&unitID)
	if err != nil {
		if mapped := mapUnitWriteError(err); mapped != nil {
			return "", mapped
		}
		return "", fmt.Errorf("failed to upsert unit: %w", err)
	}

	return unitID, nil
}

// UpdateUnit 更新单元（整行更新，字段合并在Service层完成）
func (r *PostgresUnitsRepository) UpdateUnit(ctx context.Context, unitID string, unit *domain.Unit) error {
	if unitID == "" {
		return fmt.Errorf("unit_id is required")
	}
	if unit == nil {
		return fmt.Errorf("unit is required")
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE units SET
			mls_number = $2,
			unit_number = $3,
			model_name = NULLIF($4, ''),
			beds = $5,
			baths = $6,
			area_sqft = $7,
			price = $8,
			floor = NULLIF($9, ''),
			exposure = NULLIF($10, ''),
			floor_plan_url = NULLIF($11, ''),
			available = $12,
			updated_at = now()
		WHERE unit_id = $1::uuid`,
		unitID,
		nullStringToAny(unit.MLSNumber),
		unit.UnitNumber,
		unit.ModelName,
		unit.Beds,
		unit.Baths,
		unit.AreaSqft,
		unit.Price,
		unit.Floor,
		unit.Exposure,
		unit.FloorPlanURL,
		unit.Available,
	)
	if err != nil {
		if mapped := mapUnitWriteError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to update unit: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteUnit 删除单元（硬删除）
func (r *PostgresUnitsRepository) DeleteUnit(ctx context.Context, unitID string) error {
	if unitID == "" {
		return fmt.Errorf("unit_id is required")
	}

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM units WHERE unit_id = $1::uuid`,
		unitID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete unit: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
