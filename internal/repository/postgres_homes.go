package repository

import (
	"context"
	"database/sql"
	"fmt"

	"summitly-data/internal/domain"
)

// PostgresHomesRepository 业主房产Repository实现
type PostgresHomesRepository struct {
	db *sql.DB
}

// NewPostgresHomesRepository 创建房产Repository
func NewPostgresHomesRepository(db *sql.DB) *PostgresHomesRepository {
	return &PostgresHomesRepository{db: db}
}

// 确保实现了接口
var _ HomesRepository = (*PostgresHomesRepository)(nil)

// homeColumns SELECT 列表（与 scanHome 的扫描顺序一一对应）
const homeColumns = `
	home_id::text,
	owner_email,
	address,
	city,
	COALESCE(province, '') as province,
	COALESCE(postal_code, '') as postal_code,
	property_type,
	COALESCE(beds, 0) as beds,
	COALESCE(baths, 0) as baths,
	COALESCE(area_sqft, 0) as area_sqft,
	COALESCE(year_built, 0) as year_built,
	purchase_price,
	purchase_date::text,
	COALESCE(created_at::text, '') as created_at,
	COALESCE(updated_at::text, '') as updated_at`

// scanHome 按 homeColumns 顺序扫描一行
func scanHome(scan func(dest ...any) error) (*domain.Home, error) {
	var h domain.Home
	err := scan(
		&h.HomeID,
		&h.OwnerEmail,
		&h.Address,
		&h.City,
		&h.Province,
		&h.PostalCode,
		&h.PropertyType,
		&h.Beds,
		&h.Baths,
		&h.AreaSqft,
		&h.YearBuilt,
		&h.PurchasePrice,
		&h.PurchaseDate,
		&h.CreatedAt,
		&h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// GetHome 根据home_id获取房产
func (r *PostgresHomesRepository) GetHome(ctx context.Context, homeID string) (*domain.Home, error) {
	if homeID == "" {
		return nil, fmt.Errorf("home_id is required")
	}

	query := fmt.Sprintf(`SELECT %s FROM homes WHERE home_id = $1::uuid`, homeColumns)

	row := r.db.QueryRowContext(ctx, query, homeID)
	home, err := scanHome(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get home: %w", err)
	}
	return home, nil
}

// ListHomesByOwner 查询某业主登记的全部房产
func (r *PostgresHomesRepository) ListHomesByOwner(ctx context.Context, ownerEmail string) ([]*domain.Home, error) {
	if ownerEmail == "" {
		return nil, fmt.Errorf("owner_email is required")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM homes
		WHERE LOWER(owner_email) = LOWER($1)
		ORDER BY created_at
	`, homeColumns)

	rows, err := r.db.QueryContext(ctx, query, ownerEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to list homes: %w", err)
	}
	defer rows.Close()

	homes := []*domain.Home{}
	for rows.Next() {
		home, err := scanHome(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan home: %w", err)
		}
		homes = append(homes, home)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate homes: %w", err)
	}

	return homes, nil
}

// CreateHome 登记房产
func (r *PostgresHomesRepository) CreateHome(ctx context.Context, home *domain.Home) (string, error) {
	if home == nil {
		return "", fmt.Errorf("home is required")
	}
	if home.OwnerEmail == "" {
		return "", fmt.Errorf("owner_email is required")
	}
	if home.Address == "" {
		return "", fmt.Errorf("address is required")
	}

	var homeID string
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO homes (
			owner_email, address, city, province, postal_code,
			property_type, beds, baths, area_sqft, year_built,
			purchase_price, purchase_date
		) VALUES (
			$1, $2, $3, NULLIF($4, ''), NULLIF($5, ''),
			$6, $7, $8, $9, NULLIF($10, 0),
			$11, $12::date
		)
		RETURNING home_id::text`,
		home.OwnerEmail,
		home.Address,
		home.City,
		home.Province,
		home.PostalCode,
		home.PropertyType,
		home.Beds,
		home.Baths,
		home.AreaSqft,
		home.YearBuilt,
		nullFloatToAny(home.PurchasePrice),
		nullStringToAny(home.PurchaseDate),
	).Scan(&homeID)
	if err != nil {
		return "", fmt.Errorf("failed to create home: %w", err)
	}

	return homeID, nil
}

// UpdateHome 更新房产（整行更新，字段合并在Service层完成）
func (r *PostgresHomesRepository) UpdateHome(ctx context.Context, homeID string, home *domain.Home) error {
	if homeID == "" {
		return fmt.Errorf("home_id is required")
	}
	if home == nil {
		return fmt.Errorf("home is required")
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE homes SET
			address = $2,
			city = $3,
			province = NULLIF($4, ''),
			postal_code = NULLIF($5, ''),
			property_type = $6,
			beds = $7,
			baths = $8,
			area_sqft = $9,
			year_built = NULLIF($10, 0),
			purchase_price = $11,
			purchase_date = $12::date,
			updated_at = now()
		WHERE home_id = $1::uuid`,
		homeID,
		home.Address,
		home.City,
		home.Province,
		home.PostalCode,
		home.PropertyType,
		home.Beds,
		home.Baths,
		home.AreaSqft,
		home.YearBuilt,
		nullFloatToAny(home.PurchasePrice),
		nullStringToAny(home.PurchaseDate),
	)
	if err != nil {
		return fmt.Errorf("failed to update home: %w", err)
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

// DeleteHome 删除房产（硬删除）
func (r *PostgresHomesRepository) DeleteHome(ctx context.Context, homeID string) error {
	if homeID == "" {
		return fmt.Errorf("home_id is required")
	}

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM homes WHERE home_id = $1::uuid`,
		homeID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete home: %w", err)
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
