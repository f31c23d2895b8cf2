package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"summitly-data/internal/domain"
)

// PostgresProjectsRepository 项目Repository实现（强类型版本）
// 实现ProjectsRepository接口，使用domain.Project领域模型
type PostgresProjectsRepository struct {
	db *sql.DB
}

// NewPostgresProjectsRepository 创建项目Repository
func NewPostgresProjectsRepository(db *sql.DB) *PostgresProjectsRepository {
	return &PostgresProjectsRepository{db: db}
}

// 确保实现了接口
var _ ProjectsRepository = (*PostgresProjectsRepository)(nil)

// projectColumns SELECT 列表（与 scanProject 的扫描顺序一一对应）
const projectColumns = `
	project_id::text,
	name,
	COALESCE(slug, '') as slug,
	COALESCE(developer, '{}'::jsonb) as developer,
	COALESCE(address, '') as address,
	COALESCE(city, '') as city,
	COALESCE(province, '') as province,
	COALESCE(postal_code, '') as postal_code,
	latitude,
	longitude,
	COALESCE(occupancy_date, '') as occupancy_date,
	COALESCE(progress, 0) as progress,
	COALESCE(status, 'draft') as status,
	COALESCE(featured, false) as featured,
	price_from,
	price_to,
	COALESCE(amenities, '[]'::jsonb) as amenities,
	COALESCE(documents, '[]'::jsonb) as documents,
	COALESCE(description, '') as description,
	COALESCE(deposit_structure, '') as deposit_structure,
	COALESCE(created_at::text, '') as created_at,
	COALESCE(updated_at::text, '') as updated_at`

// scanProject 按 projectColumns 顺序扫描一行
func scanProject(scan func(dest ...any) error) (*domain.Project, error) {
	var p domain.Project
	var developerRaw, amenitiesRaw, documentsRaw json.RawMessage
	err := scan(
		&p.ProjectID,
		&p.Name,
		&p.Slug,
		&developerRaw,
		&p.Address,
		&p.City,
		&p.Province,
		&p.PostalCode,
		&p.Latitude,
		&p.Longitude,
		&p.OccupancyDate,
		&p.Progress,
		&p.Status,
		&p.Featured,
		&p.PriceFrom,
		&p.PriceTo,
		&amenitiesRaw,
		&documentsRaw,
		&p.Description,
		&p.DepositStructure,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Developer = developerRaw
	p.Documents = documentsRaw
	if len(amenitiesRaw) > 0 {
		if err := json.Unmarshal(amenitiesRaw, &p.Amenities); err != nil {
			return nil, fmt.Errorf("failed to decode amenities: %w", err)
		}
	}
	return &p, nil
}

// GetProject 根据project_id获取项目
func (r *PostgresProjectsRepository) GetProject(ctx context.Context, projectID string) (*domain.Project, error) {
	if projectID == "" {
		return nil, fmt.Errorf("project_id is required")
	}

	query := fmt.Sprintf(`SELECT %s FROM projects WHERE project_id = $1::uuid`, projectColumns)

	row := r.db.QueryRowContext(ctx, query, projectID)
	project, err := scanProject(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

// GetProjectBySlug 根据slug获取项目（用于楼盘页路由）
func (r *PostgresProjectsRepository) GetProjectBySlug(ctx context.Context, slug string) (*domain.Project, error) {
	if slug == "" {
		return nil, fmt.Errorf("slug is required")
	}

	query := fmt.Sprintf(`SELECT %s FROM projects WHERE slug = $1`, projectColumns)

	row := r.db.QueryRowContext(ctx, query, slug)
	project, err := scanProject(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project by slug: %w", err)
	}
	return project, nil
}

// ListProjects 查询项目列表（支持分页、过滤、搜索）
func (r *PostgresProjectsRepository) ListProjects(ctx context.Context, filter ProjectFilters, page, size int) ([]*domain.Project, int, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	offset := (page - 1) * size

	// 构建WHERE条件
	where := []string{}
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, filter.Status)
		argIdx++
	}

	if filter.City != "" {
		where = append(where, fmt.Sprintf("LOWER(city) = LOWER($%d)", argIdx))
		args = append(args, filter.City)
		argIdx++
	}

	if filter.Progress != nil {
		where = append(where, fmt.Sprintf("progress = $%d", argIdx))
		args = append(args, *filter.Progress)
		argIdx++
	}

	if filter.Featured != nil {
		where = append(where, fmt.Sprintf("featured = $%d", argIdx))
		args = append(args, *filter.Featured)
		argIdx++
	}

	if filter.MinPrice > 0 {
		where = append(where, fmt.Sprintf("price_from >= $%d", argIdx))
		args = append(args, filter.MinPrice)
		argIdx++
	}

	if filter.MaxPrice > 0 {
		where = append(where, fmt.Sprintf("price_from <= $%d", argIdx))
		args = append(args, filter.MaxPrice)
		argIdx++
	}

	if filter.Search != "" {
		where = append(where, fmt.Sprintf("name ILIKE $%d", argIdx))
		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	// 查询总数
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM projects %s`, whereClause)
	var total int
	err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count projects: %w", err)
	}

	// 查询列表（带分页，新盘在前）
	query := fmt.Sprintf(`
		SELECT %s
		FROM projects
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, projectColumns, whereClause, argIdx, argIdx+1)

	args = append(args, size, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []*domain.Project{}
	for rows.Next() {
		project, err := scanProject(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate projects: %w", err)
	}

	return projects, total, nil
}

// ListCities 统计各城市已发布项目数
func (r *PostgresProjectsRepository) ListCities(ctx context.Context) ([]CityCount, error) {
	query := `
		SELECT city, COUNT(*) as cnt
		FROM projects
		WHERE status = 'published' AND city IS NOT NULL AND city <> ''
		GROUP BY city
		ORDER BY cnt DESC, city
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}
	defer rows.Close()

	cities := []CityCount{}
	for rows.Next() {
		var c CityCount
		if err := rows.Scan(&c.City, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan city: %w", err)
		}
		cities = append(cities, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cities: %w", err)
	}

	return cities, nil
}

// CreateProject 创建项目
func (r *PostgresProjectsRepository) CreateProject(ctx context.Context, project *domain.Project) (string, error) {
	if project == nil {
		return "", fmt.Errorf("project is required")
	}
	if project.Name == "" {
		return "", fmt.Errorf("name is required")
	}
	if project.Slug == "" {
		return "", fmt.Errorf("slug is required")
	}

	// 处理默认值
	status := project.Status
	if status == "" {
		status = domain.ProjectStatusDraft
	}

	amenitiesArg := "[]"
	if len(project.Amenities) > 0 {
		b, err := json.Marshal(project.Amenities)
		if err != nil {
			return "", fmt.Errorf("failed to encode amenities: %w", err)
		}
		amenitiesArg = string(b)
	}

	// 可空字段使用NULLIF将空字符串转为NULL
	var projectID string
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO projects (
			name, slug, developer,
			address, city, province, postal_code,
			latitude, longitude,
			occupancy_date, progress, status, featured,
			price_from, price_to,
			amenities, documents, description, deposit_structure
		) VALUES (
			$1, $2, $3::jsonb,
			NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''),
			$8, $9,
			NULLIF($10, ''), $11, $12, $13,
			$14, $15,
			$16::jsonb, $17::jsonb, NULLIF($18, ''), NULLIF($19, '')
		)
		RETURNING project_id::text`,
		project.Name,
		project.Slug,
		jsonbArg(project.Developer, "{}"),
		project.Address,
		project.City,
		project.Province,
		project.PostalCode,
		nullFloatToAny(project.Latitude),
		nullFloatToAny(project.Longitude),
		project.OccupancyDate,
		project.Progress,
		status,
		project.Featured,
		nullFloatToAny(project.PriceFrom),
		nullFloatToAny(project.PriceTo),
		amenitiesArg,
		jsonbArg(project.Documents, "[]"),
		project.Description,
		project.DepositStructure,
	).Scan(&projectID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
			return "", ErrDuplicateSlug
		}
		return "", fmt.Errorf("failed to create project: %w", err)
	}

	return projectID, nil
}

// UpdateProject 更新项目（整行更新，字段合并在Service层完成）
func (r *PostgresProjectsRepository) UpdateProject(ctx context.Context, projectID string, project *domain.Project) error {
	if projectID == "" {
		return fmt.Errorf("project_id is required")
	}
	if project == nil {
		return fmt.Errorf("project is required")
	}

	amenitiesArg := "[]"
	if len(project.Amenities) > 0 {
		b, err := json.Marshal(project.Amenities)
		if err != nil {
			return fmt.Errorf("failed to encode amenities: %w", err)
		}
		amenitiesArg = string(b)
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE projects SET
			name = $2,
			slug = $3,
			developer = $4::jsonb,
			address = NULLIF($5, ''),
			city = NULLIF($6, ''),
			province = NULLIF($7, ''),
			postal_code = NULLIF($8, ''),
			latitude = $9,
			longitude = $10,
			occupancy_date = NULLIF($11, ''),
			progress = $12,
			status = $13,
			featured = $14,
			price_from = $15,
			price_to = $16,
			amenities = $17::jsonb,
			documents = $18::jsonb,
			description = NULLIF($19, ''),
			deposit_structure = NULLIF($20, ''),
			updated_at = now()
		WHERE project_id = $1::uuid`,
		projectID,
		project.Name,
		project.Slug,
		jsonbArg(project.Developer, "{}"),
		project.Address,
		project.City,
		project.Province,
		project.PostalCode,
		nullFloatToAny(project.Latitude),
		nullFloatToAny(project.Longitude),
		project.OccupancyDate,
		project.Progress,
		project.Status,
		project.Featured,
		nullFloatToAny(project.PriceFrom),
		nullFloatToAny(project.PriceTo),
		amenitiesArg,
		jsonbArg(project.Documents, "[]"),
		project.Description,
		project.DepositStructure,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("failed to update project: %w", err)
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

// SetProjectStatus 更新项目状态
func (r *PostgresProjectsRepository) SetProjectStatus(ctx context.Context, projectID string, status string) error {
	if projectID == "" {
		return fmt.Errorf("project_id is required")
	}
	if status == "" {
		return fmt.Errorf("status is required")
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE projects SET status = $2, updated_at = now() WHERE project_id = $1::uuid`,
		projectID, status,
	)
	if err != nil {
		return fmt.Errorf("failed to set project status: %w", err)
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

// SetProjectCoordinates 写入地理编码结果
func (r *PostgresProjectsRepository) SetProjectCoordinates(ctx context.Context, projectID string, lat, lng float64) error {
	if projectID == "" {
		return fmt.Errorf("project_id is required")
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE projects SET latitude = $2, longitude = $3, updated_at = now() WHERE project_id = $1::uuid`,
		projectID, lat, lng,
	)
	if err != nil {
		return fmt.Errorf("failed to set project coordinates: %w", err)
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

// DeleteProject 删除项目（软删除：设置status='archived'）
func (r *PostgresProjectsRepository) DeleteProject(ctx context.Context, projectID string) error {
	return r.SetProjectStatus(ctx, projectID, domain.ProjectStatusArchived)
}
