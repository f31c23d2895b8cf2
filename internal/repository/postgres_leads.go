package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"summitly-data/internal/domain"
)

// PostgresLeadsRepository 客户线索Repository实现
type PostgresLeadsRepository struct {
	db *sql.DB
}

// NewPostgresLeadsRepository 创建线索Repository
func NewPostgresLeadsRepository(db *sql.DB) *PostgresLeadsRepository {
	return &PostgresLeadsRepository{db: db}
}

// 确保实现了接口
var _ LeadsRepository = (*PostgresLeadsRepository)(nil)

// CreateLead 写入一条线索
func (r *PostgresLeadsRepository) CreateLead(ctx context.Context, lead *domain.Lead) (string, error) {
	if lead == nil {
		return "", fmt.Errorf("lead is required")
	}
	if lead.Name == "" {
		return "", fmt.Errorf("name is required")
	}
	if lead.Email == "" {
		return "", fmt.Errorf("email is required")
	}

	var leadID string
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO leads (project_id, name, email, phone, message, source, is_realtor)
		 VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7)
		 RETURNING lead_id::text`,
		nullStringToAny(lead.ProjectID),
		lead.Name,
		lead.Email,
		lead.Phone,
		lead.Message,
		lead.Source,
		lead.IsRealtor,
	).Scan(&leadID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pqForeignKeyViolation {
			return "", ErrProjectGone
		}
		return "", fmt.Errorf("failed to create lead: %w", err)
	}

	return leadID, nil
}

// ListLeads 查询线索列表（后台）
func (r *PostgresLeadsRepository) ListLeads(ctx context.Context, filter LeadFilters, page, size int) ([]*domain.Lead, int, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 50
	}
	offset := (page - 1) * size

	// 构建WHERE条件
	where := []string{}
	args := []any{}
	argIdx := 1

	if filter.ProjectID != "" {
		where = append(where, fmt.Sprintf("project_id = $%d::uuid", argIdx))
		args = append(args, filter.ProjectID)
		argIdx++
	}

	if filter.Source != "" {
		where = append(where, fmt.Sprintf("source = $%d", argIdx))
		args = append(args, filter.Source)
		argIdx++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	// 查询总数
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM leads %s`, whereClause)
	var total int
	err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count leads: %w", err)
	}

	// 查询列表（新线索在前）
	query := fmt.Sprintf(`
		SELECT
			lead_id::text,
			project_id::text,
			name,
			email,
			COALESCE(phone, '') as phone,
			COALESCE(message, '') as message,
			COALESCE(source, '') as source,
			COALESCE(is_realtor, false) as is_realtor,
			COALESCE(created_at::text, '') as created_at
		FROM leads
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIdx, argIdx+1)

	args = append(args, size, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	leads := []*domain.Lead{}
	for rows.Next() {
		var lead domain.Lead
		err := rows.Scan(
			&lead.LeadID,
			&lead.ProjectID,
			&lead.Name,
			&lead.Email,
			&lead.Phone,
			&lead.Message,
			&lead.Source,
			&lead.IsRealtor,
			&lead.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, &lead)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate leads: %w", err)
	}

	return leads, total, nil
}
