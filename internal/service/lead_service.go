package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"summitly-data/internal/analytics"
	"summitly-data/internal/domain"
	"summitly-data/internal/repository"

	"go.uber.org/zap"
)

// LeadService 购房意向（Lead）服务接口
type LeadService interface {
	CreateLead(ctx context.Context, req CreateLeadRequest) (*CreateLeadResponse, error)
	ListLeads(ctx context.Context, req ListLeadsRequest) (*ListLeadsResponse, error)
}

// leadService 实现
type leadService struct {
	leadsRepo repository.LeadsRepository
	publisher EngagementPublisher
	logger    *zap.Logger
}

// NewLeadService 创建 LeadService 实例
func NewLeadService(leadsRepo repository.LeadsRepository, publisher EngagementPublisher, logger *zap.Logger) LeadService {
	return &leadService{
		leadsRepo: leadsRepo,
		publisher: publisher,
		logger:    logger,
	}
}

// ============================================
// 请求/响应结构
// ============================================

type CreateLeadRequest struct {
	ProjectID string // 可选（关联某个项目时填写）
	Name      string // 必填
	Email     string // Email 和 Phone 至少一个
	Phone     string
	Message   string // 可选
	Source    string // 可选（website / landing-page / referral 等）
	IsRealtor bool   // 可选
}

type CreateLeadResponse struct {
	LeadID string `json:"lead_id"`
}

type ListLeadsRequest struct {
	ProjectID string // 可选
	Source    string // 可选
	Page      int    // 可选，默认 1
	Size      int    // 可选，默认 50
}

type ListLeadsResponse struct {
	Items []*domain.Lead `json:"items"`
	Total int            `json:"total"`
}

// ============================================
// 方法实现
// ============================================

// CreateLead 提交购房意向
func (s *leadService) CreateLead(ctx context.Context, req CreateLeadRequest) (*CreateLeadResponse, error) {
	// 1. 参数验证
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidArgument)
	}
	email := strings.TrimSpace(req.Email)
	phone := strings.TrimSpace(req.Phone)
	if email == "" && phone == "" {
		return nil, fmt.Errorf("%w: email or phone is required", ErrInvalidArgument)
	}
	if email != "" && !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email is not valid", ErrInvalidArgument)
	}

	// 2. 构建 domain.Lead
	lead := &domain.Lead{
		ProjectID: normalizeProjectRef(req.ProjectID),
		Name:      strings.TrimSpace(req.Name),
		Email:     email,
		Phone:     phone,
		Message:   strings.TrimSpace(req.Message),
		Source:    normalizeLeadSource(req.Source),
		IsRealtor: req.IsRealtor,
	}

	// 3. 调用 Repository（project_id 指向不存在的项目时外键失败）
	leadID, err := s.leadsRepo.CreateLead(ctx, lead)
	if err != nil {
		if errors.Is(err, repository.ErrProjectGone) {
			return nil, err
		}
		s.logger.Error("CreateLead failed",
			zap.String("name", req.Name),
			zap.String("project_id", req.ProjectID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	// 4. 关联项目的Lead计入热度
	if lead.ProjectID.Valid && s.publisher != nil {
		s.publisher.PublishEngagement(ctx, &analytics.EngagementEvent{
			Event:     analytics.EventLead,
			ProjectID: lead.ProjectID.String,
		})
	}

	return &CreateLeadResponse{
		LeadID: leadID,
	}, nil
}

// ListLeads 管理端查询Lead列表
func (s *leadService) ListLeads(ctx context.Context, req ListLeadsRequest) (*ListLeadsResponse, error) {
	page := req.Page
	if page <= 0 {
		page = 1
	}
	size := req.Size
	if size <= 0 {
		size = 50
	}

	filters := repository.LeadFilters{
		ProjectID: strings.TrimSpace(req.ProjectID),
		Source:    strings.TrimSpace(req.Source),
	}

	items, total, err := s.leadsRepo.ListLeads(ctx, filters, page, size)
	if err != nil {
		s.logger.Error("ListLeads failed", zap.Error(err))
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}

	return &ListLeadsResponse{
		Items: items,
		Total: total,
	}, nil
}

// ============================================
// 辅助函数
// ============================================

// normalizeProjectRef 规范化项目引用：空字符串视为未关联
func normalizeProjectRef(projectID string) sql.NullString {
	p := strings.TrimSpace(projectID)
	if p == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: p, Valid: true}
}

// normalizeLeadSource 规范化来源：空字符串 → website
func normalizeLeadSource(source string) string {
	src := strings.ToLower(strings.TrimSpace(source))
	if src == "" {
		return "website"
	}
	return src
}
