package httpapi

import (
	"net/http"

	"summitly-data/internal/domain"
	"summitly-data/internal/service"

	"go.uber.org/zap"
)

// LeadHandler 购房意向 Handler（公开表单提交）
type LeadHandler struct {
	leadService service.LeadService
	logger      *zap.Logger
}

// NewLeadHandler 创建意向 Handler
func NewLeadHandler(leadService service.LeadService, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{
		leadService: leadService,
		logger:      logger,
	}
}

type createLeadRequest struct {
	ProjectID string `json:"project_id"` // 可选
	Name      string `json:"name"`       // 必填
	Email     string `json:"email"`      // Email/Phone 至少一个
	Phone     string `json:"phone"`
	Message   string `json:"message"`
	Source    string `json:"source"`
	IsRealtor bool   `json:"is_realtor"`
}

// CreateLead 提交购房意向表单
// POST /api/leads
func (h *LeadHandler) CreateLead(w http.ResponseWriter, r *http.Request) {
	var req createLeadRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}

	resp, err := h.leadService.CreateLead(r.Context(), service.CreateLeadRequest{
		ProjectID: req.ProjectID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Message:   req.Message,
		Source:    req.Source,
		IsRealtor: req.IsRealtor,
	})
	if err != nil {
		h.logger.Error("CreateLead failed", zap.Error(err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Ok(resp))
}

// ============================================
// JSON 转换
// ============================================

// leadToJSON Lead 转 JSON（admin 列表用）
func leadToJSON(l *domain.Lead) map[string]any {
	m := map[string]any{
		"lead_id":    l.LeadID,
		"name":       l.Name,
		"email":      l.Email,
		"is_realtor": l.IsRealtor,
		"created_at": l.CreatedAt,
	}

	if l.ProjectID.Valid {
		m["project_id"] = l.ProjectID.String
	}
	if l.Phone != "" {
		m["phone"] = l.Phone
	}
	if l.Message != "" {
		m["message"] = l.Message
	}
	if l.Source != "" {
		m["source"] = l.Source
	}

	return m
}
