package httpapi

import (
	"net/http"
	"strings"

	"summitly-data/internal/domain"
	"summitly-data/internal/service"

	"go.uber.org/zap"
)

// HomeHandler 业主房产与估值仪表盘 Handler
type HomeHandler struct {
	homeService service.HomeService
	logger      *zap.Logger
}

// NewHomeHandler 创建业主房产 Handler
func NewHomeHandler(homeService service.HomeService, logger *zap.Logger) *HomeHandler {
	return &HomeHandler{
		homeService: homeService,
		logger:      logger,
	}
}

type registerHomeRequest struct {
	OwnerEmail    string   `json:"owner_email"` // 必填
	Address       string   `json:"address"`     // 必填
	City          string   `json:"city"`        // 必填
	Province      string   `json:"province"`
	PostalCode    string   `json:"postal_code"`
	PropertyType  string   `json:"property_type"` // 默认 condo
	Beds          float64  `json:"beds"`
	Baths         float64  `json:"baths"`
	AreaSqft      int      `json:"area_sqft"`
	YearBuilt     int      `json:"year_built"`
	PurchasePrice *float64 `json:"purchase_price"`
	PurchaseDate  string   `json:"purchase_date"` // "2006-01-02"
}

type updateHomeRequest struct {
	OwnerEmail    string   `json:"owner_email"` // 必填，校验归属
	Address       string   `json:"address"`
	City          string   `json:"city"`
	Province      string   `json:"province"`
	PostalCode    string   `json:"postal_code"`
	PropertyType  string   `json:"property_type"`
	Beds          *float64 `json:"beds"`
	Baths         *float64 `json:"baths"`
	AreaSqft      *int     `json:"area_sqft"`
	YearBuilt     *int     `json:"year_built"`
	PurchasePrice *float64 `json:"purchase_price"`
	PurchaseDate  string   `json:"purchase_date"`
}

// RegisterHome 登记房产
// POST /api/homes
func (h *HomeHandler) RegisterHome(w http.ResponseWriter, r *http.Request) {
	var req registerHomeRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}

	resp, err := h.homeService.RegisterHome(r.Context(), service.RegisterHomeRequest{
		OwnerEmail:    req.OwnerEmail,
		Address:       req.Address,
		City:          req.City,
		Province:      req.Province,
		PostalCode:    req.PostalCode,
		PropertyType:  req.PropertyType,
		Beds:          req.Beds,
		Baths:         req.Baths,
		AreaSqft:      req.AreaSqft,
		YearBuilt:     req.YearBuilt,
		PurchasePrice: req.PurchasePrice,
		PurchaseDate:  req.PurchaseDate,
	})
	if err != nil {
		h.logger.Error("RegisterHome failed", zap.Error(err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Ok(resp))
}

// HomeByPath 子路径分发
// GET    /api/homes/dashboard  → 仪表盘
// PUT    /api/homes/{id}       → 更新（body 带 owner_email 校验归属）
// DELETE /api/homes/{id}       → 删除（query 带 owner_email）
func (h *HomeHandler) HomeByPath(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/homes/"), "/")
	if rest == "" || strings.Contains(rest, "/") {
		writeJSON(w, http.StatusNotFound, Fail("not found"))
		return
	}

	if rest == "dashboard" {
		if r.Method != http.MethodGet {
			writeJSON(w, http.StatusMethodNotAllowed, Fail("method not allowed"))
			return
		}
		h.Dashboard(w, r)
		return
	}

	switch r.Method {
	case http.MethodPut:
		h.UpdateHome(w, r, rest)
	case http.MethodDelete:
		h.DeleteHome(w, r, rest)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, Fail("method not allowed"))
	}
}

// Dashboard 业主仪表盘（房产 + 估值 + 行情卡片）
// GET /api/homes/dashboard?owner_email=
func (h *HomeHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	resp, err := h.homeService.Dashboard(r.Context(), service.DashboardRequest{
		OwnerEmail: r.URL.Query().Get("owner_email"),
	})
	if err != nil {
		h.logger.Error("Dashboard failed", zap.Error(err))
		writeError(w, err)
		return
	}

	items := make([]any, 0, len(resp.Items))
	for _, card := range resp.Items {
		item := map[string]any{
			"home": homeToJSON(card.Home),
		}
		if card.Estimate != nil {
			item["estimate"] = card.Estimate
		}
		if card.Trend != nil {
			item["trend"] = card.Trend
		}
		items = append(items, item)
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items": items,
		"total": resp.Total,
	}))
}

// UpdateHome 更新房产信息
func (h *HomeHandler) UpdateHome(w http.ResponseWriter, r *http.Request, homeID string) {
	var req updateHomeRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}

	resp, err := h.homeService.UpdateHome(r.Context(), service.UpdateHomeRequest{
		HomeID:        homeID,
		OwnerEmail:    req.OwnerEmail,
		Address:       req.Address,
		City:          req.City,
		Province:      req.Province,
		PostalCode:    req.PostalCode,
		PropertyType:  req.PropertyType,
		Beds:          req.Beds,
		Baths:         req.Baths,
		AreaSqft:      req.AreaSqft,
		YearBuilt:     req.YearBuilt,
		PurchasePrice: req.PurchasePrice,
		PurchaseDate:  req.PurchaseDate,
	})
	if err != nil {
		h.logger.Error("UpdateHome failed", zap.String("homeId", homeID), zap.Error(err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Ok(resp))
}

// DeleteHome 删除房产
func (h *HomeHandler) DeleteHome(w http.ResponseWriter, r *http.Request, homeID string) {
	resp, err := h.homeService.DeleteHome(r.Context(), service.DeleteHomeRequest{
		HomeID:     homeID,
		OwnerEmail: r.URL.Query().Get("owner_email"),
	})
	if err != nil {
		h.logger.Error("DeleteHome failed", zap.String("homeId", homeID), zap.Error(err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Ok(resp))
}

// ============================================
// JSON 转换
// ============================================

// homeToJSON Home 转 JSON
func homeToJSON(home *domain.Home) map[string]any {
	m := map[string]any{
		"home_id":       home.HomeID,
		"owner_email":   home.OwnerEmail,
		"address":       home.Address,
		"city":          home.City,
		"property_type": home.PropertyType,
		"beds":          home.Beds,
		"baths":         home.Baths,
		"area_sqft":     home.AreaSqft,
		"created_at":    home.CreatedAt,
		"updated_at":    home.UpdatedAt,
	}

	if home.Province != "" {
		m["province"] = home.Province
	}
	if home.PostalCode != "" {
		m["postal_code"] = home.PostalCode
	}
	if home.YearBuilt > 0 {
		m["year_built"] = home.YearBuilt
	}
	if home.PurchasePrice.Valid {
		m["purchase_price"] = home.PurchasePrice.Float64
	}
	if home.PurchaseDate.Valid {
		m["purchase_date"] = home.PurchaseDate.String
	}

	return m
}
