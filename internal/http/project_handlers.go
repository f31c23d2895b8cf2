package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"summitly-data/internal/domain"
	"summitly-data/internal/service"

	"go.uber.org/zap"
)

// publicPageSizeCap 公开列表接口单页上限
const publicPageSizeCap = 100

// ProjectHandler 公开站点的项目查询 Handler
type ProjectHandler struct {
	projectService service.ProjectService
	unitService    service.UnitService
	logger         *zap.Logger
}

// NewProjectHandler 创建公开项目查询 Handler
func NewProjectHandler(projectService service.ProjectService, unitService service.UnitService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		unitService:    unitService,
		logger:         logger,
	}
}

// ListProjects 已发布项目列表
// GET /api/projects?city=&progress=&featured=&min_price=&max_price=&q=&page=&page_size=
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	req := service.ListProjectsRequest{
		Status:   domain.ProjectStatusPublished, // 公开接口只看已发布
		City:     q.Get("city"),
		Featured: parseBoolPtr(q.Get("featured")),
		MinPrice: parseFloat(q.Get("min_price"), 0),
		MaxPrice: parseFloat(q.Get("max_price"), 0),
		Search:   q.Get("q"),
		Page:     parseInt(q.Get("page"), 1),
		Size:     parseInt(q.Get("page_size"), 20),
	}
	if req.Size > publicPageSizeCap {
		req.Size = publicPageSizeCap
	}
	if p := q.Get("progress"); p != "" {
		progress := parseInt(p, -1)
		req.Progress = &progress
	}

	resp, err := h.projectService.ListProjects(ctx, req)
	if err != nil {
		h.logger.Error("ListProjects failed", zap.Error(err))
		writeError(w, err)
		return
	}

	items := make([]any, 0, len(resp.Items))
	for _, p := range resp.Items {
		items = append(items, projectToJSON(p))
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items": items,
		"total": resp.Total,
	}))
}

// ProjectBySlug 详情页分发
// GET /api/projects/{slug}        → 项目详情（附在售单元）
// GET /api/projects/{slug}/units  → 在售单元列表
func (h *ProjectHandler) ProjectBySlug(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/projects/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		h.GetProjectDetail(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "units":
		h.ListProjectUnits(w, r, parts[0])
	default:
		writeJSON(w, http.StatusNotFound, Fail("not found"))
	}
}

// GetProjectDetail 已发布项目详情（计入浏览，附在售单元）
func (h *ProjectHandler) GetProjectDetail(w http.ResponseWriter, r *http.Request, slug string) {
	ctx := r.Context()

	resp, err := h.projectService.GetProjectBySlug(ctx, service.GetProjectBySlugRequest{
		Slug:          slug,
		PublishedOnly: true,
		CountView:     true,
	})
	if err != nil {
		h.logger.Error("GetProjectDetail failed", zap.String("slug", slug), zap.Error(err))
		writeError(w, err)
		return
	}

	available := true
	units, err := h.unitService.ListUnits(ctx, service.ListUnitsRequest{
		ProjectID: resp.Project.ProjectID,
		Available: &available,
	})
	if err != nil {
		h.logger.Error("GetProjectDetail: failed to list units",
			zap.String("slug", slug),
			zap.Error(err),
		)
		writeError(w, err)
		return
	}

	unitItems := make([]any, 0, len(units.Items))
	for _, u := range units.Items {
		unitItems = append(unitItems, unitToJSON(u))
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"project": projectToJSON(resp.Project),
		"units":   unitItems,
	}))
}

// ListProjectUnits 已发布项目的在售单元
func (h *ProjectHandler) ListProjectUnits(w http.ResponseWriter, r *http.Request, slug string) {
	ctx := r.Context()
	q := r.URL.Query()

	project, err := h.projectService.GetProjectBySlug(ctx, service.GetProjectBySlugRequest{
		Slug:          slug,
		PublishedOnly: true,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	available := true
	req := service.ListUnitsRequest{
		ProjectID: project.Project.ProjectID,
		Available: &available,
		MinBeds:   parseFloat(q.Get("min_beds"), 0),
		MaxPrice:  parseFloat(q.Get("max_price"), 0),
		Page:      parseInt(q.Get("page"), 1),
		Size:      parseInt(q.Get("page_size"), 50),
	}
	if req.Size > publicPageSizeCap {
		req.Size = publicPageSizeCap
	}

	resp, err := h.unitService.ListUnits(ctx, req)
	if err != nil {
		h.logger.Error("ListProjectUnits failed", zap.String("slug", slug), zap.Error(err))
		writeError(w, err)
		return
	}

	items := make([]any, 0, len(resp.Items))
	for _, u := range resp.Items {
		items = append(items, unitToJSON(u))
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items": items,
		"total": resp.Total,
	}))
}

// ListCities 有已发布项目的城市及数量
// GET /api/cities
func (h *ProjectHandler) ListCities(w http.ResponseWriter, r *http.Request) {
	resp, err := h.projectService.ListCities(r.Context())
	if err != nil {
		h.logger.Error("ListCities failed", zap.Error(err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Ok(resp.Items))
}

// ============================================
// JSON 转换
// ============================================

// projectToJSON 转换 Project 为 JSON（NULL 字段不输出）
func projectToJSON(p *domain.Project) map[string]any {
	m := map[string]any{
		"project_id":     p.ProjectID,
		"name":           p.Name,
		"slug":           p.Slug,
		"address":        p.Address,
		"city":           p.City,
		"province":       p.Province,
		"postal_code":    p.PostalCode,
		"occupancy_date": p.OccupancyDate,
		"progress":       p.Progress,
		"status":         p.Status,
		"featured":       p.Featured,
		"created_at":     p.CreatedAt,
		"updated_at":     p.UpdatedAt,
	}
	if label, ok := domain.ProgressLabel(p.Progress); ok {
		m["progress_label"] = label
	}
	if len(p.Developer) > 0 {
		m["developer"] = json.RawMessage(p.Developer)
	}
	if p.Latitude.Valid {
		m["latitude"] = p.Latitude.Float64
	}
	if p.Longitude.Valid {
		m["longitude"] = p.Longitude.Float64
	}
	if p.PriceFrom.Valid {
		m["price_from"] = p.PriceFrom.Float64
	}
	if p.PriceTo.Valid {
		m["price_to"] = p.PriceTo.Float64
	}
	if p.Amenities != nil {
		m["amenities"] = p.Amenities
	}
	if len(p.Documents) > 0 {
		m["documents"] = json.RawMessage(p.Documents)
	}
	if p.Description != "" {
		m["description"] = p.Description
	}
	if p.DepositStructure != "" {
		m["deposit_structure"] = p.DepositStructure
	}
	return m
}

// unitToJSON 转换 Unit 为 JSON（NULL 字段不输出）
func unitToJSON(u *domain.Unit) map[string]any {
	m := map[string]any{
		"unit_id":     u.UnitID,
		"project_id":  u.ProjectID,
		"unit_number": u.UnitNumber,
		"beds":        u.Beds,
		"baths":       u.Baths,
		"area_sqft":   u.AreaSqft,
		"price":       u.Price,
		"available":   u.Available,
		"created_at":  u.CreatedAt,
		"updated_at":  u.UpdatedAt,
	}
	if u.MLSNumber.Valid {
		m["mls_number"] = u.MLSNumber.String
	}
	if u.ModelName != "" {
		m["model_name"] = u.ModelName
	}
	if u.Floor != "" {
		m["floor"] = u.Floor
	}
	if u.Exposure != "" {
		m["exposure"] = u.Exposure
	}
	if u.FloorPlanURL != "" {
		m["floor_plan_url"] = u.FloorPlanURL
	}
	return m
}
