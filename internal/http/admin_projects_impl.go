package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"summitly-data/internal/domain"
	"summitly-data/internal/service"

	"go.uber.org/zap"
)

// progressValue 完工进度字段，同时接受 0/1/2 数字和 "Pre Construction" 等文本
type progressValue struct {
	set   bool
	value int
}

func (p *progressValue) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		p.set = true
		p.value = n
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("progress must be a number or a label")
	}
	if s == "" {
		return nil
	}
	n, ok := domain.ParseProgress(s)
	if !ok {
		return fmt.Errorf("unknown progress label %q", s)
	}
	p.set = true
	p.value = n
	return nil
}

type createProjectRequest struct {
	Name             string                   `json:"name"` // 必填
	Slug             string                   `json:"slug"` // 可选，为空时由 Name 生成
	Developer        *domain.DeveloperInfo    `json:"developer"`
	Address          string                   `json:"address"`
	City             string                   `json:"city"`
	Province         string                   `json:"province"`
	PostalCode       string                   `json:"postal_code"`
	OccupancyDate    string                   `json:"occupancy_date"`
	Progress         progressValue            `json:"progress"`
	Status           string                   `json:"status"` // 默认 draft
	Featured         bool                     `json:"featured"`
	PriceFrom        *float64                 `json:"price_from"`
	PriceTo          *float64                 `json:"price_to"`
	Amenities        []string                 `json:"amenities"`
	Documents        []domain.ProjectDocument `json:"documents"`
	Description      string                   `json:"description"`
	DepositStructure string                   `json:"deposit_structure"`
}

type updateProjectRequest struct {
	Name             string                   `json:"name"`
	Slug             string                   `json:"slug"`
	Developer        *domain.DeveloperInfo    `json:"developer"`
	Address          string                   `json:"address"`
	City             string                   `json:"city"`
	Province         string                   `json:"province"`
	PostalCode       string                   `json:"postal_code"`
	OccupancyDate    string                   `json:"occupancy_date"`
	Progress         *progressValue           `json:"progress"`
	Status           string                   `json:"status"`
	Featured         *bool                    `json:"featured"`
	PriceFrom        *float64                 `json:"price_from"`
	PriceTo          *float64                 `json:"price_to"`
	Amenities        []string                 `json:"amenities"`
	Documents        []domain.ProjectDocument `json:"documents"`
	Description      string                   `json:"description"`
	DepositStructure string                   `json:"deposit_structure"`
}

func (a *AdminAPI) listProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	req := service.ListProjectsRequest{
		Status:   q.Get("status"), // 空 = 全部状态
		City:     q.Get("city"),
		Featured: parseBoolPtr(q.Get("featured")),
		MinPrice: parseFloat(q.Get("min_price"), 0),
		MaxPrice: parseFloat(q.Get("max_price"), 0),
		Search:   q.Get("q"),
		Page:     parseInt(q.Get("page"), 1),
		Size:     parseInt(q.Get("page_size"), 20),
	}
	if p := q.Get("progress"); p != "" {
		progress := parseInt(p, -1)
		req.Progress = &progress
	}

	resp, err := a.Projects.ListProjects(r.Context(), req)
	if err != nil {
		a.Log.Error("listProjects failed", zap.Error(err))
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

func (a *AdminAPI) createProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}

	resp, err := a.Projects.CreateProject(r.Context(), service.CreateProjectRequest{
		Name:             req.Name,
		Slug:             req.Slug,
		Developer:        req.Developer,
		Address:          req.Address,
		City:             req.City,
		Province:         req.Province,
		PostalCode:       req.PostalCode,
		OccupancyDate:    req.OccupancyDate,
		Progress:         req.Progress.value,
		Status:           req.Status,
		Featured:         req.Featured,
		PriceFrom:        req.PriceFrom,
		PriceTo:          req.PriceTo,
		Amenities:        req.Amenities,
		Documents:        req.Documents,
		Description:      req.Description,
		DepositStructure: req.DepositStructure,
	})
	if err != nil {
		a.Log.Error("createProject failed", zap.Error(err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Ok(resp))
}

func (a *AdminAPI) getProject(w http.ResponseWriter, r *http.Request, id string) {
	resp, err := a.Projects.GetProject(r.Context(), service.GetProjectRequest{ProjectID: id})
	if err != nil {
		a.Log.Error("getProject failed", zap.String("projectId", id), zap.Error(err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Ok(projectToJSON(resp.Project)))
}

func (a *AdminAPI) updateProject(w http.ResponseWriter, r *http.Request, id string) {
	var req updateProjectRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}

	svcReq := service.UpdateProjectRequest{
		ProjectID:        id,
		Name:             req.Name,
		Slug:             req.Slug,
		Developer:        req.Developer,
		Address:          req.Address,
		City:             req.City,
		Province:         req.Province,
		PostalCode:       req.PostalCode,
		OccupancyDate:    req.OccupancyDate,
		Status:           req.Status,
		Featured:         req.Featured,
		PriceFrom:        req.PriceFrom,
		PriceTo:          req.PriceTo,
		Amenities:        req.Amenities,
		Documents:        req.Documents,
		Description:      req.Description,
		DepositStructure: req.DepositStructure,
	}
	if req.Progress != nil && req.Progress.set {
		svcReq.Progress = &req.Progress.value
	}

	resp, err := a.Projects.UpdateProject(r.Context(), svcReq)
	if err != nil {
		a.Log.Error("updateProject failed", zap.String("projectId", id), zap.Error(err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Ok(resp))
}

func (a *AdminAPI) deleteProject(w http.ResponseWriter, r *http.Request, id string) {
	resp, err := a.Projects.DeleteProject(r.Context(), service.DeleteProjectRequest{ProjectID: id})
	if err != nil {
		a.Log.Error("deleteProject failed", zap.String("projectId", id), zap.Error(err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Ok(resp))
}

func (a *AdminAPI) geocodeProject(w http.ResponseWriter, r *http.Request, id string) {
	resp, err := a.Projects.GeocodeProject(r.Context(), service.GeocodeProjectRequest{ProjectID: id})
	if err != nil {
		a.Log.Error("geocodeProject failed", zap.String("projectId", id), zap.Error(err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Ok(resp))
}

func (a *AdminAPI) exportProjects(w http.ResponseWriter, r *http.Request) {
	// 导出全部（与列表同样的筛选条件）
	q := r.URL.Query()
	req := service.ListProjectsRequest{
		Status: q.Get("status"),
		City:   q.Get("city"),
		Search: q.Get("q"),
		Page:   1,
		Size:   10000,
	}

	resp, err := a.Projects.ListProjects(r.Context(), req)
	if err != nil {
		a.Log.Error("exportProjects failed", zap.Error(err))
		writeError(w, err)
		return
	}

	excelData, err := GenerateProjectExport(resp.Items)
	if err != nil {
		a.Log.Error("exportProjects: generate failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail(fmt.Sprintf("failed to generate export: %v", err)))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=projects-export.xlsx")
	w.WriteHeader(http.StatusOK)
	w.Write(excelData)
}
