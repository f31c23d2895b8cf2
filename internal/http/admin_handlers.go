package httpapi

import (
	"context"
	"net/http"
	"strings"

	"summitly-data/internal/analytics"
	"summitly-data/internal/service"

	"go.uber.org/zap"
)

// EngagementReader 互动计数读取接口（analytics.Aggregator 实现）
type EngagementReader interface {
	ProjectStats(ctx context.Context, projectID string) (*analytics.ProjectEngagement, error)
	PopularProjects(ctx context.Context, limit int) ([]analytics.ProjectEngagement, error)
}

// AdminAPI 管理端 Handler 集合
// Engagement 允许为 nil（未接 Redis 时分析接口返回 500）
type AdminAPI struct {
	Projects   service.ProjectService
	Units      service.UnitService
	Leads      service.LeadService
	Engagement EngagementReader
	Log        *zap.Logger
}

// NewAdminAPI 创建管理端 Handler
func NewAdminAPI(
	projects service.ProjectService,
	units service.UnitService,
	leads service.LeadService,
	engagement EngagementReader,
	log *zap.Logger,
) *AdminAPI {
	return &AdminAPI{
		Projects:   projects,
		Units:      units,
		Leads:      leads,
		Engagement: engagement,
		Log:        log,
	}
}

// --- Projects ---

// ProjectsHandler 项目管理路由分发
//
//	GET/POST   /admin-api/projects
//	GET        /admin-api/projects/export
//	GET/PUT/DELETE /admin-api/projects/{id}
//	POST       /admin-api/projects/{id}/geocode
//	GET/POST   /admin-api/projects/{id}/units
//	POST       /admin-api/projects/{id}/units/import
//	GET        /admin-api/projects/{id}/units/export
func (a *AdminAPI) ProjectsHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/admin-api/projects" {
		switch r.Method {
		case http.MethodGet:
			a.listProjects(w, r)
		case http.MethodPost:
			a.createProject(w, r)
		default:
			writeJSON(w, http.StatusMethodNotAllowed, Fail("method not allowed"))
		}
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/admin-api/projects/"), "/")
	if rest == "export" {
		if r.Method != http.MethodGet {
			writeJSON(w, http.StatusMethodNotAllowed, Fail("method not allowed"))
			return
		}
		a.exportProjects(w, r)
		return
	}

	parts := strings.Split(rest, "/")
	switch {
	case len(parts) == 1 && parts[0] != "":
		switch r.Method {
		case http.MethodGet:
			a.getProject(w, r, parts[0])
		case http.MethodPut:
			a.updateProject(w, r, parts[0])
		case http.MethodDelete:
			a.deleteProject(w, r, parts[0])
		default:
			writeJSON(w, http.StatusMethodNotAllowed, Fail("method not allowed"))
		}

	case len(parts) == 2 && parts[1] == "geocode":
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, Fail("method not allowed"))
			return
		}
		a.geocodeProject(w, r, parts[0])

	case len(parts) == 2 && parts[1] == "units":
		switch r.Method {
		case http.MethodGet:
			a.listProjectUnits(w, r, parts[0])
		case http.MethodPost:
			a.createUnit(w, r, parts[0])
		default:
			writeJSON(w, http.StatusMethodNotAllowed, Fail("method not allowed"))
		}

	case len(parts) == 3 && parts[1] == "units" && parts[2] == "import":
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, Fail("method not allowed"))
			return
		}
		a.importUnits(w, r, parts[0])

	case len(parts) == 3 && parts[1] == "units" && parts[2] == "export":
		if r.Method != http.MethodGet {
			writeJSON(w, http.StatusMethodNotAllowed, Fail("method not allowed"))
			return
		}
		a.exportUnits(w, r, parts[0])

	default:
		writeJSON(w, http.StatusNotFound, Fail("not found"))
	}
}

// --- Units ---

// UnitsHandler 户型管理路由分发
//
//	GET        /admin-api/units/import-template
//	PUT/DELETE /admin-api/units/{id}
func (a *AdminAPI) UnitsHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/admin-api/units/"), "/")
	if rest == "" || strings.Contains(rest, "/") {
		writeJSON(w, http.StatusNotFound, Fail("not found"))
		return
	}

	if rest == "import-template" {
		if r.Method != http.MethodGet {
			writeJSON(w, http.StatusMethodNotAllowed, Fail("method not allowed"))
			return
		}
		a.getUnitImportTemplate(w, r)
		return
	}

	switch r.Method {
	case http.MethodPut:
		a.updateUnit(w, r, rest)
	case http.MethodDelete:
		a.deleteUnit(w, r, rest)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, Fail("method not allowed"))
	}
}

// --- Leads ---

// LeadsHandler 意向列表
// GET /admin-api/leads?project_id=&source=&page=&page_size=
func (a *AdminAPI) LeadsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, Fail("method not allowed"))
		return
	}

	q := r.URL.Query()
	resp, err := a.Leads.ListLeads(r.Context(), service.ListLeadsRequest{
		ProjectID: q.Get("project_id"),
		Source:    q.Get("source"),
		Page:      parseInt(q.Get("page"), 1),
		Size:      parseInt(q.Get("page_size"), 50),
	})
	if err != nil {
		a.Log.Error("listLeads failed", zap.Error(err))
		writeError(w, err)
		return
	}

	items := make([]any, 0, len(resp.Items))
	for _, l := range resp.Items {
		items = append(items, leadToJSON(l))
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items": items,
		"total": resp.Total,
	}))
}

// --- Analytics ---

// AnalyticsHandler 互动分析路由分发
//
//	GET /admin-api/analytics/projects/{id}
//	GET /admin-api/analytics/popular
func (a *AdminAPI) AnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, Fail("method not allowed"))
		return
	}
	if a.Engagement == nil {
		writeJSON(w, http.StatusInternalServerError, Fail("analytics is not enabled"))
		return
	}

	if r.URL.Path == "/admin-api/analytics/popular" {
		limit := parseInt(r.URL.Query().Get("limit"), 10)
		items, err := a.Engagement.PopularProjects(r.Context(), limit)
		if err != nil {
			a.Log.Error("popularProjects failed", zap.Error(err))
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(items))
		return
	}

	if strings.HasPrefix(r.URL.Path, "/admin-api/analytics/projects/") {
		id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/admin-api/analytics/projects/"), "/")
		if id == "" || strings.Contains(id, "/") {
			writeJSON(w, http.StatusNotFound, Fail("not found"))
			return
		}
		stats, err := a.Engagement.ProjectStats(r.Context(), id)
		if err != nil {
			a.Log.Error("projectStats failed", zap.String("projectId", id), zap.Error(err))
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(stats))
		return
	}

	writeJSON(w, http.StatusNotFound, Fail("not found"))
}
