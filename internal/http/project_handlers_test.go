package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"summitly-data/internal/domain"
	"summitly-data/internal/repository"
	"summitly-data/internal/service"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testEnv 内存 repo + 全部路由的测试环境
type testEnv struct {
	router   *Router
	projects service.ProjectService
	units    service.UnitService
	leads    service.LeadService
	homes    service.HomeService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()

	projectsRepo := repository.NewMemoryProjectsRepo()
	unitsRepo := repository.NewMemoryUnitsRepo(projectsRepo)

	projects := service.NewProjectService(projectsRepo, nil, nil, logger)
	units := service.NewUnitService(unitsRepo, projectsRepo, logger)
	leads := service.NewLeadService(repository.NewMemoryLeadsRepo(), nil, logger)
	homes := service.NewHomeService(repository.NewMemoryHomesRepo(), service.NewKVMarketData(nil, logger), logger)

	router := NewRouter(logger)
	router.RegisterProjectRoutes(NewProjectHandler(projects, units, logger))
	router.RegisterCalculatorRoutes(NewCalculatorHandler(logger))
	router.RegisterLeadRoutes(NewLeadHandler(leads, logger))
	router.RegisterHomeRoutes(NewHomeHandler(homes, logger))
	router.RegisterAdminRoutes(NewAdminAPI(projects, units, leads, nil, logger))

	return &testEnv{router: router, projects: projects, units: units, leads: leads, homes: homes}
}

// envelope 统一响应信封（解码用）
type envelope struct {
	Code    int             `json:"code"`
	Type    string          `json:"type"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// doJSON 发送请求并解析信封
func (e *testEnv) doJSON(t *testing.T, method, target string, payload any) (int, envelope) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, target, body)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return w.Code, env
}

// doRaw 发送请求并返回原始 recorder（Excel 下载等非 JSON 响应）
func (e *testEnv) doRaw(t *testing.T, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) seedProject(t *testing.T, name, city, status string) (projectID, slug string) {
	t.Helper()

	resp, err := e.projects.CreateProject(context.Background(), service.CreateProjectRequest{
		Name:   name,
		City:   city,
		Status: status,
	})
	require.NoError(t, err)
	return resp.ProjectID, resp.Slug
}

func (e *testEnv) seedUnit(t *testing.T, projectID, unitNumber string, beds, price float64, available bool) string {
	t.Helper()

	resp, err := e.units.CreateUnit(context.Background(), service.CreateUnitRequest{
		ProjectID:  projectID,
		UnitNumber: unitNumber,
		Beds:       beds,
		Baths:      1,
		AreaSqft:   600,
		Price:      price,
		Available:  &available,
	})
	require.NoError(t, err)
	return resp.UnitID
}

type listResult struct {
	Items []map[string]any `json:"items"`
	Total int              `json:"total"`
}

func TestListProjects_PublishedOnly(t *testing.T) {
	e := newTestEnv(t)
	e.seedProject(t, "Summit Towers", "Toronto", domain.ProjectStatusPublished)
	e.seedProject(t, "Hidden Gem", "Toronto", domain.ProjectStatusDraft)

	status, env := e.doJSON(t, http.MethodGet, "/api/projects", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, ResultSuccess, env.Code)

	var result listResult
	require.NoError(t, json.Unmarshal(env.Result, &result))
	require.Equal(t, 1, result.Total)
	require.Len(t, result.Items, 1)
	require.Equal(t, "summit-towers", result.Items[0]["slug"])
}

func TestListProjects_CityFilter(t *testing.T) {
	e := newTestEnv(t)
	e.seedProject(t, "Summit Towers", "Toronto", domain.ProjectStatusPublished)
	e.seedProject(t, "Lakeside Residences", "Mississauga", domain.ProjectStatusPublished)

	status, env := e.doJSON(t, http.MethodGet, "/api/projects?city=Mississauga", nil)
	require.Equal(t, http.StatusOK, status)

	var result listResult
	require.NoError(t, json.Unmarshal(env.Result, &result))
	require.Len(t, result.Items, 1)
	require.Equal(t, "lakeside-residences", result.Items[0]["slug"])
}

func TestListProjects_InvalidProgress(t *testing.T) {
	e := newTestEnv(t)

	status, env := e.doJSON(t, http.MethodGet, "/api/projects?progress=9", nil)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, ResultError, env.Code)
}

func TestProjectDetail_WithAvailableUnits(t *testing.T) {
	e := newTestEnv(t)
	projectID, slug := e.seedProject(t, "Summit Towers", "Toronto", domain.ProjectStatusPublished)
	e.seedUnit(t, projectID, "PH01", 2, 899900, true)
	e.seedUnit(t, projectID, "2105", 1, 659900, false) // 已售，不在公开详情页

	status, env := e.doJSON(t, http.MethodGet, "/api/projects/"+slug, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, ResultSuccess, env.Code)

	var result struct {
		Project map[string]any   `json:"project"`
		Units   []map[string]any `json:"units"`
	}
	require.NoError(t, json.Unmarshal(env.Result, &result))
	require.Equal(t, slug, result.Project["slug"])
	require.Len(t, result.Units, 1)
	require.Equal(t, "PH01", result.Units[0]["unit_number"])
}

func TestProjectDetail_DraftHidden(t *testing.T) {
	e := newTestEnv(t)
	_, slug := e.seedProject(t, "Hidden Gem", "Toronto", domain.ProjectStatusDraft)

	status, env := e.doJSON(t, http.MethodGet, "/api/projects/"+slug, nil)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, ResultError, env.Code)
}

func TestProjectDetail_WrongMethod(t *testing.T) {
	e := newTestEnv(t)
	_, slug := e.seedProject(t, "Summit Towers", "Toronto", domain.ProjectStatusPublished)

	status, env := e.doJSON(t, http.MethodPost, "/api/projects/"+slug, map[string]any{})
	require.Equal(t, http.StatusMethodNotAllowed, status)
	require.Equal(t, ResultError, env.Code)
}

func TestProjectUnits_MinBedsFilter(t *testing.T) {
	e := newTestEnv(t)
	projectID, slug := e.seedProject(t, "Summit Towers", "Toronto", domain.ProjectStatusPublished)
	e.seedUnit(t, projectID, "1001", 1, 659900, true)
	e.seedUnit(t, projectID, "1002", 2, 899900, true)

	status, env := e.doJSON(t, http.MethodGet, "/api/projects/"+slug+"/units?min_beds=2", nil)
	require.Equal(t, http.StatusOK, status)

	var result listResult
	require.NoError(t, json.Unmarshal(env.Result, &result))
	require.Len(t, result.Items, 1)
	require.Equal(t, "1002", result.Items[0]["unit_number"])
}

func TestListCities_PublishedCounts(t *testing.T) {
	e := newTestEnv(t)
	e.seedProject(t, "Summit Towers", "Toronto", domain.ProjectStatusPublished)
	e.seedProject(t, "King West Lofts", "Toronto", domain.ProjectStatusPublished)
	e.seedProject(t, "Lakeside Residences", "Mississauga", domain.ProjectStatusPublished)
	e.seedProject(t, "Hidden Gem", "Toronto", domain.ProjectStatusDraft)

	status, env := e.doJSON(t, http.MethodGet, "/api/cities", nil)
	require.Equal(t, http.StatusOK, status)

	var cities []repository.CityCount
	require.NoError(t, json.Unmarshal(env.Result, &cities))

	counts := make(map[string]int, len(cities))
	for _, c := range cities {
		counts[c.City] = c.Count
	}
	require.Equal(t, 2, counts["Toronto"])
	require.Equal(t, 1, counts["Mississauga"])
}
