package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler 支持 http.Handler 接口（用于 pprof 等）
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterProjectRoutes 注册公开项目查询路由
func (r *Router) RegisterProjectRoutes(h *ProjectHandler) {
	// list
	r.Handle("/api/projects", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			writeJSON(w, http.StatusMethodNotAllowed, Fail("method not allowed"))
			return
		}
		h.ListProjects(w, req)
	})

	// detail / units（slug 子路径）
	r.Handle("/api/projects/", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			writeJSON(w, http.StatusMethodNotAllowed, Fail("method not allowed"))
			return
		}
		h.ProjectBySlug(w, req)
	})

	// cities
	r.Handle("/api/cities", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			writeJSON(w, http.StatusMethodNotAllowed, Fail("method not allowed"))
			return
		}
		h.ListCities(w, req)
	})
}

// RegisterCalculatorRoutes 注册计算器路由（全部 POST）
func (r *Router) RegisterCalculatorRoutes(h *CalculatorHandler) {
	post := func(fn http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, req *http.Request) {
			if req.Method != http.MethodPost {
				writeJSON(w, http.StatusMethodNotAllowed, Fail("method not allowed"))
				return
			}
			fn(w, req)
		}
	}

	r.Handle("/api/calculators/mortgage-payment", post(h.MortgagePayment))
	r.Handle("/api/calculators/land-transfer-tax", post(h.LandTransferTax))
	r.Handle("/api/calculators/cmhc", post(h.CMHC))
	r.Handle("/api/calculators/affordability", post(h.Affordability))
}

// RegisterLeadRoutes 注册意向提交路由
func (r *Router) RegisterLeadRoutes(h *LeadHandler) {
	r.Handle("/api/leads", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, Fail("method not allowed"))
			return
		}
		h.CreateLead(w, req)
	})
}

// RegisterHomeRoutes 注册业主房产路由
func (r *Router) RegisterHomeRoutes(h *HomeHandler) {
	r.Handle("/api/homes", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, Fail("method not allowed"))
			return
		}
		h.RegisterHome(w, req)
	})

	// dashboard + {id}
	r.Handle("/api/homes/", h.HomeByPath)
}

// RegisterAdminRoutes 注册管理端路由
func (r *Router) RegisterAdminRoutes(admin *AdminAPI) {
	r.Handle("/admin-api/projects", admin.ProjectsHandler)
	r.Handle("/admin-api/projects/", admin.ProjectsHandler)

	r.Handle("/admin-api/units/", admin.UnitsHandler)

	r.Handle("/admin-api/leads", admin.LeadsHandler)

	r.Handle("/admin-api/analytics/popular", admin.AnalyticsHandler)
	r.Handle("/admin-api/analytics/projects/", admin.AnalyticsHandler)
}
