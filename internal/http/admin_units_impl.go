package httpapi

import (
	"fmt"
	"io"
	"net/http"

	"summitly-data/internal/service"

	"go.uber.org/zap"
)

type createUnitRequest struct {
	MLSNumber    string  `json:"mls_number"`
	UnitNumber   string  `json:"unit_number"` // 必填
	ModelName    string  `json:"model_name"`
	Beds         float64 `json:"beds"`
	Baths        float64 `json:"baths"`
	AreaSqft     int     `json:"area_sqft"`
	Price        float64 `json:"price"`
	Floor        string  `json:"floor"`
	Exposure     string  `json:"exposure"`
	FloorPlanURL string  `json:"floor_plan_url"`
	Available    *bool   `json:"available"` // 缺省按在售
}

type updateUnitRequest struct {
	MLSNumber    *string  `json:"mls_number"` // nil 保持原值，空字符串清除
	UnitNumber   string   `json:"unit_number"`
	ModelName    string   `json:"model_name"`
	Beds         *float64 `json:"beds"`
	Baths        *float64 `json:"baths"`
	AreaSqft     *int     `json:"area_sqft"`
	Price        *float64 `json:"price"`
	Floor        string   `json:"floor"`
	Exposure     string   `json:"exposure"`
	FloorPlanURL string   `json:"floor_plan_url"`
	Available    *bool    `json:"available"`
}

func (a *AdminAPI) listProjectUnits(w http.ResponseWriter, r *http.Request, projectID string) {
	q := r.URL.Query()

	resp, err := a.Units.ListUnits(r.Context(), service.ListUnitsRequest{
		ProjectID: projectID,
		Available: parseBoolPtr(q.Get("available")),
		MinBeds:   parseFloat(q.Get("min_beds"), 0),
		MaxPrice:  parseFloat(q.Get("max_price"), 0),
		Page:      parseInt(q.Get("page"), 1),
		Size:      parseInt(q.Get("page_size"), 50),
	})
	if err != nil {
		a.Log.Error("listProjectUnits failed", zap.String("projectId", projectID), zap.Error(err))
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

func (a *AdminAPI) createUnit(w http.ResponseWriter, r *http.Request, projectID string) {
	var req createUnitRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}

	resp, err := a.Units.CreateUnit(r.Context(), service.CreateUnitRequest{
		ProjectID:    projectID,
		MLSNumber:    req.MLSNumber,
		UnitNumber:   req.UnitNumber,
		ModelName:    req.ModelName,
		Beds:         req.Beds,
		Baths:        req.Baths,
		AreaSqft:     req.AreaSqft,
		Price:        req.Price,
		Floor:        req.Floor,
		Exposure:     req.Exposure,
		FloorPlanURL: req.FloorPlanURL,
		Available:    req.Available,
	})
	if err != nil {
		a.Log.Error("createUnit failed", zap.String("projectId", projectID), zap.Error(err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Ok(resp))
}

func (a *AdminAPI) updateUnit(w http.ResponseWriter, r *http.Request, id string) {
	var req updateUnitRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}

	resp, err := a.Units.UpdateUnit(r.Context(), service.UpdateUnitRequest{
		UnitID:       id,
		MLSNumber:    req.MLSNumber,
		UnitNumber:   req.UnitNumber,
		ModelName:    req.ModelName,
		Beds:         req.Beds,
		Baths:        req.Baths,
		AreaSqft:     req.AreaSqft,
		Price:        req.Price,
		Floor:        req.Floor,
		Exposure:     req.Exposure,
		FloorPlanURL: req.FloorPlanURL,
		Available:    req.Available,
	})
	if err != nil {
		a.Log.Error("updateUnit failed", zap.String("unitId", id), zap.Error(err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Ok(resp))
}

func (a *AdminAPI) deleteUnit(w http.ResponseWriter, r *http.Request, id string) {
	resp, err := a.Units.DeleteUnit(r.Context(), service.DeleteUnitRequest{UnitID: id})
	if err != nil {
		a.Log.Error("deleteUnit failed", zap.String("unitId", id), zap.Error(err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Ok(resp))
}

func (a *AdminAPI) importUnits(w http.ResponseWriter, r *http.Request, projectID string) {
	if err := r.ParseMultipartForm(10 << 20); err != nil { // 10MB max
		writeJSON(w, http.StatusBadRequest, Fail("failed to parse form"))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("file not found in request"))
		return
	}
	defer file.Close()

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("failed to read file"))
		return
	}

	rows, err := ParseUnitImport(fileBytes)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(fmt.Sprintf("failed to parse Excel file: %v", err)))
		return
	}

	resp, err := a.Units.ImportUnits(r.Context(), service.ImportUnitsRequest{
		ProjectID: projectID,
		Rows:      rows,
	})
	if err != nil {
		a.Log.Error("importUnits failed", zap.String("projectId", projectID), zap.Error(err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Ok(resp))
}

func (a *AdminAPI) exportUnits(w http.ResponseWriter, r *http.Request, projectID string) {
	resp, err := a.Units.ListUnits(r.Context(), service.ListUnitsRequest{
		ProjectID: projectID,
		Page:      1,
		Size:      10000, // 导出全部
	})
	if err != nil {
		a.Log.Error("exportUnits failed", zap.String("projectId", projectID), zap.Error(err))
		writeError(w, err)
		return
	}

	excelData, err := GenerateUnitExport(resp.Items)
	if err != nil {
		a.Log.Error("exportUnits: generate failed", zap.String("projectId", projectID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail(fmt.Sprintf("failed to generate export: %v", err)))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=units-export.xlsx")
	w.WriteHeader(http.StatusOK)
	w.Write(excelData)
}

func (a *AdminAPI) getUnitImportTemplate(w http.ResponseWriter, r *http.Request) {
	excelData, err := GenerateUnitImportTemplate()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Fail(fmt.Sprintf("failed to generate template: %v", err)))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=unit-import-template.xlsx")
	w.WriteHeader(http.StatusOK)
	w.Write(excelData)
}
