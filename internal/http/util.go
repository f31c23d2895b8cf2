package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"summitly-data/internal/repository"
	"summitly-data/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError 按错误类型映射 HTTP 状态码，响应体仍是统一信封
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errStatus(err), Fail(err.Error()))
}

// errStatus 错误 → 状态码：
// 未找到 404；参数/约束类 400；其余 500
func errStatus(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidArgument),
		errors.Is(err, repository.ErrDuplicateSlug),
		errors.Is(err, repository.ErrDuplicateMLS),
		errors.Is(err, repository.ErrProjectGone):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseFloat(s string, def float64) float64 {
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}

// parseBoolPtr 三态布尔查询参数：未提供返回 nil
func parseBoolPtr(s string) *bool {
	if s == "" {
		return nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil
	}
	return &b
}

func readBodyJSON(r *http.Request, maxBytes int64, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}
