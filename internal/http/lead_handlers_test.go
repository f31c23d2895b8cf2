package httpapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateLead_OK(t *testing.T) {
	e := newTestEnv(t)
	projectID, _ := e.seedProject(t, "Summit Towers", "Toronto", "published")

	status, env := e.doJSON(t, http.MethodPost, "/api/leads", map[string]any{
		"project_id": projectID,
		"name":       "Alice Wang",
		"email":      "alice@example.com",
		"message":    "Interested in a 2-bedroom unit",
		"source":     "Landing-Page",
	})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, ResultSuccess, env.Code)

	var resp struct {
		LeadID string `json:"lead_id"`
	}
	require.NoError(t, json.Unmarshal(env.Result, &resp))
	require.NotEmpty(t, resp.LeadID)

	// 管理端列表能查到，source 已归一化为小写
	status, env = e.doJSON(t, http.MethodGet, "/admin-api/leads", nil)
	require.Equal(t, http.StatusOK, status)

	var list listResult
	require.NoError(t, json.Unmarshal(env.Result, &list))
	require.Equal(t, 1, list.Total)
	require.Equal(t, "Alice Wang", list.Items[0]["name"])
	require.Equal(t, "landing-page", list.Items[0]["source"])
	require.Equal(t, projectID, list.Items[0]["project_id"])
}

func TestCreateLead_Validation(t *testing.T) {
	e := newTestEnv(t)

	// 缺 name
	status, env := e.doJSON(t, http.MethodPost, "/api/leads", map[string]any{
		"email": "bob@example.com",
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, ResultError, env.Code)

	// email 和 phone 都缺
	status, _ = e.doJSON(t, http.MethodPost, "/api/leads", map[string]any{
		"name": "Bob Liu",
	})
	require.Equal(t, http.StatusBadRequest, status)

	// email 格式非法
	status, _ = e.doJSON(t, http.MethodPost, "/api/leads", map[string]any{
		"name":  "Bob Liu",
		"email": "not-an-email",
	})
	require.Equal(t, http.StatusBadRequest, status)
}

func TestCreateLead_PhoneOnly(t *testing.T) {
	e := newTestEnv(t)

	status, env := e.doJSON(t, http.MethodPost, "/api/leads", map[string]any{
		"name":       "Carol Chen",
		"phone":      "416-555-0199",
		"is_realtor": true,
	})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, ResultSuccess, env.Code)

	status, env = e.doJSON(t, http.MethodGet, "/admin-api/leads", nil)
	require.Equal(t, http.StatusOK, status)

	var list listResult
	require.NoError(t, json.Unmarshal(env.Result, &list))
	require.Equal(t, 1, list.Total)
	require.Equal(t, "416-555-0199", list.Items[0]["phone"])
	require.Equal(t, true, list.Items[0]["is_realtor"])
	// 没关联项目时不输出 project_id
	_, ok := list.Items[0]["project_id"]
	require.False(t, ok)
	// 未填 source 归一化为 website
	require.Equal(t, "website", list.Items[0]["source"])
}

func TestCreateLead_WrongMethod(t *testing.T) {
	e := newTestEnv(t)

	status, env := e.doJSON(t, http.MethodGet, "/api/leads", nil)
	require.Equal(t, http.StatusMethodNotAllowed, status)
	require.Equal(t, ResultError, env.Code)
}

func TestAdminListLeads_Filters(t *testing.T) {
	e := newTestEnv(t)
	projectID, _ := e.seedProject(t, "Summit Towers", "Toronto", "published")

	seed := []map[string]any{
		{"name": "Lead One", "email": "one@example.com", "source": "referral", "project_id": projectID},
		{"name": "Lead Two", "email": "two@example.com", "source": "website"},
		{"name": "Lead Three", "email": "three@example.com", "source": "referral"},
	}
	for _, payload := range seed {
		status, _ := e.doJSON(t, http.MethodPost, "/api/leads", payload)
		require.Equal(t, http.StatusOK, status)
	}

	// source 过滤
	status, env := e.doJSON(t, http.MethodGet, "/admin-api/leads?source=referral", nil)
	require.Equal(t, http.StatusOK, status)

	var list listResult
	require.NoError(t, json.Unmarshal(env.Result, &list))
	require.Equal(t, 2, list.Total)

	// project_id 过滤
	status, env = e.doJSON(t, http.MethodGet, "/admin-api/leads?project_id="+projectID, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Result, &list))
	require.Equal(t, 1, list.Total)
	require.Equal(t, "Lead One", list.Items[0]["name"])

	// 分页
	status, env = e.doJSON(t, http.MethodGet, "/admin-api/leads?page=1&page_size=2", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Result, &list))
	require.Equal(t, 3, list.Total)
	require.Len(t, list.Items, 2)
}
