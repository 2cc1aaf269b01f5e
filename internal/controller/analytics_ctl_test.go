package controller_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"storefront_v1_202509/internal/api/dto"
	"storefront_v1_202509/internal/middleware"
	"storefront_v1_202509/internal/model"
)

func TestAnalyticsController_TrackAndBehavior(t *testing.T) {
	db := setupCtlTestDB(t)
	r := setupCtlRouter(db)
	product := seedCtlProduct(t, db, "vase", 1200, 5)

	// 上报浏览
	w := doJSON(r, http.MethodPost, "/api/interactions", "track-sess",
		dto.TrackInteractionRequest{ProductID: product.ID, InteractionType: model.InteractionView})
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200, 实际 %d: %s", w.Code, w.Body.String())
	}

	// 非法交互类型 → 400
	w = doJSON(r, http.MethodPost, "/api/interactions", "track-sess",
		dto.TrackInteractionRequest{ProductID: product.ID, InteractionType: "hover"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400, 实际 %d: %s", w.Code, w.Body.String())
	}

	// 行为汇总可查
	w = doJSON(r, http.MethodGet, "/api/interactions/behavior/"+strconv.FormatInt(product.ID, 10), "track-sess", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200, 实际 %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Code int                   `json:"code"`
		Data dto.BehaviorSummaryVO `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if !resp.Data.Viewed || resp.Data.ViewCount != 1 {
		t.Errorf("行为汇总不符: %+v", resp.Data)
	}
}

func TestAnalyticsController_AdminGuard(t *testing.T) {
	db := setupCtlTestDB(t)
	r := setupCtlRouter(db)

	// 未登录 → 401
	w := doJSON(r, http.MethodGet, "/api/admin/analytics/overview", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("期望 401, 实际 %d: %s", w.Code, w.Body.String())
	}

	// 普通用户 → 403
	userToken, err := middleware.GenerateAccessToken(1, "user@example.com", false)
	if err != nil {
		t.Fatalf("签发 Token 失败: %v", err)
	}
	w = doAuthed(r, http.MethodGet, "/api/admin/analytics/overview", userToken)
	if w.Code != http.StatusForbidden {
		t.Errorf("期望 403, 实际 %d: %s", w.Code, w.Body.String())
	}

	// 管理员 → 200，空数据不报错
	adminToken, err := middleware.GenerateAccessToken(2, "admin@example.com", true)
	if err != nil {
		t.Fatalf("签发 Token 失败: %v", err)
	}
	w = doAuthed(r, http.MethodGet, "/api/admin/analytics/overview", adminToken)
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200, 实际 %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Code int                  `json:"code"`
		Data dto.OverviewResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if resp.Data.Revenue != 0 || resp.Data.UniqueSessions != 0 {
		t.Errorf("期望空总览, 实际 %+v", resp.Data)
	}
}

// doAuthed 携带 Bearer Token 发起请求
func doAuthed(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
