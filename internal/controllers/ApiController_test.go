package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"igmetrics/internal/models"
	"igmetrics/internal/services"
	"igmetrics/internal/structures"
	"igmetrics/internal/testutil"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- local mocks (scoped to controller tests) ---

type mockService struct {
	analyzeCalls []services.AnalyzeRequest
	getCalls     int
	regenCalls   int
	deleted      []string
	profiles     []*models.ProfileMetrics
	err          error
}

func (m *mockService) analysis(username string) *services.Analysis {
	return &services.Analysis{
		Profile: &models.ProfileMetrics{Username: username, Followers: 44500},
		Report:  &services.Report{Ru: "Отчёт"},
	}
}

func (m *mockService) Analyze(_ context.Context, req services.AnalyzeRequest) (*services.Analysis, error) {
	m.analyzeCalls = append(m.analyzeCalls, req)
	if m.err != nil {
		return nil, m.err
	}
	return m.analysis(req.Username), nil
}

func (m *mockService) Get(_ context.Context, username string) (*services.Analysis, error) {
	m.getCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.analysis(username), nil
}

func (m *mockService) Regenerate(_ context.Context, username string) (*services.Analysis, error) {
	m.regenCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.analysis(username), nil
}

func (m *mockService) List(_ context.Context) ([]*models.ProfileMetrics, error) {
	return m.profiles, m.err
}

func (m *mockService) Delete(_ context.Context, username string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, username)
	return nil
}

func (m *mockService) DeleteAll(_ context.Context) (int, error) {
	return len(m.profiles), m.err
}

// --- helpers ---

func newTestController(svc *mockService, cache *testutil.MockCache) *ApiController {
	conf := &structures.Config{WebServer: structures.Server{MaxUploadBytes: 1024}}
	return NewApiController(conf, &testutil.MockLogger{}, svc, cache)
}

func multipartRequest(t *testing.T, fields map[string]string, screenshot []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if screenshot != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="screenshot"; filename="shot.png"`)
		h.Set("Content-Type", "image/png")
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(screenshot)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func withUsername(req *http.Request, username string) *http.Request {
	req.SetPathValue("username", username)
	return req
}

// --- Analyze ---

func TestAnalyze_Multipart(t *testing.T) {
	svc := &mockService{}
	ac := newTestController(svc, testutil.NewMockCache())

	req := multipartRequest(t, map[string]string{"username": "anna_yoga", "screenshot_type": "stats"}, []byte("png-bytes"))
	rr := httptest.NewRecorder()
	ac.Analyze(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	require.Len(t, svc.analyzeCalls, 1)

	got := svc.analyzeCalls[0]
	assert.Equal(t, "anna_yoga", got.Username)
	assert.Equal(t, services.ScreenshotStats, got.ScreenshotType)
	assert.Equal(t, []byte("png-bytes"), got.Screenshot)
	assert.Equal(t, "image/png", got.ContentType)
	assert.True(t, got.FetchProfile)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Contains(t, resp, "profile")
	assert.Contains(t, resp, "derived")
}

func TestAnalyze_DefaultsToMainPage(t *testing.T) {
	svc := &mockService{}
	ac := newTestController(svc, testutil.NewMockCache())

	rr := httptest.NewRecorder()
	ac.Analyze(rr, multipartRequest(t, map[string]string{"username": "anna_yoga", "ocr_text": "44,500 followers"}, nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, services.ScreenshotMain, svc.analyzeCalls[0].ScreenshotType)
	assert.Equal(t, "44,500 followers", svc.analyzeCalls[0].OCRText)
	assert.Nil(t, svc.analyzeCalls[0].Screenshot)
}

func TestAnalyze_UnknownScreenshotType(t *testing.T) {
	svc := &mockService{}
	ac := newTestController(svc, testutil.NewMockCache())

	rr := httptest.NewRecorder()
	ac.Analyze(rr, multipartRequest(t, map[string]string{"username": "anna", "screenshot_type": "reels"}, nil))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, svc.analyzeCalls)
}

func TestAnalyze_NotMultipart(t *testing.T) {
	ac := newTestController(&mockService{}, testutil.NewMockCache())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"username":"anna"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	ac.Analyze(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAnalyze_OversizedUpload(t *testing.T) {
	svc := &mockService{}
	ac := newTestController(svc, testutil.NewMockCache())

	rr := httptest.NewRecorder()
	ac.Analyze(rr, multipartRequest(t, map[string]string{"username": "anna"}, bytes.Repeat([]byte("x"), 4096)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Empty(t, svc.analyzeCalls)
}

func TestAnalyze_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid username", models.ErrInvalidUsername, http.StatusBadRequest},
		{"not found", fmt.Errorf("%w: anna", models.ErrNotFound), http.StatusNotFound},
		{"conflict", fmt.Errorf("save anna: %w", models.ErrPersistenceConflict), http.StatusConflict},
		{"username changed", models.ErrUsernameChanged, http.StatusConflict},
		{"other", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ac := newTestController(&mockService{err: tt.err}, testutil.NewMockCache())
			rr := httptest.NewRecorder()
			ac.AnalyzeLink(rr, withUsername(httptest.NewRequest(http.MethodPost, "/api/analyze/anna", nil), "anna"))
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestAnalyzeLink_UsesPathUsername(t *testing.T) {
	svc := &mockService{}
	ac := newTestController(svc, testutil.NewMockCache())

	rr := httptest.NewRecorder()
	ac.AnalyzeLink(rr, withUsername(httptest.NewRequest(http.MethodPost, "/api/analyze/anna_yoga", nil), "anna_yoga"))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, svc.analyzeCalls, 1)
	assert.Equal(t, "anna_yoga", svc.analyzeCalls[0].Username)
	assert.True(t, svc.analyzeCalls[0].FetchProfile)
	assert.Nil(t, svc.analyzeCalls[0].Screenshot)
}

// --- GetData / cache ---

func TestGetData_CacheMissSavesResult(t *testing.T) {
	svc := &mockService{}
	cache := testutil.NewMockCache()
	ac := newTestController(svc, cache)

	rr := httptest.NewRecorder()
	ac.GetData(rr, withUsername(httptest.NewRequest(http.MethodGet, "/api/data/Anna_Yoga", nil), "Anna_Yoga"))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, svc.getCalls)
	cached, ok := cache.Get("anna_yoga")
	require.True(t, ok)
	assert.JSONEq(t, rr.Body.String(), string(cached))
}

func TestGetData_CacheHitServiceNotCalled(t *testing.T) {
	svc := &mockService{}
	cache := testutil.NewMockCache()
	cache.Set("anna_yoga", []byte(`{"cached":true}`))
	ac := newTestController(svc, cache)

	rr := httptest.NewRecorder()
	ac.GetData(rr, withUsername(httptest.NewRequest(http.MethodGet, "/api/data/anna_yoga", nil), "anna_yoga"))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `{"cached":true}`, rr.Body.String())
	assert.Zero(t, svc.getCalls)
}

func TestGetData_InvalidUsername(t *testing.T) {
	svc := &mockService{}
	ac := newTestController(svc, testutil.NewMockCache())

	rr := httptest.NewRecorder()
	ac.GetData(rr, withUsername(httptest.NewRequest(http.MethodGet, "/api/data/x", nil), "bad name!"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Zero(t, svc.getCalls)
}

func TestGetData_NotFoundIsNotCached(t *testing.T) {
	svc := &mockService{err: models.ErrNotFound}
	cache := testutil.NewMockCache()
	ac := newTestController(svc, cache)

	rr := httptest.NewRecorder()
	ac.GetData(rr, withUsername(httptest.NewRequest(http.MethodGet, "/api/data/ghost", nil), "ghost"))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Empty(t, cache.Data)
}

// --- report / users / delete ---

func TestRegenerateReport(t *testing.T) {
	svc := &mockService{}
	ac := newTestController(svc, testutil.NewMockCache())

	rr := httptest.NewRecorder()
	ac.RegenerateReport(rr, withUsername(httptest.NewRequest(http.MethodPost, "/api/data/anna/report", nil), "anna"))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, svc.regenCalls)
	assert.Contains(t, rr.Body.String(), "Отчёт")
}

func TestListUsers(t *testing.T) {
	svc := &mockService{profiles: []*models.ProfileMetrics{{Username: "anna"}, {Username: "bob"}}}
	ac := newTestController(svc, testutil.NewMockCache())

	rr := httptest.NewRecorder()
	ac.ListUsers(rr, httptest.NewRequest(http.MethodGet, "/api/users", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Count int `json:"count"`
		Users []struct {
			Username string `json:"username"`
		} `json:"users"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "bob", resp.Users[1].Username)
}

func TestListUsers_EmptyIsArray(t *testing.T) {
	ac := newTestController(&mockService{}, testutil.NewMockCache())

	rr := httptest.NewRecorder()
	ac.ListUsers(rr, httptest.NewRequest(http.MethodGet, "/api/users", nil))

	assert.JSONEq(t, `{"count":0,"users":[]}`, rr.Body.String())
}

func TestDeleteData(t *testing.T) {
	svc := &mockService{}
	ac := newTestController(svc, testutil.NewMockCache())

	rr := httptest.NewRecorder()
	ac.DeleteData(rr, withUsername(httptest.NewRequest(http.MethodDelete, "/api/data/@Anna", nil), "@Anna"))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"anna"}, svc.deleted)
	assert.JSONEq(t, `{"deleted":1,"username":"anna"}`, rr.Body.String())
}

func TestDeleteData_NotFound(t *testing.T) {
	ac := newTestController(&mockService{err: models.ErrNotFound}, testutil.NewMockCache())

	rr := httptest.NewRecorder()
	ac.DeleteData(rr, withUsername(httptest.NewRequest(http.MethodDelete, "/api/data/ghost", nil), "ghost"))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteAll(t *testing.T) {
	svc := &mockService{profiles: []*models.ProfileMetrics{{Username: "anna"}, {Username: "bob"}}}
	ac := newTestController(svc, testutil.NewMockCache())

	rr := httptest.NewRecorder()
	ac.DeleteAll(rr, httptest.NewRequest(http.MethodDelete, "/api/users", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"deleted":2}`, rr.Body.String())
}
