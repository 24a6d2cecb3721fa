package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"astro-distribusi/backend/internal/dto"
	"astro-distribusi/backend/internal/model"
	"astro-distribusi/backend/internal/service"
	pkgerrors "astro-distribusi/backend/pkg/errors"
	"astro-distribusi/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock TemplateService ──

type mockTemplateService struct {
	section    *dto.SectionResponse
	field      *dto.FieldResponse
	err        error
	lastCaller *service.Caller
	lastID     string
}

func (m *mockTemplateService) ListSections(_ context.Context, _, _ string, _ *string) ([]model.Section, error) {
	return nil, m.err
}
func (m *mockTemplateService) ListFields(_ context.Context, _ []string) ([]model.Field, error) {
	return nil, m.err
}
func (m *mockTemplateService) CreateSection(_ context.Context, caller *service.Caller, feature string, _ *dto.CreateSectionRequest) (*dto.SectionResponse, error) {
	m.lastCaller, m.lastID = caller, feature
	return m.section, m.err
}
func (m *mockTemplateService) UpdateSection(_ context.Context, caller *service.Caller, id string, _ *dto.UpdateSectionRequest) (*dto.SectionResponse, error) {
	m.lastCaller, m.lastID = caller, id
	return m.section, m.err
}
func (m *mockTemplateService) DeleteSection(_ context.Context, caller *service.Caller, id string) error {
	m.lastCaller, m.lastID = caller, id
	return m.err
}
func (m *mockTemplateService) CreateField(_ context.Context, caller *service.Caller, sectionID string, _ *dto.CreateFieldRequest) (*dto.FieldResponse, error) {
	m.lastCaller, m.lastID = caller, sectionID
	return m.field, m.err
}
func (m *mockTemplateService) UpdateField(_ context.Context, caller *service.Caller, id string, _ *dto.UpdateFieldRequest) (*dto.FieldResponse, error) {
	m.lastCaller, m.lastID = caller, id
	return m.field, m.err
}
func (m *mockTemplateService) DeleteField(_ context.Context, caller *service.Caller, id string) error {
	m.lastCaller, m.lastID = caller, id
	return m.err
}

// ── Mock FormService ──

type mockFormService struct {
	form       *dto.VisibleFormResponse
	submit     *dto.SubmitValuesResponse
	progress   *dto.ProgressResponse
	err        error
	lastCaller *service.Caller
	lastQuery  *dto.FormQuery
	lastSubmit *dto.SubmitValuesRequest
}

func (m *mockFormService) VisibleForm(_ context.Context, caller *service.Caller, q *dto.FormQuery) (*dto.VisibleFormResponse, error) {
	m.lastCaller, m.lastQuery = caller, q
	return m.form, m.err
}
func (m *mockFormService) SubmitValues(_ context.Context, caller *service.Caller, req *dto.SubmitValuesRequest) (*dto.SubmitValuesResponse, error) {
	m.lastCaller, m.lastSubmit = caller, req
	return m.submit, m.err
}
func (m *mockFormService) Progress(_ context.Context, caller *service.Caller, q *dto.FormQuery) (*dto.ProgressResponse, error) {
	m.lastCaller, m.lastQuery = caller, q
	return m.progress, m.err
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportForm(_ context.Context, _ *service.Caller, _ *dto.FormQuery) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ── Mock ScheduleService ──

type mockScheduleService struct {
	period      *dto.PeriodScheduleResponse
	ics         string
	err         error
	lastFeature string
	lastRole    string
	lastPeriod  *dto.PeriodScheduleRequest
}

func (m *mockScheduleService) Resolve(_ context.Context, _, _ string, _ time.Time) (*service.Resolution, error) {
	return nil, m.err
}
func (m *mockScheduleService) SetSectionDays(_ context.Context, _ *model.Section, days []int) ([]int, error) {
	return days, m.err
}
func (m *mockScheduleService) SectionDays(_ context.Context, _ string) ([]int, error) {
	return nil, m.err
}
func (m *mockScheduleService) ClearSection(_ context.Context, _ *model.Section) error {
	return m.err
}
func (m *mockScheduleService) PeriodOpen(_ context.Context, _, _, _ string, _ time.Time) (bool, error) {
	return true, m.err
}
func (m *mockScheduleService) GetPeriod(_ context.Context, _ *service.Caller, feature, role string) (*dto.PeriodScheduleResponse, error) {
	m.lastFeature, m.lastRole = feature, role
	return m.period, m.err
}
func (m *mockScheduleService) SavePeriod(_ context.Context, _ *service.Caller, feature, role string, req *dto.PeriodScheduleRequest) (*dto.PeriodScheduleResponse, error) {
	m.lastFeature, m.lastRole, m.lastPeriod = feature, role, req
	return m.period, m.err
}
func (m *mockScheduleService) Calendar(_ context.Context, _ *service.Caller, feature, role string) (string, error) {
	m.lastFeature, m.lastRole = feature, role
	return m.ics, m.err
}

// ── Mock MemberService ──

type mockMemberService struct {
	list     []dto.MemberResponse
	member   *dto.MemberResponse
	err      error
	lastHard bool
	lastID   string
}

func (m *mockMemberService) List(_ context.Context, _ *service.Caller, _ *dto.MemberListRequest) ([]dto.MemberResponse, error) {
	return m.list, m.err
}
func (m *mockMemberService) Create(_ context.Context, _ *service.Caller, _ *dto.CreateMemberRequest) (*dto.MemberResponse, error) {
	return m.member, m.err
}
func (m *mockMemberService) Update(_ context.Context, _ *service.Caller, id string, _ *dto.UpdateMemberRequest) (*dto.MemberResponse, error) {
	m.lastID = id
	return m.member, m.err
}
func (m *mockMemberService) Delete(_ context.Context, _ *service.Caller, id string, hard bool) error {
	m.lastID, m.lastHard = id, hard
	return m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

// newRouter 返回注入了调用方身份的路由；userID 为空时模拟未认证
func newRouter(userID string, elevated bool) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set("user_id", userID)
			c.Set("elevated", elevated)
		}
		c.Next()
	})
	return r
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func doRequest(r *gin.Engine, method, path string, body io.Reader) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// ═══════════════════════════════════════════════════════════
// FormHandler Tests
// ═══════════════════════════════════════════════════════════

func TestFormHandler_VisibleForm_Success(t *testing.T) {
	mock := &mockFormService{form: &dto.VisibleFormResponse{Meta: dto.FormMeta{Mode: model.ModeStrict}}}
	h := NewFormHandler(mock, &mockExportService{})

	r := newRouter("u-1", true)
	r.GET("/features/:feature/form", h.VisibleForm)
	w := doRequest(r, "GET", "/features/checklist_area/form?role=spv&date=2024-06-03&include_fields=true", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.lastQuery.Feature != "checklist_area" || mock.lastQuery.Role != "spv" || !mock.lastQuery.IncludeFields {
		t.Errorf("查询参数未正确传递: %+v", mock.lastQuery)
	}
	if !mock.lastCaller.Elevated || mock.lastCaller.UserID != "u-1" {
		t.Errorf("调用方身份未正确传递: %+v", mock.lastCaller)
	}
}

func TestFormHandler_VisibleForm_Unauthenticated(t *testing.T) {
	h := NewFormHandler(&mockFormService{}, &mockExportService{})

	r := newRouter("", false)
	r.GET("/features/:feature/form", h.VisibleForm)
	w := doRequest(r, "GET", "/features/checklist_area/form", nil)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestFormHandler_VisibleForm_BadPeriod(t *testing.T) {
	h := NewFormHandler(&mockFormService{}, &mockExportService{})

	r := newRouter("u-1", false)
	r.GET("/features/:feature/form", h.VisibleForm)
	w := doRequest(r, "GET", "/features/checklist_area/form?period=yearly", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestFormHandler_SubmitValues_Success(t *testing.T) {
	mock := &mockFormService{submit: &dto.SubmitValuesResponse{FormID: "form-1", Saved: 2, Skipped: 1}}
	h := NewFormHandler(mock, &mockExportService{})

	r := newRouter("u-1", false)
	r.POST("/forms/values", h.SubmitValues)
	score := 4
	w := doRequest(r, "POST", "/forms/values", jsonBody(dto.SubmitValuesRequest{
		Feature: "eval_team",
		Date:    "2024-06-03",
		Records: []dto.ValueInput{{FieldID: "f-1", Score: &score}},
	}))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.lastSubmit.Feature != "eval_team" || len(mock.lastSubmit.Records) != 1 {
		t.Errorf("提交内容未正确传递: %+v", mock.lastSubmit)
	}
}

func TestFormHandler_SubmitValues_EmptyRecords(t *testing.T) {
	h := NewFormHandler(&mockFormService{}, &mockExportService{})

	r := newRouter("u-1", false)
	r.POST("/forms/values", h.SubmitValues)
	w := doRequest(r, "POST", "/forms/values", jsonBody(dto.SubmitValuesRequest{Feature: "eval_team"}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestFormHandler_SubmitValues_ValidationDetails(t *testing.T) {
	ve := &pkgerrors.ValidationError{}
	ve.Add(0, "f-1", "分值超出范围")
	ve.Add(2, "f-9", "字段不属于该表单")
	h := NewFormHandler(&mockFormService{err: ve}, &mockExportService{})

	r := newRouter("u-1", false)
	r.POST("/forms/values", h.SubmitValues)
	w := doRequest(r, "POST", "/forms/values", jsonBody(dto.SubmitValuesRequest{
		Feature: "eval_team",
		Records: []dto.ValueInput{{FieldID: "f-1"}, {FieldID: "f-2"}, {FieldID: "f-9"}},
	}))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != codeValidation {
		t.Errorf("expected code %d, got %d", codeValidation, resp.Code)
	}
	details, ok := resp.Details.([]interface{})
	if !ok || len(details) != 2 {
		t.Fatalf("expected 2 reasons, got %#v", resp.Details)
	}
	first := details[0].(map[string]interface{})
	if first["index"].(float64) != 0 || first["field_id"] != "f-1" {
		t.Errorf("unexpected reason: %v", first)
	}
}

func TestFormHandler_SubmitValues_StoreUnavailable(t *testing.T) {
	mock := &mockFormService{err: pkgerrors.Store("upsert values", io.ErrUnexpectedEOF)}
	h := NewFormHandler(mock, &mockExportService{})

	r := newRouter("u-1", false)
	r.POST("/forms/values", h.SubmitValues)
	w := doRequest(r, "POST", "/forms/values", jsonBody(dto.SubmitValuesRequest{
		Feature: "eval_team",
		Records: []dto.ValueInput{{FieldID: "f-1"}},
	}))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}

func TestFormHandler_Progress_RequiresFeature(t *testing.T) {
	h := NewFormHandler(&mockFormService{}, &mockExportService{})

	r := newRouter("u-1", false)
	r.GET("/forms/progress", h.Progress)
	w := doRequest(r, "GET", "/forms/progress?role=spv", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestFormHandler_Progress_Success(t *testing.T) {
	mock := &mockFormService{progress: &dto.ProgressResponse{TotalFields: 3, FilledFields: 1}}
	h := NewFormHandler(mock, &mockExportService{})

	r := newRouter("u-1", false)
	r.GET("/forms/progress", h.Progress)
	w := doRequest(r, "GET", "/forms/progress?feature=eval_team&depo=JKT", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.lastQuery.Feature != "eval_team" || mock.lastQuery.Depo != "JKT" {
		t.Errorf("查询参数未正确传递: %+v", mock.lastQuery)
	}
}

func TestFormHandler_Export_Success(t *testing.T) {
	mock := &mockExportService{buf: bytes.NewBufferString("xlsx"), filename: "eval_team_spv_2024-06-03.xlsx"}
	h := NewFormHandler(&mockFormService{}, mock)

	r := newRouter("u-1", true)
	r.GET("/forms/export", h.Export)
	w := doRequest(r, "GET", "/forms/export?feature=eval_team&role=spv", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("unexpected content type %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "eval_team_spv_2024-06-03.xlsx") {
		t.Errorf("unexpected disposition %q", cd)
	}
}

func TestFormHandler_Export_Forbidden(t *testing.T) {
	h := NewFormHandler(&mockFormService{}, &mockExportService{err: pkgerrors.ErrPrivilege})

	r := newRouter("u-1", false)
	r.GET("/forms/export", h.Export)
	w := doRequest(r, "GET", "/forms/export?feature=eval_team", nil)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// TemplateHandler Tests
// ═══════════════════════════════════════════════════════════

func TestTemplateHandler_CreateSection_Success(t *testing.T) {
	mock := &mockTemplateService{section: &dto.SectionResponse{ID: "sec-1", Idx: 1, Title: "Gudang"}}
	h := NewTemplateHandler(mock)

	r := newRouter("admin", true)
	r.POST("/features/:feature/sections", h.CreateSection)
	w := doRequest(r, "POST", "/features/checklist_area/sections", jsonBody(dto.CreateSectionRequest{Role: "spv", Title: "Gudang"}))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if mock.lastID != "checklist_area" {
		t.Errorf("expected feature checklist_area, got %q", mock.lastID)
	}
}

func TestTemplateHandler_CreateSection_Forbidden(t *testing.T) {
	h := NewTemplateHandler(&mockTemplateService{err: pkgerrors.ErrPrivilege})

	r := newRouter("u-1", false)
	r.POST("/features/:feature/sections", h.CreateSection)
	w := doRequest(r, "POST", "/features/checklist_area/sections", jsonBody(dto.CreateSectionRequest{Title: "Gudang"}))

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestTemplateHandler_CreateSection_MissingTitle(t *testing.T) {
	h := NewTemplateHandler(&mockTemplateService{})

	r := newRouter("admin", true)
	r.POST("/features/:feature/sections", h.CreateSection)
	w := doRequest(r, "POST", "/features/checklist_area/sections", jsonBody(map[string]string{"role": "spv"}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestTemplateHandler_UpdateSection_NotFound(t *testing.T) {
	mock := &mockTemplateService{err: service.ErrSectionNotFound}
	h := NewTemplateHandler(mock)

	r := newRouter("admin", true)
	r.PATCH("/sections/:id", h.UpdateSection)
	w := doRequest(r, "PATCH", "/sections/sec-9", jsonBody(dto.UpdateSectionRequest{}))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if mock.lastID != "sec-9" {
		t.Errorf("expected id sec-9, got %q", mock.lastID)
	}
}

func TestTemplateHandler_UpdateSection_SharedSchedule(t *testing.T) {
	h := NewTemplateHandler(&mockTemplateService{err: service.ErrSharedSectionSchedule})

	r := newRouter("admin", true)
	r.PATCH("/sections/:id", h.UpdateSection)
	w := doRequest(r, "PATCH", "/sections/sec-1", jsonBody(map[string][]int{"weekly_open_dates": {1}}))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != codeSharedDays {
		t.Errorf("expected code %d, got %d", codeSharedDays, resp.Code)
	}
}

func TestTemplateHandler_DeleteField(t *testing.T) {
	mock := &mockTemplateService{}
	h := NewTemplateHandler(mock)

	r := newRouter("admin", true)
	r.DELETE("/fields/:id", h.DeleteField)
	w := doRequest(r, "DELETE", "/fields/fld-3", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.lastID != "fld-3" {
		t.Errorf("expected id fld-3, got %q", mock.lastID)
	}
}

func TestTemplateHandler_CreateField_Validation(t *testing.T) {
	h := NewTemplateHandler(&mockTemplateService{err: pkgerrors.NewValidation("未知字段类型 %q", "slider")})

	r := newRouter("admin", true)
	r.POST("/sections/:id/fields", h.CreateField)
	w := doRequest(r, "POST", "/sections/sec-1/fields", jsonBody(dto.CreateFieldRequest{Label: "x", Type: "slider"}))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != codeValidation {
		t.Errorf("expected code %d, got %d", codeValidation, resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ScheduleHandler Tests
// ═══════════════════════════════════════════════════════════

func TestScheduleHandler_SavePeriod(t *testing.T) {
	mock := &mockScheduleService{period: &dto.PeriodScheduleResponse{Feature: "checklist_area", Role: "spv", Weekly: []int{1}}}
	h := NewScheduleHandler(mock)

	r := newRouter("admin", true)
	r.POST("/features/:feature/schedule", h.SavePeriod)
	w := doRequest(r, "POST", "/features/checklist_area/schedule?role=spv", jsonBody(dto.PeriodScheduleRequest{Weekly: []int{1}}))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.lastFeature != "checklist_area" || mock.lastRole != "spv" {
		t.Errorf("unexpected scope %s/%s", mock.lastFeature, mock.lastRole)
	}
}

func TestScheduleHandler_SavePeriod_OutOfRange(t *testing.T) {
	h := NewScheduleHandler(&mockScheduleService{})

	r := newRouter("admin", true)
	r.POST("/features/:feature/schedule", h.SavePeriod)
	w := doRequest(r, "POST", "/features/checklist_area/schedule", jsonBody(dto.PeriodScheduleRequest{Weekly: []int{8}}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestScheduleHandler_GetPeriod_RoleUnresolved(t *testing.T) {
	h := NewScheduleHandler(&mockScheduleService{err: service.ErrRoleUnresolved})

	r := newRouter("u-1", false)
	r.GET("/features/:feature/schedule", h.GetPeriod)
	w := doRequest(r, "GET", "/features/checklist_area/schedule", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestScheduleHandler_Calendar(t *testing.T) {
	mock := &mockScheduleService{ics: "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"}
	h := NewScheduleHandler(mock)

	r := newRouter("u-1", false)
	r.GET("/features/:feature/schedule/calendar.ics", h.Calendar)
	w := doRequest(r, "GET", "/features/checklist_area/schedule/calendar.ics?role=spv", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("unexpected content type %q", ct)
	}
	if !strings.HasPrefix(w.Body.String(), "BEGIN:VCALENDAR") {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}

// ═══════════════════════════════════════════════════════════
// MemberHandler Tests
// ═══════════════════════════════════════════════════════════

func TestMemberHandler_ListMembers(t *testing.T) {
	mock := &mockMemberService{list: []dto.MemberResponse{{ID: "m-1", Role: "spv", Name: "Andi", Idx: 1, IsActive: true}}}
	h := NewMemberHandler(mock)

	r := newRouter("u-1", false)
	r.GET("/members", h.ListMembers)
	w := doRequest(r, "GET", "/members?role=spv", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestMemberHandler_CreateMember_NameExists(t *testing.T) {
	h := NewMemberHandler(&mockMemberService{err: service.ErrMemberNameExists})

	r := newRouter("admin", true)
	r.POST("/members", h.CreateMember)
	w := doRequest(r, "POST", "/members", jsonBody(dto.CreateMemberRequest{Role: "spv", Name: "Andi"}))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != codeMemberExists {
		t.Errorf("expected code %d, got %d", codeMemberExists, resp.Code)
	}
}

func TestMemberHandler_DeleteMember_Hard(t *testing.T) {
	mock := &mockMemberService{}
	h := NewMemberHandler(mock)

	r := newRouter("admin", true)
	r.DELETE("/members/:id", h.DeleteMember)

	doRequest(r, "DELETE", "/members/m-1", nil)
	if mock.lastHard {
		t.Error("默认应为停用而非物理删除")
	}

	w := doRequest(r, "DELETE", "/members/m-1?hard=true", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if !mock.lastHard || mock.lastID != "m-1" {
		t.Errorf("hard 参数未正确传递: hard=%v id=%s", mock.lastHard, mock.lastID)
	}
}

func TestMemberHandler_UpdateMember_NotFound(t *testing.T) {
	h := NewMemberHandler(&mockMemberService{err: service.ErrMemberNotFound})

	r := newRouter("admin", true)
	r.PATCH("/members/:id", h.UpdateMember)
	w := doRequest(r, "PATCH", "/members/m-9", jsonBody(dto.UpdateMemberRequest{}))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
