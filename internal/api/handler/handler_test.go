package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"gradebook/internal/api/middleware"
	"gradebook/internal/dto"
	"gradebook/internal/editor"
	"gradebook/internal/model"
	"gradebook/internal/policy"
	"gradebook/internal/service"
	apperrors "gradebook/pkg/errors"
	"gradebook/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult *dto.TokenResponse
	loginErr    error
	meResult    *dto.UserResponse
	meErr       error
	logoutErr   error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) GetCurrentUser(_ context.Context) (*dto.UserResponse, error) {
	return m.meResult, m.meErr
}
func (m *mockAuthService) Logout(_ context.Context) error {
	return m.logoutErr
}

// ── Mock GradeService ──

type mockGradeService struct {
	listResult  *dto.GradeListResponse
	getResult   *dto.GradeResponse
	saveResult  *dto.GradeMutationResponse
	delResult   *dto.GradeDeleteResponse
	err         error
	lastID      string
	lastPatch   model.GradePatch
	lastConfirm bool
}

func (m *mockGradeService) List(_ context.Context) (*dto.GradeListResponse, error) {
	return m.listResult, m.err
}
func (m *mockGradeService) Get(_ context.Context, id string) (*dto.GradeResponse, error) {
	m.lastID = id
	return m.getResult, m.err
}
func (m *mockGradeService) Create(_ context.Context, p model.GradePatch) (*dto.GradeMutationResponse, error) {
	m.lastPatch = p
	return m.saveResult, m.err
}
func (m *mockGradeService) Update(_ context.Context, id string, p model.GradePatch) (*dto.GradeMutationResponse, error) {
	m.lastID, m.lastPatch = id, p
	return m.saveResult, m.err
}
func (m *mockGradeService) Save(_ context.Context, _ *model.Grade, p model.GradePatch) (*dto.GradeMutationResponse, error) {
	m.lastPatch = p
	return m.saveResult, m.err
}
func (m *mockGradeService) Delete(_ context.Context, id string, confirmed bool) (*dto.GradeDeleteResponse, error) {
	m.lastID, m.lastConfirm = id, confirmed
	return m.delResult, m.err
}
func (m *mockGradeService) Editable(_ context.Context, _ string) (*model.Grade, error) {
	return nil, m.err
}

// ── Mock EditorService ──

type mockEditorService struct {
	state      *dto.EditorResponse
	saveResult *dto.EditorSaveResponse
	err        error
}

func (m *mockEditorService) Get(context.Context) (*dto.EditorResponse, error) { return m.state, m.err }
func (m *mockEditorService) Add(context.Context) (*dto.EditorResponse, error) { return m.state, m.err }
func (m *mockEditorService) Edit(context.Context, string) (*dto.EditorResponse, error) {
	return m.state, m.err
}
func (m *mockEditorService) Save(context.Context, model.GradePatch) (*dto.EditorSaveResponse, error) {
	return m.saveResult, m.err
}
func (m *mockEditorService) Cancel(context.Context) (*dto.EditorResponse, error) {
	return m.state, m.err
}
func (m *mockEditorService) Close(string) {}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportGrades(_ context.Context) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func serve(r *gin.Engine, method, path string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func gradeRouter(svc service.GradeService) *gin.Engine {
	h := NewGradeHandler(svc)
	r := gin.New()
	r.GET("/grades", h.ListGrades)
	r.GET("/grades/:id", h.GetGrade)
	r.POST("/grades", h.CreateGrade)
	r.PUT("/grades/:id", h.UpdateGrade)
	r.DELETE("/grades/:id", h.DeleteGrade)
	return r
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{AccessToken: "test-access-token", ExpiresIn: 7200},
	}
	r := gin.New()
	r.POST("/auth/login", NewAuthHandler(mock).Login)

	w := serve(r, "POST", "/auth/login", jsonBody(dto.LoginRequest{Email: "teacher@example.com", Password: "password"}))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	r := gin.New()
	r.POST("/auth/login", NewAuthHandler(&mockAuthService{}).Login)

	w := serve(r, "POST", "/auth/login", strings.NewReader("invalid json"))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Login_InvalidEmail(t *testing.T) {
	r := gin.New()
	r.POST("/auth/login", NewAuthHandler(&mockAuthService{}).Login)

	w := serve(r, "POST", "/auth/login", jsonBody(dto.LoginRequest{Email: "not-an-email", Password: "x"}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	mock := &mockAuthService{loginErr: service.ErrInvalidCredentials}
	r := gin.New()
	r.POST("/auth/login", NewAuthHandler(mock).Login)

	w := serve(r, "POST", "/auth/login", jsonBody(dto.LoginRequest{Email: "a@example.com", Password: "bad"}))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 11001 {
		t.Errorf("expected code 11001, got %d", resp.Code)
	}
}

func TestAuthHandler_GetCurrentUser_Unauthenticated(t *testing.T) {
	mock := &mockAuthService{meErr: service.ErrUnauthenticated}
	r := gin.New()
	r.GET("/auth/me", NewAuthHandler(mock).GetCurrentUser)

	w := serve(r, "GET", "/auth/me", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthHandler_Logout_Success(t *testing.T) {
	r := gin.New()
	r.POST("/auth/logout", NewAuthHandler(&mockAuthService{}).Logout)

	if w := serve(r, "POST", "/auth/logout", nil); w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// GradeHandler Tests
// ═══════════════════════════════════════════════════════════

func TestGradeHandler_ListGrades(t *testing.T) {
	mock := &mockGradeService{listResult: &dto.GradeListResponse{
		List: []dto.GradeResponse{{ID: "1", CourseName: "Matematicas 101"}},
	}}
	w := serve(gradeRouter(mock), "GET", "/grades", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Matematicas 101") {
		t.Errorf("响应中应包含课程名称: %s", w.Body.String())
	}
}

func TestGradeHandler_CreateGrade_Success(t *testing.T) {
	mock := &mockGradeService{saveResult: &dto.GradeMutationResponse{Persisted: true}}
	w := serve(gradeRouter(mock), "POST", "/grades", strings.NewReader(`{"student_id":"3","course_id":"1","score":88}`))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	p := mock.lastPatch
	if p.StudentID == nil || *p.StudentID != "3" || p.Score == nil || *p.Score != 88 || p.Feedback != nil {
		t.Errorf("补丁转换不符: %+v", p)
	}
}

func TestGradeHandler_CreateGrade_MissingField(t *testing.T) {
	mock := &mockGradeService{err: policy.ErrMissingRequiredField}
	w := serve(gradeRouter(mock), "POST", "/grades", strings.NewReader(`{"score":88}`))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 12001 {
		t.Errorf("expected code 12001, got %d", resp.Code)
	}
}

func TestGradeHandler_CreateGrade_Forbidden(t *testing.T) {
	mock := &mockGradeService{err: apperrors.NewAuthorization("student", "create")}
	w := serve(gradeRouter(mock), "POST", "/grades", strings.NewReader(`{}`))
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestGradeHandler_UpdateGrade(t *testing.T) {
	mock := &mockGradeService{saveResult: &dto.GradeMutationResponse{Persisted: false, Warning: "w"}}
	w := serve(gradeRouter(mock), "PUT", "/grades/1", strings.NewReader(`{"feedback":"ok"}`))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.lastID != "1" || mock.lastPatch.Feedback == nil || mock.lastPatch.Score != nil {
		t.Errorf("参数不符: id=%s patch=%+v", mock.lastID, mock.lastPatch)
	}
	if !strings.Contains(w.Body.String(), `"persisted":false`) {
		t.Errorf("应透传 persisted=false: %s", w.Body.String())
	}
}

func TestGradeHandler_UpdateGrade_NotFound(t *testing.T) {
	mock := &mockGradeService{err: policy.ErrGradeNotFound}
	if w := serve(gradeRouter(mock), "PUT", "/grades/x", strings.NewReader(`{}`)); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestGradeHandler_UpdateGrade_InvalidScore(t *testing.T) {
	mock := &mockGradeService{err: apperrors.NewValidation("score", "必须在 0-100 之间")}
	w := serve(gradeRouter(mock), "PUT", "/grades/1", strings.NewReader(`{"score":150}`))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Details == "" {
		t.Error("校验错误应带详情")
	}
}

func TestGradeHandler_DeleteGrade(t *testing.T) {
	mock := &mockGradeService{delResult: &dto.GradeDeleteResponse{Deleted: true, Persisted: true}}
	w := serve(gradeRouter(mock), "DELETE", "/grades/7?confirm=true", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.lastID != "7" || !mock.lastConfirm {
		t.Errorf("参数不符: id=%s confirm=%v", mock.lastID, mock.lastConfirm)
	}
}

func TestGradeHandler_DeleteGrade_Unconfirmed(t *testing.T) {
	mock := &mockGradeService{err: policy.ErrConfirmationRequired}
	w := serve(gradeRouter(mock), "DELETE", "/grades/7", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 12002 {
		t.Errorf("expected code 12002, got %d", resp.Code)
	}
	if mock.lastConfirm {
		t.Error("未携带 confirm 时应为 false")
	}
}

func TestGradeHandler_InternalError(t *testing.T) {
	mock := &mockGradeService{err: errors.New("boom")}
	if w := serve(gradeRouter(mock), "GET", "/grades", nil); w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestGradeHandler_BodyTooLarge(t *testing.T) {
	mock := &mockGradeService{saveResult: &dto.GradeMutationResponse{}}
	h := NewGradeHandler(mock)
	r := gin.New()
	r.POST("/grades", middleware.BodyLimit(16), h.CreateGrade)

	req := httptest.NewRequest("POST", "/grades", strings.NewReader(`{"feedback":"`+strings.Repeat("x", 64)+`"}`))
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = -1 // 模拟分块上传，由 MaxBytesReader 截断
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// EditorHandler Tests
// ═══════════════════════════════════════════════════════════

func TestEditorHandler_Add_Conflict(t *testing.T) {
	mock := &mockEditorService{err: editor.ErrNotClosed}
	r := gin.New()
	r.POST("/editor/add", NewEditorHandler(mock).Add)

	if w := serve(r, "POST", "/editor/add", nil); w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestEditorHandler_Save(t *testing.T) {
	mock := &mockEditorService{saveResult: &dto.EditorSaveResponse{
		GradeMutationResponse: dto.GradeMutationResponse{Persisted: true},
		Editor:                dto.EditorResponse{State: "closed"},
	}}
	r := gin.New()
	r.POST("/editor/save", NewEditorHandler(mock).Save)

	w := serve(r, "POST", "/editor/save", strings.NewReader(`{"score":70}`))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"state":"closed"`) {
		t.Errorf("响应应包含编辑器状态: %s", w.Body.String())
	}
}

func TestEditorHandler_Save_NotOpen(t *testing.T) {
	mock := &mockEditorService{err: editor.ErrNotOpen}
	r := gin.New()
	r.POST("/editor/save", NewEditorHandler(mock).Save)

	if w := serve(r, "POST", "/editor/save", strings.NewReader(`{}`)); w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ExportGrades_Success(t *testing.T) {
	mock := &mockExportService{buf: bytes.NewBufferString("xlsx-bytes"), filename: "notas_3.xlsx"}
	r := gin.New()
	r.GET("/grades/export", NewExportHandler(mock).ExportGrades)

	w := serve(r, "GET", "/grades/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("Content-Type 不符: %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "notas_3.xlsx") {
		t.Errorf("Content-Disposition 不符: %s", cd)
	}
}

func TestExportHandler_ExportGrades_GenerateFail(t *testing.T) {
	mock := &mockExportService{err: service.ErrExportGenerateFail}
	r := gin.New()
	r.GET("/grades/export", NewExportHandler(mock).ExportGrades)

	w := serve(r, "GET", "/grades/export", nil)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 14001 {
		t.Errorf("expected code 14001, got %d", resp.Code)
	}
}
