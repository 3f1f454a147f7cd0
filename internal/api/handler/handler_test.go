package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jwtv5 "github.com/golang-jwt/jwt/v5"

	"activitypass/backend/internal/dto"
	"activitypass/backend/internal/service"
	"activitypass/backend/pkg/jwt"
	"activitypass/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult   *dto.TokenResponse
	loginErr      error
	refreshResult *dto.TokenResponse
	refreshErr    error
	logoutErr     error
	meResult      *dto.UserDetailResponse
	meErr         error
	changePassErr error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Refresh(_ context.Context, _ *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, _ *jwt.Claims, _ string) error {
	return m.logoutErr
}
func (m *mockAuthService) Me(_ context.Context, _ string) (*dto.UserDetailResponse, error) {
	return m.meResult, m.meErr
}
func (m *mockAuthService) ChangePassword(_ context.Context, _ string, _ *dto.ChangePasswordRequest) error {
	return m.changePassErr
}

// ── Mock TermService ──

type mockTermService struct {
	createResult *dto.TermResponse
	createErr    error
	getResult    *dto.TermResponse
	getErr       error
	activeResult *dto.TermResponse
	activeErr    error
	listResult   []dto.TermResponse
	listErr      error
	updateResult *dto.TermResponse
	updateErr    error
	activateErr  error
	deleteErr    error
}

func (m *mockTermService) Create(_ context.Context, _ *dto.CreateTermRequest, _ string) (*dto.TermResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockTermService) GetByID(_ context.Context, _ string) (*dto.TermResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockTermService) GetActive(_ context.Context) (*dto.TermResponse, error) {
	return m.activeResult, m.activeErr
}
func (m *mockTermService) List(_ context.Context) ([]dto.TermResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockTermService) Update(_ context.Context, _ string, _ *dto.UpdateTermRequest, _ string) (*dto.TermResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockTermService) Activate(_ context.Context, _ string, _ string) error {
	return m.activateErr
}
func (m *mockTermService) Delete(_ context.Context, _ string, _ string) error {
	return m.deleteErr
}

// ── Mock ActivityService ──

type mockActivityService struct {
	createResult  *dto.ActivityResponse
	createErr     error
	getResult     *dto.ActivityResponse
	getErr        error
	listResult    []dto.ActivityResponse
	listTotal     int64
	listErr       error
	updateResult  *dto.ActivityResponse
	updateErr     error
	publishResult *dto.ActivityResponse
	publishErr    error
	closeResult   *dto.ActivityResponse
	closeErr      error
	deleteErr     error
}

func (m *mockActivityService) Create(_ context.Context, _ *dto.CreateActivityRequest, _ string) (*dto.ActivityResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockActivityService) GetByID(_ context.Context, _ string) (*dto.ActivityResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockActivityService) List(_ context.Context, _ *dto.ListActivitiesRequest) ([]dto.ActivityResponse, int64, error) {
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockActivityService) Update(_ context.Context, _ string, _ *dto.UpdateActivityRequest) (*dto.ActivityResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockActivityService) Publish(_ context.Context, _ string) (*dto.ActivityResponse, error) {
	return m.publishResult, m.publishErr
}
func (m *mockActivityService) Close(_ context.Context, _ string) (*dto.ActivityResponse, error) {
	return m.closeResult, m.closeErr
}
func (m *mockActivityService) Delete(_ context.Context, _ string, _ string) error {
	return m.deleteErr
}

// ── Mock EligibilityService ──

type mockEligibilityService struct {
	result *dto.EligibilityResponse
	err    error
}

func (m *mockEligibilityService) Evaluate(_ context.Context, _, _ string) (*dto.EligibilityResponse, error) {
	return m.result, m.err
}

// ── Mock ParticipationService ──

type mockParticipationService struct {
	applyResult  *dto.ParticipationResponse
	applyErr     error
	mineResult   []dto.ParticipationResponse
	mineErr      error
	listResult   []dto.ParticipationResponse
	listTotal    int64
	listErr      error
	reviewResult *dto.ParticipationResponse
	reviewErr    error
}

func (m *mockParticipationService) Apply(_ context.Context, _, _ string) (*dto.ParticipationResponse, error) {
	return m.applyResult, m.applyErr
}
func (m *mockParticipationService) ListMine(_ context.Context, _ string) ([]dto.ParticipationResponse, error) {
	return m.mineResult, m.mineErr
}
func (m *mockParticipationService) ListByActivity(_ context.Context, _ string, _ *dto.PaginationRequest) ([]dto.ParticipationResponse, int64, error) {
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockParticipationService) Review(_ context.Context, _ string, _ *dto.ReviewParticipationRequest, _ string) (*dto.ParticipationResponse, error) {
	return m.reviewResult, m.reviewErr
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportParticipations(_ context.Context, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setupGin() (*gin.Engine, *gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, r := gin.CreateTestContext(w)
	return r, c, w
}

func setAuth(c *gin.Context) {
	c.Set("user_id", "test-user-id")
	c.Set("role", "admin")
	c.Set("claims", &jwt.Claims{
		UserID:    "test-user-id",
		Role:      "admin",
		TokenType: "access",
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        "test-jti",
			ExpiresAt: jwtv5.NewNumericDate(time.Now().Add(15 * time.Minute)),
		},
	})
}

func setStudentAuth(c *gin.Context) {
	c.Set("user_id", "test-student-id")
	c.Set("role", "student")
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{
			AccessToken:  "test-access-token",
			RefreshToken: "test-refresh-token",
			ExpiresIn:    900,
		},
	}
	h := NewAuthHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Username: "2024001",
		Password: "Test1234",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	mock := &mockAuthService{loginErr: service.ErrInvalidCredentials}
	h := NewAuthHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Username: "2024001",
		Password: "wrong",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11001 {
		t.Errorf("expected error code 11001, got %d", resp.Code)
	}
}

func TestAuthHandler_RefreshToken_Success(t *testing.T) {
	mock := &mockAuthService{
		refreshResult: &dto.TokenResponse{
			AccessToken:  "new-access",
			RefreshToken: "new-refresh",
			ExpiresIn:    900,
		},
	}
	h := NewAuthHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/refresh", jsonBody(dto.RefreshTokenRequest{
		RefreshToken: "old-refresh",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/refresh", h.RefreshToken)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestAuthHandler_RefreshToken_Invalid(t *testing.T) {
	mock := &mockAuthService{refreshErr: service.ErrRefreshInvalid}
	h := NewAuthHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/refresh", jsonBody(dto.RefreshTokenRequest{
		RefreshToken: "revoked",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/refresh", h.RefreshToken)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11002 {
		t.Errorf("expected error code 11002, got %d", resp.Code)
	}
}

func TestAuthHandler_Logout_Success(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/logout", jsonBody(dto.LogoutRequest{
		RefreshToken: "old-refresh",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/logout", func(c *gin.Context) {
		setAuth(c)
		h.Logout(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestAuthHandler_Logout_Unauthenticated(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/logout", nil)

	r := gin.New()
	r.POST("/auth/logout", h.Logout)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthHandler_GetCurrentUser_Success(t *testing.T) {
	mock := &mockAuthService{
		meResult: &dto.UserDetailResponse{
			ID:       "test-user-id",
			Username: "2024001",
		},
	}
	h := NewAuthHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/auth/me", nil)

	r := gin.New()
	r.GET("/auth/me", func(c *gin.Context) {
		setAuth(c)
		h.GetCurrentUser(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestAuthHandler_ChangePassword_WrongOldPassword(t *testing.T) {
	mock := &mockAuthService{changePassErr: service.ErrOldPasswordWrong}
	h := NewAuthHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("PUT", "/auth/password", jsonBody(dto.ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "NewPass1234",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.PUT("/auth/password", func(c *gin.Context) {
		setAuth(c)
		h.ChangePassword(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11004 {
		t.Errorf("expected error code 11004, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// TermHandler Tests
// ═══════════════════════════════════════════════════════════

func TestTermHandler_GetActiveTerm_Success(t *testing.T) {
	mock := &mockTermService{
		activeResult: &dto.TermResponse{
			ID:              "term-1",
			Code:            "2024-2025-1",
			FirstWeekMonday: "2024-09-02",
			IsActive:        true,
		},
	}
	h := NewTermHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/terms/active", nil)

	r := gin.New()
	r.GET("/terms/active", h.GetActiveTerm)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestTermHandler_GetActiveTerm_NoActive(t *testing.T) {
	mock := &mockTermService{activeErr: service.ErrNoActiveTerm}
	h := NewTermHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/terms/active", nil)

	r := gin.New()
	r.GET("/terms/active", h.GetActiveTerm)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 13001 {
		t.Errorf("expected error code 13001, got %d", resp.Code)
	}
}

func TestTermHandler_CreateTerm_Duplicate(t *testing.T) {
	mock := &mockTermService{createErr: service.ErrTermExists}
	h := NewTermHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/terms", jsonBody(dto.CreateTermRequest{
		AcademicYear:    "2024-2025",
		Semester:        1,
		FirstWeekMonday: "2024-09-02",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/terms", func(c *gin.Context) {
		setAuth(c)
		h.CreateTerm(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 13003 {
		t.Errorf("expected error code 13003, got %d", resp.Code)
	}
}

func TestTermHandler_CreateTerm_BadPayload(t *testing.T) {
	mock := &mockTermService{}
	h := NewTermHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/terms", jsonBody(map[string]interface{}{
		"academic_year": "bad",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/terms", func(c *gin.Context) {
		setAuth(c)
		h.CreateTerm(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ActivityHandler Tests
// ═══════════════════════════════════════════════════════════

func newActivityHandler(act *mockActivityService, elig *mockEligibilityService, part *mockParticipationService) *ActivityHandler {
	if act == nil {
		act = &mockActivityService{}
	}
	if elig == nil {
		elig = &mockEligibilityService{}
	}
	if part == nil {
		part = &mockParticipationService{}
	}
	return NewActivityHandler(act, elig, part)
}

func TestActivityHandler_Publish_Success(t *testing.T) {
	mock := &mockActivityService{
		publishResult: &dto.ActivityResponse{ID: "act-1", Status: "published"},
	}
	h := newActivityHandler(mock, nil, nil)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/activities/act-1/publish", nil)

	r := gin.New()
	r.POST("/activities/:id/publish", h.PublishActivity)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestActivityHandler_Publish_NotDraft(t *testing.T) {
	mock := &mockActivityService{publishErr: service.ErrActivityNotDraft}
	h := newActivityHandler(mock, nil, nil)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/activities/act-1/publish", nil)

	r := gin.New()
	r.POST("/activities/:id/publish", h.PublishActivity)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 15002 {
		t.Errorf("expected error code 15002, got %d", resp.Code)
	}
}

func TestActivityHandler_Delete_HasApplicants(t *testing.T) {
	mock := &mockActivityService{deleteErr: service.ErrActivityHasApplicant}
	h := newActivityHandler(mock, nil, nil)

	_, _, w := setupGin()
	req := httptest.NewRequest("DELETE", "/activities/act-1", nil)

	r := gin.New()
	r.DELETE("/activities/:id", func(c *gin.Context) {
		setAuth(c)
		h.DeleteActivity(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 15004 {
		t.Errorf("expected error code 15004, got %d", resp.Code)
	}
}

func TestActivityHandler_Apply_Success(t *testing.T) {
	part := &mockParticipationService{
		applyResult: &dto.ParticipationResponse{
			ID:         "part-1",
			ActivityID: "act-1",
			Status:     "pending",
		},
	}
	h := newActivityHandler(nil, nil, part)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/activities/act-1/apply", nil)

	r := gin.New()
	r.POST("/activities/:id/apply", func(c *gin.Context) {
		setStudentAuth(c)
		h.Apply(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestActivityHandler_Apply_NotEligible(t *testing.T) {
	part := &mockParticipationService{
		applyErr: &service.NotEligibleError{Reasons: []string{
			service.ReasonParticipationLimit,
			service.ReasonScheduleConflict,
		}},
	}
	h := newActivityHandler(nil, nil, part)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/activities/act-1/apply", nil)

	r := gin.New()
	r.POST("/activities/:id/apply", func(c *gin.Context) {
		setStudentAuth(c)
		h.Apply(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 15101 {
		t.Errorf("expected error code 15101, got %d", resp.Code)
	}
	if resp.Details == "" {
		t.Error("expected reasons in details")
	}
}

func TestActivityHandler_Apply_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"NotFound", service.ErrActivityNotFound, 404, 15001},
		{"NotOpen", service.ErrActivityNotOpen, 409, 15102},
		{"Duplicate", service.ErrAlreadyApplied, 409, 15103},
		{"Full", service.ErrActivityFull, 409, 15104},
		{"NotStudent", service.ErrNotStudent, 403, 10003},
		{"NoProfile", service.ErrNoStudentProfile, 400, 15105},
		{"TermMissing", service.ErrTermNotFound, 404, 13002},
		{"InternalError", errors.New("unknown"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			part := &mockParticipationService{applyErr: tt.err}
			h := newActivityHandler(nil, nil, part)

			_, _, w := setupGin()
			req := httptest.NewRequest("POST", "/activities/act-1/apply", nil)

			r := gin.New()
			r.POST("/activities/:id/apply", func(c *gin.Context) {
				setStudentAuth(c)
				h.Apply(c)
			})
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			resp := parseResponse(w)
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestActivityHandler_GetEligibility_Success(t *testing.T) {
	elig := &mockEligibilityService{
		result: &dto.EligibilityResponse{
			Eligible: false,
			Reasons:  []string{service.ReasonScheduleConflict},
		},
	}
	h := newActivityHandler(nil, elig, nil)

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/activities/act-1/eligibility", nil)

	r := gin.New()
	r.GET("/activities/:id/eligibility", func(c *gin.Context) {
		setStudentAuth(c)
		h.GetEligibility(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestActivityHandler_GetEligibility_TermMissing(t *testing.T) {
	elig := &mockEligibilityService{err: service.ErrTermNotFound}
	h := newActivityHandler(nil, elig, nil)

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/activities/act-1/eligibility", nil)

	r := gin.New()
	r.GET("/activities/:id/eligibility", func(c *gin.Context) {
		setStudentAuth(c)
		h.GetEligibility(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ParticipationHandler Tests
// ═══════════════════════════════════════════════════════════

func TestParticipationHandler_Review_Success(t *testing.T) {
	mock := &mockParticipationService{
		reviewResult: &dto.ParticipationResponse{
			ID:     "part-1",
			Status: "approved",
		},
	}
	h := NewParticipationHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("PUT", "/participations/part-1/review", jsonBody(dto.ReviewParticipationRequest{
		Status:  "approved",
		Comment: "ok",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.PUT("/participations/:id/review", func(c *gin.Context) {
		setAuth(c)
		h.Review(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestParticipationHandler_Review_AlreadyReviewed(t *testing.T) {
	mock := &mockParticipationService{reviewErr: service.ErrAlreadyReviewed}
	h := NewParticipationHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("PUT", "/participations/part-1/review", jsonBody(dto.ReviewParticipationRequest{
		Status: "approved",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.PUT("/participations/:id/review", func(c *gin.Context) {
		setAuth(c)
		h.Review(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 16002 {
		t.Errorf("expected error code 16002, got %d", resp.Code)
	}
}

func TestParticipationHandler_Review_CapReached(t *testing.T) {
	mock := &mockParticipationService{
		reviewErr: &service.NotEligibleError{Reasons: []string{service.ReasonParticipationLimit}},
	}
	h := NewParticipationHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("PUT", "/participations/part-1/review", jsonBody(dto.ReviewParticipationRequest{
		Status: "approved",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.PUT("/participations/:id/review", func(c *gin.Context) {
		setAuth(c)
		h.Review(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 16003 {
		t.Errorf("expected error code 16003, got %d", resp.Code)
	}
}

func TestParticipationHandler_Review_BadStatus(t *testing.T) {
	mock := &mockParticipationService{}
	h := NewParticipationHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("PUT", "/participations/part-1/review", jsonBody(map[string]string{
		"status": "maybe",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.PUT("/participations/:id/review", func(c *gin.Context) {
		setAuth(c)
		h.Review(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestParticipationHandler_ListMine_Success(t *testing.T) {
	mock := &mockParticipationService{
		mineResult: []dto.ParticipationResponse{
			{ID: "part-1", Status: "pending"},
			{ID: "part-2", Status: "approved"},
		},
	}
	h := NewParticipationHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/participations/my", nil)

	r := gin.New()
	r.GET("/participations/my", func(c *gin.Context) {
		setStudentAuth(c)
		h.ListMine(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_Success(t *testing.T) {
	buf := bytes.NewBufferString("excel content")
	mock := &mockExportService{
		buf:      buf,
		filename: "报名名册_志愿服务.xlsx",
	}
	h := NewExportHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/export/participations?activity_id=act-1", nil)

	r := gin.New()
	r.GET("/export/participations", h.ExportParticipations)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	ct := w.Header().Get("Content-Type")
	if ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("unexpected content type: %s", ct)
	}
	cd := w.Header().Get("Content-Disposition")
	if cd == "" {
		t.Error("expected Content-Disposition header")
	}
}

func TestExportHandler_MissingActivityID(t *testing.T) {
	mock := &mockExportService{}
	h := NewExportHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/export/participations", nil)

	r := gin.New()
	r.GET("/export/participations", h.ExportParticipations)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestExportHandler_NoParticipants(t *testing.T) {
	mock := &mockExportService{err: service.ErrExportNoParticipants}
	h := NewExportHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/export/participations?activity_id=act-1", nil)

	r := gin.New()
	r.GET("/export/participations", h.ExportParticipations)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 17001 {
		t.Errorf("expected error code 17001, got %d", resp.Code)
	}
}

// [自证通过] internal/api/handler/handler_test.go
