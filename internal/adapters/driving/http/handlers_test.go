package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nexuslabs/nexus-core/internal/core/domain"
	"github.com/nexuslabs/nexus-core/internal/core/ports/driving"
)

// Mock services for testing

type mockAuthService struct {
	registerFn      func(ctx context.Context, req domain.RegisterRequest) (*domain.LoginResponse, error)
	authenticateFn  func(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)
	validateTokenFn func(ctx context.Context, token string) (*domain.AuthContext, error)
	logoutFn        func(ctx context.Context, token string) error
}

func (m *mockAuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.LoginResponse, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) Authenticate(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	if m.authenticateFn != nil {
		return m.authenticateFn(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error) {
	if m.validateTokenFn != nil {
		return m.validateTokenFn(ctx, token)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) Logout(ctx context.Context, token string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, token)
	}
	return nil
}

type mockProjectService struct {
	createWebFn func(ctx context.Context, userID string, req driving.CreateWebProjectRequest) (*domain.Project, error)
	createPDFFn func(ctx context.Context, userID string, req driving.CreatePDFProjectRequest) (*domain.Project, error)
	getFn       func(ctx context.Context, userID, projectID string) (*domain.Project, error)
	listFn      func(ctx context.Context, userID string) ([]*domain.Project, error)
	deleteFn    func(ctx context.Context, userID, projectID string) error
}

func (m *mockProjectService) CreateWebProject(ctx context.Context, userID string, req driving.CreateWebProjectRequest) (*domain.Project, error) {
	if m.createWebFn != nil {
		return m.createWebFn(ctx, userID, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockProjectService) CreatePDFProject(ctx context.Context, userID string, req driving.CreatePDFProjectRequest) (*domain.Project, error) {
	if m.createPDFFn != nil {
		return m.createPDFFn(ctx, userID, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockProjectService) Get(ctx context.Context, userID, projectID string) (*domain.Project, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, projectID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockProjectService) List(ctx context.Context, userID string) ([]*domain.Project, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockProjectService) Delete(ctx context.Context, userID, projectID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, projectID)
	}
	return errors.New("not implemented")
}

type mockChatService struct {
	askFn     func(ctx context.Context, userID, projectID, question string) (*domain.Message, error)
	historyFn func(ctx context.Context, userID, projectID string, limit int) ([]*domain.Message, error)
}

func (m *mockChatService) Ask(ctx context.Context, userID, projectID, question string) (*domain.Message, error) {
	if m.askFn != nil {
		return m.askFn(ctx, userID, projectID, question)
	}
	return nil, errors.New("not implemented")
}

func (m *mockChatService) History(ctx context.Context, userID, projectID string, limit int) ([]*domain.Message, error) {
	if m.historyFn != nil {
		return m.historyFn(ctx, userID, projectID, limit)
	}
	return nil, errors.New("not implemented")
}

type mockSettingsService struct {
	getAISettingsFn    func(ctx context.Context) (*domain.AISettings, error)
	updateAISettingsFn func(ctx context.Context, updaterID string, req driving.UpdateAISettingsRequest) (*driving.AISettingsStatus, error)
}

func (m *mockSettingsService) GetAISettings(ctx context.Context) (*domain.AISettings, error) {
	if m.getAISettingsFn != nil {
		return m.getAISettingsFn(ctx)
	}
	return nil, errors.New("not implemented")
}

func (m *mockSettingsService) UpdateAISettings(ctx context.Context, updaterID string, req driving.UpdateAISettingsRequest) (*driving.AISettingsStatus, error) {
	if m.updateAISettingsFn != nil {
		return m.updateAISettingsFn(ctx, updaterID, req)
	}
	return nil, errors.New("not implemented")
}

// authedRequest attaches an auth context the way the middleware would
func authedRequest(req *http.Request, userID string, role domain.Role) *http.Request {
	authCtx := &domain.AuthContext{
		UserID: userID,
		Email:  userID + "@example.com",
		Role:   role,
	}
	ctx := context.WithValue(req.Context(), authContextKey, authCtx)
	return req.WithContext(ctx)
}

func TestHealthHandler(t *testing.T) {
	server := &Server{version: "test"}

	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()

	server.handleHealth(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["status"] != "ok" {
		t.Errorf("expected status 'ok', got %s", response["status"])
	}
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestReadyHandler(t *testing.T) {
	server := &Server{
		version: "test",
		db:      pingerFunc(func(ctx context.Context) error { return nil }),
	}

	req := httptest.NewRequest("GET", "/ready", nil)
	rr := httptest.NewRecorder()

	server.handleReady(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["status"] != "ready" {
		t.Errorf("expected status 'ready', got %s", response["status"])
	}
}

func TestReadyHandler_DatabaseDown(t *testing.T) {
	server := &Server{
		version: "test",
		db:      pingerFunc(func(ctx context.Context) error { return errors.New("connection refused") }),
	}

	req := httptest.NewRequest("GET", "/ready", nil)
	rr := httptest.NewRecorder()

	server.handleReady(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", rr.Code)
	}
}

func TestVersionHandler(t *testing.T) {
	server := &Server{version: "1.2.3"}

	req := httptest.NewRequest("GET", "/version", nil)
	rr := httptest.NewRecorder()

	server.handleVersion(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["version"] != "1.2.3" {
		t.Errorf("expected version '1.2.3', got %s", response["version"])
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()

	data := map[string]string{"foo": "bar"}
	writeJSON(rr, http.StatusCreated, data)

	if rr.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", rr.Code)
	}
	if rr.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", rr.Header().Get("Content-Type"))
	}

	var response map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["foo"] != "bar" {
		t.Errorf("expected foo 'bar', got %s", response["foo"])
	}
}

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()

	writeError(rr, http.StatusBadRequest, "invalid input")

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["error"] != "invalid input" {
		t.Errorf("expected error 'invalid input', got %s", response["error"])
	}
}

// Auth handler tests

func TestHandleRegister_Success(t *testing.T) {
	mockAuth := &mockAuthService{
		registerFn: func(ctx context.Context, req domain.RegisterRequest) (*domain.LoginResponse, error) {
			return &domain.LoginResponse{
				Token:     "new-token",
				ExpiresAt: time.Now().Add(24 * time.Hour),
				User:      &domain.UserSummary{ID: "user-1", Email: req.Email, Name: req.Name},
			}, nil
		},
	}
	server := &Server{authService: mockAuth}

	body, _ := json.Marshal(domain.RegisterRequest{
		Email:    "new@example.com",
		Name:     "New User",
		Password: "secret123",
	})
	req := httptest.NewRequest("POST", "/api/v1/auth/register", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	server.handleRegister(rr, req)

	if rr.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", rr.Code)
	}

	var response domain.LoginResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Token != "new-token" {
		t.Errorf("expected token 'new-token', got %s", response.Token)
	}
	if response.User.Email != "new@example.com" {
		t.Errorf("unexpected user email: %s", response.User.Email)
	}
}

func TestHandleRegister_EmailTaken(t *testing.T) {
	mockAuth := &mockAuthService{
		registerFn: func(ctx context.Context, req domain.RegisterRequest) (*domain.LoginResponse, error) {
			return nil, domain.ErrAlreadyExists
		},
	}
	server := &Server{authService: mockAuth}

	body, _ := json.Marshal(domain.RegisterRequest{Email: "taken@example.com", Name: "X", Password: "secret"})
	req := httptest.NewRequest("POST", "/api/v1/auth/register", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	server.handleRegister(rr, req)

	if rr.Code != http.StatusConflict {
		t.Errorf("expected status 409, got %d", rr.Code)
	}
}

func TestHandleRegister_InvalidJSON(t *testing.T) {
	server := &Server{authService: &mockAuthService{}}

	req := httptest.NewRequest("POST", "/api/v1/auth/register", bytes.NewReader([]byte("{invalid")))
	rr := httptest.NewRecorder()

	server.handleRegister(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}

func TestHandleLogin_Success(t *testing.T) {
	mockAuth := &mockAuthService{
		authenticateFn: func(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
			if req.Email == "test@example.com" && req.Password == "password" {
				return &domain.LoginResponse{
					Token:     "jwt-token",
					ExpiresAt: time.Now().Add(24 * time.Hour),
					User:      &domain.UserSummary{ID: "user-1", Email: req.Email},
				}, nil
			}
			return nil, domain.ErrInvalidCredentials
		},
	}
	server := &Server{authService: mockAuth}

	body, _ := json.Marshal(domain.LoginRequest{Email: "test@example.com", Password: "password"})
	req := httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	server.handleLogin(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}

	var response domain.LoginResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Token != "jwt-token" {
		t.Errorf("expected token 'jwt-token', got %s", response.Token)
	}
}

func TestHandleLogin_InvalidCredentials(t *testing.T) {
	mockAuth := &mockAuthService{
		authenticateFn: func(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	server := &Server{authService: mockAuth}

	body, _ := json.Marshal(domain.LoginRequest{Email: "test@example.com", Password: "wrong"})
	req := httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	server.handleLogin(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}
}

func TestHandleLogin_InvalidJSON(t *testing.T) {
	server := &Server{authService: &mockAuthService{}}

	req := httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewReader([]byte("not json")))
	rr := httptest.NewRecorder()

	server.handleLogin(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}

func TestHandleLogout_WithToken(t *testing.T) {
	loggedOut := ""
	mockAuth := &mockAuthService{
		logoutFn: func(ctx context.Context, token string) error {
			loggedOut = token
			return nil
		},
	}
	server := &Server{authService: mockAuth}

	req := httptest.NewRequest("POST", "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer session-token")
	rr := httptest.NewRecorder()

	server.handleLogout(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
	if loggedOut != "session-token" {
		t.Errorf("expected logout of 'session-token', got %q", loggedOut)
	}
}

func TestHandleLogout_NoToken(t *testing.T) {
	server := &Server{authService: &mockAuthService{}}

	req := httptest.NewRequest("POST", "/api/v1/auth/logout", nil)
	rr := httptest.NewRecorder()

	server.handleLogout(rr, req)

	// Logout without a token is a no-op success
	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
}

func TestHandleGetMe(t *testing.T) {
	server := &Server{}

	req := httptest.NewRequest("GET", "/api/v1/me", nil)
	req = authedRequest(req, "user-1", domain.RoleMember)
	rr := httptest.NewRecorder()

	server.handleGetMe(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}

	var response domain.AuthContext
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.UserID != "user-1" {
		t.Errorf("expected user-1, got %s", response.UserID)
	}
}

// Project handler tests

func TestHandleCreateWebProject_Success(t *testing.T) {
	mockProjects := &mockProjectService{
		createWebFn: func(ctx context.Context, userID string, req driving.CreateWebProjectRequest) (*domain.Project, error) {
			return &domain.Project{
				ID:        "prj-1",
				UserID:    userID,
				Name:      req.Name,
				Kind:      domain.ProjectKindWeb,
				SourceURL: req.SourceURL,
				Status:    domain.ProjectStatusPending,
			}, nil
		},
	}
	server := &Server{projectService: mockProjects}

	body, _ := json.Marshal(driving.CreateWebProjectRequest{
		Name:      "Docs",
		SourceURL: "https://example.com/docs",
	})
	req := httptest.NewRequest("POST", "/api/v1/projects", bytes.NewReader(body))
	req = authedRequest(req, "user-1", domain.RoleMember)
	rr := httptest.NewRecorder()

	server.handleCreateWebProject(rr, req)

	if rr.Code != http.StatusAccepted {
		t.Errorf("expected status 202, got %d", rr.Code)
	}

	var response domain.Project
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.ID != "prj-1" {
		t.Errorf("expected project prj-1, got %s", response.ID)
	}
	if response.Status != domain.ProjectStatusPending {
		t.Errorf("expected pending status, got %s", response.Status)
	}
}

func TestHandleCreateWebProject_InvalidInput(t *testing.T) {
	mockProjects := &mockProjectService{
		createWebFn: func(ctx context.Context, userID string, req driving.CreateWebProjectRequest) (*domain.Project, error) {
			return nil, domain.ErrInvalidInput
		},
	}
	server := &Server{projectService: mockProjects}

	body, _ := json.Marshal(driving.CreateWebProjectRequest{Name: "Docs"})
	req := httptest.NewRequest("POST", "/api/v1/projects", bytes.NewReader(body))
	req = authedRequest(req, "user-1", domain.RoleMember)
	rr := httptest.NewRecorder()

	server.handleCreateWebProject(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}

func TestHandleCreateWebProject_NoAuth(t *testing.T) {
	server := &Server{projectService: &mockProjectService{}}

	req := httptest.NewRequest("POST", "/api/v1/projects", bytes.NewReader([]byte("{}")))
	rr := httptest.NewRecorder()

	server.handleCreateWebProject(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}
}

func TestHandleCreatePDFProject_Success(t *testing.T) {
	mockProjects := &mockProjectService{
		createPDFFn: func(ctx context.Context, userID string, req driving.CreatePDFProjectRequest) (*domain.Project, error) {
			return &domain.Project{
				ID:     "prj-2",
				UserID: userID,
				Name:   req.Name,
				Kind:   domain.ProjectKindPDF,
				Status: domain.ProjectStatusPending,
			}, nil
		},
	}
	server := &Server{projectService: mockProjects}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "report.pdf")
	_, _ = fw.Write([]byte("%PDF-1.4 fake content"))
	_ = mw.WriteField("name", "Quarterly Report")
	_ = mw.Close()

	req := httptest.NewRequest("POST", "/api/v1/projects/pdf", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = authedRequest(req, "user-1", domain.RoleMember)
	rr := httptest.NewRecorder()

	server.handleCreatePDFProject(rr, req)

	if rr.Code != http.StatusAccepted {
		t.Errorf("expected status 202, got %d: %s", rr.Code, rr.Body.String())
	}

	var response domain.Project
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Name != "Quarterly Report" {
		t.Errorf("expected name from form field, got %s", response.Name)
	}
}

func TestHandleCreatePDFProject_MissingFile(t *testing.T) {
	server := &Server{projectService: &mockProjectService{}}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("name", "No File")
	_ = mw.Close()

	req := httptest.NewRequest("POST", "/api/v1/projects/pdf", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = authedRequest(req, "user-1", domain.RoleMember)
	rr := httptest.NewRecorder()

	server.handleCreatePDFProject(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}

func TestHandleCreatePDFProject_NoText(t *testing.T) {
	mockProjects := &mockProjectService{
		createPDFFn: func(ctx context.Context, userID string, req driving.CreatePDFProjectRequest) (*domain.Project, error) {
			return nil, domain.ErrEmptyDocument
		},
	}
	server := &Server{projectService: mockProjects}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "scanned.pdf")
	_, _ = fw.Write([]byte("%PDF-1.4 image only"))
	_ = mw.Close()

	req := httptest.NewRequest("POST", "/api/v1/projects/pdf", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = authedRequest(req, "user-1", domain.RoleMember)
	rr := httptest.NewRecorder()

	server.handleCreatePDFProject(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}

func TestHandleListProjects_Success(t *testing.T) {
	mockProjects := &mockProjectService{
		listFn: func(ctx context.Context, userID string) ([]*domain.Project, error) {
			return []*domain.Project{
				{ID: "prj-2", UserID: userID, Status: domain.ProjectStatusReady},
				{ID: "prj-1", UserID: userID, Status: domain.ProjectStatusFailed},
			}, nil
		},
	}
	server := &Server{projectService: mockProjects}

	req := httptest.NewRequest("GET", "/api/v1/projects", nil)
	req = authedRequest(req, "user-1", domain.RoleMember)
	rr := httptest.NewRecorder()

	server.handleListProjects(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}

	var response []*domain.Project
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response) != 2 {
		t.Errorf("expected 2 projects, got %d", len(response))
	}
}

func TestHandleListProjects_Empty(t *testing.T) {
	mockProjects := &mockProjectService{
		listFn: func(ctx context.Context, userID string) ([]*domain.Project, error) {
			return nil, nil
		},
	}
	server := &Server{projectService: mockProjects}

	req := httptest.NewRequest("GET", "/api/v1/projects", nil)
	req = authedRequest(req, "user-1", domain.RoleMember)
	rr := httptest.NewRecorder()

	server.handleListProjects(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
	// Empty list serializes as [], not null
	if body := rr.Body.String(); body != "[]\n" {
		t.Errorf("expected empty array, got %q", body)
	}
}

func TestHandleGetProject_Success(t *testing.T) {
	mockProjects := &mockProjectService{
		getFn: func(ctx context.Context, userID, projectID string) (*domain.Project, error) {
			return &domain.Project{ID: projectID, UserID: userID, Status: domain.ProjectStatusReady}, nil
		},
	}
	server := &Server{projectService: mockProjects}

	req := httptest.NewRequest("GET", "/api/v1/projects/prj-1", nil)
	req.SetPathValue("id", "prj-1")
	req = authedRequest(req, "user-1", domain.RoleMember)
	rr := httptest.NewRecorder()

	server.handleGetProject(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
}

func TestHandleGetProject_NotFound(t *testing.T) {
	mockProjects := &mockProjectService{
		getFn: func(ctx context.Context, userID, projectID string) (*domain.Project, error) {
			return nil, domain.ErrNotFound
		},
	}
	server := &Server{projectService: mockProjects}

	req := httptest.NewRequest("GET", "/api/v1/projects/missing", nil)
	req.SetPathValue("id", "missing")
	req = authedRequest(req, "user-1", domain.RoleMember)
	rr := httptest.NewRecorder()

	server.handleGetProject(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rr.Code)
	}
}

func TestHandleGetProject_OtherUsersProject(t *testing.T) {
	mockProjects := &mockProjectService{
		getFn: func(ctx context.Context, userID, projectID string) (*domain.Project, error) {
			return nil, domain.ErrForbidden
		},
	}
	server := &Server{projectService: mockProjects}

	req := httptest.NewRequest("GET", "/api/v1/projects/prj-9", nil)
	req.SetPathValue("id", "prj-9")
	req = authedRequest(req, "user-1", domain.RoleMember)
	rr := httptest.NewRecorder()

	server.handleGetProject(rr, req)

	// Ownership failures read as 404, never reveal existence
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rr.Code)
	}
}

func TestHandleDeleteProject_Success(t *testing.T) {
	deleted := ""
	mockProjects := &mockProjectService{
		deleteFn: func(ctx context.Context, userID, projectID string) error {
			deleted = projectID
			return nil
		},
	}
	server := &Server{projectService: mockProjects}

	req := httptest.NewRequest("DELETE", "/api/v1/projects/prj-1", nil)
	req.SetPathValue("id", "prj-1")
	req = authedRequest(req, "user-1", domain.RoleMember)
	rr := httptest.NewRecorder()

	server.handleDeleteProject(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
	if deleted != "prj-1" {
		t.Errorf("expected prj-1 deleted, got %q", deleted)
	}
}

// Chat handler tests

func TestHandleAsk_Success(t *testing.T) {
	mockChat := &mockChatService{
		askFn: func(ctx context.Context, userID, projectID, question string) (*domain.Message, error) {
			return &domain.Message{
				ID:      "msg-2",
				ChatID:  "chat-1",
				Role:    domain.MessageRoleSystem,
				Content: "The introduction covers pricing tiers.",
			}, nil
		},
	}
	server := &Server{chatService: mockChat}

	body, _ := json.Marshal(askRequest{Question: "What does the introduction say about pricing?"})
	req := httptest.NewRequest("POST", "/api/v1/projects/prj-1/ask", bytes.NewReader(body))
	req.SetPathValue("id", "prj-1")
	req = authedRequest(req, "user-1", domain.RoleMember)
	rr := httptest.NewRecorder()

	server.handleAsk(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}

	var response domain.Message
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Role != domain.MessageRoleSystem {
		t.Errorf("expected system message, got %s", response.Role)
	}
}

func TestHandleAsk_ProjectNotReady(t *testing.T) {
	mockChat := &mockChatService{
		askFn: func(ctx context.Context, userID, projectID, question string) (*domain.Message, error) {
			return nil, domain.ErrProjectNotReady
		},
	}
	server := &Server{chatService: mockChat}

	body, _ := json.Marshal(askRequest{Question: "Anything?"})
	req := httptest.NewRequest("POST", "/api/v1/projects/prj-1/ask", bytes.NewReader(body))
	req.SetPathValue("id", "prj-1")
	req = authedRequest(req, "user-1", domain.RoleMember)
	rr := httptest.NewRecorder()

	server.handleAsk(rr, req)

	if rr.Code != http.StatusConflict {
		t.Errorf("expected status 409, got %d", rr.Code)
	}
}

func TestHandleAsk_EmptyQuestion(t *testing.T) {
	mockChat := &mockChatService{
		askFn: func(ctx context.Context, userID, projectID, question string) (*domain.Message, error) {
			return nil, domain.ErrInvalidInput
		},
	}
	server := &Server{chatService: mockChat}

	body, _ := json.Marshal(askRequest{Question: ""})
	req := httptest.NewRequest("POST", "/api/v1/projects/prj-1/ask", bytes.NewReader(body))
	req.SetPathValue("id", "prj-1")
	req = authedRequest(req, "user-1", domain.RoleMember)
	rr := httptest.NewRecorder()

	server.handleAsk(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}

func TestHandleListMessages_Success(t *testing.T) {
	var gotLimit int
	mockChat := &mockChatService{
		historyFn: func(ctx context.Context, userID, projectID string, limit int) ([]*domain.Message, error) {
			gotLimit = limit
			return []*domain.Message{
				{ID: "msg-1", Role: domain.MessageRoleUser, Content: "Question?"},
				{ID: "msg-2", Role: domain.MessageRoleSystem, Content: "Answer."},
			}, nil
		},
	}
	server := &Server{chatService: mockChat}

	req := httptest.NewRequest("GET", "/api/v1/projects/prj-1/messages?limit=50", nil)
	req.SetPathValue("id", "prj-1")
	req = authedRequest(req, "user-1", domain.RoleMember)
	rr := httptest.NewRecorder()

	server.handleListMessages(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
	if gotLimit != 50 {
		t.Errorf("expected limit 50, got %d", gotLimit)
	}

	var response []*domain.Message
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response) != 2 {
		t.Errorf("expected 2 messages, got %d", len(response))
	}
}

// Settings handler tests

func TestHandleGetAISettings_Success(t *testing.T) {
	mockSettings := &mockSettingsService{
		getAISettingsFn: func(ctx context.Context) (*domain.AISettings, error) {
			return &domain.AISettings{
				Embedding: domain.EmbeddingSettings{
					Provider: domain.AIProviderOpenAI,
					Model:    "text-embedding-3-small",
					APIKey:   "sk-secret",
				},
			}, nil
		},
	}
	server := &Server{settingsService: mockSettings}

	req := httptest.NewRequest("GET", "/api/v1/settings/ai", nil)
	req = authedRequest(req, "admin-1", domain.RoleAdmin)
	rr := httptest.NewRecorder()

	server.handleGetAISettings(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}

	// API key must never appear in the response
	if bytes.Contains(rr.Body.Bytes(), []byte("sk-secret")) {
		t.Error("API key leaked in settings response")
	}

	var response domain.AISettings
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("unexpected model: %s", response.Embedding.Model)
	}
}

func TestHandleUpdateAISettings_Success(t *testing.T) {
	var gotUpdater string
	mockSettings := &mockSettingsService{
		updateAISettingsFn: func(ctx context.Context, updaterID string, req driving.UpdateAISettingsRequest) (*driving.AISettingsStatus, error) {
			gotUpdater = updaterID
			return &driving.AISettingsStatus{
				EmbeddingConfigured: true,
				EmbeddingModel:      req.Embedding.Model,
			}, nil
		},
	}
	server := &Server{settingsService: mockSettings}

	body, _ := json.Marshal(driving.UpdateAISettingsRequest{
		Embedding: &driving.AIServiceSettings{
			Provider: domain.AIProviderOpenAI,
			Model:    "text-embedding-3-small",
			APIKey:   "sk-test",
		},
	})
	req := httptest.NewRequest("PUT", "/api/v1/settings/ai", bytes.NewReader(body))
	req = authedRequest(req, "admin-1", domain.RoleAdmin)
	rr := httptest.NewRecorder()

	server.handleUpdateAISettings(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
	if gotUpdater != "admin-1" {
		t.Errorf("expected updater admin-1, got %s", gotUpdater)
	}

	var response driving.AISettingsStatus
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !response.EmbeddingConfigured {
		t.Error("expected embedding to be configured")
	}
}

func TestHandleUpdateAISettings_InvalidProvider(t *testing.T) {
	mockSettings := &mockSettingsService{
		updateAISettingsFn: func(ctx context.Context, updaterID string, req driving.UpdateAISettingsRequest) (*driving.AISettingsStatus, error) {
			return nil, domain.ErrInvalidProvider
		},
	}
	server := &Server{settingsService: mockSettings}

	body, _ := json.Marshal(driving.UpdateAISettingsRequest{
		Embedding: &driving.AIServiceSettings{Provider: "unknown"},
	})
	req := httptest.NewRequest("PUT", "/api/v1/settings/ai", bytes.NewReader(body))
	req = authedRequest(req, "admin-1", domain.RoleAdmin)
	rr := httptest.NewRecorder()

	server.handleUpdateAISettings(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}
