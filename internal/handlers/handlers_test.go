package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-lucky-clover/agentcy-one/internal/middleware"
	"github.com/the-lucky-clover/agentcy-one/internal/models"
	"github.com/the-lucky-clover/agentcy-one/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeGeneration struct {
	calls   int
	in      services.GenerateInput
	out     *services.GenerateOutput
	err     error
	page    *services.HistoryPage
	gotPage int
	gotLim  int
}

func (f *fakeGeneration) Generate(_ context.Context, in services.GenerateInput) (*services.GenerateOutput, error) {
	f.calls++
	f.in = in
	return f.out, f.err
}

func (f *fakeGeneration) History(_ context.Context, _ string, page, limit int) (*services.HistoryPage, error) {
	f.gotPage, f.gotLim = page, limit
	return f.page, f.err
}

func (f *fakeGeneration) Get(_ context.Context, userID, id string) (*models.GenerationRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.GenerationRequest{ID: id, UserID: userID}, nil
}

// asUser stands in for the auth middleware.
func asUser(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CtxUserID, id)
		c.Next()
	}
}

func generationRouter(svc services.GenerationService) *gin.Engine {
	h := NewGenerationHandler(svc)
	r := gin.New()
	g := r.Group("/generation", asUser("u1"))
	g.POST("/generate", h.Generate)
	g.GET("/history", h.History)
	g.GET("/:id", h.Get)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGenerateShortPromptIsRejected(t *testing.T) {
	svc := &fakeGeneration{}
	w := do(generationRouter(svc), http.MethodPost, "/generation/generate", `{"prompt":"hello","type":"component"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, svc.calls)
}

func TestGenerateUnknownTypeIsRejected(t *testing.T) {
	svc := &fakeGeneration{}
	w := do(generationRouter(svc), http.MethodPost, "/generation/generate", `{"prompt":"a long enough prompt","type":"widget"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, svc.calls)
}

func TestGeneratePaddedShortPromptIsBadRequest(t *testing.T) {
	svc := &fakeGeneration{err: services.ErrPromptTooShort}
	w := do(generationRouter(svc), http.MethodPost, "/generation/generate", `{"prompt":"ab        ","type":"component"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "at least 10 characters")
	assert.Equal(t, "ab        ", svc.in.Prompt)
}

func TestGenerateQuotaExceeded(t *testing.T) {
	svc := &fakeGeneration{err: services.ErrQuotaExceeded}
	w := do(generationRouter(svc), http.MethodPost, "/generation/generate", `{"prompt":"a pricing table please","type":"component"}`)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Generation limit reached")
}

func TestGenerateProjectNotOwned(t *testing.T) {
	svc := &fakeGeneration{err: services.ErrProjectNotFound}
	body := `{"prompt":"a pricing table please","type":"page","projectId":"7f1c2b9e-3a4d-4f5e-8a6b-9c0d1e2f3a4b"}`
	w := do(generationRouter(svc), http.MethodPost, "/generation/generate", body)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "7f1c2b9e-3a4d-4f5e-8a6b-9c0d1e2f3a4b", svc.in.ProjectID)
}

func TestGenerateFailureIsGeneric(t *testing.T) {
	svc := &fakeGeneration{err: errors.New("generation failed: put key: connection reset")}
	w := do(generationRouter(svc), http.MethodPost, "/generation/generate", `{"prompt":"a pricing table please","type":"api"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Generation failed"}`, w.Body.String())
}

func TestGenerateSuccess(t *testing.T) {
	svc := &fakeGeneration{out: &services.GenerateOutput{
		Request: &models.GenerationRequest{
			ID:    "g1",
			Files: []models.FileDescriptor{{Name: "a.tsx", URL: "https://cdn/a.tsx", ContentType: "text/typescript; charset=utf-8"}},
		},
		Result: &models.GenerationResult{Files: []models.GeneratedFile{{Name: "a.tsx", Content: "X"}}},
	}}
	w := do(generationRouter(svc), http.MethodPost, "/generation/generate",
		`{"prompt":"  a pricing table please  ","type":"component","framework":"vue"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		GenerationID string                  `json:"generationId"`
		Code         string                  `json:"code"`
		Files        []models.FileDescriptor `json:"files"`
		Message      string                  `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "g1", body.GenerationID)
	assert.Equal(t, "X", body.Code)
	assert.Len(t, body.Files, 1)
	assert.NotEmpty(t, body.Message)

	assert.Equal(t, "u1", svc.in.UserID)
	assert.Equal(t, "  a pricing table please  ", svc.in.Prompt)
	assert.Equal(t, models.FrameworkVue, svc.in.Framework)
}

func TestHistoryPagination(t *testing.T) {
	svc := &fakeGeneration{page: &services.HistoryPage{
		Generations: []models.GenerationRequest{{ID: "g2"}, {ID: "g1"}},
		Page:        2, Limit: 2, Total: 5,
	}}
	w := do(generationRouter(svc), http.MethodGet, "/generation/history?page=2&limit=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, svc.gotPage)
	assert.Equal(t, 2, svc.gotLim)

	var body struct {
		Generations []models.GenerationRequest `json:"generations"`
		Pagination  map[string]int             `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Generations, 2)
	assert.Equal(t, map[string]int{"page": 2, "limit": 2, "total": 5, "totalPages": 3}, body.Pagination)
}

func TestHistoryBadQueryFallsBackToDefaults(t *testing.T) {
	svc := &fakeGeneration{page: &services.HistoryPage{Page: 1, Limit: 10}}
	w := do(generationRouter(svc), http.MethodGet, "/generation/history?page=x&limit=-3", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, svc.gotPage)
	assert.Equal(t, services.DefaultHistoryLimit, svc.gotLim)
}

func TestGetGenerationMalformedIDIsNotFound(t *testing.T) {
	// the id check runs before any repository is touched
	svc := services.NewGenerationService(nil, nil, nil, nil, nil, nil)
	w := do(generationRouter(svc), http.MethodGet, "/generation/abc", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProjectMalformedIDIsNotFound(t *testing.T) {
	h := NewProjectHandler(services.NewProjectService(nil, nil))
	r := gin.New()
	g := r.Group("/projects", asUser("u1"))
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.GET("/:id/deployments", h.Deployments)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/projects/abc", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPut, "/projects/abc", `{"name":"x"}`).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodDelete, "/projects/abc", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/projects/abc/deployments", "").Code)
}

func TestGetGenerationNotFound(t *testing.T) {
	svc := &fakeGeneration{err: services.ErrNotFound}
	w := do(generationRouter(svc), http.MethodGet, "/generation/abc", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type fakeUsers struct {
	services.UserService
	registerErr error
	loginErr    error
}

func (f *fakeUsers) Register(_ context.Context, req models.RegisterRequest) (*models.User, *services.TokenPair, error) {
	if f.registerErr != nil {
		return nil, nil, f.registerErr
	}
	return &models.User{ID: "u1", Email: req.Email, Tier: models.TierFree}, &services.TokenPair{AccessToken: "a", RefreshToken: "r"}, nil
}

func (f *fakeUsers) Login(_ context.Context, email, _ string) (*models.User, *services.TokenPair, error) {
	if f.loginErr != nil {
		return nil, nil, f.loginErr
	}
	return &models.User{ID: "u1", Email: email}, &services.TokenPair{AccessToken: "a", RefreshToken: "r"}, nil
}

func authRouter(svc services.UserService) *gin.Engine {
	h := NewAuthHandler(svc)
	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	return r
}

func TestRegister(t *testing.T) {
	body := `{"email":"dev@example.com","password":"hunter22!","name":"Dev"}`

	w := do(authRouter(&fakeUsers{}), http.MethodPost, "/auth/register", body)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"access_token":"a"`)
	assert.NotContains(t, w.Body.String(), "password")

	w = do(authRouter(&fakeUsers{registerErr: services.ErrEmailTaken}), http.MethodPost, "/auth/register", body)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(authRouter(&fakeUsers{}), http.MethodPost, "/auth/register", `{"email":"dev@example.com","password":"short","name":"Dev"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginRejected(t *testing.T) {
	w := do(authRouter(&fakeUsers{loginErr: services.ErrInvalidCredentials}), http.MethodPost, "/auth/login",
		`{"email":"dev@example.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type pingErr struct{ err error }

func (p pingErr) PingContext(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	r := gin.New()
	r.GET("/ok", Health(pingErr{}))
	r.GET("/down", Health(pingErr{err: errors.New("dial tcp: refused")}))

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ok", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(r, http.MethodGet, "/down", "").Code)
}
