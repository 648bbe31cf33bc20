package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/venkatchiranjeevireddy/auricare-V2/internal/respond"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/logger"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/types"
)

func setupTestRouter(t *testing.T) (*mux.Router, *Service, *testDeps) {
	t.Helper()
	service, deps := setupTestService()
	middleware := NewMiddleware(service, logger.NewNop())
	handler := NewHandler(service, middleware, logger.NewNop())

	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()
	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.Authenticate)
	handler.RegisterRoutes(api, protected)

	return router, service, deps
}

func doJSON(router http.Handler, method, target, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func signedInPatient(t *testing.T, service *Service, deps *testDeps) string {
	t.Helper()
	deps.users.On("GetByEmail", mock.Anything, "pat@example.com").Return(&types.User{
		ID: "pat-1", Email: "pat@example.com", FirstName: "Pat", Role: types.RolePatient, PasswordHash: hashFor(t, "secret1"),
	}, nil)
	result, err := service.SignIn(context.Background(), &types.SignInRequest{Email: "pat@example.com", Password: "secret1"})
	require.NoError(t, err)
	return result.Token
}

func TestSignUpHandler(t *testing.T) {
	router, _, deps := setupTestRouter(t)
	deps.users.On("Create", mock.Anything, mock.Anything).Return(nil)

	rec := doJSON(router, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email": "new@example.com", "password": "secret1", "role": "patient",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "/auth", body["redirect"])
	assert.NotContains(t, rec.Body.String(), "password_hash")

	rec = doJSON(router, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email": "doc@example.com", "password": "secret1", "role": "doctor",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(router, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{"unexpected": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignInHandler_InvalidCredentials(t *testing.T) {
	router, _, deps := setupTestRouter(t)
	deps.users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, types.NewNotFoundError(types.ErrCodeUserNotFound, "User not found"))

	rec := doJSON(router, http.MethodPost, "/api/v1/auth/signin", "", map[string]string{
		"email": "ghost@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body respond.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, types.ErrCodeInvalidCredentials, body.Error.Code)
}

func TestSessionLifecycle(t *testing.T) {
	router, service, deps := setupTestRouter(t)
	token := signedInPatient(t, service, deps)

	rec := doJSON(router, http.MethodGet, "/api/v1/auth/session", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view types.SessionView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "/patient/dashboard", view.Dashboard)
	assert.Equal(t, types.RolePatient, view.Session.Principal.Role)
	assert.NotEmpty(t, view.Navigation)

	rec = doJSON(router, http.MethodPost, "/api/v1/auth/signout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"redirect":"/auth"}`, rec.Body.String())

	rec = doJSON(router, http.MethodGet, "/api/v1/auth/session", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	for _, target := range []string{"/api/v1/auth/session", "/api/v1/me", "/api/v1/doctors"} {
		rec := doJSON(router, http.MethodGet, target, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
	}

	rec := doJSON(router, http.MethodGet, "/api/v1/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestResolveRouteHandler(t *testing.T) {
	router, service, deps := setupTestRouter(t)

	rec := doJSON(router, http.MethodGet, "/api/v1/auth/routes?path=/doctor/patients", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var decision types.RouteDecision
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decision))
	assert.False(t, decision.Allowed)
	assert.Equal(t, "/auth", decision.Redirect)

	token := signedInPatient(t, service, deps)
	rec = doJSON(router, http.MethodGet, "/api/v1/auth/routes?path=/dashboard", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decision))
	assert.Equal(t, "/patient/dashboard", decision.Redirect)

	rec = doJSON(router, http.MethodGet, "/api/v1/auth/routes", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDoctorsHandler(t *testing.T) {
	router, service, deps := setupTestRouter(t)
	token := signedInPatient(t, service, deps)

	deps.doctors.On("List", mock.Anything).Return([]*types.Doctor{
		{ID: "d1", DoctorID: "DOC-001", Name: "Dr. Rao", Specialization: "Cardiology", PasswordHash: "hash"},
	}, nil)

	rec := doJSON(router, http.MethodGet, "/api/v1/doctors", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dr. Rao")
	assert.NotContains(t, rec.Body.String(), "hash")
}

func TestRequireRole(t *testing.T) {
	middleware := NewMiddleware(nil, logger.NewNop())
	h := middleware.RequireRole(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, types.RoleDoctor)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = req.WithContext(ContextWithSession(req.Context(), sessionFor(types.RolePatient)))
	rec = httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = req.WithContext(ContextWithSession(req.Context(), sessionFor(types.RoleDoctor)))
	rec = httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
