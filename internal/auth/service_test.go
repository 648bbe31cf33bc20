package auth

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/logger"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/monitoring"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/types"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *types.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*types.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*types.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, id string, updates *types.ProfileUpdates) error {
	args := m.Called(ctx, id, updates)
	return args.Error(0)
}

// MockDoctorRepository is a mock implementation of DoctorRepository
type MockDoctorRepository struct {
	mock.Mock
}

func (m *MockDoctorRepository) Create(ctx context.Context, doctor *types.Doctor) error {
	args := m.Called(ctx, doctor)
	return args.Error(0)
}

func (m *MockDoctorRepository) GetByID(ctx context.Context, id string) (*types.Doctor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Doctor), args.Error(1)
}

func (m *MockDoctorRepository) GetByDoctorID(ctx context.Context, doctorID string) (*types.Doctor, error) {
	args := m.Called(ctx, doctorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Doctor), args.Error(1)
}

func (m *MockDoctorRepository) List(ctx context.Context) ([]*types.Doctor, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*types.Doctor), args.Error(1)
}

// MockSessionStore is a mock implementation of SessionStore
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Save(ctx context.Context, sessionID string, ttl time.Duration) error {
	args := m.Called(ctx, sessionID, ttl)
	return args.Error(0)
}

func (m *MockSessionStore) Exists(ctx context.Context, sessionID string) (bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionStore) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockSessionStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockTokenManager is a mock implementation of TokenManager
type MockTokenManager struct {
	mock.Mock
}

func (m *MockTokenManager) Issue(session *types.Session) (string, error) {
	args := m.Called(session)
	return args.String(0), args.Error(1)
}

func (m *MockTokenManager) Parse(token string) (*types.Session, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Session), args.Error(1)
}

func (m *MockTokenManager) SessionID(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

type testDeps struct {
	users    *MockUserRepository
	doctors  *MockDoctorRepository
	sessions *MemorySessionStore
	metrics  *monitoring.MetricsCollector
}

// Test setup helper
func setupTestService() (*Service, *testDeps) {
	deps := &testDeps{
		users:    &MockUserRepository{},
		doctors:  &MockDoctorRepository{},
		sessions: NewMemorySessionStore(),
		metrics:  monitoring.NewMetricsCollector("auth-test"),
	}

	service := &Service{
		users:     deps.users,
		doctors:   deps.doctors,
		sessions:  deps.sessions,
		tokens:    NewTokenManager(testSecret, "auricare-portal", "auricare-dashboards"),
		passwords: NewPasswordManagerWithCost(bcrypt.MinCost),
		metrics:   deps.metrics,
		logger:    logger.NewNop(),
		ttl:       time.Hour,
		now:       time.Now,
	}

	return service, deps
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := NewPasswordManagerWithCost(bcrypt.MinCost).HashPassword(password)
	require.NoError(t, err)
	return hash
}

func TestSignUp_Success(t *testing.T) {
	service, deps := setupTestService()
	ctx := context.Background()

	deps.users.On("Create", ctx, mock.MatchedBy(func(u *types.User) bool {
		return u.Email == "jane@example.com" && u.Role == types.RolePatient && u.PasswordHash != "secret1" && u.ID != ""
	})).Return(nil)

	user, err := service.SignUp(ctx, &types.SignUpRequest{
		Email:     "  Jane@Example.com ",
		Password:  "secret1",
		Role:      types.RolePatient,
		Username:  "jane",
		FirstName: "Jane",
		LastName:  "Doe",
	})

	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Empty(t, user.PasswordHash)
	deps.users.AssertExpectations(t)
}

func TestSignUp_DefaultsToUserRole(t *testing.T) {
	service, deps := setupTestService()
	ctx := context.Background()

	deps.users.On("Create", ctx, mock.MatchedBy(func(u *types.User) bool { return u.Role == types.RoleUser })).Return(nil)

	user, err := service.SignUp(ctx, &types.SignUpRequest{Email: "a@b.c", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, types.RoleUser, user.Role)
}

func TestSignUp_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		req      types.SignUpRequest
		wantType types.ErrorType
		wantCode string
	}{
		{"doctor role", types.SignUpRequest{Email: "doc@b.c", Password: "secret1", Role: types.RoleDoctor}, types.ErrorTypeAuthorization, types.ErrCodeRoleNotAllowed},
		{"bad email", types.SignUpRequest{Email: "nobody", Password: "secret1"}, types.ErrorTypeValidation, types.ErrCodeInvalidInput},
		{"short password", types.SignUpRequest{Email: "a@b.c", Password: "12345"}, types.ErrorTypeValidation, types.ErrCodeInvalidInput},
		{"unknown role", types.SignUpRequest{Email: "a@b.c", Password: "secret1", Role: "admin"}, types.ErrorTypeValidation, types.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, deps := setupTestService()

			_, err := service.SignUp(context.Background(), &tt.req)

			pe, ok := types.AsPortalError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantType, pe.Type)
			assert.Equal(t, tt.wantCode, pe.Code)
			deps.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	service, deps := setupTestService()
	ctx := context.Background()

	deps.users.On("Create", ctx, mock.Anything).Return(types.NewConflictError(types.ErrCodeEmailExists, "exists"))

	_, err := service.SignUp(ctx, &types.SignUpRequest{Email: "a@b.c", Password: "secret1"})
	assert.True(t, types.IsType(err, types.ErrorTypeConflict))
}

func TestSignIn_Success(t *testing.T) {
	service, deps := setupTestService()
	ctx := context.Background()

	deps.users.On("GetByEmail", ctx, "jane@example.com").Return(&types.User{
		ID:           "user-1",
		Email:        "jane@example.com",
		Username:     "jane",
		FirstName:    "Jane",
		LastName:     "Doe",
		Role:         types.RolePatient,
		PasswordHash: hashFor(t, "secret1"),
	}, nil)

	result, err := service.SignIn(ctx, &types.SignInRequest{Email: "JANE@example.com", Password: "secret1"})
	require.NoError(t, err)

	assert.Equal(t, "/patient/dashboard", result.Redirect)
	assert.Equal(t, "Bearer", result.TokenType)
	assert.Equal(t, int64(3600), result.ExpiresIn)
	assert.Equal(t, "Jane Doe", result.Session.Principal.DisplayName)

	session, err := service.ResolveSession(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", session.Principal.ID)
	assert.Equal(t, types.RolePatient, session.Principal.Role)
	assert.Equal(t, result.Session.ID, session.ID)
}

func TestSignIn_SameErrorForUnknownEmailAndBadPassword(t *testing.T) {
	service, deps := setupTestService()
	ctx := context.Background()

	deps.users.On("GetByEmail", ctx, "ghost@example.com").Return(nil, types.NewNotFoundError(types.ErrCodeUserNotFound, "User not found"))
	deps.users.On("GetByEmail", ctx, "jane@example.com").Return(&types.User{
		ID: "user-1", Email: "jane@example.com", Role: types.RoleUser, PasswordHash: hashFor(t, "secret1"),
	}, nil)

	_, errUnknown := service.SignIn(ctx, &types.SignInRequest{Email: "ghost@example.com", Password: "secret1"})
	_, errBadPassword := service.SignIn(ctx, &types.SignInRequest{Email: "jane@example.com", Password: "wrong"})

	require.Error(t, errUnknown)
	require.Error(t, errBadPassword)
	assert.Equal(t, errUnknown.Error(), errBadPassword.Error())
	assert.True(t, types.IsType(errUnknown, types.ErrorTypeAuthentication))
}

func TestSignIn_RepositoryFailure(t *testing.T) {
	service, deps := setupTestService()
	ctx := context.Background()

	deps.users.On("GetByEmail", ctx, "jane@example.com").Return(nil, errors.New("connection reset"))

	_, err := service.SignIn(ctx, &types.SignInRequest{Email: "jane@example.com", Password: "secret1"})
	require.Error(t, err)
	assert.False(t, types.IsType(err, types.ErrorTypeAuthentication))
}

func TestDoctorSignIn(t *testing.T) {
	service, deps := setupTestService()
	ctx := context.Background()

	deps.doctors.On("GetByDoctorID", ctx, "DOC-001").Return(&types.Doctor{
		ID:             "doc-uuid",
		DoctorID:       "DOC-001",
		Name:           "Dr. Rao",
		Email:          "rao@clinic.test",
		Specialization: "Cardiology",
		PasswordHash:   hashFor(t, "stethoscope"),
	}, nil)
	deps.doctors.On("GetByDoctorID", ctx, "DOC-404").Return(nil, types.NewNotFoundError(types.ErrCodeDoctorNotFound, "Doctor not found"))

	result, err := service.DoctorSignIn(ctx, &types.DoctorSignInRequest{DoctorID: " DOC-001 ", Password: "stethoscope"})
	require.NoError(t, err)
	assert.Equal(t, "/doctor/dashboard", result.Redirect)
	assert.Equal(t, types.RoleDoctor, result.Session.Principal.Role)
	assert.Equal(t, "Cardiology", result.Session.Principal.Specialization)
	assert.Equal(t, "DOC-001", result.Session.Principal.DoctorID)

	_, err = service.DoctorSignIn(ctx, &types.DoctorSignInRequest{DoctorID: "DOC-001", Password: "wrong"})
	pe, ok := types.AsPortalError(err)
	require.True(t, ok)
	assert.Equal(t, types.ErrCodeInvalidDoctorLogin, pe.Code)
	assert.Equal(t, "Invalid doctor credentials", pe.Message)

	_, err = service.DoctorSignIn(ctx, &types.DoctorSignInRequest{DoctorID: "DOC-404", Password: "stethoscope"})
	assert.True(t, types.IsType(err, types.ErrorTypeAuthentication))
}

func TestDoctorSignIn_PlaintextStoredPasswordNeverMatches(t *testing.T) {
	service, deps := setupTestService()
	ctx := context.Background()

	deps.doctors.On("GetByDoctorID", ctx, "DOC-002").Return(&types.Doctor{
		ID: "doc-2", DoctorID: "DOC-002", PasswordHash: "plaintext",
	}, nil)

	_, err := service.DoctorSignIn(ctx, &types.DoctorSignInRequest{DoctorID: "DOC-002", Password: "plaintext"})
	assert.Error(t, err)
}

func TestSignOut_RevokesSession(t *testing.T) {
	service, deps := setupTestService()
	ctx := context.Background()

	deps.users.On("GetByEmail", ctx, "a@b.c").Return(&types.User{
		ID: "user-1", Email: "a@b.c", Role: types.RoleUser, PasswordHash: hashFor(t, "secret1"),
	}, nil)

	result, err := service.SignIn(ctx, &types.SignInRequest{Email: "a@b.c", Password: "secret1"})
	require.NoError(t, err)

	redirect, err := service.SignOut(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, "/auth", redirect)

	_, err = service.ResolveSession(ctx, result.Token)
	pe, ok := types.AsPortalError(err)
	require.True(t, ok)
	assert.Equal(t, types.ErrCodeInvalidSession, pe.Code)

	// Signing out twice still succeeds.
	_, err = service.SignOut(ctx, result.Token)
	assert.NoError(t, err)
}

func TestSignOut_ExpiredToken(t *testing.T) {
	service, _ := setupTestService()
	tokens := service.tokens.(*TokenManager)

	past := time.Now().Add(-2 * time.Hour)
	token, err := tokens.Issue(&types.Session{
		ID:        "sess-old",
		Principal: types.Principal{ID: "user-1", Role: types.RoleUser},
		IssuedAt:  past,
		ExpiresAt: past.Add(time.Hour),
	})
	require.NoError(t, err)

	redirect, err := service.SignOut(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, SignInPath, redirect)

	_, err = service.SignOut(context.Background(), "garbage")
	assert.True(t, types.IsType(err, types.ErrorTypeAuthentication))
}

func TestResolveSession_UnknownSession(t *testing.T) {
	service, _ := setupTestService()

	now := time.Now()
	token, err := service.tokens.Issue(&types.Session{
		ID:        "never-saved",
		Principal: types.Principal{ID: "user-1", Role: types.RoleUser},
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	})
	require.NoError(t, err)

	_, err = service.ResolveSession(context.Background(), token)
	assert.True(t, types.IsType(err, types.ErrorTypeAuthentication))
}

func TestResolveSession_StoreUnavailable(t *testing.T) {
	service, _ := setupTestService()
	store := &MockSessionStore{}
	service.sessions = store

	now := time.Now()
	token, err := service.tokens.Issue(&types.Session{
		ID:        "sess-1",
		Principal: types.Principal{ID: "user-1", Role: types.RoleUser},
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	})
	require.NoError(t, err)

	store.On("Exists", mock.Anything, "sess-1").Return(false, errors.New("dial tcp: connection refused"))

	_, err = service.ResolveSession(context.Background(), token)
	pe, ok := types.AsPortalError(err)
	require.True(t, ok)
	assert.Equal(t, types.ErrorTypeAuthentication, pe.Type)
	assert.Equal(t, types.ErrCodeInvalidSession, pe.Code)
	store.AssertExpectations(t)
}

func TestOpenSession_SigningFailureDiscardsSession(t *testing.T) {
	service, deps := setupTestService()
	store := &MockSessionStore{}
	tokens := &MockTokenManager{}
	var logs bytes.Buffer
	service.sessions = store
	service.tokens = tokens
	service.logger = logger.NewWithOutput("warn", &logs)

	deps.users.On("GetByEmail", mock.Anything, "pat@example.com").Return(&types.User{
		ID: "pat-1", Email: "pat@example.com", Role: types.RolePatient, PasswordHash: hashFor(t, "secret1"),
	}, nil)
	store.On("Save", mock.Anything, mock.AnythingOfType("string"), time.Hour).Return(nil)
	tokens.On("Issue", mock.Anything).Return("", errors.New("signing key unavailable"))
	store.On("Delete", mock.Anything, mock.AnythingOfType("string")).Return(errors.New("connection reset"))

	_, err := service.SignIn(context.Background(), &types.SignInRequest{Email: "pat@example.com", Password: "secret1"})
	assert.True(t, types.IsType(err, types.ErrorTypeInternal))

	store.AssertExpectations(t)
	assert.Contains(t, logs.String(), "Failed to discard unissued session")
	assert.Contains(t, logs.String(), "connection reset")
}

func TestProfile_Doctor(t *testing.T) {
	service, deps := setupTestService()
	ctx := context.Background()

	deps.doctors.On("GetByID", ctx, "doc-uuid").Return(&types.Doctor{
		ID: "doc-uuid", DoctorID: "DOC-001", Name: "Dr. Rao", Specialization: "Cardiology",
	}, nil)

	profile, err := service.Profile(ctx, &types.Session{Principal: types.Principal{ID: "doc-uuid", Role: types.RoleDoctor}})
	require.NoError(t, err)
	assert.Equal(t, "Dr. Rao", profile.DisplayName)
	assert.Equal(t, "DOC-001", profile.DoctorID)
}

func TestUpdateProfile(t *testing.T) {
	service, deps := setupTestService()
	ctx := context.Background()
	session := &types.Session{Principal: types.Principal{ID: "user-1", Role: types.RolePatient}}

	first := "Janet"
	updates := &types.ProfileUpdates{FirstName: &first}

	deps.users.On("Update", ctx, "user-1", updates).Return(nil)
	deps.users.On("GetByID", ctx, "user-1").Return(&types.User{
		ID: "user-1", Email: "a@b.c", FirstName: "Janet", LastName: "Doe", Role: types.RolePatient,
	}, nil)

	profile, err := service.UpdateProfile(ctx, session, updates)
	require.NoError(t, err)
	assert.Equal(t, "Janet Doe", profile.DisplayName)

	_, err = service.UpdateProfile(ctx, session, &types.ProfileUpdates{})
	assert.True(t, types.IsType(err, types.ErrorTypeValidation))

	blank := " "
	_, err = service.UpdateProfile(ctx, session, &types.ProfileUpdates{Username: &blank})
	assert.True(t, types.IsType(err, types.ErrorTypeValidation))

	_, err = service.UpdateProfile(ctx, &types.Session{Principal: types.Principal{ID: "doc", Role: types.RoleDoctor}}, updates)
	assert.True(t, types.IsType(err, types.ErrorTypeAuthorization))
}

func TestProvisionDoctor(t *testing.T) {
	service, deps := setupTestService()
	ctx := context.Background()

	deps.doctors.On("Create", ctx, mock.MatchedBy(func(d *types.Doctor) bool {
		ok, _ := service.passwords.VerifyPassword(d.PasswordHash, "stethoscope")
		return d.DoctorID == "DOC-007" && d.Email == "bond@clinic.test" && ok
	})).Return(nil)

	doctor, err := service.ProvisionDoctor(ctx, &types.Doctor{
		DoctorID: " DOC-007 ", Name: "Dr. Bond", Email: "Bond@Clinic.test", Specialization: "Neurology",
	}, "stethoscope")
	require.NoError(t, err)
	assert.NotEmpty(t, doctor.ID)
	assert.Empty(t, doctor.PasswordHash)

	_, err = service.ProvisionDoctor(ctx, &types.Doctor{DoctorID: "DOC-008", Email: "x@y.z"}, "stethoscope")
	assert.True(t, types.IsType(err, types.ErrorTypeValidation))
}
