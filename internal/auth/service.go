package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/config"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/interfaces"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/logger"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/monitoring"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/types"
)

const (
	methodPassword = "password"
	methodDoctor   = "doctor_id"
)

// Service implements account and session management for every role
type Service struct {
	users     interfaces.UserRepository
	doctors   interfaces.DoctorRepository
	sessions  interfaces.SessionStore
	tokens    interfaces.TokenManager
	passwords interfaces.PasswordManager
	metrics   *monitoring.MetricsCollector
	logger    *logger.Logger
	ttl       time.Duration
	now       func() time.Time
}

// NewService creates a new auth service
func NewService(
	cfg *config.JWTConfig,
	users interfaces.UserRepository,
	doctors interfaces.DoctorRepository,
	sessions interfaces.SessionStore,
	metrics *monitoring.MetricsCollector,
	log *logger.Logger,
) *Service {
	return &Service{
		users:     users,
		doctors:   doctors,
		sessions:  sessions,
		tokens:    NewTokenManager(cfg.SecretKey, cfg.Issuer, cfg.Audience),
		passwords: NewPasswordManager(),
		metrics:   metrics,
		logger:    log,
		ttl:       time.Duration(cfg.AccessTokenTTL) * time.Second,
		now:       time.Now,
	}
}

// SignUp registers an email account for the user or patient role
func (s *Service) SignUp(ctx context.Context, req *types.SignUpRequest) (*types.User, error) {
	email := normalizeEmail(req.Email)
	if !strings.Contains(email, "@") {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "A valid email is required", map[string]interface{}{"field": "email"})
	}

	if len(req.Password) < MinPasswordLength {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "Password must be at least 6 characters", map[string]interface{}{"field": "password"})
	}

	role := req.Role
	if role == "" {
		role = types.RoleUser
	}
	switch role {
	case types.RoleUser, types.RolePatient:
	case types.RoleDoctor:
		s.logger.Security(ctx, "doctor_self_signup", email, nil)
		return nil, types.NewAuthorizationError(types.ErrCodeRoleNotAllowed, "Doctor accounts are provisioned by an administrator")
	default:
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "Unknown role", map[string]interface{}{"role": role})
	}

	hash, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		return nil, types.NewInternalError(types.ErrCodeInternalError, "Failed to create account", err)
	}

	now := s.now().UTC()
	user := &types.User{
		ID:           uuid.New().String(),
		Email:        email,
		Username:     strings.TrimSpace(req.Username),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		s.logger.Audit(ctx, "", "sign_up", "user", false, map[string]interface{}{"email": email})
		return nil, err
	}

	s.logger.Audit(ctx, user.ID, "sign_up", "user", true, map[string]interface{}{"role": role})

	user.PasswordHash = ""
	return user, nil
}

// SignIn authenticates an email account and opens a session
func (s *Service) SignIn(ctx context.Context, req *types.SignInRequest) (*types.AuthResult, error) {
	email := normalizeEmail(req.Email)
	invalid := types.NewAuthenticationError(types.ErrCodeInvalidCredentials, "Invalid email or password")

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if types.IsType(err, types.ErrorTypeNotFound) {
			s.failedSignIn(ctx, methodPassword, email)
			return nil, invalid
		}
		return nil, err
	}

	ok, err := s.passwords.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, types.NewInternalError(types.ErrCodeInternalError, "Failed to verify credentials", err)
	}
	if !ok {
		s.failedSignIn(ctx, methodPassword, email)
		return nil, invalid
	}

	principal := types.Principal{
		ID:          user.ID,
		Role:        user.Role,
		Email:       user.Email,
		Username:    user.Username,
		DisplayName: user.DisplayName(),
	}

	result, err := s.openSession(ctx, principal)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordAuthAttempt(methodPassword, true)
	s.logger.Audit(ctx, user.ID, "sign_in", "session", true, map[string]interface{}{"role": user.Role})
	return result, nil
}

// DoctorSignIn authenticates a doctor by identifier and opens a session
func (s *Service) DoctorSignIn(ctx context.Context, req *types.DoctorSignInRequest) (*types.AuthResult, error) {
	doctorID := strings.TrimSpace(req.DoctorID)
	invalid := types.NewAuthenticationError(types.ErrCodeInvalidDoctorLogin, "Invalid doctor credentials")

	if doctorID == "" || req.Password == "" {
		s.failedSignIn(ctx, methodDoctor, doctorID)
		return nil, invalid
	}

	doctor, err := s.doctors.GetByDoctorID(ctx, doctorID)
	if err != nil {
		if types.IsType(err, types.ErrorTypeNotFound) {
			s.failedSignIn(ctx, methodDoctor, doctorID)
			return nil, invalid
		}
		return nil, err
	}

	ok, err := s.passwords.VerifyPassword(doctor.PasswordHash, req.Password)
	if err != nil {
		return nil, types.NewInternalError(types.ErrCodeInternalError, "Failed to verify credentials", err)
	}
	if !ok {
		s.failedSignIn(ctx, methodDoctor, doctorID)
		return nil, invalid
	}

	principal := types.Principal{
		ID:             doctor.ID,
		Role:           types.RoleDoctor,
		Email:          doctor.Email,
		Username:       doctor.DoctorID,
		DisplayName:    doctor.Name,
		DoctorID:       doctor.DoctorID,
		Specialization: doctor.Specialization,
	}

	result, err := s.openSession(ctx, principal)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordAuthAttempt(methodDoctor, true)
	s.logger.Audit(ctx, doctor.ID, "doctor_sign_in", "session", true, map[string]interface{}{"doctor_id": doctor.DoctorID})
	return result, nil
}

// SignOut revokes the session behind token and returns where to send the client
func (s *Service) SignOut(ctx context.Context, token string) (string, error) {
	sessionID, err := s.tokens.SessionID(token)
	if err != nil {
		return "", types.NewAuthenticationError(types.ErrCodeInvalidSession, "Session is invalid or expired")
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return "", types.NewInternalError(types.ErrCodeInternalError, "Failed to sign out", err)
	}

	s.logger.WithContext(ctx).WithField("session_id", sessionID).Info("Session revoked")
	return SignInPath, nil
}

// ResolveSession validates token and checks its session is still live
func (s *Service) ResolveSession(ctx context.Context, token string) (*types.Session, error) {
	invalid := types.NewAuthenticationError(types.ErrCodeInvalidSession, "Session is invalid or expired")

	session, err := s.tokens.Parse(token)
	if err != nil {
		return nil, invalid
	}

	live, err := s.sessions.Exists(ctx, session.ID)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).WithField("session_id", session.ID).Error("Session store lookup failed")
		return nil, invalid
	}
	if !live {
		return nil, invalid
	}

	return session, nil
}

// Profile returns the account behind session
func (s *Service) Profile(ctx context.Context, session *types.Session) (*types.Profile, error) {
	if session.Principal.Role == types.RoleDoctor {
		doctor, err := s.doctors.GetByID(ctx, session.Principal.ID)
		if err != nil {
			return nil, err
		}
		return &types.Profile{
			Principal: types.Principal{
				ID:             doctor.ID,
				Role:           types.RoleDoctor,
				Email:          doctor.Email,
				Username:       doctor.DoctorID,
				DisplayName:    doctor.Name,
				DoctorID:       doctor.DoctorID,
				Specialization: doctor.Specialization,
			},
			CreatedAt: doctor.CreatedAt,
		}, nil
	}

	user, err := s.users.GetByID(ctx, session.Principal.ID)
	if err != nil {
		return nil, err
	}
	return &types.Profile{
		Principal: types.Principal{
			ID:          user.ID,
			Role:        user.Role,
			Email:       user.Email,
			Username:    user.Username,
			DisplayName: user.DisplayName(),
		},
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Phone:     user.Phone,
		CreatedAt: user.CreatedAt,
	}, nil
}

// UpdateProfile changes the editable fields of a user or patient account
func (s *Service) UpdateProfile(ctx context.Context, session *types.Session, updates *types.ProfileUpdates) (*types.Profile, error) {
	if session.Principal.Role == types.RoleDoctor {
		return nil, types.NewAuthorizationError(types.ErrCodeForbidden, "Doctor profiles are managed by an administrator")
	}

	if updates == nil || updates.Empty() {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "No updates provided", nil)
	}

	if updates.Username != nil && strings.TrimSpace(*updates.Username) == "" {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "Username cannot be empty", map[string]interface{}{"field": "username"})
	}

	if err := s.users.Update(ctx, session.Principal.ID, updates); err != nil {
		return nil, err
	}

	s.logger.Audit(ctx, session.Principal.ID, "update_profile", "user", true, nil)
	return s.Profile(ctx, session)
}

// Doctors lists the doctors a patient can book with
func (s *Service) Doctors(ctx context.Context) ([]*types.Doctor, error) {
	doctors, err := s.doctors.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range doctors {
		d.PasswordHash = ""
	}
	return doctors, nil
}

// ProvisionDoctor creates a doctor account
func (s *Service) ProvisionDoctor(ctx context.Context, doctor *types.Doctor, password string) (*types.Doctor, error) {
	doctor.DoctorID = strings.TrimSpace(doctor.DoctorID)
	doctor.Name = strings.TrimSpace(doctor.Name)
	doctor.Email = normalizeEmail(doctor.Email)
	doctor.Specialization = strings.TrimSpace(doctor.Specialization)

	if doctor.DoctorID == "" || doctor.Name == "" {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "Doctor ID and name are required", nil)
	}
	if !strings.Contains(doctor.Email, "@") {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "A valid email is required", map[string]interface{}{"field": "email"})
	}
	if len(password) < MinPasswordLength {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "Password must be at least 6 characters", map[string]interface{}{"field": "password"})
	}

	hash, err := s.passwords.HashPassword(password)
	if err != nil {
		return nil, types.NewInternalError(types.ErrCodeInternalError, "Failed to create doctor", err)
	}

	doctor.ID = uuid.New().String()
	doctor.PasswordHash = hash
	doctor.CreatedAt = s.now().UTC()

	if err := s.doctors.Create(ctx, doctor); err != nil {
		return nil, err
	}

	s.logger.Audit(ctx, doctor.ID, "provision_doctor", "doctor", true, map[string]interface{}{"doctor_id": doctor.DoctorID})

	doctor.PasswordHash = ""
	return doctor, nil
}

// openSession records a new live session for principal and signs its token
func (s *Service) openSession(ctx context.Context, principal types.Principal) (*types.AuthResult, error) {
	now := s.now().UTC()
	session := &types.Session{
		ID:        uuid.New().String(),
		Principal: principal,
		IssuedAt:  now.Truncate(time.Second),
		ExpiresAt: now.Add(s.ttl).Truncate(time.Second),
	}

	if err := s.sessions.Save(ctx, session.ID, s.ttl); err != nil {
		return nil, types.NewInternalError(types.ErrCodeInternalError, "Failed to open session", err)
	}

	token, err := s.tokens.Issue(session)
	if err != nil {
		if delErr := s.sessions.Delete(ctx, session.ID); delErr != nil {
			s.logger.WithContext(ctx).WithError(delErr).WithField("session_id", session.ID).Warn("Failed to discard unissued session")
		}
		return nil, types.NewInternalError(types.ErrCodeInternalError, "Failed to open session", err)
	}

	return &types.AuthResult{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(s.ttl.Seconds()),
		Session:   session,
		Redirect:  DashboardPath(principal.Role),
	}, nil
}

func (s *Service) failedSignIn(ctx context.Context, method, subject string) {
	s.metrics.RecordAuthAttempt(method, false)
	s.logger.Security(ctx, "sign_in_failed", subject, map[string]interface{}{"method": method})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
