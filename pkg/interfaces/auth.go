package interfaces

import (
	"context"
	"time"

	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/types"
)

// AuthService defines sign-up, sign-in and session resolution for every role
type AuthService interface {
	// Accounts
	SignUp(ctx context.Context, req *types.SignUpRequest) (*types.User, error)
	Profile(ctx context.Context, session *types.Session) (*types.Profile, error)
	UpdateProfile(ctx context.Context, session *types.Session, updates *types.ProfileUpdates) (*types.Profile, error)

	// Sessions
	SignIn(ctx context.Context, req *types.SignInRequest) (*types.AuthResult, error)
	DoctorSignIn(ctx context.Context, req *types.DoctorSignInRequest) (*types.AuthResult, error)
	SignOut(ctx context.Context, token string) (string, error)
	ResolveSession(ctx context.Context, token string) (*types.Session, error)
}

// UserRepository defines persistence for email accounts
type UserRepository interface {
	Create(ctx context.Context, user *types.User) error
	GetByID(ctx context.Context, id string) (*types.User, error)
	GetByEmail(ctx context.Context, email string) (*types.User, error)
	Update(ctx context.Context, id string, updates *types.ProfileUpdates) error
}

// DoctorRepository defines persistence for doctor accounts
type DoctorRepository interface {
	Create(ctx context.Context, doctor *types.Doctor) error
	GetByID(ctx context.Context, id string) (*types.Doctor, error)
	GetByDoctorID(ctx context.Context, doctorID string) (*types.Doctor, error)
	List(ctx context.Context) ([]*types.Doctor, error)
}

// SessionStore tracks which session ids are still live
type SessionStore interface {
	Save(ctx context.Context, sessionID string, ttl time.Duration) error
	Exists(ctx context.Context, sessionID string) (bool, error)
	Delete(ctx context.Context, sessionID string) error
	Ping(ctx context.Context) error
}

// PasswordManager defines the interface for password operations
type PasswordManager interface {
	HashPassword(password string) (string, error)
	VerifyPassword(hashedPassword, password string) (bool, error)
}

// TokenManager issues and parses signed session tokens
type TokenManager interface {
	Issue(session *types.Session) (string, error)
	Parse(token string) (*types.Session, error)
	SessionID(token string) (string, error)
}
