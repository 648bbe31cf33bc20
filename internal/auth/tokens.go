package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/types"
)

// SessionClaims represents the JWT claims of a session token.
// The registered ID claim carries the session id.
type SessionClaims struct {
	Role           string `json:"role"`
	Email          string `json:"email,omitempty"`
	Username       string `json:"username,omitempty"`
	DisplayName    string `json:"name"`
	DoctorID       string `json:"doctor_id,omitempty"`
	Specialization string `json:"specialization,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager signs and validates HS256 session tokens
type TokenManager struct {
	secret   []byte
	issuer   string
	audience string
	now      func() time.Time
}

// NewTokenManager creates a new token manager
func NewTokenManager(secret, issuer, audience string) *TokenManager {
	return &TokenManager{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		now:      time.Now,
	}
}

// Issue signs a token for session
func (tm *TokenManager) Issue(session *types.Session) (string, error) {
	p := session.Principal
	claims := &SessionClaims{
		Role:           string(p.Role),
		Email:          p.Email,
		Username:       p.Username,
		DisplayName:    p.DisplayName,
		DoctorID:       p.DoctorID,
		Specialization: p.Specialization,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Subject:   p.ID,
			Issuer:    tm.issuer,
			Audience:  jwt.ClaimStrings{tm.audience},
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			NotBefore: jwt.NewNumericDate(session.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse validates the signature, issuer, audience and expiry of a token
// and returns the session it describes
func (tm *TokenManager) Parse(tokenString string) (*types.Session, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tm.issuer),
		jwt.WithAudience(tm.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	role := types.Role(claims.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("invalid role claim: %q", claims.Role)
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, fmt.Errorf("token is missing session or subject")
	}

	return sessionFromClaims(claims, role), nil
}

// SessionID returns the session id of a correctly signed token even when
// it has expired, so an expired session can still be signed out
func (tm *TokenManager) SessionID(tokenString string) (string, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	if claims.ID == "" {
		return "", fmt.Errorf("token is missing session id")
	}
	return claims.ID, nil
}

func sessionFromClaims(claims *SessionClaims, role types.Role) *types.Session {
	session := &types.Session{
		ID: claims.ID,
		Principal: types.Principal{
			ID:             claims.Subject,
			Role:           role,
			Email:          claims.Email,
			Username:       claims.Username,
			DisplayName:    claims.DisplayName,
			DoctorID:       claims.DoctorID,
			Specialization: claims.Specialization,
		},
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}
	return session
}
