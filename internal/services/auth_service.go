package services

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"resumebuilder/internal/apperrors"
	"resumebuilder/internal/config"
)

type AuthService interface {
	HashPassword(plain string) (string, error)
	VerifyPassword(plain, hash string) bool
	IssueToken(userID uuid.UUID) (string, error)
	VerifyToken(token string) (*SessionClaims, error)
	CookieTTL() time.Duration
}

type SessionClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

type authService struct {
	secret     []byte
	tokenTTL   time.Duration
	cookieTTL  time.Duration
	bcryptCost int
}

func NewAuthService(cfg config.AuthConfig) AuthService {
	return &authService{
		secret:     []byte(cfg.JWTSecret),
		tokenTTL:   cfg.TokenTTL,
		cookieTTL:  cfg.CookieTTL,
		bcryptCost: cfg.BcryptCost,
	}
}

func (s *authService) HashPassword(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (s *authService) VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// IssueToken mints a stateless session credential: user id plus issuance
// time, HMAC-signed. There is no revocation list; signout is a client-side
// cookie discard.
func (s *authService) IssueToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *authService) VerifyToken(tokenStr string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		// HMAC only; reject alg confusion
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.Unauthenticated("Invalid token or token verification failed")
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return nil, apperrors.Unauthenticated("Invalid token or token verification failed")
	}
	return claims, nil
}

func (s *authService) CookieTTL() time.Duration { return s.cookieTTL }
