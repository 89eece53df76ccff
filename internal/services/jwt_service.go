package services

import (
	"errors"
	"fmt"
	"time"

	"auth-service/internal/constants"
	"auth-service/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessClaims is the payload of a short-lived access token. Access tokens are
// stateless: nothing about them is persisted.
type AccessClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a refresh token. ID (jti) names one specific
// generation; Family ties every generation descended from one login together.
type RefreshClaims struct {
	Email  string `json:"email"`
	Role   string `json:"role"`
	Family string `json:"fam"`
	jwt.RegisteredClaims
}

// JWTConfig is built once at startup and handed to NewJWTService. Access and
// refresh tokens are signed with independent secrets.
type JWTConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

type JWTService struct {
	cfg JWTConfig
}

func NewJWTService(cfg JWTConfig) (*JWTService, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("jwt service requires both signing secrets")
	}
	if string(cfg.AccessSecret) == string(cfg.RefreshSecret) {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = constants.DefaultAccessTokenTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = constants.DefaultRefreshTokenTTL
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "auth-service"
	}
	return &JWTService{cfg: cfg}, nil
}

func (s *JWTService) AccessTTL() time.Duration  { return s.cfg.AccessTTL }
func (s *JWTService) RefreshTTL() time.Duration { return s.cfg.RefreshTTL }

// GenerateAccessToken creates a short-lived access token for the user.
func (s *JWTService) GenerateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.cfg.AccessSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// GenerateRefreshToken creates a refresh token carrying a fresh jti and the
// supplied family id. It only signs; persisting the record is the caller's
// concern.
func (s *JWTService) GenerateRefreshToken(user *models.User, familyID uuid.UUID) (string, uuid.UUID, error) {
	now := time.Now()
	jti := uuid.New()
	claims := RefreshClaims{
		Email:  user.Email,
		Role:   user.Role,
		Family: familyID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti.String(),
			Subject:   user.ID.String(),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.RefreshTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.cfg.RefreshSecret)
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return signed, jti, nil
}

// VerifyAccessToken checks signature and expiry of an access token.
func (s *JWTService) VerifyAccessToken(raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, s.keyFunc(s.cfg.AccessSecret))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyRefreshToken checks signature and expiry of a refresh token and
// enforces presence of the claims the rotation protocol depends on.
func (s *JWTService) VerifyRefreshToken(raw string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, s.keyFunc(s.cfg.RefreshSecret))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if err := validateRefreshClaims(claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefreshTokenAllowExpired checks the signature but ignores expiry. Used
// only by logout, which must still honor an expired-but-authentic token.
func (s *JWTService) VerifyRefreshTokenAllowExpired(raw string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	_, err := parser.ParseWithClaims(raw, claims, s.keyFunc(s.cfg.RefreshSecret))
	if err != nil {
		return nil, ErrInvalidToken
	}
	if err := validateRefreshClaims(claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *JWTService) keyFunc(secret []byte) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}
}

func validateRefreshClaims(claims *RefreshClaims) error {
	if claims.Subject == "" || claims.ID == "" || claims.Family == "" {
		return ErrMalformedToken
	}
	return nil
}
