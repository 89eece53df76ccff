package services

import (
	"errors"
	"fmt"
	"time"

	"auth-service/internal/constants"
	"auth-service/internal/models"
	"auth-service/internal/queue"
	"auth-service/pkg/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// EventPublisher pushes auth/security events to the broker. Publishing is
// best-effort: the auth path never fails because the broker is down.
type EventPublisher interface {
	PublishAuthEvent(event *queue.AuthEvent) error
}

// SessionTokens is the pair handed to a client on login, registration, and
// every successful rotation.
type SessionTokens struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"`
	FamilyID     uuid.UUID `json:"-"`
	JTI          uuid.UUID `json:"-"`
}

// AuthService owns the refresh-token rotation protocol: issuing families,
// enforcing single use, detecting reuse, and cascading revocation.
type AuthService struct {
	users  UserStore
	tokens TokenStore
	jwt    *JWTService
	events EventPublisher
}

// NewAuthService wires the protocol to its collaborators. events may be nil
// when no broker is configured.
func NewAuthService(users UserStore, tokens TokenStore, jwtService *JWTService, events EventPublisher) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		jwt:    jwtService,
		events: events,
	}
}

// Register creates the account and starts a fresh token family, same contract
// as Login.
func (s *AuthService) Register(email, name, password string) (*models.User, *SessionTokens, error) {
	email = utils.NormalizeEmail(email)

	if _, err := s.users.FindByEmail(email); err == nil {
		return nil, nil, ErrEmailExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), constants.FingerprintCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:    email,
		Name:     name,
		Password: string(hashed),
		Role:     "user",
	}
	if err := s.users.Create(user); err != nil {
		return nil, nil, err
	}

	tokens, err := s.issueSession(user)
	if err != nil {
		return nil, nil, err
	}
	s.publish("user.register", user.ID, tokens.FamilyID, tokens.JTI, "")
	return user, tokens, nil
}

// Login verifies credentials and starts a fresh token family.
func (s *AuthService) Login(email, password string) (*models.User, *SessionTokens, error) {
	user, err := s.users.FindByEmail(utils.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if user.IsBlocked {
		return nil, nil, ErrAccountBlocked
	}

	tokens, err := s.issueSession(user)
	if err != nil {
		return nil, nil, err
	}

	if err := s.users.UpdateLastLogin(user.ID, time.Now()); err != nil {
		return nil, nil, err
	}

	s.publish("user.login", user.ID, tokens.FamilyID, tokens.JTI, "")
	return user, tokens, nil
}

// Refresh exchanges a refresh token for the next generation in its family.
//
// Any anomaly once the signature has verified -- missing record, consumed or
// revoked record, owner mismatch, stale expiry, fingerprint mismatch, or a
// lost single-use race -- revokes the entire family before the error is
// returned. The blast radius of a suspected leak is the whole lineage, not
// just the token presented.
func (s *AuthService) Refresh(rawToken string) (*SessionTokens, error) {
	claims, err := s.jwt.VerifyRefreshToken(rawToken)
	if err != nil {
		// Unverifiable identity: no store access, no family impact.
		return nil, err
	}

	userID, familyID, jti, err := parseRefreshIdentity(claims)
	if err != nil {
		return nil, err
	}

	record, err := s.tokens.FindByJTI(jti)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return nil, s.violation(familyID, jti, userID, "record missing", ErrTokenInvalidated)
		}
		return nil, err
	}

	if record.Revoked || record.Used || record.UserID != userID || record.IsExpired(time.Now()) {
		return nil, s.violation(familyID, jti, userID, "record consumed, revoked, expired, or owner mismatch", ErrTokenInvalidated)
	}

	if !CompareTokenFingerprint(rawToken, record.TokenHash) {
		// Signature checks out but the bytes were never issued by us.
		return nil, s.violation(familyID, jti, userID, "fingerprint mismatch", ErrTokenReuseDetected)
	}

	outcome, err := s.tokens.Consume(jti)
	if err != nil {
		return nil, err
	}
	if outcome == ConsumeLostRace {
		return nil, s.violation(familyID, jti, userID, "concurrent presentation", ErrTokenReuseDetected)
	}

	user := &models.User{ID: userID, Email: claims.Email, Role: claims.Role}
	next, err := s.issueTokens(user, familyID)
	if err != nil {
		return nil, err
	}
	return next, nil
}

// Logout retires exactly the presented token's record. It never fails
// observably: anything that goes wrong is logged and swallowed.
func (s *AuthService) Logout(rawToken string) {
	if rawToken == "" {
		return
	}

	claims, err := s.jwt.VerifyRefreshTokenAllowExpired(rawToken)
	if err != nil {
		// Cannot trust the claimed jti; never act on an unverified payload.
		utils.LogWarn("logout", "refresh token signature could not be verified")
		return
	}

	jti, err := uuid.Parse(claims.ID)
	if err != nil {
		utils.LogWarn("logout", "refresh token carries a non-uuid jti")
		return
	}

	if err := s.tokens.RevokeByJTI(jti); err != nil {
		utils.LogError("logout: revoke token", err)
		return
	}

	if userID, parseErr := uuid.Parse(claims.Subject); parseErr == nil {
		s.publish("user.logout", userID, uuid.Nil, jti, "")
	}
}

// LogoutAll revokes every live refresh record of the user.
func (s *AuthService) LogoutAll(userID uuid.UUID) error {
	if err := s.tokens.RevokeAllForUser(userID); err != nil {
		return err
	}
	s.publish("user.logout_all", userID, uuid.Nil, uuid.Nil, "")
	return nil
}

// issueSession starts a brand-new family for the user.
func (s *AuthService) issueSession(user *models.User) (*SessionTokens, error) {
	return s.issueTokens(user, uuid.New())
}

// issueTokens mints an access token plus the next refresh generation in the
// given family and persists its record. The raw refresh token is returned to
// the caller and never stored.
func (s *AuthService) issueTokens(user *models.User, familyID uuid.UUID) (*SessionTokens, error) {
	accessToken, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}

	rawRefresh, jti, err := s.jwt.GenerateRefreshToken(user, familyID)
	if err != nil {
		return nil, err
	}

	tokenHash, err := HashTokenFingerprint(rawRefresh)
	if err != nil {
		return nil, err
	}

	record := &models.RefreshToken{
		UserID:    user.ID,
		FamilyID:  familyID,
		JTI:       jti,
		TokenHash: tokenHash,
		ExpiresAt: time.Now().Add(s.jwt.RefreshTTL()),
	}
	if err := s.tokens.Create(record); err != nil {
		return nil, err
	}

	return &SessionTokens{
		AccessToken:  accessToken,
		RefreshToken: rawRefresh,
		TokenType:    constants.BearerScheme,
		ExpiresIn:    int64(s.jwt.AccessTTL().Seconds()),
		FamilyID:     familyID,
		JTI:          jti,
	}, nil
}

// violation cascades a revoke across the family, reports it, and hands back
// the taxonomy error for the caller. The revoke completes before the caller
// sees the failure so no sibling token stays usable behind it.
func (s *AuthService) violation(familyID, jti, userID uuid.UUID, reason string, cause error) error {
	if err := s.tokens.RevokeFamily(familyID); err != nil {
		return err
	}
	utils.LogWarn("refresh", fmt.Sprintf("family %s revoked: %s", familyID, reason))
	s.publish("family.revoked", userID, familyID, jti, reason)
	if errors.Is(cause, ErrTokenReuseDetected) {
		s.publish("token.reuse_detected", userID, familyID, jti, reason)
	}
	return cause
}

func (s *AuthService) publish(eventType string, userID, familyID, jti uuid.UUID, reason string) {
	if s.events == nil {
		return
	}
	event := &queue.AuthEvent{
		Type:     eventType,
		UserID:   userID.String(),
		Reason:   reason,
		Occurred: time.Now(),
	}
	if familyID != uuid.Nil {
		event.FamilyID = familyID.String()
	}
	if jti != uuid.Nil {
		event.JTI = jti.String()
	}
	if err := s.events.PublishAuthEvent(event); err != nil {
		utils.LogError("publish auth event", err)
	}
}

func parseRefreshIdentity(claims *RefreshClaims) (userID, familyID, jti uuid.UUID, err error) {
	userID, err = uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, ErrMalformedToken
	}
	familyID, err = uuid.Parse(claims.Family)
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, ErrMalformedToken
	}
	jti, err = uuid.Parse(claims.ID)
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, ErrMalformedToken
	}
	return userID, familyID, jti, nil
}
