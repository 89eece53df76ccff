package services

import (
	"testing"
	"time"

	"auth-service/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testAccessSecret  = []byte("test-access-secret-0123456789abcdef")
	testRefreshSecret = []byte("test-refresh-secret-0123456789abcdef")
)

func newTestJWTService(t *testing.T, accessTTL, refreshTTL time.Duration) *JWTService {
	t.Helper()
	svc, err := NewJWTService(JWTConfig{
		AccessSecret:  testAccessSecret,
		RefreshSecret: testRefreshSecret,
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
	})
	require.NoError(t, err)
	return svc
}

func testUser() *models.User {
	return &models.User{
		ID:    uuid.New(),
		Email: "user@example.com",
		Role:  "user",
	}
}

func TestNewJWTServiceRejectsSharedSecrets(t *testing.T) {
	_, err := NewJWTService(JWTConfig{
		AccessSecret:  testAccessSecret,
		RefreshSecret: testAccessSecret,
	})
	assert.Error(t, err)
}

func TestNewJWTServiceRejectsMissingSecrets(t *testing.T) {
	_, err := NewJWTService(JWTConfig{AccessSecret: testAccessSecret})
	assert.Error(t, err)
}

func TestAccessTokenRoundtrip(t *testing.T) {
	svc := newTestJWTService(t, 15*time.Minute, time.Hour)
	user := testUser()

	raw, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)

	claims, err := svc.VerifyAccessToken(raw)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, user.Role, claims.Role)
}

func TestRefreshTokenRoundtrip(t *testing.T) {
	svc := newTestJWTService(t, 15*time.Minute, time.Hour)
	user := testUser()
	familyID := uuid.New()

	raw, jti, err := svc.GenerateRefreshToken(user, familyID)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, jti)

	claims, err := svc.VerifyRefreshToken(raw)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, jti.String(), claims.ID)
	assert.Equal(t, familyID.String(), claims.Family)
}

func TestRefreshTokenJTIsAreUnique(t *testing.T) {
	svc := newTestJWTService(t, 15*time.Minute, time.Hour)
	user := testUser()
	familyID := uuid.New()

	_, first, err := svc.GenerateRefreshToken(user, familyID)
	require.NoError(t, err)
	_, second, err := svc.GenerateRefreshToken(user, familyID)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	svc := newTestJWTService(t, 15*time.Minute, time.Hour)
	user := testUser()

	access, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)
	refresh, _, err := svc.GenerateRefreshToken(user, uuid.New())
	require.NoError(t, err)

	_, err = svc.VerifyRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.VerifyAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	svc := newTestJWTService(t, 15*time.Minute, time.Hour)
	raw, _, err := svc.GenerateRefreshToken(testUser(), uuid.New())
	require.NoError(t, err)

	tampered := raw[:len(raw)-2] + "xx"
	_, err = svc.VerifyRefreshToken(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := newTestJWTService(t, 15*time.Minute, time.Hour)
	_, err := svc.VerifyRefreshToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredRefreshToken(t *testing.T) {
	svc := newTestJWTService(t, 15*time.Minute, time.Millisecond)
	raw, _, err := svc.GenerateRefreshToken(testUser(), uuid.New())
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = svc.VerifyRefreshToken(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAllowExpiredStillChecksSignature(t *testing.T) {
	svc := newTestJWTService(t, 15*time.Minute, time.Millisecond)
	raw, jti, err := svc.GenerateRefreshToken(testUser(), uuid.New())
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	claims, err := svc.VerifyRefreshTokenAllowExpired(raw)
	require.NoError(t, err)
	assert.Equal(t, jti.String(), claims.ID)

	tampered := raw[:len(raw)-2] + "xx"
	_, err = svc.VerifyRefreshTokenAllowExpired(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsMissingProtocolClaims(t *testing.T) {
	svc := newTestJWTService(t, 15*time.Minute, time.Hour)

	// Correctly signed refresh token without jti or fam.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	raw, err := token.SignedString(testRefreshSecret)
	require.NoError(t, err)

	_, err = svc.VerifyRefreshToken(raw)
	assert.ErrorIs(t, err, ErrMalformedToken)
}

func TestVerifyRejectsUnexpectedSigningMethod(t *testing.T) {
	svc := newTestJWTService(t, 15*time.Minute, time.Hour)

	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ID:        uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.VerifyRefreshToken(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestFingerprintHashing(t *testing.T) {
	hash, err := HashTokenFingerprint("some-raw-token")
	require.NoError(t, err)

	assert.True(t, CompareTokenFingerprint("some-raw-token", hash))
	assert.False(t, CompareTokenFingerprint("another-token", hash))
}
