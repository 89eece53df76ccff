package services

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"auth-service/internal/constants"
	"auth-service/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ConsumeResult tags the outcome of the single-use transition on a record.
type ConsumeResult int

const (
	// ConsumeOK means this caller flipped used false->true.
	ConsumeOK ConsumeResult = iota
	// ConsumeLostRace means another caller (or logout) got there first. Two
	// presentations of one unconsumed token is itself evidence of duplication.
	ConsumeLostRace
)

// TokenStore persists refresh-token records. The protocol never deletes rows;
// Used and Revoked are monotonic flags.
type TokenStore interface {
	Create(record *models.RefreshToken) error
	FindByJTI(jti uuid.UUID) (*models.RefreshToken, error)

	// Consume performs the linearizable used=false->true transition as a
	// single conditional update. It must never be a read followed by a write.
	Consume(jti uuid.UUID) (ConsumeResult, error)

	// RevokeFamily flags every record in the lineage, whatever its Used
	// state. Idempotent.
	RevokeFamily(familyID uuid.UUID) error

	// RevokeByJTI flags exactly one record used and revoked; siblings in the
	// same family are untouched.
	RevokeByJTI(jti uuid.UUID) error

	// RevokeAllForUser flags every live record of one user ("sign out
	// everywhere").
	RevokeAllForUser(userID uuid.UUID) error

	// CleanupExpired prunes rows that are expired or already flagged. A
	// maintenance concern, never called from the protocol itself.
	CleanupExpired() (int64, error)
}

// GormTokenStore implements TokenStore on Postgres via GORM.
type GormTokenStore struct {
	db *gorm.DB
}

func NewGormTokenStore(db *gorm.DB) *GormTokenStore {
	return &GormTokenStore{db: db}
}

func (s *GormTokenStore) Create(record *models.RefreshToken) error {
	if err := s.db.Create(record).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (s *GormTokenStore) FindByJTI(jti uuid.UUID) (*models.RefreshToken, error) {
	var record models.RefreshToken
	err := s.db.Where("jti = ?", jti).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return &record, nil
}

func (s *GormTokenStore) Consume(jti uuid.UUID) (ConsumeResult, error) {
	result := s.db.Model(&models.RefreshToken{}).
		Where("jti = ? AND used = ? AND revoked = ?", jti, false, false).
		Update("used", true)
	if result.Error != nil {
		return ConsumeLostRace, fmt.Errorf("%w: %v", ErrStorageUnavailable, result.Error)
	}
	if result.RowsAffected == 0 {
		return ConsumeLostRace, nil
	}
	return ConsumeOK, nil
}

func (s *GormTokenStore) RevokeFamily(familyID uuid.UUID) error {
	err := s.db.Model(&models.RefreshToken{}).
		Where("family_id = ?", familyID).
		Update("revoked", true).Error
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (s *GormTokenStore) RevokeByJTI(jti uuid.UUID) error {
	err := s.db.Model(&models.RefreshToken{}).
		Where("jti = ?", jti).
		Updates(map[string]interface{}{"used": true, "revoked": true}).Error
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (s *GormTokenStore) RevokeAllForUser(userID uuid.UUID) error {
	err := s.db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (s *GormTokenStore) CleanupExpired() (int64, error) {
	result := s.db.Where("expires_at < ? OR revoked = ?", time.Now(), true).
		Delete(&models.RefreshToken{})
	if result.Error != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, result.Error)
	}
	return result.RowsAffected, nil
}

// fingerprint collapses the raw token into a fixed-size digest so the bcrypt
// input stays under its 72-byte limit.
func fingerprint(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}

// HashTokenFingerprint hashes the fingerprint of a raw refresh token for
// storage. A slow salted hash is used deliberately so a leaked column resists
// offline brute force.
func HashTokenFingerprint(rawToken string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(fingerprint(rawToken)), constants.FingerprintCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash token fingerprint: %w", err)
	}
	return string(hash), nil
}

// CompareTokenFingerprint reports whether rawToken matches a stored hash.
func CompareTokenFingerprint(rawToken, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(fingerprint(rawToken))) == nil
}
