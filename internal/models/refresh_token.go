package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is one generation of a rotating refresh token. The raw token is
// never stored; TokenHash keeps a bcrypt hash of its SHA-256 fingerprint so a
// presented token can be matched against what was actually issued.
//
// Used and Revoked only ever move from false to true. Rows are flagged rather
// than deleted so a replayed token can still be recognized; pruning of dead
// rows is a maintenance job, not part of the protocol.
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid()" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	FamilyID  uuid.UUID `gorm:"type:uuid;not null;index" json:"familyId"`
	JTI       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"jti"`
	TokenHash string    `gorm:"not null" json:"-"`
	Used      bool      `gorm:"not null;default:false" json:"used"`
	Revoked   bool      `gorm:"not null;default:false" json:"revoked"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsExpired reports whether the record itself is past its expiry, independent
// of the Used/Revoked flags.
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
