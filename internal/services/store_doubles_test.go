package services

import (
	"strings"
	"sync"
	"time"

	"auth-service/internal/models"

	"github.com/google/uuid"
)

// memoryTokenStore is an in-memory TokenStore whose Consume is atomic under a
// mutex, mirroring the conditional-update semantics of the SQL store.
type memoryTokenStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]*models.RefreshToken
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{records: make(map[uuid.UUID]*models.RefreshToken)}
}

func (s *memoryTokenStore) Create(record *models.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.CreatedAt = time.Now()
	clone := *record
	s.records[record.JTI] = &clone
	return nil
}

func (s *memoryTokenStore) FindByJTI(jti uuid.UUID) (*models.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[jti]
	if !ok {
		return nil, ErrTokenNotFound
	}
	clone := *record
	return &clone, nil
}

func (s *memoryTokenStore) Consume(jti uuid.UUID) (ConsumeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[jti]
	if !ok || record.Used || record.Revoked {
		return ConsumeLostRace, nil
	}
	record.Used = true
	return ConsumeOK, nil
}

func (s *memoryTokenStore) RevokeFamily(familyID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range s.records {
		if record.FamilyID == familyID {
			record.Revoked = true
		}
	}
	return nil
}

func (s *memoryTokenStore) RevokeByJTI(jti uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record, ok := s.records[jti]; ok {
		record.Used = true
		record.Revoked = true
	}
	return nil
}

func (s *memoryTokenStore) RevokeAllForUser(userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range s.records {
		if record.UserID == userID {
			record.Revoked = true
		}
	}
	return nil
}

func (s *memoryTokenStore) CleanupExpired() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var pruned int64
	for jti, record := range s.records {
		if record.Revoked || record.IsExpired(time.Now()) {
			delete(s.records, jti)
			pruned++
		}
	}
	return pruned, nil
}

// setExpiry backdates or postdates a record directly, bypassing the protocol.
func (s *memoryTokenStore) setExpiry(jti uuid.UUID, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record, ok := s.records[jti]; ok {
		record.ExpiresAt = at
	}
}

func (s *memoryTokenStore) get(jti uuid.UUID) *models.RefreshToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[jti]
	if !ok {
		return nil
	}
	clone := *record
	return &clone
}

func (s *memoryTokenStore) familyRecords(familyID uuid.UUID) []*models.RefreshToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.RefreshToken
	for _, record := range s.records {
		if record.FamilyID == familyID {
			clone := *record
			out = append(out, &clone)
		}
	}
	return out
}

// memoryUserStore is an in-memory UserStore.
type memoryUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{users: make(map[uuid.UUID]*models.User)}
}

func (s *memoryUserStore) Create(user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *memoryUserStore) FindByEmail(email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *memoryUserStore) FindByID(id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (s *memoryUserStore) UpdateLastLogin(id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[id]; ok {
		user.LastLoginAt = &at
	}
	return nil
}

func (s *memoryUserStore) setBlocked(id uuid.UUID, blocked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[id]; ok {
		user.IsBlocked = blocked
	}
}
