package repository

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bookshelf_backend/internals/features/users/auth/model"
)

type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	// PurgeExpired drops entries whose token expired before now.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

/* ====================== GORM ====================== */

type GormRevocationStore struct {
	DB *gorm.DB
}

func NewGormRevocationStore(db *gorm.DB) *GormRevocationStore {
	return &GormRevocationStore{DB: db}
}

func (s *GormRevocationStore) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	row := model.RevokedToken{TokenID: tokenID, ExpiresAt: expiresAt}
	return s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "token_id"}}, DoNothing: true}).
		Create(&row).Error
}

func (s *GormRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&model.RevokedToken{}).
		Where("token_id = ?", tokenID).
		Count(&n).Error
	return n > 0, err
}

func (s *GormRevocationStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res := s.DB.WithContext(ctx).Where("expires_at < ?", now).Delete(&model.RevokedToken{})
	return res.RowsAffected, res.Error
}

/* ====================== MEMORY ====================== */

type MemoryRevocationStore struct {
	mu      sync.RWMutex
	expires map[string]time.Time
}

func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{expires: map[string]time.Time{}}
}

func (s *MemoryRevocationStore) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expires[tokenID]; !ok {
		s.expires[tokenID] = expiresAt
	}
	return nil
}

func (s *MemoryRevocationStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.expires[tokenID]
	return ok, nil
}

func (s *MemoryRevocationStore) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, exp := range s.expires {
		if exp.Before(now) {
			delete(s.expires, id)
			n++
		}
	}
	return n, nil
}
