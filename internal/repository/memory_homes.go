package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"summitly-data/internal/domain"
)

// MemoryHomesRepo supports the homeowner dashboard when DB is disabled.
type MemoryHomesRepo struct {
	mu    sync.RWMutex
	homes map[string]domain.Home // homeID -> Home
}

func NewMemoryHomesRepo() *MemoryHomesRepo {
	return &MemoryHomesRepo{
		homes: map[string]domain.Home{},
	}
}

// 确保实现了接口
var _ HomesRepository = (*MemoryHomesRepo)(nil)

func (r *MemoryHomesRepo) GetHome(_ context.Context, homeID string) (*domain.Home, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.homes[homeID]
	if !ok {
		return nil, ErrNotFound
	}
	return &h, nil
}

func (r *MemoryHomesRepo) ListHomesByOwner(_ context.Context, ownerEmail string) ([]*domain.Home, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := []domain.Home{}
	for _, h := range r.homes {
		if strings.EqualFold(h.OwnerEmail, ownerEmail) {
			all = append(all, h)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt < all[j].CreatedAt
	})

	out := make([]*domain.Home, 0, len(all))
	for i := range all {
		h := all[i]
		out = append(out, &h)
	}
	return out, nil
}

func (r *MemoryHomesRepo) CreateHome(_ context.Context, home *domain.Home) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	stored := *home
	stored.HomeID = uuid.NewString()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	r.homes[stored.HomeID] = stored
	return stored.HomeID, nil
}

func (r *MemoryHomesRepo) UpdateHome(_ context.Context, homeID string, home *domain.Home) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.homes[homeID]
	if !ok {
		return ErrNotFound
	}

	stored := *home
	stored.HomeID = homeID
	stored.OwnerEmail = current.OwnerEmail
	stored.CreatedAt = current.CreatedAt
	stored.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	r.homes[homeID] = stored
	return nil
}

func (r *MemoryHomesRepo) DeleteHome(_ context.Context, homeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.homes[homeID]; !ok {
		return ErrNotFound
	}
	delete(r.homes, homeID)
	return nil
}
