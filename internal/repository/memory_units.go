package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"summitly-data/internal/domain"
)

// MemoryUnitsRepo supports unit management when DB is disabled.
// projects 引用用于外键检查（unit.project_id 必须指向存在的项目）
type MemoryUnitsRepo struct {
	mu       sync.RWMutex
	units    map[string]domain.Unit // unitID -> Unit
	projects *MemoryProjectsRepo
}

func NewMemoryUnitsRepo(projects *MemoryProjectsRepo) *MemoryUnitsRepo {
	return &MemoryUnitsRepo{
		units:    map[string]domain.Unit{},
		projects: projects,
	}
}

// 确保实现了接口
var _ UnitsRepository = (*MemoryUnitsRepo)(nil)

func (r *MemoryUnitsRepo) GetUnit(_ context.Context, unitID string) (*domain.Unit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.units[unitID]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *MemoryUnitsRepo) ListUnits(_ context.Context, projectID string, filter UnitFilters, page, size int) ([]*domain.Unit, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := []domain.Unit{}
	for _, u := range r.units {
		if u.ProjectID != projectID {
			continue
		}
		if filter.Available != nil && u.Available != *filter.Available {
			continue
		}
		if filter.MinBeds > 0 && u.Beds < filter.MinBeds {
			continue
		}
		if filter.MaxPrice > 0 && u.Price > filter.MaxPrice {
			continue
		}
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Floor != all[j].Floor {
			return all[i].Floor < all[j].Floor
		}
		return all[i].UnitNumber < all[j].UnitNumber
	})

	total := len(all)
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 50
	}
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	out := make([]*domain.Unit, 0, end-start)
	for i := start; i < end; i++ {
		u := all[i]
		out = append(out, &u)
	}
	return out, total, nil
}

// mlsTaken MLS编号是否已被其他单元占用（调用方需持锁）
func (r *MemoryUnitsRepo) mlsTaken(mls string, excludeUnitID string) bool {
	if mls == "" {
		return false
	}
	for id, u := range r.units {
		if id != excludeUnitID && u.MLSNumber.Valid && u.MLSNumber.String == mls {
			return true
		}
	}
	return false
}

func (r *MemoryUnitsRepo) CreateUnit(_ context.Context, unit *domain.Unit) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.projects != nil && !r.projects.HasProject(unit.ProjectID) {
		return "", ErrProjectGone
	}
	if unit.MLSNumber.Valid && r.mlsTaken(unit.MLSNumber.String, "") {
		return "", ErrDuplicateMLS
	}

	now := time.Now().UTC().Format(time.RFC3339)
	stored := *unit
	stored.UnitID = uuid.NewString()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	r.units[stored.UnitID] = stored
	return stored.UnitID, nil
}

func (r *MemoryUnitsRepo) UpsertUnitByNumber(ctx context.Context, unit *domain.Unit) (string, error) {
	r.mu.Lock()

	// 已存在同项目同单元号则更新
	for id, u := range r.units {
		if u.ProjectID == unit.ProjectID && u.UnitNumber == unit.UnitNumber {
			if unit.MLSNumber.Valid && r.mlsTaken(unit.MLSNumber.String, id) {
				r.mu.Unlock()
				return "", ErrDuplicateMLS
			}
			stored := *unit
			stored.UnitID = id
			stored.CreatedAt = u.CreatedAt
			stored.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
			r.units[id] = stored
			r.mu.Unlock()
			return id, nil
		}
	}
	r.mu.Unlock()

	return r.CreateUnit(ctx, unit)
}

func (r *MemoryUnitsRepo) UpdateUnit(_ context.Context, unitID string, unit *domain.Unit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.units[unitID]
	if !ok {
		return ErrNotFound
	}
	if unit.MLSNumber.Valid && r.mlsTaken(unit.MLSNumber.String, unitID) {
		return ErrDuplicateMLS
	}

	stored := *unit
	stored.UnitID = unitID
	stored.ProjectID = current.ProjectID
	stored.CreatedAt = current.CreatedAt
	stored.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	r.units[unitID] = stored
	return nil
}

func (r *MemoryUnitsRepo) DeleteUnit(_ context.Context, unitID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.units[unitID]; !ok {
		return ErrNotFound
	}
	delete(r.units, unitID)
	return nil
}
