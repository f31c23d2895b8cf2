package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"summitly-data/internal/domain"
)

// MemoryLeadsRepo supports lead capture when DB is disabled.
type MemoryLeadsRepo struct {
	mu    sync.RWMutex
	leads map[string]domain.Lead // leadID -> Lead
}

func NewMemoryLeadsRepo() *MemoryLeadsRepo {
	return &MemoryLeadsRepo{
		leads: map[string]domain.Lead{},
	}
}

// 确保实现了接口
var _ LeadsRepository = (*MemoryLeadsRepo)(nil)

func (r *MemoryLeadsRepo) CreateLead(_ context.Context, lead *domain.Lead) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *lead
	stored.LeadID = uuid.NewString()
	stored.CreatedAt = time.Now().UTC().Format(time.RFC3339)

	r.leads[stored.LeadID] = stored
	return stored.LeadID, nil
}

func (r *MemoryLeadsRepo) ListLeads(_ context.Context, filter LeadFilters, page, size int) ([]*domain.Lead, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := []domain.Lead{}
	for _, l := range r.leads {
		if filter.ProjectID != "" && (!l.ProjectID.Valid || l.ProjectID.String != filter.ProjectID) {
			continue
		}
		if filter.Source != "" && l.Source != filter.Source {
			continue
		}
		all = append(all, l)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt > all[j].CreatedAt // 新线索在前
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

	out := make([]*domain.Lead, 0, end-start)
	for i := start; i < end; i++ {
		l := all[i]
		out = append(out, &l)
	}
	return out, total, nil
}
