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

// MemoryProjectsRepo supports the admin and listing pages when DB is disabled.
// 数据只存在进程内，重启即丢，仅用于本地开发。
type MemoryProjectsRepo struct {
	mu       sync.RWMutex
	projects map[string]domain.Project // projectID -> Project
}

func NewMemoryProjectsRepo() *MemoryProjectsRepo {
	return &MemoryProjectsRepo{
		projects: map[string]domain.Project{},
	}
}

// 确保实现了接口
var _ ProjectsRepository = (*MemoryProjectsRepo)(nil)

func (r *MemoryProjectsRepo) GetProject(_ context.Context, projectID string) (*domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.projects[projectID]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *MemoryProjectsRepo) GetProjectBySlug(_ context.Context, slug string) (*domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.projects {
		if p.Slug == slug {
			out := p
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryProjectsRepo) ListProjects(_ context.Context, filter ProjectFilters, page, size int) ([]*domain.Project, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := []domain.Project{}
	for _, p := range r.projects {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.City != "" && !strings.EqualFold(p.City, filter.City) {
			continue
		}
		if filter.Progress != nil && p.Progress != *filter.Progress {
			continue
		}
		if filter.Featured != nil && p.Featured != *filter.Featured {
			continue
		}
		if filter.MinPrice > 0 && (!p.PriceFrom.Valid || p.PriceFrom.Float64 < filter.MinPrice) {
			continue
		}
		if filter.MaxPrice > 0 && (!p.PriceFrom.Valid || p.PriceFrom.Float64 > filter.MaxPrice) {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			continue
		}
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt > all[j].CreatedAt // 新盘在前
	})

	total := len(all)
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	out := make([]*domain.Project, 0, end-start)
	for i := start; i < end; i++ {
		p := all[i]
		out = append(out, &p)
	}
	return out, total, nil
}

func (r *MemoryProjectsRepo) ListCities(_ context.Context) ([]CityCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := map[string]int{}
	for _, p := range r.projects {
		if p.Status != domain.ProjectStatusPublished || p.City == "" {
			continue
		}
		counts[p.City]++
	}

	cities := make([]CityCount, 0, len(counts))
	for city, n := range counts {
		cities = append(cities, CityCount{City: city, Count: n})
	}
	sort.Slice(cities, func(i, j int) bool {
		if cities[i].Count != cities[j].Count {
			return cities[i].Count > cities[j].Count
		}
		return cities[i].City < cities[j].City
	})
	return cities, nil
}

func (r *MemoryProjectsRepo) CreateProject(_ context.Context, project *domain.Project) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.projects {
		if p.Slug == project.Slug {
			return "", ErrDuplicateSlug
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	stored := *project
	stored.ProjectID = uuid.NewString()
	if stored.Status == "" {
		stored.Status = domain.ProjectStatusDraft
	}
	stored.CreatedAt = now
	stored.UpdatedAt = now

	r.projects[stored.ProjectID] = stored
	return stored.ProjectID, nil
}

func (r *MemoryProjectsRepo) UpdateProject(_ context.Context, projectID string, project *domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.projects[projectID]
	if !ok {
		return ErrNotFound
	}
	for id, p := range r.projects {
		if id != projectID && p.Slug == project.Slug {
			return ErrDuplicateSlug
		}
	}

	stored := *project
	stored.ProjectID = projectID
	stored.CreatedAt = current.CreatedAt
	stored.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	r.projects[projectID] = stored
	return nil
}

func (r *MemoryProjectsRepo) SetProjectStatus(_ context.Context, projectID string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.projects[projectID]
	if !ok {
		return ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	r.projects[projectID] = p
	return nil
}

func (r *MemoryProjectsRepo) SetProjectCoordinates(_ context.Context, projectID string, lat, lng float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.projects[projectID]
	if !ok {
		return ErrNotFound
	}
	p.Latitude.Valid = true
	p.Latitude.Float64 = lat
	p.Longitude.Valid = true
	p.Longitude.Float64 = lng
	p.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	r.projects[projectID] = p
	return nil
}

func (r *MemoryProjectsRepo) DeleteProject(ctx context.Context, projectID string) error {
	return r.SetProjectStatus(ctx, projectID, domain.ProjectStatusArchived)
}

// HasProject 项目是否存在（内存模式下给单元Repository做外键检查）
func (r *MemoryProjectsRepo) HasProject(projectID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.projects[projectID]
	return ok
}
