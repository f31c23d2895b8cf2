package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"summitly-data/internal/store"
)

const (
	projectKeyPrefix = "summitly:project:"
	cityKeyPrefix    = "summitly:city:"
	popularKey       = "summitly:popular:projects"
)

// Aggregator 热度聚合器
// 计数器落在KV里，热门榜单按需重算并缓存快照
type Aggregator struct {
	kv         store.KV
	popularTTL time.Duration
	logger     *zap.Logger
}

// NewAggregator 创建热度聚合器
func NewAggregator(kv store.KV, popularTTL time.Duration, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		kv:         kv,
		popularTTL: popularTTL,
		logger:     logger,
	}
}

func projectViewsKey(projectID string) string {
	return projectKeyPrefix + projectID + ":views"
}

func projectLeadsKey(projectID string) string {
	return projectKeyPrefix + projectID + ":leads"
}

func cityViewsKey(city string) string {
	slug := strings.ToLower(strings.TrimSpace(city))
	slug = strings.ReplaceAll(slug, " ", "-")
	return cityKeyPrefix + slug + ":views"
}

// ApplyEvent 将单个事件累加到计数器
func (a *Aggregator) ApplyEvent(ctx context.Context, event *EngagementEvent) error {
	if event == nil || event.ProjectID == "" {
		return fmt.Errorf("invalid event: missing project_id")
	}

	switch event.Event {
	case EventPageView:
		if _, err := a.kv.Incr(ctx, projectViewsKey(event.ProjectID)); err != nil {
			return fmt.Errorf("failed to incr project views: %w", err)
		}
		if event.City != "" {
			if _, err := a.kv.Incr(ctx, cityViewsKey(event.City)); err != nil {
				return fmt.Errorf("failed to incr city views: %w", err)
			}
		}

	case EventLead:
		if _, err := a.kv.Incr(ctx, projectLeadsKey(event.ProjectID)); err != nil {
			return fmt.Errorf("failed to incr project leads: %w", err)
		}

	default:
		return fmt.Errorf("unknown event type: %s", event.Event)
	}

	return nil
}

// ProjectStats 读取单个项目的热度计数（计数器不存在视为0）
func (a *Aggregator) ProjectStats(ctx context.Context, projectID string) (*ProjectEngagement, error) {
	if projectID == "" {
		return nil, fmt.Errorf("project_id is required")
	}

	views, err := a.counterValue(ctx, projectViewsKey(projectID))
	if err != nil {
		return nil, err
	}
	leads, err := a.counterValue(ctx, projectLeadsKey(projectID))
	if err != nil {
		return nil, err
	}

	return &ProjectEngagement{
		ProjectID: projectID,
		Views:     views,
		Leads:     leads,
	}, nil
}

// PopularProjects 返回按浏览量排序的热门项目
// 优先读快照，快照过期后扫描计数器重算并回写
func (a *Aggregator) PopularProjects(ctx context.Context, limit int) ([]ProjectEngagement, error) {
	if limit <= 0 {
		limit = 10
	}

	if cached, err := a.kv.Get(ctx, popularKey); err == nil {
		var items []ProjectEngagement
		if err := json.Unmarshal([]byte(cached), &items); err == nil {
			if len(items) > limit {
				items = items[:limit]
			}
			return items, nil
		}
		a.logger.Warn("Failed to unmarshal popular snapshot, rebuilding")
	} else if err != store.ErrMiss {
		return nil, fmt.Errorf("failed to get popular snapshot: %w", err)
	}

	items, err := a.rebuildPopular(ctx)
	if err != nil {
		return nil, err
	}

	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// rebuildPopular 扫描浏览计数器重建榜单并缓存快照
func (a *Aggregator) rebuildPopular(ctx context.Context) ([]ProjectEngagement, error) {
	keys, err := a.kv.ScanKeys(ctx, projectKeyPrefix+"*:views")
	if err != nil {
		return nil, fmt.Errorf("failed to scan view counters: %w", err)
	}

	items := []ProjectEngagement{}
	for _, key := range keys {
		projectID := strings.TrimSuffix(strings.TrimPrefix(key, projectKeyPrefix), ":views")
		if projectID == "" {
			continue
		}

		views, err := a.counterValue(ctx, key)
		if err != nil {
			a.logger.Warn("Failed to read view counter",
				zap.String("key", key),
				zap.Error(err),
			)
			continue
		}
		leads, err := a.counterValue(ctx, projectLeadsKey(projectID))
		if err != nil {
			a.logger.Warn("Failed to read lead counter",
				zap.String("project_id", projectID),
				zap.Error(err),
			)
			continue
		}

		items = append(items, ProjectEngagement{
			ProjectID: projectID,
			Views:     views,
			Leads:     leads,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Views != items[j].Views {
			return items[i].Views > items[j].Views
		}
		return items[i].ProjectID < items[j].ProjectID
	})

	snapshot, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal popular snapshot: %w", err)
	}
	if err := a.kv.Set(ctx, popularKey, string(snapshot), a.popularTTL); err != nil {
		a.logger.Warn("Failed to cache popular snapshot", zap.Error(err))
	}

	return items, nil
}

// counterValue 读取计数器，miss视为0
func (a *Aggregator) counterValue(ctx context.Context, key string) (int64, error) {
	val, err := a.kv.Get(ctx, key)
	if err != nil {
		if err == store.ErrMiss {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get counter %s: %w", key, err)
	}

	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid counter value %q: %w", val, err)
	}
	return n, nil
}
