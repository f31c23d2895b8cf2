package service

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"summitly-data/internal/store"
	"summitly-data/internal/valuation"
)

// MarketSnapshot 某城市的行情快照
type MarketSnapshot struct {
	City               string                   `json:"city"`
	MedianPricePerSqft float64                  `json:"median_price_per_sqft"`
	AsOfYear           int                      `json:"as_of_year"`
	History            []valuation.MonthlyIndex `json:"history,omitempty"` // 按月升序
}

// MarketDataProvider 行情数据源接口
// 未知城市返回 (nil, nil)，调用方按无行情处理
type MarketDataProvider interface {
	Snapshot(ctx context.Context, city string) (*MarketSnapshot, error)
}

// defaultMarketTable 内置行情兜底（KV里没有该城市时使用）
// 单价为城市成交中位数（CAD/sqft），无月度历史
var defaultMarketTable = map[string]MarketSnapshot{
	"toronto":     {City: "Toronto", MedianPricePerSqft: 820, AsOfYear: 2026},
	"mississauga": {City: "Mississauga", MedianPricePerSqft: 720, AsOfYear: 2026},
	"vaughan":     {City: "Vaughan", MedianPricePerSqft: 700, AsOfYear: 2026},
	"markham":     {City: "Markham", MedianPricePerSqft: 730, AsOfYear: 2026},
	"oakville":    {City: "Oakville", MedianPricePerSqft: 760, AsOfYear: 2026},
	"brampton":    {City: "Brampton", MedianPricePerSqft: 640, AsOfYear: 2026},
	"hamilton":    {City: "Hamilton", MedianPricePerSqft: 560, AsOfYear: 2026},
	"ottawa":      {City: "Ottawa", MedianPricePerSqft: 520, AsOfYear: 2026},
}

const marketKeyPrefix = "summitly:market:"

// KVMarketData 行情数据源实现：KV 优先，内置表兜底
type KVMarketData struct {
	kv     store.KV
	logger *zap.Logger
}

// NewKVMarketData 创建行情数据源（kv 允许为 nil，只用内置表）
func NewKVMarketData(kv store.KV, logger *zap.Logger) *KVMarketData {
	return &KVMarketData{kv: kv, logger: logger}
}

var _ MarketDataProvider = (*KVMarketData)(nil)

// Snapshot 查询某城市的行情快照
func (m *KVMarketData) Snapshot(ctx context.Context, city string) (*MarketSnapshot, error) {
	slug := marketCitySlug(city)
	if slug == "" {
		return nil, nil
	}

	if m.kv != nil {
		val, err := m.kv.Get(ctx, marketKeyPrefix+slug)
		if err == nil {
			var snap MarketSnapshot
			if err := json.Unmarshal([]byte(val), &snap); err == nil && snap.MedianPricePerSqft > 0 {
				return &snap, nil
			}
			m.logger.Warn("Invalid market snapshot in KV, falling back to builtin table",
				zap.String("city", slug),
			)
		} else if err != store.ErrMiss {
			return nil, err
		}
	}

	if snap, ok := defaultMarketTable[slug]; ok {
		return &snap, nil
	}
	return nil, nil
}

func marketCitySlug(city string) string {
	slug := strings.ToLower(strings.TrimSpace(city))
	return strings.ReplaceAll(slug, " ", "-")
}
