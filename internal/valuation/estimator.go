// Package valuation 实现业主仪表盘的房产估值：基于城市级单价行情的
// 可比估值（户型/面积/房龄修正）和行情走势计算。纯计算，无 IO。
package valuation

import "math"

// 房型修正系数（相对城市中位数单价）
var propertyTypeFactors = map[string]float64{
	"condo":     0.92,
	"townhouse": 1.00,
	"semi":      1.05,
	"detached":  1.15,
}

// 户型/房龄修正参数
const (
	bedBaseline  = 3.0    // 基准卧室数
	bathBaseline = 2.0    // 基准卫浴数
	bedStep      = 0.03   // 每间卧室 ±3%
	bathStep     = 0.02   // 每间卫浴 ±2%
	ageStep      = 0.0025 // 每年折旧 0.25%
	ageCap       = 0.15   // 折旧上限 15%
)

// HomeFacts 估值输入（业主房产属性）
type HomeFacts struct {
	PropertyType string  `json:"property_type"`
	Beds         float64 `json:"beds"`
	Baths        float64 `json:"baths"`
	AreaSqft     int     `json:"area_sqft"`
	YearBuilt    int     `json:"year_built"` // 0 表示未知
}

// MarketStats 城市级行情参考
type MarketStats struct {
	MedianPricePerSqft float64 `json:"median_price_per_sqft"` // 城市成交中位数单价
	AsOfYear           int     `json:"as_of_year"`            // 行情基准年（用于房龄计算）
}

// ValueEstimate 估值结果（仪表盘展示件）
type ValueEstimate struct {
	Estimate     float64 `json:"estimate"`       // 点估值
	Low          float64 `json:"low"`            // 区间下沿
	High         float64 `json:"high"`           // 区间上沿
	PricePerSqft float64 `json:"price_per_sqft"` // 修正后单价
	Confidence   string  `json:"confidence"`     // high/medium/low
}

// Estimate 计算可比估值
// 城市中位数单价 × 面积，再按房型、卧室/卫浴数与基准的差、房龄折旧修正；
// 置信区间随房龄和缺失信息放宽
func Estimate(h HomeFacts, m MarketStats) ValueEstimate {
	out := ValueEstimate{}
	if h.AreaSqft <= 0 || m.MedianPricePerSqft <= 0 {
		return out
	}

	factor := 1.0
	if f, ok := propertyTypeFactors[h.PropertyType]; ok {
		factor *= f
	}
	factor *= 1 + bedStep*(h.Beds-bedBaseline)
	factor *= 1 + bathStep*(h.Baths-bathBaseline)

	age := 0
	if h.YearBuilt > 0 && m.AsOfYear > h.YearBuilt {
		age = m.AsOfYear - h.YearBuilt
		factor *= 1 - math.Min(ageStep*float64(age), ageCap)
	}
	if factor < 0.1 {
		factor = 0.1
	}

	out.PricePerSqft = m.MedianPricePerSqft * factor
	out.Estimate = out.PricePerSqft * float64(h.AreaSqft)

	// 区间：基础 ±5%，年代未知 +3%，老房（40 年以上）+2%
	band := 0.05
	out.Confidence = "high"
	if h.YearBuilt <= 0 {
		band += 0.03
		out.Confidence = "medium"
	}
	if age > 40 {
		band += 0.02
		out.Confidence = "low"
	}
	out.Low = out.Estimate * (1 - band)
	out.High = out.Estimate * (1 + band)
	return out
}

// MonthlyIndex 某月的城市行情单价点（按月升序）
type MonthlyIndex struct {
	Month string  `json:"month"` // "2026-07"
	Value float64 `json:"value"` // 当月中位数单价
}

// TrendResult 行情走势（仪表盘行情卡片）
type TrendResult struct {
	MoMPct float64 `json:"mom_pct"` // 环比涨跌（百分数）
	YoYPct float64 `json:"yoy_pct"` // 同比涨跌（百分数）
}

// Trend 根据按月升序的行情序列计算环比/同比
// 数据不足（不满两个月/不满十三个月）时对应字段为 0
func Trend(history []MonthlyIndex) TrendResult {
	out := TrendResult{}
	n := len(history)
	if n < 2 {
		return out
	}

	last := history[n-1].Value
	prev := history[n-2].Value
	if prev > 0 {
		out.MoMPct = (last - prev) / prev * 100
	}

	if n >= 13 {
		yearAgo := history[n-13].Value
		if yearAgo > 0 {
			out.YoYPct = (last - yearAgo) / yearAgo * 100
		}
	}
	return out
}
