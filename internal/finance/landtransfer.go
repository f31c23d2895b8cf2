package finance

import "math"

// 安省土地转让税累进分档（多伦多市税使用完全相同的分档再算一次）
var lttBrackets = []struct {
	upTo float64
	rate float64
}{
	{55000, 0.005},
	{250000, 0.010},
	{400000, 0.015},
	{2000000, 0.020},
	{math.MaxFloat64, 0.025},
}

// 首购退税上限
const (
	ProvincialRebateCap = 4000 // 安省
	TorontoRebateCap    = 4475 // 多伦多市
)

// LandTransferBreakdown 土地转让税计算明细
type LandTransferBreakdown struct {
	Provincial       float64 `json:"provincial"`        // 省税（退税前）
	Municipal        float64 `json:"municipal"`         // 多伦多市税（退税前，非多伦多为 0）
	ProvincialRebate float64 `json:"provincial_rebate"` // 省首购退税
	MunicipalRebate  float64 `json:"municipal_rebate"`  // 市首购退税
	Total            float64 `json:"total"`             // 退税后合计
}

// marginalTax 按累进分档计算税额
func marginalTax(price float64) float64 {
	if price <= 0 {
		return 0
	}
	tax := 0.0
	lower := 0.0
	for _, b := range lttBrackets {
		if price > b.upTo {
			tax += (b.upTo - lower) * b.rate
			lower = b.upTo
			continue
		}
		tax += (price - lower) * b.rate
		break
	}
	return tax
}

// LandTransferTax 计算土地转让税
// price 为成交价；inToronto 为 true 时加收等额市税；
// firstTimeBuyer 为 true 时各自抵扣首购退税（退税不超过税额也不超过上限）
func LandTransferTax(price float64, inToronto, firstTimeBuyer bool) LandTransferBreakdown {
	out := LandTransferBreakdown{}
	out.Provincial = marginalTax(price)
	if inToronto {
		out.Municipal = marginalTax(price)
	}

	if firstTimeBuyer {
		out.ProvincialRebate = math.Min(out.Provincial, ProvincialRebateCap)
		if inToronto {
			out.MunicipalRebate = math.Min(out.Municipal, TorontoRebateCap)
		}
	}

	out.Total = out.Provincial + out.Municipal - out.ProvincialRebate - out.MunicipalRebate
	return out
}
