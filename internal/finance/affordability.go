package finance

import "math"

// 购房资格审查参数（加拿大联邦标准）
const (
	gdsLimit        = 0.39 // Gross Debt Service：住房支出占月收入上限
	tdsLimit        = 0.44 // Total Debt Service：住房支出加既有债务占月收入上限
	stressRateBump  = 2.0  // 压力测试：合同利率加两个百分点
	stressRateFloor = 5.25 // 压力测试利率下限（百分数）
)

// AffordabilityInput 可负担额度计算输入
type AffordabilityInput struct {
	AnnualIncome      float64 `json:"annual_income"`       // 家庭年总收入
	MonthlyDebts      float64 `json:"monthly_debts"`       // 每月既有债务还款（车贷、卡债等）
	DownPayment       float64 `json:"down_payment"`        // 可用首付
	AnnualRatePct     float64 `json:"annual_rate_pct"`     // 合同年利率（百分数）
	AmortizationYears int     `json:"amortization_years"`  // 还款年限
	PropertyTaxAnnual float64 `json:"property_tax_annual"` // 估算年地税
	HeatingMonthly    float64 `json:"heating_monthly"`     // 月取暖费
	CondoFeesMonthly  float64 `json:"condo_fees_monthly"`  // 月物业费
}

// AffordabilityResult 可负担额度计算结果
type AffordabilityResult struct {
	MaxPrice       float64 `json:"max_price"`       // 最高可负担房价（贷款上限 + 首付）
	MaxLoan        float64 `json:"max_loan"`        // 贷款上限（按压力测试利率反推）
	QualifyingRate float64 `json:"qualifying_rate"` // 实际使用的压力测试利率
	MonthlyPayment float64 `json:"monthly_payment"` // 按合同利率的实际月供（贷满上限时）
	GDSLimited     bool    `json:"gds_limited"`     // true 表示受 GDS 约束，false 表示受 TDS 约束
}

// MaxAffordablePrice 计算最高可负担房价
// 口径：住房支出包含地税、取暖费和一半物业费；GDS/TDS 取较紧的一侧；
// 月供空间按压力测试利率（max(合同利率+2, 5.25)）反推贷款上限
func MaxAffordablePrice(in AffordabilityInput) AffordabilityResult {
	out := AffordabilityResult{
		QualifyingRate: math.Max(in.AnnualRatePct+stressRateBump, stressRateFloor),
	}

	monthlyIncome := in.AnnualIncome / 12
	if monthlyIncome <= 0 || in.AmortizationYears <= 0 {
		return out
	}

	housingOverhead := in.PropertyTaxAnnual/12 + in.HeatingMonthly + in.CondoFeesMonthly/2
	gdsRoom := monthlyIncome*gdsLimit - housingOverhead
	tdsRoom := monthlyIncome*tdsLimit - housingOverhead - in.MonthlyDebts

	room := math.Min(gdsRoom, tdsRoom)
	out.GDSLimited = gdsRoom <= tdsRoom
	if room <= 0 {
		return out
	}

	out.MaxLoan = LoanForPayment(room, out.QualifyingRate, in.AmortizationYears)
	out.MaxPrice = out.MaxLoan + in.DownPayment
	out.MonthlyPayment = Payment(out.MaxLoan, in.AnnualRatePct, in.AmortizationYears)
	return out
}
