// Package finance 实现按揭相关的纯计算：CMHC 违约保险、等额本息月供、
// 付款频率换算、土地转让税和可负担额度。所有函数无状态、无 IO。
package finance

import (
	"fmt"
	"math"
)

// CMHC 保费比例（按首付比例分档）
// 首付 >= 20% 不需要违约保险
const (
	cmhcRate15 = 0.028 // 首付 15% - 19.99%
	cmhcRate10 = 0.031 // 首付 10% - 14.99%
	cmhcRate5  = 0.040 // 首付 < 10%
)

// CMHCPremium 计算 CMHC 违约保险保费
// downPaymentPct 为首付比例（百分数，19.9 表示 19.9%），loanAmount 为贷款额
// 返回保费金额（分档比例 × 贷款额），首付 >= 20% 时为 0
func CMHCPremium(downPaymentPct, loanAmount float64) float64 {
	switch {
	case downPaymentPct >= 20:
		return 0
	case downPaymentPct >= 15:
		return cmhcRate15 * loanAmount
	case downPaymentPct >= 10:
		return cmhcRate10 * loanAmount
	default:
		return cmhcRate5 * loanAmount
	}
}

// Payment 计算等额本息月供（按月复利）
// principal 为贷款本金，annualRatePct 为年利率百分数，years 为还款年限
// 年利率为 0 时退化为本金均摊：principal / (years*12)
func Payment(principal, annualRatePct float64, years int) float64 {
	n := float64(years * 12)
	if n <= 0 {
		return 0
	}
	if annualRatePct == 0 {
		return principal / n
	}
	r := annualRatePct / 100 / 12
	return principal * r / (1 - math.Pow(1+r, -n))
}

// LoanForPayment 按月供反推可贷本金（Payment 的逆运算）
func LoanForPayment(monthly, annualRatePct float64, years int) float64 {
	n := float64(years * 12)
	if n <= 0 {
		return 0
	}
	if annualRatePct == 0 {
		return monthly * n
	}
	r := annualRatePct / 100 / 12
	return monthly * (1 - math.Pow(1+r, -n)) / r
}

// 付款频率（periodic payment frequency）
const (
	FreqMonthly             = "monthly"
	FreqSemiMonthly         = "semi-monthly"
	FreqBiWeekly            = "bi-weekly"
	FreqWeekly              = "weekly"
	FreqAcceleratedBiWeekly = "accelerated-bi-weekly"
	FreqAcceleratedWeekly   = "accelerated-weekly"
	FreqQuarterly           = "quarterly"
	FreqAnnually            = "annually"
)

// PaymentForFrequency 将月供换算为指定付款频率的每期付款额
// 换算系数固定：
//   - semi-monthly: M*12/24, bi-weekly: M*12/26, weekly: M*12/52
//   - accelerated-bi-weekly: M/2, accelerated-weekly: M/4（多还本金的加速方案）
//   - quarterly: M*3, annually: M*12
//
// frequency 为空按 monthly 处理，未知频率返回错误
func PaymentForFrequency(monthly float64, frequency string) (float64, error) {
	switch frequency {
	case FreqMonthly, "":
		return monthly, nil
	case FreqSemiMonthly:
		return monthly * 12 / 24, nil
	case FreqBiWeekly:
		return monthly * 12 / 26, nil
	case FreqWeekly:
		return monthly * 12 / 52, nil
	case FreqAcceleratedBiWeekly:
		return monthly / 2, nil
	case FreqAcceleratedWeekly:
		return monthly / 4, nil
	case FreqQuarterly:
		return monthly * 3, nil
	case FreqAnnually:
		return monthly * 12, nil
	default:
		return 0, fmt.Errorf("unknown payment frequency: %s", frequency)
	}
}

// PeriodsPerYear 各付款频率对应的年付款期数
// 未知频率返回错误
func PeriodsPerYear(frequency string) (int, error) {
	switch frequency {
	case FreqMonthly, "":
		return 12, nil
	case FreqSemiMonthly:
		return 24, nil
	case FreqBiWeekly, FreqAcceleratedBiWeekly:
		return 26, nil
	case FreqWeekly, FreqAcceleratedWeekly:
		return 52, nil
	case FreqQuarterly:
		return 4, nil
	case FreqAnnually:
		return 1, nil
	default:
		return 0, fmt.Errorf("unknown payment frequency: %s", frequency)
	}
}
