package finance

import (
	"math"
	"testing"
)

func TestMaxAffordablePrice_QualifyingRate(t *testing.T) {
	// 压力测试利率：max(合同利率+2, 5.25)
	tests := []struct {
		contract float64
		want     float64
	}{
		{4.0, 6.0},
		{3.0, 5.25},
		{0, 5.25},
		{6.5, 8.5},
	}
	for _, tt := range tests {
		in := AffordabilityInput{AnnualIncome: 120000, AnnualRatePct: tt.contract, AmortizationYears: 25}
		got := MaxAffordablePrice(in)
		if got.QualifyingRate != tt.want {
			t.Errorf("contract %v: QualifyingRate = %v, want %v", tt.contract, got.QualifyingRate, tt.want)
		}
	}
}

func TestMaxAffordablePrice_ZeroIncome(t *testing.T) {
	got := MaxAffordablePrice(AffordabilityInput{AnnualIncome: 0, AmortizationYears: 25})
	if got.MaxLoan != 0 || got.MaxPrice != 0 {
		t.Errorf("zero income should afford nothing, got %+v", got)
	}
}

func TestMaxAffordablePrice_LoanMatchesQualifyingPayment(t *testing.T) {
	in := AffordabilityInput{
		AnnualIncome:      150000,
		MonthlyDebts:      400,
		DownPayment:       100000,
		AnnualRatePct:     4.5,
		AmortizationYears: 25,
		PropertyTaxAnnual: 4800,
		HeatingMonthly:    120,
		CondoFeesMonthly:  500,
	}
	got := MaxAffordablePrice(in)

	// 贷款上限反推回压力测试利率下的月供，应等于 GDS/TDS 较紧一侧的空间
	monthlyIncome := in.AnnualIncome / 12
	overhead := in.PropertyTaxAnnual/12 + in.HeatingMonthly + in.CondoFeesMonthly/2
	gdsRoom := monthlyIncome*0.39 - overhead
	tdsRoom := monthlyIncome*0.44 - overhead - in.MonthlyDebts
	room := math.Min(gdsRoom, tdsRoom)

	back := Payment(got.MaxLoan, got.QualifyingRate, in.AmortizationYears)
	if math.Abs(back-room) > 0.01 {
		t.Errorf("Payment(MaxLoan) = %v, want room %v", back, room)
	}
	if math.Abs(got.MaxPrice-(got.MaxLoan+in.DownPayment)) > 1e-9 {
		t.Errorf("MaxPrice = %v, want MaxLoan+DownPayment = %v", got.MaxPrice, got.MaxLoan+in.DownPayment)
	}
}

func TestMaxAffordablePrice_DebtsTightenTDS(t *testing.T) {
	base := AffordabilityInput{
		AnnualIncome:      120000,
		AnnualRatePct:     5,
		AmortizationYears: 25,
	}

	// 无债务时 GDS 是较紧约束（0.39 < 0.44）
	noDebts := MaxAffordablePrice(base)
	if !noDebts.GDSLimited {
		t.Error("with no debts GDS should be the binding constraint")
	}

	// 大额月债务把 TDS 压到 GDS 之下
	withDebts := base
	withDebts.MonthlyDebts = 1500
	limited := MaxAffordablePrice(withDebts)
	if limited.GDSLimited {
		t.Error("with heavy debts TDS should be the binding constraint")
	}
	if limited.MaxLoan >= noDebts.MaxLoan {
		t.Errorf("debts should reduce max loan: %v >= %v", limited.MaxLoan, noDebts.MaxLoan)
	}
}

func TestMaxAffordablePrice_OverheadEatsRoom(t *testing.T) {
	in := AffordabilityInput{
		AnnualIncome:      36000, // 月入 3000，GDS 空间 1170
		AnnualRatePct:     5,
		AmortizationYears: 25,
		PropertyTaxAnnual: 9000,
		HeatingMonthly:    300,
		CondoFeesMonthly:  400,
	}
	// overhead = 750 + 300 + 200 = 1250 > 1170，空间为负
	got := MaxAffordablePrice(in)
	if got.MaxLoan != 0 || got.MaxPrice != 0 {
		t.Errorf("negative room should afford nothing, got %+v", got)
	}
}
