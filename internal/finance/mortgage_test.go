package finance

import (
	"math"
	"testing"
)

func TestCMHCPremium_TwentyPercentDownIsFree(t *testing.T) {
	// 首付达到 20% 即不需要违约保险，与贷款额无关
	for _, loan := range []float64{1, 250000, 480000, 1200000, 9999999} {
		if got := CMHCPremium(20, loan); got != 0 {
			t.Errorf("CMHCPremium(20, %v) = %v, want 0", loan, got)
		}
		if got := CMHCPremium(25.5, loan); got != 0 {
			t.Errorf("CMHCPremium(25.5, %v) = %v, want 0", loan, got)
		}
	}
}

func TestCMHCPremium_Bands(t *testing.T) {
	tests := []struct {
		name string
		pct  float64
		loan float64
		want float64
	}{
		{"just below 20 uses 2.8%", 19.9, 500000, 0.028 * 500000},
		{"15 exactly uses 2.8%", 15, 400000, 0.028 * 400000},
		{"just below 15 uses 3.1%", 14.99, 400000, 0.031 * 400000},
		{"10 exactly uses 3.1%", 10, 600000, 0.031 * 600000},
		{"just below 10 uses 4.0%", 9.99, 600000, 0.040 * 600000},
		{"5 uses 4.0%", 5, 475000, 0.040 * 475000},
	}
	for _, tt := range tests {
		if got := CMHCPremium(tt.pct, tt.loan); got != tt.want {
			t.Errorf("%s: CMHCPremium(%v, %v) = %v, want %v", tt.name, tt.pct, tt.loan, got, tt.want)
		}
	}
}

func TestPayment_ZeroRateIsStraightLine(t *testing.T) {
	// 利率为 0 时必须精确等于本金均摊
	if got, want := Payment(480000, 0, 25), 480000.0/300; got != want {
		t.Errorf("Payment(480000, 0, 25) = %v, want exactly %v", got, want)
	}
	if got, want := Payment(100, 0, 1), 100.0/12; got != want {
		t.Errorf("Payment(100, 0, 1) = %v, want exactly %v", got, want)
	}
}

func TestPayment_KnownValues(t *testing.T) {
	tests := []struct {
		principal float64
		rate      float64
		years     int
		want      float64
	}{
		{500000, 5, 25, 2922.95},
		{750000, 3.99, 30, 3576.29},
	}
	for _, tt := range tests {
		got := Payment(tt.principal, tt.rate, tt.years)
		if math.Abs(got-tt.want) > 0.01 {
			t.Errorf("Payment(%v, %v, %v) = %v, want %v", tt.principal, tt.rate, tt.years, got, tt.want)
		}
	}
}

func TestPayment_InvalidTermReturnsZero(t *testing.T) {
	if got := Payment(500000, 5, 0); got != 0 {
		t.Errorf("Payment with 0 years = %v, want 0", got)
	}
}

func TestLoanForPayment_InvertsPayment(t *testing.T) {
	tests := []struct {
		principal float64
		rate      float64
		years     int
	}{
		{500000, 5, 25},
		{480000, 0, 25},
		{1250000, 6.49, 30},
	}
	for _, tt := range tests {
		m := Payment(tt.principal, tt.rate, tt.years)
		back := LoanForPayment(m, tt.rate, tt.years)
		if math.Abs(back-tt.principal) > 0.01 {
			t.Errorf("LoanForPayment(Payment(%v)) = %v, want %v", tt.principal, back, tt.principal)
		}
	}
}

func TestPaymentForFrequency_Multipliers(t *testing.T) {
	const m = 1200.0
	tests := []struct {
		frequency string
		want      float64
	}{
		{FreqMonthly, m},
		{"", m}, // 默认按月
		{FreqSemiMonthly, m * 12 / 24},
		{FreqBiWeekly, m * 12 / 26},
		{FreqWeekly, m * 12 / 52},
		{FreqAcceleratedBiWeekly, m / 2},
		{FreqAcceleratedWeekly, m / 4},
		{FreqQuarterly, m * 3},
		{FreqAnnually, m * 12},
	}
	for _, tt := range tests {
		got, err := PaymentForFrequency(m, tt.frequency)
		if err != nil {
			t.Fatalf("PaymentForFrequency(%q) returned error: %v", tt.frequency, err)
		}
		if got != tt.want {
			t.Errorf("PaymentForFrequency(%v, %q) = %v, want %v", m, tt.frequency, got, tt.want)
		}
	}
}

func TestPaymentForFrequency_AcceleratedPaysExtraPrincipal(t *testing.T) {
	// 加速双周/加速周付的年付款总额应为 13 个月供（普通频率为 12 个）
	const m = 1850.0
	regular := []string{FreqMonthly, FreqSemiMonthly, FreqBiWeekly, FreqWeekly, FreqQuarterly, FreqAnnually}
	for _, f := range regular {
		per, _ := PaymentForFrequency(m, f)
		periods, _ := PeriodsPerYear(f)
		yearly := per * float64(periods)
		if math.Abs(yearly-12*m) > 1e-9 {
			t.Errorf("%s: yearly total = %v, want %v", f, yearly, 12*m)
		}
	}
	accelerated := []string{FreqAcceleratedBiWeekly, FreqAcceleratedWeekly}
	for _, f := range accelerated {
		per, _ := PaymentForFrequency(m, f)
		periods, _ := PeriodsPerYear(f)
		yearly := per * float64(periods)
		if math.Abs(yearly-13*m) > 1e-9 {
			t.Errorf("%s: yearly total = %v, want %v", f, yearly, 13*m)
		}
	}
}

func TestPaymentForFrequency_UnknownFrequency(t *testing.T) {
	if _, err := PaymentForFrequency(1000, "fortnightly"); err == nil {
		t.Error("expected error for unknown frequency, got nil")
	}
	if _, err := PeriodsPerYear("fortnightly"); err == nil {
		t.Error("expected error for unknown frequency, got nil")
	}
}
