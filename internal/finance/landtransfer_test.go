package finance

import (
	"math"
	"testing"
)

func TestLandTransferTax_BracketBoundaries(t *testing.T) {
	tests := []struct {
		price float64
		want  float64
	}{
		{0, 0},
		{55000, 275},      // 55000 * 0.5%
		{250000, 2225},    // 275 + 195000 * 1.0%
		{400000, 4475},    // 2225 + 150000 * 1.5%
		{2000000, 36475},  // 4475 + 1600000 * 2.0%
		{3000000, 61475},  // 36475 + 1000000 * 2.5%
	}
	for _, tt := range tests {
		got := LandTransferTax(tt.price, false, false)
		if math.Abs(got.Provincial-tt.want) > 1e-9 {
			t.Errorf("LandTransferTax(%v).Provincial = %v, want %v", tt.price, got.Provincial, tt.want)
		}
		if got.Municipal != 0 {
			t.Errorf("LandTransferTax(%v) outside Toronto: Municipal = %v, want 0", tt.price, got.Municipal)
		}
		if math.Abs(got.Total-tt.want) > 1e-9 {
			t.Errorf("LandTransferTax(%v).Total = %v, want %v", tt.price, got.Total, tt.want)
		}
	}
}

func TestLandTransferTax_TorontoDoublesIdentically(t *testing.T) {
	// 多伦多市税与省税使用完全相同的分档
	for _, price := range []float64{100000, 400000, 899000, 2100000} {
		got := LandTransferTax(price, true, false)
		if got.Municipal != got.Provincial {
			t.Errorf("price %v: Municipal = %v, Provincial = %v, want identical", price, got.Municipal, got.Provincial)
		}
		if math.Abs(got.Total-2*got.Provincial) > 1e-9 {
			t.Errorf("price %v: Total = %v, want %v", price, got.Total, 2*got.Provincial)
		}
	}
}

func TestLandTransferTax_FirstTimeBuyerRebates(t *testing.T) {
	// 40 万以内多伦多首购：省退 4000 封顶，市退 4475 恰好抵满
	got := LandTransferTax(400000, true, true)
	if got.ProvincialRebate != 4000 {
		t.Errorf("ProvincialRebate = %v, want 4000", got.ProvincialRebate)
	}
	if got.MunicipalRebate != 4475 {
		t.Errorf("MunicipalRebate = %v, want 4475", got.MunicipalRebate)
	}
	if math.Abs(got.Total-(4475+4475-4000-4475)) > 1e-9 {
		t.Errorf("Total = %v, want 475", got.Total)
	}

	// 低价位：退税不超过税额本身，税后归零
	low := LandTransferTax(100000, false, true)
	if low.ProvincialRebate != low.Provincial {
		t.Errorf("low price: rebate = %v, want full tax %v", low.ProvincialRebate, low.Provincial)
	}
	if low.Total != 0 {
		t.Errorf("low price: Total = %v, want 0", low.Total)
	}
}

func TestLandTransferTax_RebateNeverExceedsTaxOrCap(t *testing.T) {
	for price := 0.0; price <= 2500000; price += 9973 {
		got := LandTransferTax(price, true, true)
		if got.ProvincialRebate > got.Provincial || got.ProvincialRebate > ProvincialRebateCap {
			t.Fatalf("price %v: provincial rebate %v exceeds tax %v or cap", price, got.ProvincialRebate, got.Provincial)
		}
		if got.MunicipalRebate > got.Municipal || got.MunicipalRebate > TorontoRebateCap {
			t.Fatalf("price %v: municipal rebate %v exceeds tax %v or cap", price, got.MunicipalRebate, got.Municipal)
		}
		if got.Total < 0 {
			t.Fatalf("price %v: negative total %v", price, got.Total)
		}
	}
}

func TestLandTransferTax_MonotonicNonDecreasing(t *testing.T) {
	// 税额（含退税后）随价格单调不减
	cases := []struct {
		toronto bool
		ftb     bool
	}{
		{false, false},
		{true, false},
		{false, true},
		{true, true},
	}
	for _, c := range cases {
		prev := -1.0
		for price := 0.0; price <= 2600000; price += 997 {
			got := LandTransferTax(price, c.toronto, c.ftb)
			if got.Total < prev-1e-9 {
				t.Fatalf("toronto=%v ftb=%v: total decreased at price %v (%v < %v)", c.toronto, c.ftb, price, got.Total, prev)
			}
			prev = got.Total
		}
	}
}

func TestLandTransferTax_NegativePrice(t *testing.T) {
	got := LandTransferTax(-100, true, true)
	if got.Provincial != 0 || got.Municipal != 0 || got.Total != 0 {
		t.Errorf("negative price should yield zero breakdown, got %+v", got)
	}
}
