package httpapi

import (
	"net/http"

	"summitly-data/internal/finance"

	"go.uber.org/zap"
)

// CalculatorHandler 按揭/税费计算器 Handler
// 纯计算，不经过 Service 层
type CalculatorHandler struct {
	logger *zap.Logger
}

// NewCalculatorHandler 创建计算器 Handler
func NewCalculatorHandler(logger *zap.Logger) *CalculatorHandler {
	return &CalculatorHandler{logger: logger}
}

// ============================================
// 请求/响应结构
// ============================================

type mortgagePaymentRequest struct {
	Price         float64 `json:"price"`           // 必填，房价
	DownPayment   float64 `json:"down_payment"`    // 必填，首付金额
	AnnualRatePct float64 `json:"annual_rate_pct"` // 年利率（百分数）
	Years         int     `json:"years"`           // 必填，还款年限
	Frequency     string  `json:"frequency"`       // 可选，默认 monthly
}

type mortgagePaymentResponse struct {
	LoanAmount     float64 `json:"loan_amount"`      // 房价 - 首付
	DownPaymentPct float64 `json:"down_payment_pct"` // 首付比例（百分数）
	CMHCPremium    float64 `json:"cmhc_premium"`     // 违约保险保费
	TotalLoan      float64 `json:"total_loan"`       // 本金 + 保费（保费并入贷款）
	MonthlyPayment float64 `json:"monthly_payment"`
	Payment        float64 `json:"payment"` // 每期付款额（按 frequency）
	Frequency      string  `json:"frequency"`
	PeriodsPerYear int     `json:"periods_per_year"`
	TotalPaid      float64 `json:"total_paid"`
	TotalInterest  float64 `json:"total_interest"`
}

type landTransferTaxRequest struct {
	Price          float64 `json:"price"`            // 必填，成交价
	Toronto        bool    `json:"toronto"`          // 多伦多市内加收市税
	FirstTimeBuyer bool    `json:"first_time_buyer"` // 首购退税
}

type cmhcRequest struct {
	DownPaymentPct float64 `json:"down_payment_pct"` // 必填，首付比例（百分数）
	LoanAmount     float64 `json:"loan_amount"`      // 必填，贷款额
}

type cmhcResponse struct {
	Premium float64 `json:"premium"`
}

// ============================================
// 方法实现
// ============================================

// MortgagePayment 按揭月供计算
// POST /api/calculators/mortgage-payment
func (h *CalculatorHandler) MortgagePayment(w http.ResponseWriter, r *http.Request) {
	var req mortgagePaymentRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}

	if req.Price <= 0 {
		writeJSON(w, http.StatusBadRequest, Fail("price must be positive"))
		return
	}
	if req.DownPayment < 0 || req.DownPayment >= req.Price {
		writeJSON(w, http.StatusBadRequest, Fail("down_payment must be between 0 and price"))
		return
	}
	if req.Years <= 0 {
		writeJSON(w, http.StatusBadRequest, Fail("years must be positive"))
		return
	}
	if req.AnnualRatePct < 0 {
		writeJSON(w, http.StatusBadRequest, Fail("annual_rate_pct must not be negative"))
		return
	}

	periodsPerYear, err := finance.PeriodsPerYear(req.Frequency)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}

	resp := mortgagePaymentResponse{
		LoanAmount:     req.Price - req.DownPayment,
		DownPaymentPct: req.DownPayment / req.Price * 100,
		Frequency:      req.Frequency,
		PeriodsPerYear: periodsPerYear,
	}
	if resp.Frequency == "" {
		resp.Frequency = finance.FreqMonthly
	}

	resp.CMHCPremium = finance.CMHCPremium(resp.DownPaymentPct, resp.LoanAmount)
	resp.TotalLoan = resp.LoanAmount + resp.CMHCPremium
	resp.MonthlyPayment = finance.Payment(resp.TotalLoan, req.AnnualRatePct, req.Years)

	payment, err := finance.PaymentForFrequency(resp.MonthlyPayment, req.Frequency)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}
	resp.Payment = payment
	resp.TotalPaid = payment * float64(periodsPerYear) * float64(req.Years)
	resp.TotalInterest = resp.TotalPaid - resp.TotalLoan

	writeJSON(w, http.StatusOK, Ok(resp))
}

// LandTransferTax 土地转让税计算
// POST /api/calculators/land-transfer-tax
func (h *CalculatorHandler) LandTransferTax(w http.ResponseWriter, r *http.Request) {
	var req landTransferTaxRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}

	if req.Price <= 0 {
		writeJSON(w, http.StatusBadRequest, Fail("price must be positive"))
		return
	}

	breakdown := finance.LandTransferTax(req.Price, req.Toronto, req.FirstTimeBuyer)
	writeJSON(w, http.StatusOK, Ok(breakdown))
}

// CMHC 违约保险保费计算
// POST /api/calculators/cmhc
func (h *CalculatorHandler) CMHC(w http.ResponseWriter, r *http.Request) {
	var req cmhcRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}

	if req.LoanAmount <= 0 {
		writeJSON(w, http.StatusBadRequest, Fail("loan_amount must be positive"))
		return
	}
	if req.DownPaymentPct < 0 || req.DownPaymentPct > 100 {
		writeJSON(w, http.StatusBadRequest, Fail("down_payment_pct must be between 0 and 100"))
		return
	}

	writeJSON(w, http.StatusOK, Ok(cmhcResponse{
		Premium: finance.CMHCPremium(req.DownPaymentPct, req.LoanAmount),
	}))
}

// Affordability 可负担额度计算
// POST /api/calculators/affordability
func (h *CalculatorHandler) Affordability(w http.ResponseWriter, r *http.Request) {
	var req finance.AffordabilityInput
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}

	if req.AnnualIncome <= 0 {
		writeJSON(w, http.StatusBadRequest, Fail("annual_income must be positive"))
		return
	}
	if req.AmortizationYears <= 0 {
		writeJSON(w, http.StatusBadRequest, Fail("amortization_years must be positive"))
		return
	}

	writeJSON(w, http.StatusOK, Ok(finance.MaxAffordablePrice(req)))
}
