package financing

// QuoteRequest is the financing quote payload.
type QuoteRequest struct {
	Price              float64  `json:"price" validate:"required,gt=0"`
	AnnualRatePercent  *float64 `json:"annualRatePercent,omitempty" validate:"omitempty,min=0"`
	TermMonths         int      `json:"termMonths" validate:"required,min=1"`
	DownPaymentPercent *float64 `json:"downPaymentPercent,omitempty" validate:"omitempty,min=0,max=100"`
}

// OptionsRequest asks for quotes across all approved terms.
type OptionsRequest struct {
	Price              float64  `json:"price" validate:"required,gt=0"`
	DownPaymentPercent *float64 `json:"downPaymentPercent,omitempty" validate:"omitempty,min=0,max=100"`
}

// OptionsResponse lists a quote per approved term.
type OptionsResponse struct {
	Options []Quote `json:"options"`
}
