// Package financing provides deterministic loan math for vehicle purchases.
package financing

import (
	"math"

	"carbot_backend/platform/apperr"
)

const (
	// DefaultAnnualRatePercent is the standard annual interest rate offered
	// when the customer does not negotiate one.
	DefaultAnnualRatePercent = 10.0
	// DefaultDownPaymentPercent is assumed when the customer gives no down payment.
	DefaultDownPaymentPercent = 20.0
)

// ApprovedTermsMonths are the financing durations the business offers,
// three to six years.
var ApprovedTermsMonths = []int{36, 48, 60, 72}

// Quote is one fully computed financing offer. Monetary amounts are rounded
// to 2 decimals on output; intermediate math is unrounded so the identities
// TotalPaid = MonthlyPayment*TermMonths and TotalInterest = TotalPaid-Financed
// hold before rounding.
type Quote struct {
	Principal          float64 `json:"principal"`
	DownPaymentPercent float64 `json:"downPaymentPercent"`
	DownPayment        float64 `json:"downPayment"`
	FinancedAmount     float64 `json:"financedAmount"`
	AnnualRatePercent  float64 `json:"annualRatePercent"`
	TermMonths         int     `json:"termMonths"`
	MonthlyPayment     float64 `json:"monthlyPayment"`
	TotalPaid          float64 `json:"totalPaid"`
	TotalInterest      float64 `json:"totalInterest"`
}

// Compute builds a financing quote using French amortization: fixed monthly
// payments over the term. A zero rate degenerates to straight division.
func Compute(principal, annualRatePercent float64, termMonths int, downPaymentPercent float64) (Quote, error) {
	if principal <= 0 {
		return Quote{}, apperr.Validation("principal must be positive")
	}
	if annualRatePercent < 0 {
		return Quote{}, apperr.Validation("annual rate must not be negative")
	}
	if termMonths <= 0 {
		return Quote{}, apperr.Validation("term must be at least 1 month")
	}
	if downPaymentPercent < 0 || downPaymentPercent > 100 {
		return Quote{}, apperr.Validation("down payment must be between 0 and 100 percent")
	}

	downPayment := principal * downPaymentPercent / 100
	financed := principal - downPayment

	var monthly float64
	if annualRatePercent == 0 {
		monthly = financed / float64(termMonths)
	} else {
		monthlyRate := (annualRatePercent / 100) / 12
		n := float64(termMonths)
		monthly = financed * (monthlyRate / (1 - math.Pow(1+monthlyRate, -n)))
	}

	total := monthly * float64(termMonths)
	interest := total - financed

	return Quote{
		Principal:          principal,
		DownPaymentPercent: downPaymentPercent,
		DownPayment:        roundTo2Decimals(downPayment),
		FinancedAmount:     roundTo2Decimals(financed),
		AnnualRatePercent:  annualRatePercent,
		TermMonths:         termMonths,
		MonthlyPayment:     roundTo2Decimals(monthly),
		TotalPaid:          roundTo2Decimals(total),
		TotalInterest:      roundTo2Decimals(interest),
	}, nil
}

// Options computes a quote for every approved term at the default rate.
// Used when the customer asks about financing without picking a duration.
func Options(principal, downPaymentPercent float64) ([]Quote, error) {
	quotes := make([]Quote, 0, len(ApprovedTermsMonths))
	for _, term := range ApprovedTermsMonths {
		quote, err := Compute(principal, DefaultAnnualRatePercent, term, downPaymentPercent)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, quote)
	}
	return quotes, nil
}

// roundTo2Decimals rounds a monetary amount to cents.
func roundTo2Decimals(value float64) float64 {
	return math.Round(value*100) / 100
}
