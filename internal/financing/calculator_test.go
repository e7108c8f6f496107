package financing

import (
	"math"
	"testing"

	"carbot_backend/platform/apperr"
)

func TestComputeZeroRate(t *testing.T) {
	quote, err := Compute(120000, 0, 12, 0)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if quote.MonthlyPayment != 10000 {
		t.Errorf("MonthlyPayment = %v, want 10000", quote.MonthlyPayment)
	}
	if quote.TotalPaid != 120000 {
		t.Errorf("TotalPaid = %v, want 120000", quote.TotalPaid)
	}
	if quote.TotalInterest != 0 {
		t.Errorf("TotalInterest = %v, want 0", quote.TotalInterest)
	}
}

func TestComputeStandardScenario(t *testing.T) {
	// 350,000 MXN vehicle, 20% down, 10% annual over 36 months.
	quote, err := Compute(350000, 10, 36, 20)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if quote.DownPayment != 70000 {
		t.Errorf("DownPayment = %v, want 70000", quote.DownPayment)
	}
	if quote.FinancedAmount != 280000 {
		t.Errorf("FinancedAmount = %v, want 280000", quote.FinancedAmount)
	}
	if math.Abs(quote.MonthlyPayment-9034.77) > 1.0 {
		t.Errorf("MonthlyPayment = %v, want about 9034.77", quote.MonthlyPayment)
	}

	if diff := math.Abs(quote.TotalPaid - quote.MonthlyPayment*float64(quote.TermMonths)); diff > 0.02*float64(quote.TermMonths) {
		t.Errorf("TotalPaid %v inconsistent with MonthlyPayment %v over %d months", quote.TotalPaid, quote.MonthlyPayment, quote.TermMonths)
	}
	if diff := math.Abs(quote.TotalInterest - (quote.TotalPaid - quote.FinancedAmount)); diff > 0.01 {
		t.Errorf("TotalInterest = %v, want TotalPaid-FinancedAmount = %v", quote.TotalInterest, quote.TotalPaid-quote.FinancedAmount)
	}
}

func TestComputeIsReproducible(t *testing.T) {
	first, err := Compute(350000, 10, 48, 15)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	second, err := Compute(350000, 10, 48, 15)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if first != second {
		t.Errorf("identical inputs produced different quotes:\n%+v\n%+v", first, second)
	}
}

func TestComputeValidation(t *testing.T) {
	cases := []struct {
		name        string
		principal   float64
		rate        float64
		term        int
		downPercent float64
	}{
		{"zero principal", 0, 10, 36, 20},
		{"negative principal", -1, 10, 36, 20},
		{"negative rate", 100000, -1, 36, 20},
		{"zero term", 100000, 10, 0, 20},
		{"negative down payment", 100000, 10, 36, -5},
		{"down payment over 100", 100000, 10, 36, 100.5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compute(tc.principal, tc.rate, tc.term, tc.downPercent)
			if !apperr.Is(err, apperr.KindValidation) {
				t.Errorf("error = %v, want validation error", err)
			}
		})
	}
}

func TestComputeAcceptsFullDomain(t *testing.T) {
	// High down payments, rates over 100 and long terms are all legal inputs.
	cases := []struct {
		name        string
		principal   float64
		rate        float64
		term        int
		downPercent float64
	}{
		{"high down payment", 350000, 10, 36, 95},
		{"rate over 100", 350000, 150, 36, 20},
		{"long term", 350000, 10, 240, 20},
		{"large principal", 25_000_000, 10, 36, 20},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			quote, err := Compute(tc.principal, tc.rate, tc.term, tc.downPercent)
			if err != nil {
				t.Fatalf("Compute: %v", err)
			}
			if quote.FinancedAmount <= 0 {
				t.Errorf("FinancedAmount = %v, want positive", quote.FinancedAmount)
			}
		})
	}
}

func TestComputeFullDownPayment(t *testing.T) {
	quote, err := Compute(350000, 10, 36, 100)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if quote.FinancedAmount != 0 {
		t.Errorf("FinancedAmount = %v, want 0", quote.FinancedAmount)
	}
	if quote.MonthlyPayment != 0 {
		t.Errorf("MonthlyPayment = %v, want 0", quote.MonthlyPayment)
	}
	if quote.DownPayment != 350000 {
		t.Errorf("DownPayment = %v, want 350000", quote.DownPayment)
	}
}

func TestOptionsCoversApprovedTerms(t *testing.T) {
	quotes, err := Options(280000, DefaultDownPaymentPercent)
	if err != nil {
		t.Fatalf("Options: %v", err)
	}

	if len(quotes) != len(ApprovedTermsMonths) {
		t.Fatalf("got %d quotes, want %d", len(quotes), len(ApprovedTermsMonths))
	}
	for i, quote := range quotes {
		if quote.TermMonths != ApprovedTermsMonths[i] {
			t.Errorf("quote %d term = %d, want %d", i, quote.TermMonths, ApprovedTermsMonths[i])
		}
		if i > 0 && quote.MonthlyPayment >= quotes[i-1].MonthlyPayment {
			t.Errorf("longer term %d should lower the monthly payment", quote.TermMonths)
		}
	}
}
