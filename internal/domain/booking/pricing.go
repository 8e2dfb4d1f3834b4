package booking

import (
	"math"
	"time"
)

// Quote is the monetary breakdown for a stay
type Quote struct {
	Nights      int     `json:"nights"`
	BaseAmount  float64 `json:"base_amount"`
	CleaningFee float64 `json:"cleaning_fee"`
	ServiceFee  float64 `json:"service_fee"`
	TotalAmount float64 `json:"total_amount"`
	Currency    string  `json:"currency"`
}

// CalcNights counts billable nights for [checkIn, checkOut). Fractional
// days round up, so a stay of 1.5 days bills as 2 nights.
func CalcNights(checkIn, checkOut time.Time) int {
	return int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
}

// ComputeQuote prices a stay. The platform fee is a flat percentage of the
// base amount, rounded half away from zero to the nearest currency unit.
func ComputeQuote(checkIn, checkOut time.Time, basePrice, cleaningFee, feeRate float64, currency string) Quote {
	nights := CalcNights(checkIn, checkOut)
	baseAmount := float64(nights) * basePrice
	serviceFee := math.Round(baseAmount * feeRate)

	return Quote{
		Nights:      nights,
		BaseAmount:  baseAmount,
		CleaningFee: cleaningFee,
		ServiceFee:  serviceFee,
		TotalAmount: baseAmount + cleaningFee + serviceFee,
		Currency:    currency,
	}
}
