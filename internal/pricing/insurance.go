package pricing

import (
	"math"

	"github.com/oroshop/fulfillment-service/internal/logger"
)

// insuranceBands maps a declared-value upper bound to its fee rate; values
// above the last bound pay 60%.
var insuranceBands = []struct {
	max  float64
	rate float64
}{
	{50, 0.10},
	{100.01, 0.12},
	{200.01, 0.15},
	{400.01, 0.20},
	{800.01, 0.25},
	{1500.01, 0.30},
	{3000.01, 0.35},
	{5000.01, 0.40},
	{8000.01, 0.45},
	{10000, 0.50},
}

const insuranceTopRate = 0.60

// CalculateInsuranceFee returns the tiered fee for a declared value. Invalid
// input (NaN, infinite, zero or negative) yields a zero fee with a warning
// rather than an error, matching how shipment creation treats uninsured
// parcels.
func CalculateInsuranceFee(declaredValue float64) float64 {
	if math.IsNaN(declaredValue) || math.IsInf(declaredValue, 0) || declaredValue <= 0 {
		logger.Warn("insurance fee requested for invalid declared value", "declared_value", declaredValue)
		return 0
	}

	rate := insuranceTopRate
	for _, band := range insuranceBands {
		if declaredValue <= band.max {
			rate = band.rate
			break
		}
	}
	return round2(declaredValue * rate)
}
