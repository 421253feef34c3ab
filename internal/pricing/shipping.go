// Package pricing holds the deterministic shipping and insurance tariff
// functions. Pure arithmetic over fixed tier tables, rounded to cents.
package pricing

import (
	"fmt"
	"math"

	"github.com/oroshop/fulfillment-service/internal/apperr"
)

type ServiceType string

const (
	ServiceStandard      ServiceType = "Standard"
	ServiceExpress       ServiceType = "Express"
	ServiceOvernight     ServiceType = "Overnight"
	ServiceSameDay       ServiceType = "SameDay"
	ServiceEconomy       ServiceType = "Economy"
	ServiceFreight       ServiceType = "Freight"
	ServiceInternational ServiceType = "International"
	ServiceTwoDay        ServiceType = "TwoDay"
	ServiceNextDay       ServiceType = "NextDay"
	ServiceScheduled     ServiceType = "Scheduled"
)

// per-kg rates by service type
var serviceRates = map[ServiceType]float64{
	ServiceStandard:      5.00,
	ServiceExpress:       10.00,
	ServiceOvernight:     15.00,
	ServiceSameDay:       20.00,
	ServiceEconomy:       3.00,
	ServiceFreight:       8.00,
	ServiceInternational: 12.00,
	ServiceTwoDay:        9.00,
	ServiceNextDay:       14.00,
	ServiceScheduled:     7.00,
}

// subtotalTiers maps an order subtotal threshold to its discount rate. The
// table is not monotonic (500 earns a bigger discount than 1000); it is
// reproduced verbatim from the storefront tariff and must not be "fixed"
// without a product decision.
var subtotalTiers = []struct {
	min  float64
	rate float64
}{
	{50000, 0.005},
	{20000, 0.01},
	{10000, 0.02},
	{5000, 0.03},
	{2000, 0.04},
	{1000, 0.05},
	{500, 0.10},
	{100, 0},
}

// CalculateBaseShippingPrice returns weight * rate for the service type,
// rounded to 2 decimals.
func CalculateBaseShippingPrice(weightKg float64, serviceType ServiceType) (float64, error) {
	if weightKg < 0 || math.IsNaN(weightKg) || math.IsInf(weightKg, 0) {
		return 0, fmt.Errorf("weight %v kg: %w", weightKg, apperr.ErrValidation)
	}
	rate, ok := serviceRates[serviceType]
	if !ok {
		return 0, fmt.Errorf("service type %q: %w", serviceType, apperr.ErrValidation)
	}
	return round2(weightKg * rate), nil
}

// CalculateShippingPrice applies the weight and subtotal discounts to the
// base price. The result is not floored at zero.
func CalculateShippingPrice(subtotal, weightKg float64, serviceType ServiceType) (float64, error) {
	base, err := CalculateBaseShippingPrice(weightKg, serviceType)
	if err != nil {
		return 0, err
	}
	wd := weightDiscountRate(weightKg)
	sd := subtotalDiscountRate(subtotal)
	return round2(base - base*wd - base*sd), nil
}

func weightDiscountRate(weightKg float64) float64 {
	if weightKg <= 50 {
		return 0.001 * weightKg
	}
	return 0.05
}

func subtotalDiscountRate(subtotal float64) float64 {
	for _, tier := range subtotalTiers {
		if subtotal >= tier.min {
			return tier.rate
		}
	}
	return 0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
