// internal/services/sustainability_service.go
package services

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/javajoker/dpp-backend/internal/fixtures"
)

var (
	defaultCarbonFootprintKg = decimal.NewFromFloat(14.8)
	// Yearly footprint of a fast-fashion equivalent replaced regularly.
	fastFashionKgPerYear = decimal.NewFromFloat(24.8)
	daysPerYear          = decimal.NewFromInt(365)
)

type EnvironmentalImpactReport struct {
	ProductID               string  `json:"productId"`
	TotalCarbonFootprint    float64 `json:"totalCarbonFootprint"`
	CarbonSavedByRepairs    float64 `json:"carbonSavedByRepairs"`
	AdjustedCarbonFootprint float64 `json:"adjustedCarbonFootprint"`
	OwnershipDurationDays   int64   `json:"ownershipDurationDays"`
	OwnershipDurationYears  float64 `json:"ownershipDurationYears"`
	DailyImpactGrams        float64 `json:"dailyImpactGrams"`
	ComparisonVsFastFashion int64   `json:"comparisonVsFastFashion"`
}

type SustainabilityService struct {
	fixtures *fixtures.Store
	repairs  *RepairService
	now      func() time.Time
}

func NewSustainabilityService(store *fixtures.Store, repairs *RepairService) *SustainabilityService {
	return &SustainabilityService{fixtures: store, repairs: repairs, now: time.Now}
}

func (s *SustainabilityService) WithClock(now func() time.Time) *SustainabilityService {
	s.now = now
	return s
}

// CalculateEnvironmentalImpact reports the product's footprint net of repair
// savings, spread over the ownership period starting at start.
func (s *SustainabilityService) CalculateEnvironmentalImpact(productID string, start time.Time) EnvironmentalImpactReport {
	base := defaultCarbonFootprintKg
	if fixture, ok := s.fixtures.Sustainability(productID); ok && fixture.EnvironmentalImpact.CarbonFootprintKgCO2e > 0 {
		base = decimal.NewFromFloat(fixture.EnvironmentalImpact.CarbonFootprintKgCO2e)
	}

	days := int64(0)
	if !start.IsZero() {
		days = int64(s.now().Sub(start) / (24 * time.Hour))
	}
	durationDays := decimal.NewFromInt(days)
	years := durationDays.Div(daysPerYear)

	saved := s.repairs.TotalCarbonSaved(productID)
	adjusted := decimal.Max(decimal.Zero, base.Sub(saved))

	daily := decimal.Zero
	if days > 0 {
		daily = adjusted.Div(durationDays).Mul(decimal.NewFromInt(1000))
	}

	span := decimal.Max(years, decimal.NewFromInt(1))
	fastFashion := fastFashionKgPerYear.Mul(span)
	perYear := adjusted.Div(span)
	comparison := fastFashion.Sub(perYear).Div(fastFashion).Mul(decimal.NewFromInt(100)).Round(0)

	return EnvironmentalImpactReport{
		ProductID:               productID,
		TotalCarbonFootprint:    base.Round(2).InexactFloat64(),
		CarbonSavedByRepairs:    saved.Round(2).InexactFloat64(),
		AdjustedCarbonFootprint: adjusted.Round(2).InexactFloat64(),
		OwnershipDurationDays:   days,
		OwnershipDurationYears:  years.Round(2).InexactFloat64(),
		DailyImpactGrams:        daily.Round(2).InexactFloat64(),
		ComparisonVsFastFashion: comparison.IntPart(),
	}
}
