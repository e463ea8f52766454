// internal/services/sustainability_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnvironmentalImpactForJacket(t *testing.T) {
	store := loadFixtures(t)
	svc := NewSustainabilityService(store, NewRepairService(store)).WithClock(newTestClock().Now)

	report := svc.CalculateEnvironmentalImpact(jacketID, fixedNow.Add(-730*24*time.Hour))

	assert.Equal(t, 14.8, report.TotalCarbonFootprint)
	assert.Equal(t, 4.3, report.CarbonSavedByRepairs)
	assert.Equal(t, 10.5, report.AdjustedCarbonFootprint)
	assert.EqualValues(t, 730, report.OwnershipDurationDays)
	assert.Equal(t, 2.0, report.OwnershipDurationYears)
	assert.Equal(t, 14.38, report.DailyImpactGrams)
	assert.EqualValues(t, 89, report.ComparisonVsFastFashion)
}

func TestEnvironmentalImpactWithoutOwnershipPeriod(t *testing.T) {
	store := loadFixtures(t)
	svc := NewSustainabilityService(store, NewRepairService(store)).WithClock(newTestClock().Now)

	report := svc.CalculateEnvironmentalImpact(jacketID, time.Time{})

	assert.EqualValues(t, 0, report.OwnershipDurationDays)
	assert.Equal(t, 0.0, report.DailyImpactGrams)
	assert.EqualValues(t, 58, report.ComparisonVsFastFashion)
}

func TestEnvironmentalImpactNeverNegative(t *testing.T) {
	store := loadFixtures(t)
	svc := NewSustainabilityService(store, NewRepairService(store)).WithClock(newTestClock().Now)

	report := svc.CalculateEnvironmentalImpact(bagID, fixedNow.Add(-100*24*time.Hour))

	assert.Equal(t, 21.5, report.TotalCarbonFootprint)
	assert.Equal(t, 0.0, report.CarbonSavedByRepairs)
	assert.GreaterOrEqual(t, report.AdjustedCarbonFootprint, 0.0)
}
