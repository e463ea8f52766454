// internal/services/repair_service.go
package services

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/javajoker/dpp-backend/internal/fixtures"
	"github.com/javajoker/dpp-backend/internal/models"
)

const repairStatusCompleted = "completed"

type RepairService struct {
	fixtures *fixtures.Store
}

func NewRepairService(store *fixtures.Store) *RepairService {
	return &RepairService{fixtures: store}
}

func (s *RepairService) ByProduct(productID string) []models.Repair {
	return s.filter(func(r models.Repair) bool { return r.ProductID == productID })
}

func (s *RepairService) ByOwner(ownerID string) []models.Repair {
	return s.filter(func(r models.Repair) bool { return r.OwnerID == ownerID })
}

func (s *RepairService) Count(productID string) int {
	return len(s.ByProduct(productID))
}

// CompletedCount counts repairs whose status is "completed", case-insensitively.
func (s *RepairService) CompletedCount(productID string) int {
	n := 0
	for _, r := range s.ByProduct(productID) {
		if isCompletedRepair(r) {
			n++
		}
	}
	return n
}

// TotalCarbonSaved sums the carbon saved by the product's completed repairs.
func (s *RepairService) TotalCarbonSaved(productID string) decimal.Decimal {
	total := decimal.Zero
	for _, r := range s.ByProduct(productID) {
		if isCompletedRepair(r) {
			total = total.Add(decimal.NewFromFloat(r.CarbonSavedKg))
		}
	}
	return total
}

func (s *RepairService) filter(keep func(models.Repair) bool) []models.Repair {
	out := []models.Repair{}
	for _, r := range s.fixtures.Repairs() {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func isCompletedRepair(r models.Repair) bool {
	return strings.EqualFold(r.Status, repairStatusCompleted)
}
