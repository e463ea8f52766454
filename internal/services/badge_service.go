// internal/services/badge_service.go
package services

import (
	"time"

	"github.com/javajoker/dpp-backend/internal/fixtures"
	"github.com/javajoker/dpp-backend/internal/models"
)

const (
	craftsmanshipHoursThreshold = 10
	completedRepairsThreshold   = 2
	stewardshipYearsThreshold   = 3
	yearDuration                = 365 * 24 * time.Hour
)

// BadgeContext carries what the rules may look at.
type BadgeContext struct {
	Product          models.Product
	OwnerID          string
	OwnershipStart   time.Time
	CompletedRepairs int
	Now              time.Time
}

type badgeRule func(BadgeContext) bool

// badgeRules maps badge ids to their achievement rule. Badges without a rule keep
// their stored achieved value.
var badgeRules = map[string]badgeRule{
	// Evaluation is only requested for active ownership.
	"first-owner": func(BadgeContext) bool { return true },
	"craftsmanship-heritage": func(c BadgeContext) bool {
		return c.Product.CraftsmanshipHours >= craftsmanshipHoursThreshold
	},
	"sustainability-guardian": func(c BadgeContext) bool {
		return c.CompletedRepairs >= completedRepairsThreshold
	},
	"three-year-steward": func(c BadgeContext) bool {
		if c.OwnershipStart.IsZero() {
			return false
		}
		return float64(c.Now.Sub(c.OwnershipStart))/float64(yearDuration) >= stewardshipYearsThreshold
	},
}

type BadgeService struct {
	fixtures *fixtures.Store
	repairs  *RepairService
	now      func() time.Time
}

func NewBadgeService(store *fixtures.Store, repairs *RepairService) *BadgeService {
	return &BadgeService{fixtures: store, repairs: repairs, now: time.Now}
}

func (s *BadgeService) WithClock(now func() time.Time) *BadgeService {
	s.now = now
	return s
}

// Evaluate returns every badge definition, in stored order, with achieved
// recomputed for the product and owner.
func (s *BadgeService) Evaluate(productID, ownerID string, ownershipStart time.Time) []models.Badge {
	product, _, _ := s.fixtures.Product(productID)
	ctx := BadgeContext{
		Product:          product,
		OwnerID:          ownerID,
		OwnershipStart:   ownershipStart,
		CompletedRepairs: s.repairs.CompletedCount(productID),
		Now:              s.now(),
	}
	return EvaluateBadges(s.fixtures.Badges(), ctx)
}

func (s *BadgeService) GetAchievedBadges(productID, ownerID string, ownershipStart time.Time) []models.Badge {
	return AchievedOnly(s.Evaluate(productID, ownerID, ownershipStart))
}

// EvaluateBadges applies the rule table to badges without modifying the input.
func EvaluateBadges(badges []models.Badge, ctx BadgeContext) []models.Badge {
	out := make([]models.Badge, len(badges))
	for i, badge := range badges {
		if rule, ok := badgeRules[badge.ID]; ok {
			badge.Achieved = rule(ctx)
		}
		out[i] = badge
	}
	return out
}

func AchievedOnly(badges []models.Badge) []models.Badge {
	out := []models.Badge{}
	for _, badge := range badges {
		if badge.Achieved {
			out = append(out, badge)
		}
	}
	return out
}
