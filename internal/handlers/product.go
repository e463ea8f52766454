// internal/handlers/product.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/dpp-backend/internal/fixtures"
	"github.com/javajoker/dpp-backend/internal/models"
	"github.com/javajoker/dpp-backend/internal/services"
	"github.com/javajoker/dpp-backend/internal/utils"
)

type ProductHandler struct {
	store                 *fixtures.Store
	ownershipService      services.OwnershipStore
	repairService         *services.RepairService
	sustainabilityService *services.SustainabilityService
	badgeService          *services.BadgeService
}

func NewProductHandler(store *fixtures.Store, ownershipService services.OwnershipStore, repairService *services.RepairService, sustainabilityService *services.SustainabilityService, badgeService *services.BadgeService) *ProductHandler {
	return &ProductHandler{
		store:                 store,
		ownershipService:      ownershipService,
		repairService:         repairService,
		sustainabilityService: sustainabilityService,
		badgeService:          badgeService,
	}
}

// GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	products := h.store.Products()
	start, end := utils.PageBounds(len(products), params)

	result := utils.CreatePaginationResult(products[start:end], int64(len(products)), params)
	utils.PaginatedResponse(c, result)
}

// GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, ok := h.product(c)
	if !ok {
		return
	}

	cert, _ := h.store.Certificate(product.ProductID)
	utils.SuccessResponse(c, gin.H{
		"product":     product,
		"certificate": cert.Certificate,
	})
}

// GET /products/:id/repairs
func (h *ProductHandler) GetRepairs(c *gin.Context) {
	product, ok := h.product(c)
	if !ok {
		return
	}

	repairs := h.repairService.ByProduct(product.ProductID)
	utils.SuccessResponse(c, gin.H{
		"repairs":          repairs,
		"total":            len(repairs),
		"completed":        h.repairService.CompletedCount(product.ProductID),
		"totalCarbonSaved": h.repairService.TotalCarbonSaved(product.ProductID).StringFixed(2),
	})
}

// GET /products/:id/sustainability
func (h *ProductHandler) GetSustainability(c *gin.Context) {
	product, ok := h.product(c)
	if !ok {
		return
	}

	record, err := h.ownershipService.Get(c.Request.Context(), product.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}

	data, _ := h.store.Sustainability(product.ProductID)
	utils.SuccessResponse(c, gin.H{
		"sustainability": data,
		"impact":         h.sustainabilityService.CalculateEnvironmentalImpact(product.ProductID, ownershipStart(record)),
	})
}

// GET /products/:id/badges
func (h *ProductHandler) GetBadges(c *gin.Context) {
	product, ok := h.product(c)
	if !ok {
		return
	}

	record, err := h.ownershipService.Get(c.Request.Context(), product.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}

	// Nothing is earned before the owner activates the passport.
	if !record.IsActive() {
		utils.SuccessResponse(c, gin.H{
			"badges":   h.store.Badges(),
			"achieved": []models.Badge{},
		})
		return
	}

	badges := h.badgeService.Evaluate(product.ProductID, record.OwnerID(), ownershipStart(record))
	utils.SuccessResponse(c, gin.H{
		"badges":   badges,
		"achieved": services.AchievedOnly(badges),
	})
}

// product resolves :id strictly; unknown ids get a 404 instead of the
// first-record fallback the fixture lookups use.
func (h *ProductHandler) product(c *gin.Context) (models.Product, bool) {
	id := c.Param("id")
	if !h.store.HasProduct(id) {
		utils.NotFoundResponse(c, "product")
		return models.Product{}, false
	}
	product, _, _ := h.store.Product(id)
	return product, true
}

func ownershipStart(record *models.OwnershipRecord) time.Time {
	if record == nil || record.ActivatedAt == nil {
		return time.Time{}
	}
	return *record.ActivatedAt
}
