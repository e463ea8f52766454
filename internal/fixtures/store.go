// internal/fixtures/store.go

// Package fixtures serves the read-only passport records: products, certificates,
// manufacturer ownership and transaction records, repairs, sustainability data and
// badge definitions.
//
// Lookups by product id follow a find-or-first policy: when no record matches the
// requested id the first record of the list is returned instead. This mirrors the
// single-product demo data the passport was designed around, and it means a caller
// with a mistyped id silently receives another product's data. Every fallback is
// logged at warning level and reported through the returned bool.
package fixtures

import (
	"github.com/sirupsen/logrus"

	"github.com/javajoker/dpp-backend/internal/models"
)

type Data struct {
	Products       []models.Product
	Ownership      []models.OwnershipFixture
	Certificates   []models.CertificateFixture
	Transactions   []models.TransactionFixture
	Repairs        []models.Repair
	Sustainability []models.SustainabilityFixture
	Badges         []models.Badge
}

type Store struct {
	data Data
}

func New(data Data) *Store {
	return &Store{data: data}
}

// findOrFirst returns the index of the element matching id, or 0 with matched=false.
// found is false only when the list is empty.
func findOrFirst(kind, id string, n int, idAt func(int) string) (index int, matched, found bool) {
	if n == 0 {
		return 0, false, false
	}
	for i := 0; i < n; i++ {
		if idAt(i) == id {
			return i, true, true
		}
	}
	if id != "" {
		logrus.WithFields(logrus.Fields{
			"fixture":    kind,
			"product_id": id,
			"fallback":   idAt(0),
		}).Warn("Fixture lookup missed, falling back to first record")
	}
	return 0, false, true
}

func (s *Store) Products() []models.Product {
	return append([]models.Product(nil), s.data.Products...)
}

// Product returns the product with id, or the first product. ok is false when there
// are no products at all.
func (s *Store) Product(id string) (product models.Product, matched bool, ok bool) {
	i, matched, ok := findOrFirst("product", id, len(s.data.Products), func(i int) string {
		return s.data.Products[i].ProductID
	})
	if !ok {
		return models.Product{}, false, false
	}
	return s.data.Products[i], matched, true
}

// HasProduct is the strict lookup, without fallback.
func (s *Store) HasProduct(id string) bool {
	for _, p := range s.data.Products {
		if p.ProductID == id {
			return true
		}
	}
	return false
}

func (s *Store) Ownership(productID string) (models.OwnershipFixture, bool) {
	i, _, ok := findOrFirst("ownership", productID, len(s.data.Ownership), func(i int) string {
		return s.data.Ownership[i].ProductID
	})
	if !ok {
		return models.OwnershipFixture{}, false
	}
	return s.data.Ownership[i], true
}

func (s *Store) Certificate(productID string) (models.CertificateFixture, bool) {
	i, _, ok := findOrFirst("certificate", productID, len(s.data.Certificates), func(i int) string {
		return s.data.Certificates[i].ProductID
	})
	if !ok {
		return models.CertificateFixture{}, false
	}
	return s.data.Certificates[i], true
}

func (s *Store) Transaction(productID string) (models.TransactionFixture, bool) {
	i, _, ok := findOrFirst("transaction", productID, len(s.data.Transactions), func(i int) string {
		return s.data.Transactions[i].ProductID
	})
	if !ok {
		return models.TransactionFixture{}, false
	}
	return s.data.Transactions[i], true
}

func (s *Store) Sustainability(productID string) (models.SustainabilityFixture, bool) {
	i, _, ok := findOrFirst("sustainability", productID, len(s.data.Sustainability), func(i int) string {
		return s.data.Sustainability[i].ProductID
	})
	if !ok {
		return models.SustainabilityFixture{}, false
	}
	return s.data.Sustainability[i], true
}

func (s *Store) Repairs() []models.Repair {
	return append([]models.Repair(nil), s.data.Repairs...)
}

// Badges returns the badge definitions in their stored order.
func (s *Store) Badges() []models.Badge {
	return append([]models.Badge(nil), s.data.Badges...)
}
