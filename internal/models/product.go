// internal/models/product.go
package models

// Product is the immutable catalog record of a passport-bearing good.
type Product struct {
	ProductID          string     `json:"productId"`
	Name               string     `json:"name"`
	Collection         string     `json:"collection"`
	Category           string     `json:"category,omitempty"`
	MadeIn             string     `json:"madeIn"`
	ManufactureDate    string     `json:"manufactureDate"`
	CraftsmanshipHours int        `json:"craftsmanshipHours"`
	DigitalID          string     `json:"digitalId"`
	Materials          []Material `json:"materials,omitempty"`
}

type Material struct {
	Name       string  `json:"name"`
	Origin     string  `json:"origin,omitempty"`
	Percentage float64 `json:"percentage,omitempty"`
	Certified  bool    `json:"certified,omitempty"`
}

type CertificateFixture struct {
	ProductID   string      `json:"productId"`
	Certificate Certificate `json:"certificate"`
}

type Certificate struct {
	CertificateID           string `json:"certificateId"`
	BlockchainNetwork       string `json:"blockchainNetwork,omitempty"`
	ManufacturingProofHash  string `json:"manufacturingProofHash,omitempty"`
	OwnershipEventsAnchored bool   `json:"ownershipEventsAnchored"`
	AuthenticationStatus    string `json:"authenticationStatus"`
	IssuedAt                string `json:"issuedAt,omitempty"`
}

type TransactionFixture struct {
	ProductID   string            `json:"productId"`
	Transaction LedgerTransaction `json:"transaction"`
}

type LedgerTransaction struct {
	TransactionID string `json:"transactionId"`
	Type          string `json:"type"`
	Timestamp     string `json:"timestamp"`
}

// OwnershipFixture is the manufacturer's record of the first activation.
type OwnershipFixture struct {
	ProductID string           `json:"productId"`
	Ownership FixtureOwnership `json:"ownership"`
}

type FixtureOwnership struct {
	Status          string                 `json:"status"`
	CurrentOwner    FixtureOwner           `json:"currentOwner"`
	FirstActivation Activation             `json:"firstActivation"`
	TransferHistory []TransferHistoryEntry `json:"transferHistory"`
	Transferable    bool                   `json:"transferable"`
}

type FixtureOwner struct {
	ClientID string `json:"clientId"`
}

type Activation struct {
	TransactionID string `json:"transactionId"`
	ActivatedAt   string `json:"activatedAt"`
}

type Repair struct {
	RepairID      string  `json:"repairId"`
	ProductID     string  `json:"productId"`
	OwnerID       string  `json:"ownerId"`
	RepairType    string  `json:"repairType"`
	Status        string  `json:"status"`
	Date          string  `json:"date"`
	Notes         string  `json:"notes,omitempty"`
	CarbonSavedKg float64 `json:"carbonSavedKg"`
	CompletedBy   string  `json:"completedBy"`
}

type SustainabilityFixture struct {
	ProductID           string              `json:"productId"`
	EnvironmentalImpact EnvironmentalImpact `json:"environmentalImpact"`
	Circularity         Circularity         `json:"circularity"`
}

type EnvironmentalImpact struct {
	CarbonFootprintKgCO2e  float64 `json:"carbonFootprintKgCO2e"`
	WaterUsageLiters       float64 `json:"waterUsageLiters"`
	RecycledContentPercent float64 `json:"recycledContentPercent"`
}

type Circularity struct {
	Score         int    `json:"score"`
	Repairability string `json:"repairability"`
	Recyclability string `json:"recyclability"`
}

// Badge is a static achievement definition; Achieved is recomputed per query.
type Badge struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Criteria    string `json:"criteria"`
	Image       string `json:"image,omitempty"`
	Achieved    bool   `json:"achieved"`
}
