package domain

// MatchKind identifies which resolution stage produced a candidate.
// Precedence (highest first): exact article number, partial article
// number, manufacturer, name, semantic.
type MatchKind string

const (
	MatchExactID      MatchKind = "exact_id"
	MatchPartialID    MatchKind = "partial_id"
	MatchManufacturer MatchKind = "manufacturer"
	MatchName         MatchKind = "name"
	MatchSemantic     MatchKind = "semantic"
)

// BOMEntry is one line of a kit's bill of materials.
type BOMEntry struct {
	ArticleNumber string `json:"articleNumber"`
	Quantity      int    `json:"quantity"`
	Role          string `json:"role,omitempty"`
}

// ProductRecord is a read-only projection of one catalog entry.
// The catalog is owned by an external ingestion process; records are
// never mutated here.
type ProductRecord struct {
	ID               string                 `json:"id"`
	ArticleNumber    string                 `json:"articleNumber"`
	Name             string                 `json:"name"`
	Manufacturer     string                 `json:"manufacturer,omitempty"`
	ProductType      string                 `json:"productType,omitempty"`
	CategoryPath     string                 `json:"categoryPath,omitempty"`
	ShortDescription string                 `json:"shortDescription,omitempty"`
	Description      string                 `json:"description,omitempty"`
	RawAttributes    map[string]interface{} `json:"rawAttributes,omitempty"`
	BillOfMaterials  []BOMEntry             `json:"billOfMaterials,omitempty"`
}

// ScoredCandidate is a product plus the score and stage that produced it.
type ScoredCandidate struct {
	ProductRecord
	Score     float64   `json:"score"`
	MatchKind MatchKind `json:"matchKind"`
}

// ScoredProduct is a product with a derived fit score, used by the
// component categorizer. RequiredUnits is set only for solar modules
// whose wattage could be read from the name.
type ScoredProduct struct {
	ProductRecord
	FitScore      float64 `json:"fitScore"`
	RequiredUnits int     `json:"requiredUnits,omitempty"`
}

// ComponentBuckets is the result of one full-catalog categorization.
// Each list is sorted by fit score descending and capped.
type ComponentBuckets struct {
	Kits         []ScoredProduct `json:"kits"`
	SolarModules []ScoredProduct `json:"solarModules"`
	Inverters    []ScoredProduct `json:"inverters"`
	StorageUnits []ScoredProduct `json:"storageUnits"`
}

// ComponentRequest holds the sizing inputs for a categorization call.
type ComponentRequest struct {
	TargetPowerKw float64 `json:"targetPowerKw" binding:"required"`
	WantsStorage  bool    `json:"wantsStorage"`
	WantsBackup   bool    `json:"wantsBackupPower"`
	IsBalconyUnit bool    `json:"isBalconyUnit"`
}

// StorageRequest holds the inputs for a storage recommendation.
type StorageRequest struct {
	PvPowerKwp           float64  `json:"pvPowerKwp" binding:"required"`
	AnnualConsumptionKwh *float64 `json:"annualConsumptionKwh,omitempty"`
}

// PricingData is the price subset served by the platform API. All
// other product data comes from the catalog index.
type PricingData struct {
	PurchaseNet   *float64   `json:"purchaseNet,omitempty"`
	PurchaseGross *float64   `json:"purchaseGross,omitempty"`
	SalesNet      *float64   `json:"salesNet,omitempty"`
	SalesGross    *float64   `json:"salesGross,omitempty"`
	DiscountPct   float64    `json:"discountPercent"`
	OnOffer       bool       `json:"onOffer"`
	VatRatePct    int        `json:"vatRatePercent"`
	BOMPrices     []BOMPrice `json:"bomPrices,omitempty"`
}

// BOMPrice is the pricing of one kit component.
type BOMPrice struct {
	ArticleNumber string   `json:"articleNumber"`
	Quantity      int      `json:"quantity"`
	PurchaseNet   *float64 `json:"purchaseNet,omitempty"`
	SalesNet      *float64 `json:"salesNet,omitempty"`
}

// SupplierData is the default-supplier subset served by the platform API.
type SupplierData struct {
	Name           string `json:"name,omitempty"`
	SupplierNumber string `json:"supplierNumber,omitempty"`
}
