package usecase

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/voltlens/backend/internal/domain"
	"github.com/voltlens/backend/internal/metrics"
)

// Bucket caps: kits carry a whole system, so more of them are shown.
const (
	maxKits       = 10
	maxComponents = 5
)

// Kit fit scores by deviation from the target power.
const (
	kitBaseScore      = 0.5
	kitCloseScore     = 0.95 // within ±20%
	kitNearScore      = 0.8  // within ±50%
	kitFarScore       = 0.6
	kitBonus          = 0.1
	kitStoragePenalty = 0.2
)

// Inverter and storage fit scores by deviation from the target.
const (
	componentBaseScore  = 0.6
	componentCloseScore = 0.85 // within ±30%
	componentNearScore  = 0.7  // within ±60%
	microInverterScore  = 0.85
	moduleWithWattScore = 0.7
	moduleNoWattScore   = 0.5
)

// Storage capacity is recommended at roughly 1.2 kWh per kWp.
const storageCapacityFactor = 1.2

// backupTerms and storageTerms are searched in product names; catalogs
// carry both English and German wording.
var (
	backupTerms  = []string{"backup", "notstrom", "ersatz", "emergency"}
	storageTerms = []string{"storage", "speicher", "batterie", "battery"}
)

// Categorizer partitions the catalog into ready-made kits and the
// individual component groups of a PV system, scoring each record
// against the requested system size.
type Categorizer struct {
	catalog      domain.CatalogRepository
	logger       *zap.Logger
	scanPageSize int
}

// NewCategorizer creates a component categorizer
func NewCategorizer(catalog domain.CatalogRepository, scanPageSize int, logger *zap.Logger) *Categorizer {
	if scanPageSize <= 0 {
		scanPageSize = 500
	}
	return &Categorizer{
		catalog:      catalog,
		logger:       logger,
		scanPageSize: scanPageSize,
	}
}

// Categorize performs one full catalog scan and buckets every record as
// kit, solar module, inverter, or storage unit. A scan failure yields
// empty buckets, never an error - this feeds a best-effort
// recommendation.
func (c *Categorizer) Categorize(ctx context.Context, req domain.ComponentRequest) domain.ComponentBuckets {
	var buckets domain.ComponentBuckets

	start := time.Now()
	err := c.catalog.ScanAll(ctx, c.scanPageSize, func(record domain.ProductRecord) bool {
		c.classify(&buckets, record, req)
		return true
	})
	metrics.CatalogScanDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.CategorizeRequests.WithLabelValues("scan_failed").Inc()
		c.logger.Warn("catalog scan failed, returning empty buckets",
			zap.Float64("target_power_kw", req.TargetPowerKw),
			zap.Error(err),
		)
		return domain.ComponentBuckets{}
	}

	sortByFitScore(buckets.Kits)
	sortByFitScore(buckets.SolarModules)
	sortByFitScore(buckets.Inverters)
	sortByFitScore(buckets.StorageUnits)

	buckets.Kits = capBucket(buckets.Kits, maxKits)
	buckets.SolarModules = capBucket(buckets.SolarModules, maxComponents)
	buckets.Inverters = capBucket(buckets.Inverters, maxComponents)
	buckets.StorageUnits = capBucket(buckets.StorageUnits, maxComponents)

	metrics.CategorizeRequests.WithLabelValues("ok").Inc()
	return buckets
}

// classify assigns a record to exactly one bucket. Kit takes precedence
// over every component type; anything matching nothing is dropped.
func (c *Categorizer) classify(buckets *domain.ComponentBuckets, record domain.ProductRecord, req domain.ComponentRequest) {
	productType := strings.ToLower(record.ProductType)

	switch {
	case len(record.BillOfMaterials) >= 2:
		buckets.Kits = append(buckets.Kits, scoreKit(record, req))

	case req.IsBalconyUnit && productType == "micro-inverter":
		buckets.Inverters = append(buckets.Inverters, domain.ScoredProduct{
			ProductRecord: record,
			FitScore:      microInverterScore,
		})

	case productType == "solar-module":
		buckets.SolarModules = append(buckets.SolarModules, scoreSolarModule(record, req.TargetPowerKw))

	case strings.Contains(productType, "inverter"):
		buckets.Inverters = append(buckets.Inverters, scoreInverter(record, req))

	case req.WantsStorage && (productType == "storage-system" || productType == "battery"):
		buckets.StorageUnits = append(buckets.StorageUnits, scoreStorage(record, req.TargetPowerKw))
	}
}

// scoreKit rates a bill-of-materials bundle against the target power.
// The storage penalty can push the score below zero; there is no lower
// clamp, a negative score just ranks last.
func scoreKit(record domain.ProductRecord, req domain.ComponentRequest) domain.ScoredProduct {
	name := strings.ToLower(record.Name)
	score := kitBaseScore

	if kw, ok := ExtractPowerKw(name); ok {
		switch ratio := deviationRatio(kw, req.TargetPowerKw); {
		case ratio < 0.2:
			score = kitCloseScore
		case ratio < 0.5:
			score = kitNearScore
		default:
			score = kitFarScore
		}
	}

	if req.WantsBackup && containsAny(name, backupTerms) {
		score += kitBonus
	}

	if req.WantsStorage {
		_, hasKwh := ExtractCapacityKwh(name)
		if hasKwh || containsAny(name, storageTerms) {
			score += kitBonus
		} else {
			score -= kitStoragePenalty
		}
	}

	return domain.ScoredProduct{
		ProductRecord: record,
		FitScore:      math.Min(score, 1.0),
	}
}

// scoreSolarModule rates a panel and derives how many units the target
// power needs when the wattage can be read from the name.
func scoreSolarModule(record domain.ProductRecord, targetPowerKw float64) domain.ScoredProduct {
	scored := domain.ScoredProduct{
		ProductRecord: record,
		FitScore:      moduleNoWattScore,
	}

	if watt, ok := ExtractPowerW(strings.ToLower(record.Name)); ok && watt > 0 {
		scored.RequiredUnits = int(math.Round(targetPowerKw * 1000 / float64(watt)))
		scored.FitScore = moduleWithWattScore
	}

	return scored
}

// scoreInverter rates an inverter against the target power, preferring
// hybrids when storage is wanted.
func scoreInverter(record domain.ProductRecord, req domain.ComponentRequest) domain.ScoredProduct {
	name := strings.ToLower(record.Name)
	productType := strings.ToLower(record.ProductType)
	score := componentBaseScore

	if kw, ok := ExtractPowerKw(name); ok {
		switch ratio := deviationRatio(kw, req.TargetPowerKw); {
		case ratio < 0.3:
			score = componentCloseScore
		case ratio < 0.6:
			score = componentNearScore
		}
	}

	if req.WantsStorage && strings.Contains(productType, "hybrid") {
		score += kitBonus
	}

	if req.WantsBackup && containsAny(name, backupTerms) {
		score += kitBonus
	}

	return domain.ScoredProduct{
		ProductRecord: record,
		FitScore:      math.Min(score, 1.0),
	}
}

// scoreStorage rates a storage unit against the recommended capacity
// for the target power.
func scoreStorage(record domain.ProductRecord, targetPowerKw float64) domain.ScoredProduct {
	score := componentBaseScore

	if kwh, ok := ExtractCapacityKwh(strings.ToLower(record.Name)); ok {
		target := targetPowerKw * storageCapacityFactor
		switch ratio := deviationRatio(kwh, target); {
		case ratio < 0.3:
			score = componentCloseScore
		case ratio < 0.6:
			score = componentNearScore
		}
	}

	return domain.ScoredProduct{
		ProductRecord: record,
		FitScore:      math.Min(score, 1.0),
	}
}

// deviationRatio is the relative distance of value from target, with
// the denominator floored at 1 to keep tiny targets from exploding it.
func deviationRatio(value, target float64) float64 {
	return math.Abs(value-target) / math.Max(target, 1)
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

func sortByFitScore(products []domain.ScoredProduct) {
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].FitScore > products[j].FitScore
	})
}

func capBucket(products []domain.ScoredProduct, max int) []domain.ScoredProduct {
	if len(products) > max {
		return products[:max]
	}
	return products
}
