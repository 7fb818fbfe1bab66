package usecase

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/voltlens/backend/internal/domain"
	"github.com/voltlens/backend/internal/metrics"
)

// Stage scores. Exact article numbers outrank everything; semantic hits
// keep the similarity score reported by the index.
const (
	scoreExactArticle  = 1.0
	scorePartialExact  = 0.95
	scorePartialPrefix = 0.90
	scoreManufacturer  = 0.85
	scoreNameExact     = 1.0
	scoreNamePartial   = 0.8
	minQueryLength     = 3
	minNameFieldLength = 3
)

// Package-level compiled regex patterns for performance
var (
	// Full article numbers: 7 digits, optional -NNN variant suffix
	articleNumberPattern = regexp.MustCompile(`\b\d{7}(?:-\d{3})?\b`)

	// Partial article numbers: any 4-10 digit run
	partialNumberPattern = regexp.MustCompile(`\b\d{4,10}\b`)
)

// ResolverConfig holds tuning parameters for the cascade resolver
type ResolverConfig struct {
	DefaultLimit     int
	MinSemanticScore float64
	ScanPageSize     int
}

// Resolver resolves a free-form query to ranked catalog candidates by
// trying exact article number, partial article number, manufacturer,
// name, and finally semantic vector search, in that order.
type Resolver struct {
	catalog  domain.CatalogRepository
	embedder domain.Embedder
	vocab    Vocabulary
	logger   *zap.Logger

	defaultLimit     int
	minSemanticScore float64
	scanPageSize     int
}

// NewResolver creates a cascade resolver with the given dependencies
func NewResolver(
	catalog domain.CatalogRepository,
	embedder domain.Embedder,
	vocab Vocabulary,
	config ResolverConfig,
	logger *zap.Logger,
) *Resolver {
	limit := config.DefaultLimit
	if limit <= 0 {
		limit = 5
	}

	minScore := config.MinSemanticScore
	if minScore <= 0 {
		minScore = 0.3
	}

	pageSize := config.ScanPageSize
	if pageSize <= 0 {
		pageSize = 500
	}

	return &Resolver{
		catalog:          catalog,
		embedder:         embedder,
		vocab:            vocab,
		logger:           logger,
		defaultLimit:     limit,
		minSemanticScore: minScore,
		scanPageSize:     pageSize,
	}
}

// accumulator merges stage outputs while enforcing the dedup invariant:
// the first (highest-precedence) occurrence of a non-empty article
// number wins, later duplicates are dropped. Candidates without an
// article number are never emitted.
type accumulator struct {
	results []domain.ScoredCandidate
	seen    map[string]bool
}

func newAccumulator() *accumulator {
	return &accumulator{seen: make(map[string]bool)}
}

func (a *accumulator) add(c domain.ScoredCandidate) bool {
	if c.ArticleNumber == "" || a.seen[c.ArticleNumber] {
		return false
	}
	a.seen[c.ArticleNumber] = true
	a.results = append(a.results, c)
	return true
}

func (a *accumulator) addAll(cs []domain.ScoredCandidate) int {
	added := 0
	for _, c := range cs {
		if a.add(c) {
			added++
		}
	}
	return added
}

// Resolve runs the five-stage cascade. Stage failures degrade to empty
// contributions and never abort the call; a total catalog outage yields
// an empty result, not an error.
func (r *Resolver) Resolve(ctx context.Context, query string, limit int, typeFilter string, minScore float64) []domain.ScoredCandidate {
	if limit <= 0 {
		limit = r.defaultLimit
	}
	if minScore <= 0 {
		minScore = r.minSemanticScore
	}

	acc := newAccumulator()

	// Stage 1: exact article numbers
	exactTokens := articleNumberPattern.FindAllString(query, -1)
	exactHits, err := r.exactStage(ctx, exactTokens)
	if err != nil {
		r.stageFailed("exact", err)
	}
	n := acc.addAll(exactHits)
	metrics.StageCandidates.WithLabelValues("exact").Add(float64(n))

	// Stage 2: partial article numbers
	if len(acc.results) < limit {
		hits, err := r.partialStage(ctx, query, exactTokens, len(exactHits) > 0)
		if err != nil {
			r.stageFailed("partial", err)
		} else {
			n := acc.addAll(truncate(hits, limit-len(acc.results)))
			metrics.StageCandidates.WithLabelValues("partial").Add(float64(n))
		}
	}

	// Stage 3: manufacturer
	if len(acc.results) < limit {
		hits, err := r.manufacturerStage(ctx, query, limit-len(acc.results))
		if err != nil {
			r.stageFailed("manufacturer", err)
		} else {
			n := acc.addAll(hits)
			metrics.StageCandidates.WithLabelValues("manufacturer").Add(float64(n))
		}
	}

	// Stage 4: name
	if len(acc.results) < limit {
		hits, err := r.nameStage(ctx, query)
		if err != nil {
			r.stageFailed("name", err)
		} else {
			n := acc.addAll(truncate(hits, limit-len(acc.results)))
			metrics.StageCandidates.WithLabelValues("name").Add(float64(n))
		}
	}

	// Stage 5: semantic fallback
	if len(acc.results) < limit {
		hits, err := r.semanticStage(ctx, query, limit-len(acc.results), typeFilter, minScore)
		if err != nil {
			r.stageFailed("semantic", err)
		} else {
			n := acc.addAll(hits)
			metrics.StageCandidates.WithLabelValues("semantic").Add(float64(n))
		}
	}

	// Stable sort keeps stage precedence on score ties.
	results := acc.results
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	results = truncate(results, limit)

	if len(results) == 0 {
		metrics.ResolveRequests.WithLabelValues("empty").Inc()
	} else {
		metrics.ResolveRequests.WithLabelValues("ok").Inc()
	}

	return results
}

// SemanticSearch bypasses the cascade and queries the vector index
// directly. Failures degrade to an empty result.
func (r *Resolver) SemanticSearch(ctx context.Context, query string, limit int, typeFilter string, minScore float64) []domain.ScoredCandidate {
	if limit <= 0 {
		limit = r.defaultLimit
	}
	if minScore <= 0 {
		minScore = r.minSemanticScore
	}

	hits, err := r.semanticStage(ctx, query, limit, typeFilter, minScore)
	if err != nil {
		r.stageFailed("semantic", err)
		return nil
	}
	return hits
}

func (r *Resolver) stageFailed(stage string, err error) {
	metrics.StageFailures.WithLabelValues(stage).Inc()
	r.logger.Warn("resolution stage failed",
		zap.String("stage", stage),
		zap.Error(err),
	)
}

// exactStage looks up every full article number token from the query.
func (r *Resolver) exactStage(ctx context.Context, tokens []string) ([]domain.ScoredCandidate, error) {
	var hits []domain.ScoredCandidate
	var lastErr error

	for _, token := range tokens {
		record, err := r.catalog.ExactLookup(ctx, "article_number", token)
		if err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				continue
			}
			lastErr = err
			continue
		}
		hits = append(hits, domain.ScoredCandidate{
			ProductRecord: *record,
			Score:         scoreExactArticle,
			MatchKind:     domain.MatchExactID,
		})
	}

	if len(hits) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return hits, nil
}

// partialStage scans the catalog for article numbers starting with any
// 4-10 digit token from the query. Tokens already consumed as exact
// article numbers are skipped once stage 1 produced a hit.
func (r *Resolver) partialStage(ctx context.Context, query string, exactTokens []string, hadExactHit bool) ([]domain.ScoredCandidate, error) {
	allNumbers := partialNumberPattern.FindAllString(query, -1)

	var partials []string
	if hadExactHit {
		consumed := make(map[string]bool, len(exactTokens))
		for _, t := range exactTokens {
			consumed[t] = true
		}
		for _, num := range allNumbers {
			if !consumed[num] {
				partials = append(partials, num)
			}
		}
	} else {
		partials = allNumbers
	}

	if len(partials) == 0 {
		return nil, nil
	}

	var hits []domain.ScoredCandidate
	err := r.catalog.ScanAll(ctx, r.scanPageSize, func(record domain.ProductRecord) bool {
		for _, partial := range partials {
			if !strings.HasPrefix(record.ArticleNumber, partial) {
				continue
			}
			score := scorePartialPrefix
			if record.ArticleNumber == partial {
				score = scorePartialExact
			}
			hits = append(hits, domain.ScoredCandidate{
				ProductRecord: record,
				Score:         score,
				MatchKind:     domain.MatchPartialID,
			})
			break
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	// Exact partial matches first
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	return hits, nil
}

// manufacturerStage matches the query against the manufacturer
// vocabulary and scans for records of that manufacturer, optionally
// narrowed to a product type detected in the query. The type filter is
// dropped when it would eliminate every hit.
func (r *Resolver) manufacturerStage(ctx context.Context, query string, budget int) ([]domain.ScoredCandidate, error) {
	manufacturer := r.vocab.MatchManufacturer(query)
	if manufacturer == "" {
		return nil, nil
	}

	var hits []domain.ScoredCandidate
	err := r.catalog.ScanAll(ctx, r.scanPageSize, func(record domain.ProductRecord) bool {
		name := strings.ToLower(strings.TrimSpace(record.Manufacturer))
		if name == "" {
			return true
		}
		if !strings.Contains(name, manufacturer) && !strings.Contains(manufacturer, name) {
			return true
		}
		hits = append(hits, domain.ScoredCandidate{
			ProductRecord: record,
			Score:         scoreManufacturer,
			MatchKind:     domain.MatchManufacturer,
		})
		return true
	})
	if err != nil {
		return nil, err
	}

	if productType := r.vocab.MatchProductType(query); productType != "" {
		var filtered []domain.ScoredCandidate
		for _, h := range hits {
			if TypeMatches(productType, h.ProductType) {
				filtered = append(filtered, h)
			}
		}
		// Keep the unfiltered set rather than returning nothing.
		if len(filtered) > 0 {
			hits = filtered
		}
	}

	return truncate(hits, budget), nil
}

// nameStage matches the whole query against record names, both
// directions, case-insensitively. Queries and names shorter than three
// characters are skipped to guard against vacuous substring matches.
func (r *Resolver) nameStage(ctx context.Context, query string) ([]domain.ScoredCandidate, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if len(q) < minQueryLength {
		return nil, nil
	}

	var hits []domain.ScoredCandidate
	err := r.catalog.ScanAll(ctx, r.scanPageSize, func(record domain.ProductRecord) bool {
		name := strings.ToLower(strings.TrimSpace(record.Name))
		if len(name) < minNameFieldLength {
			return true
		}
		if !strings.Contains(name, q) && !strings.Contains(q, name) {
			return true
		}
		score := scoreNamePartial
		if name == q {
			score = scoreNameExact
		}
		hits = append(hits, domain.ScoredCandidate{
			ProductRecord: record,
			Score:         score,
			MatchKind:     domain.MatchName,
		})
		return true
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	return hits, nil
}

// semanticStage embeds the query and delegates to the vector index.
func (r *Resolver) semanticStage(ctx context.Context, query string, limit int, typeFilter string, minScore float64) ([]domain.ScoredCandidate, error) {
	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	hits, err := r.catalog.SimilaritySearch(ctx, vector, limit, typeFilter, minScore)
	if err != nil {
		return nil, err
	}

	for i := range hits {
		hits[i].MatchKind = domain.MatchSemantic
	}
	return hits, nil
}

func truncate(candidates []domain.ScoredCandidate, limit int) []domain.ScoredCandidate {
	if limit < 0 {
		limit = 0
	}
	if len(candidates) > limit {
		return candidates[:limit]
	}
	return candidates
}
