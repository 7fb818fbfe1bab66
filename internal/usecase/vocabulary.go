package usecase

import "strings"

// Vocabulary holds the manufacturer names and product-type synonym
// groups used by the cascade resolver. It is injected so the lists can
// grow without touching resolver logic.
type Vocabulary struct {
	Manufacturers []string
	ProductTypes  []TypeSynonyms
}

// TypeSynonyms maps a canonical product-type tag to the surface forms
// that may appear in a user query.
type TypeSynonyms struct {
	Canonical string
	Synonyms  []string
}

// DefaultVocabulary returns the built-in manufacturer and type tables.
// Catalog names mix German and English, so both surface forms are kept.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Manufacturers: []string{
			"deye", "victron", "pylontech", "inlium", "votronic", "husatech", "sofar",
		},
		ProductTypes: []TypeSynonyms{
			{Canonical: "inverter", Synonyms: []string{"inverter", "wechselrichter"}},
			{Canonical: "string-inverter", Synonyms: []string{"string-inverter", "string inverter"}},
			{Canonical: "hybrid-inverter", Synonyms: []string{"hybrid-inverter", "hybrid inverter", "hybrid"}},
			{Canonical: "battery", Synonyms: []string{"battery", "batterie", "akku"}},
			{Canonical: "storage-system", Synonyms: []string{"storage-system", "storage", "speicher", "speichersystem"}},
			{Canonical: "solar-module", Synonyms: []string{"solar-module", "solar module", "solarmodul", "panel", "modul"}},
		},
	}
}

// MatchManufacturer returns the first vocabulary manufacturer contained
// in the query, or "".
func (v Vocabulary) MatchManufacturer(query string) string {
	q := strings.ToLower(query)
	for _, m := range v.Manufacturers {
		if strings.Contains(q, m) {
			return m
		}
	}
	return ""
}

// MatchProductType returns the canonical tag of the first synonym group
// with a synonym contained in the query, or "".
func (v Vocabulary) MatchProductType(query string) string {
	q := strings.ToLower(query)
	for _, group := range v.ProductTypes {
		for _, syn := range group.Synonyms {
			if strings.Contains(q, syn) {
				return group.Canonical
			}
		}
	}
	return ""
}

// TypeMatches reports whether a record's product type satisfies the
// canonical tag. The generic "inverter" tag matches any compound type
// containing "inverter" (hybrid-inverter, string-inverter, ...).
func TypeMatches(canonical, productType string) bool {
	pt := strings.ToLower(productType)
	if canonical == "inverter" {
		return strings.Contains(pt, "inverter")
	}
	return strings.Contains(pt, canonical)
}
