package usecase

import "testing"

func TestMatchManufacturer(t *testing.T) {
	vocab := DefaultVocabulary()

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"exact name", "deye inverter", "deye"},
		{"case insensitive", "Victron MultiPlus 3000", "victron"},
		{"embedded in query", "ich suche einen pylontech speicher", "pylontech"},
		{"no manufacturer", "8kw hybrid inverter", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := vocab.MatchManufacturer(tt.query); got != tt.want {
				t.Errorf("MatchManufacturer(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestMatchProductType(t *testing.T) {
	vocab := DefaultVocabulary()

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"english inverter", "deye inverter 8kw", "inverter"},
		{"german inverter", "wechselrichter 10kw", "inverter"},
		{"hybrid still generic first", "hybrid inverter", "inverter"},
		{"hybrid alone", "deye hybrid 8kw", "hybrid-inverter"},
		{"german storage", "speicher 10kwh", "storage-system"},
		{"german battery", "pylontech akku", "battery"},
		{"solar module", "450w solarmodul", "solar-module"},
		{"nothing", "kabel 10m", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := vocab.MatchProductType(tt.query); got != tt.want {
				t.Errorf("MatchProductType(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestTypeMatches(t *testing.T) {
	tests := []struct {
		name        string
		canonical   string
		productType string
		want        bool
	}{
		{"generic inverter matches hybrid", "inverter", "hybrid-inverter", true},
		{"generic inverter matches string", "inverter", "string-inverter", true},
		{"generic inverter rejects battery", "inverter", "battery", false},
		{"specific type substring", "hybrid-inverter", "hybrid-inverter", true},
		{"specific type mismatch", "hybrid-inverter", "string-inverter", false},
		{"case insensitive record type", "battery", "Battery", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TypeMatches(tt.canonical, tt.productType); got != tt.want {
				t.Errorf("TypeMatches(%q, %q) = %v, want %v", tt.canonical, tt.productType, got, tt.want)
			}
		})
	}
}
