package usecase

import (
	"regexp"
	"strconv"
	"strings"
)

// Package-level compiled regex patterns for performance. Product names
// mix German and English unit spellings; matching is case-insensitive
// and accepts both decimal separators.
var (
	powerKwPattern     = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(?:kw|kwp)`)
	capacityKwhPattern = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*kwh`)
	powerWattPattern   = regexp.MustCompile(`(?i)(\d+)\s*w(?:att)?`)
)

// ExtractPowerKw pulls the first kW/kWp magnitude out of free text.
// Absence is an ordinary result, not an error. Note the pattern also
// fires on the "kW" prefix of "kWh"; callers rely on this first-match
// behavior staying as-is.
func ExtractPowerKw(text string) (float64, bool) {
	return extractFloat(powerKwPattern, text)
}

// ExtractCapacityKwh pulls the first kWh magnitude out of free text.
func ExtractCapacityKwh(text string) (float64, bool) {
	return extractFloat(capacityKwhPattern, text)
}

// ExtractPowerW pulls the first integer watt magnitude out of free text.
func ExtractPowerW(text string) (int, bool) {
	m := powerWattPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	w, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return w, true
}

func extractFloat(pattern *regexp.Regexp, text string) (float64, bool) {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	normalized := strings.ReplaceAll(m[1], ",", ".")
	v, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
