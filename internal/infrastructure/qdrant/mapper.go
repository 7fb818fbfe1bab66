package qdrant

import (
	"encoding/json"
	"fmt"

	"github.com/voltlens/backend/internal/domain"
)

// mapPoint converts a Qdrant point payload into a ProductRecord. The
// attributes block is passed through untouched; nothing here needs to
// parse it.
func mapPoint(p point) domain.ProductRecord {
	record := domain.ProductRecord{
		ID:               pointID(p.ID),
		ArticleNumber:    payloadString(p.Payload, "article_number"),
		Name:             payloadString(p.Payload, "name"),
		Manufacturer:     payloadString(p.Payload, "manufacturer"),
		ProductType:      payloadString(p.Payload, "product_type"),
		CategoryPath:     payloadString(p.Payload, "category_path"),
		ShortDescription: payloadString(p.Payload, "short_description"),
		Description:      payloadString(p.Payload, "description"),
		BillOfMaterials:  payloadBOM(p.Payload),
	}

	if attrs, ok := p.Payload["attributes"].(map[string]interface{}); ok {
		record.RawAttributes = attrs
	}

	return record
}

// pointID renders the Qdrant point id, which may be numeric or a UUID.
func pointID(id interface{}) string {
	if id == nil {
		return ""
	}
	if s, ok := id.(string); ok {
		return s
	}
	return fmt.Sprint(id)
}

func payloadString(payload map[string]interface{}, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}

// payloadBOM reads the bill_of_materials payload list; only kits carry
// one. Malformed entries are skipped.
func payloadBOM(payload map[string]interface{}) []domain.BOMEntry {
	raw, ok := payload["bill_of_materials"].([]interface{})
	if !ok || len(raw) == 0 {
		return nil
	}

	entries := make([]domain.BOMEntry, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		entry := domain.BOMEntry{
			ArticleNumber: payloadString(m, "article_number"),
			Role:          payloadString(m, "role"),
			Quantity:      payloadInt(m, "quantity"),
		}
		if entry.ArticleNumber == "" {
			continue
		}
		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		return nil
	}
	return entries
}

func payloadInt(payload map[string]interface{}, key string) int {
	switch v := payload[key].(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}
