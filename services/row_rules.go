package services

import (
	"math"
	"strconv"
	"strings"

	"catalog-service/models"
)

// Row rejection reasons reported back to the uploader.
const (
	ReasonMissingFields = "Missing required fields"
	ReasonInvalidPrice  = "Invalid price"
	ReasonInvalidStock  = "Invalid stock"
)

var curlyQuotes = strings.NewReplacer("\u201c", `"`, "\u201d", `"`)

// rowRule validates one aspect of a row and fills the matching product
// fields. It returns a non-empty reason when the row must be rejected.
type rowRule func(row csvRow, p *models.Product) string

// productRowRules run in order; the first failure decides the reported reason.
var productRowRules = []rowRule{
	requireFields,
	parsePrice,
	parseStock,
	splitLists,
}

func requireFields(row csvRow, p *models.Product) string {
	for _, field := range []string{"name", "description", "price", "category"} {
		if _, ok := row.get(field); !ok {
			return ReasonMissingFields
		}
	}
	p.Name = row["name"]
	p.Description = row["description"]
	p.Category = row["category"]
	return ""
}

func parsePrice(row csvRow, p *models.Product) string {
	price, err := strconv.ParseFloat(row["price"], 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return ReasonInvalidPrice
	}
	p.Price = price
	return ""
}

func parseStock(row csvRow, p *models.Product) string {
	raw, ok := row.get("stock")
	if !ok {
		p.Stock = 0
		return ""
	}
	stock, err := strconv.Atoi(raw)
	if err != nil || stock < 0 {
		return ReasonInvalidStock
	}
	p.Stock = stock
	return ""
}

func splitLists(row csvRow, p *models.Product) string {
	if raw, ok := row.get("images"); ok {
		p.Images = splitList(raw)
	}
	if raw, ok := row.get("tags"); ok {
		p.Tags = splitList(curlyQuotes.Replace(raw))
	}
	return ""
}

// splitList splits on commas, trims each element and drops empty ones.
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// applyRowRules builds a product from a row, stopping at the first failing rule.
func applyRowRules(row csvRow, p *models.Product) string {
	for _, rule := range productRowRules {
		if reason := rule(row, p); reason != "" {
			return reason
		}
	}
	return ""
}
