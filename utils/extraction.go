package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yourusername/invoice-drafts/models"
)

// extractionPayload mirrors models.ExtractionResult with the numbers left
// raw. OCR engines send amounts as JSON numbers, quoted strings, blanks or
// with a decimal comma.
type extractionPayload struct {
	Supplier   string                 `json:"supplier"`
	Client     string                 `json:"client"`
	Date       string                 `json:"date"`
	Total      json.RawMessage        `json:"total"`
	Items      []extractedItemPayload `json:"items"`
	Warnings   []string               `json:"warnings"`
	Confidence float64                `json:"confidence"`
	RawText    string                 `json:"raw_text"`
}

type extractedItemPayload struct {
	Code  string          `json:"code"`
	Name  string          `json:"name"`
	Qty   json.RawMessage `json:"qty"`
	Price json.RawMessage `json:"price"`
	Total json.RawMessage `json:"total"`
}

// DecodeExtraction decodes an extraction result. Numbers that do not parse
// become zero (an unset total for the header) and are reported in Warnings.
func DecodeExtraction(data []byte) (*models.ExtractionResult, error) {
	res := &models.ExtractionResult{}
	if len(bytes.TrimSpace(data)) == 0 {
		return res, nil
	}

	var p extractionPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}

	res.Supplier = p.Supplier
	res.Client = p.Client
	res.Date = p.Date
	res.Warnings = p.Warnings
	res.Confidence = p.Confidence
	res.RawText = p.RawText

	if d, ok := lenientDecimal(p.Total, "total", &res.Warnings); ok {
		res.Total = decimal.NewNullDecimal(d)
	}

	res.Items = make([]models.ExtractedItem, 0, len(p.Items))
	for i, it := range p.Items {
		label := fmt.Sprintf("item %d", i+1)
		qty, _ := lenientDecimal(it.Qty, label+" qty", &res.Warnings)
		price, _ := lenientDecimal(it.Price, label+" price", &res.Warnings)
		total, _ := lenientDecimal(it.Total, label+" total", &res.Warnings)
		res.Items = append(res.Items, models.ExtractedItem{
			Code:  it.Code,
			Name:  it.Name,
			Qty:   qty,
			Price: price,
			Total: total,
		})
	}
	return res, nil
}

// lenientDecimal reports false for a missing, blank or unparseable value.
// Only values that were present but unreadable produce a warning.
func lenientDecimal(raw json.RawMessage, field string, warnings *[]string) (decimal.Decimal, bool) {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return decimal.Zero, false
	}
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			*warnings = append(*warnings, fmt.Sprintf("%s: unreadable value %s", field, text))
			return decimal.Zero, false
		}
		text = s
	}

	d, err := ParseDecimal(text)
	if errors.Is(err, ErrEmptyNumber) {
		return decimal.Zero, false
	}
	if err != nil {
		*warnings = append(*warnings, fmt.Sprintf("%s: %q is not a number", field, text))
		return decimal.Zero, false
	}
	return d, true
}
