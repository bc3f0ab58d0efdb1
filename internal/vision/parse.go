package vision

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fuelapi/internal/model"
)

var errInvalidPart = errors.New("vision: invalid content part")

var fenceRe = regexp.MustCompile("```(?:json)?\\s*")

// dateTimeLayouts are tried in order after ISO-8601. Date-only layouts
// resolve to midnight.
var dateTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"01/02/2006 15:04:05",
	"02/01/2006 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

// ParseReceipt turns the model's reply into ExtractedData. It never fails:
// a reply that is not a JSON object yields confidence 0 and the raw text.
func ParseReceipt(content string) *model.ExtractedData {
	cleaned := strings.TrimSpace(fenceRe.ReplaceAllString(content, ""))

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil || fields == nil {
		zap.L().Warn("vision_parse_failed", zap.Error(err), zap.String("raw", content))
		return Degraded(content)
	}

	return &model.ExtractedData{
		StationName:      textField(fields, "stationName"),
		StationBrand:     textField(fields, "stationBrand"),
		Address:          textField(fields, "address"),
		City:             textField(fields, "city"),
		State:            textField(fields, "state"),
		ZipCode:          textField(fields, "zipCode"),
		TotalAmount:      decimalField(fields, "totalAmount"),
		Liters:           decimalField(fields, "liters"),
		PricePerLiter:    decimalField(fields, "pricePerLiter"),
		FuelType:         textField(fields, "fuelType"),
		FuelGrade:        textField(fields, "fuelGrade"),
		PurchaseDateTime: dateTimeField(fields, "purchaseDateTime"),
		ReceiptNumber:    textField(fields, "receiptNumber"),
		PaymentMethod:    textField(fields, "paymentMethod"),
		Confidence:       confidenceField(fields, "confidence"),
		RawText:          cleaned,
	}
}

// Degraded is the result used when a reply could not be interpreted.
func Degraded(raw string) *model.ExtractedData {
	zero := 0.0
	return &model.ExtractedData{Confidence: &zero, RawText: raw}
}

// rawText returns the field as text. Missing fields, JSON null, the string
// "null", objects and arrays all yield false.
func rawText(fields map[string]json.RawMessage, name string) (string, bool) {
	raw, ok := fields[name]
	if !ok {
		return "", false
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}

	var s string
	switch raw[0] {
	case '"':
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
	case '{', '[':
		return "", false
	default:
		s = string(raw)
	}
	if s == "null" {
		return "", false
	}
	return s, true
}

func textField(fields map[string]json.RawMessage, name string) *string {
	s, ok := rawText(fields, name)
	if !ok {
		return nil
	}
	return &s
}

func decimalField(fields map[string]json.RawMessage, name string) decimal.NullDecimal {
	s, ok := rawText(fields, name)
	if !ok {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		zap.L().Warn("vision_invalid_number", zap.String("field", name), zap.String("value", s))
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func confidenceField(fields map[string]json.RawMessage, name string) *float64 {
	s, ok := rawText(fields, name)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		zap.L().Warn("vision_invalid_number", zap.String("field", name), zap.String("value", s))
		return nil
	}
	f = min(max(f, 0), 1)
	return &f
}

func dateTimeField(fields map[string]json.RawMessage, name string) *time.Time {
	s, ok := rawText(fields, name)
	if !ok {
		return nil
	}
	t, ok := ParseDateTime(s)
	if !ok {
		zap.L().Warn("vision_invalid_datetime", zap.String("value", s))
		return nil
	}
	return &t
}

// ParseDateTime tries ISO-8601 first, then a fixed list of common receipt
// formats. Values without a zone are read as UTC.
func ParseDateTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
