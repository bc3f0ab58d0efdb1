package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ExtractedData is the structured result of reading a receipt image with a
// vision model. Every field may be absent.
type ExtractedData struct {
	StationName      *string             `json:"stationName"`
	StationBrand     *string             `json:"stationBrand"`
	Address          *string             `json:"address"`
	City             *string             `json:"city"`
	State            *string             `json:"state"`
	ZipCode          *string             `json:"zipCode"`
	TotalAmount      decimal.NullDecimal `json:"totalAmount"`
	Liters           decimal.NullDecimal `json:"liters"`
	PricePerLiter    decimal.NullDecimal `json:"pricePerLiter"`
	FuelType         *string             `json:"fuelType"`
	FuelGrade        *string             `json:"fuelGrade"`
	PurchaseDateTime *time.Time          `json:"purchaseDateTime"`
	ReceiptNumber    *string             `json:"receiptNumber"`
	PaymentMethod    *string             `json:"paymentMethod"`
	Confidence       *float64            `json:"confidence"`
	RawText          string              `json:"rawText,omitempty"`
}

// HasFields reports whether any receipt field was read. Confidence and
// RawText do not count.
func (d *ExtractedData) HasFields() bool {
	if d == nil {
		return false
	}
	for _, s := range []*string{
		d.StationName, d.StationBrand, d.Address, d.City, d.State, d.ZipCode,
		d.FuelType, d.FuelGrade, d.ReceiptNumber, d.PaymentMethod,
	} {
		if s != nil {
			return true
		}
	}
	return d.TotalAmount.Valid || d.Liters.Valid || d.PricePerLiter.Valid || d.PurchaseDateTime != nil
}

// Location joins address, city, state and zip as "address, city, state zip",
// skipping absent parts. It returns nil when every part is absent.
func (d *ExtractedData) Location() *string {
	var b strings.Builder
	if v := nonEmpty(d.Address); v != "" {
		b.WriteString(v)
	}
	if v := nonEmpty(d.City); v != "" {
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		b.WriteString(v)
	}
	if v := nonEmpty(d.State); v != "" {
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		b.WriteString(v)
	}
	if v := nonEmpty(d.ZipCode); v != "" {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(v)
	}
	if b.Len() == 0 {
		return nil
	}
	s := b.String()
	return &s
}

func nonEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
