package service

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"fuelapi/internal/model"
)

// FuelRecordResponse is the caller-facing view of a fuel record.
type FuelRecordResponse struct {
	ID              string              `json:"id"`
	StationName     *string             `json:"stationName"`
	StationBrand    *string             `json:"stationBrand"`
	FuelType        *string             `json:"fuelType"`
	Amount          decimal.NullDecimal `json:"amount" swaggertype:"string"`
	Liters          decimal.NullDecimal `json:"liters" swaggertype:"string"`
	PricePerLiter   decimal.NullDecimal `json:"pricePerLiter" swaggertype:"string"`
	ReceiptImageURL string              `json:"receiptImageUrl"`
	BrandLogoURL    string              `json:"brandLogoUrl"`
	Location        *string             `json:"location"`
	PurchaseDate    *time.Time          `json:"purchaseDate"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
	OCRProcessed    bool                `json:"ocrProcessed"`
	OCRConfidence   *string             `json:"ocrConfidence"`
	RawOCRData      *string             `json:"rawOcrData"`
}

// RecordPage is one page of a user's records, newest first.
type RecordPage struct {
	Content       []FuelRecordResponse `json:"content"`
	Page          int                  `json:"page"`
	Size          int                  `json:"size"`
	TotalElements int64                `json:"totalElements"`
	TotalPages    int                  `json:"totalPages"`
}

// BrandInfo describes one supported brand.
type BrandInfo struct {
	Key     string `json:"key"`
	LogoURL string `json:"logoUrl"`
}

// toResponse maps rec for the caller. extracted is the live extraction
// result when available; otherwise the stored provenance is decoded.
func (s *fuelRecordService) toResponse(rec *model.FuelRecord, extracted *model.ExtractedData) FuelRecordResponse {
	out := FuelRecordResponse{
		ID:              rec.ID,
		StationName:     rec.StationName,
		StationBrand:    rec.StationBrand,
		FuelType:        rec.FuelType,
		Amount:          rec.Amount,
		Liters:          rec.Liters,
		PricePerLiter:   rec.PricePerLiter,
		ReceiptImageURL: rec.ReceiptImageURL,
		BrandLogoURL:    s.brands.LogoURL(s.brands.Classify(deref(rec.StationName), deref(rec.StationBrand))),
		Location:        rec.Location,
		PurchaseDate:    rec.PurchaseDate,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}

	if extracted == nil && rec.ExtractedData != nil {
		var stored model.ExtractedData
		if err := json.Unmarshal([]byte(*rec.ExtractedData), &stored); err == nil {
			extracted = &stored
		} else {
			out.OCRProcessed = true
			out.RawOCRData = rec.ExtractedData
			return out
		}
	}
	if extracted == nil {
		return out
	}

	out.OCRProcessed = true
	if extracted.Confidence != nil {
		c := strconv.FormatFloat(*extracted.Confidence, 'f', -1, 64)
		out.OCRConfidence = &c
	}
	if extracted.RawText != "" {
		raw := extracted.RawText
		out.RawOCRData = &raw
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
