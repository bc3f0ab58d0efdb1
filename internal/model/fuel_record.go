package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Decimal places stored for each numeric column.
const (
	AmountPrecision = 2
	LitersPrecision = 3
	PricePrecision  = 3
)

// Largest values the fuel_records columns hold: amount NUMERIC(10,2),
// liters NUMERIC(10,3) and price_per_liter NUMERIC(15,3). The price column
// fits MaxAmount divided by the smallest storable liters.
var (
	MaxAmount = decimal.RequireFromString("99999999.99")
	MaxLiters = decimal.RequireFromString("9999999.999")
	MaxPrice  = decimal.RequireFromString("999999999999.999")
)

// QuantizeAmount rounds d half-up to AmountPrecision places. ok is false
// when the rounded value is not positive or exceeds MaxAmount.
func QuantizeAmount(d decimal.Decimal) (decimal.Decimal, bool) {
	return quantize(d, AmountPrecision, MaxAmount)
}

// QuantizeLiters rounds d half-up to LitersPrecision places. ok is false
// when the rounded value is not positive or exceeds MaxLiters.
func QuantizeLiters(d decimal.Decimal) (decimal.Decimal, bool) {
	return quantize(d, LitersPrecision, MaxLiters)
}

// QuantizePrice rounds d half-up to PricePrecision places.
func QuantizePrice(d decimal.Decimal) (decimal.Decimal, bool) {
	return quantize(d, PricePrecision, MaxPrice)
}

func quantize(d decimal.Decimal, places int32, max decimal.Decimal) (decimal.Decimal, bool) {
	q := d.Round(places)
	if !q.IsPositive() || q.GreaterThan(max) {
		return decimal.Decimal{}, false
	}
	return q, true
}

// FuelRecord represents one processed fuel receipt owned by a single user.
// Nullable text fields are pointers; nullable amounts use decimal.NullDecimal.
type FuelRecord struct {
	ID              string              `json:"id"`
	UserID          string              `json:"user_id"`
	StationName     *string             `json:"station_name"`
	StationBrand    *string             `json:"station_brand"`
	FuelType        *string             `json:"fuel_type"`
	Amount          decimal.NullDecimal `json:"amount"`
	Liters          decimal.NullDecimal `json:"liters"`
	PricePerLiter   decimal.NullDecimal `json:"price_per_liter"`
	ReceiptImageURL string              `json:"receipt_image_url"`
	ExtractedData   *string             `json:"extracted_data"`
	Location        *string             `json:"location"`
	PurchaseDate    *time.Time          `json:"purchase_date"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// DerivePricePerLiter recomputes PricePerLiter as Amount/Liters rounded
// half-up to PricePrecision places. It leaves the price untouched when
// either operand is missing or Liters is not positive.
func (r *FuelRecord) DerivePricePerLiter() {
	if !r.Amount.Valid || !r.Liters.Valid || !r.Liters.Decimal.IsPositive() {
		return
	}
	r.PricePerLiter = decimal.NewNullDecimal(r.Amount.Decimal.DivRound(r.Liters.Decimal, PricePrecision))
}

// Touch sets UpdatedAt and, on first call, CreatedAt, then re-derives the price.
func (r *FuelRecord) Touch(now time.Time) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	r.DerivePricePerLiter()
}

// FuelSummary aggregates a user's records.
type FuelSummary struct {
	RecordCount int64           `json:"recordCount"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	TotalLiters decimal.Decimal `json:"totalLiters"`
}
