package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func nd(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestFuelRecord_DerivePricePerLiter(t *testing.T) {
	tests := []struct {
		name      string
		amount    decimal.NullDecimal
		liters    decimal.NullDecimal
		price     decimal.NullDecimal
		wantValid bool
		want      string
	}{
		{name: "exact division", amount: nd("45.50"), liters: nd("5.2"), wantValid: true, want: "8.750"},
		{name: "rounds half up", amount: nd("10"), liters: nd("3"), wantValid: true, want: "3.333"},
		{name: "half up on five", amount: nd("0.003"), liters: nd("2"), wantValid: true, want: "0.002"},
		{name: "replaces stale price", amount: nd("20"), liters: nd("4"), price: nd("1.000"), wantValid: true, want: "5.000"},
		{name: "zero liters keeps given price", amount: nd("20"), liters: nd("0"), price: nd("1.5"), wantValid: true, want: "1.500"},
		{name: "missing liters leaves null", amount: nd("20")},
		{name: "missing amount leaves null", liters: nd("4")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &FuelRecord{Amount: tt.amount, Liters: tt.liters, PricePerLiter: tt.price}
			r.DerivePricePerLiter()

			assert.Equal(t, tt.wantValid, r.PricePerLiter.Valid)
			if tt.wantValid {
				assert.Equal(t, tt.want, r.PricePerLiter.Decimal.StringFixed(PricePrecision))
			}
		})
	}
}

func TestQuantize(t *testing.T) {
	tests := []struct {
		name   string
		fn     func(decimal.Decimal) (decimal.Decimal, bool)
		in     string
		want   string
		wantOK bool
	}{
		{name: "amount rounds half up", fn: QuantizeAmount, in: "10.005", want: "10.01", wantOK: true},
		{name: "amount at column max", fn: QuantizeAmount, in: "99999999.99", want: "99999999.99", wantOK: true},
		{name: "amount overflows column", fn: QuantizeAmount, in: "123456789.50"},
		{name: "amount rounds to zero", fn: QuantizeAmount, in: "0.001"},
		{name: "amount rounds up to a cent", fn: QuantizeAmount, in: "0.005", want: "0.01", wantOK: true},
		{name: "liters rounds half up", fn: QuantizeLiters, in: "5.2345", want: "5.235", wantOK: true},
		{name: "liters rounds to zero", fn: QuantizeLiters, in: "0.0004"},
		{name: "liters overflows column", fn: QuantizeLiters, in: "10000000"},
		{name: "negative liters", fn: QuantizeLiters, in: "-3"},
		{name: "price keeps three places", fn: QuantizePrice, in: "101.5", want: "101.5", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.fn(decimal.RequireFromString(tt.in))
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
			}
		})
	}
}

func TestFuelRecord_DerivePricePerLiter_FitsColumn(t *testing.T) {
	smallest, _ := QuantizeLiters(decimal.RequireFromString("0.001"))
	r := &FuelRecord{Amount: decimal.NewNullDecimal(MaxAmount), Liters: decimal.NewNullDecimal(smallest)}
	r.DerivePricePerLiter()

	assert.True(t, r.PricePerLiter.Valid)
	assert.True(t, r.PricePerLiter.Decimal.LessThanOrEqual(MaxPrice), "got %s", r.PricePerLiter.Decimal)
}

func TestExtractedData_HasFields(t *testing.T) {
	zero := 0.0
	assert.False(t, (*ExtractedData)(nil).HasFields())
	assert.False(t, (&ExtractedData{Confidence: &zero, RawText: "not json"}).HasFields())
	assert.True(t, (&ExtractedData{City: strp("Pune")}).HasFields())
	assert.True(t, (&ExtractedData{Liters: nd("5")}).HasFields())
}

func TestFuelRecord_Touch(t *testing.T) {
	created := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	later := created.Add(time.Hour)

	r := &FuelRecord{Amount: nd("30"), Liters: nd("3")}
	r.Touch(created)
	assert.Equal(t, created, r.CreatedAt)
	assert.Equal(t, created, r.UpdatedAt)
	assert.Equal(t, "10.000", r.PricePerLiter.Decimal.StringFixed(PricePrecision))

	r.Amount = nd("33")
	r.Touch(later)
	assert.Equal(t, created, r.CreatedAt)
	assert.Equal(t, later, r.UpdatedAt)
	assert.Equal(t, "11.000", r.PricePerLiter.Decimal.StringFixed(PricePrecision))
}

func strp(s string) *string { return &s }

func TestExtractedData_Location(t *testing.T) {
	tests := []struct {
		name string
		data ExtractedData
		want *string
	}{
		{name: "all parts", data: ExtractedData{Address: strp("12 MG Road"), City: strp("Pune"), State: strp("MH"), ZipCode: strp("411001")}, want: strp("12 MG Road, Pune, MH 411001")},
		{name: "city and zip", data: ExtractedData{City: strp("Pune"), ZipCode: strp("411001")}, want: strp("Pune 411001")},
		{name: "zip only", data: ExtractedData{ZipCode: strp("411001")}, want: strp("411001")},
		{name: "blank parts ignored", data: ExtractedData{Address: strp("  "), State: strp("KA")}, want: strp("KA")},
		{name: "nothing", data: ExtractedData{}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.data.Location())
		})
	}
}
