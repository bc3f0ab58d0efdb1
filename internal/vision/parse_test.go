package vision

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReceipt(t *testing.T) {
	t.Run("full object in code fence", func(t *testing.T) {
		content := "```json\n{\"stationName\":\"BP Petrol\",\"totalAmount\":\"45.50\",\"liters\":5.2,\"confidence\":0.9,\"city\":null,\"state\":\"null\"}\n```"

		d := ParseReceipt(content)

		require.NotNil(t, d.StationName)
		assert.Equal(t, "BP Petrol", *d.StationName)
		assert.Equal(t, "45.50", d.TotalAmount.Decimal.StringFixed(2))
		assert.Equal(t, "5.200", d.Liters.Decimal.StringFixed(3))
		require.NotNil(t, d.Confidence)
		assert.InDelta(t, 0.9, *d.Confidence, 1e-9)
		assert.Nil(t, d.City)
		assert.Nil(t, d.State)
		assert.Nil(t, d.Address)
		assert.False(t, d.PricePerLiter.Valid)
		assert.NotContains(t, d.RawText, "```")
	})

	t.Run("unparsable number yields null", func(t *testing.T) {
		d := ParseReceipt(`{"totalAmount":"Rs. 45","liters":"about five","stationName":"Shell"}`)

		assert.False(t, d.TotalAmount.Valid)
		assert.False(t, d.Liters.Valid)
		require.NotNil(t, d.StationName)
		assert.Equal(t, "Shell", *d.StationName)
	})

	t.Run("confidence clamped", func(t *testing.T) {
		d := ParseReceipt(`{"confidence":"1.7"}`)
		require.NotNil(t, d.Confidence)
		assert.Equal(t, 1.0, *d.Confidence)
	})

	t.Run("not json degrades", func(t *testing.T) {
		d := ParseReceipt("I could not read this receipt.")

		require.NotNil(t, d.Confidence)
		assert.Equal(t, 0.0, *d.Confidence)
		assert.Equal(t, "I could not read this receipt.", d.RawText)
		assert.Nil(t, d.StationName)
	})

	t.Run("json array degrades", func(t *testing.T) {
		d := ParseReceipt(`[1,2,3]`)
		require.NotNil(t, d.Confidence)
		assert.Equal(t, 0.0, *d.Confidence)
	})
}

func TestParseDateTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{in: "2024-03-15T14:30:00", want: time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC), ok: true},
		{in: "2024-03-15T14:30", want: time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC), ok: true},
		{in: "2024-03-15 14:30:00", want: time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC), ok: true},
		{in: "03/15/2024 14:30:00", want: time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC), ok: true},
		{in: "15/03/2024 14:30:00", want: time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC), ok: true},
		{in: "2024-03-15", want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), ok: true},
		{in: "03/04/2024", want: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), ok: true},
		{in: "25/12/2024", want: time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC), ok: true},
		{in: "yesterday", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDateTime(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "got %s", got)
			}
		})
	}
}

func TestParseReceipt_DateField(t *testing.T) {
	d := ParseReceipt(`{"purchaseDateTime":"15/03/2024 09:05:00"}`)
	require.NotNil(t, d.PurchaseDateTime)
	assert.Equal(t, 9, d.PurchaseDateTime.Hour())

	d = ParseReceipt(`{"purchaseDateTime":"sometime"}`)
	assert.Nil(t, d.PurchaseDateTime)
}

func TestImageFormat(t *testing.T) {
	assert.Equal(t, "png", imageFormat("https://x/receipts/a_r.PNG"))
	assert.Equal(t, "gif", imageFormat("https://x/receipts/a_r.gif"))
	assert.Equal(t, "webp", imageFormat("https://x/receipts/a_r.webp"))
	assert.Equal(t, "jpeg", imageFormat("https://x/receipts/a_r.jpg"))
	assert.Equal(t, "jpeg", imageFormat("https://x/receipts/a_r"))
}

func TestContentPart_MarshalJSON(t *testing.T) {
	text, image := TextPart("hello"), ImagePart("data:image/png;base64,AAAA")
	assert.False(t, text.IsImage())
	assert.Equal(t, "hello", text.Value())
	assert.True(t, image.IsImage())
	assert.Equal(t, "data:image/png;base64,AAAA", image.Value())

	b, err := text.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"text","text":"hello"}`, string(b))

	b, err = image.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"image_url","image_url":"data:image/png;base64,AAAA"}`, string(b))

	_, err = ContentPart{}.MarshalJSON()
	assert.Error(t, err)
}
