package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fuelapi/internal/apperr"
	"fuelapi/internal/brand"
	"fuelapi/internal/model"
	repoMocks "fuelapi/internal/repository/mocks"
	"fuelapi/internal/storage"
	storeMocks "fuelapi/internal/storage/mocks"
	"fuelapi/internal/vision"
	visionMocks "fuelapi/internal/vision/mocks"
)

const baseURL = "https://receipts.s3.ap-south-1.amazonaws.com"

var fixedNow = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

type fixture struct {
	svc       *fuelRecordService
	store     *storeMocks.MockStorage
	repo      *repoMocks.MockFuelRecordRepository
	extractor *visionMocks.MockExtractor
	metrics   *IngestMetrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	metrics, err := NewIngestMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	f := &fixture{
		store:     new(storeMocks.MockStorage),
		repo:      new(repoMocks.MockFuelRecordRepository),
		extractor: new(visionMocks.MockExtractor),
		metrics:   metrics,
	}
	receipts := storage.NewReceiptStore(f.store, baseURL, 10<<20)
	classifier := brand.NewClassifier("fuel-company-logos", "ap-south-1")
	f.svc = NewFuelRecordService(f.repo, receipts, f.extractor, classifier, metrics, "receipts").(*fuelRecordService)
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func (f *fixture) assertExpectations(t *testing.T) {
	f.store.AssertExpectations(t)
	f.repo.AssertExpectations(t)
	f.extractor.AssertExpectations(t)
}

func echoPut(_ context.Context, key string, _ io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
	return storage.ObjectInfo{Key: key, Size: opt.Size, ContentType: opt.ContentType}
}

func echoRecord(_ context.Context, rec *model.FuelRecord) *model.FuelRecord {
	cp := *rec
	return &cp
}

func strp(s string) *string { return &s }

func TestIngest_EndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	image := strings.NewReader(strings.Repeat("x", 2<<20))
	f.store.On("Put", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "receipts/") && strings.HasSuffix(key, "_receipt.jpg")
	}), image, mock.Anything).Return(echoPut, nil)

	f.extractor.On("Extract", mock.Anything, mock.MatchedBy(func(url string) bool {
		return strings.HasPrefix(url, baseURL+"/receipts/")
	})).Return(vision.ParseReceipt(`{"stationName":"BP Petrol","totalAmount":"45.50","liters":"5.2","confidence":0.9}`), nil)

	var saved *model.FuelRecord
	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(rec *model.FuelRecord) bool {
		saved = rec
		return rec.UserID == "user-a"
	})).Return(echoRecord, nil)

	resp, err := f.svc.Ingest(ctx, IngestRequest{
		Image:       image,
		Size:        2 << 20,
		Filename:    "receipt.jpg",
		ContentType: "image/jpeg",
		OwnerID:     "user-a",
	})

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "45.50", resp.Amount.Decimal.StringFixed(2))
	assert.Equal(t, "5.2", resp.Liters.Decimal.String())
	assert.Equal(t, "8.750", resp.PricePerLiter.Decimal.StringFixed(3))
	assert.True(t, strings.HasSuffix(resp.BrandLogoURL, "/bp.png"), resp.BrandLogoURL)
	assert.True(t, strings.HasPrefix(resp.ReceiptImageURL, baseURL+"/receipts/"))
	assert.True(t, resp.OCRProcessed)
	require.NotNil(t, resp.OCRConfidence)
	assert.Equal(t, "0.9", *resp.OCRConfidence)

	require.NotNil(t, saved)
	require.NotNil(t, saved.ExtractedData)
	assert.Contains(t, *saved.ExtractedData, `"stationName":"BP Petrol"`)
	require.NotNil(t, saved.PurchaseDate)
	assert.Equal(t, fixedNow, *saved.PurchaseDate)
	assert.Equal(t, fixedNow, saved.CreatedAt)
	assert.NotEmpty(t, saved.ID)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.total.WithLabelValues(OutcomeExtracted)))
	f.assertExpectations(t)
}

func TestIngest_ExtractionFailureDegrades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(echoPut, nil)
	f.extractor.On("Extract", mock.Anything, mock.Anything).
		Return(nil, apperr.ExternalService(context.DeadlineExceeded))

	var saved *model.FuelRecord
	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(rec *model.FuelRecord) bool {
		saved = rec
		return true
	})).Return(echoRecord, nil)

	resp, err := f.svc.Ingest(ctx, IngestRequest{
		Image:       strings.NewReader("img"),
		Size:        3,
		Filename:    "r.jpg",
		ContentType: "image/jpeg",
		OwnerID:     "user-a",
	})

	require.NoError(t, err)
	assert.Nil(t, resp.StationName)
	assert.NotEmpty(t, resp.ReceiptImageURL)
	assert.False(t, resp.OCRProcessed)
	assert.Nil(t, resp.OCRConfidence)
	assert.Nil(t, saved.ExtractedData)
	assert.False(t, saved.Amount.Valid)
	assert.False(t, saved.PricePerLiter.Valid)
	assert.True(t, strings.HasSuffix(resp.BrandLogoURL, "/default.png"))

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.total.WithLabelValues(OutcomeDegraded)))
	f.assertExpectations(t)
}

func TestIngest_Overrides(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		overrides    Overrides
		wantStation  string
		wantLocation string
		wantDate     time.Time
	}{
		{
			name:         "override wins over extraction",
			overrides:    Overrides{StationName: strp("My Shell"), Location: strp("Ring Road"), PurchaseDate: strp("2024-03-15T10:30:00")},
			wantStation:  "My Shell",
			wantLocation: "Ring Road",
			wantDate:     time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name:         "blank overrides are ignored",
			overrides:    Overrides{StationName: strp("  "), Location: strp("")},
			wantStation:  "Shell Express",
			wantLocation: "12 MG Road, Pune",
			wantDate:     time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC),
		},
		{
			name:         "unparsable date falls back to now",
			overrides:    Overrides{PurchaseDate: strp("15th March")},
			wantStation:  "Shell Express",
			wantLocation: "12 MG Road, Pune",
			wantDate:     fixedNow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(echoPut, nil)
			f.extractor.On("Extract", mock.Anything, mock.Anything).Return(vision.ParseReceipt(
				`{"stationName":"Shell Express","address":"12 MG Road","city":"Pune","purchaseDateTime":"2024-03-14 09:00:00"}`,
			), nil)
			f.repo.On("Create", mock.Anything, mock.Anything).Return(echoRecord, nil)

			resp, err := f.svc.Ingest(ctx, IngestRequest{
				Image:     strings.NewReader("img"),
				Size:      3,
				Filename:  "r.jpg",
				OwnerID:   "user-a",
				Overrides: tt.overrides,
			})

			require.NoError(t, err)
			require.NotNil(t, resp.StationName)
			assert.Equal(t, tt.wantStation, *resp.StationName)
			require.NotNil(t, resp.Location)
			assert.Equal(t, tt.wantLocation, *resp.Location)
			require.NotNil(t, resp.PurchaseDate)
			assert.True(t, tt.wantDate.Equal(*resp.PurchaseDate), "got %s", resp.PurchaseDate)
			assert.True(t, strings.HasSuffix(resp.BrandLogoURL, "/shell.png"))
		})
	}
}

func TestIngest_NonPositiveNumbersDropped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(echoPut, nil)
	f.extractor.On("Extract", mock.Anything, mock.Anything).
		Return(vision.ParseReceipt(`{"totalAmount":"0","liters":"-3","pricePerLiter":"101.5"}`), nil)

	var saved *model.FuelRecord
	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(rec *model.FuelRecord) bool {
		saved = rec
		return true
	})).Return(echoRecord, nil)

	_, err := f.svc.Ingest(ctx, IngestRequest{Image: strings.NewReader("img"), Size: 3, Filename: "r.jpg", OwnerID: "user-a"})

	require.NoError(t, err)
	assert.False(t, saved.Amount.Valid)
	assert.False(t, saved.Liters.Valid)
	assert.Equal(t, "101.5", saved.PricePerLiter.Decimal.String())
}

func TestIngest_Failures(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		setupMocks func(f *fixture)
		wantKind   apperr.Kind
		outcome    string
	}{
		{
			name: "storage failure persists nothing",
			setupMocks: func(f *fixture) {
				f.store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, errors.New("bucket unreachable"))
			},
			wantKind: apperr.KindStorage,
			outcome:  OutcomeStorageFailed,
		},
		{
			name: "persistence failure leaves the image",
			setupMocks: func(f *fixture) {
				f.store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(echoPut, nil)
				f.extractor.On("Extract", mock.Anything, mock.Anything).Return(vision.ParseReceipt(`{"stationName":"HP"}`), nil)
				f.repo.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))
			},
			wantKind: apperr.KindPersistence,
			outcome:  OutcomePersistenceFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMocks(f)

			resp, err := f.svc.Ingest(ctx, IngestRequest{Image: strings.NewReader("img"), Size: 3, Filename: "r.jpg", OwnerID: "user-a"})

			require.Error(t, err)
			assert.Nil(t, resp)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
			assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.total.WithLabelValues(tt.outcome)))
			f.assertExpectations(t)
			f.store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		})
	}
}

func TestIngest_NumbersFitColumns(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		reply      string
		wantAmount string
		wantLiters string
		wantPrice  string
	}{
		{
			name:       "liters rounding to zero is dropped",
			reply:      `{"totalAmount":"45.50","liters":"0.0004"}`,
			wantAmount: "45.5",
		},
		{
			name:       "amount overflowing the column is dropped",
			reply:      `{"totalAmount":"123456789.50","liters":"5"}`,
			wantLiters: "5",
		},
		{
			name:       "price derives from the stored amount",
			reply:      `{"totalAmount":"10.005","liters":"2"}`,
			wantAmount: "10.01",
			wantLiters: "2",
			wantPrice:  "5.005",
		},
		{
			name:       "extracted values are rounded to column scale",
			reply:      `{"totalAmount":"20.004","liters":"4.0004","pricePerLiter":"5.0004"}`,
			wantAmount: "20",
			wantLiters: "4",
			wantPrice:  "5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(echoPut, nil)
			f.extractor.On("Extract", mock.Anything, mock.Anything).Return(vision.ParseReceipt(tt.reply), nil)

			var saved *model.FuelRecord
			f.repo.On("Create", mock.Anything, mock.MatchedBy(func(rec *model.FuelRecord) bool {
				saved = rec
				return true
			})).Return(echoRecord, nil)

			_, err := f.svc.Ingest(ctx, IngestRequest{Image: strings.NewReader("img"), Size: 3, Filename: "r.jpg", OwnerID: "user-a"})
			require.NoError(t, err)

			assertStored := func(field string, got decimal.NullDecimal, want string) {
				if want == "" {
					assert.False(t, got.Valid, "%s should be absent, got %s", field, got.Decimal)
					return
				}
				require.True(t, got.Valid, "%s should be present", field)
				assert.True(t, decimal.RequireFromString(want).Equal(got.Decimal), "%s: got %s", field, got.Decimal)
			}
			assertStored("amount", saved.Amount, tt.wantAmount)
			assertStored("liters", saved.Liters, tt.wantLiters)
			assertStored("price", saved.PricePerLiter, tt.wantPrice)
		})
	}
}

func TestIngest_UnparsableReplyCountsAsDegraded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(echoPut, nil)
	f.extractor.On("Extract", mock.Anything, mock.Anything).Return(vision.ParseReceipt("Sorry, I cannot read this receipt."), nil)
	f.repo.On("Create", mock.Anything, mock.Anything).Return(echoRecord, nil)

	_, err := f.svc.Ingest(ctx, IngestRequest{Image: strings.NewReader("img"), Size: 3, Filename: "r.jpg", OwnerID: "user-a"})

	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.total.WithLabelValues(OutcomeDegraded)))
	assert.Zero(t, testutil.ToFloat64(f.metrics.total.WithLabelValues(OutcomeExtracted)))
}
