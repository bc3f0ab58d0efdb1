package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"math"
	"time"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fuelapi/internal/apperr"
	"fuelapi/internal/model"
	"fuelapi/internal/repository"
	"fuelapi/internal/vision"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxOffset bounds page*size so the offset never overflows.
	MaxOffset = math.MaxInt32
)

var (
	ErrIDRequired = errors.New("id is required")
	ErrNotFound   = errors.New("fuel record not found")
)

// ReceiptStore is the subset of the object store gateway the service needs.
type ReceiptStore interface {
	Put(ctx context.Context, folder string, r io.Reader, size int64, filename, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}

// BrandCatalog classifies stations and locates brand logos.
type BrandCatalog interface {
	Classify(stationName, stationBrand string) string
	LogoURL(brandKey string) string
	SupportedBrands() []string
}

// Overrides are optional caller-supplied values that replace extracted ones.
type Overrides struct {
	StationName  *string
	Location     *string
	PurchaseDate *string
}

// IngestRequest describes one uploaded receipt. The boundary has already
// checked that it is a non-empty image within the size limit.
type IngestRequest struct {
	Image       io.Reader
	Size        int64
	Filename    string
	ContentType string
	OwnerID     string
	Overrides   Overrides
}

// UpdateRequest carries a manual completion of a record. Nil or invalid
// fields are left unchanged.
type UpdateRequest struct {
	StationName  *string
	FuelType     *string
	Location     *string
	Amount       decimal.NullDecimal
	Liters       decimal.NullDecimal
	PurchaseDate *time.Time
}

// FuelRecordService defines the fuel record use cases. Every operation is
// scoped to ownerID.
type FuelRecordService interface {
	// Ingest stores the image, extracts its data and persists a record.
	// Only storage and persistence failures are returned.
	Ingest(ctx context.Context, req IngestRequest) (*FuelRecordResponse, error)

	// List returns one page of the owner's records, newest first.
	List(ctx context.Context, ownerID string, page, size int) (*RecordPage, error)

	// ListBetween returns the owner's records created in [from, to].
	ListBetween(ctx context.Context, ownerID string, from, to time.Time) ([]FuelRecordResponse, error)

	Get(ctx context.Context, ownerID, id string) (*FuelRecordResponse, error)

	// Update applies a manual completion and re-derives the price.
	Update(ctx context.Context, ownerID, id string, req UpdateRequest) (*FuelRecordResponse, error)

	// Delete removes the record, then tries to delete its image.
	Delete(ctx context.Context, ownerID, id string) error

	Summary(ctx context.Context, ownerID string) (*model.FuelSummary, error)

	Brands() []BrandInfo
}

type fuelRecordService struct {
	repo      repository.FuelRecordRepository
	receipts  ReceiptStore
	extractor vision.Extractor
	brands    BrandCatalog
	metrics   *IngestMetrics
	folder    string
	now       func() time.Time
}

// NewFuelRecordService constructs a FuelRecordService. Images are stored
// under folder. metrics may be nil.
func NewFuelRecordService(
	repo repository.FuelRecordRepository,
	receipts ReceiptStore,
	extractor vision.Extractor,
	brands BrandCatalog,
	metrics *IngestMetrics,
	folder string,
) FuelRecordService {
	return &fuelRecordService{
		repo:      repo,
		receipts:  receipts,
		extractor: extractor,
		brands:    brands,
		metrics:   metrics,
		folder:    folder,
		now:       time.Now,
	}
}

func (s *fuelRecordService) List(ctx context.Context, ownerID string, page, size int) (*RecordPage, error) {
	if size < 1 || size > MaxPageSize {
		return nil, apperr.Validation(eris.Errorf("size must be between 1 and %d, got %d", MaxPageSize, size))
	}
	if page < 0 || page > MaxOffset/size {
		return nil, apperr.Validation(eris.Errorf("page must be between 0 and %d, got %d", MaxOffset/size, page))
	}

	res, err := s.repo.ListByOwner(ctx, ownerID, repository.PageQuery{Limit: size, Offset: page * size})
	if err != nil {
		return nil, apperr.Persistence(eris.Wrap(err, "list fuel records"))
	}

	out := &RecordPage{
		Content:       make([]FuelRecordResponse, 0, len(res.Items)),
		Page:          page,
		Size:          size,
		TotalElements: int64(res.Total),
		TotalPages:    (res.Total + size - 1) / size,
	}
	for i := range res.Items {
		out.Content = append(out.Content, s.toResponse(&res.Items[i], nil))
	}
	return out, nil
}

func (s *fuelRecordService) ListBetween(ctx context.Context, ownerID string, from, to time.Time) ([]FuelRecordResponse, error) {
	if to.Before(from) {
		return nil, apperr.Validation(eris.New("from must not be after to"))
	}

	recs, err := s.repo.ListByOwnerBetween(ctx, ownerID, from, to)
	if err != nil {
		return nil, apperr.Persistence(eris.Wrap(err, "list fuel records between"))
	}
	out := make([]FuelRecordResponse, 0, len(recs))
	for i := range recs {
		out = append(out, s.toResponse(&recs[i], nil))
	}
	return out, nil
}

func (s *fuelRecordService) find(ctx context.Context, ownerID, id string) (*model.FuelRecord, error) {
	if id == "" {
		return nil, apperr.Validation(ErrIDRequired)
	}
	rec, err := s.repo.FindByID(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound(ErrNotFound)
		}
		return nil, apperr.Persistence(eris.Wrapf(err, "find fuel record %s", id))
	}
	return rec, nil
}

func (s *fuelRecordService) Get(ctx context.Context, ownerID, id string) (*FuelRecordResponse, error) {
	rec, err := s.find(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(rec, nil)
	return &resp, nil
}

func (s *fuelRecordService) Update(ctx context.Context, ownerID, id string, req UpdateRequest) (*FuelRecordResponse, error) {
	if req.Amount.Valid {
		q, ok := model.QuantizeAmount(req.Amount.Decimal)
		if !ok {
			return nil, apperr.Validation(eris.Errorf("amount must be between 0.01 and %s", model.MaxAmount))
		}
		req.Amount = decimal.NewNullDecimal(q)
	}
	if req.Liters.Valid {
		q, ok := model.QuantizeLiters(req.Liters.Decimal)
		if !ok {
			return nil, apperr.Validation(eris.Errorf("liters must be between 0.001 and %s", model.MaxLiters))
		}
		req.Liters = decimal.NewNullDecimal(q)
	}

	rec, err := s.find(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if v := trimmed(req.StationName); v != nil {
		rec.StationName = v
	}
	if v := trimmed(req.FuelType); v != nil {
		rec.FuelType = v
	}
	if v := trimmed(req.Location); v != nil {
		rec.Location = v
	}
	if req.Amount.Valid {
		rec.Amount = req.Amount
	}
	if req.Liters.Valid {
		rec.Liters = req.Liters
	}
	if req.PurchaseDate != nil {
		rec.PurchaseDate = req.PurchaseDate
	}
	rec.Touch(s.now().UTC())

	updated, err := s.repo.Update(ctx, rec)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound(ErrNotFound)
		}
		return nil, apperr.Persistence(eris.Wrapf(err, "update fuel record %s", id))
	}
	resp := s.toResponse(updated, nil)
	return &resp, nil
}

func (s *fuelRecordService) Delete(ctx context.Context, ownerID, id string) error {
	rec, err := s.find(ctx, ownerID, id)
	if err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, id, ownerID)
	if err != nil {
		return apperr.Persistence(eris.Wrapf(err, "delete fuel record %s", id))
	}
	if !deleted {
		return apperr.NotFound(ErrNotFound)
	}

	if rec.ReceiptImageURL != "" {
		if err := s.receipts.Delete(ctx, rec.ReceiptImageURL); err != nil {
			zap.L().Warn("receipt_image_delete_failed",
				zap.String("record_id", id),
				zap.String("url", rec.ReceiptImageURL),
				zap.Error(err),
			)
		}
	}
	zap.L().Info("fuel_record_deleted", zap.String("record_id", id), zap.String("user_id", ownerID))
	return nil
}

func (s *fuelRecordService) Summary(ctx context.Context, ownerID string) (*model.FuelSummary, error) {
	var out model.FuelSummary
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repo.CountByOwner(gctx, ownerID)
		out.RecordCount = n
		return err
	})
	g.Go(func() error {
		v, err := s.repo.SumAmount(gctx, ownerID)
		out.TotalAmount = v
		return err
	})
	g.Go(func() error {
		v, err := s.repo.SumLiters(gctx, ownerID)
		out.TotalLiters = v
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperr.Persistence(eris.Wrap(err, "summarize fuel records"))
	}
	return &out, nil
}

func (s *fuelRecordService) Brands() []BrandInfo {
	keys := s.brands.SupportedBrands()
	out := make([]BrandInfo, 0, len(keys))
	for _, k := range keys {
		out = append(out, BrandInfo{Key: k, LogoURL: s.brands.LogoURL(k)})
	}
	return out
}
