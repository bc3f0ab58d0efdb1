package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"fuelapi/internal/apperr"
	"fuelapi/internal/model"
)

// purchaseDateLayouts accept an ISO-8601 local date-time.
var purchaseDateLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

var tracer = otel.Tracer("fuelapi/internal/service")

func (s *fuelRecordService) Ingest(ctx context.Context, req IngestRequest) (*FuelRecordResponse, error) {
	ctx, span := tracer.Start(ctx, "FuelRecordService.Ingest", trace.WithAttributes(
		attribute.String("user.id", req.OwnerID),
		attribute.Int64("receipt.size", req.Size),
		attribute.String("receipt.content_type", req.ContentType),
	))
	defer span.End()

	log := zap.L().With(
		zap.String("user_id", req.OwnerID),
		zap.Int64("size", req.Size),
		zap.String("content_type", req.ContentType),
	)

	url, err := s.receipts.Put(ctx, s.folder, req.Image, req.Size, req.Filename, req.ContentType)
	if err != nil {
		s.metrics.observe(OutcomeStorageFailed)
		span.SetAttributes(attribute.String("ingest.outcome", OutcomeStorageFailed))
		span.RecordError(err)
		span.SetStatus(codes.Error, "receipt upload failed")
		log.Error("receipt_upload_failed", zap.Error(err))
		if apperr.KindOf(err) == apperr.KindUnknown {
			err = apperr.Storage(err)
		}
		return nil, err
	}

	extracted, err := s.extractor.Extract(ctx, url)
	if err != nil {
		span.AddEvent("extraction_failed", trace.WithAttributes(attribute.String("error", err.Error())))
		log.Warn("receipt_extraction_failed", zap.String("url", url), zap.Error(err))
		extracted = nil
	} else if extracted != nil {
		fields := []zap.Field{zap.String("url", url), zap.String("raw", extracted.RawText)}
		if extracted.Confidence != nil {
			fields = append(fields, zap.Float64("confidence", *extracted.Confidence))
		}
		log.Info("receipt_extracted", fields...)
	}

	now := s.now().UTC()
	rec := draftRecord(extracted)
	rec.ID = uuid.NewString()
	rec.UserID = req.OwnerID
	rec.ReceiptImageURL = url

	applyOverrides(rec, req.Overrides, now)
	if rec.PurchaseDate == nil {
		rec.PurchaseDate = &now
	}
	rec.ExtractedData = provenance(extracted)
	rec.Touch(now)

	stored, err := s.repo.Create(ctx, rec)
	if err != nil {
		s.metrics.observe(OutcomePersistenceFailed)
		span.SetAttributes(attribute.String("ingest.outcome", OutcomePersistenceFailed))
		span.RecordError(err)
		span.SetStatus(codes.Error, "fuel record persist failed")
		log.Error("fuel_record_persist_failed", zap.String("url", url), zap.Error(err))
		return nil, apperr.Persistence(eris.Wrap(err, "create fuel record"))
	}

	outcome := OutcomeDegraded
	if extracted.HasFields() {
		outcome = OutcomeExtracted
	}
	s.metrics.observe(outcome)
	span.SetAttributes(attribute.String("ingest.outcome", outcome), attribute.String("record.id", stored.ID))
	log.Info("fuel_record_created", zap.String("record_id", stored.ID), zap.String("outcome", outcome))

	resp := s.toResponse(stored, extracted)
	return &resp, nil
}

// draftRecord copies whatever extraction produced. Numbers are rounded to
// their column scale; those that round to zero or below, or overflow the
// column, are treated as absent.
func draftRecord(d *model.ExtractedData) *model.FuelRecord {
	rec := &model.FuelRecord{}
	if d == nil {
		return rec
	}
	rec.StationName = d.StationName
	rec.StationBrand = d.StationBrand
	rec.FuelType = d.FuelType
	rec.Amount = storable(d.TotalAmount, model.QuantizeAmount)
	rec.Liters = storable(d.Liters, model.QuantizeLiters)
	rec.PricePerLiter = storable(d.PricePerLiter, model.QuantizePrice)
	rec.Location = d.Location()
	rec.PurchaseDate = d.PurchaseDateTime
	return rec
}

func applyOverrides(rec *model.FuelRecord, o Overrides, now time.Time) {
	if v := trimmed(o.StationName); v != nil {
		rec.StationName = v
	}
	if v := trimmed(o.Location); v != nil {
		rec.Location = v
	}
	if v := trimmed(o.PurchaseDate); v != nil {
		t := parsePurchaseDate(*v, now)
		rec.PurchaseDate = &t
	}
}

// parsePurchaseDate reads an ISO-8601 local date-time, falling back to now.
func parsePurchaseDate(s string, now time.Time) time.Time {
	for _, layout := range purchaseDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t
		}
	}
	zap.L().Warn("purchase_date_unparsable", zap.String("value", s))
	return now
}

// provenance serializes the extraction result, storing the raw model text
// when serialization fails.
func provenance(d *model.ExtractedData) *string {
	if d == nil {
		return nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		zap.L().Warn("provenance_serialize_failed", zap.Error(err))
		raw := d.RawText
		return &raw
	}
	s := string(b)
	return &s
}

func storable(d decimal.NullDecimal, quantize func(decimal.Decimal) (decimal.Decimal, bool)) decimal.NullDecimal {
	if !d.Valid {
		return decimal.NullDecimal{}
	}
	q, ok := quantize(d.Decimal)
	if !ok {
		zap.L().Warn("extracted_number_dropped", zap.String("value", d.Decimal.String()))
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(q)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
