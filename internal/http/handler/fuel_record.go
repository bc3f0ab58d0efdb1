package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fuelapi/internal/auth"
	"fuelapi/internal/guard"
	"fuelapi/internal/service"
	"fuelapi/internal/vision"
)

// UploadLimits bounds a single receipt upload.
type UploadLimits struct {
	MaxBytes int64
	Timeout  time.Duration
}

// updateRecordRequest is the PATCH body. Absent fields are left unchanged.
type updateRecordRequest struct {
	StationName  *string             `json:"stationName"`
	FuelType     *string             `json:"fuelType"`
	Location     *string             `json:"location"`
	Amount       decimal.NullDecimal `json:"amount" swaggertype:"string"`
	Liters       decimal.NullDecimal `json:"liters" swaggertype:"string"`
	PurchaseDate *string             `json:"purchaseDate" example:"2024-05-01T08:30:00"`
}

func principal(c *fiber.Ctx) (auth.Principal, bool) {
	return auth.FromContext(c.UserContext())
}

func optionalForm(c *fiber.Ctx, key string) *string {
	v := strings.TrimSpace(c.FormValue(key))
	if v == "" {
		return nil
	}
	return &v
}

// UploadReceipt stores a receipt image and creates a fuel record from it.
//
// A duplicate key is claimed before validation and released again on any
// failure, so only successful uploads block a resubmission within the window.
//
//	@Summary	Upload a fuel receipt
//	@Tags		fuel-records
//	@Accept		multipart/form-data
//	@Produce	json
//	@Security	BearerAuth
//	@Param		receiptImage	formData	file	true	"Receipt image"
//	@Param		stationName		formData	string	false	"Station name override"
//	@Param		location		formData	string	false	"Location override"
//	@Param		purchaseDate	formData	string	false	"ISO local date-time override"
//	@Success	200	{object}	service.FuelRecordResponse
//	@Failure	400	{object}	errorPayload
//	@Failure	401	{object}	errorPayload
//	@Failure	413	{object}	errorPayload
//	@Failure	429	{object}	errorPayload
//	@Failure	500	{object}	errorPayload
//	@Router		/api/fuel-records/upload-receipt [post]
func UploadReceipt(svc service.FuelRecordService, g guard.Guard, limits UploadLimits) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := principal(c)
		if !ok {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		}

		fh, err := c.FormFile("receiptImage")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "receiptImage is required")
		}

		key := g.Key(p.UserID, fh.Size, time.Now())
		claimed, err := g.Claim(c.UserContext(), key)
		if err != nil {
			// Guard backend down: accept the upload unguarded.
			zap.L().Warn("duplicate_guard_unavailable", zap.String("request_id", requestIDFromCtx(c)), zap.Error(err))
		} else if !claimed {
			return writeError(c, fiber.StatusTooManyRequests, "DUPLICATE_UPLOAD", "duplicate upload, please wait before retrying")
		}
		fail := func(status int, code, msg string) error {
			if claimed {
				if err := g.Release(context.WithoutCancel(c.UserContext()), key); err != nil {
					zap.L().Warn("duplicate_guard_release_failed", zap.String("key", key), zap.Error(err))
				}
			}
			return writeError(c, status, code, msg)
		}

		contentType := fh.Header.Get(fiber.HeaderContentType)
		switch {
		case fh.Size == 0:
			return fail(fiber.StatusBadRequest, "EMPTY_FILE", "receipt image is empty")
		case !strings.HasPrefix(strings.ToLower(contentType), "image/"):
			return fail(fiber.StatusBadRequest, "INVALID_CONTENT_TYPE", "receipt must be an image")
		case limits.MaxBytes > 0 && fh.Size > limits.MaxBytes:
			return fail(fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "receipt image exceeds "+strconv.FormatInt(limits.MaxBytes>>20, 10)+"MiB")
		}

		f, err := fh.Open()
		if err != nil {
			return fail(fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ctx := c.UserContext()
		if limits.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, limits.Timeout)
			defer cancel()
		}

		res, err := svc.Ingest(ctx, service.IngestRequest{
			Image:       f,
			Size:        fh.Size,
			Filename:    fh.Filename,
			ContentType: contentType,
			OwnerID:     p.UserID,
			Overrides: service.Overrides{
				StationName:  optionalForm(c, "stationName"),
				Location:     optionalForm(c, "location"),
				PurchaseDate: optionalForm(c, "purchaseDate"),
			},
		})
		if err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				zap.L().Error("receipt_ingest_timeout",
					zap.String("request_id", requestIDFromCtx(c)),
					zap.Duration("timeout", limits.Timeout),
					zap.Error(err),
				)
				return fail(fiber.StatusInternalServerError, "PROCESSING_TIMEOUT", "receipt processing timed out")
			}
			zap.L().Error("receipt_ingest_failed", zap.String("request_id", requestIDFromCtx(c)), zap.Error(err))
			return fail(fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusOK).JSON(res)
	}
}

// ListRecords returns a page of the caller's records, newest first.
//
//	@Summary	List fuel records
//	@Tags		fuel-records
//	@Produce	json
//	@Security	BearerAuth
//	@Param		page	query		int	false	"Zero-based page"	default(0)
//	@Param		size	query		int	false	"Page size (1-100)"	default(20)
//	@Success	200		{object}	service.RecordPage
//	@Failure	400		{object}	errorPayload
//	@Router		/api/fuel-records [get]
func ListRecords(svc service.FuelRecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := principal(c)
		if !ok {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		}

		page, err := strconv.Atoi(c.Query("page", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PAGE", "invalid page")
		}
		size, err := strconv.Atoi(c.Query("size", strconv.Itoa(service.DefaultPageSize)))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_SIZE", "invalid size")
		}

		res, err := svc.List(c.UserContext(), p.UserID, page, size)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// ListRecordsBetween returns the caller's records created in [from, to].
// A date-only to covers the whole day.
//
//	@Summary	List fuel records in a date range
//	@Tags		fuel-records
//	@Produce	json
//	@Security	BearerAuth
//	@Param		from	query		string	true	"Start, ISO date or date-time"
//	@Param		to		query		string	true	"End, ISO date or date-time"
//	@Success	200		{array}		service.FuelRecordResponse
//	@Failure	400		{object}	errorPayload
//	@Router		/api/fuel-records/range [get]
func ListRecordsBetween(svc service.FuelRecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := principal(c)
		if !ok {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		}

		from, ok := vision.ParseDateTime(c.Query("from"))
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_FROM", "from must be an ISO date or date-time")
		}
		rawTo := c.Query("to")
		to, ok := vision.ParseDateTime(rawTo)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_TO", "to must be an ISO date or date-time")
		}
		if len(strings.TrimSpace(rawTo)) == len("2006-01-02") {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}

		res, err := svc.ListBetween(c.UserContext(), p.UserID, from, to)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetRecord returns one of the caller's records.
//
//	@Summary	Get a fuel record
//	@Tags		fuel-records
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Record ID"
//	@Success	200	{object}	service.FuelRecordResponse
//	@Failure	404	{object}	errorPayload
//	@Router		/api/fuel-records/{id} [get]
func GetRecord(svc service.FuelRecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := principal(c)
		if !ok {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		}
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		res, err := svc.Get(c.UserContext(), p.UserID, id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// UpdateRecord applies a manual completion to one of the caller's records.
//
//	@Summary	Complete a fuel record
//	@Tags		fuel-records
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string				true	"Record ID"
//	@Param		body	body		updateRecordRequest	true	"Fields to change"
//	@Success	200		{object}	service.FuelRecordResponse
//	@Failure	400		{object}	errorPayload
//	@Failure	404		{object}	errorPayload
//	@Router		/api/fuel-records/{id} [patch]
func UpdateRecord(svc service.FuelRecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := principal(c)
		if !ok {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		}
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		var body updateRecordRequest
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		req := service.UpdateRequest{
			StationName: body.StationName,
			FuelType:    body.FuelType,
			Location:    body.Location,
			Amount:      body.Amount,
			Liters:      body.Liters,
		}
		if body.PurchaseDate != nil {
			t, ok := vision.ParseDateTime(*body.PurchaseDate)
			if !ok {
				return writeError(c, fiber.StatusBadRequest, "INVALID_PURCHASE_DATE", "purchaseDate must be an ISO local date-time")
			}
			req.PurchaseDate = &t
		}

		res, err := svc.Update(c.UserContext(), p.UserID, id, req)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// DeleteRecord removes one of the caller's records and, best effort, its image.
//
//	@Summary	Delete a fuel record
//	@Tags		fuel-records
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Record ID"
//	@Success	204
//	@Failure	404	{object}	errorPayload
//	@Router		/api/fuel-records/{id} [delete]
func DeleteRecord(svc service.FuelRecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := principal(c)
		if !ok {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		}
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		if err := svc.Delete(c.UserContext(), p.UserID, id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// Summary aggregates the caller's spending and volume.
//
//	@Summary	Fuel summary
//	@Tags		fuel-records
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	model.FuelSummary
//	@Router		/api/fuel-records/summary [get]
func Summary(svc service.FuelRecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := principal(c)
		if !ok {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		}
		res, err := svc.Summary(c.UserContext(), p.UserID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// AuthTest echoes the resolved principal.
//
//	@Summary	Check authentication
//	@Tags		fuel-records
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	map[string]any
//	@Failure	401	{object}	errorPayload
//	@Router		/api/fuel-records/auth-test [get]
func AuthTest() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := principal(c)
		if !ok {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		}
		return c.JSON(fiber.Map{
			"authenticated": true,
			"userId":        p.UserID,
			"email":         p.Email,
		})
	}
}

// ListBrands returns the supported brand keys with their logo URLs.
//
//	@Summary	Supported brands
//	@Tags		brands
//	@Produce	json
//	@Success	200	{array}	service.BrandInfo
//	@Router		/api/brands [get]
func ListBrands(svc service.FuelRecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(svc.Brands())
	}
}
