package http

import (
	"net/http"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

const photoFormField = "photo"

type StartPackingRequest struct {
	WaveID       string `json:"waveId" validate:"required,uuid"`
	PackerID     string `json:"packerId" validate:"omitempty,uuid"`
	Priority     string `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	WorkflowType string `json:"workflowType" validate:"omitempty,oneof=PICKER_PACKS DEDICATED_PACKER"`
}

type VerifyItemRequest struct {
	JobID          string `json:"jobId" validate:"required,uuid"`
	OrderID        string `json:"orderId" validate:"required,uuid"`
	SKU            string `json:"sku" validate:"required"`
	PackedQuantity int    `json:"packedQuantity" validate:"gte=0"`
}

type PhotoRequest struct {
	OrderID      string     `json:"orderId" validate:"omitempty,uuid"`
	PhotoURL     string     `json:"photoUrl" validate:"required,url"`
	ThumbnailURL string     `json:"thumbnailUrl" validate:"omitempty,url"`
	PhotoType    string     `json:"photoType"`
	CapturedAt   *time.Time `json:"capturedAt"`
	Latitude     *float64   `json:"latitude" validate:"omitempty,latitude"`
	Longitude    *float64   `json:"longitude" validate:"omitempty,longitude"`
	DeviceInfo   string     `json:"deviceInfo"`
}

type SealRequest struct {
	OrderID    string     `json:"orderId" validate:"omitempty,uuid"`
	SealNumber string     `json:"sealNumber" validate:"required"`
	SealType   string     `json:"sealType"`
	AppliedAt  *time.Time `json:"appliedAt"`
}

type CompletePackingRequest struct {
	JobID  string         `json:"jobId" validate:"required,uuid"`
	Photos []PhotoRequest `json:"photos" validate:"dive"`
	Seals  []SealRequest  `json:"seals" validate:"dive"`
}

type ReassignPackingJobRequest struct {
	NewPackerID string `json:"newPackerId" validate:"required,uuid"`
	Reason      string `json:"reason"`
}

// StartPacking handles POST /api/v1/packing/start - opens the job for a completed wave.
func (s *Server) StartPacking(ctx echo.Context) error {
	var req StartPackingRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}
	waveID, err := parseUUID("waveId", req.WaveID)
	if err != nil {
		return err
	}
	packerID, err := parseOptionalUUID("packerId", req.PackerID)
	if err != nil {
		return err
	}
	userID, err := actor(ctx)
	if err != nil {
		return err
	}

	cmd, err := commands.NewStartPackingCommand(waveID, packerID, req.Priority, req.WorkflowType, userID)
	if err != nil {
		return err
	}
	result, err := s.h.StartPacking.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusCreated, result)
}

// VerifyItem handles POST /api/v1/packing/verify.
func (s *Server) VerifyItem(ctx echo.Context) error {
	var req VerifyItemRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}
	jobID, err := parseUUID("jobId", req.JobID)
	if err != nil {
		return err
	}
	orderID, err := parseUUID("orderId", req.OrderID)
	if err != nil {
		return err
	}
	userID, err := actor(ctx)
	if err != nil {
		return err
	}

	cmd, err := commands.NewVerifyItemCommand(jobID, orderID, req.SKU, req.PackedQuantity, userID)
	if err != nil {
		return err
	}
	result, err := s.h.VerifyItem.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, result)
}

// CompletePacking handles POST /api/v1/packing/complete - seals the job with evidence.
func (s *Server) CompletePacking(ctx echo.Context) error {
	var req CompletePackingRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}
	jobID, err := parseUUID("jobId", req.JobID)
	if err != nil {
		return err
	}
	userID, err := actor(ctx)
	if err != nil {
		return err
	}

	photos := make([]commands.PhotoInput, 0, len(req.Photos))
	for _, p := range req.Photos {
		orderID, err := parseOptionalUUID("photos.orderId", p.OrderID)
		if err != nil {
			return err
		}
		photos = append(photos, commands.PhotoInput{
			OrderID:      orderID,
			PhotoURL:     p.PhotoURL,
			ThumbnailURL: p.ThumbnailURL,
			PhotoType:    p.PhotoType,
			CapturedAt:   timeOrZero(p.CapturedAt),
			Latitude:     p.Latitude,
			Longitude:    p.Longitude,
			DeviceInfo:   p.DeviceInfo,
		})
	}
	seals := make([]commands.SealInput, 0, len(req.Seals))
	for _, sl := range req.Seals {
		orderID, err := parseOptionalUUID("seals.orderId", sl.OrderID)
		if err != nil {
			return err
		}
		seals = append(seals, commands.SealInput{
			OrderID:    orderID,
			SealNumber: sl.SealNumber,
			SealType:   sl.SealType,
			AppliedAt:  timeOrZero(sl.AppliedAt),
		})
	}

	cmd, err := commands.NewCompletePackingCommand(jobID, photos, seals, userID)
	if err != nil {
		return err
	}
	result, err := s.h.CompletePacking.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, result)
}

// PackingJobStatus handles GET /api/v1/packing/status/:jobId.
func (s *Server) PackingJobStatus(ctx echo.Context) error {
	jobID, err := pathUUID(ctx, "jobId")
	if err != nil {
		return err
	}
	query, err := queries.NewPackingJobStatusQuery(jobID)
	if err != nil {
		return err
	}
	result, err := s.h.PackingJobStatus.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, result)
}

// AwaitingHandover handles GET /api/v1/packing/awaiting-handover.
func (s *Server) AwaitingHandover(ctx echo.Context) error {
	result, err := s.h.AwaitingHandover.Handle(ctx.Request().Context(), queries.NewAwaitingHandoverQuery())
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, result)
}

// PackingSLAStatus handles GET /api/v1/packing/sla-status.
func (s *Server) PackingSLAStatus(ctx echo.Context) error {
	result, err := s.h.PackingSLA.Handle(ctx.Request().Context(), queries.NewPackingSLAQuery())
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, result)
}

// ReassignPackingJob handles PUT /api/v1/packing/:jobId/reassign.
func (s *Server) ReassignPackingJob(ctx echo.Context) error {
	jobID, err := pathUUID(ctx, "jobId")
	if err != nil {
		return err
	}
	var req ReassignPackingJobRequest
	if err = bind(ctx, &req); err != nil {
		return err
	}
	packerID, err := parseUUID("newPackerId", req.NewPackerID)
	if err != nil {
		return err
	}
	userID, err := actor(ctx)
	if err != nil {
		return err
	}

	cmd, err := commands.NewReassignPackingJobCommand(jobID, packerID, req.Reason, userID)
	if err != nil {
		return err
	}
	result, err := s.h.ReassignPackingJob.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, result)
}

// UploadPackingPhoto handles POST /api/v1/packing/:jobId/photos (multipart,
// file in "photo", optional "photoType").
func (s *Server) UploadPackingPhoto(ctx echo.Context) error {
	jobID, err := pathUUID(ctx, "jobId")
	if err != nil {
		return err
	}
	file, err := ctx.FormFile(photoFormField)
	if err != nil {
		return errs.NewValueIsRequiredErrorWithCause(photoFormField, err)
	}
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	userID, err := actor(ctx)
	if err != nil {
		return err
	}

	cmd, err := commands.NewUploadPackingPhotoCommand(
		jobID,
		ctx.FormValue("photoType"),
		file.Header.Get(echo.HeaderContentType),
		src,
		file.Size,
		userID,
	)
	if err != nil {
		return err
	}
	result, err := s.h.UploadPackingPhoto.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusCreated, result)
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}
