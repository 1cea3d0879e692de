package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/audit"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/clock"
)

type UploadPackingPhotoResult struct {
	PhotoURL     string `json:"photoUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
	PhotoType    string `json:"photoType"`
}

// UploadPackingPhotoCommandHandler checks the job exists, uploads outside the
// transaction and records the upload on the job stream.
type UploadPackingPhotoCommandHandler struct {
	uowFactory PackingUoWFactory
	storage    ports.PhotoStorage
	clock      clock.Clock
}

func NewUploadPackingPhotoCommandHandler(
	uowFactory PackingUoWFactory,
	storage ports.PhotoStorage,
	clk clock.Clock,
) UploadPackingPhotoCommandHandler {
	return UploadPackingPhotoCommandHandler{uowFactory: uowFactory, storage: storage, clock: clk}
}

func (h UploadPackingPhotoCommandHandler) Handle(ctx context.Context, cmd UploadPackingPhotoCommand) (UploadPackingPhotoResult, error) {
	if err := cmd.Validate(); err != nil {
		return UploadPackingPhotoResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return UploadPackingPhotoResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	job, err := uow.PackingJobRepository().Get(ctx, cmd.JobID())
	if err != nil {
		return UploadPackingPhotoResult{}, err
	}

	stored, err := h.storage.Upload(ctx, ports.PhotoUpload{
		JobID:       job.ID().String(),
		PhotoType:   cmd.PhotoType(),
		ContentType: cmd.ContentType(),
		Body:        cmd.Body(),
		Size:        cmd.Size(),
	})
	if err != nil {
		return UploadPackingPhotoResult{}, err
	}

	if err = uow.AuditRepository().Append(ctx, audit.NewEvent(
		audit.StreamPackingJob, job.ID(), audit.PhotoUploaded, cmd.UserID(), map[string]any{
			"photoType": cmd.PhotoType(),
			"photoUrl":  stored.PhotoURL,
		}, h.clock.Now(),
	)); err != nil {
		return UploadPackingPhotoResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return UploadPackingPhotoResult{}, err
	}

	return UploadPackingPhotoResult{
		PhotoURL:     stored.PhotoURL,
		ThumbnailURL: stored.ThumbnailURL,
		PhotoType:    cmd.PhotoType(),
	}, nil
}
