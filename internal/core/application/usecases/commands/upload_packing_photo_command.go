package commands

import (
	"errors"
	"io"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrUploadPackingPhotoCommandIsNotConstructed = errors.New(
	"UploadPackingPhotoCommand must be created via NewUploadPackingPhotoCommand constructor",
)

const defaultPhotoType = "PACKAGE"

// UploadPackingPhotoCommand stores a photo for a job. The returned URLs are
// attached to the job later by CompletePacking.
type UploadPackingPhotoCommand struct {
	jobID       kernel.UUID
	photoType   string
	contentType string
	body        io.Reader
	size        int64
	userID      *kernel.UUID

	guard guard.ConstructorGuard
}

func NewUploadPackingPhotoCommand(
	jobID kernel.UUID,
	photoType, contentType string,
	body io.Reader,
	size int64,
	userID *kernel.UUID,
) (UploadPackingPhotoCommand, error) {
	errList := []error{jobID.Validate()}
	if body == nil || size <= 0 {
		errList = append(errList, errs.NewValueIsRequiredError("photo"))
	}
	if err := errors.Join(errList...); err != nil {
		return UploadPackingPhotoCommand{}, err
	}
	if photoType == "" {
		photoType = defaultPhotoType
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return UploadPackingPhotoCommand{
		jobID:       jobID,
		photoType:   photoType,
		contentType: contentType,
		body:        body,
		size:        size,
		userID:      userID,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c UploadPackingPhotoCommand) Validate() error {
	return c.guard.Validate(ErrUploadPackingPhotoCommandIsNotConstructed)
}

func (c UploadPackingPhotoCommand) JobID() kernel.UUID   { return c.jobID }
func (c UploadPackingPhotoCommand) PhotoType() string    { return c.photoType }
func (c UploadPackingPhotoCommand) ContentType() string  { return c.contentType }
func (c UploadPackingPhotoCommand) Body() io.Reader      { return c.body }
func (c UploadPackingPhotoCommand) Size() int64          { return c.size }
func (c UploadPackingPhotoCommand) UserID() *kernel.UUID { return c.userID }
