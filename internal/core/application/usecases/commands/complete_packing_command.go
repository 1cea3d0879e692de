package commands

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/packing"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrCompletePackingCommandIsNotConstructed = errors.New(
	"CompletePackingCommand must be created via NewCompletePackingCommand constructor",
)

type PhotoInput struct {
	OrderID      *kernel.UUID
	PhotoURL     string
	ThumbnailURL string
	PhotoType    string
	CapturedAt   time.Time
	Latitude     *float64
	Longitude    *float64
	DeviceInfo   string
}

type SealInput struct {
	OrderID    *kernel.UUID
	SealNumber string
	SealType   string
	AppliedAt  time.Time
}

// CompletePackingCommand seals a job once every item is verified.
type CompletePackingCommand struct {
	jobID  kernel.UUID
	photos []packing.PhotoEvidence
	seals  []packing.Seal
	userID *kernel.UUID

	guard guard.ConstructorGuard
}

func NewCompletePackingCommand(jobID kernel.UUID, photos []PhotoInput, seals []SealInput, userID *kernel.UUID) (CompletePackingCommand, error) {
	errList := []error{jobID.Validate()}

	evidence := make([]packing.PhotoEvidence, 0, len(photos))
	for _, p := range photos {
		if p.PhotoURL == "" {
			errList = append(errList, errs.NewValueIsRequiredError("photoUrl"))
			continue
		}
		evidence = append(evidence, packing.PhotoEvidence{
			OrderID:      p.OrderID,
			PhotoURL:     p.PhotoURL,
			ThumbnailURL: p.ThumbnailURL,
			PhotoType:    p.PhotoType,
			CapturedAt:   p.CapturedAt,
			Latitude:     p.Latitude,
			Longitude:    p.Longitude,
			DeviceInfo:   p.DeviceInfo,
		})
	}

	applied := make([]packing.Seal, 0, len(seals))
	for _, s := range seals {
		if s.SealNumber == "" {
			errList = append(errList, errs.NewValueIsRequiredError("sealNumber"))
			continue
		}
		applied = append(applied, packing.Seal{
			OrderID:    s.OrderID,
			SealNumber: s.SealNumber,
			SealType:   s.SealType,
			AppliedAt:  s.AppliedAt,
		})
	}

	if err := errors.Join(errList...); err != nil {
		return CompletePackingCommand{}, err
	}

	return CompletePackingCommand{
		jobID:  jobID,
		photos: evidence,
		seals:  applied,
		userID: userID,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

func (c CompletePackingCommand) Validate() error {
	return c.guard.Validate(ErrCompletePackingCommandIsNotConstructed)
}

func (c CompletePackingCommand) JobID() kernel.UUID              { return c.jobID }
func (c CompletePackingCommand) Photos() []packing.PhotoEvidence { return c.photos }
func (c CompletePackingCommand) Seals() []packing.Seal           { return c.seals }
func (c CompletePackingCommand) UserID() *kernel.UUID            { return c.userID }
