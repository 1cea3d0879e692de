package commands

import (
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/wave"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrReportPartialPickCommandIsNotConstructed = errors.New(
	"ReportPartialPickCommand must be created via NewReportPartialPickCommand constructor",
)

// ReportPartialPickCommand reports a line that cannot be picked in full.
type ReportPartialPickCommand struct {
	waveID   kernel.UUID
	pickerID kernel.UUID
	pick     wave.PartialPick

	guard guard.ConstructorGuard
}

func NewReportPartialPickCommand(
	waveID, pickerID kernel.UUID,
	sku, binLocation, reason string,
	pickedQuantity int,
	notes, photoURL string,
) (ReportPartialPickCommand, error) {
	var errList []error
	errList = append(errList, waveID.Validate(), pickerID.Validate())
	if sku == "" {
		errList = append(errList, ErrSKUIsRequired)
	}
	parsed, err := wave.ParsePartialReason(reason)
	errList = append(errList, err)
	if pickedQuantity < 0 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("pickedQuantity", fmt.Errorf("%d is negative", pickedQuantity)))
	}
	if err = errors.Join(errList...); err != nil {
		return ReportPartialPickCommand{}, err
	}

	return ReportPartialPickCommand{
		waveID:   waveID,
		pickerID: pickerID,
		pick: wave.PartialPick{
			SKU:            sku,
			BinLocation:    binLocation,
			Reason:         parsed,
			PickedQuantity: pickedQuantity,
			Notes:          notes,
			PhotoURL:       photoURL,
		},
		guard: guard.NewConstructorGuard(),
	}, nil
}

func (c ReportPartialPickCommand) Validate() error {
	return c.guard.Validate(ErrReportPartialPickCommandIsNotConstructed)
}

func (c ReportPartialPickCommand) WaveID() kernel.UUID    { return c.waveID }
func (c ReportPartialPickCommand) PickerID() kernel.UUID  { return c.pickerID }
func (c ReportPartialPickCommand) Pick() wave.PartialPick { return c.pick }
