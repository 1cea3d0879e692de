package commands

import (
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrScanItemCommandIsNotConstructed = errors.New(
		"ScanItemCommand must be created via NewScanItemCommand constructor",
	)
	ErrSKUIsRequired = errs.NewValueIsRequiredError("sku")
)

// ScanItemCommand records a barcode scan at a bin.
type ScanItemCommand struct {
	waveID      kernel.UUID
	pickerID    kernel.UUID
	sku         string
	binLocation string
	quantity    int

	guard guard.ConstructorGuard
}

func NewScanItemCommand(waveID, pickerID kernel.UUID, sku, binLocation string, quantity int) (ScanItemCommand, error) {
	var errList []error
	errList = append(errList, waveID.Validate(), pickerID.Validate())
	if sku == "" {
		errList = append(errList, ErrSKUIsRequired)
	}
	if quantity <= 0 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("quantity", fmt.Errorf("%d is not greater than 0", quantity)))
	}
	if err := errors.Join(errList...); err != nil {
		return ScanItemCommand{}, err
	}

	return ScanItemCommand{
		waveID:      waveID,
		pickerID:    pickerID,
		sku:         sku,
		binLocation: binLocation,
		quantity:    quantity,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c ScanItemCommand) Validate() error {
	return c.guard.Validate(ErrScanItemCommandIsNotConstructed)
}

func (c ScanItemCommand) WaveID() kernel.UUID   { return c.waveID }
func (c ScanItemCommand) PickerID() kernel.UUID { return c.pickerID }
func (c ScanItemCommand) SKU() string           { return c.sku }
func (c ScanItemCommand) BinLocation() string   { return c.binLocation }
func (c ScanItemCommand) Quantity() int         { return c.quantity }
