package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrCompletePickingCommandIsNotConstructed = errors.New(
	"CompletePickingCommand must be created via NewCompletePickingCommand constructor",
)

// CompletePickingCommand closes a wave by hand once no line is open.
type CompletePickingCommand struct {
	waveID   kernel.UUID
	pickerID kernel.UUID

	guard guard.ConstructorGuard
}

func NewCompletePickingCommand(waveID, pickerID kernel.UUID) (CompletePickingCommand, error) {
	if err := errors.Join(waveID.Validate(), pickerID.Validate()); err != nil {
		return CompletePickingCommand{}, err
	}
	return CompletePickingCommand{
		waveID:   waveID,
		pickerID: pickerID,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c CompletePickingCommand) Validate() error {
	return c.guard.Validate(ErrCompletePickingCommandIsNotConstructed)
}

func (c CompletePickingCommand) WaveID() kernel.UUID   { return c.waveID }
func (c CompletePickingCommand) PickerID() kernel.UUID { return c.pickerID }
