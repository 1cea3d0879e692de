package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrStartPickingCommandIsNotConstructed = errors.New(
	"StartPickingCommand must be created via NewStartPickingCommand constructor",
)

// StartPickingCommand moves an ASSIGNED wave to PICKING on behalf of its picker.
type StartPickingCommand struct {
	waveID   kernel.UUID
	pickerID kernel.UUID

	guard guard.ConstructorGuard
}

func NewStartPickingCommand(waveID, pickerID kernel.UUID) (StartPickingCommand, error) {
	if err := errors.Join(waveID.Validate(), pickerID.Validate()); err != nil {
		return StartPickingCommand{}, err
	}
	return StartPickingCommand{
		waveID:   waveID,
		pickerID: pickerID,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c StartPickingCommand) Validate() error {
	return c.guard.Validate(ErrStartPickingCommandIsNotConstructed)
}

func (c StartPickingCommand) WaveID() kernel.UUID   { return c.waveID }
func (c StartPickingCommand) PickerID() kernel.UUID { return c.pickerID }
