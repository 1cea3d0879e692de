package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrCancelWaveCommandIsNotConstructed = errors.New(
	"CancelWaveCommand must be created via NewCancelWaveCommand constructor",
)

// CancelWaveCommand cancels a wave that has not finished.
type CancelWaveCommand struct {
	waveID kernel.UUID
	reason string
	userID *kernel.UUID

	guard guard.ConstructorGuard
}

func NewCancelWaveCommand(waveID kernel.UUID, reason string, userID *kernel.UUID) (CancelWaveCommand, error) {
	if err := waveID.Validate(); err != nil {
		return CancelWaveCommand{}, err
	}
	return CancelWaveCommand{
		waveID: waveID,
		reason: reason,
		userID: userID,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

func (c CancelWaveCommand) Validate() error {
	return c.guard.Validate(ErrCancelWaveCommandIsNotConstructed)
}

func (c CancelWaveCommand) WaveID() kernel.UUID  { return c.waveID }
func (c CancelWaveCommand) Reason() string       { return c.reason }
func (c CancelWaveCommand) UserID() *kernel.UUID { return c.userID }
