package commands

import (
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrAssignWavesCommandIsNotConstructed = errors.New(
	"AssignWavesCommand must be created via NewAssignWavesCommand constructor",
)

// AssignWavesCommand distributes unassigned waves across eligible pickers.
type AssignWavesCommand struct {
	maxWavesPerPicker int
	userID            *kernel.UUID

	guard guard.ConstructorGuard
}

// NewAssignWavesCommand accepts zero as "use the default cap of 3".
func NewAssignWavesCommand(maxWavesPerPicker int, userID *kernel.UUID) (AssignWavesCommand, error) {
	if maxWavesPerPicker < 0 {
		return AssignWavesCommand{}, errs.NewValueIsInvalidErrorWithCause(
			"maxWavesPerPicker", fmt.Errorf("%d is negative", maxWavesPerPicker),
		)
	}
	if maxWavesPerPicker == 0 {
		maxWavesPerPicker = services.DefaultMaxWavesPerPicker
	}
	return AssignWavesCommand{
		maxWavesPerPicker: maxWavesPerPicker,
		userID:            userID,
		guard:             guard.NewConstructorGuard(),
	}, nil
}

func (c AssignWavesCommand) Validate() error {
	return c.guard.Validate(ErrAssignWavesCommandIsNotConstructed)
}

func (c AssignWavesCommand) MaxWavesPerPicker() int { return c.maxWavesPerPicker }
func (c AssignWavesCommand) UserID() *kernel.UUID   { return c.userID }
