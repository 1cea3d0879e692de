package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrAssignRiderCommandIsNotConstructed = errors.New(
	"AssignRiderCommand must be created via NewAssignRiderCommand constructor",
)

// AssignRiderCommand hands a packed job over to a rider.
type AssignRiderCommand struct {
	jobID               kernel.UUID
	riderID             kernel.UUID
	specialInstructions string
	userID              *kernel.UUID

	guard guard.ConstructorGuard
}

func NewAssignRiderCommand(jobID, riderID kernel.UUID, specialInstructions string, userID *kernel.UUID) (AssignRiderCommand, error) {
	if err := errors.Join(jobID.Validate(), riderID.Validate()); err != nil {
		return AssignRiderCommand{}, err
	}
	return AssignRiderCommand{
		jobID:               jobID,
		riderID:             riderID,
		specialInstructions: specialInstructions,
		userID:              userID,
		guard:               guard.NewConstructorGuard(),
	}, nil
}

func (c AssignRiderCommand) Validate() error {
	return c.guard.Validate(ErrAssignRiderCommandIsNotConstructed)
}

func (c AssignRiderCommand) JobID() kernel.UUID          { return c.jobID }
func (c AssignRiderCommand) RiderID() kernel.UUID        { return c.riderID }
func (c AssignRiderCommand) SpecialInstructions() string { return c.specialInstructions }
func (c AssignRiderCommand) UserID() *kernel.UUID        { return c.userID }
