package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrReassignPackingJobCommandIsNotConstructed = errors.New(
	"ReassignPackingJobCommand must be created via NewReassignPackingJobCommand constructor",
)

type ReassignPackingJobCommand struct {
	jobID       kernel.UUID
	newPackerID kernel.UUID
	reason      string
	userID      *kernel.UUID

	guard guard.ConstructorGuard
}

func NewReassignPackingJobCommand(jobID, newPackerID kernel.UUID, reason string, userID *kernel.UUID) (ReassignPackingJobCommand, error) {
	if err := errors.Join(jobID.Validate(), newPackerID.Validate()); err != nil {
		return ReassignPackingJobCommand{}, err
	}
	return ReassignPackingJobCommand{
		jobID:       jobID,
		newPackerID: newPackerID,
		reason:      reason,
		userID:      userID,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c ReassignPackingJobCommand) Validate() error {
	return c.guard.Validate(ErrReassignPackingJobCommandIsNotConstructed)
}

func (c ReassignPackingJobCommand) JobID() kernel.UUID       { return c.jobID }
func (c ReassignPackingJobCommand) NewPackerID() kernel.UUID { return c.newPackerID }
func (c ReassignPackingJobCommand) Reason() string           { return c.reason }
func (c ReassignPackingJobCommand) UserID() *kernel.UUID     { return c.userID }
