package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrConfirmHandoverCommandIsNotConstructed = errors.New(
	"ConfirmHandoverCommand must be created via NewConfirmHandoverCommand constructor",
)

// ConfirmHandoverCommand is sent by the rider collecting the package.
type ConfirmHandoverCommand struct {
	handoverID       kernel.UUID
	riderID          kernel.UUID
	confirmationCode string

	guard guard.ConstructorGuard
}

func NewConfirmHandoverCommand(handoverID, riderID kernel.UUID, confirmationCode string) (ConfirmHandoverCommand, error) {
	if err := errors.Join(handoverID.Validate(), riderID.Validate()); err != nil {
		return ConfirmHandoverCommand{}, err
	}
	return ConfirmHandoverCommand{
		handoverID:       handoverID,
		riderID:          riderID,
		confirmationCode: confirmationCode,
		guard:            guard.NewConstructorGuard(),
	}, nil
}

func (c ConfirmHandoverCommand) Validate() error {
	return c.guard.Validate(ErrConfirmHandoverCommandIsNotConstructed)
}

func (c ConfirmHandoverCommand) HandoverID() kernel.UUID  { return c.handoverID }
func (c ConfirmHandoverCommand) RiderID() kernel.UUID     { return c.riderID }
func (c ConfirmHandoverCommand) ConfirmationCode() string { return c.confirmationCode }
