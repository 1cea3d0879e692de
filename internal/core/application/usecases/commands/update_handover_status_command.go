package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/handover"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrUpdateHandoverStatusCommandIsNotConstructed = errors.New(
	"UpdateHandoverStatusCommand must be created via NewUpdateHandoverStatusCommand constructor",
)

// UpdateHandoverStatusCommand moves a handover along its lifecycle.
// Whether the move is allowed is decided against the current status.
type UpdateHandoverStatusCommand struct {
	handoverID kernel.UUID
	status     handover.Status
	reason     string
	userID     *kernel.UUID

	guard guard.ConstructorGuard
}

func NewUpdateHandoverStatusCommand(handoverID kernel.UUID, status, reason string, userID *kernel.UUID) (UpdateHandoverStatusCommand, error) {
	parsed, err := handover.ParseStatus(status)
	if err = errors.Join(handoverID.Validate(), err); err != nil {
		return UpdateHandoverStatusCommand{}, err
	}
	return UpdateHandoverStatusCommand{
		handoverID: handoverID,
		status:     parsed,
		reason:     reason,
		userID:     userID,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c UpdateHandoverStatusCommand) Validate() error {
	return c.guard.Validate(ErrUpdateHandoverStatusCommandIsNotConstructed)
}

func (c UpdateHandoverStatusCommand) HandoverID() kernel.UUID { return c.handoverID }
func (c UpdateHandoverStatusCommand) Status() handover.Status { return c.status }
func (c UpdateHandoverStatusCommand) Reason() string          { return c.reason }
func (c UpdateHandoverStatusCommand) UserID() *kernel.UUID    { return c.userID }
