package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrRetryLMSSyncCommandIsNotConstructed = errors.New(
	"RetryLMSSyncCommand must be created via NewRetryLMSSyncCommand constructor",
)

type RetryLMSSyncCommand struct {
	handoverID kernel.UUID

	guard guard.ConstructorGuard
}

func NewRetryLMSSyncCommand(handoverID kernel.UUID) (RetryLMSSyncCommand, error) {
	if err := handoverID.Validate(); err != nil {
		return RetryLMSSyncCommand{}, err
	}
	return RetryLMSSyncCommand{handoverID: handoverID, guard: guard.NewConstructorGuard()}, nil
}

func (c RetryLMSSyncCommand) Validate() error {
	return c.guard.Validate(ErrRetryLMSSyncCommandIsNotConstructed)
}

func (c RetryLMSSyncCommand) HandoverID() kernel.UUID { return c.handoverID }
