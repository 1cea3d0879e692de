package commands

import (
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/wave"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrGenerateWavesCommandIsNotConstructed = errors.New(
		"GenerateWavesCommand must be created via NewGenerateWavesCommand constructor",
	)
	ErrOrderIDsAreRequired = errs.NewValueIsRequiredError("orderIds")
)

// GenerateWavesCommand batches orders into picking waves.
//
// Example:
//
//	cmd, err := NewGenerateWavesCommand(orderIDs, "HIGH", 20, wave.Options{FEFORequired: true}, &userID)
//	if err != nil {
//	    return fmt.Errorf("invalid wave request: %w", err)
//	}
//	result, err := handler.Handle(ctx, cmd)
type GenerateWavesCommand struct { //nolint:recvcheck //using for validation
	orderIDs         []kernel.UUID
	priority         kernel.Priority
	maxOrdersPerWave int
	options          wave.Options
	userID           *kernel.UUID

	guard guard.ConstructorGuard
}

// NewGenerateWavesCommand validates the request. An empty priority means
// MEDIUM and a zero maxOrdersPerWave means the default of 20. Duplicate
// order IDs are rejected.
func NewGenerateWavesCommand(
	orderIDs []kernel.UUID,
	priority string,
	maxOrdersPerWave int,
	options wave.Options,
	userID *kernel.UUID,
) (GenerateWavesCommand, error) {
	cmd := GenerateWavesCommand{
		options: options,
		userID:  userID,
		guard:   guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderIDs(orderIDs),
		cmd.setPriority(priority),
		cmd.setMaxOrdersPerWave(maxOrdersPerWave),
	); err != nil {
		return GenerateWavesCommand{}, err
	}

	return cmd, nil
}

func (c GenerateWavesCommand) Validate() error {
	return c.guard.Validate(ErrGenerateWavesCommandIsNotConstructed)
}

func (c GenerateWavesCommand) OrderIDs() []kernel.UUID   { return c.orderIDs }
func (c GenerateWavesCommand) Priority() kernel.Priority { return c.priority }
func (c GenerateWavesCommand) MaxOrdersPerWave() int     { return c.maxOrdersPerWave }
func (c GenerateWavesCommand) Options() wave.Options     { return c.options }
func (c GenerateWavesCommand) UserID() *kernel.UUID      { return c.userID }

func (c *GenerateWavesCommand) setOrderIDs(ids []kernel.UUID) error {
	if len(ids) == 0 {
		return ErrOrderIDsAreRequired
	}
	seen := make(map[kernel.UUID]struct{}, len(ids))
	for _, id := range ids {
		if err := id.Validate(); err != nil {
			return err
		}
		if _, dup := seen[id]; dup {
			return errs.NewValueIsInvalidErrorWithCause("orderIds", fmt.Errorf("order %s is listed twice", id))
		}
		seen[id] = struct{}{}
	}
	c.orderIDs = ids
	return nil
}

func (c *GenerateWavesCommand) setPriority(priority string) error {
	p, err := kernel.ParsePriority(priority)
	if err != nil {
		return err
	}
	c.priority = p
	return nil
}

func (c *GenerateWavesCommand) setMaxOrdersPerWave(n int) error {
	if n < 0 {
		return errs.NewValueIsInvalidErrorWithCause("maxOrdersPerWave", fmt.Errorf("%d is negative", n))
	}
	if n == 0 {
		n = services.DefaultMaxOrdersPerWave
	}
	c.maxOrdersPerWave = n
	return nil
}
