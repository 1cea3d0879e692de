package commands

import (
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrVerifyItemCommandIsNotConstructed = errors.New(
	"VerifyItemCommand must be created via NewVerifyItemCommand constructor",
)

// VerifyItemCommand records the packed quantity of one order line.
type VerifyItemCommand struct {
	jobID          kernel.UUID
	orderID        kernel.UUID
	sku            string
	packedQuantity int
	userID         *kernel.UUID

	guard guard.ConstructorGuard
}

func NewVerifyItemCommand(jobID, orderID kernel.UUID, sku string, packedQuantity int, userID *kernel.UUID) (VerifyItemCommand, error) {
	var errList []error
	errList = append(errList, jobID.Validate(), orderID.Validate())
	if sku == "" {
		errList = append(errList, ErrSKUIsRequired)
	}
	if packedQuantity < 0 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("packedQuantity", fmt.Errorf("%d is negative", packedQuantity)))
	}
	if err := errors.Join(errList...); err != nil {
		return VerifyItemCommand{}, err
	}

	return VerifyItemCommand{
		jobID:          jobID,
		orderID:        orderID,
		sku:            sku,
		packedQuantity: packedQuantity,
		userID:         userID,
		guard:          guard.NewConstructorGuard(),
	}, nil
}

func (c VerifyItemCommand) Validate() error {
	return c.guard.Validate(ErrVerifyItemCommandIsNotConstructed)
}

func (c VerifyItemCommand) JobID() kernel.UUID   { return c.jobID }
func (c VerifyItemCommand) OrderID() kernel.UUID { return c.orderID }
func (c VerifyItemCommand) SKU() string          { return c.sku }
func (c VerifyItemCommand) PackedQuantity() int  { return c.packedQuantity }
func (c VerifyItemCommand) UserID() *kernel.UUID { return c.userID }
