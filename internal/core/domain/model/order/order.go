package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

var ErrOrderIsNotConstructed = errors.New("Order must be created via RestoreOrder")

// CartLine is one product line of an order's cart as stored by the storefront.
type CartLine struct {
	SKU         string `json:"sku"`
	ProductName string `json:"productName"`
	BinLocation string `json:"binLocation"`
	Quantity    int    `json:"quantity"`
}

// Order is the storefront order as seen by fulfillment. The service never
// creates or mutates orders; it only reads them to build picklists.
type Order struct {
	id            kernel.UUID
	orderNumber   string
	rawCart       []byte
	status        string
	isConstructed bool
}

// RestoreOrder rebuilds an order from storage. The cart is kept raw and parsed
// lazily by Cart so a malformed cart does not make the order unreadable.
func RestoreOrder(id kernel.UUID, orderNumber string, rawCart []byte, status string) (*Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return &Order{
		id:            id,
		orderNumber:   orderNumber,
		rawCart:       rawCart,
		status:        status,
		isConstructed: true,
	}, nil
}

func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) OrderNumber() string {
	return o.orderNumber
}

func (o *Order) Status() string {
	return o.status
}

func (o *Order) RawCart() []byte {
	return o.rawCart
}

// Cart parses the cart JSON. On a parse failure it returns an empty cart
// together with the error; callers decide whether to log and continue.
func (o *Order) Cart() ([]CartLine, error) {
	return ParseCart(o.rawCart)
}

// ParseCart decodes a JSON array of cart lines. Lines without a SKU or with a
// non-positive quantity are dropped.
func ParseCart(raw []byte) ([]CartLine, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return []CartLine{}, nil
	}

	var lines []CartLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		return []CartLine{}, errs.NewValueIsInvalidErrorWithCause("cart", fmt.Errorf("malformed cart JSON: %w", err))
	}

	valid := make([]CartLine, 0, len(lines))
	for _, line := range lines {
		if line.SKU == "" || line.Quantity <= 0 {
			continue
		}
		valid = append(valid, line)
	}
	return valid, nil
}
