// Package guard lets commands, queries and value objects detect that they
// were built as a zero value instead of through their constructor.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when the caller passes no
// error of its own.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard is embedded into a struct and set only by the struct's
// constructor. A zero-value guard fails Validate.
//
//	type ScanItemCommand struct {
//	    sku   string
//	    guard guard.ConstructorGuard
//	}
//
//	func (c ScanItemCommand) Validate() error {
//	    return c.guard.Validate(ErrScanItemCommandIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns validationError (or ErrDefaultConstructorGuard when it is nil)
// if the guard was never constructed.
func (g ConstructorGuard) Validate(validationError error) error {
	if g.isConstructed {
		return nil
	}
	if validationError == nil {
		return ErrDefaultConstructorGuard
	}
	return validationError
}
