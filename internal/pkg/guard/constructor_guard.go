// Package guard provides a defensive constructor guard for value objects
// and entities. Embedding a ConstructorGuard in a struct makes zero-value
// instances detectable, so domain objects can reject anything that was not
// created through its designated constructor.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when the caller passes
// a nil validation error. Validation always fails with a meaningful message
// even when no specific error is provided.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard marks an object as properly constructed. The zero value
// is "not constructed"; only NewConstructorGuard produces a valid guard.
//
// Example:
//
//	type Rate struct {
//	    value decimal.Decimal
//	    guard guard.ConstructorGuard
//	}
//
//	func NewRate(v decimal.Decimal) (Rate, error) {
//	    // validate v ...
//	    return Rate{value: v, guard: guard.NewConstructorGuard()}, nil
//	}
//
//	func (r Rate) Validate() error {
//	    return r.guard.Validate(ErrRateIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard creates a guard that marks its holder as constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns nil for a properly constructed guard. For a zero-value
// guard it returns validationError, or ErrDefaultConstructorGuard when
// validationError is nil.
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
