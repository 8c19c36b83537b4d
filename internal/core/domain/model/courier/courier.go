package courier

import (
	"errors"
	"strings"
	"unicode"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

const (
	maxNameLength  = 100
	minPhoneDigits = 7
	maxPhoneLength = 20
)

// Domain errors for courier operations.
var (
	// ErrNameIsRequired is returned when attempting to create a courier without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrPhoneIsRequired is returned when attempting to create a courier without a phone number.
	ErrPhoneIsRequired = errs.NewValueIsRequiredError("phone")
	// ErrCourierIsNotConstructed is returned when using an improperly initialized Courier.
	ErrCourierIsNotConstructed = errors.New("Courier must be created via NewCourier constructor")
)

// Courier represents a delivery courier registered with the marketplace.
// It is an aggregate root that manages courier identity and availability.
//
// Business rules:
//   - Courier must have a valid UUID, non-empty name, and plausible phone number
//   - A deactivated courier may not claim new orders; in-flight deliveries
//     are unaffected
type Courier struct {
	id     kernel.UUID
	name   string
	phone  string
	active bool

	guard guard.ConstructorGuard
}

// NewCourier creates a new active Courier with the specified parameters.
// This is the only way to create a valid Courier instance. All parameters
// are validated and errors are aggregated.
func NewCourier(id kernel.UUID, name string, phone string) (*Courier, error) {
	courier := &Courier{
		guard:  guard.NewConstructorGuard(),
		active: true,
	}

	if err := errors.Join(
		courier.setID(id),
		courier.setName(name),
		courier.setPhone(phone),
	); err != nil {
		return nil, err
	}

	return courier, nil
}

// RestoreCourier reconstructs a Courier aggregate from persistent storage,
// including its activation flag. The restored courier behaves identically to
// one created through normal domain operations.
func RestoreCourier(id kernel.UUID, name string, phone string, active bool) (*Courier, error) {
	courier := &Courier{
		guard:  guard.NewConstructorGuard(),
		active: active,
	}

	if err := errors.Join(
		courier.setID(id),
		courier.setName(name),
		courier.setPhone(phone),
	); err != nil {
		return nil, err
	}

	return courier, nil
}

// IsEqual compares two couriers by their unique identifiers.
func (c *Courier) IsEqual(other *Courier) bool {
	if other == nil {
		return false
	}
	return c.id.IsEqual(other.id)
}

// Validate checks if the Courier was properly constructed.
// The zero value of Courier is invalid and will fail this validation.
func (c *Courier) Validate() error {
	if c == nil {
		return ErrCourierIsNotConstructed
	}
	return c.guard.Validate(ErrCourierIsNotConstructed)
}

// ID returns the unique identifier of the courier.
func (c *Courier) ID() kernel.UUID {
	return c.id
}

// Name returns the human-readable name of the courier.
func (c *Courier) Name() string {
	return c.name
}

// Phone returns the courier's contact phone number.
func (c *Courier) Phone() string {
	return c.phone
}

// IsActive reports whether the courier may claim new orders.
func (c *Courier) IsActive() bool {
	return c.active
}

// Activate allows the courier to claim orders again.
func (c *Courier) Activate() error {
	if err := c.Validate(); err != nil {
		return err
	}

	c.active = true
	return nil
}

// Deactivate bars the courier from claiming new orders. Orders the courier
// is already carrying are not affected.
func (c *Courier) Deactivate() error {
	if err := c.Validate(); err != nil {
		return err
	}

	c.active = false
	return nil
}

// Rename updates the courier's display name.
func (c *Courier) Rename(name string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return c.setName(name)
}

// ChangePhone updates the courier's contact phone number.
func (c *Courier) ChangePhone(phone string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return c.setPhone(phone)
}

func (c *Courier) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.id = id
	return nil
}

func (c *Courier) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameIsRequired
	}
	if len(name) > maxNameLength {
		return errs.NewValueIsOutOfRangeError("name length", len(name), 1, maxNameLength)
	}

	c.name = name
	return nil
}

// setPhone accepts loosely formatted numbers: digits with optional leading
// plus, spaces, dashes and parentheses, as long as enough digits remain.
func (c *Courier) setPhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ErrPhoneIsRequired
	}
	if len(phone) > maxPhoneLength {
		return errs.NewValueIsOutOfRangeError("phone length", len(phone), 1, maxPhoneLength)
	}

	digits := 0
	for i, r := range phone {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return errs.NewValueIsInvalidError("phone")
		}
	}
	if digits < minPhoneDigits {
		return errs.NewValueIsInvalidError("phone")
	}

	c.phone = phone
	return nil
}
