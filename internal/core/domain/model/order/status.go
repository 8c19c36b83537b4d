package order

import (
	"fmt"

	"marketplace/internal/pkg/errs"
)

// Status represents the lifecycle state of a marketplace order.
// It implements a state machine with defined transitions so orders always
// follow the operational workflow:
//
//	New ──> AcceptedByMerchant ──> Preparing ──> Ready ──> AssignedToCourier
//	                                               │               │
//	                                               └───────┬───────┘
//	                                                       v
//	                                       PickedUp ──> OnTheWay ──> Delivered
//
// Cancelled and Failed are reachable from any non-terminal state by an
// authorized actor. Delivered, Cancelled and Failed are terminal: no
// transition is legal out of them.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// New is the initial status of a freshly placed order,
	// waiting for the merchant's decision.
	New

	// AcceptedByMerchant indicates the merchant has taken the order.
	AcceptedByMerchant

	// Preparing indicates the merchant is preparing the order.
	Preparing

	// Ready indicates the order is ready for courier pickup.
	Ready

	// AssignedToCourier indicates exactly one courier has claimed the order.
	AssignedToCourier

	// PickedUp indicates the courier has collected the order.
	PickedUp

	// OnTheWay indicates the courier is en route to the customer.
	OnTheWay

	// Delivered is the successful terminal state.
	Delivered

	// Cancelled is the terminal state for orders withdrawn before delivery.
	Cancelled

	// Failed is the terminal state for orders that could not be completed.
	Failed
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:            "Unknown",
		New:                "New",
		AcceptedByMerchant: "AcceptedByMerchant",
		Preparing:          "Preparing",
		Ready:              "Ready",
		AssignedToCourier:  "AssignedToCourier",
		PickedUp:           "PickedUp",
		OnTheWay:           "OnTheWay",
		Delivered:          "Delivered",
		Cancelled:          "Cancelled",
		Failed:             "Failed",
	}
}

// Validate checks that the Status value is one of the defined states.
// Unknown (0) and out-of-range values are invalid. Used when reconstructing
// orders from persistence or parsing statuses from the API.
func (s Status) Validate() error {
	if s <= Unknown || s > Failed {
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the human-readable name of the status.
// Safe to call on any value, including invalid ones.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// StatusFromString parses a status name as it appears in API payloads.
// Matching is exact; "Unknown" is rejected like any other invalid input.
func StatusFromString(s string) (Status, error) {
	for status, name := range getStatusStrings() {
		if name == s && status != Unknown {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status",
		fmt.Errorf("%q is not a valid status", s))
}

// IsTerminal reports whether the status admits no further transitions.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled || s == Failed
}

// Actor identifies the role requesting a status transition. Transition
// legality depends on both the current status and who is asking.
type Actor int

const (
	// ActorUnknown represents an invalid or undefined actor.
	ActorUnknown Actor = iota

	// ActorCustomer is the buyer who placed the order.
	ActorCustomer

	// ActorMerchant is the store fulfilling the order.
	ActorMerchant

	// ActorCourier is the rider delivering the order.
	ActorCourier

	// ActorCoordinator is the assignment coordinator claiming orders for couriers.
	ActorCoordinator

	// ActorAdmin is marketplace staff with override powers.
	ActorAdmin
)

func getActorStrings() map[Actor]string {
	return map[Actor]string{
		ActorUnknown:     "Unknown",
		ActorCustomer:    "Customer",
		ActorMerchant:    "Merchant",
		ActorCourier:     "Courier",
		ActorCoordinator: "Coordinator",
		ActorAdmin:       "Admin",
	}
}

// Validate checks that the Actor value is one of the defined roles.
func (a Actor) Validate() error {
	if a <= ActorUnknown || a > ActorAdmin {
		return errs.NewValueIsInvalidErrorWithCause("actor",
			fmt.Errorf("%d is not a valid actor", a))
	}
	return nil
}

// ActorFromString parses an actor name as it appears in API payloads.
func ActorFromString(s string) (Actor, error) {
	for actor, name := range getActorStrings() {
		if name == s && actor != ActorUnknown {
			return actor, nil
		}
	}
	return ActorUnknown, errs.NewValueIsInvalidErrorWithCause("actor",
		fmt.Errorf("%q is not a valid actor", s))
}

// String returns the human-readable name of the actor.
func (a Actor) String() string {
	if str, ok := getActorStrings()[a]; ok {
		return str
	}
	return "Unknown"
}

// transition is a (from, to) pair in the status table.
type transition struct {
	from Status
	to   Status
}

// progressTransitions is the forward path of the workflow. Cancellation and
// failure are handled separately because they apply to every non-terminal
// state.
var progressTransitions = map[transition][]Actor{
	{from: New, to: AcceptedByMerchant}:       {ActorMerchant},
	{from: AcceptedByMerchant, to: Preparing}: {ActorMerchant},
	{from: Preparing, to: Ready}:              {ActorMerchant},

	// Claims are valid once the merchant has accepted; courier_id stays null
	// until exactly one claim wins.
	{from: Ready, to: AssignedToCourier}:              {ActorCoordinator},
	{from: AcceptedByMerchant, to: AssignedToCourier}: {ActorCoordinator},

	{from: AssignedToCourier, to: PickedUp}: {ActorCourier},
	{from: Ready, to: PickedUp}:             {ActorCourier},
	{from: PickedUp, to: OnTheWay}:          {ActorCourier},
	{from: OnTheWay, to: Delivered}:         {ActorCourier},
}

// exceptionActors may move any non-terminal order into the named exception
// state. Both paths stay reversible through a refund entry.
var exceptionActors = map[Status][]Actor{
	Cancelled: {ActorCustomer, ActorMerchant, ActorAdmin},
	Failed:    {ActorMerchant, ActorCourier, ActorAdmin},
}

// ValidateTransition checks whether actor may move an order from s to target.
// Terminal states reject every transition; unknown pairs and unauthorized
// actors are rejected with a validation error naming the offending request.
func (s Status) ValidateTransition(target Status, actor Actor) error {
	if err := target.Validate(); err != nil {
		return err
	}
	if err := actor.Validate(); err != nil {
		return err
	}
	if s.IsTerminal() {
		return errs.NewValueIsInvalidErrorWithCause("status transition",
			fmt.Errorf("%s is terminal, no transition to %s is allowed", s, target))
	}

	if actors, ok := exceptionActors[target]; ok {
		if !containsActor(actors, actor) {
			return errs.NewValueIsInvalidErrorWithCause("status transition",
				fmt.Errorf("%s may not move an order to %s", actor, target))
		}
		return nil
	}

	actors, ok := progressTransitions[transition{from: s, to: target}]
	if !ok {
		return errs.NewValueIsInvalidErrorWithCause("status transition",
			fmt.Errorf("%s -> %s is not a legal transition", s, target))
	}
	if !containsActor(actors, actor) {
		return errs.NewValueIsInvalidErrorWithCause("status transition",
			fmt.Errorf("%s may not move an order from %s to %s", actor, s, target))
	}

	return nil
}

// ValidateCanHaveCourier checks consistency between status and courier
// assignment: orders before assignment must not reference a courier, and
// orders from assignment through delivery must.
func (s Status) ValidateCanHaveCourier(hasCourier bool) error {
	requiresCourier := s == AssignedToCourier || s == PickedUp || s == OnTheWay || s == Delivered

	if requiresCourier && !hasCourier {
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%s requires an assigned courier", s))
	}
	if hasCourier && !requiresCourier && !s.IsTerminal() {
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%s must not have an assigned courier", s))
	}

	return nil
}

func containsActor(actors []Actor, actor Actor) bool {
	for _, a := range actors {
		if a == actor {
			return true
		}
	}
	return false
}
