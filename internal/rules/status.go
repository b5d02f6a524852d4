package rules

import "fmt"

// Status is the persisted order status. "toShip" is NOT a status: it is
// a display label for COD orders still pending (see DisplayStatus).
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipping  Status = "shipping"
	StatusCompleted Status = "completed"
	StatusRefunded  Status = "refunded"
	StatusCancelled Status = "cancelled"
)

// PaymentMethod is how the customer pays for an order.
type PaymentMethod string

const (
	PaymentCOD   PaymentMethod = "cod"
	PaymentCard  PaymentMethod = "card"
	PaymentGCash PaymentMethod = "gcash"
	PaymentMaya  PaymentMethod = "maya"
)

// allowedNext is the full transition table. Staying in place is a legal
// no-op update for every non-terminal status. Terminal statuses
// (completed, refunded, cancelled) have no entry at all: nothing leaves
// them, not even a self-loop.
var allowedNext = map[Status]map[Status]bool{
	StatusPending:  {StatusPending: true, StatusPaid: true, StatusShipping: true, StatusCancelled: true},
	StatusPaid:     {StatusPaid: true, StatusShipping: true, StatusCancelled: true},
	StatusShipping: {StatusShipping: true, StatusCompleted: true},
}

// Valid reports whether s is one of the six known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipping, StatusCompleted, StatusRefunded, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether s permits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusRefunded || s == StatusCancelled
}

// InvalidTransitionError is returned by ValidateTransition when the
// requested status is not reachable from the current one. The caller
// must leave the stored status untouched and surface Reason to the user.
type InvalidTransitionError struct {
	From   Status
	To     Status
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order status transition %s -> %s: %s", e.From, e.To, e.Reason)
}

// ValidateTransition checks the transition table. It returns nil when
// the update may be persisted, or an *InvalidTransitionError when it
// must be rejected.
func ValidateTransition(current, requested Status) error {
	if !current.Valid() {
		return &InvalidTransitionError{From: current, To: requested, Reason: "unknown current status"}
	}
	if !requested.Valid() {
		return &InvalidTransitionError{From: current, To: requested, Reason: "unknown requested status"}
	}
	if current.Terminal() {
		return &InvalidTransitionError{From: current, To: requested, Reason: fmt.Sprintf("'%s' is a terminal status", current)}
	}
	if !allowedNext[current][requested] {
		return &InvalidTransitionError{From: current, To: requested, Reason: fmt.Sprintf("'%s' is not reachable from '%s'", requested, current)}
	}
	return nil
}

// DisplayStatus returns the label shown to the customer. A cash-on-
// delivery order that is still pending is presented as "toShip" because
// no payment step stands between it and fulfilment. The persisted status
// stays "pending"; this relabel must never be written back.
func DisplayStatus(s Status, method PaymentMethod) string {
	if s == StatusPending && method == PaymentCOD {
		return "toShip"
	}
	return string(s)
}

// SortRank orders statuses for the admin queue: the smaller the rank,
// the sooner the order needs attention.
func SortRank(s Status) int {
	switch s {
	case StatusPending:
		return 1
	case StatusShipping:
		return 2
	case StatusPaid:
		return 3
	case StatusCompleted:
		return 4
	case StatusRefunded:
		return 5
	case StatusCancelled:
		return 6
	default:
		return 7
	}
}
