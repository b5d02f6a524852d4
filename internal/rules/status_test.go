package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allStatuses = []Status{
	StatusPending, StatusPaid, StatusShipping,
	StatusCompleted, StatusRefunded, StatusCancelled,
}

func TestTerminalStatusesRejectEverything(t *testing.T) {
	for _, terminal := range []Status{StatusCompleted, StatusRefunded, StatusCancelled} {
		for _, requested := range allStatuses {
			err := ValidateTransition(terminal, requested)
			require.Error(t, err, "%s -> %s must be rejected", terminal, requested)

			var ite *InvalidTransitionError
			require.ErrorAs(t, err, &ite)
			assert.Equal(t, terminal, ite.From)
			assert.Equal(t, requested, ite.To)
		}
	}
}

func TestTransitionTable(t *testing.T) {
	allowed := map[Status][]Status{
		StatusPending:  {StatusPending, StatusPaid, StatusShipping, StatusCancelled},
		StatusPaid:     {StatusPaid, StatusShipping, StatusCancelled},
		StatusShipping: {StatusShipping, StatusCompleted},
	}

	for from, dests := range allowed {
		ok := map[Status]bool{}
		for _, to := range dests {
			ok[to] = true
		}
		for _, to := range allStatuses {
			err := ValidateTransition(from, to)
			if ok[to] {
				assert.NoError(t, err, "%s -> %s must be allowed", from, to)
			} else {
				assert.Error(t, err, "%s -> %s must be rejected", from, to)
			}
		}
	}
}

// A no-op update is legal exactly when the status is non-terminal.
func TestSelfTransitionIdempotence(t *testing.T) {
	for _, s := range allStatuses {
		err := ValidateTransition(s, s)
		if s.Terminal() {
			assert.Error(t, err, "%s -> %s", s, s)
		} else {
			assert.NoError(t, err, "%s -> %s", s, s)
		}
	}
}

func TestShippingCannotGoBackToPending(t *testing.T) {
	err := ValidateTransition(StatusShipping, StatusPending)
	require.Error(t, err)

	var ite *InvalidTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Contains(t, ite.Error(), "shipping")
}

func TestUnknownStatusesRejected(t *testing.T) {
	assert.Error(t, ValidateTransition(Status("archived"), StatusPaid))
	assert.Error(t, ValidateTransition(StatusPending, Status("toShip")))
}

func TestDisplayStatus(t *testing.T) {
	// COD orders awaiting fulfilment read "toShip"; the persisted value
	// stays "pending".
	assert.Equal(t, "toShip", DisplayStatus(StatusPending, PaymentCOD))

	assert.Equal(t, "pending", DisplayStatus(StatusPending, PaymentGCash))
	assert.Equal(t, "pending", DisplayStatus(StatusPending, PaymentCard))
	assert.Equal(t, "paid", DisplayStatus(StatusPaid, PaymentCOD))
	assert.Equal(t, "cancelled", DisplayStatus(StatusCancelled, PaymentCOD))
}

func TestSortRank(t *testing.T) {
	order := []Status{StatusPending, StatusShipping, StatusPaid, StatusCompleted, StatusRefunded, StatusCancelled}
	for i := 1; i < len(order); i++ {
		assert.Less(t, SortRank(order[i-1]), SortRank(order[i]))
	}
	// Unknown statuses sort last.
	assert.Greater(t, SortRank(Status("bogus")), SortRank(StatusCancelled))
}
