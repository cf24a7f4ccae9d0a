package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerPrimesOnFirstObservation(t *testing.T) {
	tracker := NewTracker()

	// The first poll only establishes the baseline.
	assert.Zero(t, tracker.Observe(5))
	assert.Zero(t, tracker.Pending())
}

func TestTrackerReportsGrowthDelta(t *testing.T) {
	tracker := NewTracker()
	tracker.Observe(5)

	assert.Equal(t, 3, tracker.Observe(8))
	assert.Equal(t, 3, tracker.Pending())

	// An unchanged count keeps the badge until a manual refresh.
	assert.Equal(t, 3, tracker.Observe(8))
}

func TestTrackerIgnoresShrinkage(t *testing.T) {
	tracker := NewTracker()
	tracker.Observe(5)

	assert.Zero(t, tracker.Observe(2))

	// Deleting three and creating three looks like growth from the new
	// baseline; the heuristic cannot tell churn from arrivals.
	assert.Equal(t, 3, tracker.Observe(5))
}

func TestTrackerResetClearsBadgeKeepsBaseline(t *testing.T) {
	tracker := NewTracker()
	tracker.Observe(5)
	tracker.Observe(9)

	tracker.Reset()
	assert.Zero(t, tracker.Pending())

	// Growth after the reset counts from the last observation.
	assert.Equal(t, 1, tracker.Observe(10))
}
