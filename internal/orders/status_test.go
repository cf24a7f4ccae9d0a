package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	for _, status := range AllStatuses() {
		parsed, ok := ParseStatus(string(status))
		assert.True(t, ok)
		assert.Equal(t, status, parsed)
	}

	_, ok := ParseStatus("Shipped")
	assert.False(t, ok)
	_, ok = ParseStatus("")
	assert.False(t, ok)
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, StatusDikirim.Terminal())
	assert.True(t, StatusCancel.Terminal())

	for _, status := range []Status{StatusPengajuan, StatusPenawaran, StatusPreOrder, StatusProses} {
		assert.False(t, status.Terminal(), "%s should not be terminal", status)
	}
}

// The current policy is allow-all: the admin interface has always
// offered every status from every status.
func TestTransitionTableAllowsEveryPair(t *testing.T) {
	for _, from := range AllStatuses() {
		for _, to := range AllStatuses() {
			assert.True(t, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestTransitionFromUnknownStatusOnlyIntoVocabulary(t *testing.T) {
	assert.True(t, CanTransition(Status("Corrupted"), StatusPengajuan))
	assert.False(t, CanTransition(Status("Corrupted"), Status("AlsoCorrupted")))
}
