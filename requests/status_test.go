package requests

import (
	"testing"

	"labhive/models"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := [][2]string{
		{models.StatusPending, models.StatusAccepted},
		{models.StatusPending, models.StatusRejected},
		{models.StatusAccepted, models.StatusTestStarted},
		{models.StatusTestStarted, models.StatusTestCompleted},
	}
	for _, tr := range allowed {
		assert.True(t, CanTransition(tr[0], tr[1]), "%s -> %s should be allowed", tr[0], tr[1])
	}

	statuses := []string{
		models.StatusPending,
		models.StatusAccepted,
		models.StatusTestStarted,
		models.StatusRejected,
		models.StatusTestCompleted,
	}

	// terminal states have no outgoing edges at all
	for _, to := range statuses {
		assert.False(t, CanTransition(models.StatusRejected, to), "Rejected -> %s", to)
		assert.False(t, CanTransition(models.StatusTestCompleted, to), "Test completed -> %s", to)
	}

	// spot-check a few forbidden edges
	assert.False(t, CanTransition(models.StatusPending, models.StatusTestStarted))
	assert.False(t, CanTransition(models.StatusAccepted, models.StatusTestCompleted))
	assert.False(t, CanTransition(models.StatusAccepted, models.StatusRejected))
	assert.False(t, CanTransition(models.StatusTestStarted, models.StatusAccepted))
}

func TestTransitionFilterPinsPriorStatus(t *testing.T) {
	// The update must only match the document in the state the transition
	// was validated against. Two racing writers both reading Pending can
	// then commit at most one edge: the loser's filter no longer matches
	// and surfaces as a conflict instead of overwriting a terminal status.
	filter := transitionFilter("req-1", models.StatusPending)
	assert.Equal(t, "req-1", filter["id"])
	assert.Equal(t, models.StatusPending, filter["status"])
	assert.Len(t, filter, 2)

	// a writer that validated against Rejected can never exist, so the
	// filter keeps terminal records untouchable
	assert.NotEqual(t, transitionFilter("req-1", models.StatusRejected), filter)
}

func TestStatusLiteralsPreserved(t *testing.T) {
	// stored-data contract: these exact strings live in the database
	assert.Equal(t, "Pending", models.StatusPending)
	assert.Equal(t, "Accepted", models.StatusAccepted)
	assert.Equal(t, "Test Started", models.StatusTestStarted)
	assert.Equal(t, "Rejected", models.StatusRejected)
	assert.Equal(t, "Test completed", models.StatusTestCompleted)
}
