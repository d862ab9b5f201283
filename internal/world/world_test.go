package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryJoinLeaveTracksOnlineCount(t *testing.T) {
	r := NewRegistry()
	assert.EqualValues(t, 0, r.Online())

	id := r.NextEntityID()
	r.Join(&Player{EntityID: id, Name: "Steve"})
	assert.EqualValues(t, 1, r.Online())

	r.Leave(id)
	assert.EqualValues(t, 0, r.Online())

	// Leaving an id that was never joined is a no-op, not a negative count.
	r.Leave(id)
	assert.EqualValues(t, 0, r.Online())
}

func TestNextEntityIDIsMonotonicAndUnique(t *testing.T) {
	r := NewRegistry()
	seen := make(map[int32]bool)
	for i := 0; i < 50; i++ {
		id := r.NextEntityID()
		assert.False(t, seen[id])
		seen[id] = true
	}
}
