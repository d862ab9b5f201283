// Package world holds the small fixed "world" every session joins: a
// single dimension and spawn point, and the registry of sessions
// currently in Play keyed by entity id (spec §4.8, grounded in the
// original chrrs/limbo JoinGame wiring: a single world name, no world
// generation).
package world

import (
	"sync"
	"sync/atomic"

	"limbo/internal/proto"
)

// Name is the single world every connection is told it has joined.
const Name = "minecraft:overworld"

// SpawnPosition is the fixed point every session is teleported to on
// joining Play.
var SpawnPosition = proto.Position{X: 0, Y: 64, Z: 0}

// Player is the minimal per-session record the registry tracks.
type Player struct {
	EntityID int32
	Name     string
}

// Registry tracks sessions currently in Play, keyed by entity id, and
// backs the atomic online-player counter used by Status responses.
type Registry struct {
	mu      sync.Mutex
	players map[int32]*Player

	online atomic.Int64
	nextID atomic.Int32
}

// NewRegistry returns an empty registry. Entity ids are assigned
// starting from 1, matching the teacher's reservation of 0 for "no
// entity"/unset.
func NewRegistry() *Registry {
	r := &Registry{players: make(map[int32]*Player)}
	r.nextID.Store(1)
	return r
}

// NextEntityID allocates a fresh entity id for a connection about to
// enter Play.
func (r *Registry) NextEntityID() int32 {
	return r.nextID.Add(1) - 1
}

// Join adds p to the registry and increments the online counter.
func (r *Registry) Join(p *Player) {
	r.mu.Lock()
	r.players[p.EntityID] = p
	r.mu.Unlock()
	r.online.Add(1)
}

// Leave removes the player with the given entity id, if present, and
// decrements the online counter.
func (r *Registry) Leave(entityID int32) {
	r.mu.Lock()
	_, ok := r.players[entityID]
	if ok {
		delete(r.players, entityID)
	}
	r.mu.Unlock()
	if ok {
		r.online.Add(-1)
	}
}

// Online returns the current number of players in Play.
func (r *Registry) Online() int64 {
	return r.online.Load()
}
