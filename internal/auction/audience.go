package auction

import "sync"

// Audience capacity statuses reported by Gate.Capacity.
const (
	CapacityAvailable = "available"
	CapacityFull      = "full"
)

// Limit is the audience capacity report.
type Limit struct {
	Status       string `json:"status"`
	MaxCapacity  int    `json:"maxCapacity"`
	CurrentCount int    `json:"currentCount"`
	Message      string `json:"message"`
}

// Gate is the bounded audience admission counter. It tracks a count
// only; a spectator that joins twice occupies two seats.
type Gate struct {
	mu      sync.Mutex
	max     int
	current int
}

// NewGate returns a gate admitting at most max spectators.
func NewGate(max int) *Gate {
	return &Gate{max: max}
}

// Join takes one audience seat. Returns false, without changing the
// count, when the gate is at capacity.
func (g *Gate) Join() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.current >= g.max {
		return false
	}

	g.current++

	return true
}

// Leave releases one audience seat. Best-effort: leaving an empty gate
// is a no-op reported as false, never an error.
func (g *Gate) Leave() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.current == 0 {
		return false
	}

	g.current--

	return true
}

// Capacity reports the current admission state.
func (g *Gate) Capacity() Limit {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.current >= g.max {
		return Limit{
			Status:       CapacityFull,
			MaxCapacity:  g.max,
			CurrentCount: g.current,
			Message:      "audience capacity reached",
		}
	}

	return Limit{
		Status:       CapacityAvailable,
		MaxCapacity:  g.max,
		CurrentCount: g.current,
		Message:      "audience seats available",
	}
}
