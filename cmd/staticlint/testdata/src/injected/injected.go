package injected

import (
	crand "crypto/rand"
	"math/rand/v2"
	"sync"
)

// lockedRand mirrors the selector's default source: seeded once, then shared under a mutex.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func newLockedRand() *lockedRand {
	var seed [32]byte
	_, _ = crand.Read(seed[:])
	return &lockedRand{r: rand.New(rand.NewChaCha8(seed))}
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func pick(weights []int, u float64) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	x := u * float64(total)
	for i, w := range weights {
		x -= float64(w)
		if x <= 0 {
			return i
		}
	}
	return len(weights) - 1
}

func draw(weights []int) int {
	return pick(weights, newLockedRand().Float64())
}
