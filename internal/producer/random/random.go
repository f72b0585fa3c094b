// SPDX-License-Identifier: MIT

// Package random holds the randomness used to simulate message delivery.
package random

import (
	"math/rand/v2"
	"sync"
	"time"
)

const (
	alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	// MaxBodyLength is the longest generated message body.
	MaxBodyLength = 100
	// MaxJitter is the largest deviation (seconds) from the average send delay.
	MaxJitter = 5
	// fallbackPercent replaces out-of-range failure rates.
	fallbackPercent = 50
)

// Rand is a goroutine-safe random source for the simulation.
type Rand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// New returns a deterministic source for the given seed.
func New(seed uint64) *Rand {
	return &Rand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewTimeSeeded returns a source seeded from the wall clock.
func NewTimeSeeded() *Rand {
	return New(uint64(time.Now().UnixNano()))
}

func (g *Rand) intN(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.r.IntN(n)
}

// Chance reports true percent% of the time. Percentages outside 0..100
// fall back to 50.
func (g *Rand) Chance(percent int) bool {
	if percent < 0 || percent > 100 {
		percent = fallbackPercent
	}
	return g.intN(100) < percent
}

// WaitTime returns a delay in seconds between avg-5 and avg+5. A negative
// result falls back to avg.
func (g *Rand) WaitTime(avg int) int {
	change := g.intN(MaxJitter + 1)
	sign := g.intN(3) - 1
	wait := avg + sign*change
	if wait < 0 {
		wait = avg
	}
	if wait < 0 {
		wait = 0
	}
	return wait
}

// Body returns an alphanumeric string of 0 to MaxBodyLength characters.
func (g *Rand) Body() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := g.r.IntN(MaxBodyLength + 1)
	b := make([]byte, n)
	for i := range b {
		b[i] = alphanumeric[g.r.IntN(len(alphanumeric))]
	}
	return string(b)
}
