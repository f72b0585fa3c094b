// SPDX-License-Identifier: MIT

package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChance_Bounds(t *testing.T) {
	g := New(1)
	for i := 0; i < 500; i++ {
		assert.False(t, g.Chance(0), "0 percent must never fire")
		assert.True(t, g.Chance(100), "100 percent must always fire")
	}
}

func TestChance_OutOfRangeFallsBackToHalf(t *testing.T) {
	g := New(42)
	hits := 0
	const rounds = 4000
	for i := 0; i < rounds; i++ {
		if g.Chance(250) {
			hits++
		}
	}
	// 50% with a generous margin.
	assert.InDelta(t, rounds/2, hits, rounds/10)
}

func TestWaitTime_WithinJitter(t *testing.T) {
	g := New(7)
	for i := 0; i < 1000; i++ {
		w := g.WaitTime(10)
		assert.GreaterOrEqual(t, w, 10-MaxJitter)
		assert.LessOrEqual(t, w, 10+MaxJitter)
	}
}

func TestWaitTime_NeverNegative(t *testing.T) {
	g := New(9)
	for i := 0; i < 1000; i++ {
		w := g.WaitTime(1)
		assert.GreaterOrEqual(t, w, 0)
		assert.LessOrEqual(t, w, 1+MaxJitter)
	}
}

func TestBody_Alphanumeric(t *testing.T) {
	g := New(3)
	for i := 0; i < 200; i++ {
		b := g.Body()
		assert.LessOrEqual(t, len(b), MaxBodyLength)
		for _, c := range b {
			ok := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
			assert.True(t, ok, "unexpected rune %q", c)
		}
	}
}

func TestNew_Deterministic(t *testing.T) {
	a, b := New(99), New(99)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Body(), b.Body())
	}
}
