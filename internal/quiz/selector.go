package quiz

import (
	"math/rand"
	"sync"
	"time"
)

// Rand is the randomness a selector needs. *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// Step moves current by delta and clamps into [0, n-1]. With n == 0 it
// returns 0.
func Step(current, delta, n int) int {
	return Clamp(current+delta, n)
}

// Clamp bounds i into [0, n-1], or 0 for an empty list.
func Clamp(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}

// Draw picks uniformly from {0..n-1} excluding last when n > 1. A last outside
// the range is ignored. With n <= 1 the only index, 0, is returned.
func Draw(r Rand, n, last int) int {
	if n <= 1 {
		return 0
	}
	if last < 0 || last >= n {
		return r.Intn(n)
	}
	k := r.Intn(n - 1)
	if k >= last {
		k++
	}
	return k
}

// lockedRand serializes access to a math/rand source shared across sessions.
type lockedRand struct {
	mu  sync.Mutex
	src *rand.Rand
}

// NewRand returns a goroutine-safe random source seeded from the clock.
func NewRand() Rand {
	return &lockedRand{src: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (r *lockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.src.Intn(n)
}
