// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package syncengine

import (
	"math/rand"
	"time"
)

// Backoff computes reconnect delays matching the original synchronizer's
// reconnect loop: exponential growth from an initial interval up to a
// ceiling, with jitter (each delay is scaled by a random factor in
// [0.5, 1)) so peers reconnecting after a shared outage don't all retry in
// lockstep.
type Backoff struct {
	Initial time.Duration
	Max     time.Duration
	Factor  float64

	attempt int
}

// DefaultBackoff matches the original's {1s initial, 30s max, x2 factor}
// reconnect schedule.
func DefaultBackoff() Backoff {
	return Backoff{Initial: time.Second, Max: 30 * time.Second, Factor: 2}
}

// Next returns the delay to wait before the next reconnect attempt and
// advances the internal attempt counter.
func (b *Backoff) Next() time.Duration {
	d := float64(b.Initial)
	for i := 0; i < b.attempt; i++ {
		d *= b.Factor
	}
	if ceiling := float64(b.Max); d > ceiling {
		d = ceiling
	}
	b.attempt++
	return time.Duration(d * (0.5 + rand.Float64()*0.5)) //nolint:gosec
}

// Reset clears the attempt counter after a successful connection.
func (b *Backoff) Reset() {
	b.attempt = 0
}
