// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package syncengine

import "time"

// Config tunes an Engine. There is no config-file parser in this module —
// CLI wiring is out of scope per spec §6 — so callers construct Config
// directly, typically from DefaultConfig with a few fields overridden.
type Config struct {
	// PutTimeout bounds a single Host.Put call. Spec §5: 10s.
	PutTimeout time.Duration
	// GetTimeout bounds a single Host.Get call. Spec §5: 10s.
	GetTimeout time.Duration
	// SubscribeTimeout bounds a single Host.Subscribe call. Spec §5: 5s.
	SubscribeTimeout time.Duration
	// UpdateTimeout bounds a single Host.Update call.
	UpdateTimeout time.Duration
	// PutSettleDelay is how long the engine waits after a PutResponse
	// before pushing the full-state UPDATE, giving the host runtime time
	// to register the new contract (§4.9).
	PutSettleDelay time.Duration
	// Backoff is the reconnect schedule used after TransportLost.
	Backoff Backoff
}

// DefaultConfig returns the timeouts named explicitly in spec §5.
func DefaultConfig() Config {
	return Config{
		PutTimeout:       10 * time.Second,
		GetTimeout:       10 * time.Second,
		SubscribeTimeout: 5 * time.Second,
		UpdateTimeout:    10 * time.Second,
		PutSettleDelay:   500 * time.Millisecond,
		Backoff:          DefaultBackoff(),
	}
}
