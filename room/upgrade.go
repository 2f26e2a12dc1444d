// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package room

// Upgrade is a reserved, currently-inert component of State, mirroring the
// source's Default::default() placeholder for a future contract-code
// upgrade signal. It carries no invariants and never produces a delta; it
// is not part of the compound apply order in §4.8 because nothing
// populates it yet.
type Upgrade struct{}

// Verify is trivially satisfied.
func (Upgrade) Verify(parent *State, params Parameters) error { return nil }

// Summarize returns nothing; Upgrade has no summary worth exchanging yet.
func (Upgrade) Summarize(parent *State, params Parameters) struct{} { return struct{}{} }

// Delta never produces anything to apply.
func (Upgrade) Delta(parent *State, params Parameters, remote struct{}) *struct{} { return nil }

// ApplyDelta is a no-op.
func (Upgrade) ApplyDelta(parent *State, params Parameters, delta *struct{}) error { return nil }
