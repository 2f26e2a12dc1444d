// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package room implements the composable room-state lattice: configuration,
// members, bans, member info, secrets, and messages, each exposing
// Verify/Summarize/Delta/ApplyDelta over the parent State, plus the
// composition that reconciles them in the fixed order the determinism
// contract requires.
package room

import (
	"crypto/ed25519"

	"github.com/riverchat/river-core/rids"
)

// Parameters are the immutable, per-room values every component's
// Verify/Summarize/Delta/ApplyDelta receives alongside the parent State.
// They are fixed at room creation and never carried in a delta.
type Parameters struct {
	// Owner is the room owner's Ed25519 verifying key. The network
	// contract address is derived from this key; there is no re-issuance.
	Owner ed25519.PublicKey
}

// OwnerId returns the MemberId the owner is treated as for authorization
// purposes, even though the owner is never stored in the members set.
func (p Parameters) OwnerId() rids.MemberId {
	return rids.MemberIdOf(p.Owner)
}
