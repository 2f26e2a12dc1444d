// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package roomcache defines the shape a persistence layer outside this
// module serializes to disk for each room a peer participates in. The core
// never performs file I/O; it only exposes the struct and its canonical
// CBOR encoding so a storage layer has something concrete to read and
// write.
package roomcache

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"

	"github.com/riverchat/river-core/rcbor"
	"github.com/riverchat/river-core/rids"
	"github.com/riverchat/river-core/room"
)

// Entry is the per-room record keyed by the room owner's verifying key
// (Base58-encoded as the map/file key by the caller): the peer's own
// signing key for this room, the last-synced room state, and the
// ContractKey it was stored under.
type Entry struct {
	SigningKey  ed25519.PrivateKey
	State       room.State
	ContractKey rids.ContractKey
}

// OwnerKey returns the Base58 encoding of ownerVK, the map key a storage
// layer indexes cache entries by.
func OwnerKey(ownerVK ed25519.PublicKey) string {
	return base58.Encode(ownerVK)
}

// Stale reports whether e's stored ContractKey no longer matches the
// contract key recomputed from ownerVK and the current room contract code
// — the condition under which a storage layer must rewrite the entry.
func Stale(e Entry, ownerVK ed25519.PublicKey, roomContractCode []byte) (bool, error) {
	current, err := rids.DeriveContractKey(ownerVK, roomContractCode)
	if err != nil {
		return false, err
	}
	return current != e.ContractKey, nil
}

// MarshalCBOR encodes e as canonical CBOR.
func (e Entry) MarshalCBOR() ([]byte, error) {
	type alias Entry
	return rcbor.Marshal(alias(e))
}

// UnmarshalCBOR decodes canonical CBOR into e.
func (e *Entry) UnmarshalCBOR(data []byte) error {
	type alias Entry
	return rcbor.Unmarshal(data, (*alias)(e))
}
