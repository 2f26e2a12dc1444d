// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package rids defines the identifier types every room-state component
// keys its records by: MemberId, MessageId, BanId, SecretVersion, and the
// ContractKey derivation used to address a room on the host contract
// network. Identifiers are small, comparable values so they can be used
// directly as map keys and sorted without an index structure.
package rids

import (
	"crypto/ed25519"
	"crypto/sha256"

	"github.com/cespare/xxhash/v2"
	"github.com/mr-tron/base58"

	"github.com/riverchat/river-core/rcbor"
)

// MemberId is the 64-bit fast hash of a member's verifying key bytes.
type MemberId uint64

// MessageId is the 64-bit fast hash of an authorized message's signature
// bytes.
type MessageId uint64

// BanId is the 64-bit fast hash of an authorized ban's signature bytes.
type BanId uint64

// SecretVersion numbers successive room-secret rotations. Zero means no
// secret has ever been issued.
type SecretVersion uint32

// ContractKey is the host contract network's content address for a room,
// derived from the owner's verifying key and the room contract code.
type ContractKey string

// FastHash returns the 64-bit fast hash of data. It is not
// collision-resistant on its own; every caller gates lookups by full
// signature or key verification, so the small hash domain only affects
// index performance, never authorization.
func FastHash(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// MemberIdOf derives a MemberId from a verifying key's raw bytes.
func MemberIdOf(vk ed25519.PublicKey) MemberId {
	return MemberId(FastHash(vk))
}

// MessageIdOf derives a MessageId from an authorized message's raw
// signature bytes.
func MessageIdOf(signature []byte) MessageId {
	return MessageId(FastHash(signature))
}

// BanIdOf derives a BanId from an authorized ban's raw signature bytes.
func BanIdOf(signature []byte) BanId {
	return BanId(FastHash(signature))
}

// DeriveContractKey computes the content address of a room from its
// owner's verifying key and the bytes of the room contract code. The real
// instance-id algorithm is host-supplied (§6 of the specification treats
// the host contract runtime as an external collaborator); this
// implementation stands in for it with a concrete, deterministic
// derivation so the core and its tests have a real ContractKey to work
// with end to end.
func DeriveContractKey(ownerVK ed25519.PublicKey, roomContractCode []byte) (ContractKey, error) {
	ownerCanonical, err := rcbor.Marshal(ownerVK)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write(ownerCanonical)
	h.Write(roomContractCode)
	return ContractKey(base58.Encode(h.Sum(nil))), nil
}
