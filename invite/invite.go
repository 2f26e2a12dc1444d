// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package invite implements the room invitation code of spec §6: a
// self-contained, shareable token carrying everything an invitee needs to
// join a room without a prior round trip to the inviter — the room's owner
// key, the invitee's freshly generated signing key, and the
// inviter-signed AuthorizedMember proving the invitee's place in the invite
// chain.
package invite

import (
	"crypto/ed25519"

	"github.com/cockroachdb/errors"
	"github.com/mr-tron/base58"

	"github.com/riverchat/river-core/rcbor"
	"github.com/riverchat/river-core/rerr"
	"github.com/riverchat/river-core/room"
)

// Code is the decoded form of an invitation: who owns the room, the
// invitee's own signing key (so the invitee can act as the member it is
// about to become), and the AuthorizedMember the inviter already signed.
type Code struct {
	Room              ed25519.PublicKey
	InviteeSigningKey ed25519.PrivateKey
	Invitee           room.AuthorizedMember
}

// wireCode is the exact payload canonical-CBOR-encoded and Base58-wrapped,
// per §6: `{room: OwnerVK, invitee_signing_key, invitee: AuthorizedMember}`.
type wireCode struct {
	Room              ed25519.PublicKey
	InviteeSigningKey ed25519.PrivateKey
	Invitee           room.AuthorizedMember
}

// New builds an invitation Code. inviteeSK is freshly generated by the
// inviter on the invitee's behalf and handed over out of band inside the
// resulting string; the invitee has no need to generate their own key.
func New(roomOwner ed25519.PublicKey, inviteeSK ed25519.PrivateKey, invitee room.AuthorizedMember) Code {
	return Code{
		Room:              roomOwner,
		InviteeSigningKey: inviteeSK,
		Invitee:           invitee,
	}
}

// Encode canonically serializes c and Base58-encodes the result, producing
// the string a user pastes to accept an invitation.
func Encode(c Code) (string, error) {
	w := wireCode{
		Room:              c.Room,
		InviteeSigningKey: c.InviteeSigningKey,
		Invitee:           c.Invitee,
	}
	data, err := rcbor.Marshal(w)
	if err != nil {
		return "", errors.Wrap(err, "encode invitation")
	}
	return base58.Encode(data), nil
}

// Decode parses an invitation code and verifies the embedded
// AuthorizedMember's signature against inviterVK — the verifying key of
// the member named by the AuthorizedMember's InvitedBy field (the room
// owner if InvitedBy equals the owner's MemberId, resolved by the caller
// from already-synced room state). Decode never hands an unverified
// AuthorizedMember to a caller: an invitation whose proof does not check
// out is rejected outright rather than accepted into room.Members later.
func Decode(code string, inviterVK ed25519.PublicKey) (Code, error) {
	raw, err := base58.Decode(code)
	if err != nil {
		return Code{}, errors.Wrap(rerr.ErrDeserialization, "decode invitation base58")
	}

	var w wireCode
	if err := rcbor.Unmarshal(raw, &w); err != nil {
		return Code{}, errors.Wrap(rerr.ErrDeserialization, "decode invitation cbor")
	}

	if err := w.Invitee.VerifySignature(inviterVK); err != nil {
		return Code{}, err
	}

	return Code{
		Room:              w.Room,
		InviteeSigningKey: w.InviteeSigningKey,
		Invitee:           w.Invitee,
	}, nil
}
