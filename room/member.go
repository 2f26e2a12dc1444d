// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package room

import (
	"crypto/ed25519"

	"github.com/riverchat/river-core/rcrypto"
	"github.com/riverchat/river-core/rids"
)

// Member is identified by its own verifying key, and names the member that
// invited it. The owner is never stored as a Member: for authorization
// purposes it is treated as if present with InvitedBy == itself.
type Member struct {
	InvitedBy rids.MemberId
	MemberVK  ed25519.PublicKey
}

// Id returns the MemberId derived from MemberVK.
func (m Member) Id() rids.MemberId {
	return rids.MemberIdOf(m.MemberVK)
}

// AuthorizedMember pairs a Member with the inviter's signature over the
// canonical CBOR encoding of Member.
type AuthorizedMember struct {
	Member    Member
	Signature []byte
}

// VerifySignature checks Signature against inviterVK, the verifying key of
// the member named by Member.InvitedBy (or the owner's key, resolved by the
// caller).
func (am AuthorizedMember) VerifySignature(inviterVK ed25519.PublicKey) error {
	return rcrypto.VerifyCanonical(inviterVK, am.Member, am.Signature)
}

// NewAuthorizedMember signs member with inviterSK, the inviter's secret key.
func NewAuthorizedMember(member Member, inviterSK ed25519.PrivateKey) (AuthorizedMember, error) {
	sig, err := rcrypto.SignCanonical(inviterSK, member)
	if err != nil {
		return AuthorizedMember{}, err
	}
	return AuthorizedMember{Member: member, Signature: sig}, nil
}
