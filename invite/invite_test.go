// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package invite

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riverchat/river-core/rcrypto"
	"github.com/riverchat/river-core/rids"
	"github.com/riverchat/river-core/room"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	require := require.New(t)

	ownerVK, ownerSK, err := rcrypto.GenerateKey()
	require.NoError(err)
	inviteeVK, inviteeSK, err := rcrypto.GenerateKey()
	require.NoError(err)

	ownerId := rids.MemberIdOf(ownerVK)
	m := room.Member{InvitedBy: ownerId, MemberVK: inviteeVK}
	am, err := room.NewAuthorizedMember(m, ownerSK)
	require.NoError(err)

	code := New(ownerVK, inviteeSK, am)
	encoded, err := Encode(code)
	require.NoError(err)
	require.NotEmpty(encoded)

	decoded, err := Decode(encoded, ownerVK)
	require.NoError(err)
	require.Equal(ownerVK, decoded.Room)
	require.Equal(inviteeSK, decoded.InviteeSigningKey)
	require.Equal(am.Signature, decoded.Invitee.Signature)
}

func TestDecodeRejectsTamperedSignature(t *testing.T) {
	require := require.New(t)

	ownerVK, ownerSK, err := rcrypto.GenerateKey()
	require.NoError(err)
	inviteeVK, inviteeSK, err := rcrypto.GenerateKey()
	require.NoError(err)

	ownerId := rids.MemberIdOf(ownerVK)
	m := room.Member{InvitedBy: ownerId, MemberVK: inviteeVK}
	am, err := room.NewAuthorizedMember(m, ownerSK)
	require.NoError(err)
	am.Signature[0] ^= 0xFF

	code := New(ownerVK, inviteeSK, am)
	encoded, err := Encode(code)
	require.NoError(err)

	_, err = Decode(encoded, ownerVK)
	require.Error(err)
}

func TestDecodeRejectsWrongInviterKey(t *testing.T) {
	require := require.New(t)

	ownerVK, ownerSK, err := rcrypto.GenerateKey()
	require.NoError(err)
	inviteeVK, inviteeSK, err := rcrypto.GenerateKey()
	require.NoError(err)
	otherVK, _, err := rcrypto.GenerateKey()
	require.NoError(err)

	ownerId := rids.MemberIdOf(ownerVK)
	m := room.Member{InvitedBy: ownerId, MemberVK: inviteeVK}
	am, err := room.NewAuthorizedMember(m, ownerSK)
	require.NoError(err)

	code := New(ownerVK, inviteeSK, am)
	encoded, err := Encode(code)
	require.NoError(err)

	_, err = Decode(encoded, otherVK)
	require.Error(err)
}

func TestDecodeRejectsGarbageInput(t *testing.T) {
	require := require.New(t)
	_, err := Decode("not-valid-base58-!!!", nil)
	require.Error(err)
}
