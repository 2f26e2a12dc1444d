// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package room

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemberInfoApplyDeltaAcceptsOwnerAndMemberSignedRecords(t *testing.T) {
	require := require.New(t)
	s, params, owner := newRoom(t)

	a, amA := invite(t, owner, params.OwnerId())
	require.NoError(s.Members.ApplyDelta(s, params, &MembersDelta{Added: []AuthorizedMember{amA}}))

	ownerInfo, err := NewAuthorizedMemberInfo(MemberInfoRecord{MemberId: params.OwnerId(), Version: 1, PreferredNickname: "owner"}, owner.sk)
	require.NoError(err)
	aInfo, err := NewAuthorizedMemberInfo(MemberInfoRecord{MemberId: a.memberId(), Version: 1, PreferredNickname: "a"}, a.sk)
	require.NoError(err)

	require.NoError(s.MemberInfo.ApplyDelta(s, params, &MemberInfoDelta{Info: []AuthorizedMemberInfo{ownerInfo, aInfo}}))
	require.Len(s.MemberInfo.Info, 2)
	require.NoError(s.MemberInfo.Verify(s, params))
}

func TestMemberInfoApplyDeltaRejectsWrongSigner(t *testing.T) {
	require := require.New(t)
	s, params, owner := newRoom(t)

	a, amA := invite(t, owner, params.OwnerId())
	require.NoError(s.Members.ApplyDelta(s, params, &MembersDelta{Added: []AuthorizedMember{amA}}))

	impostor := newKeypair(t)
	forged, err := NewAuthorizedMemberInfo(MemberInfoRecord{MemberId: a.memberId(), Version: 1, PreferredNickname: "not-a"}, impostor.sk)
	require.NoError(err)

	err = s.MemberInfo.ApplyDelta(s, params, &MemberInfoDelta{Info: []AuthorizedMemberInfo{forged}})
	require.Error(err)
	require.Empty(s.MemberInfo.Info)
}

func TestMemberInfoVerifyRejectsDuplicateMemberId(t *testing.T) {
	require := require.New(t)
	s, params, owner := newRoom(t)

	rec1, err := NewAuthorizedMemberInfo(MemberInfoRecord{MemberId: params.OwnerId(), Version: 1, PreferredNickname: "first"}, owner.sk)
	require.NoError(err)
	rec2, err := NewAuthorizedMemberInfo(MemberInfoRecord{MemberId: params.OwnerId(), Version: 2, PreferredNickname: "second"}, owner.sk)
	require.NoError(err)

	s.MemberInfo.Info = []AuthorizedMemberInfo{rec1, rec2}
	require.Error(s.MemberInfo.Verify(s, params))
}

func TestMemberInfoApplyDeltaKeepsNewerVersion(t *testing.T) {
	require := require.New(t)
	s, params, owner := newRoom(t)

	older, err := NewAuthorizedMemberInfo(MemberInfoRecord{MemberId: params.OwnerId(), Version: 1, PreferredNickname: "old-name"}, owner.sk)
	require.NoError(err)
	require.NoError(s.MemberInfo.ApplyDelta(s, params, &MemberInfoDelta{Info: []AuthorizedMemberInfo{older}}))

	stale, err := NewAuthorizedMemberInfo(MemberInfoRecord{MemberId: params.OwnerId(), Version: 1, PreferredNickname: "ignored"}, owner.sk)
	require.NoError(err)
	require.NoError(s.MemberInfo.ApplyDelta(s, params, &MemberInfoDelta{Info: []AuthorizedMemberInfo{stale}}))
	require.Equal("old-name", s.MemberInfo.Info[0].Info.PreferredNickname)

	newer, err := NewAuthorizedMemberInfo(MemberInfoRecord{MemberId: params.OwnerId(), Version: 2, PreferredNickname: "new-name"}, owner.sk)
	require.NoError(err)
	require.NoError(s.MemberInfo.ApplyDelta(s, params, &MemberInfoDelta{Info: []AuthorizedMemberInfo{newer}}))
	require.Len(s.MemberInfo.Info, 1)
	require.Equal("new-name", s.MemberInfo.Info[0].Info.PreferredNickname)
}

func TestMemberInfoPruneAbsentMembersKeepsOwner(t *testing.T) {
	require := require.New(t)
	s, params, owner := newRoom(t)

	a, amA := invite(t, owner, params.OwnerId())
	require.NoError(s.Members.ApplyDelta(s, params, &MembersDelta{Added: []AuthorizedMember{amA}}))

	ownerInfo, err := NewAuthorizedMemberInfo(MemberInfoRecord{MemberId: params.OwnerId(), Version: 1, PreferredNickname: "owner"}, owner.sk)
	require.NoError(err)
	aInfo, err := NewAuthorizedMemberInfo(MemberInfoRecord{MemberId: a.memberId(), Version: 1, PreferredNickname: "a"}, a.sk)
	require.NoError(err)
	require.NoError(s.MemberInfo.ApplyDelta(s, params, &MemberInfoDelta{Info: []AuthorizedMemberInfo{ownerInfo, aInfo}}))
	require.Len(s.MemberInfo.Info, 2)

	s.Members.Members = nil
	require.NoError(s.MemberInfo.ApplyDelta(s, params, nil))

	require.Len(s.MemberInfo.Info, 1)
	require.Equal(params.OwnerId(), s.MemberInfo.Info[0].Info.MemberId)
}
