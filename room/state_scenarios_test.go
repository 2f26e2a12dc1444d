// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package room

import (
	"crypto/ed25519"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riverchat/river-core/rids"
)

// The six scenarios below are the concrete worked examples of the
// composable state protocol: owner-invite-message-edit, delete-preempts-
// edit, ban cascade, secret rotation on ban, delta-reorder convergence, and
// stale configuration rejection.

func TestScenarioOwnerCreatesInvitesMessageEdit(t *testing.T) {
	require := require.New(t)
	s, params, owner := newRoom(t)

	a, amA := invite(t, owner, params.OwnerId())
	require.NoError(s.ApplyDelta(params, &Delta{Members: &MembersDelta{Added: []AuthorizedMember{amA}}}))
	_, amB := invite(t, a, a.memberId())
	require.NoError(s.ApplyDelta(params, &Delta{Members: &MembersDelta{Added: []AuthorizedMember{amB}}}))

	now := time.Now()
	hi := postMessage(t, params.OwnerId(), a, NewPublicContent("hi"), now)
	require.NoError(s.ApplyDelta(params, &Delta{Messages: &MessagesDelta{Added: []AuthorizedMessage{hi}}}))

	edit := postMessage(t, params.OwnerId(), a, NewEditContent(hi.Id(), NewPublicContent("hello")), now.Add(time.Second))
	require.NoError(s.ApplyDelta(params, &Delta{Messages: &MessagesDelta{Added: []AuthorizedMessage{edit}}}))

	require.Len(s.RecentMessages.DisplayMessages(), 1)
	require.True(s.RecentMessages.IsEdited(hi.Id()))
	content := s.RecentMessages.EffectiveContent(hi)
	text, _ := content.AsPublicString()
	require.Equal("hello", text)
}

func TestScenarioDeletePreemptsEdit(t *testing.T) {
	require := require.New(t)
	s, params, owner := newRoom(t)

	now := time.Now()
	foo := postMessage(t, params.OwnerId(), owner, NewPublicContent("foo"), now)
	require.NoError(s.ApplyDelta(params, &Delta{Messages: &MessagesDelta{Added: []AuthorizedMessage{foo}}}))

	del := postMessage(t, params.OwnerId(), owner, NewDeleteContent(foo.Id()), now.Add(time.Second))
	require.NoError(s.ApplyDelta(params, &Delta{Messages: &MessagesDelta{Added: []AuthorizedMessage{del}}}))

	edit := postMessage(t, params.OwnerId(), owner, NewEditContent(foo.Id(), NewPublicContent("bar")), now.Add(2*time.Second))
	require.NoError(s.ApplyDelta(params, &Delta{Messages: &MessagesDelta{Added: []AuthorizedMessage{edit}}}))

	require.True(s.RecentMessages.IsDeleted(foo.Id()))
	require.False(s.RecentMessages.IsEdited(foo.Id()))
	require.Empty(s.RecentMessages.DisplayMessages())
}

func TestScenarioBanCascadeThroughChain(t *testing.T) {
	require := require.New(t)
	s, params, owner := newRoom(t)

	a, amA := invite(t, owner, params.OwnerId())
	require.NoError(s.ApplyDelta(params, &Delta{Members: &MembersDelta{Added: []AuthorizedMember{amA}}}))
	b, amB := invite(t, a, a.memberId())
	require.NoError(s.ApplyDelta(params, &Delta{Members: &MembersDelta{Added: []AuthorizedMember{amB}}}))
	_, amC := invite(t, b, b.memberId())
	require.NoError(s.ApplyDelta(params, &Delta{Members: &MembersDelta{Added: []AuthorizedMember{amC}}}))
	require.Len(s.Members.Members, 3)

	ban := UserBan{OwnerMemberId: params.OwnerId(), BannedAt: time.Now(), BannedUser: a.memberId()}
	ab, err := NewAuthorizedUserBan(ban, params.OwnerId(), owner.sk)
	require.NoError(err)
	require.NoError(s.ApplyDelta(params, &Delta{Bans: &BansDelta{Added: []AuthorizedUserBan{ab}}}))

	require.Empty(s.Members.Members)
}

func TestScenarioSecretRotationExcludesBannedMember(t *testing.T) {
	require := require.New(t)
	s, params, owner := newRoom(t)

	a, amA := invite(t, owner, params.OwnerId())
	require.NoError(s.ApplyDelta(params, &Delta{Members: &MembersDelta{Added: []AuthorizedMember{amA}}}))
	b, amB := invite(t, owner, params.OwnerId())
	require.NoError(s.ApplyDelta(params, &Delta{Members: &MembersDelta{Added: []AuthorizedMember{amB}}}))

	v0Recipients := map[rids.MemberId]ed25519.PublicKey{
		params.OwnerId(): owner.vk,
		a.memberId():     a.vk,
		b.memberId():     b.vk,
	}
	v0Delta, _, err := RotateSecret(s.Secrets.CurrentVersion, v0Recipients, nil, owner.sk, time.Now())
	require.NoError(err)
	require.NoError(s.ApplyDelta(params, &Delta{Secrets: v0Delta}))
	require.EqualValues(1, s.Secrets.CurrentVersion)

	banId := b.memberId()
	ban := UserBan{OwnerMemberId: params.OwnerId(), BannedAt: time.Now(), BannedUser: banId}
	ab, err := NewAuthorizedUserBan(ban, params.OwnerId(), owner.sk)
	require.NoError(err)
	require.NoError(s.ApplyDelta(params, &Delta{Bans: &BansDelta{Added: []AuthorizedUserBan{ab}}}))
	require.Len(s.Members.Members, 1)

	// The ban cascade prunes b's v0 envelope before rotation; this is the
	// baseline the post-rotation v0 count must still match.
	v0Envelopes := 0
	for _, e := range s.Secrets.Envelopes {
		if e.Envelope.SecretVersion == 1 {
			v0Envelopes++
		}
	}
	require.Equal(2, v0Envelopes)

	v1Recipients := map[rids.MemberId]ed25519.PublicKey{
		params.OwnerId(): owner.vk,
		a.memberId():     a.vk,
	}
	v1Delta, _, err := RotateSecret(s.Secrets.CurrentVersion, v1Recipients, nil, owner.sk, time.Now())
	require.NoError(err)
	require.NoError(s.ApplyDelta(params, &Delta{Secrets: v1Delta}))

	require.EqualValues(2, s.Secrets.CurrentVersion)
	v1Envelopes := 0
	for _, e := range s.Secrets.Envelopes {
		if e.Envelope.SecretVersion == 2 {
			v1Envelopes++
		}
	}
	require.Equal(2, v1Envelopes)

	remainingV0 := 0
	for _, e := range s.Secrets.Envelopes {
		if e.Envelope.SecretVersion == 1 {
			remainingV0++
		}
	}
	require.Equal(v0Envelopes, remainingV0)

	require.True(s.Secrets.HasCompleteDistribution(&s.Members))
}

func TestScenarioConvergenceAcrossDeltaReorder(t *testing.T) {
	require := require.New(t)
	s1, params, owner := newRoom(t)
	s2 := &State{Configuration: s1.Configuration, RecentMessages: Messages{Actions: newActionsState()}}

	a, amA := invite(t, owner, params.OwnerId())
	memberDelta := &Delta{Members: &MembersDelta{Added: []AuthorizedMember{amA}}}

	now := time.Now()
	m1 := postMessage(t, params.OwnerId(), owner, NewPublicContent("one"), now)
	m2 := postMessage(t, params.OwnerId(), owner, NewPublicContent("two"), now.Add(time.Second))
	msg1Delta := &Delta{Messages: &MessagesDelta{Added: []AuthorizedMessage{m1}}}
	msg2Delta := &Delta{Messages: &MessagesDelta{Added: []AuthorizedMessage{m2}}}

	require.NoError(s1.ApplyDelta(params, memberDelta))
	require.NoError(s1.ApplyDelta(params, msg1Delta))
	require.NoError(s1.ApplyDelta(params, msg2Delta))

	require.NoError(s2.ApplyDelta(params, msg2Delta))
	require.NoError(s2.ApplyDelta(params, memberDelta))
	require.NoError(s2.ApplyDelta(params, msg1Delta))

	b1, err := s1.MarshalCBOR()
	require.NoError(err)
	b2, err := s2.MarshalCBOR()
	require.NoError(err)
	require.Equal(b1, b2)
}

func TestScenarioStaleConfigurationRejected(t *testing.T) {
	require := require.New(t)
	s, params, owner := newRoom(t)

	cfg := s.Configuration.Configuration
	cfg.ConfigurationVersion = 3
	signed, err := NewAuthorizedConfiguration(cfg, owner.sk)
	require.NoError(err)
	require.NoError(s.ApplyDelta(params, &Delta{Configuration: &signed}))
	require.EqualValues(3, s.Configuration.Configuration.ConfigurationVersion)

	stale := cfg
	stale.ConfigurationVersion = 2
	staleSigned, err := NewAuthorizedConfiguration(stale, owner.sk)
	require.NoError(err)
	err = s.ApplyDelta(params, &Delta{Configuration: &staleSigned})
	require.Error(err)
	require.EqualValues(3, s.Configuration.Configuration.ConfigurationVersion)
}
