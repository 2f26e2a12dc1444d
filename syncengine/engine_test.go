// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package syncengine

import (
	"context"
	"crypto/ed25519"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riverchat/river-core/rcrypto"
	"github.com/riverchat/river-core/rids"
	"github.com/riverchat/river-core/rlog"
	"github.com/riverchat/river-core/room"
	"github.com/riverchat/river-core/syncengine/syncenginemock"
)

func testRoom(t *testing.T) (*room.State, room.Parameters, ed25519.PrivateKey) {
	t.Helper()
	require := require.New(t)
	ownerVK, ownerSK, err := rcrypto.GenerateKey()
	require.NoError(err)
	params := room.Parameters{Owner: ownerVK}
	cfg := room.RoomConfiguration{
		OwnerMemberId:      params.OwnerId(),
		MaxRecentMessages:  10,
		MaxUserBans:        10,
		MaxMessageSize:     1024,
		MaxNicknameSize:    32,
		MaxMembers:         10,
		MaxRoomName:        64,
		MaxRoomDescription: 128,
		PrivacyMode:        room.PrivacyPublic,
	}
	s, err := room.NewState(cfg, ownerSK)
	require.NoError(err)
	return s, params, ownerSK
}

func TestEngineCreateRoomPutsAndTracksEntry(t *testing.T) {
	require := require.New(t)
	s, params, _ := testRoom(t)

	host := &syncenginemock.Host{
		T: t,
		PutF: func(ctx context.Context, p room.Parameters, initial *room.State) (rids.ContractKey, error) {
			return rids.ContractKey("room-key"), nil
		},
	}
	eng := New(host, DefaultConfig(), rlog.NewNoOp(), nil)

	key, err := eng.CreateRoom(context.Background(), params, s)
	require.NoError(err)
	require.Equal(rids.ContractKey("room-key"), key)

	status, _ := eng.RoomStatus(key)
	require.Equal(RoomUnsubscribed, status)
}

func TestEnginePutSettledPushesFullStateAndUpdatesHash(t *testing.T) {
	require := require.New(t)
	s, params, _ := testRoom(t)

	var pushedFull *room.State
	host := &syncenginemock.Host{
		T: t,
		PutF: func(ctx context.Context, p room.Parameters, initial *room.State) (rids.ContractKey, error) {
			return rids.ContractKey("room-key"), nil
		},
		UpdateF: func(ctx context.Context, key rids.ContractKey, delta *room.Delta, full *room.State) error {
			pushedFull = full
			return nil
		},
	}
	eng := New(host, DefaultConfig(), rlog.NewNoOp(), nil)

	key, err := eng.CreateRoom(context.Background(), params, s)
	require.NoError(err)
	require.NoError(eng.PutSettled(context.Background(), key))
	require.NotNil(pushedFull)

	status, _ := eng.RoomStatus(key)
	require.Equal(RoomUnsubscribed, status)
}

func TestEngineSubscribeTransitionsToSubscribed(t *testing.T) {
	require := require.New(t)
	s, params, _ := testRoom(t)

	host := &syncenginemock.Host{
		T: t,
		PutF: func(ctx context.Context, p room.Parameters, initial *room.State) (rids.ContractKey, error) {
			return rids.ContractKey("room-key"), nil
		},
		SubscribeF: func(ctx context.Context, key rids.ContractKey, summary *room.Summary) (bool, error) {
			require.NotNil(summary)
			return true, nil
		},
	}
	eng := New(host, DefaultConfig(), rlog.NewNoOp(), nil)

	key, err := eng.CreateRoom(context.Background(), params, s)
	require.NoError(err)
	require.NoError(eng.Subscribe(context.Background(), key))

	status, _ := eng.RoomStatus(key)
	require.Equal(RoomSubscribed, status)
}

func TestEngineGetFoldsPendingInvitation(t *testing.T) {
	require := require.New(t)
	s, params, ownerSK := testRoom(t)

	inviteeVK, _, err := rcrypto.GenerateKey()
	require.NoError(err)
	member := room.Member{InvitedBy: params.OwnerId(), MemberVK: inviteeVK}
	am, err := room.NewAuthorizedMember(member, ownerSK)
	require.NoError(err)

	remote := &room.State{Configuration: s.Configuration}

	var pushedDelta *room.Delta
	host := &syncenginemock.Host{
		T: t,
		PutF: func(ctx context.Context, p room.Parameters, initial *room.State) (rids.ContractKey, error) {
			return rids.ContractKey("room-key"), nil
		},
		GetF: func(ctx context.Context, key rids.ContractKey, subscribe bool) (*room.State, error) {
			return remote, nil
		},
		UpdateF: func(ctx context.Context, key rids.ContractKey, delta *room.Delta, full *room.State) error {
			pushedDelta = delta
			return nil
		},
	}
	eng := New(host, DefaultConfig(), rlog.NewNoOp(), nil)

	key, err := eng.CreateRoom(context.Background(), params, s)
	require.NoError(err)

	eng.TrackInvitation(key, params, PendingInvitation{Member: am})
	require.NoError(eng.Get(context.Background(), key, false))

	require.NotNil(pushedDelta)
	require.NotNil(pushedDelta.Members)
	require.Len(pushedDelta.Members.Added, 1)
}

func TestEngineNotifyDropsInvalidDeltaWithoutPropagatingError(t *testing.T) {
	require := require.New(t)
	s, params, _ := testRoom(t)

	host := &syncenginemock.Host{
		T: t,
		PutF: func(ctx context.Context, p room.Parameters, initial *room.State) (rids.ContractKey, error) {
			return rids.ContractKey("room-key"), nil
		},
	}
	eng := New(host, DefaultConfig(), rlog.NewNoOp(), nil)

	key, err := eng.CreateRoom(context.Background(), params, s)
	require.NoError(err)

	stale := s.Configuration
	invalidDelta := &room.Delta{Configuration: &stale}
	// Re-applying the room's own current configuration is not strictly
	// newer, so ApplyDelta rejects it; Notify must swallow the error.
	require.NoError(eng.Notify(context.Background(), Notification{Key: key, Delta: invalidDelta}))
}

func TestEngineSyncIfChangedPushesOnlyIncrementalDelta(t *testing.T) {
	require := require.New(t)
	s, params, ownerSK := testRoom(t)

	var pushedDeltas []*room.Delta
	host := &syncenginemock.Host{
		T: t,
		PutF: func(ctx context.Context, p room.Parameters, initial *room.State) (rids.ContractKey, error) {
			return rids.ContractKey("room-key"), nil
		},
		UpdateF: func(ctx context.Context, key rids.ContractKey, delta *room.Delta, full *room.State) error {
			if delta != nil {
				pushedDeltas = append(pushedDeltas, delta)
			}
			return nil
		},
	}
	eng := New(host, DefaultConfig(), rlog.NewNoOp(), nil)

	key, err := eng.CreateRoom(context.Background(), params, s)
	require.NoError(err)
	require.NoError(eng.PutSettled(context.Background(), key))
	require.Len(pushedDeltas, 0) // PutSettled pushes a full state, not a delta

	inviteeVK, _, err := rcrypto.GenerateKey()
	require.NoError(err)
	member := room.Member{InvitedBy: params.OwnerId(), MemberVK: inviteeVK}
	am, err := room.NewAuthorizedMember(member, ownerSK)
	require.NoError(err)

	require.NoError(s.ApplyDelta(params, &room.Delta{Members: &room.MembersDelta{Added: []room.AuthorizedMember{am}}}))
	require.NoError(eng.SyncLocal(context.Background(), key))
	require.Len(pushedDeltas, 1)
	require.NotNil(pushedDeltas[0].Members)
	require.Len(pushedDeltas[0].Members.Added, 1)

	// A second no-op sync observes no fingerprint change and pushes nothing.
	require.NoError(eng.SyncLocal(context.Background(), key))
	require.Len(pushedDeltas, 1)
}

func TestEngineReconnectDelayAdvancesAndResets(t *testing.T) {
	require := require.New(t)
	s, params, _ := testRoom(t)

	host := &syncenginemock.Host{
		T: t,
		PutF: func(ctx context.Context, p room.Parameters, initial *room.State) (rids.ContractKey, error) {
			return rids.ContractKey("room-key"), nil
		},
	}
	eng := New(host, DefaultConfig(), rlog.NewNoOp(), nil)

	key, err := eng.CreateRoom(context.Background(), params, s)
	require.NoError(err)

	d1, err := eng.ReconnectDelay(key)
	require.NoError(err)
	require.Greater(d1, time.Duration(0))

	eng.BackoffReset(key)
	d2, err := eng.ReconnectDelay(key)
	require.NoError(err)
	require.LessOrEqual(d2, 2*d1)
}
