// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package syncengine

import (
	"github.com/riverchat/river-core/rids"
	"github.com/riverchat/river-core/room"
)

// PendingInvitation captures an invitation this peer has accepted but not
// yet folded into the room's replicated state: on the first GetResponse
// for this room (§4.9), the engine merges the fetched state, then inserts
// the invitee's member and member-info records and pushes the result as an
// UPDATE.
type PendingInvitation struct {
	Member     room.AuthorizedMember
	MemberInfo *room.AuthorizedMemberInfo
}

// entry is everything the engine tracks for one room.
type entry struct {
	Key        rids.ContractKey
	Params     room.Parameters
	State      *room.State
	Status      RoomStatus
	ErrReason   string
	LastHash    uint64
	LastSummary room.Summary
	Invitation  *PendingInvitation
	backoff     Backoff
}

func newEntry(key rids.ContractKey, params room.Parameters, state *room.State) *entry {
	return &entry{
		Key:     key,
		Params:  params,
		State:   state,
		Status:  RoomNeedsPut,
		backoff: DefaultBackoff(),
	}
}

func (e *entry) setError(reason string) {
	e.Status = RoomError
	e.ErrReason = reason
}
