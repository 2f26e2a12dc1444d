// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package room

import (
	"fmt"
	"sort"

	"github.com/riverchat/river-core/rerr"
	"github.com/riverchat/river-core/rids"
)

// Members is the signed invite graph: every member's AuthorizedMember
// proves its inviter approved it, and every invite chain must terminate at
// the room owner.
type Members struct {
	Members []AuthorizedMember
}

// MembersSummary is the set of MemberIds a peer already has.
type MembersSummary map[rids.MemberId]struct{}

// MembersDelta carries members present locally but absent from a remote
// summary. Removal is never expressed as a delta: it only happens inside
// ApplyDelta, through the ban cascade (removeBannedMembers) or MaxMembers
// eviction (enforceMaxMembers).
type MembersDelta struct {
	Added []AuthorizedMember
}

func (m *Members) index() map[rids.MemberId]AuthorizedMember {
	idx := make(map[rids.MemberId]AuthorizedMember, len(m.Members))
	for _, am := range m.Members {
		idx[am.Member.Id()] = am
	}
	return idx
}

// Verify checks the invariants of §4.3: cardinality, owner exclusion, key
// collision with the owner, and that every member's invite chain is
// acyclic and terminates at the owner.
func (m *Members) Verify(parent *State, params Parameters) error {
	if len(m.Members) > parent.Configuration.Configuration.MaxMembers {
		return rerr.Component("members", rerr.ErrBoundExceeded)
	}

	ownerId := params.OwnerId()
	idx := m.index()

	for _, am := range m.Members {
		if am.Member.Id() == ownerId {
			return rerr.Component("members", fmt.Errorf("owner must not be present in the members list"))
		}
		if string(am.Member.MemberVK) == string(params.Owner) {
			return rerr.Component("members", fmt.Errorf("member cannot share the owner's verifying key"))
		}

		if err := verifyInviteChain(am.Member.Id(), idx, params, ownerId); err != nil {
			return rerr.Component("members", err)
		}
	}
	return nil
}

// verifyInviteChain walks InvitedBy links from id back to the owner,
// checking each hop's signature and rejecting cycles and self-invites.
func verifyInviteChain(id rids.MemberId, idx map[rids.MemberId]AuthorizedMember, params Parameters, ownerId rids.MemberId) error {
	current := id
	visited := map[rids.MemberId]struct{}{current: {}}

	for current != ownerId {
		am, present := idx[current]
		if !present {
			return fmt.Errorf("member %d not present in member set", current)
		}
		invitedBy := am.Member.InvitedBy
		if invitedBy == current {
			return fmt.Errorf("self-invite detected for member %d", current)
		}
		if _, seen := visited[invitedBy]; seen {
			return fmt.Errorf("invite loop detected involving member %d", current)
		}

		var inviterVK []byte
		if invitedBy == ownerId {
			inviterVK = params.Owner
		} else if inviter, ok := idx[invitedBy]; ok {
			inviterVK = inviter.Member.MemberVK
		} else {
			return fmt.Errorf("invited_by %d of member %d is not present and is not the owner", invitedBy, current)
		}

		if err := am.VerifySignature(inviterVK); err != nil {
			return err
		}

		visited[invitedBy] = struct{}{}
		current = invitedBy
	}
	return nil
}

// Summarize returns the set of MemberIds this peer has.
func (m *Members) Summarize(parent *State, params Parameters) MembersSummary {
	sum := make(MembersSummary, len(m.Members))
	for _, am := range m.Members {
		sum[am.Member.Id()] = struct{}{}
	}
	return sum
}

// Delta returns the members absent from remoteSummary, or nil if remote
// already has everything this peer has.
func (m *Members) Delta(parent *State, params Parameters, remoteSummary MembersSummary) *MembersDelta {
	var added []AuthorizedMember
	for _, am := range m.Members {
		if _, present := remoteSummary[am.Member.Id()]; !present {
			added = append(added, am)
		}
	}
	if len(added) == 0 {
		return nil
	}
	return &MembersDelta{Added: added}
}

// ApplyDelta verifies each added member's invite proof, merges it in,
// cascades bans, and enforces MaxMembers by dropping the members with the
// longest invite chains.
func (m *Members) ApplyDelta(parent *State, params Parameters, delta *MembersDelta) error {
	if delta == nil {
		return m.removeBannedMembers(parent, params)
	}

	idx := m.index()
	ownerId := params.OwnerId()

	for _, am := range delta.Added {
		if _, present := idx[am.Member.Id()]; present {
			continue
		}
		idx[am.Member.Id()] = am
		if err := verifyInviteChain(am.Member.Id(), idx, params, ownerId); err != nil {
			delete(idx, am.Member.Id())
			return rerr.Component("members", err)
		}
		m.Members = append(m.Members, am)
	}

	if err := m.removeBannedMembers(parent, params); err != nil {
		return err
	}

	return m.enforceMaxMembers(parent, params)
}

// removeBannedMembers removes every banned member and every member whose
// invite chain transitively flows through a banned member, via BFS over
// InvitedBy edges.
func (m *Members) removeBannedMembers(parent *State, params Parameters) error {
	if len(parent.Bans.Bans) == 0 {
		return nil
	}

	banned := make(map[rids.MemberId]struct{}, len(parent.Bans.Bans))
	for _, b := range parent.Bans.Bans {
		banned[b.Ban.BannedUser] = struct{}{}
	}

	invitedByOf := make(map[rids.MemberId]rids.MemberId, len(m.Members))
	for _, am := range m.Members {
		invitedByOf[am.Member.Id()] = am.Member.InvitedBy
	}

	toRemove := make(map[rids.MemberId]struct{})
	for id := range invitedByOf {
		if reachesBanned(id, invitedByOf, banned) {
			toRemove[id] = struct{}{}
		}
	}

	if len(toRemove) == 0 {
		return nil
	}

	kept := m.Members[:0:0]
	for _, am := range m.Members {
		if _, removed := toRemove[am.Member.Id()]; !removed {
			kept = append(kept, am)
		}
	}
	m.Members = kept
	return nil
}

// reachesBanned performs a bounded BFS from id following InvitedBy edges,
// returning true if a banned member is reached.
func reachesBanned(id rids.MemberId, invitedByOf map[rids.MemberId]rids.MemberId, banned map[rids.MemberId]struct{}) bool {
	if _, ok := banned[id]; ok {
		return true
	}
	current := id
	visited := map[rids.MemberId]struct{}{current: {}}
	for {
		next, ok := invitedByOf[current]
		if !ok {
			return false
		}
		if _, isBanned := banned[next]; isBanned {
			return true
		}
		if _, seen := visited[next]; seen {
			return false // cycle; verify() would already have rejected this
		}
		visited[next] = struct{}{}
		current = next
	}
}

// chainLength returns the number of hops from id back to the owner.
func chainLength(id rids.MemberId, invitedByOf map[rids.MemberId]rids.MemberId, ownerId rids.MemberId) int {
	n := 0
	current := id
	visited := map[rids.MemberId]struct{}{current: {}}
	for current != ownerId {
		next, ok := invitedByOf[current]
		if !ok {
			return n
		}
		if _, seen := visited[next]; seen {
			return n
		}
		visited[next] = struct{}{}
		current = next
		n++
	}
	return n
}

// enforceMaxMembers drops members with the longest invite chain,
// tie-broken by ascending MemberId, until the set is within bound.
func (m *Members) enforceMaxMembers(parent *State, params Parameters) error {
	max := parent.Configuration.Configuration.MaxMembers
	if len(m.Members) <= max {
		return nil
	}

	invitedByOf := make(map[rids.MemberId]rids.MemberId, len(m.Members))
	for _, am := range m.Members {
		invitedByOf[am.Member.Id()] = am.Member.InvitedBy
	}
	ownerId := params.OwnerId()

	sort.Slice(m.Members, func(i, j int) bool {
		li := chainLength(m.Members[i].Member.Id(), invitedByOf, ownerId)
		lj := chainLength(m.Members[j].Member.Id(), invitedByOf, ownerId)
		if li != lj {
			return li < lj
		}
		return m.Members[i].Member.Id() < m.Members[j].Member.Id()
	})

	m.Members = m.Members[:max]
	return nil
}
