// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package room

import (
	"sort"

	"github.com/riverchat/river-core/rerr"
	"github.com/riverchat/river-core/rids"
)

// Bans is the bounded, chain-scoped ban set: a ban is only authoritative if
// its banner is, or was at the time of banning, upstream of the banned
// member in the invite chain.
type Bans struct {
	Bans []AuthorizedUserBan
}

// BansSummary is the set of BanIds a peer already has.
type BansSummary map[rids.BanId]struct{}

// BansDelta carries bans present locally but absent from a remote summary.
type BansDelta struct {
	Added []AuthorizedUserBan
}

// Verify checks only the bound. Signature and chain-of-custody validation
// (that the banner can be resolved as owner, or as a member whose
// invite-chain relationship to the banned member was already established
// when the ban was accepted) happens in ApplyDelta, not here: a ban whose
// banner cannot currently be resolved is not itself an error, and a later
// orphan-cleanup pass removes it if it never resolves.
func (b *Bans) Verify(parent *State, params Parameters) error {
	if len(b.Bans) > parent.Configuration.Configuration.MaxUserBans {
		return rerr.Component("bans", rerr.ErrBoundExceeded)
	}
	return nil
}

// Summarize returns the set of BanIds this peer has.
func (b *Bans) Summarize(parent *State, params Parameters) BansSummary {
	sum := make(BansSummary, len(b.Bans))
	for _, ab := range b.Bans {
		sum[ab.Id()] = struct{}{}
	}
	return sum
}

// Delta returns the bans absent from remoteSummary, or nil.
func (b *Bans) Delta(parent *State, params Parameters, remoteSummary BansSummary) *BansDelta {
	var added []AuthorizedUserBan
	for _, ab := range b.Bans {
		if _, present := remoteSummary[ab.Id()]; !present {
			added = append(added, ab)
		}
	}
	if len(added) == 0 {
		return nil
	}
	return &BansDelta{Added: added}
}

// ApplyDelta rejects duplicate bans, accepts new ones per the resolution
// rule above, and enforces MaxUserBans by dropping the oldest bans.
func (b *Bans) ApplyDelta(parent *State, params Parameters, delta *BansDelta) error {
	if delta == nil {
		return nil
	}

	existing := make(map[rids.BanId]struct{}, len(b.Bans))
	for _, ab := range b.Bans {
		existing[ab.Id()] = struct{}{}
	}

	memberIdx := parent.Members.index()

	for _, ab := range delta.Added {
		id := ab.Id()
		if _, dup := existing[id]; dup {
			continue
		}
		if err := b.verifyAcceptance(ab, params, memberIdx); err != nil {
			return rerr.Component("bans", err)
		}
		existing[id] = struct{}{}
		b.Bans = append(b.Bans, ab)
	}

	b.sortCanonical()
	b.trimToBound(parent.Configuration.Configuration.MaxUserBans)
	return nil
}

// verifyAcceptance resolves the banner's key against ownerId/memberIdx (the
// member set as of the moment this ban is accepted, before any cascade) and
// verifies the signature; if the banned member is still present it also
// requires the banner to be upstream of it in the invite chain. A banner
// that cannot currently be resolved is accepted unverified: it is either
// the owner acting after leaving (impossible) or a member who has since
// been removed, which the orphan-cleanup pass resolves later.
func (b *Bans) verifyAcceptance(ab AuthorizedUserBan, params Parameters, memberIdx map[rids.MemberId]AuthorizedMember) error {
	ownerId := params.OwnerId()
	bannerVK, resolvable := resolveMemberVK(ab.BannedBy, ownerId, params, memberIdx)
	if !resolvable {
		return nil
	}
	if err := ab.VerifySignature(bannerVK); err != nil {
		return err
	}

	if _, stillPresent := memberIdx[ab.Ban.BannedUser]; stillPresent && ab.BannedBy != ownerId {
		if !chainIncludes(ab.Ban.BannedUser, ab.BannedBy, memberIdx, ownerId) {
			return rerr.ErrInviteChainBroken
		}
	}
	return nil
}

func resolveMemberVK(id rids.MemberId, ownerId rids.MemberId, params Parameters, memberIdx map[rids.MemberId]AuthorizedMember) (vk []byte, ok bool) {
	if id == ownerId {
		return params.Owner, true
	}
	if am, present := memberIdx[id]; present {
		return am.Member.MemberVK, true
	}
	return nil, false
}

// chainIncludes reports whether target appears among the ancestors of
// start (walking InvitedBy edges up to, but not including, start itself).
func chainIncludes(start, target rids.MemberId, idx map[rids.MemberId]AuthorizedMember, ownerId rids.MemberId) bool {
	current := start
	visited := map[rids.MemberId]struct{}{current: {}}
	for current != ownerId {
		am, ok := idx[current]
		if !ok {
			return false
		}
		next := am.Member.InvitedBy
		if next == target {
			return true
		}
		if _, seen := visited[next]; seen {
			return false
		}
		visited[next] = struct{}{}
		current = next
	}
	return target == ownerId
}

func (b *Bans) sortCanonical() {
	sort.Slice(b.Bans, func(i, j int) bool {
		ti, tj := b.Bans[i].Ban.BannedAt, b.Bans[j].Ban.BannedAt
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return b.Bans[i].Id() < b.Bans[j].Id()
	})
}

func (b *Bans) trimToBound(max int) {
	if len(b.Bans) <= max {
		return
	}
	b.Bans = b.Bans[len(b.Bans)-max:]
}

// RemoveOrphans drops bans whose banner cannot be resolved against the
// final, post-cascade member set (and is not the owner). Run once, after
// the full compound apply_delta, per §4.8.
func (b *Bans) RemoveOrphans(parent *State, params Parameters) {
	ownerId := params.OwnerId()
	memberIdx := parent.Members.index()

	kept := b.Bans[:0:0]
	for _, ab := range b.Bans {
		if ab.BannedBy == ownerId {
			kept = append(kept, ab)
			continue
		}
		if _, present := memberIdx[ab.BannedBy]; present {
			kept = append(kept, ab)
			continue
		}
		// Banner not the owner and no longer a member: orphaned.
	}
	b.Bans = kept
}
