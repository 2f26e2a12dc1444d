// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package room

import (
	"crypto/ed25519"

	"github.com/riverchat/river-core/rcrypto"
	"github.com/riverchat/river-core/rerr"
	"github.com/riverchat/river-core/rids"
)

// MemberInfoRecord is the per-member profile: currently just a nickname,
// versioned so last-writer-wins merge is well defined.
type MemberInfoRecord struct {
	MemberId          rids.MemberId
	Version           uint32
	PreferredNickname string
}

// AuthorizedMemberInfo is a MemberInfoRecord signed by the member it
// describes, or by the owner for the owner's own record.
type AuthorizedMemberInfo struct {
	Info      MemberInfoRecord
	Signature []byte
}

// VerifySignature checks Signature against signerVK.
func (ami AuthorizedMemberInfo) VerifySignature(signerVK ed25519.PublicKey) error {
	return rcrypto.VerifyCanonical(signerVK, ami.Info, ami.Signature)
}

// NewAuthorizedMemberInfo signs info with sk.
func NewAuthorizedMemberInfo(info MemberInfoRecord, sk ed25519.PrivateKey) (AuthorizedMemberInfo, error) {
	sig, err := rcrypto.SignCanonical(sk, info)
	if err != nil {
		return AuthorizedMemberInfo{}, err
	}
	return AuthorizedMemberInfo{Info: info, Signature: sig}, nil
}

// MemberInfoState holds one record per member, merged last-writer-wins by
// version.
type MemberInfoState struct {
	Info []AuthorizedMemberInfo
}

// MemberInfoSummary maps MemberId to the version a peer already has.
type MemberInfoSummary map[rids.MemberId]uint32

// MemberInfoDelta carries records whose (member_id, version) is either
// absent from or strictly newer than a remote summary.
type MemberInfoDelta struct {
	Info []AuthorizedMemberInfo
}

func (mi *MemberInfoState) index() map[rids.MemberId]int {
	idx := make(map[rids.MemberId]int, len(mi.Info))
	for i, ami := range mi.Info {
		idx[ami.Info.MemberId] = i
	}
	return idx
}

// Verify checks that every record's signature is valid against its
// author's current key (owner for the owner's record, the member's own key
// otherwise) and that no member id appears twice.
func (mi *MemberInfoState) Verify(parent *State, params Parameters) error {
	ownerId := params.OwnerId()
	memberIdx := parent.Members.index()
	seen := make(map[rids.MemberId]struct{}, len(mi.Info))

	for _, ami := range mi.Info {
		if _, dup := seen[ami.Info.MemberId]; dup {
			return rerr.Component("member_info", rerr.ErrInvalidSignature)
		}
		seen[ami.Info.MemberId] = struct{}{}

		var signerVK ed25519.PublicKey
		if ami.Info.MemberId == ownerId {
			signerVK = params.Owner
		} else if am, present := memberIdx[ami.Info.MemberId]; present {
			signerVK = am.Member.MemberVK
		} else {
			continue // pruned on next apply; not an error to observe transiently
		}
		if err := ami.VerifySignature(signerVK); err != nil {
			return rerr.Component("member_info", err)
		}
	}
	return nil
}

// Summarize returns the version this peer has for each member id.
func (mi *MemberInfoState) Summarize(parent *State, params Parameters) MemberInfoSummary {
	sum := make(MemberInfoSummary, len(mi.Info))
	for _, ami := range mi.Info {
		sum[ami.Info.MemberId] = ami.Info.Version
	}
	return sum
}

// Delta returns records strictly newer than, or absent from, remoteSummary.
func (mi *MemberInfoState) Delta(parent *State, params Parameters, remoteSummary MemberInfoSummary) *MemberInfoDelta {
	var out []AuthorizedMemberInfo
	for _, ami := range mi.Info {
		remoteVersion, present := remoteSummary[ami.Info.MemberId]
		if !present || ami.Info.Version > remoteVersion {
			out = append(out, ami)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return &MemberInfoDelta{Info: out}
}

// ApplyDelta verifies signatures, keeps the newer record per member id, and
// prunes records for members no longer present (the owner's record is
// always retained).
func (mi *MemberInfoState) ApplyDelta(parent *State, params Parameters, delta *MemberInfoDelta) error {
	if delta != nil {
		ownerId := params.OwnerId()
		memberIdx := parent.Members.index()
		idx := mi.index()

		for _, incoming := range delta.Info {
			var signerVK ed25519.PublicKey
			if incoming.Info.MemberId == ownerId {
				signerVK = params.Owner
			} else if am, present := memberIdx[incoming.Info.MemberId]; present {
				signerVK = am.Member.MemberVK
			} else {
				continue
			}
			if err := incoming.VerifySignature(signerVK); err != nil {
				return rerr.Component("member_info", err)
			}

			if i, present := idx[incoming.Info.MemberId]; present {
				if incoming.Info.Version > mi.Info[i].Info.Version {
					mi.Info[i] = incoming
				}
			} else {
				idx[incoming.Info.MemberId] = len(mi.Info)
				mi.Info = append(mi.Info, incoming)
			}
		}
	}

	return mi.pruneAbsentMembers(parent, params)
}

// pruneAbsentMembers removes entries for member ids neither equal to the
// owner nor present in parent.Members.
func (mi *MemberInfoState) pruneAbsentMembers(parent *State, params Parameters) error {
	ownerId := params.OwnerId()
	memberIdx := parent.Members.index()

	kept := mi.Info[:0:0]
	for _, ami := range mi.Info {
		if ami.Info.MemberId == ownerId {
			kept = append(kept, ami)
			continue
		}
		if _, present := memberIdx[ami.Info.MemberId]; present {
			kept = append(kept, ami)
		}
	}
	mi.Info = kept
	return nil
}
