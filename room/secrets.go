// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package room

import (
	"crypto/ed25519"
	"crypto/rand"
	"sort"
	"time"

	"github.com/riverchat/river-core/rerr"
	"github.com/riverchat/river-core/rids"
)

// SecretKeySize is the length in bytes of a room secret.
const SecretKeySize = 32

// Secrets is the versioned room-key lattice: each rotation issues a new
// SecretVersionRecord and one Envelope per member who should be able to
// read messages encrypted under it. Banning a member and rotating the
// secret without an envelope for them is how forward secrecy is achieved.
type Secrets struct {
	CurrentVersion rids.SecretVersion
	Versions       []AuthorizedSecretVersionRecord
	Envelopes      []AuthorizedEncryptedSecretForMember
}

// SecretsSummary is the compact view of what a peer already has.
type SecretsSummary struct {
	CurrentVersion rids.SecretVersion
	Versions       map[rids.SecretVersion]struct{}
	Envelopes      map[envelopeKey]struct{}
}

type envelopeKey struct {
	Version  rids.SecretVersion
	MemberId rids.MemberId
}

// SecretsDelta carries new version records and envelopes, and an optional
// strictly-greater CurrentVersion.
type SecretsDelta struct {
	NewCurrentVersion *rids.SecretVersion
	NewVersions       []AuthorizedSecretVersionRecord
	NewEnvelopes      []AuthorizedEncryptedSecretForMember
}

// Verify checks that CurrentVersion matches the maximum issued version (or
// is zero), every envelope references an existing version and an extant
// member (owner exempt), and (version, member) pairs are unique.
func (s *Secrets) Verify(parent *State, params Parameters) error {
	maxVersion := rids.SecretVersion(0)
	versionSet := make(map[rids.SecretVersion]struct{}, len(s.Versions))
	for _, v := range s.Versions {
		versionSet[v.Record.Version] = struct{}{}
		if v.Record.Version > maxVersion {
			maxVersion = v.Record.Version
		}
	}
	if len(s.Versions) > 0 && s.CurrentVersion != maxVersion {
		return rerr.Component("secrets", rerr.ErrStaleVersion)
	}
	if len(s.Versions) == 0 && s.CurrentVersion != 0 {
		return rerr.Component("secrets", rerr.ErrStaleVersion)
	}

	ownerId := params.OwnerId()
	memberIdx := parent.Members.index()
	seen := make(map[envelopeKey]struct{}, len(s.Envelopes))
	for _, e := range s.Envelopes {
		if _, ok := versionSet[e.Envelope.SecretVersion]; !ok {
			return rerr.Component("secrets", errSecretVersionMissing)
		}
		if e.Envelope.MemberId != ownerId {
			if _, ok := memberIdx[e.Envelope.MemberId]; !ok {
				return rerr.Component("secrets", errSecretMemberMissing)
			}
		}
		key := envelopeKey{e.Envelope.SecretVersion, e.Envelope.MemberId}
		if _, dup := seen[key]; dup {
			return rerr.Component("secrets", errSecretDuplicateEnvelope)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// Summarize returns the compact view of this peer's secret state.
func (s *Secrets) Summarize(parent *State, params Parameters) SecretsSummary {
	versions := make(map[rids.SecretVersion]struct{}, len(s.Versions))
	for _, v := range s.Versions {
		versions[v.Record.Version] = struct{}{}
	}
	envelopes := make(map[envelopeKey]struct{}, len(s.Envelopes))
	for _, e := range s.Envelopes {
		envelopes[envelopeKey{e.Envelope.SecretVersion, e.Envelope.MemberId}] = struct{}{}
	}
	return SecretsSummary{CurrentVersion: s.CurrentVersion, Versions: versions, Envelopes: envelopes}
}

// Delta returns the versions and envelopes absent from remoteSummary, plus
// CurrentVersion if it is strictly greater than remote's.
func (s *Secrets) Delta(parent *State, params Parameters, remoteSummary SecretsSummary) *SecretsDelta {
	var newVersions []AuthorizedSecretVersionRecord
	for _, v := range s.Versions {
		if _, present := remoteSummary.Versions[v.Record.Version]; !present {
			newVersions = append(newVersions, v)
		}
	}
	var newEnvelopes []AuthorizedEncryptedSecretForMember
	for _, e := range s.Envelopes {
		key := envelopeKey{e.Envelope.SecretVersion, e.Envelope.MemberId}
		if _, present := remoteSummary.Envelopes[key]; !present {
			newEnvelopes = append(newEnvelopes, e)
		}
	}

	var newCurrent *rids.SecretVersion
	if s.CurrentVersion > remoteSummary.CurrentVersion {
		v := s.CurrentVersion
		newCurrent = &v
	}

	if len(newVersions) == 0 && len(newEnvelopes) == 0 && newCurrent == nil {
		return nil
	}
	return &SecretsDelta{NewCurrentVersion: newCurrent, NewVersions: newVersions, NewEnvelopes: newEnvelopes}
}

// ApplyDelta verifies signatures, rejects duplicate versions and duplicate
// (version, member) envelopes, advances CurrentVersion only on strict
// increase to an extant version, prunes envelopes for members no longer
// present, and re-sorts for deterministic serialization.
func (s *Secrets) ApplyDelta(parent *State, params Parameters, delta *SecretsDelta) error {
	if delta != nil {
		versionSet := make(map[rids.SecretVersion]struct{}, len(s.Versions))
		for _, v := range s.Versions {
			versionSet[v.Record.Version] = struct{}{}
		}

		for _, v := range delta.NewVersions {
			if err := v.VerifySignature(params.Owner); err != nil {
				return rerr.Component("secrets", err)
			}
			if _, dup := versionSet[v.Record.Version]; dup {
				continue
			}
			versionSet[v.Record.Version] = struct{}{}
			s.Versions = append(s.Versions, v)
		}

		ownerId := params.OwnerId()
		memberIdx := parent.Members.index()
		envelopeSet := make(map[envelopeKey]struct{}, len(s.Envelopes))
		for _, e := range s.Envelopes {
			envelopeSet[envelopeKey{e.Envelope.SecretVersion, e.Envelope.MemberId}] = struct{}{}
		}

		for _, e := range delta.NewEnvelopes {
			if err := e.VerifySignature(params.Owner); err != nil {
				return rerr.Component("secrets", err)
			}
			if _, ok := versionSet[e.Envelope.SecretVersion]; !ok {
				return rerr.Component("secrets", errSecretVersionMissing)
			}
			if e.Envelope.MemberId != ownerId {
				if _, ok := memberIdx[e.Envelope.MemberId]; !ok {
					return rerr.Component("secrets", errSecretMemberMissing)
				}
			}
			key := envelopeKey{e.Envelope.SecretVersion, e.Envelope.MemberId}
			if _, dup := envelopeSet[key]; dup {
				continue
			}
			envelopeSet[key] = struct{}{}
			s.Envelopes = append(s.Envelopes, e)
		}

		if delta.NewCurrentVersion != nil {
			nv := *delta.NewCurrentVersion
			if nv <= s.CurrentVersion {
				return rerr.Component("secrets", rerr.ErrStaleVersion)
			}
			if _, ok := versionSet[nv]; !ok {
				return rerr.Component("secrets", errSecretVersionMissing)
			}
			s.CurrentVersion = nv
		}
	}

	s.pruneAbsentMembers(parent, params)
	s.sortCanonical()
	return nil
}

func (s *Secrets) pruneAbsentMembers(parent *State, params Parameters) {
	ownerId := params.OwnerId()
	memberIdx := parent.Members.index()

	kept := s.Envelopes[:0:0]
	for _, e := range s.Envelopes {
		if e.Envelope.MemberId == ownerId {
			kept = append(kept, e)
			continue
		}
		if _, present := memberIdx[e.Envelope.MemberId]; present {
			kept = append(kept, e)
		}
	}
	s.Envelopes = kept
}

func (s *Secrets) sortCanonical() {
	sort.Slice(s.Versions, func(i, j int) bool {
		return s.Versions[i].Record.Version < s.Versions[j].Record.Version
	})
	sort.Slice(s.Envelopes, func(i, j int) bool {
		a, b := s.Envelopes[i].Envelope, s.Envelopes[j].Envelope
		if a.SecretVersion != b.SecretVersion {
			return a.SecretVersion < b.SecretVersion
		}
		return a.MemberId < b.MemberId
	})
}

// HasCompleteDistribution reports whether every current member has an
// envelope at CurrentVersion. A room with CurrentVersion == 0 (no secret
// ever issued) trivially satisfies this.
func (s *Secrets) HasCompleteDistribution(members *Members) bool {
	if s.CurrentVersion == 0 {
		return true
	}
	have := make(map[rids.MemberId]struct{}, len(s.Envelopes))
	for _, e := range s.Envelopes {
		if e.Envelope.SecretVersion == s.CurrentVersion {
			have[e.Envelope.MemberId] = struct{}{}
		}
	}
	for _, am := range members.Members {
		if _, ok := have[am.Member.Id()]; !ok {
			return false
		}
	}
	return true
}

// RotateSecret generates a fresh room secret and a SecretsDelta distributing
// it to every member of recipients (use params.Owner's MemberId for the
// owner's own copy), excluding excludeMemberId if non-nil — the mechanism
// by which banning a member revokes their access to future messages. This
// is owner-side tooling, not part of the lattice contract itself: nothing
// in Verify/Delta/ApplyDelta depends on how a SecretsDelta was produced.
func RotateSecret(current rids.SecretVersion, recipients map[rids.MemberId]ed25519.PublicKey, excludeMemberId *rids.MemberId, ownerSK ed25519.PrivateKey, createdAt time.Time) (*SecretsDelta, []byte, error) {
	secretKey := make([]byte, SecretKeySize)
	if _, err := rand.Read(secretKey); err != nil {
		return nil, nil, err
	}

	newVersion := current + 1
	record := SecretVersionRecord{Version: newVersion, CipherSpec: Aes256Gcm, CreatedAt: createdAt}
	authorizedRecord, err := NewAuthorizedSecretVersionRecord(record, ownerSK)
	if err != nil {
		return nil, nil, err
	}

	var envelopes []AuthorizedEncryptedSecretForMember
	for memberId, vk := range recipients {
		if excludeMemberId != nil && memberId == *excludeMemberId {
			continue
		}
		env, err := NewAuthorizedEnvelope(memberId, newVersion, vk, secretKey, ownerSK)
		if err != nil {
			return nil, nil, err
		}
		envelopes = append(envelopes, env)
	}

	return &SecretsDelta{
		NewCurrentVersion: &newVersion,
		NewVersions:       []AuthorizedSecretVersionRecord{authorizedRecord},
		NewEnvelopes:      envelopes,
	}, secretKey, nil
}
