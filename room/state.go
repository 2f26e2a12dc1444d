// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package room

import (
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/riverchat/river-core/rcbor"
)

// State is the composition of every room-state component. Any peer that
// applies the same multiset of deltas to the same starting State reaches a
// byte-identical canonical-CBOR serialization.
type State struct {
	Configuration  AuthorizedConfiguration
	Members        Members
	Bans           Bans
	MemberInfo     MemberInfoState
	RecentMessages Messages
	Secrets        Secrets
	Upgrade        Upgrade
}

// Summary is the compact, per-component view exchanged to compute a Delta.
type Summary struct {
	Configuration ConfigurationSummary
	Members       MembersSummary
	Bans          BansSummary
	MemberInfo    MemberInfoSummary
	Secrets       SecretsSummary
	Messages      MessagesSummary
}

// Delta is the compound delta: each field is present only if that
// component has something the remote lacks.
type Delta struct {
	Configuration *AuthorizedConfiguration
	Members       *MembersDelta
	Bans          *BansDelta
	MemberInfo    *MemberInfoDelta
	Secrets       *SecretsDelta
	Messages      *MessagesDelta
}

// IsEmpty reports whether the delta carries no changes at all.
func (d *Delta) IsEmpty() bool {
	if d == nil {
		return true
	}
	return d.Configuration == nil && d.Members == nil && d.Bans == nil &&
		d.MemberInfo == nil && d.Secrets == nil && d.Messages == nil
}

// NewState creates a freshly owned room: a signed initial configuration and
// every other component empty.
func NewState(configuration RoomConfiguration, ownerSK ed25519.PrivateKey) (*State, error) {
	signed, err := NewAuthorizedConfiguration(configuration, ownerSK)
	if err != nil {
		return nil, fmt.Errorf("sign initial configuration: %w", err)
	}
	return &State{
		Configuration:  signed,
		RecentMessages: Messages{Actions: newActionsState()},
	}, nil
}

// Verify runs every component's Verify predicate, returning the first
// error encountered.
func (s *State) Verify(params Parameters) error {
	if err := s.Configuration.Verify(s, params); err != nil {
		return err
	}
	if err := s.Members.Verify(s, params); err != nil {
		return err
	}
	if err := (&s.Bans).Verify(s, params); err != nil {
		return err
	}
	if err := s.MemberInfo.Verify(s, params); err != nil {
		return err
	}
	if err := s.Secrets.Verify(s, params); err != nil {
		return err
	}
	if err := s.RecentMessages.Verify(s, params); err != nil {
		return err
	}
	return nil
}

// Summarize returns the compact view of this state used to compute what a
// remote peer lacks.
func (s *State) Summarize(params Parameters) Summary {
	return Summary{
		Configuration: s.Configuration.Summarize(s, params),
		Members:       s.Members.Summarize(s, params),
		Bans:          s.Bans.Summarize(s, params),
		MemberInfo:    s.MemberInfo.Summarize(s, params),
		Secrets:       s.Secrets.Summarize(s, params),
		Messages:      s.RecentMessages.Summarize(s, params),
	}
}

// ComputeDelta returns the records present in s but absent from
// remoteSummary, or nil if remote is fully up to date from this peer's
// perspective.
func (s *State) ComputeDelta(params Parameters, remoteSummary Summary) *Delta {
	d := &Delta{
		Configuration: s.Configuration.Delta(s, params, remoteSummary.Configuration),
		Members:       s.Members.Delta(s, params, remoteSummary.Members),
		Bans:          s.Bans.Delta(s, params, remoteSummary.Bans),
		MemberInfo:    s.MemberInfo.Delta(s, params, remoteSummary.MemberInfo),
		Secrets:       s.Secrets.Delta(s, params, remoteSummary.Secrets),
		Messages:      s.RecentMessages.Delta(s, params, remoteSummary.Messages),
	}
	if d.IsEmpty() {
		return nil
	}
	return d
}

// ApplyDelta merges delta into s in the fixed, load-bearing order of §4.8:
// configuration, members, bans (re-triggering the member cascade), member
// info, secrets, messages — then a final orphaned-ban cleanup pass.
func (s *State) ApplyDelta(params Parameters, delta *Delta) error {
	if delta == nil {
		return nil
	}

	if err := s.Configuration.ApplyDelta(s, params, delta.Configuration); err != nil {
		return err
	}
	if err := s.Members.ApplyDelta(s, params, delta.Members); err != nil {
		return err
	}
	if err := s.Bans.ApplyDelta(s, params, delta.Bans); err != nil {
		return err
	}
	// Applying the new bans may have changed who is banned; re-run the
	// member cascade before member-info/secrets/messages observe the
	// member set.
	if err := s.Members.ApplyDelta(s, params, nil); err != nil {
		return err
	}
	if err := s.MemberInfo.ApplyDelta(s, params, delta.MemberInfo); err != nil {
		return err
	}
	if err := s.Secrets.ApplyDelta(s, params, delta.Secrets); err != nil {
		return err
	}
	if err := s.RecentMessages.ApplyDelta(s, params, delta.Messages); err != nil {
		return err
	}

	s.Bans.RemoveOrphans(s, params)
	return nil
}

// Merge reconciles s with a remote's full state: remote computes what s
// lacks relative to s's summary, and s applies that delta once.
// Equivalent to "summarize self, ask remote for a delta, apply it".
func (s *State) Merge(remote *State, params Parameters) error {
	selfSummary := s.Summarize(params)
	remoteDelta := remote.ComputeDelta(params, selfSummary)
	return s.ApplyDelta(params, remoteDelta)
}

// MarshalCBOR encodes s as canonical CBOR. RecentMessages.Actions is
// excluded by its cbor:"-" tag and reconstructed by rebuildActionsState
// inside ApplyDelta/UnmarshalCBOR, never transported over the wire.
func (s *State) MarshalCBOR() ([]byte, error) {
	type alias State
	return rcbor.Marshal((*alias)(s))
}

// UnmarshalCBOR decodes canonical CBOR into s and rebuilds the derived
// actions view, since it is never part of the wire encoding.
func (s *State) UnmarshalCBOR(data []byte) error {
	type alias State
	if err := rcbor.Unmarshal(data, (*alias)(s)); err != nil {
		return err
	}
	s.RecentMessages.rebuildActionsState()
	return nil
}

// DebugSummary renders a human-readable overview of the room, grounded on
// the original implementation's dump-state debug command: counts per
// component and the derived actions view, useful for tests and any future
// CLI inspection tool.
func (s *State) DebugSummary(params Parameters) string {
	displayCount := len(s.RecentMessages.DisplayMessages())
	return fmt.Sprintf(
		"room owner=%d config_v=%d members=%d bans=%d member_info=%d "+
			"secret_v=%d envelopes=%d messages=%d/%d displayed=%d edited=%d deleted=%d at=%s",
		params.OwnerId(),
		s.Configuration.Configuration.ConfigurationVersion,
		len(s.Members.Members),
		len(s.Bans.Bans),
		len(s.MemberInfo.Info),
		s.Secrets.CurrentVersion,
		len(s.Secrets.Envelopes),
		len(s.RecentMessages.Recent),
		s.Configuration.Configuration.MaxRecentMessages,
		displayCount,
		len(s.RecentMessages.Actions.EditedContent),
		len(s.RecentMessages.Actions.Deleted),
		time.Now().UTC().Format(time.RFC3339),
	)
}
