// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package room

import (
	"crypto/ed25519"

	"github.com/riverchat/river-core/rcrypto"
	"github.com/riverchat/river-core/rerr"
	"github.com/riverchat/river-core/rids"
)

// PrivacyMode controls whether Messages.ApplyDelta accepts Public content.
type PrivacyMode string

const (
	PrivacyPublic  PrivacyMode = "public"
	PrivacyPrivate PrivacyMode = "private"
)

// Display holds the room's human-facing name and description.
type Display struct {
	RoomName        string
	RoomDescription string
}

// RoomConfiguration holds every owner-tunable room parameter. Every limit
// must be non-zero; ConfigurationVersion strictly increases on each
// owner-issued change; OwnerMemberId is immutable after room creation.
type RoomConfiguration struct {
	OwnerMemberId        rids.MemberId
	ConfigurationVersion uint32
	Display              Display
	MaxRecentMessages    int
	MaxUserBans          int
	MaxMessageSize       int
	MaxNicknameSize      int
	MaxMembers           int
	MaxRoomName          int
	MaxRoomDescription   int
	PrivacyMode          PrivacyMode
}

func (c RoomConfiguration) hasZeroedLimit() bool {
	return c.MaxRecentMessages <= 0 ||
		c.MaxUserBans <= 0 ||
		c.MaxMessageSize <= 0 ||
		c.MaxNicknameSize <= 0 ||
		c.MaxMembers <= 0 ||
		c.MaxRoomName <= 0 ||
		c.MaxRoomDescription <= 0
}

// AuthorizedConfiguration is a RoomConfiguration signed by the owner.
type AuthorizedConfiguration struct {
	Configuration RoomConfiguration
	Signature     []byte
}

// NewAuthorizedConfiguration signs configuration with the owner's secret
// key.
func NewAuthorizedConfiguration(configuration RoomConfiguration, ownerSK ed25519.PrivateKey) (AuthorizedConfiguration, error) {
	sig, err := rcrypto.SignCanonical(ownerSK, configuration)
	if err != nil {
		return AuthorizedConfiguration{}, err
	}
	return AuthorizedConfiguration{Configuration: configuration, Signature: sig}, nil
}

// VerifySignature checks Signature against the owner's verifying key.
func (ac AuthorizedConfiguration) VerifySignature(ownerVK ed25519.PublicKey) error {
	return rcrypto.VerifyCanonical(ownerVK, ac.Configuration, ac.Signature)
}

// ConfigurationSummary is simply the version a peer already has.
type ConfigurationSummary uint32

// Verify checks the owner's signature and that no limit is zeroed.
func (ac *AuthorizedConfiguration) Verify(parent *State, params Parameters) error {
	if err := ac.VerifySignature(params.Owner); err != nil {
		return rerr.Component("configuration", err)
	}
	if ac.Configuration.hasZeroedLimit() {
		return rerr.Component("configuration", rerr.ErrInvalidLimits)
	}
	return nil
}

// Summarize returns this peer's configuration version.
func (ac *AuthorizedConfiguration) Summarize(parent *State, params Parameters) ConfigurationSummary {
	return ConfigurationSummary(ac.Configuration.ConfigurationVersion)
}

// Delta returns the current configuration iff its version is strictly
// greater than remoteVersion.
func (ac *AuthorizedConfiguration) Delta(parent *State, params Parameters, remoteVersion ConfigurationSummary) *AuthorizedConfiguration {
	if ac.Configuration.ConfigurationVersion > uint32(remoteVersion) {
		copyOf := *ac
		return &copyOf
	}
	return nil
}

// ApplyDelta accepts delta only if it strictly increases the version,
// carries a valid owner signature, does not mutate OwnerMemberId, and sets
// no zeroed limit.
func (ac *AuthorizedConfiguration) ApplyDelta(parent *State, params Parameters, delta *AuthorizedConfiguration) error {
	if delta == nil {
		return nil
	}
	if delta.Configuration.ConfigurationVersion <= ac.Configuration.ConfigurationVersion {
		return rerr.Component("configuration", rerr.ErrStaleVersion)
	}
	if err := delta.VerifySignature(params.Owner); err != nil {
		return rerr.Component("configuration", err)
	}
	if delta.Configuration.hasZeroedLimit() {
		return rerr.Component("configuration", rerr.ErrInvalidLimits)
	}
	if delta.Configuration.OwnerMemberId != ac.Configuration.OwnerMemberId {
		return rerr.Component("configuration", rerr.ErrOwnerMutation)
	}
	*ac = *delta
	return nil
}
