// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package rerr holds the sentinel error kinds every room-state component
// rejects a delta with. Component errors wrap one of these with
// errors.Wrapf so callers can test with errors.Is while still getting a
// component-qualified message.
package rerr

import "github.com/cockroachdb/errors"

var (
	// ErrInvalidSignature is returned when a signed record fails verification.
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrStaleVersion is returned when a delta's version is not strictly
	// greater than the version already present.
	ErrStaleVersion = errors.New("stale version")
	// ErrInviteChainBroken is returned when a member's invite chain does not
	// terminate at the owner, cycles, or self-invites.
	ErrInviteChainBroken = errors.New("invite chain broken")
	// ErrBoundExceeded is returned by a component's Verify when it holds more
	// records than its configured bound; it is never surfaced as a rejected
	// delta since ApplyDelta handles bound overflow by eviction, not rejection.
	ErrBoundExceeded = errors.New("bound exceeded")
	// ErrSecretMismatch names the case of a private-room message that
	// references a secret version other than the room's current one.
	// Messages.ApplyDelta drops such a message without returning an error.
	ErrSecretMismatch = errors.New("secret mismatch")
	// ErrOwnerMutation is returned when a configuration delta attempts to
	// change the immutable owner_member_id.
	ErrOwnerMutation = errors.New("owner mutation")
	// ErrInvalidLimits is returned when a configuration delta sets a zeroed
	// limit.
	ErrInvalidLimits = errors.New("invalid limits")
	// ErrTransportTimeout names a host RPC that exceeds its deadline. The
	// sync engine returns the Host's own error unchanged and does not wrap
	// it with this sentinel.
	ErrTransportTimeout = errors.New("transport timeout")
	// ErrTransportLost names a lost connection to the host. The sync engine
	// does not return it; it returns the Host's own error unchanged.
	ErrTransportLost = errors.New("transport lost")
	// ErrDeserialization is returned when wire-format bytes fail to decode.
	ErrDeserialization = errors.New("deserialization failed")
)

// Component wraps err with a component tag, matching the compound
// apply_delta propagation rule of reporting "the first component error,
// with component context".
func Component(name string, err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, "%s", name)
}
