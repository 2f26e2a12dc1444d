// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package syncengine

import (
	"github.com/riverchat/river-core/rcbor"
	"github.com/riverchat/river-core/rids"
	"github.com/riverchat/river-core/room"
)

// fingerprint is the content hash of a room.State compared against
// entry.LastHash after every local or remote mutation to decide whether an
// UPDATE must be emitted (§4.9). It is FastHash over the state's canonical
// CBOR encoding.
func fingerprint(s *room.State) (uint64, error) {
	data, err := rcbor.Marshal(s)
	if err != nil {
		return 0, err
	}
	return rids.FastHash(data), nil
}

// updateSize returns the canonical-CBOR byte size of whichever of delta or
// full is present, for metrics observation.
func updateSize(delta *room.Delta, full *room.State) (int, error) {
	if delta != nil {
		data, err := rcbor.Marshal(delta)
		if err != nil {
			return 0, err
		}
		return len(data), nil
	}
	if full != nil {
		data, err := rcbor.Marshal(full)
		if err != nil {
			return 0, err
		}
		return len(data), nil
	}
	return 0, nil
}
