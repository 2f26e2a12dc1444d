// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package rcbor provides the single canonical CBOR encoding used for every
// signed payload and every wire message in the room-state core. Two peers
// that encode the same logical value with this package MUST produce
// identical bytes; that byte-identity is what signatures and FastHash are
// computed over, so nothing in this codebase may reach for
// encoding/json or a second CBOR configuration.
package rcbor

import "github.com/fxamacker/cbor/v2"

var encMode = mustEncMode()

func mustEncMode() cbor.EncMode {
	opts := cbor.CoreDetEncOptions() // RFC 8949 §4.2 deterministic encoding
	mode, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	return mode
}

var decMode = mustDecMode()

func mustDecMode() cbor.DecMode {
	opts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
	}
	mode, err := opts.DecMode()
	if err != nil {
		panic(err)
	}
	return mode
}

// Marshal encodes v as canonical CBOR.
func Marshal(v interface{}) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes canonical CBOR into v, rejecting indefinite-length
// items and duplicate map keys so malformed wire input is caught early
// rather than silently accepted.
func Unmarshal(data []byte, v interface{}) error {
	return decMode.Unmarshal(data, v)
}

// MustMarshal encodes v as canonical CBOR and panics on error; used only
// where v's encodability is a program invariant (e.g. signing a value this
// package itself constructed), never on data from a remote peer.
func MustMarshal(v interface{}) []byte {
	b, err := Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
