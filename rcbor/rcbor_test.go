// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rcbor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type sample struct {
	A int
	B string
	C []byte
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	require := require.New(t)

	in := sample{A: 7, B: "hello", C: []byte{1, 2, 3}}
	data, err := Marshal(in)
	require.NoError(err)

	var out sample
	require.NoError(Unmarshal(data, &out))
	require.Equal(in, out)
}

func TestMarshalIsDeterministic(t *testing.T) {
	require := require.New(t)

	in := sample{A: 42, B: "room", C: []byte{9, 9, 9}}
	a, err := Marshal(in)
	require.NoError(err)
	b, err := Marshal(in)
	require.NoError(err)
	require.Equal(a, b)
}

func TestUnmarshalRejectsDuplicateMapKeys(t *testing.T) {
	require := require.New(t)

	// {0: 1, 0: 2} as a definite-length map of two entries sharing key 0.
	malformed := []byte{0xa2, 0x00, 0x01, 0x00, 0x02}
	var out map[int]int
	require.Error(Unmarshal(malformed, &out))
}

func TestMustMarshalPanicsOnUnencodable(t *testing.T) {
	require := require.New(t)
	require.Panics(func() {
		MustMarshal(make(chan int))
	})
}
