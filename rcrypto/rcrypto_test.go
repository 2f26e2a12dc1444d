// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rcrypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignVerifyCanonical(t *testing.T) {
	require := require.New(t)

	vk, sk, err := GenerateKey()
	require.NoError(err)

	payload := map[string]int{"a": 1, "b": 2}
	sig, err := SignCanonical(sk, payload)
	require.NoError(err)
	require.Len(sig, 64)

	require.NoError(VerifyCanonical(vk, payload, sig))

	other := map[string]int{"a": 1, "b": 3}
	require.Error(VerifyCanonical(vk, other, sig))

	otherVK, _, err := GenerateKey()
	require.NoError(err)
	require.Error(VerifyCanonical(otherVK, payload, sig))
}

func TestSealOpenRoundTrip(t *testing.T) {
	require := require.New(t)

	recipientVK, recipientSK, err := GenerateKey()
	require.NoError(err)

	plaintext := []byte("a forward secret secret")
	env, err := Seal(recipientVK, plaintext)
	require.NoError(err)
	require.Len(env.EphemeralPublicKey, 32)
	require.Len(env.Nonce, 12)

	opened, err := Open(recipientSK, env)
	require.NoError(err)
	require.Equal(plaintext, opened)
}

func TestOpenFailsForWrongRecipient(t *testing.T) {
	require := require.New(t)

	recipientVK, _, err := GenerateKey()
	require.NoError(err)
	_, wrongSK, err := GenerateKey()
	require.NoError(err)

	env, err := Seal(recipientVK, []byte("hello"))
	require.NoError(err)

	_, err = Open(wrongSK, env)
	require.Error(err)
}

func TestSealPrivateMessageRoundTrip(t *testing.T) {
	require := require.New(t)

	secret := make([]byte, 32)
	for i := range secret {
		secret[i] = byte(i)
	}

	ciphertext, nonce, err := SealPrivateMessage(secret, []byte("room secret message"))
	require.NoError(err)

	plaintext, err := OpenPrivateMessage(secret, ciphertext, nonce)
	require.NoError(err)
	require.Equal([]byte("room secret message"), plaintext)

	wrongSecret := make([]byte, 32)
	_, err = OpenPrivateMessage(wrongSecret, ciphertext, nonce)
	require.Error(err)
}
