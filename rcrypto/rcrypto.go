// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package rcrypto implements the Ed25519 signing and ECIES envelope
// primitives every room-state component builds on: canonical-CBOR signing
// and verification of authorized records, and the X25519+AES-256-GCM
// envelope scheme used to distribute the room secret.
package rcrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha512"
	"fmt"

	"filippo.io/edwards25519"
	"golang.org/x/crypto/curve25519"

	"github.com/riverchat/river-core/rcbor"
	"github.com/riverchat/river-core/rerr"
)

// SignatureSize is the length in bytes of a raw Ed25519 signature.
const SignatureSize = ed25519.SignatureSize // 64

// VerifyingKeySize is the length in bytes of a raw Ed25519 public key.
const VerifyingKeySize = ed25519.PublicKeySize // 32

// GenerateKey produces a fresh Ed25519 keypair for a new room owner or
// member.
func GenerateKey() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	return ed25519.GenerateKey(rand.Reader)
}

// SignCanonical signs the canonical CBOR encoding of v and returns the raw
// 64-byte signature.
func SignCanonical(sk ed25519.PrivateKey, v interface{}) ([]byte, error) {
	payload, err := rcbor.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode payload for signing: %w", err)
	}
	return ed25519.Sign(sk, payload), nil
}

// VerifyCanonical verifies sig over the canonical CBOR encoding of v against
// vk, returning rerr.ErrInvalidSignature on any failure (malformed key,
// malformed signature, or a genuine mismatch).
func VerifyCanonical(vk ed25519.PublicKey, v interface{}, sig []byte) error {
	if len(vk) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return rerr.ErrInvalidSignature
	}
	payload, err := rcbor.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode payload for verification: %w", err)
	}
	if !ed25519.Verify(vk, payload, sig) {
		return rerr.ErrInvalidSignature
	}
	return nil
}

// ed25519PublicToX25519 converts an Ed25519 (twisted Edwards) verifying key
// to its X25519 (Montgomery) equivalent, as used by the ECIES envelope's
// recipient side.
func ed25519PublicToX25519(vk ed25519.PublicKey) ([]byte, error) {
	if len(vk) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("ed25519 public key must be %d bytes", ed25519.PublicKeySize)
	}
	p, err := new(edwards25519.Point).SetBytes(vk)
	if err != nil {
		return nil, fmt.Errorf("decode edwards point: %w", err)
	}
	return p.BytesMontgomery(), nil
}

// ed25519PrivateToX25519 derives the X25519 scalar corresponding to an
// Ed25519 signing key, the same seed-hash-and-clamp construction used by
// libsodium's crypto_sign_ed25519_sk_to_curve25519.
func ed25519PrivateToX25519(sk ed25519.PrivateKey) [32]byte {
	h := sha512.Sum512(sk.Seed())
	var out [32]byte
	copy(out[:], h[:32])
	out[0] &= 248
	out[31] &= 127
	out[31] |= 64
	return out
}

// Envelope is a sealed ECIES ciphertext addressed to a single Ed25519
// verifying key.
type Envelope struct {
	EphemeralPublicKey [32]byte
	Nonce              [12]byte
	Ciphertext         []byte
}

// Seal encrypts plaintext for recipientVK using an ephemeral X25519 keypair,
// a raw ECDH shared secret as the AES-256-GCM key (no HKDF, per the wire
// spec), and a random 12-byte nonce.
func Seal(recipientVK ed25519.PublicKey, plaintext []byte) (*Envelope, error) {
	recipientX, err := ed25519PublicToX25519(recipientVK)
	if err != nil {
		return nil, err
	}

	var ephPriv [32]byte
	if _, err := rand.Read(ephPriv[:]); err != nil {
		return nil, err
	}
	ephPub, err := curve25519.X25519(ephPriv[:], curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("derive ephemeral public key: %w", err)
	}

	shared, err := curve25519.X25519(ephPriv[:], recipientX)
	if err != nil {
		return nil, fmt.Errorf("ecdh: %w", err)
	}

	aead, err := newAESGCM(shared)
	if err != nil {
		return nil, err
	}

	env := &Envelope{Ciphertext: nil}
	copy(env.EphemeralPublicKey[:], ephPub)
	if _, err := rand.Read(env.Nonce[:]); err != nil {
		return nil, err
	}
	env.Ciphertext = aead.Seal(nil, env.Nonce[:], plaintext, nil)
	return env, nil
}

// Open decrypts an Envelope addressed to recipientSK.
func Open(recipientSK ed25519.PrivateKey, env *Envelope) ([]byte, error) {
	recipientX := ed25519PrivateToX25519(recipientSK)

	shared, err := curve25519.X25519(recipientX[:], env.EphemeralPublicKey[:])
	if err != nil {
		return nil, fmt.Errorf("ecdh: %w", err)
	}

	aead, err := newAESGCM(shared)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, env.Nonce[:], env.Ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("open envelope: %w", err)
	}
	return plaintext, nil
}

func newAESGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// SealPrivateMessage encrypts a plaintext room message under the current
// group secret with a random 12-byte nonce, returning ciphertext and nonce
// separately as the wire format (MessageContent::Private) requires.
func SealPrivateMessage(secret []byte, plaintext []byte) (ciphertext []byte, nonce [12]byte, err error) {
	aead, err := newAESGCM(secret)
	if err != nil {
		return nil, nonce, err
	}
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, nonce, err
	}
	ciphertext = aead.Seal(nil, nonce[:], plaintext, nil)
	return ciphertext, nonce, nil
}

// OpenPrivateMessage decrypts a room message under the group secret.
func OpenPrivateMessage(secret []byte, ciphertext []byte, nonce [12]byte) ([]byte, error) {
	aead, err := newAESGCM(secret)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, nonce[:], ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("open private message: %w", err)
	}
	return plaintext, nil
}
