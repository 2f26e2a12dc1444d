// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package room

import (
	"crypto/ed25519"
	"time"

	"github.com/riverchat/river-core/rcrypto"
	"github.com/riverchat/river-core/rids"
)

// CipherSpec identifies the AEAD scheme a secret version uses. Only one is
// defined today; the field exists so a future rotation can change schemes
// without breaking old records.
type CipherSpec string

// Aes256Gcm is the only cipher spec this implementation issues. Secrets
// does not check a record's CipherSpec when applying a delta.
const Aes256Gcm CipherSpec = "AES-256-GCM"

// SecretVersionRecord announces a new room-secret version. It carries no
// key material itself; the key is distributed via per-member Envelopes.
type SecretVersionRecord struct {
	Version    rids.SecretVersion
	CipherSpec CipherSpec
	CreatedAt  time.Time
}

// AuthorizedSecretVersionRecord is a SecretVersionRecord signed by the
// owner.
type AuthorizedSecretVersionRecord struct {
	Record    SecretVersionRecord
	Signature []byte
}

// VerifySignature checks Signature against the owner's verifying key.
func (r AuthorizedSecretVersionRecord) VerifySignature(ownerVK ed25519.PublicKey) error {
	return rcrypto.VerifyCanonical(ownerVK, r.Record, r.Signature)
}

// NewAuthorizedSecretVersionRecord signs record with the owner's secret key.
func NewAuthorizedSecretVersionRecord(record SecretVersionRecord, ownerSK ed25519.PrivateKey) (AuthorizedSecretVersionRecord, error) {
	sig, err := rcrypto.SignCanonical(ownerSK, record)
	if err != nil {
		return AuthorizedSecretVersionRecord{}, err
	}
	return AuthorizedSecretVersionRecord{Record: record, Signature: sig}, nil
}

// EncryptedSecretForMember is one member's ECIES-sealed copy of a secret
// version's key material.
type EncryptedSecretForMember struct {
	MemberId           rids.MemberId
	SecretVersion      rids.SecretVersion
	Ciphertext         []byte
	Nonce              [12]byte
	EphemeralPublicKey [32]byte
	Provider           string
}

// AuthorizedEncryptedSecretForMember is an EncryptedSecretForMember signed
// by the owner.
type AuthorizedEncryptedSecretForMember struct {
	Envelope  EncryptedSecretForMember
	Signature []byte
}

// VerifySignature checks Signature against the owner's verifying key.
func (e AuthorizedEncryptedSecretForMember) VerifySignature(ownerVK ed25519.PublicKey) error {
	return rcrypto.VerifyCanonical(ownerVK, e.Envelope, e.Signature)
}

// NewAuthorizedEnvelope seals secretKey for recipientVK and signs the
// resulting envelope with the owner's secret key.
func NewAuthorizedEnvelope(memberId rids.MemberId, version rids.SecretVersion, recipientVK ed25519.PublicKey, secretKey []byte, ownerSK ed25519.PrivateKey) (AuthorizedEncryptedSecretForMember, error) {
	sealed, err := rcrypto.Seal(recipientVK, secretKey)
	if err != nil {
		return AuthorizedEncryptedSecretForMember{}, err
	}
	env := EncryptedSecretForMember{
		MemberId:           memberId,
		SecretVersion:      version,
		Ciphertext:         sealed.Ciphertext,
		Nonce:              sealed.Nonce,
		EphemeralPublicKey: sealed.EphemeralPublicKey,
		Provider:           "ecies-x25519-aes256gcm",
	}
	sig, err := rcrypto.SignCanonical(ownerSK, env)
	if err != nil {
		return AuthorizedEncryptedSecretForMember{}, err
	}
	return AuthorizedEncryptedSecretForMember{Envelope: env, Signature: sig}, nil
}

// Open decrypts the envelope's key material for recipientSK.
func (e AuthorizedEncryptedSecretForMember) Open(recipientSK ed25519.PrivateKey) ([]byte, error) {
	return rcrypto.Open(recipientSK, &rcrypto.Envelope{
		EphemeralPublicKey: e.Envelope.EphemeralPublicKey,
		Nonce:              e.Envelope.Nonce,
		Ciphertext:         e.Envelope.Ciphertext,
	})
}
