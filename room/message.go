// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package room

import (
	"crypto/ed25519"
	"time"

	"github.com/riverchat/river-core/rcrypto"
	"github.com/riverchat/river-core/rids"
)

// Message is the signed payload of a single log entry.
type Message struct {
	RoomOwner rids.MemberId
	Author    rids.MemberId
	Time      time.Time
	Content   MessageContent
}

// AuthorizedMessage is a Message signed by its author.
type AuthorizedMessage struct {
	Message   Message
	Signature []byte
}

// Id returns the MessageId derived from the message's signature bytes.
func (am AuthorizedMessage) Id() rids.MessageId {
	return rids.MessageIdOf(am.Signature)
}

// VerifySignature checks Signature against authorVK.
func (am AuthorizedMessage) VerifySignature(authorVK ed25519.PublicKey) error {
	return rcrypto.VerifyCanonical(authorVK, am.Message, am.Signature)
}

// NewAuthorizedMessage signs msg with the author's secret key.
func NewAuthorizedMessage(msg Message, authorSK ed25519.PrivateKey) (AuthorizedMessage, error) {
	sig, err := rcrypto.SignCanonical(authorSK, msg)
	if err != nil {
		return AuthorizedMessage{}, err
	}
	return AuthorizedMessage{Message: msg, Signature: sig}, nil
}
