// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package room

import "github.com/riverchat/river-core/rids"

// ContentKind discriminates the variants of MessageContent.
type ContentKind string

const (
	ContentPublic         ContentKind = "public"
	ContentPrivate        ContentKind = "private"
	ContentEdit           ContentKind = "edit"
	ContentDelete         ContentKind = "delete"
	ContentReaction       ContentKind = "reaction"
	ContentRemoveReaction ContentKind = "remove_reaction"
)

// MessageContent is the tagged union every room message carries: either
// visible content (Public/Private) or an action that mutates the derived
// actions view (Edit/Delete/Reaction/RemoveReaction). Only the fields
// relevant to Kind are populated; this mirrors a Rust enum's variants as a
// flat, CBOR-friendly Go struct rather than an interface, since the wire
// format must be a single deterministic encoding per message.
type MessageContent struct {
	Kind ContentKind

	// Public
	PublicText string `cbor:",omitempty"`

	// Private
	PrivateCiphertext    []byte        `cbor:",omitempty"`
	PrivateNonce         [12]byte      `cbor:",omitempty"`
	PrivateSecretVersion rids.SecretVersion

	// Edit / Delete / Reaction / RemoveReaction all name a target message.
	Target rids.MessageId

	// Edit carries the replacement content, itself Public or Private.
	NewContent *MessageContent `cbor:",omitempty"`

	// Reaction / RemoveReaction
	Emoji string `cbor:",omitempty"`
}

// NewPublicContent builds a plaintext public message.
func NewPublicContent(text string) MessageContent {
	return MessageContent{Kind: ContentPublic, PublicText: text}
}

// NewPrivateContent builds an encrypted message for a private room.
func NewPrivateContent(ciphertext []byte, nonce [12]byte, version rids.SecretVersion) MessageContent {
	return MessageContent{Kind: ContentPrivate, PrivateCiphertext: ciphertext, PrivateNonce: nonce, PrivateSecretVersion: version}
}

// NewEditContent builds an edit action replacing target's effective content.
func NewEditContent(target rids.MessageId, newContent MessageContent) MessageContent {
	nc := newContent
	return MessageContent{Kind: ContentEdit, Target: target, NewContent: &nc}
}

// NewDeleteContent builds a delete action for target.
func NewDeleteContent(target rids.MessageId) MessageContent {
	return MessageContent{Kind: ContentDelete, Target: target}
}

// NewReactionContent builds a reaction action.
func NewReactionContent(target rids.MessageId, emoji string) MessageContent {
	return MessageContent{Kind: ContentReaction, Target: target, Emoji: emoji}
}

// NewRemoveReactionContent builds a reaction-removal action.
func NewRemoveReactionContent(target rids.MessageId, emoji string) MessageContent {
	return MessageContent{Kind: ContentRemoveReaction, Target: target, Emoji: emoji}
}

// IsAction reports whether this content is one of the action variants that
// mutates the derived actions view rather than displaying directly.
func (c MessageContent) IsAction() bool {
	switch c.Kind {
	case ContentEdit, ContentDelete, ContentReaction, ContentRemoveReaction:
		return true
	default:
		return false
	}
}

// ContentLen returns the size used against MaxMessageSize: the plaintext
// length for Public, the ciphertext length for Private, the replacement
// content's length for Edit, and zero for the other action variants.
func (c MessageContent) ContentLen() int {
	switch c.Kind {
	case ContentPublic:
		return len(c.PublicText)
	case ContentPrivate:
		return len(c.PrivateCiphertext)
	case ContentEdit:
		if c.NewContent != nil {
			return c.NewContent.ContentLen()
		}
		return 0
	default:
		return 0
	}
}

// AsPublicString returns the plaintext and true if this content is Public.
func (c MessageContent) AsPublicString() (string, bool) {
	if c.Kind != ContentPublic {
		return "", false
	}
	return c.PublicText, true
}
