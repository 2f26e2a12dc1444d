// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package room

import (
	"crypto/ed25519"
	"sort"

	"github.com/riverchat/river-core/rerr"
	"github.com/riverchat/river-core/rids"
)

// ActionsState is the view derived from the message log by one left-to-
// right pass after every apply: which messages are edited, which are
// deleted, and who reacted with what. It is never serialized and is
// rebuilt in full after every ApplyDelta.
type ActionsState struct {
	EditedContent map[rids.MessageId]MessageContent
	Deleted       map[rids.MessageId]struct{}
	Reactions     map[rids.MessageId]map[string]map[rids.MemberId]struct{}
}

func newActionsState() ActionsState {
	return ActionsState{
		EditedContent: make(map[rids.MessageId]MessageContent),
		Deleted:       make(map[rids.MessageId]struct{}),
		Reactions:     make(map[rids.MessageId]map[string]map[rids.MemberId]struct{}),
	}
}

// Messages is the append-only bounded log plus its derived Actions view.
type Messages struct {
	Recent  []AuthorizedMessage
	Actions ActionsState `cbor:"-"`
}

// MessagesSummary is the set of MessageIds a peer already has.
type MessagesSummary map[rids.MessageId]struct{}

// MessagesDelta carries messages present locally but absent from a remote
// summary.
type MessagesDelta struct {
	Added []AuthorizedMessage
}

// Verify checks the bound, that there are no duplicate MessageIds, and
// that every message verifies under its declared author's key (the owner's
// key for the owner, the member's registered key otherwise).
func (m *Messages) Verify(parent *State, params Parameters) error {
	if len(m.Recent) > parent.Configuration.Configuration.MaxRecentMessages {
		return rerr.Component("messages", rerr.ErrBoundExceeded)
	}
	ownerId := params.OwnerId()
	memberIdx := parent.Members.index()
	seen := make(map[rids.MessageId]struct{}, len(m.Recent))
	for _, am := range m.Recent {
		id := am.Id()
		if _, dup := seen[id]; dup {
			return rerr.Component("messages", errDuplicateMessage)
		}
		seen[id] = struct{}{}

		var authorVK ed25519.PublicKey
		if am.Message.Author == ownerId {
			authorVK = params.Owner
		} else if author, present := memberIdx[am.Message.Author]; present {
			authorVK = author.Member.MemberVK
		} else {
			return rerr.Component("messages", errUnauthorizedAuthor)
		}
		if err := am.VerifySignature(authorVK); err != nil {
			return rerr.Component("messages", err)
		}
	}
	return nil
}

// Summarize returns the set of MessageIds this peer has.
func (m *Messages) Summarize(parent *State, params Parameters) MessagesSummary {
	sum := make(MessagesSummary, len(m.Recent))
	for _, am := range m.Recent {
		sum[am.Id()] = struct{}{}
	}
	return sum
}

// Delta returns the messages absent from remoteSummary, or nil.
func (m *Messages) Delta(parent *State, params Parameters, remoteSummary MessagesSummary) *MessagesDelta {
	var added []AuthorizedMessage
	for _, am := range m.Recent {
		if _, present := remoteSummary[am.Id()]; !present {
			added = append(added, am)
		}
	}
	if len(added) == 0 {
		return nil
	}
	return &MessagesDelta{Added: added}
}

// ApplyDelta runs the seven-step algorithm of §4.6: filter incoming
// messages by privacy-mode/size/secret-version preconditions, dedupe,
// drop oversized and unauthored messages, sort, truncate to bound, and
// rebuild the derived actions view.
func (m *Messages) ApplyDelta(parent *State, params Parameters, delta *MessagesDelta) error {
	if delta != nil {
		existing := make(map[rids.MessageId]struct{}, len(m.Recent))
		for _, am := range m.Recent {
			existing[am.Id()] = struct{}{}
		}

		privacyMode := parent.Configuration.Configuration.PrivacyMode
		for _, am := range delta.Added {
			id := am.Id()
			if _, dup := existing[id]; dup {
				continue
			}
			if !acceptableUnderPrivacyMode(am, privacyMode, parent) {
				continue
			}
			existing[id] = struct{}{}
			m.Recent = append(m.Recent, am)
		}
	}

	cfg := parent.Configuration.Configuration

	m.Recent = filterMessages(m.Recent, func(am AuthorizedMessage) bool {
		return am.Message.Content.ContentLen() <= cfg.MaxMessageSize
	})

	ownerId := params.OwnerId()
	memberIdx := parent.Members.index()
	m.Recent = filterMessages(m.Recent, func(am AuthorizedMessage) bool {
		var authorVK ed25519.PublicKey
		if am.Message.Author == ownerId {
			authorVK = params.Owner
		} else if author, present := memberIdx[am.Message.Author]; present {
			authorVK = author.Member.MemberVK
		} else {
			return false
		}
		return am.VerifySignature(authorVK) == nil
	})

	sort.SliceStable(m.Recent, func(i, j int) bool {
		ti, tj := m.Recent[i].Message.Time, m.Recent[j].Message.Time
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return m.Recent[i].Id() < m.Recent[j].Id()
	})

	if len(m.Recent) > cfg.MaxRecentMessages {
		m.Recent = m.Recent[len(m.Recent)-cfg.MaxRecentMessages:]
	}

	m.rebuildActionsState()
	return nil
}

func filterMessages(in []AuthorizedMessage, keep func(AuthorizedMessage) bool) []AuthorizedMessage {
	out := in[:0:0]
	for _, am := range in {
		if keep(am) {
			out = append(out, am)
		}
	}
	return out
}

// acceptableUnderPrivacyMode implements step 1 of §4.6's apply_delta
// algorithm: the preconditions under which a single incoming message may
// be inserted at all.
func acceptableUnderPrivacyMode(am AuthorizedMessage, mode PrivacyMode, parent *State) bool {
	content := am.Message.Content
	switch content.Kind {
	case ContentPublic:
		return mode != PrivacyPrivate
	case ContentPrivate:
		if mode != PrivacyPrivate {
			return true
		}
		return content.PrivateSecretVersion == parent.Secrets.CurrentVersion &&
			parent.Secrets.HasCompleteDistribution(&parent.Members)
	case ContentEdit:
		if mode != PrivacyPrivate {
			return true
		}
		nc := content.NewContent
		return nc != nil && nc.Kind == ContentPrivate && nc.PrivateSecretVersion == parent.Secrets.CurrentVersion
	default:
		// Delete, Reaction, RemoveReaction are always allowed; their
		// authorization is enforced when the actions view is rebuilt.
		return true
	}
}

// rebuildActionsState is the one left-to-right pass of §4.6: it builds the
// authors index from non-action messages, then folds each action message
// into the derived view in log order. All prior derived state is
// discarded.
func (m *Messages) rebuildActionsState() {
	actions := newActionsState()

	authors := make(map[rids.MessageId]rids.MemberId, len(m.Recent))
	for _, am := range m.Recent {
		if !am.Message.Content.IsAction() {
			authors[am.Id()] = am.Message.Author
		}
	}

	for _, am := range m.Recent {
		content := am.Message.Content
		actor := am.Message.Author

		switch content.Kind {
		case ContentEdit:
			if authorOf, ok := authors[content.Target]; ok && actor == authorOf {
				if _, deleted := actions.Deleted[content.Target]; !deleted && content.NewContent != nil {
					actions.EditedContent[content.Target] = *content.NewContent
				}
			}
		case ContentDelete:
			if authorOf, ok := authors[content.Target]; ok && actor == authorOf {
				actions.Deleted[content.Target] = struct{}{}
				delete(actions.EditedContent, content.Target)
			}
		case ContentReaction:
			if _, ok := authors[content.Target]; ok {
				if _, deleted := actions.Deleted[content.Target]; !deleted {
					byEmoji, ok := actions.Reactions[content.Target]
					if !ok {
						byEmoji = make(map[string]map[rids.MemberId]struct{})
						actions.Reactions[content.Target] = byEmoji
					}
					actors, ok := byEmoji[content.Emoji]
					if !ok {
						actors = make(map[rids.MemberId]struct{})
						byEmoji[content.Emoji] = actors
					}
					actors[actor] = struct{}{}
				}
			}
		case ContentRemoveReaction:
			if byEmoji, ok := actions.Reactions[content.Target]; ok {
				if actors, ok := byEmoji[content.Emoji]; ok {
					delete(actors, actor)
					if len(actors) == 0 {
						delete(byEmoji, content.Emoji)
					}
				}
				if len(byEmoji) == 0 {
					delete(actions.Reactions, content.Target)
				}
			}
		}
	}

	m.Actions = actions
}

// DisplayMessages returns the non-action, non-deleted messages in log
// order.
func (m *Messages) DisplayMessages() []AuthorizedMessage {
	var out []AuthorizedMessage
	for _, am := range m.Recent {
		if am.Message.Content.IsAction() {
			continue
		}
		if _, deleted := m.Actions.Deleted[am.Id()]; deleted {
			continue
		}
		out = append(out, am)
	}
	return out
}

// EffectiveContent returns the edited content for id if present, otherwise
// msg's own content.
func (m *Messages) EffectiveContent(msg AuthorizedMessage) MessageContent {
	if edited, ok := m.Actions.EditedContent[msg.Id()]; ok {
		return edited
	}
	return msg.Message.Content
}

// IsEdited reports whether id has a pending edit in the actions view.
func (m *Messages) IsEdited(id rids.MessageId) bool {
	_, ok := m.Actions.EditedContent[id]
	return ok
}

// IsDeleted reports whether id has been deleted in the actions view.
func (m *Messages) IsDeleted(id rids.MessageId) bool {
	_, ok := m.Actions.Deleted[id]
	return ok
}

// ReactionsFor returns the emoji -> reacting members map for id.
func (m *Messages) ReactionsFor(id rids.MessageId) map[string]map[rids.MemberId]struct{} {
	return m.Actions.Reactions[id]
}
