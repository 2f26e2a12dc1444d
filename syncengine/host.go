// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package syncengine reconciles a peer's local room.State against the host
// contract runtime: put, subscribe, get, and update, per spec §4.9. The
// engine treats the host as a best-effort gossip fabric — any operation may
// be retried, any notification may arrive out of order — because
// room.State.ApplyDelta and room.State.Merge are commutative and
// idempotent.
package syncengine

import (
	"context"

	"github.com/riverchat/river-core/rids"
	"github.com/riverchat/river-core/room"
)

// Host is the external contract runtime collaborator every Engine talks
// to. It is the sole suspension point in the core: every call may block on
// network I/O and must honor ctx's deadline.
type Host interface {
	// Put publishes a brand-new contract instance with its initial state
	// and returns the ContractKey the host assigned it.
	Put(ctx context.Context, params room.Parameters, initial *room.State) (rids.ContractKey, error)

	// Subscribe asks the host to start pushing UpdateNotifications for
	// key. summary, if non-nil, lets the host skip sending records this
	// peer already has.
	Subscribe(ctx context.Context, key rids.ContractKey, summary *room.Summary) (subscribed bool, err error)

	// Get fetches the full current state for key. If subscribe is true,
	// the host also begins a subscription as a side effect of this call.
	Get(ctx context.Context, key rids.ContractKey, subscribe bool) (*room.State, error)

	// Update pushes a delta (or, if full is non-nil, the full state) for
	// key. It returns only an error; on a best-effort fabric the caller
	// learns of the outcome only via a later UpdateNotification.
	Update(ctx context.Context, key rids.ContractKey, delta *room.Delta, full *room.State) error
}

// Notification is an asynchronous message the host delivers about a
// subscribed room: either a delta to apply, or (rarely) a replacement full
// state to merge.
type Notification struct {
	Key   rids.ContractKey
	Delta *room.Delta
	Full  *room.State
}
