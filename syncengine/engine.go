// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package syncengine

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/riverchat/river-core/rids"
	"github.com/riverchat/river-core/rlog"
	"github.com/riverchat/river-core/room"
	"github.com/riverchat/river-core/syncmetrics"
)

// Engine reconciles every room this peer participates in against the host
// contract runtime. It is single-threaded cooperative per spec §5: all
// methods are meant to be called from one goroutine, and no background
// goroutine mutates an entry behind the caller's back.
type Engine struct {
	host    Host
	cfg     Config
	log     rlog.Logger
	metrics *syncmetrics.Metrics
	status  EngineStatus
	rooms   map[rids.ContractKey]*entry
}

// New builds an Engine. log may be rlog.NewNoOp() if the caller has not
// wired up structured logging. metrics may be nil to disable Prometheus
// observation entirely.
func New(host Host, cfg Config, log rlog.Logger, metrics *syncmetrics.Metrics) *Engine {
	return &Engine{
		host:    host,
		cfg:     cfg,
		log:     log,
		metrics: metrics,
		status:  EngineConnecting,
		rooms:   make(map[rids.ContractKey]*entry),
	}
}

// Status returns the process-wide connection status.
func (e *Engine) Status() EngineStatus { return e.status }

// RoomStatus returns the per-room sync status, or RoomError with the
// reason "unknown room" if key is not tracked.
func (e *Engine) RoomStatus(key rids.ContractKey) (RoomStatus, string) {
	ent, ok := e.rooms[key]
	if !ok {
		return RoomError, "unknown room"
	}
	return ent.Status, ent.ErrReason
}

// CreateRoom puts a brand-new room to the host. Once the host acknowledges
// the Put, the room is tracked under the returned key as Unsubscribed; a
// room whose Put fails is not tracked.
func (e *Engine) CreateRoom(ctx context.Context, params room.Parameters, initial *room.State) (rids.ContractKey, error) {
	if err := initial.Verify(params); err != nil {
		return "", errors.Wrap(err, "create room: initial state")
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.PutTimeout)
	defer cancel()

	ent := newEntry("", params, initial)
	ent.Status = RoomPutting

	start := time.Now()
	key, err := e.host.Put(ctx, params, initial)
	e.observeRPC("put", start, err)
	if err != nil {
		ent.setError(err.Error())
		e.log.Warn("put failed", rlog.Err(err))
		return "", err
	}

	ent.Key = key
	ent.Status = RoomUnsubscribed
	e.rooms[key] = ent
	e.log.Info("room put", rlog.String("key", string(key)))
	e.observeRoomStatuses()
	return key, nil
}

// PutSettled pushes the room's full state as an UPDATE and transitions
// Putting/Unsubscribed appropriately. Per §4.9, after a PutResponse the
// caller waits cfg.PutSettleDelay (to let the host runtime register the
// new contract) before calling this — the engine itself spawns no timer,
// matching §5's "no background threads" resource policy.
func (e *Engine) PutSettled(ctx context.Context, key rids.ContractKey) error {
	ent, ok := e.rooms[key]
	if !ok {
		return errors.Newf("put settled: unknown room %s", key)
	}
	if err := e.pushUpdate(ctx, ent, nil, ent.State); err != nil {
		return err
	}
	ent.Status = RoomUnsubscribed
	hash, err := fingerprint(ent.State)
	if err != nil {
		return errors.Wrap(err, "put settled: fingerprint")
	}
	ent.LastHash = hash
	ent.LastSummary = ent.State.Summarize(ent.Params)
	return nil
}

// TrackInvitation registers a room this peer has been invited to but not
// yet fetched: the first successful Get folds invitation into the state
// and emits the resulting delta, per §4.9's GetResponse handling.
func (e *Engine) TrackInvitation(key rids.ContractKey, params room.Parameters, invitation PendingInvitation) {
	ent, ok := e.rooms[key]
	if !ok {
		ent = newEntry(key, params, &room.State{})
		ent.Status = RoomUnsubscribed
		e.rooms[key] = ent
	}
	ent.Invitation = &invitation
}

// Subscribe asks the host to start pushing updates for key.
func (e *Engine) Subscribe(ctx context.Context, key rids.ContractKey) error {
	ent, ok := e.rooms[key]
	if !ok {
		return errors.Newf("subscribe: unknown room %s", key)
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.SubscribeTimeout)
	defer cancel()

	ent.Status = RoomSubscribing
	var summary *room.Summary
	if ent.State != nil {
		s := ent.State.Summarize(ent.Params)
		summary = &s
	}

	start := time.Now()
	subscribed, err := e.host.Subscribe(ctx, key, summary)
	e.observeRPC("subscribe", start, err)
	if err != nil {
		ent.setError(err.Error())
		e.log.Warn("subscribe failed", rlog.String("key", string(key)), rlog.Err(err))
		return err
	}
	if subscribed {
		ent.Status = RoomSubscribed
	}
	e.observeRoomStatuses()
	return nil
}

// Get fetches the full state for key, merges it locally, and — if an
// invitation is pending for this room — folds it in and pushes the
// resulting delta as an UPDATE, exactly the GetResponse handling of §4.9.
func (e *Engine) Get(ctx context.Context, key rids.ContractKey, subscribe bool) error {
	ent, ok := e.rooms[key]
	if !ok {
		return errors.Newf("get: unknown room %s", key)
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.GetTimeout)
	defer cancel()

	start := time.Now()
	remote, err := e.host.Get(ctx, key, subscribe)
	e.observeRPC("get", start, err)
	if err != nil {
		ent.setError(err.Error())
		e.log.Warn("get failed", rlog.String("key", string(key)), rlog.Err(err))
		return err
	}

	if ent.State == nil {
		ent.State = &room.State{}
	}
	if err := ent.State.Merge(remote, ent.Params); err != nil {
		return errors.Wrap(err, "get: merge remote state")
	}
	if subscribe {
		ent.Status = RoomSubscribed
	}

	if ent.Invitation != nil {
		if err := e.foldInvitation(ctx, ent); err != nil {
			return err
		}
	}

	return e.syncIfChanged(ctx, ent)
}

// foldInvitation inserts the pending invitee's member and member-info
// records into ent.State and pushes the delta, once the room's full state
// has been fetched and merged.
func (e *Engine) foldInvitation(ctx context.Context, ent *entry) error {
	inv := ent.Invitation
	before := ent.State.Summarize(ent.Params)

	ent.State.Members.Members = append(ent.State.Members.Members, inv.Member)
	if err := ent.State.Members.Verify(ent.State, ent.Params); err != nil {
		ent.State.Members.Members = ent.State.Members.Members[:len(ent.State.Members.Members)-1]
		return errors.Wrap(err, "fold invitation: member")
	}
	if inv.MemberInfo != nil {
		ent.State.MemberInfo.Info = append(ent.State.MemberInfo.Info, *inv.MemberInfo)
	}

	delta := ent.State.ComputeDelta(ent.Params, before)
	ent.Invitation = nil
	if delta == nil {
		return nil
	}
	return e.pushUpdate(ctx, ent, delta, nil)
}

// Notify dispatches an UpdateNotification: a delta is applied in place, a
// full state is merged, per §4.9.
func (e *Engine) Notify(ctx context.Context, n Notification) error {
	ent, ok := e.rooms[n.Key]
	if !ok {
		return errors.Newf("notify: unknown room %s", n.Key)
	}

	switch {
	case n.Delta != nil:
		if err := ent.State.ApplyDelta(ent.Params, n.Delta); err != nil {
			e.log.Warn("dropping notification delta", rlog.String("key", string(n.Key)), rlog.Err(err))
			if e.metrics != nil {
				e.metrics.ObserveUpdateDropped()
			}
			return nil
		}
	case n.Full != nil:
		if err := ent.State.Merge(n.Full, ent.Params); err != nil {
			e.log.Warn("dropping notification state", rlog.String("key", string(n.Key)), rlog.Err(err))
			if e.metrics != nil {
				e.metrics.ObserveUpdateDropped()
			}
			return nil
		}
	}

	return e.syncIfChanged(ctx, ent)
}

// SyncLocal recomputes ent's fingerprint after a local mutation (the
// caller already applied it) and pushes an UPDATE if it diverges from the
// last-synced hash.
func (e *Engine) SyncLocal(ctx context.Context, key rids.ContractKey) error {
	ent, ok := e.rooms[key]
	if !ok {
		return errors.Newf("sync: unknown room %s", key)
	}
	return e.syncIfChanged(ctx, ent)
}

// syncIfChanged is the fingerprint comparison at the heart of §4.9: after
// any local or remote mutation, compare a content hash of the state to
// last_synced_hash, and emit an UPDATE carrying the compound delta on
// mismatch.
func (e *Engine) syncIfChanged(ctx context.Context, ent *entry) error {
	hash, err := fingerprint(ent.State)
	if err != nil {
		return errors.Wrap(err, "sync: fingerprint")
	}
	if hash == ent.LastHash {
		return nil
	}

	delta := ent.State.ComputeDelta(ent.Params, ent.LastSummary)
	if delta == nil {
		ent.LastHash = hash
		return nil
	}
	if err := e.pushUpdate(ctx, ent, delta, nil); err != nil {
		return err
	}
	ent.LastHash = hash
	ent.LastSummary = ent.State.Summarize(ent.Params)
	return nil
}

// ReconnectDelay returns how long the caller should wait before retrying
// key's subscription after a TransportLost error, advancing key's backoff
// schedule. Call BackoffReset once the connection is reestablished.
func (e *Engine) ReconnectDelay(key rids.ContractKey) (time.Duration, error) {
	ent, ok := e.rooms[key]
	if !ok {
		return 0, errors.Newf("reconnect: unknown room %s", key)
	}
	if e.metrics != nil {
		e.metrics.ObserveReconnect()
	}
	return ent.backoff.Next(), nil
}

// BackoffReset clears key's reconnect attempt counter after a successful
// resubscription.
func (e *Engine) BackoffReset(key rids.ContractKey) {
	if ent, ok := e.rooms[key]; ok {
		ent.backoff.Reset()
	}
}

func (e *Engine) pushUpdate(ctx context.Context, ent *entry, delta *room.Delta, full *room.State) error {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.UpdateTimeout)
	defer cancel()

	start := time.Now()
	err := e.host.Update(ctx, ent.Key, delta, full)
	e.observeRPC("update", start, err)
	if err != nil {
		e.log.Warn("update failed", rlog.String("key", string(ent.Key)), rlog.Err(err))
		return err
	}
	if e.metrics != nil {
		if n, encErr := updateSize(delta, full); encErr == nil {
			e.metrics.ObserveDeltaSent(n)
		}
	}
	return nil
}

func (e *Engine) observeRPC(op string, start time.Time, err error) {
	if e.metrics != nil {
		e.metrics.ObserveRPC(op, time.Since(start), err)
	}
}

// observeRoomStatuses recomputes the per-status room-count gauge from
// scratch across every tracked room.
func (e *Engine) observeRoomStatuses() {
	if e.metrics == nil {
		return
	}
	counts := make(map[RoomStatus]int)
	for _, ent := range e.rooms {
		counts[ent.Status]++
	}
	for _, s := range []RoomStatus{
		RoomNeedsPut, RoomPutting, RoomUnsubscribed, RoomSubscribing, RoomSubscribed, RoomError,
	} {
		e.metrics.ObserveRoomStatus(s.String(), counts[s])
	}
}
