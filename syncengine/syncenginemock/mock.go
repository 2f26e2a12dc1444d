// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package syncenginemock provides a function-field test double for
// syncengine.Host, in the style of the codebase's other hand-written VM
// mocks: every method is backed by an optional func field, and a Cant*
// flag fails the test if the method is called without one set.
package syncenginemock

import (
	"context"
	"testing"

	"github.com/riverchat/river-core/rids"
	"github.com/riverchat/river-core/room"
	"github.com/riverchat/river-core/syncengine"
)

var _ syncengine.Host = (*Host)(nil)

// Host is a test double for syncengine.Host.
type Host struct {
	T *testing.T

	CantPut       bool
	CantSubscribe bool
	CantGet       bool
	CantUpdate    bool

	PutF       func(ctx context.Context, params room.Parameters, initial *room.State) (rids.ContractKey, error)
	SubscribeF func(ctx context.Context, key rids.ContractKey, summary *room.Summary) (bool, error)
	GetF       func(ctx context.Context, key rids.ContractKey, subscribe bool) (*room.State, error)
	UpdateF    func(ctx context.Context, key rids.ContractKey, delta *room.Delta, full *room.State) error
}

func (h *Host) Put(ctx context.Context, params room.Parameters, initial *room.State) (rids.ContractKey, error) {
	if h.PutF != nil {
		return h.PutF(ctx, params, initial)
	}
	if h.CantPut && h.T != nil {
		h.T.Fatal("unexpected Put")
	}
	return "", nil
}

func (h *Host) Subscribe(ctx context.Context, key rids.ContractKey, summary *room.Summary) (bool, error) {
	if h.SubscribeF != nil {
		return h.SubscribeF(ctx, key, summary)
	}
	if h.CantSubscribe && h.T != nil {
		h.T.Fatal("unexpected Subscribe")
	}
	return false, nil
}

func (h *Host) Get(ctx context.Context, key rids.ContractKey, subscribe bool) (*room.State, error) {
	if h.GetF != nil {
		return h.GetF(ctx, key, subscribe)
	}
	if h.CantGet && h.T != nil {
		h.T.Fatal("unexpected Get")
	}
	return nil, nil
}

func (h *Host) Update(ctx context.Context, key rids.ContractKey, delta *room.Delta, full *room.State) error {
	if h.UpdateF != nil {
		return h.UpdateF(ctx, key, delta, full)
	}
	if h.CantUpdate && h.T != nil {
		h.T.Fatal("unexpected Update")
	}
	return nil
}
