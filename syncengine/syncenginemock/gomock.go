// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package syncenginemock

import (
	"context"
	"reflect"

	"go.uber.org/mock/gomock"

	"github.com/riverchat/river-core/rids"
	"github.com/riverchat/river-core/room"
	"github.com/riverchat/river-core/syncengine"
)

// MockHost is a gomock-generated-style mock of syncengine.Host, for tests
// that need EXPECT()-style call sequencing rather than the simpler
// function-field Host double in mock.go.
type MockHost struct {
	ctrl     *gomock.Controller
	recorder *MockHostMockRecorder
}

// MockHostMockRecorder is the recorder for MockHost.
type MockHostMockRecorder struct {
	mock *MockHost
}

var _ syncengine.Host = (*MockHost)(nil)

// NewMockHost builds a new MockHost.
func NewMockHost(ctrl *gomock.Controller) *MockHost {
	mock := &MockHost{ctrl: ctrl}
	mock.recorder = &MockHostMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockHost) EXPECT() *MockHostMockRecorder {
	return m.recorder
}

func (m *MockHost) Put(ctx context.Context, params room.Parameters, initial *room.State) (rids.ContractKey, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Put", ctx, params, initial)
	ret0, _ := ret[0].(rids.ContractKey)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockHostMockRecorder) Put(ctx, params, initial any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Put", reflect.TypeOf((*MockHost)(nil).Put), ctx, params, initial)
}

func (m *MockHost) Subscribe(ctx context.Context, key rids.ContractKey, summary *room.Summary) (bool, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Subscribe", ctx, key, summary)
	ret0, _ := ret[0].(bool)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockHostMockRecorder) Subscribe(ctx, key, summary any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Subscribe", reflect.TypeOf((*MockHost)(nil).Subscribe), ctx, key, summary)
}

func (m *MockHost) Get(ctx context.Context, key rids.ContractKey, subscribe bool) (*room.State, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Get", ctx, key, subscribe)
	ret0, _ := ret[0].(*room.State)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockHostMockRecorder) Get(ctx, key, subscribe any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Get", reflect.TypeOf((*MockHost)(nil).Get), ctx, key, subscribe)
}

func (m *MockHost) Update(ctx context.Context, key rids.ContractKey, delta *room.Delta, full *room.State) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Update", ctx, key, delta, full)
	ret0, _ := ret[0].(error)
	return ret0
}

func (mr *MockHostMockRecorder) Update(ctx, key, delta, full any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Update", reflect.TypeOf((*MockHost)(nil).Update), ctx, key, delta, full)
}
