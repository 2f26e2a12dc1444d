// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package rlog wraps github.com/luxfi/log the way the teacher codebase's own
// top-level log package wraps it: a thin re-export plus a couple of
// constructors, so room-state and sync-engine packages never import
// github.com/luxfi/log directly.
package rlog

import "github.com/luxfi/log"

// Logger is the structured logger interface every component accepts.
type Logger = log.Logger

// NewNoOp returns a logger that discards everything, for tests and for
// callers that have not wired up real logging.
func NewNoOp() Logger {
	return log.NewNoOpLogger()
}

// Err builds a structured error field, re-exported for callers that do not
// want to depend on github.com/luxfi/log directly.
func Err(err error) log.Field {
	return log.Err(err)
}

// String builds a structured string field.
func String(key, value string) log.Field {
	return log.String(key, value)
}

// Uint64 builds a structured uint64 field.
func Uint64(key string, value uint64) log.Field {
	return log.Uint64(key, value)
}
