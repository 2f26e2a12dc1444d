// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package room

import "github.com/cockroachdb/errors"

var (
	errSecretVersionMissing    = errors.New("envelope references a version that does not exist")
	errSecretMemberMissing     = errors.New("envelope references a member that is not present")
	errSecretDuplicateEnvelope = errors.New("duplicate envelope for (version, member)")
	errDuplicateMessage        = errors.New("duplicate message id")
	errUnauthorizedAuthor      = errors.New("message author is neither the owner nor a current member")
)
