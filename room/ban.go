// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package room

import (
	"crypto/ed25519"
	"time"

	"github.com/riverchat/river-core/rcrypto"
	"github.com/riverchat/river-core/rids"
)

// UserBan records that BannedUser was banned at BannedAt.
type UserBan struct {
	OwnerMemberId rids.MemberId
	BannedAt      time.Time
	BannedUser    rids.MemberId
}

// AuthorizedUserBan is a UserBan signed by BannedBy, the banner.
type AuthorizedUserBan struct {
	Ban       UserBan
	BannedBy  rids.MemberId
	Signature []byte
}

// Id returns the BanId derived from the ban's signature bytes.
func (ab AuthorizedUserBan) Id() rids.BanId {
	return rids.BanIdOf(ab.Signature)
}

// VerifySignature checks Signature against bannerVK.
func (ab AuthorizedUserBan) VerifySignature(bannerVK ed25519.PublicKey) error {
	return rcrypto.VerifyCanonical(bannerVK, ab.Ban, ab.Signature)
}

// NewAuthorizedUserBan signs ban with bannerSK on behalf of bannedBy.
func NewAuthorizedUserBan(ban UserBan, bannedBy rids.MemberId, bannerSK ed25519.PrivateKey) (AuthorizedUserBan, error) {
	sig, err := rcrypto.SignCanonical(bannerSK, ban)
	if err != nil {
		return AuthorizedUserBan{}, err
	}
	return AuthorizedUserBan{Ban: ban, BannedBy: bannedBy, Signature: sig}, nil
}
