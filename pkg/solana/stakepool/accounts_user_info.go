package stakepool

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

const (
	LegacyUserInfoAccountSize = (8 + // discriminator
		32 + // owner
		8 + // deposit
		8 + // debt
		8 + // last_update
		1) // is_initialized

	CurrentUserInfoAccountSize = (8 + // discriminator
		32 + // owner
		8 + // deposit
		8 + // debt
		8 + // total_claimed
		8 + // last_update
		1) // is_initialized
)

// UserInfoAccountDiscriminator is shared by every layout, since the account
// type name never changed.
var UserInfoAccountDiscriminator = []byte{83, 134, 200, 56, 144, 56, 10, 62}

// UserInfoAccount is a user's stake state, decoded through the
// ProgramInterface matching the account's layout.
type UserInfoAccount struct {
	Version LayoutVersion

	Owner         ed25519.PublicKey
	Deposit       uint64
	Debt          uint64
	TotalClaimed  uint64 // zero on layouts that don't track it
	LastUpdate    int64
	IsInitialized bool
}

func (obj *UserInfoAccount) String() string {
	return fmt.Sprintf(
		"UserInfo{version=%s,owner=%s,deposit=%d,debt=%d,total_claimed=%d,last_update=%d,is_initialized=%v}",
		obj.Version,
		base58.Encode(obj.Owner),
		obj.Deposit,
		obj.Debt,
		obj.TotalClaimed,
		obj.LastUpdate,
		obj.IsInitialized,
	)
}
