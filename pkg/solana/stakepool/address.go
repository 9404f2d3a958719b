package stakepool

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/solexplorer/staking-server/pkg/solana"
	"github.com/solexplorer/staking-server/pkg/solana/token"
)

var (
	configPrefix   = []byte("config")
	userInfoPrefix = []byte("userinfo")
)

type GetUserInfoAddressArgs struct {
	Program ed25519.PublicKey
	User    ed25519.PublicKey
}

type GetPoolVaultAddressArgs struct {
	Program ed25519.PublicKey
	Mint    ed25519.PublicKey
}

// GetConfigAddress returns the pool's singleton config account. It depends on
// nothing but the program.
func GetConfigAddress(program ed25519.PublicKey) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		program,
		configPrefix,
	)
}

func GetUserInfoAddress(args *GetUserInfoAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		args.Program,
		userInfoPrefix,
		args.User,
	)
}

// GetPoolVaultAddress returns the token account holding staked tokens, which
// is the config account's associated account for the mint.
func GetPoolVaultAddress(args *GetPoolVaultAddressArgs) (ed25519.PublicKey, error) {
	config, _, err := GetConfigAddress(args.Program)
	if err != nil {
		return nil, errors.Wrap(err, "error deriving config address")
	}

	return token.GetAssociatedAccount(config, args.Mint)
}
