// Package stakepool binds the staking pool program: its derived addresses,
// account layouts and instructions.
//
// The program has shipped two user account layouts. Both are described as
// data in interface.go, so supporting a new one is a table change.
package stakepool

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/solexplorer/staking-server/pkg/solana/system"
	"github.com/solexplorer/staking-server/pkg/solana/token"
)

var (
	ErrInvalidAccountData      = errors.New("unexpected account data")
	ErrLayoutMismatch          = errors.New("account layout does not match program interface")
	ErrUnsupportedLayout       = errors.New("unsupported layout version")
	ErrUnsupportedMethod       = errors.New("method not supported by program interface")
	ErrMissingInstructionInput = errors.New("missing instruction input")
)

var (
	SYSTEM_PROGRAM_ID    = ed25519.PublicKey(system.ProgramKey)
	SPL_TOKEN_PROGRAM_ID = ed25519.PublicKey(token.ProgramKey)
)
