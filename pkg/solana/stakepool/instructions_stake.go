package stakepool

import (
	"crypto/ed25519"

	"github.com/solexplorer/staking-server/pkg/solana"
)

const (
	StakeInstructionArgsSize = 8 // amount
)

type StakeInstructionArgs struct {
	Amount uint64
}

// NewStakeInstruction moves Amount base units from the user's token account
// into the pool vault. The program creates the user account on first stake.
func (p *ProgramInterface) NewStakeInstruction(
	program ed25519.PublicKey,
	accounts *PoolInstructionAccounts,
	args *StakeInstructionArgs,
) (solana.Instruction, error) {
	return p.newInstruction(program, MethodStake, accounts, &args.Amount)
}
