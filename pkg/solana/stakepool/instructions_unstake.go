package stakepool

import (
	"crypto/ed25519"

	"github.com/solexplorer/staking-server/pkg/solana"
)

const (
	UnstakeInstructionArgsSize = 8 // amount
)

type UnstakeInstructionArgs struct {
	Amount uint64
}

func (p *ProgramInterface) NewUnstakeInstruction(
	program ed25519.PublicKey,
	accounts *PoolInstructionAccounts,
	args *UnstakeInstructionArgs,
) (solana.Instruction, error) {
	return p.newInstruction(program, MethodUnstake, accounts, &args.Amount)
}
