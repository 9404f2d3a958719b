package stakepool

import (
	"crypto/ed25519"

	"github.com/solexplorer/staking-server/pkg/solana"
)

// NewClaimRewardInstruction pays out accrued rewards from the pool vault. It
// takes no arguments.
func (p *ProgramInterface) NewClaimRewardInstruction(
	program ed25519.PublicKey,
	accounts *PoolInstructionAccounts,
) (solana.Instruction, error) {
	return p.newInstruction(program, MethodClaimReward, accounts, nil)
}
