package staking

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/solexplorer/staking-server/pkg/solana"
)

// AssembledTransaction is an unsigned transaction ready to be handed to a
// wallet. It expires with its blockhash, after which a new one has to be
// assembled.
type AssembledTransaction struct {
	Transaction solana.Transaction
	Blockhash   solana.Blockhash

	// Encoded is the base64 encoded wire transaction.
	Encoded string
}

// Assemble fetches a blockhash once and compiles instructions into an
// unsigned v0 transaction paid for by feePayer. Failures are returned as is
// and never retried.
func Assemble(client solana.Client, feePayer ed25519.PublicKey, commitment solana.Commitment, instructions ...solana.Instruction) (*AssembledTransaction, error) {
	if len(feePayer) != ed25519.PublicKeySize {
		return nil, errors.New("invalid fee payer")
	}
	if len(instructions) == 0 {
		return nil, solana.ErrNoInstructions
	}

	blockhash, err := client.GetLatestBlockhash(commitment)
	if err != nil {
		return nil, errors.Wrap(err, "error getting latest blockhash")
	}

	txn := solana.NewVersionedTransaction(feePayer, instructions...)
	txn.SetBlockhash(blockhash)

	if size := len(txn.Marshal()); size > solana.MaxTransactionSize {
		return nil, errors.Wrapf(solana.ErrTransactionTooLarge, "%d bytes", size)
	}

	// The signature slots stay zeroed for the wallet to fill in.
	return &AssembledTransaction{
		Transaction: txn,
		Blockhash:   blockhash,
		Encoded:     txn.ToBase64(),
	}, nil
}
