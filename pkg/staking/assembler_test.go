package staking

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solexplorer/staking-server/pkg/solana"
)

func TestAssemble(t *testing.T) {
	keys := generateKeys(t, 4)
	payer, program, writable := keys[0], keys[1], keys[2]

	client := newFakeSolanaClient()

	ixn := solana.NewInstruction(
		program,
		[]byte{1, 2, 3},
		solana.NewAccountMeta(payer, true),
		solana.NewAccountMeta(writable, false),
	)

	assembled, err := Assemble(client, payer, solana.CommitmentFinalized, ixn)
	require.NoError(t, err)

	require.Len(t, client.blockhashCalls, 1)
	assert.Equal(t, solana.CommitmentFinalized, client.blockhashCalls[0])
	assert.Equal(t, client.blockhash, assembled.Blockhash)

	txn := assembled.Transaction
	assert.Equal(t, solana.MessageVersion0, txn.Message.Version())
	assert.EqualValues(t, payer, txn.Message.Payer())
	assert.Equal(t, client.blockhash, txn.Message.RecentBlockhash)
	assert.EqualValues(t, 1, txn.Message.Header.NumSignatures)
	require.Len(t, txn.Signatures, 1)
	assert.Equal(t, solana.Signature{}, txn.Signatures[0])

	decoded, err := solana.TransactionFromBase64(assembled.Encoded)
	require.NoError(t, err)
	assert.Equal(t, solana.MessageVersion0, decoded.Message.Version())
	assert.EqualValues(t, payer, decoded.Message.Payer())
	assert.Equal(t, client.blockhash, decoded.Message.RecentBlockhash)
	require.Len(t, decoded.Message.Instructions, 1)
	assert.Equal(t, []byte{1, 2, 3}, decoded.Message.Instructions[0].Data)
}

func TestAssemble_Validation(t *testing.T) {
	keys := generateKeys(t, 2)
	payer, program := keys[0], keys[1]

	client := newFakeSolanaClient()
	ixn := solana.NewInstruction(program, nil, solana.NewAccountMeta(payer, true))

	_, err := Assemble(client, nil, solana.CommitmentFinalized, ixn)
	assert.Error(t, err)

	_, err = Assemble(client, payer, solana.CommitmentFinalized)
	assert.Equal(t, solana.ErrNoInstructions, err)

	assert.Empty(t, client.blockhashCalls)
}

func TestAssemble_BlockhashErrorNotRetried(t *testing.T) {
	keys := generateKeys(t, 2)
	payer, program := keys[0], keys[1]

	client := newFakeSolanaClient()
	client.blockhashErr = solana.ErrRateLimited

	ixn := solana.NewInstruction(program, nil, solana.NewAccountMeta(payer, true))

	_, err := Assemble(client, payer, solana.CommitmentFinalized, ixn)
	require.Error(t, err)
	assert.True(t, errors.Is(err, solana.ErrRateLimited))
	assert.Len(t, client.blockhashCalls, 1)
}

func TestAssemble_TooLarge(t *testing.T) {
	keys := generateKeys(t, 2)
	payer, program := keys[0], keys[1]

	client := newFakeSolanaClient()
	ixn := solana.NewInstruction(program, make([]byte, solana.MaxTransactionSize), solana.NewAccountMeta(payer, true))

	_, err := Assemble(client, payer, solana.CommitmentFinalized, ixn)
	require.Error(t, err)
	assert.True(t, errors.Is(err, solana.ErrTransactionTooLarge))
}
