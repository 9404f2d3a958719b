package staking

import (
	"crypto/ed25519"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solexplorer/staking-server/pkg/solana"
)

type fakeSolanaClient struct {
	sync.Mutex

	accounts  map[string]solana.AccountInfo
	blockhash solana.Blockhash

	accountErr   error
	blockhashErr error

	accountReads    []solana.Commitment
	blockhashCalls  []solana.Commitment
	endpointsCalled []string
}

func newFakeSolanaClient() *fakeSolanaClient {
	var blockhash solana.Blockhash
	for i := range blockhash {
		blockhash[i] = byte(i + 1)
	}

	return &fakeSolanaClient{
		accounts:  make(map[string]solana.AccountInfo),
		blockhash: blockhash,
	}
}

func (f *fakeSolanaClient) ctor(endpoint string) solana.Client {
	f.Lock()
	defer f.Unlock()

	f.endpointsCalled = append(f.endpointsCalled, endpoint)
	return f
}

func (f *fakeSolanaClient) setAccount(address ed25519.PublicKey, info solana.AccountInfo) {
	f.Lock()
	defer f.Unlock()

	f.accounts[string(address)] = info
}

func (f *fakeSolanaClient) GetAccountInfo(account ed25519.PublicKey, commitment solana.Commitment) (solana.AccountInfo, error) {
	f.Lock()
	defer f.Unlock()

	f.accountReads = append(f.accountReads, commitment)
	if f.accountErr != nil {
		return solana.AccountInfo{}, f.accountErr
	}

	info, ok := f.accounts[string(account)]
	if !ok {
		return solana.AccountInfo{}, solana.ErrNoAccountInfo
	}
	return info, nil
}

func (f *fakeSolanaClient) GetLatestBlockhash(commitment solana.Commitment) (solana.Blockhash, error) {
	f.Lock()
	defer f.Unlock()

	f.blockhashCalls = append(f.blockhashCalls, commitment)
	if f.blockhashErr != nil {
		return solana.Blockhash{}, f.blockhashErr
	}
	return f.blockhash, nil
}

func (f *fakeSolanaClient) GetSlot(solana.Commitment) (uint64, error) {
	return 0, nil
}

func (f *fakeSolanaClient) networkCalls() int {
	f.Lock()
	defer f.Unlock()

	return len(f.accountReads) + len(f.blockhashCalls)
}

func generateKeys(t *testing.T, amount int) []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, amount)

	for i := 0; i < amount; i++ {
		pub, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)

		keys[i] = pub
	}

	return keys
}
