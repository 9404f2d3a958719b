package solana

// Cluster is the public RPC endpoint of a Solana cluster.
type Cluster string

const (
	ClusterDevnet  Cluster = "https://api.devnet.solana.com"
	ClusterTestnet Cluster = "https://api.testnet.solana.com"
	ClusterMainnet Cluster = "https://api.mainnet-beta.solana.com"
)
