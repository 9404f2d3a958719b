package staking

import (
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/solexplorer/staking-server/pkg/config"
	"github.com/solexplorer/staking-server/pkg/config/env"
	"github.com/solexplorer/staking-server/pkg/config/memory"
	"github.com/solexplorer/staking-server/pkg/config/wrapper"
	"github.com/solexplorer/staking-server/pkg/fixedpoint"
	"github.com/solexplorer/staking-server/pkg/netutil"
	"github.com/solexplorer/staking-server/pkg/solana"
)

const (
	envConfigPrefix = "STAKING_SERVICE_"

	RpcEndpointConfigEnvName = envConfigPrefix + "RPC_ENDPOINT"
	defaultRpcEndpoint       = string(solana.ClusterDevnet)

	ProgramIdConfigEnvName = envConfigPrefix + "PROGRAM_ID"
	defaultProgramId       = "invalid" // Ensure something valid is set

	MintConfigEnvName = envConfigPrefix + "MINT"
	defaultMint       = "invalid" // Ensure something valid is set

	MintDecimalsConfigEnvName = envConfigPrefix + "MINT_DECIMALS"
	defaultMintDecimals       = 6
)

type conf struct {
	rpcEndpoint  config.String
	programId    config.String
	mint         config.String
	mintDecimals config.Uint64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			rpcEndpoint:  env.NewStringConfig(RpcEndpointConfigEnvName, defaultRpcEndpoint),
			programId:    env.NewStringConfig(ProgramIdConfigEnvName, defaultProgramId),
			mint:         env.NewStringConfig(MintConfigEnvName, defaultMint),
			mintDecimals: env.NewUint64Config(MintDecimalsConfigEnvName, defaultMintDecimals),
		}
	}
}

type testOverrides struct {
	rpcEndpoint  string
	programId    string
	mint         string
	mintDecimals uint64
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		return &conf{
			rpcEndpoint:  wrapper.NewStringConfig(memory.NewConfig(overrides.rpcEndpoint), defaultRpcEndpoint),
			programId:    wrapper.NewStringConfig(memory.NewConfig(overrides.programId), defaultProgramId),
			mint:         wrapper.NewStringConfig(memory.NewConfig(overrides.mint), defaultMint),
			mintDecimals: wrapper.NewUint64Config(memory.NewConfig(overrides.mintDecimals), defaultMintDecimals),
		}
	}
}

// deployment is the parsed config a single workflow runs against.
type deployment struct {
	rpcEndpoint  string
	program      ed25519.PublicKey
	mint         ed25519.PublicKey
	mintDecimals uint8
}

func (c *conf) load(ctx context.Context) (*deployment, error) {
	program, err := solana.ParsePublicKey(c.programId.Get(ctx))
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidConfig, "program id: %s", err.Error())
	}

	mint, err := solana.ParsePublicKey(c.mint.Get(ctx))
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidConfig, "mint: %s", err.Error())
	}

	decimals := c.mintDecimals.Get(ctx)
	if decimals > fixedpoint.MaxExponent {
		return nil, errors.Wrapf(ErrInvalidConfig, "mint decimals: %d", decimals)
	}

	endpoint := c.rpcEndpoint.Get(ctx)
	if err := netutil.ValidateHttpUrl(endpoint, false); err != nil {
		return nil, errors.Wrapf(ErrInvalidConfig, "rpc endpoint: %s", err.Error())
	}

	return &deployment{
		rpcEndpoint:  endpoint,
		program:      program,
		mint:         mint,
		mintDecimals: uint8(decimals),
	}, nil
}
