package staking

import (
	"time"

	"github.com/solexplorer/staking-server/pkg/config"
	"github.com/solexplorer/staking-server/pkg/config/env"
	"github.com/solexplorer/staking-server/pkg/config/memory"
	"github.com/solexplorer/staking-server/pkg/config/wrapper"
)

const (
	envConfigPrefix = "STAKING_WEB_"

	RequestsPerWalletConfigEnvName = envConfigPrefix + "REQUESTS_PER_WALLET"
	defaultRequestsPerWallet       = 1.0 // per second

	RequestBurstConfigEnvName = envConfigPrefix + "REQUEST_BURST"
	defaultRequestBurst       = 5

	RequestTimeoutConfigEnvName = envConfigPrefix + "REQUEST_TIMEOUT"
	defaultRequestTimeout       = 15 * time.Second
)

type conf struct {
	requestsPerWallet config.Float64
	requestBurst      config.Int64
	requestTimeout    config.Duration
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			requestsPerWallet: env.NewFloat64Config(RequestsPerWalletConfigEnvName, defaultRequestsPerWallet),
			requestBurst:      env.NewInt64Config(RequestBurstConfigEnvName, defaultRequestBurst),
			requestTimeout:    env.NewDurationConfig(RequestTimeoutConfigEnvName, defaultRequestTimeout),
		}
	}
}

type testOverrides struct {
	requestsPerWallet float64
	requestBurst      int64
	requestTimeout    time.Duration
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		return &conf{
			requestsPerWallet: wrapper.NewFloat64Config(memory.NewConfig(overrides.requestsPerWallet), defaultRequestsPerWallet),
			requestBurst:      wrapper.NewInt64Config(memory.NewConfig(overrides.requestBurst), defaultRequestBurst),
			requestTimeout:    wrapper.NewDurationConfig(memory.NewConfig(overrides.requestTimeout), defaultRequestTimeout),
		}
	}
}
