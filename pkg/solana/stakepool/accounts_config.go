package stakepool

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/solexplorer/staking-server/pkg/solana/binary"
)

const (
	ConfigAccountSize = (8 + // discriminator
		32 + // authority
		32 + // mint
		8 + // reward_rate
		8 + // claim_period
		8 + // last_distributed_at
		8 + // total_deposit
		8 + // reward_multiplier
		1) // bump
)

var ConfigAccountDiscriminator = []byte{155, 12, 170, 224, 30, 250, 204, 130}

// ConfigAccount is the pool wide singleton. It's only ever read here.
type ConfigAccount struct {
	Authority         ed25519.PublicKey
	Mint              ed25519.PublicKey
	RewardRate        uint64
	ClaimPeriod       int64
	LastDistributedAt int64
	TotalDeposit      uint64
	RewardMultiplier  uint64
	Bump              uint8
}

func (obj *ConfigAccount) Marshal() []byte {
	data := make([]byte, ConfigAccountSize)

	var offset int
	putDiscriminator(data, ConfigAccountDiscriminator, &offset)
	binary.PutKey32(data[offset:], obj.Authority, &offset)
	binary.PutKey32(data[offset:], obj.Mint, &offset)
	binary.PutUint64(data[offset:], obj.RewardRate, &offset)
	binary.PutInt64(data[offset:], obj.ClaimPeriod, &offset)
	binary.PutInt64(data[offset:], obj.LastDistributedAt, &offset)
	binary.PutUint64(data[offset:], obj.TotalDeposit, &offset)
	binary.PutUint64(data[offset:], obj.RewardMultiplier, &offset)
	binary.PutUint8(data[offset:], obj.Bump, &offset)

	return data
}

func (obj *ConfigAccount) Unmarshal(data []byte) error {
	if len(data) < ConfigAccountSize {
		return ErrInvalidAccountData
	}
	if !hasDiscriminator(data, ConfigAccountDiscriminator) {
		return ErrInvalidAccountData
	}

	offset := discriminatorSize
	binary.GetKey32(data[offset:], &obj.Authority, &offset)
	binary.GetKey32(data[offset:], &obj.Mint, &offset)
	binary.GetUint64(data[offset:], &obj.RewardRate, &offset)
	binary.GetInt64(data[offset:], &obj.ClaimPeriod, &offset)
	binary.GetInt64(data[offset:], &obj.LastDistributedAt, &offset)
	binary.GetUint64(data[offset:], &obj.TotalDeposit, &offset)
	binary.GetUint64(data[offset:], &obj.RewardMultiplier, &offset)
	binary.GetUint8(data[offset:], &obj.Bump, &offset)

	return nil
}

func (obj *ConfigAccount) String() string {
	return fmt.Sprintf(
		"Config{authority=%s,mint=%s,reward_rate=%d,claim_period=%d,last_distributed_at=%d,total_deposit=%d,reward_multiplier=%d,bump=%d}",
		base58.Encode(obj.Authority),
		base58.Encode(obj.Mint),
		obj.RewardRate,
		obj.ClaimPeriod,
		obj.LastDistributedAt,
		obj.TotalDeposit,
		obj.RewardMultiplier,
		obj.Bump,
	)
}
