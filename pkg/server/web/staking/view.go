package staking

import (
	"github.com/mr-tron/base58"

	"github.com/solexplorer/staking-server/pkg/fixedpoint"
	"github.com/solexplorer/staking-server/pkg/staking"
)

type poolView struct {
	Program           string `json:"program"`
	Mint              string `json:"mint"`
	MintDecimals      uint8  `json:"mintDecimals"`
	Config            string `json:"config"`
	Authority         string `json:"authority"`
	RewardRate        uint64 `json:"rewardRate"`
	ClaimPeriod       int64  `json:"claimPeriod"`
	LastDistributedAt int64  `json:"lastDistributedAt"`
	TotalDeposit      string `json:"totalDeposit"`
	RewardMultiplier  uint64 `json:"rewardMultiplier"`
	Vault             string `json:"vault"`
	VaultBalance      string `json:"vaultBalance"`
}

func newPoolView(info *staking.PoolInfo) *poolView {
	return &poolView{
		Program:           base58.Encode(info.Program),
		Mint:              base58.Encode(info.Mint),
		MintDecimals:      info.MintDecimals,
		Config:            base58.Encode(info.ConfigAddress),
		Authority:         base58.Encode(info.Config.Authority),
		RewardRate:        info.Config.RewardRate,
		ClaimPeriod:       info.Config.ClaimPeriod,
		LastDistributedAt: info.Config.LastDistributedAt,
		TotalDeposit:      fixedpoint.FromUint64BaseUnits(info.Config.TotalDeposit, info.MintDecimals).String(),
		RewardMultiplier:  info.Config.RewardMultiplier,
		Vault:             base58.Encode(info.VaultAddress),
		VaultBalance:      info.VaultBalanceUnit.String(),
	}
}

type userStakeView struct {
	Address       string `json:"address"`
	Exists        bool   `json:"exists"`
	LayoutVersion string `json:"layoutVersion"`

	Deposit       string `json:"deposit,omitempty"`
	Debt          uint64 `json:"debt,omitempty"`
	TotalClaimed  string `json:"totalClaimed,omitempty"`
	LastUpdate    int64  `json:"lastUpdate,omitempty"`
	IsInitialized bool   `json:"isInitialized,omitempty"`
}

func newUserStakeView(stake *staking.UserStake) *userStakeView {
	view := &userStakeView{
		Address:       base58.Encode(stake.Address),
		Exists:        stake.Account != nil,
		LayoutVersion: stake.LayoutVersion.String(),
	}
	if stake.Account == nil {
		return view
	}

	view.Deposit = fixedpoint.FromUint64BaseUnits(stake.Account.Deposit, stake.MintDecimals).String()
	view.Debt = stake.Account.Debt
	view.TotalClaimed = fixedpoint.FromUint64BaseUnits(stake.Account.TotalClaimed, stake.MintDecimals).String()
	view.LastUpdate = stake.Account.LastUpdate
	view.IsInitialized = stake.Account.IsInitialized
	return view
}
