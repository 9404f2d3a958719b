package staking

import (
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/solexplorer/staking-server/pkg/fixedpoint"
	"github.com/solexplorer/staking-server/pkg/metrics"
	"github.com/solexplorer/staking-server/pkg/solana"
	"github.com/solexplorer/staking-server/pkg/solana/stakepool"
	"github.com/solexplorer/staking-server/pkg/solana/token"
)

const (
	metricsStructName = "staking.service"

	transactionAssembledEventName = "StakingTransactionAssembled"
)

var (
	ErrInvalidWallet = errors.New("invalid wallet address")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidConfig = errors.New("invalid staking configuration")
	ErrPoolNotFound  = errors.New("staking pool config account not found")
)

// ClientCtor creates a Solana client for a single workflow. Clients are never
// shared between workflows.
type ClientCtor func(endpoint string) solana.Client

// Service builds unsigned staking transactions for wallets to sign and
// submit. It holds no chain state between calls.
type Service struct {
	log        *logrus.Entry
	conf       *conf
	clientCtor ClientCtor
}

func NewService(clientCtor ClientCtor, configProvider ConfigProvider) *Service {
	return &Service{
		log:        logrus.StandardLogger().WithField("type", "staking/service"),
		conf:       configProvider(),
		clientCtor: clientCtor,
	}
}

// TransactionResult is the outcome of a workflow.
type TransactionResult struct {
	*AssembledTransaction

	Method        stakepool.Method
	LayoutVersion stakepool.LayoutVersion

	// Amount is in base units. It's zero for reward claims.
	Amount uint64
}

// Stake builds a transaction depositing amount tokens into the pool.
func (s *Service) Stake(ctx context.Context, wallet string, amount decimal.Decimal) (*TransactionResult, error) {
	return s.runAmountWorkflow(ctx, stakepool.MethodStake, wallet, amount)
}

// Unstake builds a transaction withdrawing amount tokens from the pool.
func (s *Service) Unstake(ctx context.Context, wallet string, amount decimal.Decimal) (*TransactionResult, error) {
	return s.runAmountWorkflow(ctx, stakepool.MethodUnstake, wallet, amount)
}

// ClaimReward builds a transaction paying out the wallet's accrued rewards.
func (s *Service) ClaimReward(ctx context.Context, wallet string) (result *TransactionResult, err error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "ClaimReward")
	defer func() {
		tracer.OnError(err)
		tracer.End()
	}()

	log := s.log.WithFields(logrus.Fields{
		"method": "ClaimReward",
		"wallet": wallet,
	})

	owner, err := parseWallet(wallet)
	if err != nil {
		return nil, err
	}

	d, err := s.conf.load(ctx)
	if err != nil {
		log.WithError(err).Warn("failure loading config")
		return nil, err
	}

	return s.build(ctx, log, d, stakepool.MethodClaimReward, owner, 0)
}

func (s *Service) runAmountWorkflow(ctx context.Context, method stakepool.Method, wallet string, amount decimal.Decimal) (result *TransactionResult, err error) {
	methodName := "Stake"
	if method == stakepool.MethodUnstake {
		methodName = "Unstake"
	}

	tracer := metrics.TraceMethodCall(ctx, metricsStructName, methodName)
	defer func() {
		tracer.OnError(err)
		tracer.End()
	}()

	log := s.log.WithFields(logrus.Fields{
		"method": methodName,
		"wallet": wallet,
	})

	owner, err := parseWallet(wallet)
	if err != nil {
		return nil, err
	}

	d, err := s.conf.load(ctx)
	if err != nil {
		log.WithError(err).Warn("failure loading config")
		return nil, err
	}

	units, err := toBaseUnits(amount, d.mintDecimals)
	if err != nil {
		return nil, err
	}
	log = log.WithFields(logrus.Fields{
		"amount":     amount.String(),
		"base_units": units,
	})

	return s.build(ctx, log, d, method, owner, units)
}

// build runs the part of a workflow that touches the network. The user
// account is read once and the interface used to build the instruction is
// always the one selected for the layout detected in that read.
func (s *Service) build(ctx context.Context, log *logrus.Entry, d *deployment, method stakepool.Method, owner ed25519.PublicKey, units uint64) (*TransactionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	accounts, err := derivePoolAccounts(d, owner)
	if err != nil {
		log.WithError(err).Warn("failure deriving pool accounts")
		return nil, err
	}

	client := s.clientCtor(d.rpcEndpoint)

	// Reads and the blockhash fetch share one commitment.
	commitment := solana.CommitmentFinalized

	userInfo, found, err := getUserInfoData(client, accounts.UserInfo, commitment)
	if err != nil {
		log.WithError(err).Warn("failure reading user account")
		return nil, err
	}

	version := stakepool.DetectLayoutVersion(userInfo, found)
	log = log.WithField("layout_version", version.String())

	iface, err := stakepool.SelectInterface(version)
	if err != nil {
		log.WithError(err).Warn("failure selecting program interface")
		return nil, err
	}

	var ixn solana.Instruction
	switch method {
	case stakepool.MethodStake:
		ixn, err = iface.NewStakeInstruction(d.program, accounts, &stakepool.StakeInstructionArgs{Amount: units})
	case stakepool.MethodUnstake:
		ixn, err = iface.NewUnstakeInstruction(d.program, accounts, &stakepool.UnstakeInstructionArgs{Amount: units})
	case stakepool.MethodClaimReward:
		ixn, err = iface.NewClaimRewardInstruction(d.program, accounts)
	default:
		err = errors.Wrapf(stakepool.ErrUnsupportedMethod, "%s", method)
	}
	if err != nil {
		log.WithError(err).Warn("failure building instruction")
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	assembled, err := Assemble(client, owner, commitment, ixn)
	if err != nil {
		log.WithError(err).Warn("failure assembling transaction")
		return nil, err
	}

	log.WithField("blockhash", assembled.Blockhash.ToBase58()).Debug("assembled transaction")

	metrics.RecordEvent(ctx, transactionAssembledEventName, map[string]interface{}{
		"method":         string(method),
		"layout_version": version.String(),
		"account_exists": found,
		"base_units":     units,
	})

	return &TransactionResult{
		AssembledTransaction: assembled,
		Method:               method,
		LayoutVersion:        version,
		Amount:               units,
	}, nil
}

// PoolInfo is the decoded pool config and vault balance.
type PoolInfo struct {
	Program      ed25519.PublicKey
	Mint         ed25519.PublicKey
	MintDecimals uint8

	ConfigAddress    ed25519.PublicKey
	Config           *stakepool.ConfigAccount
	VaultAddress     ed25519.PublicKey
	VaultBalance     uint64
	VaultBalanceUnit decimal.Decimal
}

// GetPool reads the pool config and its vault balance.
func (s *Service) GetPool(ctx context.Context) (info *PoolInfo, err error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetPool")
	defer func() {
		tracer.OnError(err)
		tracer.End()
	}()

	log := s.log.WithField("method", "GetPool")

	d, err := s.conf.load(ctx)
	if err != nil {
		log.WithError(err).Warn("failure loading config")
		return nil, err
	}

	configAddress, _, err := stakepool.GetConfigAddress(d.program)
	if err != nil {
		return nil, errors.Wrap(err, "error deriving config address")
	}
	vaultAddress, err := stakepool.GetPoolVaultAddress(&stakepool.GetPoolVaultAddressArgs{
		Program: d.program,
		Mint:    d.mint,
	})
	if err != nil {
		return nil, errors.Wrap(err, "error deriving pool vault address")
	}

	client := s.clientCtor(d.rpcEndpoint)

	accountInfo, err := client.GetAccountInfo(configAddress, solana.CommitmentFinalized)
	if err == solana.ErrNoAccountInfo {
		return nil, ErrPoolNotFound
	} else if err != nil {
		log.WithError(err).Warn("failure reading pool config")
		return nil, errors.Wrap(err, "error reading pool config")
	}

	var config stakepool.ConfigAccount
	if err := config.Unmarshal(accountInfo.Data); err != nil {
		log.WithError(err).Warn("invalid pool config account")
		return nil, errors.Wrap(err, "error decoding pool config")
	}

	var balance uint64
	vault, err := token.NewClient(client, d.mint).GetAccount(vaultAddress, solana.CommitmentFinalized)
	switch err {
	case nil:
		balance = vault.Amount
	case token.ErrAccountNotFound:
	default:
		log.WithError(err).Warn("failure reading pool vault")
		return nil, errors.Wrap(err, "error reading pool vault")
	}

	return &PoolInfo{
		Program:          d.program,
		Mint:             d.mint,
		MintDecimals:     d.mintDecimals,
		ConfigAddress:    configAddress,
		Config:           &config,
		VaultAddress:     vaultAddress,
		VaultBalance:     balance,
		VaultBalanceUnit: fixedpoint.FromUint64BaseUnits(balance, d.mintDecimals),
	}, nil
}

// UserStake is a wallet's stake state. Account is nil until the wallet's
// first stake lands.
type UserStake struct {
	Address       ed25519.PublicKey
	LayoutVersion stakepool.LayoutVersion
	Account       *stakepool.UserInfoAccount
	MintDecimals  uint8
}

// GetUserStake reads and decodes a wallet's user account.
func (s *Service) GetUserStake(ctx context.Context, wallet string) (stake *UserStake, err error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetUserStake")
	defer func() {
		tracer.OnError(err)
		tracer.End()
	}()

	log := s.log.WithFields(logrus.Fields{
		"method": "GetUserStake",
		"wallet": wallet,
	})

	owner, err := parseWallet(wallet)
	if err != nil {
		return nil, err
	}

	d, err := s.conf.load(ctx)
	if err != nil {
		log.WithError(err).Warn("failure loading config")
		return nil, err
	}

	address, _, err := stakepool.GetUserInfoAddress(&stakepool.GetUserInfoAddressArgs{
		Program: d.program,
		User:    owner,
	})
	if err != nil {
		return nil, errors.Wrap(err, "error deriving user account address")
	}

	client := s.clientCtor(d.rpcEndpoint)

	data, found, err := getUserInfoData(client, address, solana.CommitmentFinalized)
	if err != nil {
		log.WithError(err).Warn("failure reading user account")
		return nil, err
	}

	version := stakepool.DetectLayoutVersion(data, found)
	stake = &UserStake{
		Address:       address,
		LayoutVersion: version,
		MintDecimals:  d.mintDecimals,
	}
	if !found {
		return stake, nil
	}

	iface, err := stakepool.SelectInterface(version)
	if err != nil {
		return nil, err
	}

	stake.Account, err = iface.DecodeUserInfo(data)
	if err != nil {
		log.WithError(err).Warn("user account doesn't match its detected layout")
		return nil, errors.Wrap(err, "error decoding user account")
	}
	return stake, nil
}

func getUserInfoData(client solana.Client, address ed25519.PublicKey, commitment solana.Commitment) ([]byte, bool, error) {
	info, err := client.GetAccountInfo(address, commitment)
	if err == solana.ErrNoAccountInfo {
		return nil, false, nil
	} else if err != nil {
		return nil, false, errors.Wrap(err, "error reading user account")
	}
	return info.Data, true, nil
}

func derivePoolAccounts(d *deployment, owner ed25519.PublicKey) (*stakepool.PoolInstructionAccounts, error) {
	config, _, err := stakepool.GetConfigAddress(d.program)
	if err != nil {
		return nil, errors.Wrap(err, "error deriving config address")
	}

	userInfo, _, err := stakepool.GetUserInfoAddress(&stakepool.GetUserInfoAddressArgs{
		Program: d.program,
		User:    owner,
	})
	if err != nil {
		return nil, errors.Wrap(err, "error deriving user account address")
	}

	poolTokenAccount, err := stakepool.GetPoolVaultAddress(&stakepool.GetPoolVaultAddressArgs{
		Program: d.program,
		Mint:    d.mint,
	})
	if err != nil {
		return nil, errors.Wrap(err, "error deriving pool vault address")
	}

	userTokenAccount, err := token.GetAssociatedAccount(owner, d.mint)
	if err != nil {
		return nil, errors.Wrap(err, "error deriving user token account")
	}

	return &stakepool.PoolInstructionAccounts{
		User:             owner,
		Config:           config,
		UserInfo:         userInfo,
		UserTokenAccount: userTokenAccount,
		PoolTokenAccount: poolTokenAccount,
		Mint:             d.mint,
	}, nil
}

func parseWallet(wallet string) (ed25519.PublicKey, error) {
	if len(wallet) == 0 {
		return nil, errors.Wrap(ErrInvalidWallet, "wallet address is required")
	}

	owner, err := solana.ParsePublicKey(wallet)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidWallet, "%s is not a valid address", wallet)
	}
	return owner, nil
}

func toBaseUnits(amount decimal.Decimal, decimals uint8) (uint64, error) {
	// Nothing may print or rescale the amount before its magnitude is known
	// to be bounded.
	if err := fixedpoint.Validate(amount); err != nil {
		return 0, errors.Wrap(ErrInvalidAmount, err.Error())
	}
	if !amount.IsPositive() {
		return 0, errors.Wrapf(ErrInvalidAmount, "%s must be positive", amount.String())
	}

	units, err := fixedpoint.ToUint64BaseUnits(amount, decimals)
	if err != nil {
		return 0, errors.Wrap(ErrInvalidAmount, err.Error())
	}
	if units == 0 {
		return 0, errors.Wrapf(ErrInvalidAmount, "%s is below the smallest unit", amount.String())
	}
	return units, nil
}
