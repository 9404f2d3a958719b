package stakepool

import (
	"crypto/ed25519"
	"slices"

	"github.com/pkg/errors"

	"github.com/solexplorer/staking-server/pkg/solana"
	"github.com/solexplorer/staking-server/pkg/solana/binary"
)

// Field is a logical user account field name used by callers. Each interface
// maps it to the on-chain field of its layout.
type Field string

const (
	FieldOwner         Field = "owner"
	FieldDeposit       Field = "deposit"
	FieldDebt          Field = "debt"
	FieldTotalClaimed  Field = "total_claimed"
	FieldLastUpdate    Field = "last_update"
	FieldIsInitialized Field = "is_initialized"
)

// Method is a logical instruction name used by callers.
type Method string

const (
	MethodStake       Method = "stake"
	MethodUnstake     Method = "unstake"
	MethodClaimReward Method = "claim_reward"
)

// FieldLayout locates a field within a user account. Every layout has an
// entry for every Field; a zero Size means the layout doesn't store it and
// decoding yields the zero value.
type FieldLayout struct {
	Name   string
	Offset int
	Size   int
}

// Stored reports whether the layout has bytes for the field.
func (f FieldLayout) Stored() bool {
	return f.Size > 0
}

// MethodSchema describes how an instruction is encoded.
type MethodSchema struct {
	Name          string
	Discriminator []byte
	HasAmount     bool
	Accounts      []AccountSchema
}

// AccountSchema is one entry of an instruction's account list.
type AccountSchema struct {
	Name       string
	IsSigner   bool
	IsWritable bool
}

// ProgramInterface is the schema for one layout version. Values returned by
// SelectInterface are shared and must be treated as read only; accessors hand
// out copies.
type ProgramInterface struct {
	version LayoutVersion

	userInfoSize      int
	userInfoSizeExact bool

	fields  map[Field]FieldLayout
	methods map[Method]MethodSchema
}

var poolAccountsSchema = []AccountSchema{
	{Name: "user", IsSigner: true, IsWritable: true},
	{Name: "config", IsWritable: true},
	{Name: "user_info", IsWritable: true},
	{Name: "user_token_account", IsWritable: true},
	{Name: "pool_token_account", IsWritable: true},
	{Name: "mint"},
	{Name: "token_program"},
}

var poolAccountsWithSystemSchema = append(
	append([]AccountSchema(nil), poolAccountsSchema...),
	AccountSchema{Name: "system_program"},
)

var baseMethods = map[Method]MethodSchema{
	MethodStake: {
		Name:          "stake",
		Discriminator: []byte{206, 176, 202, 18, 200, 209, 179, 108},
		HasAmount:     true,
		Accounts:      poolAccountsWithSystemSchema,
	},
	MethodUnstake: {
		Name:          "unstake",
		Discriminator: []byte{90, 95, 107, 42, 205, 124, 50, 225},
		HasAmount:     true,
		Accounts:      poolAccountsWithSystemSchema,
	},
	MethodClaimReward: {
		Name:          "claim_reward",
		Discriminator: []byte{149, 95, 181, 242, 94, 90, 158, 162},
		Accounts:      poolAccountsSchema,
	},
}

var interfaces = map[LayoutVersion]*ProgramInterface{
	LayoutVersionLegacy: {
		version:           LayoutVersionLegacy,
		userInfoSize:      LegacyUserInfoAccountSize,
		userInfoSizeExact: true,
		fields: map[Field]FieldLayout{
			FieldOwner:         {Name: "owner", Offset: 8, Size: 32},
			FieldDeposit:       {Name: "deposit", Offset: 40, Size: 8},
			FieldDebt:          {Name: "debt", Offset: 48, Size: 8},
			FieldTotalClaimed:  {Name: "total_claimed", Offset: 56, Size: 0},
			FieldLastUpdate:    {Name: "last_update", Offset: 56, Size: 8},
			FieldIsInitialized: {Name: "is_initialized", Offset: 64, Size: 1},
		},
		methods: baseMethods,
	},
	LayoutVersionCurrent: {
		version:      LayoutVersionCurrent,
		userInfoSize: CurrentUserInfoAccountSize,
		fields: map[Field]FieldLayout{
			FieldOwner:         {Name: "owner", Offset: 8, Size: 32},
			FieldDeposit:       {Name: "deposit", Offset: 40, Size: 8},
			FieldDebt:          {Name: "debt", Offset: 48, Size: 8},
			FieldTotalClaimed:  {Name: "total_claimed", Offset: 56, Size: 8},
			FieldLastUpdate:    {Name: "last_update", Offset: 64, Size: 8},
			FieldIsInitialized: {Name: "is_initialized", Offset: 72, Size: 1},
		},
		methods: baseMethods,
	},
}

// SelectInterface returns the program interface for a detected layout
// version.
func SelectInterface(version LayoutVersion) (*ProgramInterface, error) {
	iface, ok := interfaces[version]
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedLayout, "version=%s", version)
	}
	return iface, nil
}

func (p *ProgramInterface) Version() LayoutVersion {
	return p.version
}

// UserInfoAccountSize is the size of user accounts written with this layout.
func (p *ProgramInterface) UserInfoAccountSize() int {
	return p.userInfoSize
}

func (p *ProgramInterface) Field(name Field) (FieldLayout, bool) {
	layout, ok := p.fields[name]
	return layout, ok
}

// Fields returns the logical field names. They're identical across layouts.
func (p *ProgramInterface) Fields() []Field {
	fields := make([]Field, 0, len(p.fields))
	for name := range p.fields {
		fields = append(fields, name)
	}
	slices.Sort(fields)
	return fields
}

func (p *ProgramInterface) storedField(name Field) (FieldLayout, bool) {
	layout, ok := p.fields[name]
	return layout, ok && layout.Stored()
}

func (p *ProgramInterface) Method(name Method) (MethodSchema, bool) {
	schema, ok := p.methods[name]
	if !ok {
		return MethodSchema{}, false
	}

	schema.Discriminator = cloneBytes(schema.Discriminator)
	schema.Accounts = append([]AccountSchema(nil), schema.Accounts...)
	return schema, true
}

// Matches reports whether data could have been written with this layout.
// Layouts without an exact size accept longer accounts, since the program
// only appends fields.
func (p *ProgramInterface) Matches(data []byte) bool {
	if p.userInfoSizeExact {
		return len(data) == p.userInfoSize
	}
	return len(data) >= p.userInfoSize
}

// DecodeUserInfo decodes a user account. Data from any other layout is
// rejected with ErrLayoutMismatch.
func (p *ProgramInterface) DecodeUserInfo(data []byte) (*UserInfoAccount, error) {
	if !p.Matches(data) {
		return nil, errors.Wrapf(ErrLayoutMismatch, "%s layout expects %d bytes, got %d", p.version, p.userInfoSize, len(data))
	}
	if !hasDiscriminator(data, UserInfoAccountDiscriminator) {
		return nil, ErrInvalidAccountData
	}

	obj := &UserInfoAccount{Version: p.version}

	var offset int
	if f, ok := p.storedField(FieldOwner); ok {
		offset = f.Offset
		binary.GetKey32(data[offset:], &obj.Owner, &offset)
	}
	if f, ok := p.storedField(FieldDeposit); ok {
		offset = f.Offset
		binary.GetUint64(data[offset:], &obj.Deposit, &offset)
	}
	if f, ok := p.storedField(FieldDebt); ok {
		offset = f.Offset
		binary.GetUint64(data[offset:], &obj.Debt, &offset)
	}
	if f, ok := p.storedField(FieldTotalClaimed); ok {
		offset = f.Offset
		binary.GetUint64(data[offset:], &obj.TotalClaimed, &offset)
	}
	if f, ok := p.storedField(FieldLastUpdate); ok {
		offset = f.Offset
		binary.GetInt64(data[offset:], &obj.LastUpdate, &offset)
	}
	if f, ok := p.storedField(FieldIsInitialized); ok {
		offset = f.Offset
		binary.GetBool(data[offset:], &obj.IsInitialized, &offset)
	}

	return obj, nil
}

// EncodeUserInfo writes obj using this layout. Fields the layout doesn't have
// are dropped.
func (p *ProgramInterface) EncodeUserInfo(obj *UserInfoAccount) []byte {
	data := make([]byte, p.userInfoSize)

	var offset int
	putDiscriminator(data, UserInfoAccountDiscriminator, &offset)

	if f, ok := p.storedField(FieldOwner); ok {
		offset = f.Offset
		binary.PutKey32(data[offset:], obj.Owner, &offset)
	}
	if f, ok := p.storedField(FieldDeposit); ok {
		offset = f.Offset
		binary.PutUint64(data[offset:], obj.Deposit, &offset)
	}
	if f, ok := p.storedField(FieldDebt); ok {
		offset = f.Offset
		binary.PutUint64(data[offset:], obj.Debt, &offset)
	}
	if f, ok := p.storedField(FieldTotalClaimed); ok {
		offset = f.Offset
		binary.PutUint64(data[offset:], obj.TotalClaimed, &offset)
	}
	if f, ok := p.storedField(FieldLastUpdate); ok {
		offset = f.Offset
		binary.PutInt64(data[offset:], obj.LastUpdate, &offset)
	}
	if f, ok := p.storedField(FieldIsInitialized); ok {
		offset = f.Offset
		binary.PutBool(data[offset:], obj.IsInitialized, &offset)
	}

	return data
}

// PoolInstructionAccounts are the accounts every pool instruction draws from.
type PoolInstructionAccounts struct {
	User             ed25519.PublicKey
	Config           ed25519.PublicKey
	UserInfo         ed25519.PublicKey
	UserTokenAccount ed25519.PublicKey
	PoolTokenAccount ed25519.PublicKey
	Mint             ed25519.PublicKey
}

func (a *PoolInstructionAccounts) resolve(name string) ed25519.PublicKey {
	switch name {
	case "user":
		return a.User
	case "config":
		return a.Config
	case "user_info":
		return a.UserInfo
	case "user_token_account":
		return a.UserTokenAccount
	case "pool_token_account":
		return a.PoolTokenAccount
	case "mint":
		return a.Mint
	case "token_program":
		return SPL_TOKEN_PROGRAM_ID
	case "system_program":
		return SYSTEM_PROGRAM_ID
	}
	return nil
}

func (p *ProgramInterface) newInstruction(program ed25519.PublicKey, method Method, accounts *PoolInstructionAccounts, amount *uint64) (solana.Instruction, error) {
	schema, ok := p.methods[method]
	if !ok {
		return solana.Instruction{}, errors.Wrapf(ErrUnsupportedMethod, "%s on %s layout", method, p.version)
	}
	if len(program) != ed25519.PublicKeySize {
		return solana.Instruction{}, errors.Wrap(ErrMissingInstructionInput, "program")
	}
	if schema.HasAmount != (amount != nil) {
		return solana.Instruction{}, errors.Wrapf(ErrMissingInstructionInput, "%s amount", schema.Name)
	}

	size := discriminatorSize
	if schema.HasAmount {
		size += 8
	}
	data := make([]byte, size)

	var offset int
	putDiscriminator(data, schema.Discriminator, &offset)
	if schema.HasAmount {
		binary.PutUint64(data[offset:], *amount, &offset)
	}

	metas := make([]solana.AccountMeta, len(schema.Accounts))
	for i, account := range schema.Accounts {
		key := accounts.resolve(account.Name)
		if len(key) != ed25519.PublicKeySize {
			return solana.Instruction{}, errors.Wrapf(ErrMissingInstructionInput, "%s account %s", schema.Name, account.Name)
		}

		metas[i] = solana.AccountMeta{
			PublicKey:  key,
			IsSigner:   account.IsSigner,
			IsWritable: account.IsWritable,
		}
	}

	return solana.NewInstruction(program, data, metas...), nil
}
