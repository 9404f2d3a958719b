package solana

import (
	"bytes"
	"crypto/ed25519"
)

// AccountMeta is an account referenced by an instruction, along with the
// permissions the instruction needs on it.
type AccountMeta struct {
	PublicKey  ed25519.PublicKey
	IsSigner   bool
	IsWritable bool

	// Set while compiling a message. Never set by callers.
	isPayer   bool
	isProgram bool
}

// NewAccountMeta creates a new AccountMeta representing a writable
// account.
func NewAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{
		PublicKey:  pub,
		IsSigner:   isSigner,
		IsWritable: true,
	}
}

// NewReadonlyAccountMeta creates a new AccountMeta representing a readonly
// account.
func NewReadonlyAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{
		PublicKey: pub,
		IsSigner:  isSigner,
	}
}

// compareAccountMeta orders a message's static accounts: the payer first,
// then signers before non-signers and writable before readonly within each,
// with invoked programs last. Remaining ties break on the key bytes so the
// order is total.
//
// Reference: https://docs.solana.com/developing/programming-model/transactions#account-addresses-format
func compareAccountMeta(a, b AccountMeta) int {
	switch {
	case a.isPayer != b.isPayer:
		return boolOrder(a.isPayer)
	case a.isProgram != b.isProgram:
		return boolOrder(!a.isProgram)
	case a.IsSigner != b.IsSigner:
		return boolOrder(a.IsSigner)
	case a.IsWritable != b.IsWritable:
		return boolOrder(a.IsWritable)
	}
	return bytes.Compare(a.PublicKey, b.PublicKey)
}

func boolOrder(first bool) int {
	if first {
		return -1
	}
	return 1
}

// Instruction is a single program invocation prior to compilation.
type Instruction struct {
	Program  ed25519.PublicKey
	Accounts []AccountMeta
	Data     []byte
}

// NewInstruction creates a new instruction.
func NewInstruction(program ed25519.PublicKey, data []byte, accounts ...AccountMeta) Instruction {
	return Instruction{
		Program:  program,
		Data:     data,
		Accounts: accounts,
	}
}

// CompiledInstruction is an instruction whose program and accounts have been
// replaced by indexes into the message account list.
type CompiledInstruction struct {
	ProgramIndex byte
	Accounts     []byte
	Data         []byte
}
