package solana

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"io"

	"github.com/pkg/errors"

	"github.com/solexplorer/staking-server/pkg/solana/shortvec"
)

func (t Transaction) Marshal() []byte {
	b := bytes.NewBuffer(nil)

	_, _ = shortvec.EncodeLen(b, len(t.Signatures))
	for _, s := range t.Signatures {
		_, _ = b.Write(s[:])
	}

	_, _ = b.Write(t.Message.Marshal())

	return b.Bytes()
}

// ToBase64 is the transport encoding handed to wallets for signing.
func (t Transaction) ToBase64() string {
	return base64.StdEncoding.EncodeToString(t.Marshal())
}

func (t *Transaction) Unmarshal(b []byte) error {
	buf := bytes.NewBuffer(b)

	sigLen, err := shortvec.DecodeLen(buf)
	if err != nil {
		return errors.Wrap(err, "failed to read signature length")
	}

	t.Signatures = make([]Signature, sigLen)
	for i := 0; i < sigLen; i++ {
		if _, err = io.ReadFull(buf, t.Signatures[i][:]); err != nil {
			return errors.Wrapf(err, "failed to read signature at %d", i)
		}
	}

	if err := (&t.Message).Unmarshal(buf.Bytes()); err != nil {
		return err
	}

	if int(t.Message.Header.NumSignatures) != len(t.Signatures) {
		return errors.Errorf("signature count mismatch: header=%d envelope=%d", t.Message.Header.NumSignatures, len(t.Signatures))
	}
	return nil
}

// TransactionFromBase64 decodes a transaction produced by ToBase64.
func TransactionFromBase64(encoded string) (Transaction, error) {
	var txn Transaction

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return txn, errors.Wrap(err, "invalid base64 transaction")
	}

	if err := txn.Unmarshal(raw); err != nil {
		return txn, err
	}
	return txn, nil
}

func (m Message) Marshal() []byte {
	b := bytes.NewBuffer(nil)

	switch m.version {
	case MessageVersionLegacy:
	case MessageVersion0:
		_ = b.WriteByte(versionPrefixMask | byte(m.version-1))
	default:
		panic("unsupported message version")
	}

	_ = b.WriteByte(m.Header.NumSignatures)
	_ = b.WriteByte(m.Header.NumReadonlySigned)
	_ = b.WriteByte(m.Header.NumReadOnly)

	_, _ = shortvec.EncodeLen(b, len(m.Accounts))
	for _, a := range m.Accounts {
		_, _ = b.Write(a)
	}

	_, _ = b.Write(m.RecentBlockhash[:])

	_, _ = shortvec.EncodeLen(b, len(m.Instructions))
	for _, i := range m.Instructions {
		_ = b.WriteByte(i.ProgramIndex)

		_, _ = shortvec.EncodeLen(b, len(i.Accounts))
		_, _ = b.Write(i.Accounts)

		_, _ = shortvec.EncodeLen(b, len(i.Data))
		_, _ = b.Write(i.Data)
	}

	if m.version == MessageVersionLegacy {
		return b.Bytes()
	}

	_, _ = shortvec.EncodeLen(b, len(m.AddressTableLookups))
	for _, lookup := range m.AddressTableLookups {
		_, _ = b.Write(lookup.PublicKey)

		_, _ = shortvec.EncodeLen(b, len(lookup.WritableIndexes))
		_, _ = b.Write(lookup.WritableIndexes)

		_, _ = shortvec.EncodeLen(b, len(lookup.ReadonlyIndexes))
		_, _ = b.Write(lookup.ReadonlyIndexes)
	}

	return b.Bytes()
}

func (m *Message) Unmarshal(b []byte) (err error) {
	if len(b) == 0 {
		return errors.New("empty message")
	}

	buf := bytes.NewBuffer(b)

	m.version = MessageVersionLegacy
	if b[0]&versionPrefixMask != 0 {
		prefix, _ := buf.ReadByte()
		if prefix&^versionPrefixMask != 0 {
			return errors.Errorf("unsupported message version: %d", prefix&^versionPrefixMask)
		}
		m.version = MessageVersion0
	}

	if m.Header.NumSignatures, err = buf.ReadByte(); err != nil {
		return errors.Wrap(err, "failed to read num signatures")
	}
	if m.Header.NumReadonlySigned, err = buf.ReadByte(); err != nil {
		return errors.Wrap(err, "failed to read num readonly signatures")
	}
	if m.Header.NumReadOnly, err = buf.ReadByte(); err != nil {
		return errors.Wrap(err, "failed to read num readonly")
	}

	accountLen, err := shortvec.DecodeLen(buf)
	if err != nil {
		return errors.Wrap(err, "failed to read account len")
	}
	m.Accounts = make([]ed25519.PublicKey, accountLen)
	for i := 0; i < accountLen; i++ {
		m.Accounts[i] = make([]byte, ed25519.PublicKeySize)
		if _, err = io.ReadFull(buf, m.Accounts[i]); err != nil {
			return errors.Wrapf(err, "failed to read account at index %d", i)
		}
	}

	if _, err = io.ReadFull(buf, m.RecentBlockhash[:]); err != nil {
		return errors.Wrap(err, "failed to read recent block hash")
	}

	instructionLen, err := shortvec.DecodeLen(buf)
	if err != nil {
		return errors.Wrap(err, "failed to read instruction len")
	}
	m.Instructions = make([]CompiledInstruction, instructionLen)
	for i := 0; i < instructionLen; i++ {
		if m.Instructions[i], err = readCompiledInstruction(buf); err != nil {
			return errors.Wrapf(err, "failed to read instruction[%d]", i)
		}
	}

	if m.version == MessageVersionLegacy {
		return m.checkIndexes(len(m.Accounts))
	}

	lookupLen, err := shortvec.DecodeLen(buf)
	if err != nil {
		return errors.Wrap(err, "failed to read address table lookup len")
	}
	m.AddressTableLookups = make([]MessageAddressTableLookup, lookupLen)
	loaded := 0
	for i := 0; i < lookupLen; i++ {
		lookup := MessageAddressTableLookup{PublicKey: make([]byte, ed25519.PublicKeySize)}
		if _, err = io.ReadFull(buf, lookup.PublicKey); err != nil {
			return errors.Wrapf(err, "failed to read address table lookup[%d] key", i)
		}
		if lookup.WritableIndexes, err = readIndexes(buf); err != nil {
			return errors.Wrapf(err, "failed to read address table lookup[%d] writable indexes", i)
		}
		if lookup.ReadonlyIndexes, err = readIndexes(buf); err != nil {
			return errors.Wrapf(err, "failed to read address table lookup[%d] readonly indexes", i)
		}

		loaded += len(lookup.WritableIndexes) + len(lookup.ReadonlyIndexes)
		m.AddressTableLookups[i] = lookup
	}

	return m.checkIndexes(len(m.Accounts) + loaded)
}

func (m *Message) checkIndexes(numAccounts int) error {
	for i, c := range m.Instructions {
		if int(c.ProgramIndex) >= len(m.Accounts) {
			return errors.Errorf("program index out of range: %d:%d", i, c.ProgramIndex)
		}
		for _, index := range c.Accounts {
			if int(index) >= numAccounts {
				return errors.Errorf("account index out of range: %d:%d", i, index)
			}
		}
	}
	return nil
}

func readCompiledInstruction(buf *bytes.Buffer) (c CompiledInstruction, err error) {
	if c.ProgramIndex, err = buf.ReadByte(); err != nil {
		return c, errors.Wrap(err, "program index")
	}
	if c.Accounts, err = readIndexes(buf); err != nil {
		return c, errors.Wrap(err, "accounts")
	}
	if c.Data, err = readIndexes(buf); err != nil {
		return c, errors.Wrap(err, "data")
	}
	return c, nil
}

// readIndexes reads a shortvec prefixed byte slice.
func readIndexes(buf *bytes.Buffer) ([]byte, error) {
	n, err := shortvec.DecodeLen(buf)
	if err != nil {
		return nil, err
	}

	out := make([]byte, n)
	if _, err := io.ReadFull(buf, out); err != nil {
		return nil, err
	}
	return out, nil
}
