// Package transaction implements the value-transfer record and its signed,
// gossip-ready wrapper. Canonical encoding is a deterministic byte layout
// (see foundation/blockchain/wire) so that hashing and signing always
// operate on the same bytes regardless of which peer produced them.
package transaction

import (
	"errors"
	"fmt"

	"github.com/qchain/node/foundation/blockchain/hash"
	"github.com/qchain/node/foundation/blockchain/signature"
	"github.com/qchain/node/foundation/blockchain/wire"
)

// Transaction is a value-transfer record: move Value units to Recipient,
// authorized by the account whose nonce is AccountNonce.
type Transaction struct {
	Recipient    hash.H160
	Value        uint32
	AccountNonce uint8
}

// New constructs a Transaction.
func New(recipient hash.H160, value uint32, accountNonce uint8) Transaction {
	return Transaction{
		Recipient:    recipient,
		Value:        value,
		AccountNonce: accountNonce,
	}
}

// Encode appends the canonical encoding of the transaction to e.
func (tx Transaction) Encode(e *wire.Encoder) {
	e.PutFixed(tx.Recipient.Bytes())
	e.PutUint32(tx.Value)
	e.PutUint8(tx.AccountNonce)
}

// Bytes returns the standalone canonical encoding of the transaction.
func (tx Transaction) Bytes() []byte {
	e := wire.NewEncoder()
	tx.Encode(e)
	return e.Bytes()
}

// Hash returns the transaction's content hash, SHA-256 of its canonical
// encoding.
func (tx Transaction) Hash() hash.H256 {
	return signature.Hash(tx.Bytes())
}

// DecodeTransaction reads a Transaction from d.
func DecodeTransaction(d *wire.Decoder) (Transaction, error) {
	recipient, err := d.Fixed(20)
	if err != nil {
		return Transaction{}, fmt.Errorf("transaction: recipient: %w", err)
	}
	value, err := d.Uint32()
	if err != nil {
		return Transaction{}, fmt.Errorf("transaction: value: %w", err)
	}
	nonce, err := d.Uint8()
	if err != nil {
		return Transaction{}, fmt.Errorf("transaction: nonce: %w", err)
	}

	return Transaction{
		Recipient:    hash.BytesToH160(recipient),
		Value:        value,
		AccountNonce: nonce,
	}, nil
}

// Sign signs tx with kp and bundles the result with the raw public key into
// a SignedTransaction.
func Sign(tx Transaction, kp signature.KeyPair) SignedTransaction {
	sig := signature.Sign(tx.Bytes(), kp)
	var sigArr [signature.SignatureSize]byte
	copy(sigArr[:], sig)
	var pubArr [signature.PublicKeySize]byte
	copy(pubArr[:], kp.PublicKey)

	return SignedTransaction{
		Tx:        tx,
		Signature: sigArr,
		PublicKey: pubArr,
	}
}

// SignedTransaction is a Transaction together with a detached Ed25519
// signature and the raw public key that produced it.
type SignedTransaction struct {
	Tx        Transaction
	Signature [signature.SignatureSize]byte
	PublicKey [signature.PublicKeySize]byte
}

// Encode appends the canonical encoding of the signed transaction to e. The
// hash of a SignedTransaction commits to all three fields.
func (stx SignedTransaction) Encode(e *wire.Encoder) {
	stx.Tx.Encode(e)
	e.PutFixed(stx.Signature[:])
	e.PutFixed(stx.PublicKey[:])
}

// Bytes returns the standalone canonical encoding of the signed transaction.
func (stx SignedTransaction) Bytes() []byte {
	e := wire.NewEncoder()
	stx.Encode(e)
	return e.Bytes()
}

// Hash returns the content hash of the signed transaction. It is what the
// mempool keys entries by and what Merkle trees over block bodies commit to.
func (stx SignedTransaction) Hash() hash.H256 {
	return signature.Hash(stx.Bytes())
}

// DecodeSignedTransaction reads a SignedTransaction from d.
func DecodeSignedTransaction(d *wire.Decoder) (SignedTransaction, error) {
	tx, err := DecodeTransaction(d)
	if err != nil {
		return SignedTransaction{}, err
	}
	sig, err := d.Fixed(signature.SignatureSize)
	if err != nil {
		return SignedTransaction{}, fmt.Errorf("transaction: signature: %w", err)
	}
	pub, err := d.Fixed(signature.PublicKeySize)
	if err != nil {
		return SignedTransaction{}, fmt.Errorf("transaction: public key: %w", err)
	}

	var stx SignedTransaction
	stx.Tx = tx
	copy(stx.Signature[:], sig)
	copy(stx.PublicKey[:], pub)
	return stx, nil
}

// Verify reports whether the signed transaction carries a valid Ed25519
// signature over its inner transaction's canonical encoding, produced by
// the embedded public key.
func (stx SignedTransaction) Verify() bool {
	return signature.Verify(stx.Tx.Bytes(), stx.PublicKey[:], stx.Signature[:])
}

// Sender returns the account address that produced the signature.
func (stx SignedTransaction) Sender() hash.H160 {
	return signature.AddressOf(stx.PublicKey[:])
}

// ErrInvalidTransaction is the error value for a transaction that fails
// basic structural checks. No function in this package returns it.
var ErrInvalidTransaction = errors.New("transaction: invalid")
