// Package gossip defines the wire message taxonomy peers exchange: a
// reactive, pull-based inventory protocol where peers announce hashes and
// requesters pull the bodies they are missing. Every message is a tagged
// variant over the same deterministic encoding used for hashing, so a
// message and its constituent blocks/transactions decode byte-for-byte
// the same way on every peer.
package gossip

import (
	"errors"
	"fmt"

	"github.com/qchain/node/foundation/blockchain/block"
	"github.com/qchain/node/foundation/blockchain/hash"
	"github.com/qchain/node/foundation/blockchain/transaction"
	"github.com/qchain/node/foundation/blockchain/wire"
)

// Kind tags which variant a decoded Message carries.
type Kind uint8

// The message taxonomy. Values are part of the wire contract: do not
// renumber once peers are interoperating.
const (
	KindPing Kind = iota
	KindPong
	KindNewBlockHashes
	KindGetBlocks
	KindBlocks
	KindNewTransactionHashes
	KindGetTransactions
	KindTransactions
)

func (k Kind) String() string {
	switch k {
	case KindPing:
		return "Ping"
	case KindPong:
		return "Pong"
	case KindNewBlockHashes:
		return "NewBlockHashes"
	case KindGetBlocks:
		return "GetBlocks"
	case KindBlocks:
		return "Blocks"
	case KindNewTransactionHashes:
		return "NewTransactionHashes"
	case KindGetTransactions:
		return "GetTransactions"
	case KindTransactions:
		return "Transactions"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ErrMalformed is returned when a payload cannot be decoded into a valid
// Message. The worker pool logs and drops such a payload; closing the
// connection it arrived on is left to the peer layer.
var ErrMalformed = errors.New("gossip: malformed message")

// Message is the decoded form of a single gossip payload. Exactly the
// field(s) relevant to Kind are populated; the rest are zero.
type Message struct {
	Kind Kind

	Nonce string // Ping, Pong

	Hashes []hash.H256 // NewBlockHashes, GetBlocks, NewTransactionHashes, GetTransactions

	Blocks []block.Block // Blocks

	Transactions []transaction.SignedTransaction // Transactions
}

// Ping constructs a Ping message.
func Ping(nonce string) Message { return Message{Kind: KindPing, Nonce: nonce} }

// Pong constructs a Pong message.
func Pong(nonce string) Message { return Message{Kind: KindPong, Nonce: nonce} }

// NewBlockHashes constructs a NewBlockHashes announcement.
func NewBlockHashes(hashes []hash.H256) Message {
	return Message{Kind: KindNewBlockHashes, Hashes: hashes}
}

// GetBlocks constructs a GetBlocks request.
func GetBlocks(hashes []hash.H256) Message {
	return Message{Kind: KindGetBlocks, Hashes: hashes}
}

// Blocks constructs a Blocks reply.
func Blocks(blocks []block.Block) Message {
	return Message{Kind: KindBlocks, Blocks: blocks}
}

// NewTransactionHashes constructs a NewTransactionHashes announcement.
func NewTransactionHashes(hashes []hash.H256) Message {
	return Message{Kind: KindNewTransactionHashes, Hashes: hashes}
}

// GetTransactions constructs a GetTransactions request.
func GetTransactions(hashes []hash.H256) Message {
	return Message{Kind: KindGetTransactions, Hashes: hashes}
}

// Transactions constructs a Transactions reply.
func Transactions(txs []transaction.SignedTransaction) Message {
	return Message{Kind: KindTransactions, Transactions: txs}
}

// Encode appends the canonical encoding of m to e.
func (m Message) Encode(e *wire.Encoder) {
	e.PutUint8(uint8(m.Kind))

	switch m.Kind {
	case KindPing, KindPong:
		e.PutString(m.Nonce)

	case KindNewBlockHashes, KindGetBlocks, KindNewTransactionHashes, KindGetTransactions:
		e.PutUint64(uint64(len(m.Hashes)))
		for _, h := range m.Hashes {
			e.PutFixed(h.Bytes())
		}

	case KindBlocks:
		e.PutUint64(uint64(len(m.Blocks)))
		for _, b := range m.Blocks {
			b.Encode(e)
		}

	case KindTransactions:
		e.PutUint64(uint64(len(m.Transactions)))
		for _, tx := range m.Transactions {
			tx.Encode(e)
		}
	}
}

// Bytes returns the standalone canonical encoding of m, ready to hand to
// a peer handle.
func (m Message) Bytes() []byte {
	e := wire.NewEncoder()
	m.Encode(e)
	return e.Bytes()
}

// Decode parses a Message from raw payload bytes. A decode failure means
// the payload was malformed and both it and the connection it arrived on
// should be dropped.
func Decode(payload []byte) (Message, error) {
	d := wire.NewDecoder(payload)

	kindByte, err := d.Uint8()
	if err != nil {
		return Message{}, fmt.Errorf("%w: kind: %v", ErrMalformed, err)
	}
	kind := Kind(kindByte)

	var m Message
	m.Kind = kind

	switch kind {
	case KindPing, KindPong:
		s, err := d.String()
		if err != nil {
			return Message{}, fmt.Errorf("%w: nonce: %v", ErrMalformed, err)
		}
		m.Nonce = s

	case KindNewBlockHashes, KindGetBlocks, KindNewTransactionHashes, KindGetTransactions:
		n, err := d.Uint64()
		if err != nil {
			return Message{}, fmt.Errorf("%w: hash count: %v", ErrMalformed, err)
		}
		hashes := make([]hash.H256, n)
		for i := range hashes {
			raw, err := d.Fixed(32)
			if err != nil {
				return Message{}, fmt.Errorf("%w: hash[%d]: %v", ErrMalformed, i, err)
			}
			hashes[i] = hash.BytesToH256(raw)
		}
		m.Hashes = hashes

	case KindBlocks:
		n, err := d.Uint64()
		if err != nil {
			return Message{}, fmt.Errorf("%w: block count: %v", ErrMalformed, err)
		}
		blocks := make([]block.Block, n)
		for i := range blocks {
			b, err := block.Decode(d)
			if err != nil {
				return Message{}, fmt.Errorf("%w: block[%d]: %v", ErrMalformed, i, err)
			}
			blocks[i] = b
		}
		m.Blocks = blocks

	case KindTransactions:
		n, err := d.Uint64()
		if err != nil {
			return Message{}, fmt.Errorf("%w: tx count: %v", ErrMalformed, err)
		}
		txs := make([]transaction.SignedTransaction, n)
		for i := range txs {
			stx, err := transaction.DecodeSignedTransaction(d)
			if err != nil {
				return Message{}, fmt.Errorf("%w: tx[%d]: %v", ErrMalformed, i, err)
			}
			txs[i] = stx
		}
		m.Transactions = txs

	default:
		return Message{}, fmt.Errorf("%w: unknown kind %d", ErrMalformed, kindByte)
	}

	return m, nil
}
