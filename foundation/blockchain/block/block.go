// Package block defines the block header and block types and their
// canonical encoding. hash(Block) is defined as hash(BlockHeader): only the
// header needs to be exchanged and audited to follow the chain of hashes, a
// property a pruned node or light client could exploit even though neither
// is implemented by this core.
package block

import (
	"fmt"
	"time"

	"github.com/qchain/node/foundation/blockchain/hash"
	"github.com/qchain/node/foundation/blockchain/merkle"
	"github.com/qchain/node/foundation/blockchain/signature"
	"github.com/qchain/node/foundation/blockchain/transaction"
	"github.com/qchain/node/foundation/blockchain/wire"
)

// Timestamp is milliseconds since the Unix epoch, represented as a 128-bit
// value split across two 64-bit words so the wire encoding matches a peer
// that carries the full width even though Go has no native uint128 and a
// single uint64 of milliseconds will not overflow for a very long time.
type Timestamp struct {
	Hi uint64
	Lo uint64
}

// Now returns the current time as a Timestamp.
func Now() Timestamp {
	return Timestamp{Lo: uint64(time.Now().UnixMilli())}
}

// Before reports whether t occurred strictly before other.
func (t Timestamp) Before(other Timestamp) bool {
	if t.Hi != other.Hi {
		return t.Hi < other.Hi
	}
	return t.Lo < other.Lo
}

// MillisSinceEpoch returns the low-word milliseconds value, valid as long as
// Hi is zero (true for any timestamp before roughly the year 584 million).
func (t Timestamp) MillisSinceEpoch() uint64 {
	return t.Lo
}

// DiffMillis returns t - other in milliseconds, assuming both Hi words are
// zero, which is sufficient to compute arrival-delay statistics.
func (t Timestamp) DiffMillis(other Timestamp) int64 {
	return int64(t.Lo) - int64(other.Lo)
}

// Header carries everything needed to identify a block's place in the chain
// and to audit its proof of work without the transaction bodies.
type Header struct {
	Parent      hash.H256
	Nonce       uint32
	Difficulty hash.H256
	Timestamp  Timestamp
	MerkleRoot hash.H256
}

// Encode appends the canonical encoding of the header to e.
func (h Header) Encode(e *wire.Encoder) {
	e.PutFixed(h.Parent.Bytes())
	e.PutUint32(h.Nonce)
	e.PutFixed(h.Difficulty.Bytes())
	e.PutUint64(h.Timestamp.Hi)
	e.PutUint64(h.Timestamp.Lo)
	e.PutFixed(h.MerkleRoot.Bytes())
}

// Bytes returns the standalone canonical encoding of the header.
func (h Header) Bytes() []byte {
	e := wire.NewEncoder()
	h.Encode(e)
	return e.Bytes()
}

// Hash returns the header's content hash. hash(Block) == hash(Block.Header).
func (h Header) Hash() hash.H256 {
	return signature.Hash(h.Bytes())
}

// DecodeHeader reads a Header from d.
func DecodeHeader(d *wire.Decoder) (Header, error) {
	parent, err := d.Fixed(32)
	if err != nil {
		return Header{}, fmt.Errorf("block: parent: %w", err)
	}
	nonce, err := d.Uint32()
	if err != nil {
		return Header{}, fmt.Errorf("block: nonce: %w", err)
	}
	difficulty, err := d.Fixed(32)
	if err != nil {
		return Header{}, fmt.Errorf("block: difficulty: %w", err)
	}
	hi, err := d.Uint64()
	if err != nil {
		return Header{}, fmt.Errorf("block: timestamp hi: %w", err)
	}
	lo, err := d.Uint64()
	if err != nil {
		return Header{}, fmt.Errorf("block: timestamp lo: %w", err)
	}
	root, err := d.Fixed(32)
	if err != nil {
		return Header{}, fmt.Errorf("block: merkle root: %w", err)
	}

	return Header{
		Parent:     hash.BytesToH256(parent),
		Nonce:      nonce,
		Difficulty: hash.BytesToH256(difficulty),
		Timestamp:  Timestamp{Hi: hi, Lo: lo},
		MerkleRoot: hash.BytesToH256(root),
	}, nil
}

// Block bundles a header with the ordered sequence of signed transactions it
// commits to via MerkleRoot.
type Block struct {
	Header Header
	Body   []transaction.SignedTransaction
}

// New builds a block over txs, computing the Merkle root from their order.
func New(parent hash.H256, difficulty hash.H256, txs []transaction.SignedTransaction) (Block, error) {
	root, err := merkleRoot(txs)
	if err != nil {
		return Block{}, err
	}

	return Block{
		Header: Header{
			Parent:     parent,
			Nonce:      0,
			Difficulty: difficulty,
			Timestamp:  Now(),
			MerkleRoot: root,
		},
		Body: txs,
	}, nil
}

func merkleRoot(txs []transaction.SignedTransaction) (hash.H256, error) {
	if len(txs) == 0 {
		return hash.ZeroHash, nil
	}
	tree, err := merkle.New(txs)
	if err != nil {
		return hash.H256{}, err
	}
	return tree.Root(), nil
}

// Hash returns the block's content hash: hash(Header).
func (b Block) Hash() hash.H256 {
	return b.Header.Hash()
}

// Encode appends the canonical encoding of the block to e.
func (b Block) Encode(e *wire.Encoder) {
	b.Header.Encode(e)
	e.PutUint64(uint64(len(b.Body)))
	for _, tx := range b.Body {
		tx.Encode(e)
	}
}

// Bytes returns the standalone canonical encoding of the block.
func (b Block) Bytes() []byte {
	e := wire.NewEncoder()
	b.Encode(e)
	return e.Bytes()
}

// Decode reads a Block from d.
func Decode(d *wire.Decoder) (Block, error) {
	header, err := DecodeHeader(d)
	if err != nil {
		return Block{}, err
	}
	n, err := d.Uint64()
	if err != nil {
		return Block{}, fmt.Errorf("block: body length: %w", err)
	}

	body := make([]transaction.SignedTransaction, n)
	for i := range body {
		stx, err := transaction.DecodeSignedTransaction(d)
		if err != nil {
			return Block{}, fmt.Errorf("block: body[%d]: %w", i, err)
		}
		body[i] = stx
	}

	return Block{Header: header, Body: body}, nil
}

// Genesis constructs the single genesis block: an all-zero parent, nonce 1,
// an empty body, and the given difficulty target seeded for descendants.
// The genesis timestamp is fixed at 2ms since epoch, matching the source
// this core is grounded on, rather than "now" — genesis identity must be
// reproducible across nodes without agreeing on a clock.
func Genesis(difficulty hash.H256) Block {
	return Block{
		Header: Header{
			Parent:     hash.ZeroHash,
			Nonce:      1,
			Difficulty: difficulty,
			Timestamp:  Timestamp{Hi: 0, Lo: 2},
			MerkleRoot: hash.ZeroHash,
		},
		Body: nil,
	}
}
