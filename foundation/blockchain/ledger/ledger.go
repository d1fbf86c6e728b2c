// Package ledger maintains the in-memory block tree and per-account state
// shared by the miner and the network worker: a block store keyed by hash,
// a height index for walking the longest chain, and account (nonce,
// balance) pairs mutated only by the local miner's own admissions.
package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/qchain/node/foundation/blockchain/block"
	"github.com/qchain/node/foundation/blockchain/hash"
)

// Account is the per-address state the ledger tracks: the nonce of the last
// transaction applied from this account, and its remaining balance.
type Account struct {
	Nonce   uint8
	Balance uint32
}

// ErrParentNotFound is returned by Insert when a block's parent has not
// been admitted yet. The caller (network worker) is responsible for
// parking the block and soliciting its parent; the ledger does not guard
// against this defensively beyond refusing the corrupting insert.
var ErrParentNotFound = errors.New("ledger: parent not found")

// ErrUnknownAccount is the error value for an address with no recorded
// state. Account reports that case through its ok result and does not
// return this error.
var ErrUnknownAccount = errors.New("ledger: unknown account")

// Ledger is the single-mutex aggregate of the block store, height index,
// and account state. Readers and writers share the same lock; this core
// runs at a scale where a reader/writer split buys nothing.
type Ledger struct {
	mu        sync.Mutex
	blocks    map[hash.H256]block.Block
	heights   map[hash.H256]uint32
	state     map[hash.H160]Account
	genesis   hash.H256
	evHandler func(v string, args ...any)
}

// noopEvHandler is used when New is called with a nil handler.
func noopEvHandler(v string, args ...any) {}

// New constructs a ledger seeded with the given genesis block. The genesis
// is recorded at height 0 and is never removed.
func New(genesisBlock block.Block, evHandler func(v string, args ...any)) *Ledger {
	if evHandler == nil {
		evHandler = noopEvHandler
	}

	g := genesisBlock.Hash()

	l := &Ledger{
		blocks:    make(map[hash.H256]block.Block),
		heights:   make(map[hash.H256]uint32),
		state:     make(map[hash.H160]Account),
		genesis:   g,
		evHandler: evHandler,
	}

	l.blocks[g] = genesisBlock
	l.heights[g] = 0

	evHandler("ledger: genesis %s", g)

	return l
}

// Bootstrap credits initial balances to the given addresses, as the
// transaction generator does for its own local accounts. It does not
// touch the block store.
func (l *Ledger) Bootstrap(balances map[hash.H160]uint32) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for addr, balance := range balances {
		l.state[addr] = Account{Balance: balance}
	}
}

// Genesis returns the hash of the genesis block.
func (l *Ledger) Genesis() hash.H256 {
	return l.genesis
}

// Has reports whether h has already been admitted.
func (l *Ledger) Has(h hash.H256) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.blocks[h]
	return ok
}

// Block returns the admitted block with the given hash.
func (l *Ledger) Block(h hash.H256) (block.Block, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.blocks[h]
	return b, ok
}

// Height returns the height of an admitted block.
func (l *Ledger) Height(h hash.H256) (uint32, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	height, ok := l.heights[h]
	return height, ok
}

// Difficulty returns the difficulty target an admitted block's header
// carries, so the miner can read the tip's difficulty without fetching the
// whole block.
func (l *Ledger) Difficulty(h hash.H256) (hash.H256, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.blocks[h]
	if !ok {
		return hash.H256{}, false
	}
	return b.Header.Difficulty, true
}

// Account returns the current state of an address. Accounts not yet
// credited or debited read as the zero value with ok=false.
func (l *Ledger) Account(addr hash.H160) (Account, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	acc, ok := l.state[addr]
	return acc, ok
}

// Insert admits b into the block tree. The parent must already be
// present; insertion of a block with an absent parent is refused and
// leaves the index untouched.
func (l *Ledger) Insert(b block.Block) (hash.H256, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	h := b.Hash()
	if _, exists := l.blocks[h]; exists {
		return h, nil
	}

	parentHeight, ok := l.heights[b.Header.Parent]
	if !ok {
		return hash.H256{}, fmt.Errorf("%w: %s", ErrParentNotFound, b.Header.Parent)
	}

	l.blocks[h] = b
	l.heights[h] = parentHeight + 1

	l.evHandler("ledger: insert %s height %d", h, parentHeight+1)

	return h, nil
}

// ApplyMinedBlock inserts a block the local miner just solved and applies
// its transactions to account state: each sender's nonce advances to the
// transaction's account_nonce and its balance is debited by value. A
// transaction whose sender's balance is below its value is skipped and
// leaves that account unchanged, though the block is still admitted. Blocks
// admitted via gossip do not take this path (§9: state reflects only the
// local miner's own view; see DESIGN.md for the rationale).
func (l *Ledger) ApplyMinedBlock(b block.Block) (hash.H256, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	h := b.Hash()
	if _, exists := l.blocks[h]; exists {
		return h, nil
	}

	parentHeight, ok := l.heights[b.Header.Parent]
	if !ok {
		return hash.H256{}, fmt.Errorf("%w: %s", ErrParentNotFound, b.Header.Parent)
	}

	for _, stx := range b.Body {
		sender := stx.Sender()
		acc := l.state[sender]
		if acc.Balance < stx.Tx.Value {
			continue
		}
		acc.Nonce = stx.Tx.AccountNonce
		acc.Balance -= stx.Tx.Value
		l.state[sender] = acc
	}

	l.blocks[h] = b
	l.heights[h] = parentHeight + 1

	l.evHandler("ledger: applied mined block %s height %d", h, parentHeight+1)

	return h, nil
}

// Tip returns the hash of the block at maximum height. Ties are broken by
// the first maximum encountered during map iteration, an acceptable
// non-determinism at this scale.
func (l *Ledger) Tip() hash.H256 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.tipLocked()
}

func (l *Ledger) tipLocked() hash.H256 {
	var tip hash.H256
	var best uint32
	first := true

	for h, height := range l.heights {
		if first || height > best {
			tip = h
			best = height
			first = false
		}
	}

	return tip
}

// AllBlocksInLongestChain walks parent pointers from the tip back to
// genesis and returns the sequence in genesis-first order.
func (l *Ledger) AllBlocksInLongestChain() []hash.H256 {
	l.mu.Lock()
	defer l.mu.Unlock()

	tip := l.tipLocked()

	var reversed []hash.H256
	cur := tip
	for {
		reversed = append(reversed, cur)
		if cur == l.genesis {
			break
		}
		b := l.blocks[cur]
		cur = b.Header.Parent
	}

	chain := make([]hash.H256, len(reversed))
	for i, h := range reversed {
		chain[len(reversed)-1-i] = h
	}
	return chain
}

// KnownAddresses returns every address the ledger has state for, in no
// particular order. Used by the transaction generator to pick recipients.
func (l *Ledger) KnownAddresses() []hash.H160 {
	l.mu.Lock()
	defer l.mu.Unlock()

	addrs := make([]hash.H160, 0, len(l.state))
	for addr := range l.state {
		addrs = append(addrs, addr)
	}
	return addrs
}

// Missing filters hashes down to the subset not currently admitted, for
// NewBlockHashes gossip handling.
func (l *Ledger) Missing(hashes []hash.H256) []hash.H256 {
	l.mu.Lock()
	defer l.mu.Unlock()

	var missing []hash.H256
	for _, h := range hashes {
		if _, ok := l.blocks[h]; !ok {
			missing = append(missing, h)
		}
	}
	return missing
}

// Collect returns the admitted blocks among hashes, for GetBlocks gossip
// handling.
func (l *Ledger) Collect(hashes []hash.H256) []block.Block {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []block.Block
	for _, h := range hashes {
		if b, ok := l.blocks[h]; ok {
			out = append(out, b)
		}
	}
	return out
}

// Len returns the number of admitted blocks.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.blocks)
}
