// Package mempool holds signed transactions awaiting inclusion in a block.
// Entries are keyed by their own hash so re-gossiped transactions dedup for
// free; admission gates on a valid signature so the miner never has to
// re-verify what it pulls out.
package mempool

import (
	"sync"

	"github.com/qchain/node/foundation/blockchain/hash"
	"github.com/qchain/node/foundation/blockchain/transaction"
)

// Mempool is the single-mutex set of pending, signature-verified
// transactions.
type Mempool struct {
	mu      sync.Mutex
	validTx map[hash.H256]transaction.SignedTransaction
}

// New constructs an empty mempool.
func New() *Mempool {
	return &Mempool{
		validTx: make(map[hash.H256]transaction.SignedTransaction),
	}
}

// Insert admits stx iff its hash is not already present and its signature
// verifies against the embedded public key over the canonical encoding of
// the inner transaction. It reports whether the entry was newly admitted.
func (m *Mempool) Insert(stx transaction.SignedTransaction) bool {
	if !stx.Verify() {
		return false
	}

	h := stx.Hash()

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.validTx[h]; exists {
		return false
	}
	m.validTx[h] = stx
	return true
}

// Remove deletes h from the pool. A no-op if absent.
func (m *Mempool) Remove(h hash.H256) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.validTx, h)
}

// Contains reports whether h is currently pending.
func (m *Mempool) Contains(h hash.H256) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.validTx[h]
	return ok
}

// Count returns the number of pending transactions.
func (m *Mempool) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.validTx)
}

// Hashes returns the hashes of all currently pending transactions, for
// read-only inspection such as the debug surface.
func (m *Mempool) Hashes() []hash.H256 {
	m.mu.Lock()
	defer m.mu.Unlock()

	hashes := make([]hash.H256, 0, len(m.validTx))
	for h := range m.validTx {
		hashes = append(hashes, h)
	}
	return hashes
}

// Get returns the pending transaction for h, if present.
func (m *Mempool) Get(h hash.H256) (transaction.SignedTransaction, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stx, ok := m.validTx[h]
	return stx, ok
}

// DrainForBlock selects up to cap pending entries for inclusion in a
// candidate block. Selection order is unspecified; entries are not
// removed here — the caller removes the selected hashes only once the
// block they went into is actually admitted.
func (m *Mempool) DrainForBlock(capacity int) ([]hash.H256, []transaction.SignedTransaction) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if capacity <= 0 || len(m.validTx) == 0 {
		return nil, nil
	}

	n := capacity
	if n > len(m.validTx) {
		n = len(m.validTx)
	}

	hashes := make([]hash.H256, 0, n)
	txs := make([]transaction.SignedTransaction, 0, n)
	for h, stx := range m.validTx {
		hashes = append(hashes, h)
		txs = append(txs, stx)
		if len(hashes) == n {
			break
		}
	}

	return hashes, txs
}

// Missing filters hashes down to the subset not currently pending, for
// NewTransactionHashes gossip handling.
func (m *Mempool) Missing(hashes []hash.H256) []hash.H256 {
	m.mu.Lock()
	defer m.mu.Unlock()

	var missing []hash.H256
	for _, h := range hashes {
		if _, ok := m.validTx[h]; !ok {
			missing = append(missing, h)
		}
	}
	return missing
}

// Collect returns the subset of hashes present in the pool, for
// GetTransactions gossip handling.
func (m *Mempool) Collect(hashes []hash.H256) []transaction.SignedTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []transaction.SignedTransaction
	for _, h := range hashes {
		if stx, ok := m.validTx[h]; ok {
			out = append(out, stx)
		}
	}
	return out
}
