package mempool_test

import (
	"testing"

	"github.com/qchain/node/foundation/blockchain/hash"
	"github.com/qchain/node/foundation/blockchain/mempool"
	"github.com/qchain/node/foundation/blockchain/signature"
	"github.com/qchain/node/foundation/blockchain/transaction"
)

func signedTx(t *testing.T, value uint32, nonce uint8) transaction.SignedTransaction {
	t.Helper()
	kp, err := signature.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return transaction.Sign(transaction.New(hash.ZeroAddress, value, nonce), kp)
}

// P5 — mempool dedup.
func TestInsertDedup(t *testing.T) {
	m := mempool.New()
	stx := signedTx(t, 10, 1)

	if !m.Insert(stx) {
		t.Fatal("expected first insert to admit")
	}
	if m.Insert(stx) {
		t.Fatal("expected duplicate insert to be rejected")
	}
	if m.Count() != 1 {
		t.Fatalf("expected count 1, got %d", m.Count())
	}
}

func TestInsertRejectsBadSignature(t *testing.T) {
	m := mempool.New()
	stx := signedTx(t, 10, 1)
	stx.Tx.Value = 999 // mutate after signing

	if m.Insert(stx) {
		t.Fatal("expected tampered transaction to be rejected")
	}
	if m.Count() != 0 {
		t.Fatalf("expected count 0, got %d", m.Count())
	}
}

func TestRemoveAndContains(t *testing.T) {
	m := mempool.New()
	stx := signedTx(t, 5, 1)
	m.Insert(stx)

	if !m.Contains(stx.Hash()) {
		t.Fatal("expected pool to contain inserted tx")
	}
	m.Remove(stx.Hash())
	if m.Contains(stx.Hash()) {
		t.Fatal("expected tx removed from pool")
	}
	m.Remove(stx.Hash()) // no-op on absent entry
}

func TestDrainForBlockRespectsCap(t *testing.T) {
	m := mempool.New()
	for i := uint8(0); i < 6; i++ {
		m.Insert(signedTx(t, uint32(i), i))
	}

	hashes, txs := m.DrainForBlock(4)
	if len(hashes) != 4 || len(txs) != 4 {
		t.Fatalf("expected 4 entries, got %d hashes %d txs", len(hashes), len(txs))
	}
	if m.Count() != 6 {
		t.Fatal("DrainForBlock must not remove entries itself")
	}
}

func TestMissingAndCollect(t *testing.T) {
	m := mempool.New()
	stx := signedTx(t, 1, 1)
	m.Insert(stx)

	other := hash.H256{0x01}
	missing := m.Missing([]hash.H256{stx.Hash(), other})
	if len(missing) != 1 || missing[0] != other {
		t.Fatalf("expected only %s missing, got %v", other, missing)
	}

	collected := m.Collect([]hash.H256{stx.Hash(), other})
	if len(collected) != 1 || collected[0].Hash() != stx.Hash() {
		t.Fatalf("expected collect to return only present tx, got %d entries", len(collected))
	}
}
