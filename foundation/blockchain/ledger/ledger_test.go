package ledger_test

import (
	"testing"

	"github.com/qchain/node/foundation/blockchain/block"
	"github.com/qchain/node/foundation/blockchain/genesis"
	"github.com/qchain/node/foundation/blockchain/hash"
	"github.com/qchain/node/foundation/blockchain/ledger"
)

func newTestLedger(t *testing.T) (*ledger.Ledger, hash.H256, hash.H256) {
	t.Helper()
	difficulty := genesis.DefaultDifficulty()
	g := block.Genesis(difficulty)
	l := ledger.New(g, nil)
	return l, g.Hash(), difficulty
}

func child(t *testing.T, parent, difficulty hash.H256) block.Block {
	t.Helper()
	b, err := block.New(parent, difficulty, nil)
	if err != nil {
		t.Fatalf("block.New: %v", err)
	}
	return b
}

// S1 — Genesis tip.
func TestGenesisTip(t *testing.T) {
	l, g, _ := newTestLedger(t)

	if l.Tip() != g {
		t.Fatalf("tip mismatch: got %s want %s", l.Tip(), g)
	}
	height, ok := l.Height(g)
	if !ok || height != 0 {
		t.Fatalf("expected genesis height 0, got %d ok=%v", height, ok)
	}
	chain := l.AllBlocksInLongestChain()
	if len(chain) != 1 || chain[0] != g {
		t.Fatalf("expected chain [genesis], got %v", chain)
	}
}

// S2 — Linear insert.
func TestLinearInsert(t *testing.T) {
	l, g, difficulty := newTestLedger(t)

	b1 := child(t, g, difficulty)
	if _, err := l.Insert(b1); err != nil {
		t.Fatalf("insert b1: %v", err)
	}
	b2 := child(t, b1.Hash(), difficulty)
	if _, err := l.Insert(b2); err != nil {
		t.Fatalf("insert b2: %v", err)
	}

	if l.Tip() != b2.Hash() {
		t.Fatalf("tip mismatch: got %s want %s", l.Tip(), b2.Hash())
	}

	chain := l.AllBlocksInLongestChain()
	want := []hash.H256{g, b1.Hash(), b2.Hash()}
	if len(chain) != len(want) {
		t.Fatalf("chain length mismatch: got %d want %d", len(chain), len(want))
	}
	for i := range want {
		if chain[i] != want[i] {
			t.Fatalf("chain[%d] mismatch: got %s want %s", i, chain[i], want[i])
		}
	}
}

// S3 — Fork tie-break by height.
func TestForkTieBreakByHeight(t *testing.T) {
	l, g, difficulty := newTestLedger(t)

	b1 := child(t, g, difficulty)
	b2 := child(t, g, difficulty)
	for _, b := range []block.Block{b1, b2} {
		if _, err := l.Insert(b); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	b3 := child(t, b2.Hash(), difficulty)
	b4 := child(t, b1.Hash(), difficulty)
	for _, b := range []block.Block{b3, b4} {
		if _, err := l.Insert(b); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	b5 := child(t, b3.Hash(), difficulty)
	if _, err := l.Insert(b5); err != nil {
		t.Fatalf("insert b5: %v", err)
	}

	if l.Tip() != b5.Hash() {
		t.Fatalf("tip mismatch: got %s want %s", l.Tip(), b5.Hash())
	}

	chain := l.AllBlocksInLongestChain()
	want := []hash.H256{g, b2.Hash(), b3.Hash(), b5.Hash()}
	if len(chain) != len(want) {
		t.Fatalf("chain length mismatch: got %d want %d: %v", len(chain), len(want), chain)
	}
	for i := range want {
		if chain[i] != want[i] {
			t.Fatalf("chain[%d] mismatch: got %s want %s", i, chain[i], want[i])
		}
	}
}

// P1/P6 — block tree integrity and monotone tip height across linear growth.
func TestHeightsMonotoneAndConsistent(t *testing.T) {
	l, g, difficulty := newTestLedger(t)

	prev := g
	var prevHeight uint32
	for i := 0; i < 5; i++ {
		b := child(t, prev, difficulty)
		if _, err := l.Insert(b); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
		height, ok := l.Height(b.Hash())
		if !ok {
			t.Fatalf("height not recorded for block %d", i)
		}
		if height != prevHeight+1 {
			t.Fatalf("height[%d] = %d, want %d", i, height, prevHeight+1)
		}
		tipHeight, _ := l.Height(l.Tip())
		if tipHeight < prevHeight {
			t.Fatalf("tip height decreased: %d < %d", tipHeight, prevHeight)
		}
		prev = b.Hash()
		prevHeight = height
	}
}

// P7 — orphan resolution is the network worker's job; the ledger itself
// must simply refuse an insert whose parent is absent, and accept it once
// the parent exists.
func TestInsertRejectsMissingParent(t *testing.T) {
	l, _, difficulty := newTestLedger(t)

	orphanParent := hash.H256{0xAA}
	orphan := child(t, orphanParent, difficulty)

	if _, err := l.Insert(orphan); err == nil {
		t.Fatal("expected error inserting block with missing parent")
	}
	if l.Has(orphan.Hash()) {
		t.Fatal("orphan must not be recorded in the block store")
	}
}
