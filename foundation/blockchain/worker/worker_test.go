package worker_test

import (
	"testing"
	"time"

	"github.com/qchain/node/foundation/blockchain/block"
	"github.com/qchain/node/foundation/blockchain/gossip"
	"github.com/qchain/node/foundation/blockchain/hash"
	"github.com/qchain/node/foundation/blockchain/ledger"
	"github.com/qchain/node/foundation/blockchain/mempool"
	"github.com/qchain/node/foundation/blockchain/worker"
	netgossip "github.com/qchain/node/internal/gossip"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for condition")
}

// easyDifficulty is a target that every block trivially satisfies with a
// zero nonce, so the test exercises orphan buffering instead of spending
// real wall-clock time on a nonce search.
func easyDifficulty() hash.H256 {
	var d hash.H256
	for i := range d {
		d[i] = 0xFF
	}
	return d
}

// P7 / S6 — out-of-order gossip: blocks A -> B -> C arrive as C, B, A and
// must all end up admitted with the correct heights and tip.
func TestOrphanResolutionOutOfOrder(t *testing.T) {
	difficulty := easyDifficulty()
	g := block.Genesis(difficulty)

	a, err := block.New(g.Hash(), difficulty, nil)
	if err != nil {
		t.Fatalf("block.New a: %v", err)
	}
	b, err := block.New(a.Hash(), difficulty, nil)
	if err != nil {
		t.Fatalf("block.New b: %v", err)
	}
	c, err := block.New(b.Hash(), difficulty, nil)
	if err != nil {
		t.Fatalf("block.New c: %v", err)
	}

	l := ledger.New(g, nil)
	mp := mempool.New()
	net := netgossip.New(16)
	pool := worker.New(l, mp, net, 2, nil)
	pool.Run(net)
	defer pool.Shutdown()

	deliver := func(blk block.Block) {
		net.Deliver(selfPeer{}, gossip.Blocks([]block.Block{blk}).Bytes())
	}

	deliver(c)
	deliver(b)
	deliver(a)

	waitFor(t, func() bool { return l.Len() == 4 })

	if l.Tip() != c.Hash() {
		t.Fatalf("expected tip %s, got %s", c.Hash(), l.Tip())
	}
	height, ok := l.Height(c.Hash())
	if !ok || height != 3 {
		t.Fatalf("expected height(C) == 3, got %d ok=%v", height, ok)
	}
	for _, h := range []block.Block{a, b, c} {
		if !l.Has(h.Hash()) {
			t.Fatalf("expected block %s to be admitted", h.Hash())
		}
	}
}

// selfPeer is a no-op Peer used when a test only cares about inbound
// delivery, not replies.
type selfPeer struct{}

func (selfPeer) ID() string        { return "test" }
func (selfPeer) Send(payload []byte) {}
