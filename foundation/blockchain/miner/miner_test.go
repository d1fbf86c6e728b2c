package miner_test

import (
	"sync"
	"testing"
	"time"

	"github.com/qchain/node/foundation/blockchain/block"
	"github.com/qchain/node/foundation/blockchain/genesis"
	"github.com/qchain/node/foundation/blockchain/hash"
	"github.com/qchain/node/foundation/blockchain/ledger"
	"github.com/qchain/node/foundation/blockchain/mempool"
	"github.com/qchain/node/foundation/blockchain/miner"
	"github.com/qchain/node/foundation/blockchain/signature"
	"github.com/qchain/node/foundation/blockchain/transaction"
)

type recordingBroadcaster struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (r *recordingBroadcaster) Broadcast(payload []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, payload)
}

func (r *recordingBroadcaster) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payloads)
}

// easyDifficulty is a target that is satisfied almost immediately so the
// test does not spend real wall-clock time searching the nonce space.
func easyDifficulty() hash.H256 {
	var d hash.H256
	for i := range d {
		d[i] = 0xFF
	}
	return d
}

func TestMinerMinesOnceThenShutsDown(t *testing.T) {
	difficulty := easyDifficulty()
	g := block.Genesis(difficulty)
	l := ledger.New(g, nil)
	mp := mempool.New()
	bc := &recordingBroadcaster{}

	kp, err := signature.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	stx := transaction.Sign(transaction.New(hash.ZeroAddress, 1, 1), kp)
	mp.Insert(stx)

	m := miner.New(l, mp, bc, genesis.DefaultBlockTxCap, nil)

	done := make(chan struct{})
	go func() {
		m.Run()
		close(done)
	}()

	m.Start(0)

	deadline := time.After(2 * time.Second)
	for l.Tip() == g.Hash() {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for a block to be mined")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if l.Len() != 2 {
		t.Fatalf("expected 2 blocks in ledger, got %d", l.Len())
	}
	if bc.count() == 0 {
		t.Fatal("expected at least one broadcast after mining")
	}

	m.ShutDown()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for miner to shut down")
	}
}
