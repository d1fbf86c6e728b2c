package generator_test

import (
	"sync"
	"testing"
	"time"

	"github.com/qchain/node/foundation/blockchain/block"
	"github.com/qchain/node/foundation/blockchain/genesis"
	"github.com/qchain/node/foundation/blockchain/generator"
	"github.com/qchain/node/foundation/blockchain/ledger"
	"github.com/qchain/node/foundation/blockchain/mempool"
)

type recordingBroadcaster struct {
	mu    sync.Mutex
	count int
}

func (r *recordingBroadcaster) Broadcast(payload []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
}

func TestBootstrapCreditsAccounts(t *testing.T) {
	difficulty := genesis.DefaultDifficulty()
	g := block.Genesis(difficulty)
	l := ledger.New(g, nil)
	mp := mempool.New()
	bc := &recordingBroadcaster{}

	gen := generator.New(l, mp, bc, time.Millisecond, nil)
	accounts, err := gen.Bootstrap(2, 50)
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(accounts))
	}
	if len(l.KnownAddresses()) != 2 {
		t.Fatalf("expected 2 known addresses, got %d", len(l.KnownAddresses()))
	}
}

func TestRunGeneratesTransactions(t *testing.T) {
	difficulty := genesis.DefaultDifficulty()
	g := block.Genesis(difficulty)
	l := ledger.New(g, nil)
	mp := mempool.New()
	bc := &recordingBroadcaster{}

	gen := generator.New(l, mp, bc, time.Millisecond, nil)
	if _, err := gen.Bootstrap(2, 50); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	go gen.Run()

	deadline := time.Now().Add(2 * time.Second)
	for mp.Count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for a generated transaction")
		}
		time.Sleep(time.Millisecond)
	}

	gen.ShutDown()

	if mp.Count() == 0 {
		t.Fatal("expected at least one transaction in the mempool")
	}
}
