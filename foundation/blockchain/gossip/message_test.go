package gossip_test

import (
	"testing"

	"github.com/qchain/node/foundation/blockchain/block"
	"github.com/qchain/node/foundation/blockchain/genesis"
	"github.com/qchain/node/foundation/blockchain/gossip"
	"github.com/qchain/node/foundation/blockchain/hash"
	"github.com/qchain/node/foundation/blockchain/signature"
	"github.com/qchain/node/foundation/blockchain/transaction"
)

func TestPingPongRoundTrip(t *testing.T) {
	m := gossip.Ping("abc123")
	decoded, err := gossip.Decode(m.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Kind != gossip.KindPing || decoded.Nonce != "abc123" {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}
}

func TestHashListRoundTrip(t *testing.T) {
	hashes := []hash.H256{{0x01}, {0x02}, {0x03}}
	m := gossip.NewBlockHashes(hashes)

	decoded, err := gossip.Decode(m.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Kind != gossip.KindNewBlockHashes || len(decoded.Hashes) != 3 {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}
	for i, h := range hashes {
		if decoded.Hashes[i] != h {
			t.Fatalf("hash[%d] mismatch: got %s want %s", i, decoded.Hashes[i], h)
		}
	}
}

func TestBlocksRoundTrip(t *testing.T) {
	difficulty := genesis.DefaultDifficulty()
	g := block.Genesis(difficulty)
	b1, err := block.New(g.Hash(), difficulty, nil)
	if err != nil {
		t.Fatalf("block.New: %v", err)
	}

	m := gossip.Blocks([]block.Block{g, b1})
	decoded, err := gossip.Decode(m.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Kind != gossip.KindBlocks || len(decoded.Blocks) != 2 {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}
	if decoded.Blocks[0].Hash() != g.Hash() || decoded.Blocks[1].Hash() != b1.Hash() {
		t.Fatal("decoded block hashes do not match originals")
	}
}

func TestTransactionsRoundTrip(t *testing.T) {
	kp, err := signature.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	stx := transaction.Sign(transaction.New(hash.ZeroAddress, 5, 1), kp)

	m := gossip.Transactions([]transaction.SignedTransaction{stx})
	decoded, err := gossip.Decode(m.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Kind != gossip.KindTransactions || len(decoded.Transactions) != 1 {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}
	if !decoded.Transactions[0].Verify() {
		t.Fatal("decoded transaction should still verify")
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	if _, err := gossip.Decode([]byte{0xFF}); err == nil {
		t.Fatal("expected malformed kind to be rejected")
	}
	if _, err := gossip.Decode(nil); err == nil {
		t.Fatal("expected empty payload to be rejected")
	}
}
