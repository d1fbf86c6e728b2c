package transaction_test

import (
	"testing"

	"github.com/qchain/node/foundation/blockchain/hash"
	"github.com/qchain/node/foundation/blockchain/signature"
	"github.com/qchain/node/foundation/blockchain/transaction"
	"github.com/qchain/node/foundation/blockchain/wire"
)

func TestSignAndVerify(t *testing.T) {
	kp, err := signature.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	tx := transaction.New(hash.ZeroAddress, 1, 1)
	stx := transaction.Sign(tx, kp)

	if !stx.Verify() {
		t.Fatal("expected valid signature to verify")
	}

	mutated := stx
	mutated.Tx.Value = 2
	if mutated.Verify() {
		t.Fatal("expected mutated transaction to fail verification")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	kp, err := signature.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	tx := transaction.New(hash.ZeroAddress, 7, 3)
	stx := transaction.Sign(tx, kp)

	e := wire.NewEncoder()
	stx.Encode(e)

	decoded, err := transaction.DecodeSignedTransaction(wire.NewDecoder(e.Bytes()))
	if err != nil {
		t.Fatalf("DecodeSignedTransaction: %v", err)
	}

	if decoded.Hash() != stx.Hash() {
		t.Fatalf("hash mismatch after round trip: got %s want %s", decoded.Hash(), stx.Hash())
	}
	if !decoded.Verify() {
		t.Fatal("expected decoded transaction to verify")
	}
}

func TestSenderMatchesAddressOf(t *testing.T) {
	kp, err := signature.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	tx := transaction.New(hash.ZeroAddress, 1, 1)
	stx := transaction.Sign(tx, kp)

	want := signature.AddressOf(kp.PublicKey)
	if stx.Sender() != want {
		t.Fatalf("sender mismatch: got %s want %s", stx.Sender(), want)
	}
}
