package signature_test

import (
	"testing"

	"github.com/qchain/node/foundation/blockchain/signature"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	kp, err := signature.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	data := []byte("transaction payload")
	sig := signature.Sign(data, kp)

	if !signature.Verify(data, kp.PublicKey, sig) {
		t.Fatal("expected signature to verify")
	}

	if signature.Verify([]byte("different payload"), kp.PublicKey, sig) {
		t.Fatal("expected signature over different data to fail")
	}
}

func TestAddressOfIsDeterministic(t *testing.T) {
	kp, err := signature.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	a1 := signature.AddressOf(kp.PublicKey)
	a2 := signature.AddressOf(kp.PublicKey)
	if a1 != a2 {
		t.Fatal("expected AddressOf to be deterministic")
	}
	if a1.IsZero() {
		t.Fatal("expected a non-zero address")
	}
}
