package keystore_test

import (
	"path/filepath"
	"testing"

	"github.com/qchain/node/foundation/blockchain/signature"
	"github.com/qchain/node/foundation/keystore"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	kp, err := signature.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	path := filepath.Join(dir, "alice.pem")
	if err := keystore.Save(path, kp); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := keystore.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(loaded.PrivateKey) != string(kp.PrivateKey) {
		t.Fatal("loaded private key does not match saved key")
	}
}

func TestNewWalksDirectory(t *testing.T) {
	dir := t.TempDir()

	kp1, _ := signature.Generate()
	kp2, _ := signature.Generate()
	if err := keystore.Save(filepath.Join(dir, "alice.pem"), kp1); err != nil {
		t.Fatalf("Save alice: %v", err)
	}
	if err := keystore.Save(filepath.Join(dir, "bob.pem"), kp2); err != nil {
		t.Fatalf("Save bob: %v", err)
	}

	ks, err := keystore.New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	addrs := ks.Addresses()
	if len(addrs) != 2 {
		t.Fatalf("expected 2 addresses, got %d", len(addrs))
	}

	aliceAddr := signature.AddressOf(kp1.PublicKey)
	if _, ok := ks.Lookup(aliceAddr); !ok {
		t.Fatal("expected alice's address to be found")
	}
	if ks.Name(aliceAddr) != "alice" {
		t.Fatalf("expected name %q, got %q", "alice", ks.Name(aliceAddr))
	}
}
