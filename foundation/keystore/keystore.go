// Package keystore loads and saves Ed25519 keypairs as PEM-encoded files
// and provides a directory-wide lookup from account address to keypair,
// the Ed25519 analogue of the teacher's ECDSA nameservice. go-ethereum's
// crypto.LoadECDSA/SaveECDSA only understands secp256k1 keys, so this core
// rolls its own raw-bytes PEM block instead of reusing that loader.
package keystore

import (
	"encoding/pem"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/qchain/node/foundation/blockchain/hash"
	"github.com/qchain/node/foundation/blockchain/signature"
)

// pemBlockType is the PEM header this package writes and expects.
const pemBlockType = "ED25519 PRIVATE KEY"

// fileExt is the extension a directory walk recognizes as a keyfile.
const fileExt = ".pem"

// Save writes kp's private key to path as a PEM file.
func Save(path string, kp signature.KeyPair) error {
	block := &pem.Block{
		Type:  pemBlockType,
		Bytes: kp.PrivateKey,
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("keystore: create %s: %w", path, err)
	}
	defer f.Close()

	if err := pem.Encode(f, block); err != nil {
		return fmt.Errorf("keystore: encode %s: %w", path, err)
	}
	return nil
}

// Load reads an Ed25519 keypair from a PEM file written by Save.
func Load(path string) (signature.KeyPair, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return signature.KeyPair{}, fmt.Errorf("keystore: read %s: %w", path, err)
	}

	block, _ := pem.Decode(raw)
	if block == nil || block.Type != pemBlockType {
		return signature.KeyPair{}, fmt.Errorf("keystore: %s is not a %s PEM file", path, pemBlockType)
	}

	return signature.FromPrivateKey(block.Bytes)
}

// KeyStore maps account address to keypair, populated by walking a
// directory of .pem files.
type KeyStore struct {
	accounts map[hash.H160]signature.KeyPair
	names    map[hash.H160]string
}

// New walks root for .pem key files and indexes each by its derived
// account address.
func New(root string) (*KeyStore, error) {
	ks := KeyStore{
		accounts: make(map[hash.H160]signature.KeyPair),
		names:    make(map[hash.H160]string),
	}

	fn := func(filename string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("keystore: walk: %w", err)
		}
		if info.IsDir() || path.Ext(filename) != fileExt {
			return nil
		}

		kp, err := Load(filename)
		if err != nil {
			return fmt.Errorf("keystore: load %s: %w", filename, err)
		}

		addr := signature.AddressOf(kp.PublicKey)
		ks.accounts[addr] = kp
		ks.names[addr] = strings.TrimSuffix(path.Base(filename), fileExt)

		return nil
	}

	if err := filepath.Walk(root, fn); err != nil {
		return nil, fmt.Errorf("keystore: walkdir failure: %w", err)
	}

	return &ks, nil
}

// Lookup returns the keypair registered for addr, if any.
func (ks *KeyStore) Lookup(addr hash.H160) (signature.KeyPair, bool) {
	kp, ok := ks.accounts[addr]
	return kp, ok
}

// Name returns the file-derived name for addr, or its hex form if unknown.
func (ks *KeyStore) Name(addr hash.H160) string {
	if name, ok := ks.names[addr]; ok {
		return name
	}
	return addr.Hex()
}

// Addresses returns every address this keystore has a keypair for.
func (ks *KeyStore) Addresses() []hash.H160 {
	addrs := make([]hash.H160, 0, len(ks.accounts))
	for addr := range ks.accounts {
		addrs = append(addrs, addr)
	}
	return addrs
}
