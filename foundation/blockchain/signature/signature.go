// Package signature handles all lower level support for signing and
// verifying transactions and for deriving account addresses from public
// keys. It uses Ed25519 rather than the secp256k1/ECDSA scheme an Ethereum
// style chain would use, since this chain's wire format commits to raw
// Ed25519 signatures and public keys.
package signature

import (
	"crypto/sha256"
	"errors"

	"golang.org/x/crypto/ed25519"

	"github.com/qchain/node/foundation/blockchain/hash"
)

// SignatureSize is the length in bytes of a raw Ed25519 signature.
const SignatureSize = ed25519.SignatureSize

// PublicKeySize is the length in bytes of a raw Ed25519 public key.
const PublicKeySize = ed25519.PublicKeySize

// ErrInvalidSignature is the error value for a signature that does not
// match the data under the given public key. Verify reports that case as
// false and does not return this error.
var ErrInvalidSignature = errors.New("signature: verification failed")

// KeyPair wraps an Ed25519 private key together with its derived public key.
type KeyPair struct {
	PrivateKey ed25519.PrivateKey
	PublicKey  ed25519.PublicKey
}

// Generate creates a new random Ed25519 keypair.
func Generate() (KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return KeyPair{}, err
	}
	return KeyPair{PrivateKey: priv, PublicKey: pub}, nil
}

// FromPrivateKey rebuilds a KeyPair from a 64-byte raw Ed25519 private key.
func FromPrivateKey(raw []byte) (KeyPair, error) {
	if len(raw) != ed25519.PrivateKeySize {
		return KeyPair{}, errors.New("signature: wrong private key length")
	}
	priv := ed25519.PrivateKey(append([]byte(nil), raw...))
	return KeyPair{PrivateKey: priv, PublicKey: priv.Public().(ed25519.PublicKey)}, nil
}

// Sign signs the given canonical encoding of a value and returns the raw
// signature bytes.
func Sign(data []byte, kp KeyPair) []byte {
	return ed25519.Sign(kp.PrivateKey, data)
}

// Verify reports whether sig is a valid Ed25519 signature for data under
// publicKey.
func Verify(data []byte, publicKey []byte, sig []byte) bool {
	if len(publicKey) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey), data, sig)
}

// AddressOf derives the 20-byte account address for a public key: the last
// 20 bytes of SHA-256(public key).
func AddressOf(publicKey []byte) hash.H160 {
	sum := sha256.Sum256(publicKey)
	return hash.BytesToH160(sum[:])
}

// Hash returns the SHA-256 digest of the given canonical encoding.
func Hash(data []byte) hash.H256 {
	return hash.H256(sha256.Sum256(data))
}
