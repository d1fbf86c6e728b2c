// Package hash provides the fixed-size digest types used throughout the
// blockchain: H256 for block and transaction hashes and difficulty targets,
// H160 for account addresses.
package hash

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ZeroHash is the all-zero H256, used as the genesis block's parent.
var ZeroHash H256

// ZeroAddress is the all-zero H160.
var ZeroAddress H160

// H256 is a 32-byte digest, used for block hashes, transaction hashes, and
// difficulty targets. The zero value is the all-zero digest.
type H256 [32]byte

// BytesToH256 copies the last 32 bytes of b into an H256. Shorter input is
// left-padded with zeroes.
func BytesToH256(b []byte) H256 {
	var h H256
	if len(b) > len(h) {
		b = b[len(b)-len(h):]
	}
	copy(h[len(h)-len(b):], b)
	return h
}

// Bytes returns the raw 32 bytes of the digest.
func (h H256) Bytes() []byte {
	return h[:]
}

// Hex returns the 0x-prefixed lowercase hex encoding of the digest.
func (h H256) Hex() string {
	return hexutil.Encode(h[:])
}

// String implements fmt.Stringer.
func (h H256) String() string {
	return h.Hex()
}

// IsZero reports whether the digest is the all-zero value.
func (h H256) IsZero() bool {
	return h == H256{}
}

// Cmp compares two digests as big-endian unsigned integers. It returns a
// negative number, zero, or a positive number as h is less than, equal to,
// or greater than other. Because H256 is fixed-width and big-endian,
// straight lexicographic byte comparison already implements unsigned
// integer ordering.
func (h H256) Cmp(other H256) int {
	return bytes.Compare(h[:], other[:])
}

// LessOrEqual reports whether h <= target under the big-endian unsigned
// comparison used for proof-of-work checks.
func (h H256) LessOrEqual(target H256) bool {
	return h.Cmp(target) <= 0
}

// MarshalJSON encodes the digest as its 0x-prefixed hex string.
func (h H256) MarshalJSON() ([]byte, error) {
	return []byte(`"` + h.Hex() + `"`), nil
}

// UnmarshalJSON decodes a 0x-prefixed or bare hex string into the digest.
func (h *H256) UnmarshalJSON(data []byte) error {
	s, err := unquoteJSONString(data)
	if err != nil {
		return err
	}
	parsed, err := ParseH256(s)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// ParseH256 parses a 0x-prefixed or bare hex string into an H256.
func ParseH256(s string) (H256, error) {
	b, err := decodeHex(s)
	if err != nil {
		return H256{}, err
	}
	if len(b) != 32 {
		return H256{}, errors.New("hash: wrong length for H256")
	}
	var h H256
	copy(h[:], b)
	return h, nil
}

// H160 is a 20-byte account address, derived as the last 20 bytes of
// SHA-256(public key).
type H160 [20]byte

// BytesToH160 copies the last 20 bytes of b into an H160.
func BytesToH160(b []byte) H160 {
	var a H160
	if len(b) > len(a) {
		b = b[len(b)-len(a):]
	}
	copy(a[len(a)-len(b):], b)
	return a
}

// Bytes returns the raw 20 bytes of the address.
func (a H160) Bytes() []byte {
	return a[:]
}

// Hex returns the 0x-prefixed lowercase hex encoding of the address.
func (a H160) Hex() string {
	return hexutil.Encode(a[:])
}

// String implements fmt.Stringer.
func (a H160) String() string {
	return a.Hex()
}

// IsZero reports whether the address is the all-zero value.
func (a H160) IsZero() bool {
	return a == H160{}
}

// MarshalJSON encodes the address as its 0x-prefixed hex string.
func (a H160) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.Hex() + `"`), nil
}

// UnmarshalJSON decodes a 0x-prefixed or bare hex string into the address.
func (a *H160) UnmarshalJSON(data []byte) error {
	s, err := unquoteJSONString(data)
	if err != nil {
		return err
	}
	parsed, err := ParseH160(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseH160 parses a 0x-prefixed or bare hex string into an H160.
func ParseH160(s string) (H160, error) {
	b, err := decodeHex(s)
	if err != nil {
		return H160{}, err
	}
	if len(b) != 20 {
		return H160{}, errors.New("hash: wrong length for H160")
	}
	var a H160
	copy(a[:], b)
	return a, nil
}

func decodeHex(s string) ([]byte, error) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	return hex.DecodeString(s)
}

func unquoteJSONString(data []byte) (string, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", err
	}
	return s, nil
}
