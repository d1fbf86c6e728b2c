// Package wire implements the deterministic binary encoding primitives used
// for hashing and gossip framing: fixed-width little-endian integers and
// u64-length-prefixed byte sequences. Domain types (transactions, blocks,
// gossip messages) build their own canonical encodings on top of these
// primitives so that every peer computes byte-identical hashes.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrShortBuffer is returned when a Decoder runs out of bytes mid-field.
var ErrShortBuffer = errors.New("wire: buffer too short")

// Encoder accumulates a deterministic byte encoding.
type Encoder struct {
	buf bytes.Buffer
}

// NewEncoder returns an empty Encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Bytes returns the accumulated encoding.
func (e *Encoder) Bytes() []byte {
	return e.buf.Bytes()
}

// PutUint8 appends a single byte.
func (e *Encoder) PutUint8(v uint8) {
	e.buf.WriteByte(v)
}

// PutUint32 appends a fixed-width little-endian uint32.
func (e *Encoder) PutUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.buf.Write(b[:])
}

// PutUint64 appends a fixed-width little-endian uint64.
func (e *Encoder) PutUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.buf.Write(b[:])
}

// PutFixed appends b as-is without a length prefix. Used for fixed-size
// fields (digests, signatures, public keys) whose length is implied by the
// type, not carried on the wire.
func (e *Encoder) PutFixed(b []byte) {
	e.buf.Write(b)
}

// PutVarBytes appends a u64 length prefix followed by b.
func (e *Encoder) PutVarBytes(b []byte) {
	e.PutUint64(uint64(len(b)))
	e.buf.Write(b)
}

// PutString appends a string as length-prefixed UTF-8 bytes.
func (e *Encoder) PutString(s string) {
	e.PutVarBytes([]byte(s))
}

// Decoder consumes a deterministic byte encoding produced by Encoder.
type Decoder struct {
	buf []byte
	off int
}

// NewDecoder wraps b for sequential decoding.
func NewDecoder(b []byte) *Decoder {
	return &Decoder{buf: b}
}

// Remaining reports how many bytes are left unconsumed.
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.off
}

func (d *Decoder) take(n int) ([]byte, error) {
	if d.Remaining() < n {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrShortBuffer, n, d.Remaining())
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b, nil
}

// Uint8 decodes a single byte.
func (d *Decoder) Uint8() (uint8, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Uint32 decodes a fixed-width little-endian uint32.
func (d *Decoder) Uint32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Uint64 decodes a fixed-width little-endian uint64.
func (d *Decoder) Uint64() (uint64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Fixed decodes exactly n raw bytes.
func (d *Decoder) Fixed(n int) ([]byte, error) {
	return d.take(n)
}

// VarBytes decodes a u64 length prefix followed by that many bytes.
func (d *Decoder) VarBytes() ([]byte, error) {
	n, err := d.Uint64()
	if err != nil {
		return nil, err
	}
	return d.take(int(n))
}

// String decodes a length-prefixed UTF-8 string.
func (d *Decoder) String() (string, error) {
	b, err := d.VarBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}
