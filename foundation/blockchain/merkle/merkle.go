// Package merkle builds a commitment over an ordered sequence of hashable
// values and supports inclusion proofs against the resulting root.
//
// The tree is built bottom-up: at any level with an odd number of nodes the
// last node is duplicated so the level has even length, and each parent hash
// is SHA-256(left || right). Proof generation and verification are driven by
// the bit decomposition of the leaf index rather than an ad-hoc traversal,
// so both are correct for non-power-of-two leaf counts.
package merkle

import (
	"errors"

	"github.com/qchain/node/foundation/blockchain/hash"
	"github.com/qchain/node/foundation/blockchain/signature"
)

// ErrEmpty is returned by New when given an empty data set.
var ErrEmpty = errors.New("merkle: data must not be empty")

// Hashable is implemented by any value that can be committed to a Merkle
// tree leaf.
type Hashable interface {
	Hash() hash.H256
}

// Tree is a Merkle tree over a fixed, ordered sequence of values.
type Tree[T Hashable] struct {
	values []T
	levels [][]hash.H256 // levels[0] = padded leaf hashes ... levels[len-1] = {root}
}

// New builds a Merkle tree over data. data must be non-empty.
func New[T Hashable](data []T) (*Tree[T], error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}

	leaves := make([]hash.H256, len(data))
	for i, v := range data {
		leaves[i] = v.Hash()
	}

	levels := [][]hash.H256{padLevel(leaves)}
	for len(levels[len(levels)-1]) > 1 {
		levels = append(levels, padLevel(nextLevel(levels[len(levels)-1])))
	}

	return &Tree[T]{
		values: append([]T(nil), data...),
		levels: levels,
	}, nil
}

// Values returns the original ordered sequence the tree was built over.
func (t *Tree[T]) Values() []T {
	return append([]T(nil), t.values...)
}

// Root returns the top hash of the tree.
func (t *Tree[T]) Root() hash.H256 {
	return t.levels[len(t.levels)-1][0]
}

// LeafCount returns the number of original leaves (before padding).
func (t *Tree[T]) LeafCount() int {
	return len(t.values)
}

// Proof returns the sibling hashes along the path from leaf i to the root,
// in leaf-to-root order.
func (t *Tree[T]) Proof(i int) ([]hash.H256, error) {
	if i < 0 || i >= len(t.values) {
		return nil, errors.New("merkle: index out of range")
	}

	proof := make([]hash.H256, 0, len(t.levels)-1)
	idx := i
	for level := 0; level < len(t.levels)-1; level++ {
		nodes := t.levels[level]
		sibling := idx ^ 1
		proof = append(proof, nodes[sibling])
		idx /= 2
	}
	return proof, nil
}

// Verify reconstructs the root by folding proof elements with leafHash,
// choosing left/right at level j from bit j of index, and reports whether
// the result equals root.
func Verify(root hash.H256, leafHash hash.H256, proof []hash.H256, index int, leafCount int) bool {
	levels := levelsFor(leafCount)
	if len(proof) != levels {
		return false
	}

	current := leafHash
	for level := 0; level < levels; level++ {
		bit := (index >> level) & 1
		sibling := proof[level]
		if bit == 0 {
			current = hashChildren(current, sibling)
		} else {
			current = hashChildren(sibling, current)
		}
	}
	return current == root
}

// levelsFor returns ceil(log2(leafCount)), the number of proof elements a
// tree over leafCount leaves produces.
func levelsFor(leafCount int) int {
	levels := 0
	for n := leafCount; n > 1; n = (n + 1) / 2 {
		levels++
	}
	return levels
}

// padLevel duplicates the last node when the level has odd length greater
// than one, so a parent level can be computed by pairing.
func padLevel(nodes []hash.H256) []hash.H256 {
	if len(nodes)%2 == 1 && len(nodes) > 1 {
		padded := make([]hash.H256, len(nodes)+1)
		copy(padded, nodes)
		padded[len(nodes)] = nodes[len(nodes)-1]
		return padded
	}
	return nodes
}

// nextLevel computes the parent hashes for an even-length level.
func nextLevel(nodes []hash.H256) []hash.H256 {
	parents := make([]hash.H256, len(nodes)/2)
	for i := range parents {
		parents[i] = hashChildren(nodes[2*i], nodes[2*i+1])
	}
	return parents
}

// hashChildren computes the parent hash of a left/right pair.
func hashChildren(left, right hash.H256) hash.H256 {
	buf := make([]byte, 0, 64)
	buf = append(buf, left.Bytes()...)
	buf = append(buf, right.Bytes()...)
	return signature.Hash(buf)
}
