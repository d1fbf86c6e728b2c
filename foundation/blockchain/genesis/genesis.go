// Package genesis maintains access to the genesis configuration: the
// difficulty target every block in the chain must share (spec.md §4.3/§9:
// no difficulty retargeting, and the zero digest the source seeds would make
// proof of work trivial), the block transaction cap, and the bootstrap
// balances the transaction generator credits to its local accounts.
package genesis

import (
	"encoding/json"
	"os"
	"time"

	"github.com/qchain/node/foundation/blockchain/hash"
)

// DefaultDifficulty is the non-trivial difficulty seeded when no genesis
// file overrides it: the top byte is 0x01, every other byte zero. A zero
// digest (the source's literal genesis difficulty) would make every
// candidate hash satisfy PoW on the first nonce attempt.
func DefaultDifficulty() hash.H256 {
	var d hash.H256
	d[0] = 0x01
	return d
}

// DefaultBlockTxCap is the maximum number of signed transactions the miner
// selects into a single candidate block (spec.md §9 open question:
// implementer-defined cap, suggested 4).
const DefaultBlockTxCap = 4

// DefaultBeneficiaryBalance is the balance the transaction generator credits
// to each of its bootstrap accounts.
const DefaultBeneficiaryBalance = 50

// Genesis is the chain-wide configuration shared by every node.
type Genesis struct {
	Date       time.Time         `json:"date"`
	Difficulty hash.H256         `json:"difficulty"`
	BlockTxCap int               `json:"block_tx_cap"`
	Balances   map[string]uint32 `json:"balances"`
}

// Default returns the genesis configuration used when no file is supplied.
func Default() Genesis {
	return Genesis{
		Date:       time.Now().UTC(),
		Difficulty: DefaultDifficulty(),
		BlockTxCap: DefaultBlockTxCap,
		Balances:   map[string]uint32{},
	}
}

// Load reads a genesis configuration from a JSON file. Any field left
// unset keeps the Default() value.
func Load(path string) (Genesis, error) {
	g := Default()

	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}
	if err := json.Unmarshal(content, &g); err != nil {
		return Genesis{}, err
	}

	return g, nil
}
