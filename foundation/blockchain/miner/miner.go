// Package miner runs the proof-of-work search as a dedicated goroutine
// driven by a three-state control protocol: Paused (initial), Run(lambda),
// and ShutDown, delivered over a control channel rather than by exceptions
// or long-jumps. A mining pass reads the current tip and its difficulty,
// drains up to a fixed number of mempool entries, searches the nonce space
// for a satisfying hash, and on success commits the block and broadcasts
// its hash to peers.
package miner

import (
	"os"
	"time"

	"github.com/qchain/node/foundation/blockchain/block"
	"github.com/qchain/node/foundation/blockchain/gossip"
	"github.com/qchain/node/foundation/blockchain/hash"
	"github.com/qchain/node/foundation/blockchain/ledger"
	"github.com/qchain/node/foundation/blockchain/mempool"
)

// Broadcaster is the minimal outbound contract the miner needs: announce
// a payload to every connected peer. internal/gossip.Network satisfies
// this directly.
type Broadcaster interface {
	Broadcast(payload []byte)
}

type controlKind int

const (
	cmdStart controlKind = iota
	cmdExit
)

type control struct {
	kind   controlKind
	lambda time.Duration
}

// Miner is the PoW search loop. Construct with New and run Run on its own
// goroutine; drive it with Start/ShutDown from any other goroutine.
type Miner struct {
	ledger     *ledger.Ledger
	mempool    *mempool.Mempool
	net        Broadcaster
	blockTxCap int
	evHandler  func(v string, args ...any)

	control chan control

	// shuttingDown latches true the moment an Exit signal is observed,
	// including mid nonce-search; Run checks it between passes instead of
	// resubmitting the signal onto control.
	shuttingDown bool
}

func noopEvHandler(v string, args ...any) {}

// New constructs a miner over the given ledger, mempool, and broadcaster.
// It starts in the Paused state; call Start to begin mining.
func New(l *ledger.Ledger, mp *mempool.Mempool, net Broadcaster, blockTxCap int, evHandler func(v string, args ...any)) *Miner {
	if evHandler == nil {
		evHandler = noopEvHandler
	}
	return &Miner{
		ledger:     l,
		mempool:    mp,
		net:        net,
		blockTxCap: blockTxCap,
		evHandler:  evHandler,
		control:    make(chan control),
	}
}

// Start transitions the miner to Run(lambda): after each successful mining
// pass it sleeps lambda before starting the next. lambda == 0 means mine
// continuously with no pause between blocks.
func (m *Miner) Start(lambda time.Duration) {
	m.control <- control{kind: cmdStart, lambda: lambda}
}

// ShutDown transitions the miner to ShutDown; Run returns once the
// current pass (if any) observes the signal.
func (m *Miner) ShutDown() {
	m.control <- control{kind: cmdExit}
}

// Run is the miner's main loop. It must be started on its own goroutine;
// it returns only after ShutDown is signaled.
func (m *Miner) Run() {
	m.evHandler("miner: Run: goroutine started")
	defer m.evHandler("miner: Run: goroutine completed")

	var running bool
	var lambda time.Duration

	for {
		if m.shuttingDown {
			return
		}

		if !running {
			cmd, ok := <-m.control // Paused: block until a signal arrives.
			if !ok {
				m.evHandler("miner: Run: control channel closed")
				os.Exit(1)
			}
			switch cmd.kind {
			case cmdExit:
				return
			case cmdStart:
				running = true
				lambda = cmd.lambda
			}
			continue
		}

		select {
		case cmd := <-m.control: // Run(lambda): non-blocking poll.
			switch cmd.kind {
			case cmdExit:
				return
			case cmdStart:
				lambda = cmd.lambda
			}
			continue
		default:
		}

		mined := m.miningPass()

		if mined && lambda > 0 {
			time.Sleep(lambda)
		}
	}
}

// miningPass performs one mining attempt: build a candidate over up to
// blockTxCap mempool entries and search for a satisfying nonce. It
// reports whether a block was successfully mined and broadcast.
func (m *Miner) miningPass() bool {
	tip := m.ledger.Tip()
	difficulty, ok := m.ledger.Difficulty(tip)
	if !ok {
		m.evHandler("miner: miningPass: tip %s has no recorded difficulty", tip)
		return false
	}

	hashes, txs := m.mempool.DrainForBlock(m.blockTxCap)
	if len(txs) == 0 {
		return false
	}

	candidate, err := block.New(tip, difficulty, txs)
	if err != nil {
		m.evHandler("miner: miningPass: build candidate: %s", err)
		return false
	}

	for attempt := int64(0); attempt < 1<<32; attempt++ {
		if attempt%1024 == 0 {
			select {
			case cmd := <-m.control:
				if cmd.kind == cmdExit {
					m.shuttingDown = true
					return false
				}
			default:
			}
		}

		candidate.Header.Nonce = uint32(attempt)
		h := candidate.Header.Hash()
		if !h.LessOrEqual(difficulty) {
			continue
		}

		if _, err := m.ledger.ApplyMinedBlock(candidate); err != nil {
			m.evHandler("miner: miningPass: apply block %s: %s", h, err)
			return false
		}
		for _, th := range hashes {
			m.mempool.Remove(th)
		}

		m.net.Broadcast(gossip.NewBlockHashes([]hash.H256{h}).Bytes())
		m.evHandler("miner: miningPass: mined block %s via nonce %d", h, candidate.Header.Nonce)
		return true
	}

	m.evHandler("miner: miningPass: exhausted nonce space without satisfying difficulty")
	return false
}
