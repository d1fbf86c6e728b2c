// Package worker implements the network worker pool: N goroutines
// consuming (payload, peer) tuples off a shared inbound queue, decoding
// each into a gossip.Message and dispatching it per the message
// taxonomy's handler contracts. Block admission runs a small state
// machine that parks blocks whose parent has not arrived yet and drains
// them once it does, so that a reorg of several parked descendants
// becomes visible the moment the missing ancestor lands.
package worker

import (
	"sync"

	"github.com/qchain/node/foundation/blockchain/block"
	"github.com/qchain/node/foundation/blockchain/gossip"
	"github.com/qchain/node/foundation/blockchain/hash"
	"github.com/qchain/node/foundation/blockchain/ledger"
	"github.com/qchain/node/foundation/blockchain/mempool"
	netgossip "github.com/qchain/node/internal/gossip"
)

// Broadcaster is the minimal outbound contract the pool needs to
// announce newly admitted block hashes to every connected peer.
type Broadcaster interface {
	Broadcast(payload []byte)
}

// Inbound is the shared source of (payload, peer) tuples the pool
// consumes from. internal/gossip.Network satisfies this via Inbound().
type Inbound interface {
	Inbound() <-chan netgossip.Envelope
}

// Pool is a fixed-size pool of goroutines dispatching gossip messages
// against a shared ledger and mempool.
type Pool struct {
	ledger  *ledger.Ledger
	mempool *mempool.Mempool
	net     Broadcaster

	n         int
	wg        sync.WaitGroup
	shut      chan struct{}
	evHandler func(v string, args ...any)

	mu              sync.Mutex
	orphansByParent map[hash.H256][]hash.H256
	orphansByChild  map[hash.H256]block.Block

	arrivalMu    sync.Mutex
	arrivalCount int64
	avgDelayMs   float64
}

func noopEvHandler(v string, args ...any) {}

// New constructs a worker pool of n goroutines.
func New(l *ledger.Ledger, mp *mempool.Mempool, net Broadcaster, n int, evHandler func(v string, args ...any)) *Pool {
	if evHandler == nil {
		evHandler = noopEvHandler
	}
	if n < 1 {
		n = 1
	}
	return &Pool{
		ledger:          l,
		mempool:         mp,
		net:             net,
		n:               n,
		shut:            make(chan struct{}),
		evHandler:       evHandler,
		orphansByParent: make(map[hash.H256][]hash.H256),
		orphansByChild:  make(map[hash.H256]block.Block),
	}
}

// Run starts the pool's goroutines. Each ranges over inbound's channel
// until that channel is closed or Shutdown fires the pool's own shut
// signal.
func (p *Pool) Run(inbound Inbound) {
	p.wg.Add(p.n)

	hasStarted := make(chan bool)

	for i := 0; i < p.n; i++ {
		go func(id int) {
			defer p.wg.Done()
			p.evHandler("worker: pool[%d]: goroutine started", id)
			defer p.evHandler("worker: pool[%d]: goroutine completed", id)

			hasStarted <- true

			ch := inbound.Inbound()
			for {
				select {
				case env, ok := <-ch:
					if !ok {
						return
					}
					p.dispatch(env)
				case <-p.shut:
					return
				}
			}
		}(i)
	}

	for i := 0; i < p.n; i++ {
		<-hasStarted
	}
}

// Shutdown signals every pool goroutine to stop and waits for them to
// drain.
func (p *Pool) Shutdown() {
	p.evHandler("worker: Shutdown: started")
	defer p.evHandler("worker: Shutdown: completed")

	close(p.shut)
	p.wg.Wait()
}

// dispatch decodes one payload and handles it per its message kind.
func (p *Pool) dispatch(env netgossip.Envelope) {
	msg, err := gossip.Decode(env.Payload)
	if err != nil {
		p.evHandler("worker: dispatch: malformed payload from %s: %s", env.From.ID(), err)
		return
	}

	switch msg.Kind {
	case gossip.KindPing:
		env.From.Send(gossip.Pong(msg.Nonce).Bytes())

	case gossip.KindPong:
		p.evHandler("worker: dispatch: pong from %s: %s", env.From.ID(), msg.Nonce)

	case gossip.KindNewBlockHashes:
		missing := p.ledger.Missing(msg.Hashes)
		if len(missing) > 0 {
			env.From.Send(gossip.GetBlocks(missing).Bytes())
		}

	case gossip.KindGetBlocks:
		collected := p.ledger.Collect(msg.Hashes)
		env.From.Send(gossip.Blocks(collected).Bytes())

	case gossip.KindBlocks:
		p.handleBlocks(msg.Blocks, env.From)

	case gossip.KindNewTransactionHashes:
		missing := p.mempool.Missing(msg.Hashes)
		if len(missing) > 0 {
			env.From.Send(gossip.GetTransactions(missing).Bytes())
		}

	case gossip.KindGetTransactions:
		collected := p.mempool.Collect(msg.Hashes)
		env.From.Send(gossip.Transactions(collected).Bytes())

	case gossip.KindTransactions:
		for _, stx := range msg.Transactions {
			p.mempool.Insert(stx)
		}
	}
}

// handleBlocks runs the admission state machine over each received block
// in order and broadcasts the union of everything newly admitted,
// including whatever the admission drains out of the orphan buffer.
func (p *Pool) handleBlocks(blocks []block.Block, from netgossip.Peer) {
	var admitted []hash.H256

	for _, b := range blocks {
		admitted = append(admitted, p.admit(b, from)...)
	}

	if len(admitted) > 0 {
		p.net.Broadcast(gossip.NewBlockHashes(admitted).Bytes())
	}
}

// admit runs S0–S6 for a single received block and returns every hash
// newly admitted as a result (the block itself plus any orphans it
// unparked).
func (p *Pool) admit(b block.Block, from netgossip.Peer) []hash.H256 {
	h := b.Hash()

	// S0 — already known.
	if p.ledger.Has(h) {
		return nil
	}

	// S1 — first sighting: record arrival delay.
	p.recordArrival(b)

	// S2 — PoW check.
	if !h.LessOrEqual(b.Header.Difficulty) {
		p.evHandler("worker: admit: %s failed PoW", h)
		return nil
	}

	parent, ok := p.ledger.Block(b.Header.Parent)
	if !ok {
		// S3 — parent missing: park and solicit it.
		p.parkOrphan(b.Header.Parent, h, b)
		// Another goroutine may have admitted the parent (and drained its
		// orphans) between the lookup above and the park; drain here so
		// the block is not left parked.
		if p.ledger.Has(b.Header.Parent) {
			return p.drainOrphans(b.Header.Parent)
		}
		from.Send(gossip.GetBlocks([]hash.H256{b.Header.Parent}).Bytes())
		return nil
	}

	// S4 — difficulty must match the parent's (no retargeting).
	if parent.Header.Difficulty != b.Header.Difficulty {
		p.evHandler("worker: admit: %s difficulty mismatch with parent", h)
		return nil
	}

	// S5 — admit.
	if _, err := p.ledger.Insert(b); err != nil {
		p.evHandler("worker: admit: %s insert failed: %s", h, err)
		return nil
	}

	admitted := []hash.H256{h}

	// S6 — drain any orphans waiting on h, iteratively.
	admitted = append(admitted, p.drainOrphans(h)...)

	return admitted
}

// parkOrphan records b as waiting on parent, keyed both ways so S6 can
// find every child of a newly admitted block (the strengthened,
// multi-child form of the orphan buffer: orphans_by_parent maps to a set
// of children rather than overwriting a single pending one).
func (p *Pool) parkOrphan(parent, h hash.H256, b block.Block) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.orphansByParent[parent] = append(p.orphansByParent[parent], h)
	p.orphansByChild[h] = b
}

// drainOrphans admits every block parked on newlyAdmitted, and
// recursively every block parked on those, returning the full set of
// newly admitted hashes in admission order.
func (p *Pool) drainOrphans(newlyAdmitted hash.H256) []hash.H256 {
	var admitted []hash.H256

	queue := []hash.H256{newlyAdmitted}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]

		p.mu.Lock()
		children := p.orphansByParent[parent]
		delete(p.orphansByParent, parent)
		var blocks []block.Block
		for _, ch := range children {
			blocks = append(blocks, p.orphansByChild[ch])
			delete(p.orphansByChild, ch)
		}
		p.mu.Unlock()

		for _, b := range blocks {
			h := b.Hash()
			// Already passed PoW when parked; parent is now present by
			// construction, so Insert cannot fail here.
			if _, err := p.ledger.Insert(b); err != nil {
				p.evHandler("worker: drainOrphans: %s insert failed: %s", h, err)
				continue
			}
			admitted = append(admitted, h)
			queue = append(queue, h)
		}
	}

	return admitted
}

// recordArrival updates the worker's running average of
// arrival_ms - header_timestamp_ms, an observability signal only; it has
// no bearing on admission.
func (p *Pool) recordArrival(b block.Block) {
	delay := block.Now().DiffMillis(b.Header.Timestamp)

	p.arrivalMu.Lock()
	defer p.arrivalMu.Unlock()

	p.arrivalCount++
	p.avgDelayMs += (float64(delay) - p.avgDelayMs) / float64(p.arrivalCount)
}

// AverageArrivalDelayMs returns the running average arrival delay in
// milliseconds observed so far.
func (p *Pool) AverageArrivalDelayMs() float64 {
	p.arrivalMu.Lock()
	defer p.arrivalMu.Unlock()
	return p.avgDelayMs
}
