// Package generator drives the rest of the system with synthetic traffic:
// it bootstraps a small set of local keypairs with an initial balance,
// then loops picking a sender from that set and a recipient from known
// ledger state, signs a one-unit transfer, inserts it into the mempool,
// and announces it to peers.
package generator

import (
	"math/rand"
	"sync"
	"time"

	"github.com/qchain/node/foundation/blockchain/gossip"
	"github.com/qchain/node/foundation/blockchain/hash"
	"github.com/qchain/node/foundation/blockchain/ledger"
	"github.com/qchain/node/foundation/blockchain/mempool"
	"github.com/qchain/node/foundation/blockchain/signature"
	"github.com/qchain/node/foundation/blockchain/transaction"
)

// Broadcaster is the minimal outbound contract the generator needs.
type Broadcaster interface {
	Broadcast(payload []byte)
}

// Generator is the transaction-generator thread's state.
type Generator struct {
	ledger   *ledger.Ledger
	mempool  *mempool.Mempool
	net      Broadcaster
	interval time.Duration

	accounts []signature.KeyPair

	evHandler func(v string, args ...any)

	shut chan struct{}
	wg   sync.WaitGroup
}

func noopEvHandler(v string, args ...any) {}

// New constructs a generator. Call Bootstrap before Run to seed local
// accounts and their initial balances.
func New(l *ledger.Ledger, mp *mempool.Mempool, net Broadcaster, interval time.Duration, evHandler func(v string, args ...any)) *Generator {
	if evHandler == nil {
		evHandler = noopEvHandler
	}
	return &Generator{
		ledger:    l,
		mempool:   mp,
		net:       net,
		interval:  interval,
		evHandler: evHandler,
		shut:      make(chan struct{}),
	}
}

// Bootstrap creates n local keypairs, credits each with balance in the
// ledger, and returns the keypairs so a caller (e.g. cmd/node) can persist
// them if it wants to.
func (g *Generator) Bootstrap(n int, balance uint32) ([]signature.KeyPair, error) {
	balances := make(map[hash.H160]uint32, n)
	accounts := make([]signature.KeyPair, 0, n)

	for i := 0; i < n; i++ {
		kp, err := signature.Generate()
		if err != nil {
			return nil, err
		}
		addr := signature.AddressOf(kp.PublicKey)
		balances[addr] = balance
		accounts = append(accounts, kp)
		g.evHandler("generator: bootstrap account %s balance %d", addr, balance)
	}

	g.ledger.Bootstrap(balances)
	g.accounts = accounts

	return accounts, nil
}

// Run is the generator's main loop: pick sender and recipient, sign a
// one-unit transfer, submit it, announce it, sleep. It runs until
// ShutDown is called.
func (g *Generator) Run() {
	g.wg.Add(1)
	defer g.wg.Done()

	g.evHandler("generator: Run: goroutine started")
	defer g.evHandler("generator: Run: goroutine completed")

	if len(g.accounts) == 0 {
		g.evHandler("generator: Run: no bootstrapped accounts, exiting")
		return
	}

	for {
		select {
		case <-g.shut:
			return
		default:
		}

		g.generateOne()

		select {
		case <-g.shut:
			return
		case <-time.After(g.interval):
		}
	}
}

// ShutDown signals Run to stop and waits for it to return.
func (g *Generator) ShutDown() {
	close(g.shut)
	g.wg.Wait()
}

func (g *Generator) generateOne() {
	known := g.ledger.KnownAddresses()
	if len(known) == 0 {
		return
	}
	recipient := known[rand.Intn(len(known))]

	sender := g.accounts[rand.Intn(len(g.accounts))]
	senderAddr := signature.AddressOf(sender.PublicKey)

	acc, _ := g.ledger.Account(senderAddr)
	nonce := acc.Nonce + 1

	tx := transaction.New(recipient, 1, nonce)
	stx := transaction.Sign(tx, sender)

	if !g.mempool.Insert(stx) {
		return
	}

	g.net.Broadcast(gossip.NewTransactionHashes([]hash.H256{stx.Hash()}).Bytes())
	g.evHandler("generator: generateOne: new transaction %s", stx.Hash())
}
