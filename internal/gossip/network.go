// Package gossip is the in-process transport the network worker and miner
// broadcast through: a loopback switchboard standing in for the real
// socket layer, which is out of scope for this core (spec.md §1 —
// networking sockets are simulated, not implemented). It gives every
// component the same "broadcast to all peers" / "reply to one peer"
// contract a real P2P server would expose.
package gossip

import (
	"sync"
)

// Peer is a handle a worker can write a payload back to. A real
// implementation would wrap a socket; this core's tests wire Peer to an
// in-memory channel.
type Peer interface {
	ID() string
	Send(payload []byte)
}

// Envelope pairs an inbound payload with the peer handle it arrived on,
// the tuple the network worker pool consumes.
type Envelope struct {
	Payload []byte
	From    Peer
}

// Network is the in-process broadcast sink and inbound queue shared by
// every peer registered with it.
type Network struct {
	mu    sync.Mutex
	peers map[string]Peer

	inbound chan Envelope
}

// New constructs a Network with the given inbound queue depth.
func New(queueDepth int) *Network {
	return &Network{
		peers:   make(map[string]Peer),
		inbound: make(chan Envelope, queueDepth),
	}
}

// Register adds a peer the network can broadcast to.
func (n *Network) Register(p Peer) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.peers[p.ID()] = p
}

// Unregister removes a peer, e.g. on disconnect.
func (n *Network) Unregister(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.peers, id)
}

// Broadcast sends payload to every registered peer.
func (n *Network) Broadcast(payload []byte) {
	n.mu.Lock()
	peers := make([]Peer, 0, len(n.peers))
	for _, p := range n.peers {
		peers = append(peers, p)
	}
	n.mu.Unlock()

	for _, p := range peers {
		p.Send(payload)
	}
}

// Deliver enqueues an inbound payload from peer p for worker dispatch. It
// blocks if the inbound queue is full, applying natural backpressure.
func (n *Network) Deliver(p Peer, payload []byte) {
	n.inbound <- Envelope{Payload: payload, From: p}
}

// Inbound returns the channel the worker pool ranges over.
func (n *Network) Inbound() <-chan Envelope {
	return n.inbound
}

// remotePeer is a Peer whose Send enqueues the payload onto another
// Network's inbound queue, modeling a connected remote peer without a
// real socket. asFrom is the Peer handle passed along as the envelope's
// origin, so the receiver can reply back across the same connection.
type remotePeer struct {
	id     string
	target *Network
	asFrom *remotePeer
}

func (p *remotePeer) ID() string { return p.id }

func (p *remotePeer) Send(payload []byte) {
	p.target.Deliver(p.asFrom, payload)
}

// Connect wires two in-process Networks together bidirectionally: a gets
// a Peer handle for b (registered under bID) and b gets one for a
// (registered under aID), and each end's envelopes carry a From handle
// the receiver can reply through. Used in tests to simulate a multi-node
// swarm within a single process; cmd/node does not call it.
func Connect(a *Network, aID string, b *Network, bID string) {
	connA := &remotePeer{id: aID, target: a}
	connB := &remotePeer{id: bID, target: b}
	connA.asFrom = connB
	connB.asFrom = connA

	a.Register(connB)
	b.Register(connA)
}
