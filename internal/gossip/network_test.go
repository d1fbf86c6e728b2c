package gossip_test

import (
	"testing"
	"time"

	"github.com/qchain/node/internal/gossip"
)

func TestConnectDeliversAcrossNetworks(t *testing.T) {
	a := gossip.New(4)
	b := gossip.New(4)
	gossip.Connect(a, "a", b, "b")

	a.Broadcast([]byte("hello"))

	select {
	case env := <-b.Inbound():
		if string(env.Payload) != "hello" {
			t.Fatalf("payload mismatch: got %q", env.Payload)
		}
		if env.From.ID() != "a" {
			t.Fatalf("expected From id %q, got %q", "a", env.From.ID())
		}

		env.From.Send([]byte("world"))
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivery")
	}

	select {
	case env := <-a.Inbound():
		if string(env.Payload) != "world" {
			t.Fatalf("reply payload mismatch: got %q", env.Payload)
		}
		if env.From.ID() != "b" {
			t.Fatalf("expected From id %q, got %q", "b", env.From.ID())
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for reply")
	}
}
