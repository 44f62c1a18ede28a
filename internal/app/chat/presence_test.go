package chat

import (
	"fmt"
	"sync"
	"testing"
)

func TestPresenceConnectAndReconnect(t *testing.T) {
	p := NewPresence()

	wasOnline := p.Connect("u1", "conn-1", "alice", "Alice A", "")
	if wasOnline {
		t.Fatal("first Connect reported the user as already online")
	}

	connID, ok := p.LookupConnection("u1")
	if !ok || connID != "conn-1" {
		t.Fatalf("LookupConnection = (%q, %v), want (conn-1, true)", connID, ok)
	}

	// Reconnect replaces the connection id but keeps the cached profile.
	wasOnline = p.Connect("u1", "conn-2", "alice", "Alice A", "")
	if !wasOnline {
		t.Fatal("reconnect did not report the user as already online")
	}

	connID, ok = p.LookupConnection("u1")
	if !ok || connID != "conn-2" {
		t.Fatalf("after reconnect LookupConnection = (%q, %v), want (conn-2, true)", connID, ok)
	}

	keys := p.SnapshotKeys()
	if len(keys) != 1 {
		t.Fatalf("after reconnect SnapshotKeys has %d entries, want 1", len(keys))
	}
}

func TestPresenceDisconnect(t *testing.T) {
	p := NewPresence()
	p.Connect("u1", "conn-1", "alice", "Alice A", "")

	p.Disconnect("u1")
	if p.Online("u1") {
		t.Fatal("user still online after Disconnect")
	}

	// Disconnecting again must be a no-op.
	p.Disconnect("u1")
	if _, ok := p.LookupConnection("u1"); ok {
		t.Fatal("LookupConnection found a record after double Disconnect")
	}
}

func TestPresenceLookupConnectionByName(t *testing.T) {
	p := NewPresence()
	p.Connect("u1", "conn-1", "alice", "Alice A", "")
	p.Connect("u2", "conn-2", "bob", "Bob B", "")

	connID, ok := p.LookupConnectionByName("bob")
	if !ok || connID != "conn-2" {
		t.Fatalf("LookupConnectionByName(bob) = (%q, %v), want (conn-2, true)", connID, ok)
	}

	if _, ok := p.LookupConnectionByName("carol"); ok {
		t.Fatal("LookupConnectionByName found a connection for an offline name")
	}
}

func TestPresenceConcurrentAccess(t *testing.T) {
	p := NewPresence()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			userID := fmt.Sprintf("u%d", n)
			p.Connect(userID, fmt.Sprintf("conn-%d", n), fmt.Sprintf("user%d", n), "", "")
			p.Online(userID)
			p.SnapshotKeys()
			if n%2 == 0 {
				p.Disconnect(userID)
			}
		}(i)
	}
	wg.Wait()

	keys := p.SnapshotKeys()
	if len(keys) != 25 {
		t.Fatalf("after concurrent churn %d users online, want 25", len(keys))
	}
}
