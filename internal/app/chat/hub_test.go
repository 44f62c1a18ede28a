package chat

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"pairchat/internal/app/message"
	"pairchat/internal/app/user"
)

// routedCall records one delivery performed through the fake router.
type routedCall struct {
	method  string // "user", "conn", "except", "all"
	target  string
	event   string
	payload any
}

// fakeRouter implements Router and records every delivery for assertions.
type fakeRouter struct {
	mu    sync.Mutex
	calls []routedCall
}

func (f *fakeRouter) SendToUser(userID string, event string, payload any) {
	f.record(routedCall{method: "user", target: userID, event: event, payload: payload})
}

func (f *fakeRouter) SendToConnection(connectionID string, event string, payload any) {
	f.record(routedCall{method: "conn", target: connectionID, event: event, payload: payload})
}

func (f *fakeRouter) BroadcastExcept(connectionID string, event string, payload any) {
	f.record(routedCall{method: "except", target: connectionID, event: event, payload: payload})
}

func (f *fakeRouter) BroadcastAll(event string, payload any) {
	f.record(routedCall{method: "all", target: "", event: event, payload: payload})
}

func (f *fakeRouter) record(c routedCall) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeRouter) byEvent(event string) []routedCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []routedCall
	for _, c := range f.calls {
		if c.event == event {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeRouter) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

// newTestHub wires a hub over in-memory stores with two registered users.
func newTestHub(t *testing.T) (*Hub, *fakeRouter, *message.MemoryStore, *user.MemoryStore) {
	t.Helper()

	users := user.NewMemoryStore()
	ctx := context.Background()
	if _, err := users.Create(ctx, user.User{ID: "u1", Username: "alice", FullName: "Alice A", Email: "alice@example.com"}, "x"); err != nil {
		t.Fatalf("seed alice: %v", err)
	}
	if _, err := users.Create(ctx, user.User{ID: "u2", Username: "bob", FullName: "Bob B", Email: "bob@example.com"}, "x"); err != nil {
		t.Fatalf("seed bob: %v", err)
	}

	messages := message.NewMemoryStore()
	router := &fakeRouter{}
	hub := NewHub(NewPresence(), router, messages, users)

	return hub, router, messages, users
}

func aliceSession() Session {
	return Session{
		User:         user.User{ID: "u1", Username: "alice", FullName: "Alice A"},
		ConnectionID: "conn-alice",
	}
}

func bobSession() Session {
	return Session{
		User:         user.User{ID: "u2", Username: "bob", FullName: "Bob B"},
		ConnectionID: "conn-bob",
	}
}

func TestSendMessageDeliversToBothParties(t *testing.T) {
	hub, router, _, _ := newTestHub(t)
	ctx := context.Background()

	hub.SendMessage(ctx, aliceSession(), "u2", "hello bob")

	calls := router.byEvent(EventNewMessage)
	if len(calls) != 2 {
		t.Fatalf("got %d new-message deliveries, want 2 (receiver then sender)", len(calls))
	}
	if calls[0].target != "u2" || calls[1].target != "u1" {
		t.Fatalf("delivery targets = (%s, %s), want (u2, u1)", calls[0].target, calls[1].target)
	}

	persisted, ok := calls[0].payload.(message.Message)
	if !ok {
		t.Fatalf("payload is %T, want message.Message", calls[0].payload)
	}
	if persisted.ID == 0 {
		t.Error("delivered message has no store-assigned id")
	}
	if persisted.MessageType != message.TypeText {
		t.Errorf("MessageType = %q, want %q", persisted.MessageType, message.TypeText)
	}
	if persisted.IsRead {
		t.Error("freshly sent message is already marked read")
	}
}

func TestSendMessageClassifiesImageContent(t *testing.T) {
	hub, router, _, _ := newTestHub(t)

	hub.SendMessage(context.Background(), aliceSession(), "u2", "https://cdn.example.com/chat/pic.png")

	calls := router.byEvent(EventNewMessage)
	if len(calls) == 0 {
		t.Fatal("no new-message delivery recorded")
	}

	persisted := calls[0].payload.(message.Message)
	if persisted.MessageType != message.TypeImage {
		t.Errorf("MessageType = %q, want %q", persisted.MessageType, message.TypeImage)
	}
}

func TestSendMessageDropsInvalidSubmissions(t *testing.T) {
	hub, router, messages, _ := newTestHub(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		receiver string
		content  string
	}{
		{"empty content", "u2", ""},
		{"empty receiver", "", "hello"},
		{"unknown receiver", "u999", "hello"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router.reset()
			hub.SendMessage(ctx, aliceSession(), tc.receiver, tc.content)

			if calls := router.byEvent(EventNewMessage); len(calls) != 0 {
				t.Errorf("invalid submission produced %d deliveries, want 0", len(calls))
			}
		})
	}

	stored, err := messages.FindConversation(ctx, "u1", "u2", 1, message.DefaultPageSize)
	if err != nil {
		t.Fatalf("FindConversation: %v", err)
	}
	if len(stored) != 0 {
		t.Errorf("invalid submissions persisted %d messages, want 0", len(stored))
	}
}

func TestSendMessageAcceptsLongContent(t *testing.T) {
	hub, router, messages, _ := newTestHub(t)
	ctx := context.Background()

	// Content size is bounded by the connection's frame limit, not by the hub:
	// any non-empty content addressed to a known receiver must go through.
	long := strings.Repeat("a", 5001)
	hub.SendMessage(ctx, aliceSession(), "u2", long)

	calls := router.byEvent(EventNewMessage)
	if len(calls) != 2 {
		t.Fatalf("long message produced %d deliveries, want 2", len(calls))
	}
	persisted := calls[0].payload.(message.Message)
	if persisted.Content != long {
		t.Error("long message content was altered")
	}

	stored, err := messages.FindConversation(ctx, "u1", "u2", 1, message.DefaultPageSize)
	if err != nil {
		t.Fatalf("FindConversation: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("long message persisted %d rows, want 1", len(stored))
	}
}

func TestSendMessagePersistsForOfflineReceiver(t *testing.T) {
	// Real registry: only alice is connected, bob is offline.
	users := user.NewMemoryStore()
	ctx := context.Background()
	users.Create(ctx, user.User{ID: "u1", Username: "alice"}, "x")
	users.Create(ctx, user.User{ID: "u2", Username: "bob"}, "x")

	messages := message.NewMemoryStore()
	presence := NewPresence()
	registry := NewRegistry(presence)
	hub := NewHub(presence, registry, messages, users)

	presence.Connect("u1", "conn-alice", "alice", "", "")
	registry.Add("conn-alice", senderFunc(func([]byte) error { return nil }))

	hub.SendMessage(ctx, aliceSession(), "u2", "you there?")

	unread, err := messages.CountUnread(ctx, "u2", "u1")
	if err != nil {
		t.Fatalf("CountUnread: %v", err)
	}
	if unread != 1 {
		t.Fatalf("offline receiver has %d unread messages, want 1", unread)
	}
}

// senderFunc adapts a function to the Sender interface.
type senderFunc func(data []byte) error

func (f senderFunc) Send(data []byte) error { return f(data) }

func seedConversation(t *testing.T, messages *message.MemoryStore, senderID, receiverID string, n int) {
	t.Helper()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		_, err := messages.Insert(context.Background(), message.Message{
			SenderID:    senderID,
			ReceiverID:  receiverID,
			Content:     "m",
			MessageType: message.TypeText,
			CreatedDate: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("seed message: %v", err)
		}
	}
}

func TestLoadHistoryMarksReadAndNotifiesSender(t *testing.T) {
	hub, router, messages, _ := newTestHub(t)
	ctx := context.Background()

	seedConversation(t, messages, "u2", "u1", 3)

	hub.LoadHistory(ctx, aliceSession(), "u2", 1)

	seen := router.byEvent(EventMessagesSeen)
	if len(seen) != 1 {
		t.Fatalf("got %d messages-seen deliveries, want 1 (one per distinct sender)", len(seen))
	}
	if seen[0].target != "u2" {
		t.Errorf("messages-seen target = %s, want u2", seen[0].target)
	}
	payload := seen[0].payload.(MessagesSeenPayload)
	if payload.ReaderID != "u1" {
		t.Errorf("ReaderID = %s, want u1", payload.ReaderID)
	}
	if len(payload.MessageIDs) != 3 {
		t.Errorf("messages-seen carries %d ids, want 3", len(payload.MessageIDs))
	}

	lists := router.byEvent(EventMessageList)
	if len(lists) != 1 {
		t.Fatalf("got %d message-list deliveries, want 1", len(lists))
	}
	if lists[0].target != "u1" {
		t.Errorf("message-list target = %s, want u1", lists[0].target)
	}
	page := lists[0].payload.(MessageListPayload)
	if page.PeerID != "u2" {
		t.Errorf("page PeerID = %s, want u2", page.PeerID)
	}
	if len(page.Messages) != 3 {
		t.Fatalf("page has %d messages, want 3", len(page.Messages))
	}
	for i := 1; i < len(page.Messages); i++ {
		if page.Messages[i].CreatedDate.Before(page.Messages[i-1].CreatedDate) {
			t.Fatal("page is not in chronological (oldest-first) order")
		}
	}
	for _, m := range page.Messages {
		if !m.IsRead {
			t.Errorf("message %d delivered unread after history load", m.ID)
		}
	}

	unread, err := messages.CountUnread(ctx, "u1", "u2")
	if err != nil {
		t.Fatalf("CountUnread: %v", err)
	}
	if unread != 0 {
		t.Errorf("unread count = %d after history load, want 0", unread)
	}
}

func TestLoadHistoryIsIdempotentForReadReceipts(t *testing.T) {
	hub, router, messages, _ := newTestHub(t)
	ctx := context.Background()

	seedConversation(t, messages, "u2", "u1", 2)

	hub.LoadHistory(ctx, aliceSession(), "u2", 1)
	router.reset()

	// Reloading an already-read page must not re-notify the sender.
	hub.LoadHistory(ctx, aliceSession(), "u2", 1)

	if seen := router.byEvent(EventMessagesSeen); len(seen) != 0 {
		t.Errorf("reload produced %d messages-seen deliveries, want 0", len(seen))
	}
	if lists := router.byEvent(EventMessageList); len(lists) != 1 {
		t.Errorf("reload produced %d message-list deliveries, want 1", len(lists))
	}
}

func TestLoadHistoryLeavesOwnMessagesUnread(t *testing.T) {
	hub, router, messages, _ := newTestHub(t)
	ctx := context.Background()

	// Messages alice sent; loading her own conversation must not mark them.
	seedConversation(t, messages, "u1", "u2", 2)

	hub.LoadHistory(ctx, aliceSession(), "u2", 1)

	if seen := router.byEvent(EventMessagesSeen); len(seen) != 0 {
		t.Errorf("loading own sent messages produced %d messages-seen deliveries, want 0", len(seen))
	}

	unread, err := messages.CountUnread(ctx, "u2", "u1")
	if err != nil {
		t.Fatalf("CountUnread: %v", err)
	}
	if unread != 2 {
		t.Errorf("bob's unread count = %d, want 2 (untouched)", unread)
	}
}

func TestConnectAnnouncesOnlyFirstConnection(t *testing.T) {
	hub, router, _, _ := newTestHub(t)
	ctx := context.Background()

	hub.Connect(ctx, aliceSession(), "")

	joined := router.byEvent(EventPeerJoined)
	if len(joined) != 1 {
		t.Fatalf("first connect produced %d peer-joined broadcasts, want 1", len(joined))
	}
	if joined[0].target != "conn-alice" {
		t.Errorf("peer-joined excluded connection = %s, want conn-alice", joined[0].target)
	}
	if len(router.byEvent(EventPresenceSnapshot)) != 1 {
		t.Error("first connect did not broadcast a presence snapshot")
	}

	router.reset()

	// Reconnect of the same identity: no re-announce, but a fresh snapshot.
	reconnect := aliceSession()
	reconnect.ConnectionID = "conn-alice-2"
	hub.Connect(ctx, reconnect, "")

	if joined := router.byEvent(EventPeerJoined); len(joined) != 0 {
		t.Errorf("reconnect produced %d peer-joined broadcasts, want 0", len(joined))
	}
	if len(router.byEvent(EventPresenceSnapshot)) != 1 {
		t.Error("reconnect did not broadcast a presence snapshot")
	}
}

func TestConnectWithPeerHintLoadsFirstPage(t *testing.T) {
	hub, router, messages, _ := newTestHub(t)
	ctx := context.Background()

	seedConversation(t, messages, "u2", "u1", 1)

	hub.Connect(ctx, aliceSession(), "u2")

	lists := router.byEvent(EventMessageList)
	if len(lists) != 1 {
		t.Fatalf("connect with peer hint produced %d message-list deliveries, want 1", len(lists))
	}
	page := lists[0].payload.(MessageListPayload)
	if page.PeerID != "u2" || len(page.Messages) != 1 {
		t.Errorf("hinted page = (peer %s, %d messages), want (u2, 1)", page.PeerID, len(page.Messages))
	}
}

func TestDisconnectBroadcastsSnapshot(t *testing.T) {
	hub, router, _, _ := newTestHub(t)
	ctx := context.Background()

	hub.Connect(ctx, aliceSession(), "")
	router.reset()

	hub.Disconnect(ctx, aliceSession())

	if len(router.byEvent(EventPresenceSnapshot)) != 1 {
		t.Fatal("disconnect did not broadcast a presence snapshot")
	}
}

func TestNotifyTyping(t *testing.T) {
	hub, router, _, _ := newTestHub(t)
	ctx := context.Background()

	hub.Connect(ctx, bobSession(), "")
	router.reset()

	hub.NotifyTyping(aliceSession(), "bob")

	typing := router.byEvent(EventTyping)
	if len(typing) != 1 {
		t.Fatalf("got %d typing deliveries, want 1", len(typing))
	}
	if typing[0].method != "conn" || typing[0].target != "conn-bob" {
		t.Errorf("typing delivered via (%s, %s), want (conn, conn-bob)", typing[0].method, typing[0].target)
	}
	if typing[0].payload != "alice" {
		t.Errorf("typing payload = %v, want alice", typing[0].payload)
	}

	router.reset()

	// Offline peer: silently ignored.
	hub.NotifyTyping(aliceSession(), "carol")
	if len(router.byEvent(EventTyping)) != 0 {
		t.Error("typing delivered for an offline peer")
	}
}

func TestBuildSnapshotOrdersOnlineFirstWithUnreadCounts(t *testing.T) {
	hub, _, messages, users := newTestHub(t)
	ctx := context.Background()

	users.Create(ctx, user.User{ID: "u3", Username: "carol", FullName: "Carol C"}, "x")
	seedConversation(t, messages, "u2", "u1", 2)

	// Only bob is online.
	hub.Connect(ctx, bobSession(), "")

	snapshot, err := hub.BuildSnapshot(ctx, "u1")
	if err != nil {
		t.Fatalf("BuildSnapshot: %v", err)
	}
	if len(snapshot) != 3 {
		t.Fatalf("snapshot has %d entries, want 3", len(snapshot))
	}

	if !snapshot[0].IsOnline || snapshot[0].ID != "u2" {
		t.Errorf("first entry = (%s, online=%v), want the online user u2 first", snapshot[0].ID, snapshot[0].IsOnline)
	}
	for _, e := range snapshot[1:] {
		if e.IsOnline {
			t.Errorf("offline users must sort after online ones, got online %s later", e.ID)
		}
	}

	for _, e := range snapshot {
		want := 0
		if e.ID == "u2" {
			want = 2
		}
		if e.UnreadCount != want {
			t.Errorf("unread count for %s = %d, want %d", e.ID, e.UnreadCount, want)
		}
	}
}
