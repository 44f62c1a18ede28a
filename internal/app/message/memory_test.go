package message

import (
	"context"
	"testing"
	"time"
)

func seed(t *testing.T, s *MemoryStore, senderID, receiverID string, n int) []Message {
	t.Helper()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	out := make([]Message, 0, n)
	for i := 0; i < n; i++ {
		m, err := s.Insert(context.Background(), Message{
			SenderID:    senderID,
			ReceiverID:  receiverID,
			Content:     "m",
			MessageType: TypeText,
			CreatedDate: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
		out = append(out, m)
	}
	return out
}

func TestTypeOf(t *testing.T) {
	cases := []struct {
		content string
		want    Type
	}{
		{"hello", TypeText},
		{"check https://example.com", TypeText},
		{"http://example.com/a.png", TypeImage},
		{"https://example.com/a.png", TypeImage},
		{"", TypeText},
	}

	for _, tc := range cases {
		if got := TypeOf(tc.content); got != tc.want {
			t.Errorf("TypeOf(%q) = %q, want %q", tc.content, got, tc.want)
		}
	}
}

func TestInsertAssignsMonotonicIDs(t *testing.T) {
	s := NewMemoryStore()
	msgs := seed(t, s, "u1", "u2", 3)

	for i := 1; i < len(msgs); i++ {
		if msgs[i].ID <= msgs[i-1].ID {
			t.Fatalf("ids not monotonic: %d after %d", msgs[i].ID, msgs[i-1].ID)
		}
	}
	for _, m := range msgs {
		if m.IsRead {
			t.Errorf("message %d inserted as already read", m.ID)
		}
	}
}

func TestFindConversationPagination(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s, "u1", "u2", 25)
	ctx := context.Background()

	seenIDs := make(map[int64]struct{})
	var prev time.Time
	total := 0

	for page := 1; ; page++ {
		msgs, err := s.FindConversation(ctx, "u1", "u2", page, DefaultPageSize)
		if err != nil {
			t.Fatalf("FindConversation page %d: %v", page, err)
		}
		if len(msgs) == 0 {
			break
		}

		for _, m := range msgs {
			if _, dup := seenIDs[m.ID]; dup {
				t.Fatalf("message %d appears on more than one page", m.ID)
			}
			seenIDs[m.ID] = struct{}{}

			// Newest-first across and within pages.
			if !prev.IsZero() && m.CreatedDate.After(prev) {
				t.Fatalf("message %d out of newest-first order", m.ID)
			}
			prev = m.CreatedDate
		}
		total += len(msgs)
	}

	if total != 25 {
		t.Fatalf("pages cover %d messages, want 25", total)
	}
}

func TestFindConversationIncludesBothDirections(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s, "u1", "u2", 2)
	seed(t, s, "u2", "u1", 3)
	seed(t, s, "u1", "u3", 4) // different conversation

	msgs, err := s.FindConversation(context.Background(), "u1", "u2", 1, 100)
	if err != nil {
		t.Fatalf("FindConversation: %v", err)
	}
	if len(msgs) != 5 {
		t.Fatalf("conversation has %d messages, want 5 (both directions, no strangers)", len(msgs))
	}
}

func TestFindConversationNormalizesPageArguments(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s, "u1", "u2", 3)
	ctx := context.Background()

	// Page below 1 falls back to page 1.
	msgs, err := s.FindConversation(ctx, "u1", "u2", 0, DefaultPageSize)
	if err != nil {
		t.Fatalf("FindConversation: %v", err)
	}
	if len(msgs) != 3 {
		t.Errorf("page 0 returned %d messages, want 3", len(msgs))
	}

	// Page beyond the data is empty, not an error.
	msgs, err = s.FindConversation(ctx, "u1", "u2", 99, DefaultPageSize)
	if err != nil {
		t.Fatalf("FindConversation: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("out-of-range page returned %d messages, want 0", len(msgs))
	}
}

func TestMarkReadIsExactAndIdempotent(t *testing.T) {
	s := NewMemoryStore()
	msgs := seed(t, s, "u1", "u2", 3)
	ctx := context.Background()

	if err := s.MarkRead(ctx, []int64{msgs[0].ID, msgs[1].ID}); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}

	unread, err := s.CountUnread(ctx, "u2", "u1")
	if err != nil {
		t.Fatalf("CountUnread: %v", err)
	}
	if unread != 1 {
		t.Fatalf("unread = %d after marking 2 of 3, want 1", unread)
	}

	// Re-marking the same ids changes nothing.
	if err := s.MarkRead(ctx, []int64{msgs[0].ID, msgs[1].ID}); err != nil {
		t.Fatalf("MarkRead (repeat): %v", err)
	}
	unread, _ = s.CountUnread(ctx, "u2", "u1")
	if unread != 1 {
		t.Fatalf("unread = %d after repeated MarkRead, want 1", unread)
	}

	// Empty id list is a no-op.
	if err := s.MarkRead(ctx, nil); err != nil {
		t.Fatalf("MarkRead(nil): %v", err)
	}
}

func TestCountUnreadIsDirectional(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s, "u1", "u2", 2)
	seed(t, s, "u2", "u1", 1)
	ctx := context.Background()

	got, err := s.CountUnread(ctx, "u2", "u1")
	if err != nil {
		t.Fatalf("CountUnread: %v", err)
	}
	if got != 2 {
		t.Errorf("unread from u1 to u2 = %d, want 2", got)
	}

	got, _ = s.CountUnread(ctx, "u1", "u2")
	if got != 1 {
		t.Errorf("unread from u2 to u1 = %d, want 1", got)
	}
}
