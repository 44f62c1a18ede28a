package message

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store implementation with the same ordering and
// read-receipt semantics as PGStore. It backs unit tests and DB-less
// development runs.
type MemoryStore struct {
	mu       sync.RWMutex
	messages []Message
	nextID   int64
}

// NewMemoryStore returns an empty in-memory message store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

// Insert persists a new message, assigning the next monotonic id. A provided
// CreatedDate is honored so tests can control ordering; otherwise the current
// UTC time is used.
func (s *MemoryStore) Insert(_ context.Context, m Message) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.ID = s.nextID
	s.nextID++
	m.IsRead = false
	if m.CreatedDate.IsZero() {
		m.CreatedDate = time.Now().UTC()
	}

	s.messages = append(s.messages, m)
	return m, nil
}

// FindConversation returns one newest-first page of the conversation between
// userA and userB.
func (s *MemoryStore) FindConversation(_ context.Context, userA string, userB string, page int, pageSize int) ([]Message, error) {
	page, pageSize = normalizePage(page, pageSize)

	s.mu.RLock()
	conversation := make([]Message, 0)
	for _, m := range s.messages {
		if (m.SenderID == userA && m.ReceiverID == userB) ||
			(m.SenderID == userB && m.ReceiverID == userA) {
			conversation = append(conversation, m)
		}
	}
	s.mu.RUnlock()

	sort.Slice(conversation, func(i, j int) bool {
		if conversation[i].CreatedDate.Equal(conversation[j].CreatedDate) {
			return conversation[i].ID > conversation[j].ID
		}
		return conversation[i].CreatedDate.After(conversation[j].CreatedDate)
	})

	start := (page - 1) * pageSize
	if start >= len(conversation) {
		return []Message{}, nil
	}

	end := start + pageSize
	if end > len(conversation) {
		end = len(conversation)
	}

	return conversation[start:end], nil
}

// MarkRead sets IsRead on exactly the given ids; already-read ids are a no-op.
func (s *MemoryStore) MarkRead(_ context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	wanted := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.messages {
		if _, ok := wanted[s.messages[i].ID]; ok {
			s.messages[i].IsRead = true
		}
	}
	return nil
}

// CountUnread returns the number of unread messages from senderID to receiverID.
func (s *MemoryStore) CountUnread(_ context.Context, receiverID string, senderID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, m := range s.messages {
		if m.ReceiverID == receiverID && m.SenderID == senderID && !m.IsRead {
			count++
		}
	}
	return count, nil
}
