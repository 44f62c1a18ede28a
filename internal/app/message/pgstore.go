package message

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore is the PostgreSQL-backed implementation of Store.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore returns a Store backed by the given connection pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// Insert persists a new message and returns it with the store-assigned id and
// creation timestamp.
func (s *PGStore) Insert(ctx context.Context, m Message) (Message, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO messages (sender_id, receiver_id, content, message_type, is_read)
		VALUES ($1, $2, $3, $4, FALSE)
		RETURNING id, created_at`,
		m.SenderID, m.ReceiverID, m.Content, string(m.MessageType),
	).Scan(&m.ID, &m.CreatedDate)
	if err != nil {
		return Message{}, fmt.Errorf("message: insert: %w", err)
	}

	m.IsRead = false
	m.CreatedDate = m.CreatedDate.UTC()
	return m, nil
}

// FindConversation returns one newest-first page of the conversation between
// userA and userB.
func (s *PGStore) FindConversation(ctx context.Context, userA string, userB string, page int, pageSize int) ([]Message, error) {
	page, pageSize = normalizePage(page, pageSize)

	rows, err := s.pool.Query(ctx, `
		SELECT id, sender_id, receiver_id, content, message_type, is_read, created_at
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at DESC, id DESC
		OFFSET $3 LIMIT $4`,
		userA, userB, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, fmt.Errorf("message: find conversation: %w", err)
	}
	defer rows.Close()

	messages := make([]Message, 0, pageSize)
	for rows.Next() {
		var m Message
		var msgType string
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &msgType, &m.IsRead, &m.CreatedDate); err != nil {
			return nil, fmt.Errorf("message: scan row: %w", err)
		}
		m.MessageType = Type(msgType)
		m.CreatedDate = m.CreatedDate.UTC()
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// MarkRead sets is_read on exactly the given ids. Already-read ids are left
// untouched, making the call idempotent.
func (s *PGStore) MarkRead(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := s.pool.Exec(ctx,
		"UPDATE messages SET is_read = TRUE WHERE id = ANY($1) AND NOT is_read", ids)
	if err != nil {
		return fmt.Errorf("message: mark read: %w", err)
	}
	return nil
}

// CountUnread returns the number of unread messages from senderID to receiverID.
func (s *PGStore) CountUnread(ctx context.Context, receiverID string, senderID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT count(*) FROM messages
		WHERE receiver_id = $1 AND sender_id = $2 AND NOT is_read`,
		receiverID, senderID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("message: count unread: %w", err)
	}
	return count, nil
}
