/*
Package message contains the chat message model and its persistence layer.

A message is immutable once stored except for the IsRead flag, which only ever
moves from false to true when the receiver loads the conversation.
*/
package message

import (
	"context"
	"strings"
	"time"
)

// Type classifies the message payload.
type Type string

const (
	// TypeText is a plain text message.
	TypeText Type = "Text"

	// TypeImage is a message whose content is the URL of an uploaded image.
	TypeImage Type = "Image"
)

// DefaultPageSize is the conversation page size used when the client does not
// supply one.
const DefaultPageSize = 10

// TypeOf derives the message type from the content shape: content that starts
// with "http" is treated as an image URL, everything else as text. This is the
// same prefix heuristic the clients rely on, not a content-type validation.
func TypeOf(content string) Type {
	if strings.HasPrefix(content, "http") {
		return TypeImage
	}
	return TypeText
}

// Message is a persisted chat message between two users.
type Message struct {
	// ID is assigned by the store and increases monotonically, providing a
	// stable sort tie-break for equal timestamps.
	ID int64 `json:"id"`

	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`

	// Content is the text payload; for image messages this is a URL.
	Content string `json:"content"`

	MessageType Type `json:"messageType"`

	// IsRead flips to true only via MarkRead, never back.
	IsRead bool `json:"isRead"`

	// CreatedDate is set by the store at insert time, in UTC.
	CreatedDate time.Time `json:"createdDate"`
}

// Store is the persistence contract for chat messages.
type Store interface {
	// Insert persists a new message and returns it with the store-assigned
	// id and creation timestamp filled in.
	Insert(ctx context.Context, m Message) (Message, error)

	// FindConversation returns the messages exchanged between userA and userB
	// in either direction, newest first (created date descending, id as
	// tie-break), skipping (page-1)*pageSize rows and returning at most
	// pageSize. Pages are 1-based; out-of-range values fall back to page 1
	// and DefaultPageSize. Callers re-reverse the result for display.
	FindConversation(ctx context.Context, userA string, userB string, page int, pageSize int) ([]Message, error)

	// MarkRead sets IsRead on exactly the given ids. Re-marking already-read
	// ids is a no-op.
	MarkRead(ctx context.Context, ids []int64) error

	// CountUnread returns the number of unread messages sent by senderID to
	// receiverID.
	CountUnread(ctx context.Context, receiverID string, senderID string) (int, error)
}

// normalizePage clamps page/pageSize to the contract's valid range.
func normalizePage(page int, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return page, pageSize
}
