/*
Package chat contains the core logic for the one-to-one real-time messaging hub:
presence tracking, message delivery, read receipts, and the per-connection
session lifecycle.

This file defines the wire contract: the event names exchanged with clients and
the payload structures carried by each event. Event names are stable; clients
depend on them.
*/
package chat

import (
	"pairchat/internal/app/message"
)

// Inbound event names (client to server).
const (
	// EventSendMessage submits a new message to a receiver.
	EventSendMessage = "send-message"

	// EventLoadMessages requests one page of conversation history with a peer.
	EventLoadMessages = "load-messages"

	// EventNotifyTyping signals that the sender is typing to a peer.
	EventNotifyTyping = "notify-typing"
)

// Outbound event names (server to client).
const (
	// EventPeerJoined announces a user coming online for the first time
	// (reconnects of an already-online user do not re-announce).
	EventPeerJoined = "peer-joined"

	// EventPresenceSnapshot carries the full online-status and unread-count view.
	EventPresenceSnapshot = "presence-snapshot"

	// EventNewMessage delivers a persisted message to both parties.
	EventNewMessage = "new-message"

	// EventMessageList delivers one chronological page of conversation history.
	EventMessageList = "message-list"

	// EventMessagesSeen notifies a sender that the receiver read their messages.
	EventMessagesSeen = "messages-seen"

	// EventTyping relays a typing indicator to the peer.
	EventTyping = "typing"
)

// Envelope is the outer JSON frame for every event in both directions.
type Envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// SendMessagePayload is the body of a send-message event.
type SendMessagePayload struct {
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

// LoadMessagesPayload is the body of a load-messages event. Page defaults to 1.
type LoadMessagesPayload struct {
	PeerID string `json:"peerId"`
	Page   int    `json:"page,omitempty"`
}

// NotifyTypingPayload is the body of a notify-typing event. The peer is
// addressed by username, mirroring how clients render conversation headers.
type NotifyTypingPayload struct {
	PeerName string `json:"peerName"`
}

// MessageListPayload is the body of a message-list event: one page of the
// conversation with PeerID, oldest first.
type MessageListPayload struct {
	PeerID   string            `json:"peerId"`
	Messages []message.Message `json:"messages"`
}

// MessagesSeenPayload is the body of a messages-seen event, sent to the
// original sender of the newly-read messages.
type MessagesSeenPayload struct {
	ReaderID   string  `json:"readerId"`
	MessageIDs []int64 `json:"messageIds"`
}

// PresenceEntry is one row of the presence snapshot.
type PresenceEntry struct {
	ID           string `json:"id"`
	ConnectionID string `json:"connectionId,omitempty"`
	Username     string `json:"userName"`
	FullName     string `json:"fullName"`
	Email        string `json:"email,omitempty"`
	ProfileImage string `json:"profileImage"`
	IsOnline     bool   `json:"isOnline"`
	UnreadCount  int    `json:"unreadCount"`
	Role         string `json:"role,omitempty"`
}
