/*
Package chat contains the core logic for the one-to-one real-time messaging hub.

This file defines the Hub, the per-connection session controller. It orchestrates
the connect/disconnect lifecycle, message submission, history loading with
read-receipt transitions, and typing signals, composing the Presence directory,
the delivery Router, the message Store, and the user Directory.

Failures inside one session's operation never affect other connections: every
operation validates, logs, and returns. A failed send simply produces no
new-message event to either party.
*/
package chat

import (
	"context"

	"github.com/rs/zerolog"

	"pairchat/internal/app/message"
	"pairchat/internal/app/user"
	"pairchat/internal/pkg/logx"
)

// Session carries the authenticated identity and connection handle of one live
// WebSocket session. It is threaded explicitly through every hub operation so
// each operation is pure with respect to its declared inputs.
type Session struct {
	User         user.User
	ConnectionID string
}

// Hub is the composition root of the real-time core. One Hub serves the whole
// process; per-connection state lives in Session values and in the Presence
// directory.
type Hub struct {
	presence *Presence
	router   Router
	messages message.Store
	users    user.Directory
	logger   zerolog.Logger
}

// NewHub constructs a Hub over the injected collaborators.
func NewHub(presence *Presence, router Router, messages message.Store, users user.Directory) *Hub {
	return &Hub{
		presence: presence,
		router:   router,
		messages: messages,
		users:    users,
		logger:   logx.Logger().With().Str("component", "hub").Logger(),
	}
}

// Connect registers the session in the presence directory and announces it.
// The first connection of an identity triggers a peer-joined broadcast to
// everyone else; a reconnect only overwrites the stored connection id. If
// peerHint names a conversation partner, that conversation's first page is
// loaded immediately. Every connect ends with a presence snapshot broadcast.
func (h *Hub) Connect(ctx context.Context, sess Session, peerHint string) {
	wasAlreadyOnline := h.presence.Connect(
		sess.User.ID,
		sess.ConnectionID,
		sess.User.Username,
		sess.User.FullName,
		sess.User.ProfileImage,
	)

	if !wasAlreadyOnline {
		h.router.BroadcastExcept(sess.ConnectionID, EventPeerJoined, sess.User)
	}

	if peerHint != "" {
		h.LoadHistory(ctx, sess, peerHint, 1)
	}

	h.broadcastSnapshot(ctx, sess.User.ID)

	h.logger.Info().
		Str("user_id", sess.User.ID).
		Str("connection_id", sess.ConnectionID).
		Bool("was_already_online", wasAlreadyOnline).
		Msg("Session connected")
}

// Disconnect removes the session's identity from the presence directory and
// broadcasts a fresh snapshot. In-flight store operations started before the
// disconnect run to completion; later sends to the removed connection are
// swallowed by the router.
func (h *Hub) Disconnect(ctx context.Context, sess Session) {
	h.presence.Disconnect(sess.User.ID)

	h.broadcastSnapshot(ctx, sess.User.ID)

	h.logger.Info().
		Str("user_id", sess.User.ID).
		Str("connection_id", sess.ConnectionID).
		Msg("Session disconnected")
}

// SendMessage validates, classifies, and persists a new message, then delivers
// it to the receiver and echoes it back to the sender so all of the sender's
// surfaces stay consistent. Invalid submissions are logged and dropped without
// any side effect; there is no client-visible error channel.
func (h *Hub) SendMessage(ctx context.Context, sess Session, receiverID string, content string) {
	if receiverID == "" || content == "" {
		h.logger.Warn().
			Str("sender", sess.User.Username).
			Bool("missing_receiver", receiverID == "").
			Bool("missing_content", content == "").
			Msg("Dropping invalid message submission")
		return
	}

	sender, err := h.users.FindByName(ctx, sess.User.Username)
	if err != nil {
		h.logger.Error().Err(err).Str("sender", sess.User.Username).Msg("Sender lookup failed")
		return
	}

	receiver, err := h.users.FindByID(ctx, receiverID)
	if err != nil {
		h.logger.Error().Err(err).Str("receiver_id", receiverID).Msg("Receiver lookup failed")
		return
	}

	if sender == nil || receiver == nil {
		h.logger.Warn().
			Str("sender", sess.User.Username).
			Str("receiver_id", receiverID).
			Bool("sender_missing", sender == nil).
			Bool("receiver_missing", receiver == nil).
			Msg("Dropping message for unresolved identity")
		return
	}

	persisted, err := h.messages.Insert(ctx, message.Message{
		SenderID:    sender.ID,
		ReceiverID:  receiver.ID,
		Content:     content,
		MessageType: message.TypeOf(content),
	})
	if err != nil {
		h.logger.Error().Err(err).
			Str("sender_id", sender.ID).
			Str("receiver_id", receiver.ID).
			Msg("Failed to persist message")
		return
	}

	// Delivery is best-effort: the message survives even if the receiver
	// disconnected between the lookup and the send.
	h.router.SendToUser(receiver.ID, EventNewMessage, persisted)
	h.router.SendToUser(sender.ID, EventNewMessage, persisted)
}

// LoadHistory fetches one page of the conversation with peerID, marks the
// unread messages addressed to the session's user as read, notifies each
// distinct original sender of the newly-read ids, and sends the chronological
// page back to the requesting user. Re-loading an already-read page produces
// no messages-seen events.
func (h *Hub) LoadHistory(ctx context.Context, sess Session, peerID string, page int) {
	self, err := h.users.FindByName(ctx, sess.User.Username)
	if err != nil {
		h.logger.Error().Err(err).Str("username", sess.User.Username).Msg("History requester lookup failed")
		return
	}
	if self == nil {
		h.logger.Warn().Str("username", sess.User.Username).Msg("Dropping history request for unresolved identity")
		return
	}

	msgs, err := h.messages.FindConversation(ctx, self.ID, peerID, page, message.DefaultPageSize)
	if err != nil {
		h.logger.Error().Err(err).
			Str("user_id", self.ID).
			Str("peer_id", peerID).
			Int("page", page).
			Msg("Failed to load conversation page")
		return
	}

	// The store returns newest-first; clients render oldest-first.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	newlyRead := make([]int64, 0, len(msgs))
	for _, m := range msgs {
		if m.ReceiverID == self.ID && !m.IsRead {
			newlyRead = append(newlyRead, m.ID)
		}
	}

	if len(newlyRead) > 0 {
		if err := h.messages.MarkRead(ctx, newlyRead); err != nil {
			h.logger.Error().Err(err).
				Str("user_id", self.ID).
				Ints64("message_ids", newlyRead).
				Msg("Failed to mark messages as read")
			return
		}

		// One messages-seen notification per distinct sender in the page,
		// not one per message.
		readBySender := make(map[string][]int64)
		senderOrder := make([]string, 0, 1)
		for i := range msgs {
			if m := &msgs[i]; m.ReceiverID == self.ID && !m.IsRead {
				m.IsRead = true
				if _, seen := readBySender[m.SenderID]; !seen {
					senderOrder = append(senderOrder, m.SenderID)
				}
				readBySender[m.SenderID] = append(readBySender[m.SenderID], m.ID)
			}
		}

		for _, senderID := range senderOrder {
			h.router.SendToUser(senderID, EventMessagesSeen, MessagesSeenPayload{
				ReaderID:   self.ID,
				MessageIDs: readBySender[senderID],
			})
		}
	}

	h.router.SendToUser(self.ID, EventMessageList, MessageListPayload{
		PeerID:   peerID,
		Messages: msgs,
	})
}

// NotifyTyping relays a typing indicator to the named peer's live connection.
// An unresolved sender or an offline peer is silently ignored.
func (h *Hub) NotifyTyping(sess Session, peerUsername string) {
	if sess.User.Username == "" {
		return
	}

	connectionID, online := h.presence.LookupConnectionByName(peerUsername)
	if !online {
		return
	}

	h.router.SendToConnection(connectionID, EventTyping, sess.User.Username)
}

// broadcastSnapshot pushes the current presence view to every connected session.
func (h *Hub) broadcastSnapshot(ctx context.Context, selfID string) {
	snapshot, err := h.BuildSnapshot(ctx, selfID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", selfID).Msg("Failed to build presence snapshot")
		return
	}

	h.router.BroadcastAll(EventPresenceSnapshot, snapshot)
}
