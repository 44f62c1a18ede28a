/*
Package chat contains the core logic for the one-to-one real-time messaging hub.

This file defines the Router delivery contract and its Registry implementation,
which fans events out to the send queues of live WebSocket clients. Delivery is
at-most-once and non-durable: offline targets are a silent no-op, and failures
on individual connections never abort a fan-out.
*/
package chat

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"pairchat/internal/pkg/logx"
)

// Router resolves identities to live connections and performs targeted or
// broadcast delivery. The hub's state-machine logic depends only on this
// interface, so it can be unit-tested without a live socket.
type Router interface {
	// SendToUser delivers an event to the user's live connection, if any.
	// Offline users are a silent no-op: there is no queuing and no error.
	SendToUser(userID string, event string, payload any)

	// SendToConnection delivers an event to a specific connection id.
	SendToConnection(connectionID string, event string, payload any)

	// BroadcastExcept delivers an event to every connected session except the
	// given connection.
	BroadcastExcept(connectionID string, event string, payload any)

	// BroadcastAll delivers an event to every connected session.
	BroadcastAll(event string, payload any)
}

// Sender is the minimal queueing surface the Registry needs from a connection.
// *Client implements it.
type Sender interface {
	Send(data []byte) error
}

// Registry maps live connection ids to their senders and implements Router on
// top of the Presence directory.
type Registry struct {
	presence *Presence

	mu      sync.RWMutex
	clients map[string]Sender

	logger zerolog.Logger
}

// NewRegistry returns an empty registry resolving users through the given
// presence directory.
func NewRegistry(presence *Presence) *Registry {
	return &Registry{
		presence: presence,
		clients:  make(map[string]Sender),
		logger:   logx.Logger().With().Str("component", "registry").Logger(),
	}
}

// Add registers a connection's sender under its connection id.
func (r *Registry) Add(connectionID string, sender Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clients[connectionID] = sender
}

// Remove drops the connection from the registry. Removing an unknown id is a
// no-op.
func (r *Registry) Remove(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.clients, connectionID)
}

// SendToUser resolves the user through the presence directory and delivers the
// event to their connection. Offline users are skipped silently.
func (r *Registry) SendToUser(userID string, event string, payload any) {
	connectionID, online := r.presence.LookupConnection(userID)
	if !online {
		return
	}

	r.SendToConnection(connectionID, event, payload)
}

// SendToConnection delivers the event to the given connection id. Delivery
// failures (closed socket, full queue, vanished connection) are logged and
// swallowed.
func (r *Registry) SendToConnection(connectionID string, event string, payload any) {
	data, err := r.encode(event, payload)
	if err != nil {
		return
	}

	r.mu.RLock()
	sender, ok := r.clients[connectionID]
	r.mu.RUnlock()

	if !ok {
		return
	}

	if err := sender.Send(data); err != nil {
		r.logger.Warn().Err(err).
			Str("connection_id", connectionID).
			Str("event", event).
			Msg("Dropping event for connection")
	}
}

// BroadcastExcept fans the event out to all connected sessions except the
// given connection id.
func (r *Registry) BroadcastExcept(connectionID string, event string, payload any) {
	r.broadcast(connectionID, event, payload)
}

// BroadcastAll fans the event out to every connected session.
func (r *Registry) BroadcastAll(event string, payload any) {
	r.broadcast("", event, payload)
}

// broadcast sends to every client except the one with exceptID (empty means
// no exclusion). The client set is copied under the read lock so that slow or
// failing sends never block registration.
func (r *Registry) broadcast(exceptID string, event string, payload any) {
	data, err := r.encode(event, payload)
	if err != nil {
		return
	}

	r.mu.RLock()
	targets := make(map[string]Sender, len(r.clients))
	for connectionID, sender := range r.clients {
		if connectionID != exceptID {
			targets[connectionID] = sender
		}
	}
	r.mu.RUnlock()

	for connectionID, sender := range targets {
		if err := sender.Send(data); err != nil {
			r.logger.Warn().Err(err).
				Str("connection_id", connectionID).
				Str("event", event).
				Msg("Dropping broadcast event for connection")
		}
	}
}

// encode marshals the event envelope once per fan-out.
func (r *Registry) encode(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(Envelope{Event: event, Payload: payload})
	if err != nil {
		r.logger.Error().Err(err).Str("event", event).Msg("Error marshaling event envelope")
		return nil, err
	}
	return data, nil
}
