/*
Package chat contains the core logic for the one-to-one real-time messaging hub.

This file defines the Presence directory: the process-wide registry mapping a
user id to its single live connection and a cached profile snapshot. It is the
only state shared across all connection goroutines and is constructed once at
process start and injected wherever it is needed.
*/
package chat

import "sync"

// PresenceRecord is the ephemeral per-user entry held while a user is online.
type PresenceRecord struct {
	// ConnectionID is the current live connection handle. A reconnect
	// overwrites it in place; a user never holds more than one.
	ConnectionID string

	// Cached profile fields for fast snapshot and typing resolution.
	Username     string
	FullName     string
	ProfileImage string
}

// Presence tracks which users currently have a live connection.
// Existence of a record means "online"; absence means "offline".
type Presence struct {
	mu      sync.RWMutex
	records map[string]PresenceRecord
}

// NewPresence returns an empty presence directory.
func NewPresence() *Presence {
	return &Presence{records: make(map[string]PresenceRecord)}
}

// Connect registers a live connection for the given user. If the user already
// has a record, only the connection id is overwritten and wasAlreadyOnline is
// true, which tells the caller to skip the join broadcast for reconnects.
func (p *Presence) Connect(userID string, connectionID string, username string, fullName string, profileImage string) (wasAlreadyOnline bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if existing, ok := p.records[userID]; ok {
		existing.ConnectionID = connectionID
		p.records[userID] = existing
		return true
	}

	p.records[userID] = PresenceRecord{
		ConnectionID: connectionID,
		Username:     username,
		FullName:     fullName,
		ProfileImage: profileImage,
	}
	return false
}

// Disconnect removes the user's record unconditionally. Disconnecting a user
// with no record is a no-op.
func (p *Presence) Disconnect(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.records, userID)
}

// LookupConnection returns the user's live connection id, if any.
func (p *Presence) LookupConnection(userID string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	record, ok := p.records[userID]
	if !ok {
		return "", false
	}
	return record.ConnectionID, true
}

// LookupConnectionByName returns the connection id of the online user with the
// given username, if any.
func (p *Presence) LookupConnectionByName(username string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, record := range p.records {
		if record.Username == username {
			return record.ConnectionID, true
		}
	}
	return "", false
}

// SnapshotKeys returns a point-in-time copy of the online user ids, so callers
// can compute per-user online flags without holding the lock during fan-out.
func (p *Presence) SnapshotKeys() map[string]struct{} {
	p.mu.RLock()
	defer p.mu.RUnlock()

	keys := make(map[string]struct{}, len(p.records))
	for userID := range p.records {
		keys[userID] = struct{}{}
	}
	return keys
}

// Online reports whether the user currently has a live connection.
func (p *Presence) Online(userID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	_, ok := p.records[userID]
	return ok
}
