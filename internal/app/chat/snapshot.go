/*
Package chat contains the core logic for the one-to-one real-time messaging hub.

This file builds the presence snapshot: the online-status and unread-count view
broadcast to every connected session whenever presence changes.
*/
package chat

import (
	"context"
	"sort"
)

// BuildSnapshot produces one PresenceEntry per known user: profile fields,
// whether the user is currently online, and how many unread messages the user
// identified by selfID has from them. Online users sort first; the order is
// otherwise stable.
//
// Cost is O(users) unread-count queries per call, which is acceptable at the
// scale of a single chat server but is the first thing to revisit if the user
// base grows.
func (h *Hub) BuildSnapshot(ctx context.Context, selfID string) ([]PresenceEntry, error) {
	users, err := h.users.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	onlineKeys := h.presence.SnapshotKeys()

	entries := make([]PresenceEntry, 0, len(users))
	for _, u := range users {
		unread, err := h.messages.CountUnread(ctx, selfID, u.ID)
		if err != nil {
			return nil, err
		}

		_, isOnline := onlineKeys[u.ID]

		entries = append(entries, PresenceEntry{
			ID:           u.ID,
			Username:     u.Username,
			FullName:     u.FullName,
			Email:        u.Email,
			ProfileImage: u.ProfileImage,
			Role:         u.Role,
			IsOnline:     isOnline,
			UnreadCount:  unread,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].IsOnline && !entries[j].IsOnline
	})

	return entries, nil
}
