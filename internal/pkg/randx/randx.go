/*
Package randx provides functions for generating unique identifiers and random keys.

It is primarily used to generate connection identifiers for WebSocket sessions
and collision-free object keys for uploaded images.
*/
package randx

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ConnectionID generates a unique identifier for a single WebSocket connection.
// A fresh ID is issued for every accepted connection, including reconnects of
// the same user.
func ConnectionID() string {
	return uuid.New().String()
}

// UploadKey generates an object storage key for an uploaded file, preserving the
// original file extension under the given prefix (e.g. "avatars" or "chat").
func UploadKey(prefix string, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("%s/%s%s", prefix, uuid.New().String(), ext)
}
