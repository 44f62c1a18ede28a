package handler

import (
	"strings"

	"pairchat/internal/app/chat"
	"pairchat/internal/app/storage"
	"pairchat/internal/app/user"
	"pairchat/internal/configs"
)

// AppDeps bundles the long-lived collaborators injected into every handler.
type AppDeps struct {
	Hub            *chat.Hub
	Registry       *chat.Registry
	Users          user.Store
	Config         *configs.AppConfig
	StorageService storage.StorageService
}

// FullAssetURL turns a stored object key into a public URL. Keys that are
// already absolute URLs (legacy rows) pass through unchanged.
func (d *AppDeps) FullAssetURL(key string) string {
	if key == "" || strings.HasPrefix(key, "http") {
		return key
	}
	if d.Config.PublicAssetBaseURL == "" {
		return key
	}
	return d.Config.PublicAssetBaseURL + "/" + strings.TrimPrefix(key, "/")
}

// AssetKey is the inverse of FullAssetURL: it recovers the object storage key
// from a stored profile-image value. It returns "" for values that do not
// reference this server's storage (external URLs, empty fields), which tells
// callers there is no object to clean up.
func (d *AppDeps) AssetKey(value string) string {
	if value == "" {
		return ""
	}

	if base := d.Config.PublicAssetBaseURL; base != "" && strings.HasPrefix(value, base+"/") {
		return strings.TrimPrefix(value, base+"/")
	}

	if strings.HasPrefix(value, "http") {
		return ""
	}

	return strings.TrimPrefix(value, "/")
}
