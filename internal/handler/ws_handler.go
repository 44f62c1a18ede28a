/*
Package handler provides the HTTP handler function for WebSocket connection upgrading and initialization.

This file contains the HandleWebSocket function, which is responsible for rate limiting,
resolving the authenticated identity against the account store, upgrading the HTTP
connection to WebSocket, and starting the client session lifecycle.
*/
package handler

import (
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"pairchat/internal/app/chat"
	"pairchat/internal/pkg/auth/jwt"
	"pairchat/internal/pkg/errs"
	"pairchat/internal/pkg/limiter"
	"pairchat/internal/pkg/logx"
	"pairchat/internal/pkg/randx"
	"pairchat/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if ip == "" {
			ip = "unknown_ip"
		}

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		// The hub only accepts authenticated sessions; a missing identity is
		// fatal to the connection attempt.
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil || identity.Username == "" {
			logx.Warn("WebSocket connection rejected: No authenticated identity")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		currentUser, err := deps.Users.FindByName(r.Context(), identity.Username)
		if err != nil {
			logx.Error(err, "WebSocket connection rejected: Identity lookup failed", "username", identity.Username)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}
		if currentUser == nil {
			logx.Warn("WebSocket connection rejected: Unknown identity", "username", identity.Username)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		// Optional hint naming the peer whose conversation should load
		// immediately after connect.
		peerHint := r.URL.Query().Get("receiverId")

		logx.Info("Attempting to upgrade connection", "user_id", currentUser.ID)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		sess := chat.Session{
			User:         *currentUser,
			ConnectionID: randx.ConnectionID(),
		}

		client := chat.NewClient(deps.Hub, deps.Registry, conn, sess, peerHint)

		logx.Info("WebSocket connection established", "user_id", currentUser.ID, "connection_id", sess.ConnectionID)

		client.Run()
	}
}
