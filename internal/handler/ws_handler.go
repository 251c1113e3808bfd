/*
Package handler provides the HTTP handlers and routing setup for the server.

This file contains HandleWebSocket, which rate limits the upgrade, resolves
the trusted username from the session token before any registry call, and
runs the client lifecycle.
*/
package handler

import (
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"pulsechat/internal/app/chat"
	"pulsechat/internal/pkg/auth/jwt"
	"pulsechat/internal/pkg/errs"
	"pulsechat/internal/pkg/limiter"
	"pulsechat/internal/pkg/logx"
	"pulsechat/internal/pkg/randx"
	"pulsechat/internal/pkg/resp"
)

// HandleWebSocket creates the HandlerFunc that upgrades connections and
// drives the per-connection lifecycle: hub registration, write pump,
// presence connect, then the blocking read pump.
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
			logx.Warn("WebSocket connection rejected: rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		// Browsers cannot set headers on WebSocket upgrades, so the session
		// token travels as a query parameter.
		tokenString := r.URL.Query().Get("token")
		if tokenString == "" {
			logx.Warn("WebSocket request rejected: missing token")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		payload, err := jwt.ParseToken(tokenString, deps.Config.JWTSecret)
		if err != nil {
			logx.Warn("WebSocket request rejected: invalid token", "error", err)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		if payload.Username == "" {
			logx.Warn("WebSocket request rejected: token without username")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		connID := randx.ConnectionID()
		tokenExpiry := time.Unix(payload.ExpiresAt, 0)

		client := chat.NewClient(deps.Chat, conn, payload.Username, connID, tokenExpiry)

		deps.Chat.Hub.Add(client)

		go client.WritePump()

		logx.Info("WebSocket connection established",
			"conn_id", connID,
			"username", payload.Username,
		)

		// Register presence only after the connection can receive frames, so
		// a userConnected event racing in from another connection is never
		// lost for this one.
		deps.Chat.Tracker.Connect(payload.Username, connID)

		client.ReadPump()
	}
}
