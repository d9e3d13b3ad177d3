/*
Package handler provides the HTTP handler function for WebSocket connection upgrading and initialization.

This file contains the HandleWebSocket function, which is responsible for rate limiting, the optional
Proof-of-Work ticket check, upgrading the HTTP connection to WebSocket, and starting the client lifecycle.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"relaychat/internal/app/chat"
	"relaychat/internal/pkg/errs"
	"relaychat/internal/pkg/limiter"
	"relaychat/internal/pkg/logx"
	"relaychat/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
// The connection joins no room until it sends a join frame.
func HandleWebSocket(deps *AppDeps, upgrader websocket.Upgrader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)

		if deps.ConnectLimiter != nil && !deps.ConnectLimiter.Allow(r) {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		if deps.PowGate.Enabled() && !deps.PowGate.ConsumeTicket(r) {
			logx.Warn("WebSocket connection rejected: Missing or invalid PoW ticket.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrPowChallengeRequired))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := chat.NewClient(deps.Manager, conn)
		if !deps.Manager.Register(client) {
			logx.Warn("WebSocket connection rejected: server shutting down.", "connection_id", client.ID())
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			_ = conn.Close()
			return
		}

		logx.Info("WebSocket connection established.", "connection_id", client.ID())

		go client.WritePump()

		client.ReadPump()
	}
}
