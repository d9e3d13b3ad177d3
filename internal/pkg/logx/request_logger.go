/*
Package logx provides a structured logging wrapper based on zerolog.

This file contains the access log middleware. Requests are logged by chi route pattern
rather than raw URI, so room names in paths stay out of the log stream, and client
addresses are truncated to their network prefix. WebSocket upgrades are logged once,
when the session ends.
*/
package logx

import (
	"net"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	kindHTTP      = "http"
	kindWebSocket = "websocket"
)

// AccessLog returns chi middleware that logs one line per request and stores a request-scoped
// logger in the context (retrieve it with zerolog.Ctx).
func AccessLog() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			kind := kindHTTP
			if websocket.IsWebSocketUpgrade(r) {
				kind = kindWebSocket
			}

			reqLog := Logger().With().
				Str("component", "http").
				Str("kind", kind).
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("client", maskAddr(r.RemoteAddr)).
				Str("method", r.Method).
				Logger()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(reqLog.WithContext(r.Context())))

			logCompletion(reqLog, kind, routePattern(r), ww, time.Since(start))
		})
	}
}

// logCompletion writes the closing entry of a request. A WebSocket request that never wrote a
// status was hijacked by the upgrader; its duration is the lifetime of the session.
func logCompletion(l zerolog.Logger, kind, route string, ww middleware.WrapResponseWriter, elapsed time.Duration) {
	status := ww.Status()

	if kind == kindWebSocket && status == 0 {
		l.Info().
			Str("route", route).
			Dur("session_duration", elapsed).
			Msg("WebSocket session closed")
		return
	}

	if status == 0 {
		status = http.StatusOK
	}

	var ev *zerolog.Event
	switch {
	case status >= 500:
		ev = l.Error()
	case status >= 400:
		ev = l.Warn()
	default:
		ev = l.Info()
	}

	ev.Str("route", route).
		Int("status", status).
		Int("bytes", ww.BytesWritten()).
		Dur("latency", elapsed).
		Msg("Request completed")
}

// routePattern returns the matched chi pattern, e.g. "/api/rooms/{room}/users".
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

// maskAddr keeps the /24 of an IPv4 client or the /64 of an IPv6 client.
// Loopback addresses are returned as is.
func maskAddr(remoteAddr string) string {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}

	addr, err := netip.ParseAddr(host)
	if err != nil {
		return "unknown_ip"
	}
	addr = addr.Unmap().WithZone("")

	if addr.IsLoopback() {
		return addr.String()
	}

	bits := 64
	if addr.Is4() {
		bits = 24
	}

	prefix, err := addr.Prefix(bits)
	if err != nil {
		return "unknown_ip"
	}
	return prefix.Addr().String()
}
