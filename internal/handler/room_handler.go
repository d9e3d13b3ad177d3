/*
Package handler provides HTTP handler functions for read-only room inspection.
*/
package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"relaychat/internal/app/chat"
	"relaychat/internal/pkg/errs"
	"relaychat/internal/pkg/resp"
)

// HandleRoomUsers returns the live roster of a room, in the same shape as the roomData event.
// An empty or unknown room yields an empty roster.
func HandleRoomUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room := strings.TrimSpace(chi.URLParam(r, "room"))
		if room == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		users := deps.Manager.Coordinator().Roster(room)
		resp.RespondSuccess(w, r, chat.NewRoomData(room, users).Payload)
	}
}
