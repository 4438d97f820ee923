package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/lordvidex/errs"
	"github.com/lordvidex/x/resp"
	"github.com/rs/zerolog/log"

	"github.com/kodekulture/gissa-server/game"
)

type contextKey struct {
	name string
}

// private vars
var (
	roomKey = &contextKey{"room"}
)

// Errors
var (
	ErrInvalidRoomID = errs.B().Code(errs.InvalidArgument).Msg("invalid room id").Err()
)

// RoomFromCtx returns the room injected by roomMiddleware.
func RoomFromCtx(ctx context.Context) *game.Room {
	v, _ := ctx.Value(roomKey).(*game.Room)
	return v
}

// roomMiddleware parses the {id} url param, finds the running room
// and returns a new context that contains it.
//
// The injected room can be gotten with the function RoomFromCtx.
func (h *Handler) roomMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			resp.Error(w, ErrInvalidRoomID)
			return
		}
		room, err := h.srv.Room(id)
		if err != nil {
			resp.Error(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), roomKey, room)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLogger logs every request once it is served.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			log.Debug().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("took", time.Since(start)).
				Msg("request")
		}()
		next.ServeHTTP(ww, r)
	})
}
