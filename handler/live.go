package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	// Create upgrade websocket connection
	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		//Solving cross-domain problems
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
)

// live upgrades the request to a websocket watching the room given by the room_id query.
func (h *Handler) live(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuid.Parse(r.URL.Query().Get("room_id"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("invalid room id"))
		return
	}
	room, err := h.srv.Room(roomID)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("room not found"))
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Err(err).Caller().Msg("error upgrading connection")
		return
	}
	room.Join(conn)
}
