package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/lordvidex/errs"
	"github.com/lordvidex/x/req"
	"github.com/lordvidex/x/resp"
	"github.com/rs/zerolog/log"

	"github.com/kodekulture/gissa-server/game"
)

// Service is what the handler needs from service.Service.
type Service interface {
	NewRoom(ctx context.Context, mode game.Mode) (*game.Room, error)
	Room(id uuid.UUID) (*game.Room, error)
	Guess(ctx context.Context, id uuid.UUID, word string) (game.Payload, error)
	Hint(ctx context.Context, id uuid.UUID) (game.Payload, error)
	Data(ctx context.Context, id uuid.UUID) (game.Response, error)
}

var ErrInvalidMode = errs.B().Code(errs.InvalidArgument).Msg("mode must be daily or random").Err()

type Handler struct {
	s      *http.Server
	router chi.Router
	srv    Service
	mode   game.Mode
}

// New creates a handler. Rounds created without a mode use mode.
func New(srv Service, mode game.Mode) *Handler {
	h := &Handler{
		router: chi.NewRouter(),
		srv:    srv,
		mode:   mode,
	}
	h.setup()
	return h
}

func (h *Handler) Start(port string) error {
	h.s = &http.Server{Addr: ":" + port, Handler: h.router}
	log.Info().Str("port", port).Msg("listening")
	return h.s.ListenAndServe()
}

func (h *Handler) Stop(ctx context.Context) error {
	if h.s == nil {
		return nil
	}
	return h.s.Shutdown(ctx)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) setup() {
	r := h.router
	r.Use(middleware.RequestID, middleware.Recoverer, requestLogger)

	r.Get("/health", h.health)
	r.Get("/live", h.live)
	r.Post("/round", h.createRound)

	r.Route("/round/{id}", func(r chi.Router) {
		r.Use(h.roomMiddleware)

		r.Get("/", h.round)
		r.Post("/guess", h.guess)
		r.Post("/hint", h.hint)
	})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

type createRoundParams struct {
	Mode game.Mode `json:"mode"`
}

type roundIDResponse struct {
	ID   string    `json:"id"`
	Mode game.Mode `json:"mode"`
}

func (h *Handler) createRound(w http.ResponseWriter, r *http.Request) {
	var payload createRoundParams
	defer r.Body.Close()
	// an empty body uses the default mode
	if r.ContentLength != 0 {
		if err := req.I.Will().Bind(r, &payload).Validate(payload).Err(); err != nil {
			resp.Error(w, err)
			return
		}
	}
	mode := game.Mode(strings.ToLower(string(payload.Mode)))
	switch mode {
	case "":
		mode = h.mode
	case game.Daily, game.Random:
	default:
		resp.Error(w, ErrInvalidMode)
		return
	}

	room, err := h.srv.NewRoom(r.Context(), mode)
	if err != nil {
		log.Err(err).Caller().Msg("failed to create round")
		resp.Error(w, err)
		return
	}
	resp.JSON(w, roundIDResponse{ID: room.ID().String(), Mode: room.Mode()})
}

func (h *Handler) round(w http.ResponseWriter, r *http.Request) {
	room := RoomFromCtx(r.Context())
	data, err := h.srv.Data(r.Context(), room.ID())
	if err != nil {
		resp.Error(w, err)
		return
	}
	resp.JSON(w, data)
}

type guessParams struct {
	Word string `json:"word"`
}

func (h *Handler) guess(w http.ResponseWriter, r *http.Request) {
	var payload guessParams
	defer r.Body.Close()
	if err := req.I.Will().Bind(r, &payload).Validate(payload).Err(); err != nil {
		resp.Error(w, err)
		return
	}
	room := RoomFromCtx(r.Context())
	res, err := h.srv.Guess(r.Context(), room.ID(), payload.Word)
	if err != nil {
		h.reject(w, err)
		return
	}
	resp.JSON(w, res)
}

func (h *Handler) hint(w http.ResponseWriter, r *http.Request) {
	room := RoomFromCtx(r.Context())
	res, err := h.srv.Hint(r.Context(), room.ID())
	if err != nil {
		h.reject(w, err)
		return
	}
	resp.JSON(w, res)
}

// reject writes a rejected guess or hint as {error, reason}.
// Errors that are not rejections go through resp.Error.
func (h *Handler) reject(w http.ResponseWriter, err error) {
	reason := game.Reason(err)
	if reason == "" {
		resp.Error(w, err)
		return
	}
	code := http.StatusUnprocessableEntity
	if errors.Is(err, game.ErrNoHint) {
		code = http.StatusNotFound
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(game.ErrorResponse{Error: err.Error(), Reason: reason})
}
