package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/lordvidex/errs"
	"github.com/rs/zerolog/log"

	"github.com/kodekulture/gissa-server/game"
	"github.com/kodekulture/gissa-server/game/rank"
	"github.com/kodekulture/gissa-server/game/vector"
	"github.com/kodekulture/gissa-server/game/word"
	"github.com/kodekulture/gissa-server/repository"
)

var (
	ErrRoomNotFound = errs.B().Code(errs.NotFound).Msg("room not found").Err()
	ErrUnknownMode  = errs.B().Code(errs.InvalidArgument).Msg("unknown game mode").Err()
)

const (
	// RoomTTL is how long a room is kept after its last action.
	RoomTTL = time.Hour
)

type Options struct {
	// Location is the timezone of the hourly secret, UTC when nil.
	Location *time.Location
	// Closest is the number of closest words revealed after a win.
	Closest int
	// RoomTTL overrides the default idle time before a room is collected.
	RoomTTL time.Duration
	// Rand is the source of random secrets, the global source when nil.
	Rand *rand.Rand
}

type Service struct {
	*hub
	store    *vector.Store
	eligible []string
	cache    repository.IndexCache
	gens     map[game.Mode]word.Generator
	closest  int
}

// New prepares a service over store. Secrets are drawn from the nouns that
// have a vector. cache may be nil.
func New(ctx context.Context, store *vector.Store, nouns []string, cache repository.IndexCache, opts Options) (*Service, error) {
	if store == nil || store.Size() == 0 {
		return nil, rank.ErrEmptyStore
	}
	eligible := word.Eligible(nouns, store)
	if len(eligible) == 0 {
		return nil, word.ErrNoEligible
	}
	if opts.Closest <= 0 {
		opts.Closest = game.DefaultClosest
	}
	if opts.RoomTTL <= 0 {
		opts.RoomTTL = RoomTTL
	}
	log.Info().
		Int("vocabulary", store.Size()).
		Int("nouns", len(nouns)).
		Int("eligible", len(eligible)).
		Msg("word lists loaded")

	return &Service{
		hub:      newHub(ctx, opts.RoomTTL),
		store:    store,
		eligible: eligible,
		cache:    cache,
		closest:  opts.Closest,
		gens: map[game.Mode]word.Generator{
			game.Daily:  word.NewHourlyGen(eligible, opts.Location),
			game.Random: word.NewRandomGen(eligible, opts.Rand),
		},
	}, nil
}

// Eligible returns the words that can be chosen as secret.
func (s *Service) Eligible() []string {
	return s.eligible
}

// NewRoom starts a round in the given mode and returns its room.
// The rank index of the secret is built, or loaded from the cache, before the room accepts guesses.
func (s *Service) NewRoom(ctx context.Context, mode game.Mode) (*game.Room, error) {
	gen, ok := s.gens[mode]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	secret, err := gen.Generate(time.Now())
	if err != nil {
		return nil, err
	}
	idx, err := s.index(ctx, secret)
	if err != nil {
		return nil, err
	}
	round, err := game.NewRound(s.store, idx)
	if err != nil {
		return nil, err
	}
	room := game.NewRoom(uuid.New(), mode, round, s.closest)
	s.SetRoom(room.ID(), room)
	log.Debug().Str("room", room.ID().String()).Str("mode", string(mode)).Str("secret", secret).Msg("new round")
	return room, nil
}

// index returns the rank index of secret, building and caching it on a miss.
// Cache failures are logged, the index is then built from the store.
func (s *Service) index(ctx context.Context, secret string) (*rank.Index, error) {
	if s.cache == nil {
		return rank.Build(secret, s.store)
	}
	key := repository.Key(s.store.Fingerprint(), secret)
	entries, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Err(err).Caller().Str("key", key).Msg("failed to read cached rank index")
	}
	if ok && len(entries) == s.store.Size()-1 && s.inStore(entries) {
		idx, err := rank.Restore(secret, entries)
		if err == nil {
			return idx, nil
		}
		log.Err(err).Caller().Str("key", key).Msg("discarding cached rank index")
	}

	start := time.Now()
	idx, err := rank.Build(secret, s.store)
	if err != nil {
		return nil, err
	}
	log.Debug().Dur("took", time.Since(start)).Int("entries", idx.Len()).Msg("rank index built")
	if err = s.cache.Put(ctx, key, idx.Entries()); err != nil {
		log.Err(err).Caller().Str("key", key).Msg("failed to cache rank index")
	}
	return idx, nil
}

// inStore reports whether every cached entry is a word of the current store.
func (s *Service) inStore(entries []rank.Entry) bool {
	for _, e := range entries {
		if !s.store.Has(e.Word) {
			return false
		}
	}
	return true
}

// Room returns the running room with the given id.
func (s *Service) Room(id uuid.UUID) (*game.Room, error) {
	r, ok := s.GetRoom(id)
	if !ok {
		return nil, ErrRoomNotFound
	}
	if r.IsClosed() {
		s.DeleteRoom(id)
		return nil, ErrRoomNotFound
	}
	return r, nil
}

func (s *Service) do(ctx context.Context, id uuid.UUID, p game.Payload) (game.Payload, error) {
	r, err := s.Room(id)
	if err != nil {
		return game.Payload{}, err
	}
	res, err := r.Do(ctx, p)
	if errors.Is(err, game.ErrRoomClosed) {
		return game.Payload{}, ErrRoomNotFound
	}
	return res, err
}

// Guess submits a guess to the room's round.
func (s *Service) Guess(ctx context.Context, id uuid.UUID, w string) (game.Payload, error) {
	return s.do(ctx, id, game.NewPayload(game.SGuess, w))
}

// Hint asks the room's round for a hint.
func (s *Service) Hint(ctx context.Context, id uuid.UUID) (game.Payload, error) {
	return s.do(ctx, id, game.NewPayload(game.SHint, nil))
}

// Data returns the current state of the room's round.
func (s *Service) Data(ctx context.Context, id uuid.UUID) (game.Response, error) {
	res, err := s.do(ctx, id, game.NewPayload(game.SData, nil))
	if err != nil {
		return game.Response{}, err
	}
	return res.Data.(game.Response), nil
}

// Stop closes every room.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.rooms {
		r.Close()
		delete(s.rooms, id)
	}
	log.Info().Msg("all rooms closed")
}
