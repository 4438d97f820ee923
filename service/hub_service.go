package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kodekulture/gissa-server/game"
)

type hub struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]*game.Room
	ttl   time.Duration
}

func newHub(ctx context.Context, ttl time.Duration) *hub {
	h := hub{rooms: make(map[uuid.UUID]*game.Room), ttl: ttl}
	go h.gc(ctx)
	return &h
}

// GetRoom returns the room with the given id and a bool indicating whether the room was found.
func (s *hub) GetRoom(id uuid.UUID) (*game.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	return r, ok
}

// SetRoom sets the room with the given id to the given room.
func (s *hub) SetRoom(id uuid.UUID, r *game.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[id] = r
}

// DeleteRoom deletes the room with the given id.
func (s *hub) DeleteRoom(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
}

// Len returns the number of rooms in the hub.
func (s *hub) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// mark returns the rooms that are closed or have been idle for at least ttl.
func (s *hub) mark(now time.Time) []*game.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var garbage []*game.Room
	for _, r := range s.rooms {
		if r.IsClosed() || now.Sub(r.LastActive()) >= s.ttl {
			garbage = append(garbage, r)
		}
	}
	return garbage
}

// sweep removes the marked rooms unless they were used after marking.
func (s *hub) sweep(garbage []*game.Room, now time.Time) int {
	var removed []*game.Room
	// 1. fast remove from rooms
	s.mu.Lock()
	for _, r := range garbage {
		if !r.IsClosed() && now.Sub(r.LastActive()) < s.ttl {
			continue
		}
		delete(s.rooms, r.ID())
		removed = append(removed, r)
	}
	s.mu.Unlock()

	// 2. cleanup later
	for _, r := range removed {
		r.Close()
	}
	return len(removed)
}

// gc alternates between marking idle rooms and sweeping the marked ones.
func (s *hub) gc(ctx context.Context) {
	ticker := time.NewTicker(max(s.ttl/4, time.Second))
	defer ticker.Stop()

	isMarkPhase := true
	var garbage []*game.Room
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if isMarkPhase {
				garbage = s.mark(now)
			} else {
				if n := s.sweep(garbage, now); n > 0 {
					log.Debug().Int("rooms", n).Int("left", s.Len()).Msg("collected idle rooms")
				}
				garbage = nil
			}
			isMarkPhase = !isMarkPhase
		}
	}
}
