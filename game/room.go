package game

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lordvidex/errs"
	"github.com/rs/zerolog/log"
)

type Event string

const (
	SGuess Event = "server/guess"
	SHint  Event = "server/hint"
	SData  Event = "server/data"

	CGuess Event = "client/guess"
	CHint  Event = "client/hint"
	CWon   Event = "client/won"
	CData  Event = "client/data"
	CError Event = "client/error"

	PJoin  Event = "private/join"
	PLeave Event = "private/leave"
)

var (
	ErrRoomClosed   = errs.B().Code(errs.NotFound).Msg("the room is closed").Err()
	ErrUnknownEvent = errs.B().Code(errs.InvalidArgument).Msg("unknown event").Err()
	ErrInvalidData  = errs.B().Code(errs.InvalidArgument).Msg("invalid event data").Err()
)

type Payload struct {
	Type   Event       `json:"event"`
	Data   interface{} `json:"data"`
	sender *Conn       // sender is the live connection that sent the message
	reply  chan result // reply is set for messages sent with Do
}

type result struct {
	p   Payload
	err error
}

func NewPayload(event Event, data interface{}) Payload {
	return Payload{Type: event, Data: data}
}

// Room owns a Round. Every action on the round goes through the room's run loop,
// so guesses and hints are applied one at a time in arrival order.
type Room struct {
	// ctx is cancelled when the room is closed. Sends to inbox must select on it.
	ctx       context.Context
	cancelCtx func()

	id      uuid.UUID
	mode    Mode
	closest int
	round   *Round

	inbox chan Payload
	conns map[string]*Conn // only touched by the run loop

	lastActive atomic.Int64
	closeOnce  sync.Once
}

// NewRoom starts the run loop of a room playing round.
func NewRoom(id uuid.UUID, mode Mode, round *Round, closest int) *Room {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Room{
		ctx:       ctx,
		cancelCtx: cancel,
		id:        id,
		mode:      mode,
		closest:   closest,
		round:     round,
		inbox:     make(chan Payload),
		conns:     make(map[string]*Conn),
	}
	r.touch()
	go r.run()
	return r
}

func (r *Room) ID() uuid.UUID {
	return r.id
}

func (r *Room) Mode() Mode {
	return r.mode
}

// LastActive returns when the room last processed a message.
func (r *Room) LastActive() time.Time {
	return time.Unix(0, r.lastActive.Load())
}

func (r *Room) touch() {
	r.lastActive.Store(time.Now().UnixNano())
}

// IsClosed checks if the room is closed
func (r *Room) IsClosed() bool {
	return r.ctx.Err() != nil
}

// Do processes p in the run loop and returns the reply.
// Rejected guesses and hints are returned as errors, see Reason.
func (r *Room) Do(ctx context.Context, p Payload) (Payload, error) {
	if err := ctx.Err(); err != nil {
		return Payload{}, err
	}
	if r.IsClosed() {
		return Payload{}, ErrRoomClosed
	}
	p.reply = make(chan result, 1)
	select {
	case <-ctx.Done():
		return Payload{}, ctx.Err()
	case <-r.ctx.Done():
		return Payload{}, ErrRoomClosed
	case r.inbox <- p:
	}
	select {
	case <-ctx.Done():
		return Payload{}, ctx.Err()
	case <-r.ctx.Done():
		return Payload{}, ErrRoomClosed
	case res := <-p.reply:
		return res.p, res.err
	}
}

// Join attaches a live connection to the room. The connection receives the
// current round state and every later update.
func (r *Room) Join(conn *websocket.Conn) {
	c := newConn(conn, r)
	if !r.tryBroadcast(NewPayload(PJoin, c)) {
		c.close()
	}
}

// Close stops the run loop and disconnects all live connections.
func (r *Room) Close() {
	r.closeOnce.Do(r.cancelCtx)
}

// run processes all messages sent to the room.
// This function is blocking until the room is closed.
func (r *Room) run() {
	for {
		select {
		case <-r.ctx.Done():
			for id, c := range r.conns {
				c.close()
				delete(r.conns, id)
			}
			return
		case m := <-r.inbox:
			r.touch()
			r.handle(m)
		}
	}
}

func (r *Room) handle(m Payload) {
	switch m.Type {
	case PJoin:
		r.join(m.Data.(*Conn))
		return
	case PLeave:
		r.leave(m.Data.(*Conn))
		return
	}

	var (
		res Payload
		err error
	)
	switch m.Type {
	case SGuess:
		res, err = r.guess(m)
	case SHint:
		res, err = r.hint()
	case SData:
		res = r.data()
	default:
		err = ErrUnknownEvent
	}

	if m.reply != nil {
		m.reply <- result{p: res, err: err}
	} else if err != nil && m.sender != nil {
		m.sender.write(NewPayload(CError, ErrorResponse{Error: err.Error(), Reason: Reason(err)}))
	}
	if err != nil {
		return
	}
	switch res.Type {
	case CGuess, CHint, CWon:
		r.sendAll(res)
	case CData:
		if m.sender != nil {
			m.sender.write(res)
		}
	}
}

// guess processes the `SGuess` event. A winning guess replies with `CWon`.
func (r *Room) guess(m Payload) (Payload, error) {
	text, ok := m.Data.(string)
	if !ok {
		return Payload{}, ErrInvalidData
	}
	g, err := r.round.Guess(text)
	if err != nil {
		return Payload{}, err
	}
	if r.round.Won() {
		log.Info().Str("room", r.id.String()).Int("guesses", len(r.round.guesses)).Msg("round won")
		return NewPayload(CWon, r.response()), nil
	}
	return NewPayload(CGuess, ToGuess(g)), nil
}

func (r *Room) hint() (Payload, error) {
	g, err := r.round.Hint(time.Now())
	if err != nil {
		return Payload{}, err
	}
	return NewPayload(CHint, ToGuess(g)), nil
}

func (r *Room) data() Payload {
	return NewPayload(CData, r.response())
}

func (r *Room) response() Response {
	return ToResponse(r.round, r.id, r.mode, r.closest)
}

func (r *Room) join(c *Conn) {
	if c.closed.Load() {
		return
	}
	if err := c.write(r.data()); err != nil {
		c.close()
		return
	}
	r.conns[c.id] = c
}

func (r *Room) leave(c *Conn) {
	c.close()
	delete(r.conns, c.id)
}

// tryBroadcast hands the payload to the run loop unless the room is closed.
func (r *Room) tryBroadcast(p Payload) bool {
	select {
	case <-r.ctx.Done():
		return false
	case r.inbox <- p:
		return true
	}
}

// sendAll sends the payload to all live connections of the room.
// Connections that fail are removed.
func (r *Room) sendAll(p Payload) {
	for id, c := range r.conns {
		if err := c.write(p); err != nil {
			c.close()
			delete(r.conns, id)
		}
	}
}

var (
	// pongWait is how long we will await a pong response from a connection
	pongWait = 10 * time.Second

	pingInterval = (pongWait * 9) / 10
)

// Conn is a live websocket connection watching a room.
type Conn struct {
	conn    *websocket.Conn
	room    *Room
	id      string
	writeMu sync.Mutex
	closed  atomic.Bool
	done    chan struct{}

	t *time.Ticker
}

// newConn starts the read goroutine forwarding messages to the room and
// the ping goroutine closing the connection once the peer is gone.
func newConn(conn *websocket.Conn, room *Room) *Conn {
	c := &Conn{
		conn: conn,
		room: room,
		id:   uuid.NewString(),
		done: make(chan struct{}),
		t:    time.NewTicker(pingInterval),
	}
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go c.read()
	go c.ping()
	return c
}

func (c *Conn) close() error {
	if c.closed.Swap(true) {
		return nil
	}
	close(c.done)
	c.t.Stop()
	return c.conn.Close()
}

// ping keeps the read deadline moving while the peer answers. It returns once
// the connection is closed.
func (c *Conn) ping() {
	defer c.t.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-c.t.C:
			c.writeMu.Lock()
			err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(pongWait))
			c.writeMu.Unlock()
			if err != nil {
				c.leave()
				return
			}
		}
	}
}

// leave asks the room to drop the connection, closing it directly when the room is gone.
func (c *Conn) leave() {
	if !c.room.tryBroadcast(NewPayload(PLeave, c)) {
		c.close()
	}
}

// read reads messages from the connection and forwards them to the room.
func (c *Conn) read() {
	for {
		var p Payload
		if err := c.conn.ReadJSON(&p); err != nil {
			if !c.closed.Load() {
				c.leave()
			}
			return
		}
		// only "server/" events may be sent by clients
		if !strings.HasPrefix(string(p.Type), "server/") {
			c.write(NewPayload(CError, ErrorResponse{Error: "unsupported action"}))
			continue
		}
		p.sender = c
		c.room.tryBroadcast(p)
	}
}

// write writes the payload to the connection in synchronized manner.
func (c *Conn) write(p Payload) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	err := c.conn.WriteJSON(p)
	if err != nil {
		log.Err(err).Caller().Msgf("failed to write to connection (%s)", c.id)
	}
	return err
}
