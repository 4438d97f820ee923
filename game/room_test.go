package game

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoom(t *testing.T) *Room {
	t.Helper()
	room := NewRoom(uuid.New(), Random, newRound(t, sampleStore(t), "katt"), 2)
	t.Cleanup(room.Close)
	return room
}

func TestRoom_Do(t *testing.T) {
	room := newRoom(t)
	ctx := context.Background()

	res, err := room.Do(ctx, NewPayload(SGuess, "bil"))
	require.NoError(t, err)
	assert.Equal(t, CGuess, res.Type)
	assert.Equal(t, 3, res.Data.(GuessResponse).Rank)

	_, err = room.Do(ctx, NewPayload(SGuess, "bil"))
	assert.Equal(t, ReasonDuplicate, Reason(err))

	_, err = room.Do(ctx, NewPayload(SGuess, 42))
	assert.ErrorIs(t, err, ErrInvalidData)

	_, err = room.Do(ctx, NewPayload("server/dance", nil))
	assert.ErrorIs(t, err, ErrUnknownEvent)

	res, err = room.Do(ctx, NewPayload(SHint, nil))
	require.NoError(t, err)
	assert.Equal(t, CHint, res.Type)
	assert.Equal(t, "hund", res.Data.(GuessResponse).Word)

	res, err = room.Do(ctx, NewPayload(SGuess, "katt"))
	require.NoError(t, err)
	assert.Equal(t, CWon, res.Type)
	data := res.Data.(Response)
	assert.Equal(t, "katt", *data.Secret)
	assert.Len(t, data.Closest, 2)

	res, err = room.Do(ctx, NewPayload(SData, nil))
	require.NoError(t, err)
	assert.Equal(t, CData, res.Type)
	assert.Equal(t, Won, res.Data.(Response).Status)
}

func TestRoom_DoSerializes(t *testing.T) {
	room := NewRoom(uuid.New(), Random, newRound(t, bigStore(t, 200), "a"), 5)
	t.Cleanup(room.Close)

	words := []string{"b", "c", "d", "e", "f", "g", "h", "i"}
	errc := make(chan error, len(words)*2)
	for _, w := range words {
		for range 2 {
			go func() {
				_, err := room.Do(context.Background(), NewPayload(SGuess, w))
				errc <- err
			}()
		}
	}
	var dups int
	for range len(words) * 2 {
		if err := <-errc; err != nil {
			require.ErrorIs(t, err, ErrDuplicateGuess)
			dups++
		}
	}
	assert.Equal(t, len(words), dups, "each word is accepted exactly once")

	res, err := room.Do(context.Background(), NewPayload(SData, nil))
	require.NoError(t, err)
	assert.Len(t, res.Data.(Response).Guesses, len(words))
}

func TestRoom_Close(t *testing.T) {
	room := newRoom(t)
	before := room.LastActive()
	time.Sleep(time.Millisecond)
	_, err := room.Do(context.Background(), NewPayload(SData, nil))
	require.NoError(t, err)
	assert.True(t, room.LastActive().After(before))

	room.Close()
	room.Close()
	assert.True(t, room.IsClosed())
	_, err = room.Do(context.Background(), NewPayload(SData, nil))
	assert.ErrorIs(t, err, ErrRoomClosed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = newRoom(t).Do(ctx, NewPayload(SData, nil))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRoom_Live(t *testing.T) {
	room := newRoom(t)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		room.Join(conn)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var p Payload
	require.NoError(t, conn.ReadJSON(&p))
	assert.Equal(t, CData, p.Type, "the current state is sent on join")

	t.Log("guesses made over the connection are answered")
	require.NoError(t, conn.WriteJSON(NewPayload(SGuess, "bil")))
	require.NoError(t, conn.ReadJSON(&p))
	assert.Equal(t, CGuess, p.Type)
	assert.EqualValues(t, 3, p.Data.(map[string]any)["rank"])

	t.Log("rejections are sent to the sender only")
	require.NoError(t, conn.WriteJSON(NewPayload(SGuess, "bil")))
	require.NoError(t, conn.ReadJSON(&p))
	assert.Equal(t, CError, p.Type)
	assert.Equal(t, string(ReasonDuplicate), p.Data.(map[string]any)["reason"])

	t.Log("client events are refused")
	require.NoError(t, conn.WriteJSON(NewPayload(CWon, nil)))
	require.NoError(t, conn.ReadJSON(&p))
	assert.Equal(t, CError, p.Type)

	t.Log("guesses made through Do are pushed to live connections")
	_, err = room.Do(context.Background(), NewPayload(SGuess, "katt"))
	require.NoError(t, err)
	require.NoError(t, conn.ReadJSON(&p))
	assert.Equal(t, CWon, p.Type)
	assert.Equal(t, "katt", p.Data.(map[string]any)["secret"])
}

func pingLoops() int {
	buf := make([]byte, 1<<20)
	n := runtime.Stack(buf, true)
	return strings.Count(string(buf[:n]), "(*Conn).ping(")
}

func TestRoom_CloseStopsConnections(t *testing.T) {
	room := newRoom(t)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		room.Join(conn)
	}))
	defer srv.Close()

	const clients = 5
	for range clients {
		conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
		require.NoError(t, err)
		defer conn.Close()
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var p Payload
		require.NoError(t, conn.ReadJSON(&p))
		require.Equal(t, CData, p.Type)
	}
	assert.GreaterOrEqual(t, pingLoops(), clients)

	room.Close()
	assert.Eventually(t, func() bool { return pingLoops() == 0 }, 2*time.Second, 10*time.Millisecond,
		"closing the room stops every connection goroutine")
}
