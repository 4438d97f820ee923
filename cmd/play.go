package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kodekulture/gissa-server/game"
	"github.com/kodekulture/gissa-server/service"
)

func playCmd() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a round in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if mode == "" {
				mode = cfg.Mode
			}
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			srv, closeCache, err := newService(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeCache()
			defer srv.Stop()

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "gissa> ",
				InterruptPrompt: "^C",
				EOFPrompt:       "/quit",
			})
			if err != nil {
				return err
			}
			defer rl.Close()

			s := &session{srv: srv, mode: game.Mode(mode), out: rl.Stdout()}
			if err = s.start(ctx); err != nil {
				return err
			}
			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) {
					if len(line) == 0 {
						return nil
					}
					continue
				}
				if errors.Is(err, io.EOF) {
					return nil
				}
				if !s.handle(ctx, line) {
					return nil
				}
			}
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "daily or random, overrides game.mode")
	return cmd
}

// session is a terminal player of one round at a time.
type session struct {
	srv  *service.Service
	mode game.Mode
	id   uuid.UUID
	out  io.Writer
}

func (s *session) start(ctx context.Context) error {
	room, err := s.srv.NewRoom(ctx, s.mode)
	if err != nil {
		return err
	}
	s.id = room.ID()
	data, err := s.srv.Data(ctx, s.id)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Ny omgång (%s): gissa ordet bland %d ord. /hint, /new, /quit\n", s.mode, data.Vocabulary)
	return nil
}

// handle runs one input line and reports whether the session goes on.
func (s *session) handle(ctx context.Context, line string) bool {
	switch strings.TrimSpace(line) {
	case "/quit", "/q":
		return false
	case "/new":
		if err := s.start(ctx); err != nil {
			fmt.Fprintln(s.out, "error:", err)
			return false
		}
		return true
	case "/hint":
		res, err := s.srv.Hint(ctx, s.id)
		if err != nil {
			s.reject(err)
			return true
		}
		g := res.Data.(game.GuessResponse)
		fmt.Fprintf(s.out, "tips: %s\n", formatGuess(g))
		return true
	case "/guesses":
		data, err := s.srv.Data(ctx, s.id)
		if err != nil {
			s.reject(err)
			return true
		}
		for i, g := range data.Guesses {
			fmt.Fprintf(s.out, "%3d. %s\n", i+1, formatGuess(g))
		}
		return true
	}

	res, err := s.srv.Guess(ctx, s.id, line)
	if err != nil {
		s.reject(err)
		return true
	}
	switch data := res.Data.(type) {
	case game.GuessResponse:
		fmt.Fprintln(s.out, formatGuess(data))
	case game.Response:
		fmt.Fprintf(s.out, "Rätt! Ordet var %q, %d gissningar.\n", *data.Secret, data.GuessCount)
		for _, c := range data.Closest {
			fmt.Fprintf(s.out, "  %-16s %6d\n", c.Word, c.Rank)
		}
		fmt.Fprintln(s.out, "/new för en ny omgång")
	}
	return true
}

func (s *session) reject(err error) {
	switch game.Reason(err) {
	case game.ReasonEmpty:
	case game.ReasonDuplicate:
		fmt.Fprintln(s.out, "Du har redan gissat det ordet!")
	case game.ReasonUnknownWord:
		fmt.Fprintln(s.out, "Ordet finns inte i ordlistan. Försök med ett annat ord.")
	case game.ReasonWon:
		fmt.Fprintln(s.out, "Omgången är redan vunnen, /new för en ny.")
	case game.ReasonNoGuesses:
		fmt.Fprintln(s.out, "Gissa minst ett ord innan du ber om tips.")
	case game.ReasonNoHint:
		fmt.Fprintln(s.out, "Inga fler tips.")
	default:
		fmt.Fprintln(s.out, "error:", err)
	}
}

func formatGuess(g game.GuessResponse) string {
	mark := ""
	if g.Hint {
		mark = " (tips)"
	}
	return fmt.Sprintf("%-16s %6d%s", g.Word, g.Rank, mark)
}
