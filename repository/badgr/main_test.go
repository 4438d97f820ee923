package badgr

import (
	"os"
	"testing"

	"github.com/dgraph-io/badger"
	"github.com/rs/zerolog/log"
)

var testDB *badger.DB

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "gissa_badger_test")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create temp dir")
	}
	testDB, err = badger.Open(badger.DefaultOptions(dir))
	if err != nil {
		os.RemoveAll(dir)
		log.Fatal().Err(err).Msg("failed to open badger")
	}
	code := m.Run()
	testDB.Close()
	os.RemoveAll(dir)
	os.Exit(code)
}
