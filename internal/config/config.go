// Package config reads the server settings from defaults, an optional config file
// and the environment (e.g. GAME_MODE overrides game.mode).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	KeyPort       = "server.port"
	KeyLogLevel   = "log.level"
	KeyEmbeddings = "data.embeddings"
	KeyNouns      = "data.nouns"
	KeyScale      = "data.scale"
	KeyMode       = "game.mode"
	KeyTimezone   = "game.timezone"
	KeyClosest    = "game.closest"
	KeyRoomTTL    = "game.room_ttl"
	KeyCachePath  = "cache.path"
	KeyCacheSize  = "cache.size"
)

type Config struct {
	Port     string
	LogLevel string

	// Embeddings and Nouns are file paths, the bundled vocabulary is used when empty.
	Embeddings string
	Nouns      string
	Scale      float64

	Mode     string
	Location *time.Location
	Closest  int
	RoomTTL  time.Duration

	// CachePath is the badger directory of built rank indexes, no disk cache when empty.
	CachePath string
	CacheSize int
}

func defaults(v *viper.Viper) {
	v.SetDefault(KeyPort, "8080")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyEmbeddings, "")
	v.SetDefault(KeyNouns, "")
	v.SetDefault(KeyScale, 100)
	v.SetDefault(KeyMode, "daily")
	v.SetDefault(KeyTimezone, "UTC")
	v.SetDefault(KeyClosest, 10)
	v.SetDefault(KeyRoomTTL, time.Hour)
	v.SetDefault(KeyCachePath, "")
	v.SetDefault(KeyCacheSize, 32)
}

// New returns a viper instance with defaults and environment overrides.
// file is read when not empty.
func New(file string) (*viper.Viper, error) {
	v := viper.New()
	defaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}
	return v, nil
}

// Load reads and validates the configuration.
func Load(file string) (Config, error) {
	v, err := New(file)
	if err != nil {
		return Config{}, err
	}
	return FromViper(v)
}

func FromViper(v *viper.Viper) (Config, error) {
	loc, err := time.LoadLocation(v.GetString(KeyTimezone))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", KeyTimezone, err)
	}
	c := Config{
		Port:       v.GetString(KeyPort),
		LogLevel:   v.GetString(KeyLogLevel),
		Embeddings: v.GetString(KeyEmbeddings),
		Nouns:      v.GetString(KeyNouns),
		Scale:      v.GetFloat64(KeyScale),
		Mode:       strings.ToLower(v.GetString(KeyMode)),
		Location:   loc,
		Closest:    v.GetInt(KeyClosest),
		RoomTTL:    v.GetDuration(KeyRoomTTL),
		CachePath:  v.GetString(KeyCachePath),
		CacheSize:  v.GetInt(KeyCacheSize),
	}
	return c, c.validate()
}

func (c Config) validate() error {
	var errList []error
	if c.Mode != "daily" && c.Mode != "random" {
		errList = append(errList, fmt.Errorf("%s: %q is neither daily nor random", KeyMode, c.Mode))
	}
	if c.Scale <= 0 {
		errList = append(errList, fmt.Errorf("%s: must be positive", KeyScale))
	}
	if c.Embeddings == "" && c.Nouns != "" || c.Embeddings != "" && c.Nouns == "" {
		errList = append(errList, fmt.Errorf("%s and %s must be set together", KeyEmbeddings, KeyNouns))
	}
	return errors.Join(errList...)
}
