package main

import (
	"fmt"
	"time"
)

type Config struct {
	Host              string        `env:"HOST,default=0.0.0.0"`
	Port              int           `env:"PORT,default=8000"`
	LogLevel          string        `env:"LOG_LEVEL,default=info"`
	EventBufferSize   int           `env:"EVENT_BUFFER_SIZE,default=256"`
	SinkTimeout       time.Duration `env:"SINK_TIMEOUT,default=5s"`
	RestartInterval   time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL,default=30s"`

	// Retention hook: rooms still vanish when emptied, but user
	// messages are archived to this badger path when set.
	BadgerFilepath *string `env:"BADGER_FILEPATH"`
	LimitMessages  *int    `env:"LIMIT_MESSAGES"`

	// Moderation: comma-separated word list; empty disables it.
	CensoredWords   string `env:"CENSORED_WORDS"`
	CharReplacement string `env:"CHARACTER_REPLACEMENT,default=*"`
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
