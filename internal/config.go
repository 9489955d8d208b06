package internal

import (
	"fmt"
	"time"
)

type Config struct {
	Host string `env:"HOST,required=true"`
	Port int    `env:"PORT,required=true"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`

	JWTSecret         string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,required=true"`

	CensoredWords   []string `env:"CENSORED_WORDS"`
	CharReplacement string   `env:"CHARACTER_REPLACEMENT,required=true"`

	LogLevel  string `env:"LOG_LEVEL,required=true"`
	DebugPort *int   `env:"DEBUG_PORT"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,required=true"`
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
