package internal

import (
	"fmt"
	"time"
)

type Config struct {
	Host                 string        `env:"HOST,required=true"`
	Port                 int           `env:"PORT,required=true"`
	RoomCapacity         int           `env:"ROOM_CAPACITY"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,required=true"`
	DeliveryTimeout      time.Duration `env:"DELIVERY_TIMEOUT,required=true"`
	LogLevel             string        `env:"LOG_LEVEL,required=true"`
	CharReplacement      string        `env:"CHARACTER_REPLACEMENT,required=true"`

	// Responder settings. An empty API key selects the scripted responder,
	// which is the local development mode.
	ResponderAPIKey  string        `env:"RESPONDER_API_KEY"`
	ResponderBaseURL string        `env:"RESPONDER_BASE_URL"`
	ResponderModel   string        `env:"RESPONDER_MODEL"`
	ResponderDelay   time.Duration `env:"RESPONDER_DELAY"`
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
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
