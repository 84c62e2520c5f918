package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// SERVER_ADDR points the suite at an already running server
	// (host:port). Empty means the suite spins up an in-process stack.
	ServerAddr string `envconfig:"SERVER_ADDR"`
	// E2E_ROOM_CAPACITY must match the capacity of the target server.
	RoomCapacity int `envconfig:"E2E_ROOM_CAPACITY" default:"2"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
