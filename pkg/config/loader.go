package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var defaultEnvOnce sync.Once

// LoadEnv reads the given .env files into the process environment without
// overriding variables that are already set. With no arguments it reads
// ".env" from the working directory.
func LoadEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil {
		return errors.Join(ErrLoadingEnv, err)
	}
	return nil
}

// Load parses the environment into a new T. The default .env file is read
// once per process; a missing file is not an error.
func Load[T any]() (T, error) {
	defaultEnvOnce.Do(func() {
		_ = godotenv.Load()
	})

	var cfg T
	if err := env.Parse(&cfg); err != nil {
		return cfg, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

// LoadPrefixed is Load with every env key prefixed, e.g. "REPLICA_" turns
// PG_CONN_URL into REPLICA_PG_CONN_URL.
func LoadPrefixed[T any](prefix string) (T, error) {
	defaultEnvOnce.Do(func() {
		_ = godotenv.Load()
	})

	var cfg T
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: prefix}); err != nil {
		return cfg, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

// MustLoad is Load that panics on failure. Use it at process start.
func MustLoad[T any]() T {
	cfg, err := Load[T]()
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return cfg
}
