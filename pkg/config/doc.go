// Package config loads env-tagged structs from the process environment.
//
// Values come from the environment first; an optional .env file (or the
// files passed to LoadEnv) fills in anything that is not already set.
// Parsing is done by github.com/caarlos0/env/v11, so every struct uses the
// `env` and `envDefault` tags:
//
//	type Config struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	cfg, err := config.Load[Config]()
package config
