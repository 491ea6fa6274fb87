// Package config loads configuration structs from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11: the
// default .env file, when present, is loaded exactly once per process, then
// the environment is parsed into any Go struct via `env:` field tags with
// `envDefault:` fallbacks. There is no per-type cache; a library is loaded
// explicitly at its composition root and tests can reload freely after
// t.Setenv.
//
//	type Settings struct {
//		BatchSize int `env:"CHECKER_BATCH_SIZE" envDefault:"10"`
//	}
//
//	var s Settings
//	if err := config.Load(&s); err != nil { ... }
package config
