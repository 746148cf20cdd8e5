package config

import (
	"errors"

	"github.com/spf13/viper"
)

type Config struct {
	Addr          string
	MongoURI      string
	MongoDatabase string
	SigningKey    string
	Development   bool
}

// Load reads configuration from the environment with sensible
// defaults for local development. The JWT signing key has no default:
// outside development mode a missing key is a startup error.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("ADDR", ":8090")
	v.SetDefault("MONGODB_URI", "mongodb://127.0.0.1:27017")
	v.SetDefault("MONGODB_DATABASE", "campusconnect")
	v.SetDefault("DEVELOPMENT", false)

	cfg := &Config{
		Addr:          v.GetString("ADDR"),
		MongoURI:      v.GetString("MONGODB_URI"),
		MongoDatabase: v.GetString("MONGODB_DATABASE"),
		SigningKey:    v.GetString("AUTH_SIGNING_KEY"),
		Development:   v.GetBool("DEVELOPMENT"),
	}

	if cfg.SigningKey == "" && !cfg.Development {
		return nil, errors.New("AUTH_SIGNING_KEY must be set")
	}
	return cfg, nil
}
