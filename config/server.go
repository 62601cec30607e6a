package config

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jcooky/go-din"
)

type ServerConfig struct {
	Host                string `env:"HOST"`
	Port                int    `env:"PORT"`
	DatabaseUrl         string `env:"DATABASE_URL"`
	DatabaseAutoMigrate bool   `env:"DATABASE_AUTO_MIGRATE"`
	// AllowedOrigins is a comma separated list used for CORS.
	AllowedOrigins string `env:"ALLOWED_ORIGINS"`
}

func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func init() {
	din.RegisterT(func(c *din.Container) (*ServerConfig, error) {
		conf := &ServerConfig{
			Host:                "0.0.0.0",
			Port:                9080,
			DatabaseUrl:         "sqlite:edudash.db",
			DatabaseAutoMigrate: true,
			AllowedOrigins:      "*",
		}
		if err := resolveConfig(conf, c.Env == din.EnvTest); err != nil {
			return nil, err
		}
		if c.Env == din.EnvTest {
			// every test container gets its own in-memory database
			conf.DatabaseUrl = fmt.Sprintf("sqlite:file:edudash-%s?mode=memory&cache=shared", uuid.NewString())
			conf.DatabaseAutoMigrate = true
		}

		return conf, nil
	})
}
