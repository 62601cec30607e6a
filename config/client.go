package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/jcooky/go-din"
)

type ClientConfig struct {
	ServerUrl string `env:"EDUDASH_SERVER_URL"`
	UserID    string `env:"EDUDASH_USER_ID"`
	DataDir   string `env:"EDUDASH_DATA_DIR"`
	// RefreshDelayMillis is how long the view waits after marking a thread
	// read before refetching the thread list.
	RefreshDelayMillis int `env:"EDUDASH_REFRESH_DELAY_MS"`
	// Sound enables the audible alert on incoming messages.
	Sound bool `env:"EDUDASH_SOUND"`
}

func (c *ClientConfig) RpcUrl() string {
	return c.ServerUrl + "/rpc"
}

func (c *ClientConfig) RealtimeUrl() string {
	u := c.ServerUrl
	switch {
	case len(u) >= 8 && u[:8] == "https://":
		u = "wss://" + u[8:]
	case len(u) >= 7 && u[:7] == "http://":
		u = "ws://" + u[7:]
	}
	return u + "/realtime"
}

func (c *ClientConfig) RefreshDelay() time.Duration {
	return time.Duration(c.RefreshDelayMillis) * time.Millisecond
}

func NewClientConfig() *ClientConfig {
	dataDir := ".edudash"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".edudash")
	}
	return &ClientConfig{
		ServerUrl:          "http://127.0.0.1:9080",
		DataDir:            dataDir,
		RefreshDelayMillis: 1500,
		Sound:              true,
	}
}

func init() {
	din.RegisterT(func(c *din.Container) (*ClientConfig, error) {
		conf := NewClientConfig()
		if err := resolveConfig(conf, c.Env == din.EnvTest); err != nil {
			return nil, err
		}
		if c.Env == din.EnvTest {
			conf.DataDir = ""
			conf.RefreshDelayMillis = 10
			conf.Sound = false
		}
		return conf, nil
	})
}
