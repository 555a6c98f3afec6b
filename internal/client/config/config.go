package config

import (
	"time"

	"github.com/dmitrijs2005/repoboard/internal/flagx"
)

// Config holds runtime settings for the repoboard client.
type Config struct {
	ServerEndpointAddr string
	DebounceWindow     time.Duration
	PanSpeed           float64
	KeyPanStep         float64
	ZoomStep           float64
	LocalStorePath     string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.DebounceWindow = 400 * time.Millisecond
	c.PanSpeed = 1.0
	c.KeyPanStep = 50
	c.ZoomStep = 0.1
	c.LocalStorePath = "repoboard.db"
}

// LoadConfig applies defaults, then the JSON file named by -c/-config, then
// the flags in args. Later sources take precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, flagx.ConfigFileFlag(args)); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
