package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/repoboard/internal/timex"
)

// JSONConfig is a DTO used exclusively for JSON unmarshalling. Absent keys
// keep the value already in Config.
type JSONConfig struct {
	ServerEndpointAddr *string         `json:"server_endpoint_addr"`
	DebounceWindow     *timex.Duration `json:"debounce_window"`
	PanSpeed           *float64        `json:"pan_speed"`
	KeyPanStep         *float64        `json:"key_pan_step"`
	ZoomStep           *float64        `json:"zoom_step"`
	LocalStorePath     *string         `json:"local_store_path"`
}

// parseJSON overlays cfg with the file at path; an empty path is a no-op.
func parseJSON(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.ServerEndpointAddr != nil {
		cfg.ServerEndpointAddr = *jc.ServerEndpointAddr
	}
	if jc.DebounceWindow != nil {
		cfg.DebounceWindow = time.Duration(jc.DebounceWindow.Duration)
	}
	if jc.PanSpeed != nil {
		cfg.PanSpeed = *jc.PanSpeed
	}
	if jc.KeyPanStep != nil {
		cfg.KeyPanStep = *jc.KeyPanStep
	}
	if jc.ZoomStep != nil {
		cfg.ZoomStep = *jc.ZoomStep
	}
	if jc.LocalStorePath != nil {
		cfg.LocalStorePath = *jc.LocalStorePath
	}
	return nil
}
