package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/flagx"
	"github.com/dmitrijs2005/gophtodo/internal/timex"
)

// JsonConfig is used only for unmarshalling; values are copied into Config.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	SyncInterval       timex.Duration `json:"sync_interval"`
	ReminderInterval   timex.Duration `json:"reminder_interval"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
	CachePath          string         `json:"cache_path"`
}

// parseJson overlays cfg with values from the JSON config file. Keys absent
// from the file keep their current value. Read or decode errors panic.
func parseJson(cfg *Config) {
	path := flagx.ConfigFile(ConfigEnv)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.CachePath != "" {
		cfg.CachePath = jc.CachePath
	}
	setDuration(&cfg.SyncInterval, jc.SyncInterval)
	setDuration(&cfg.ReminderInterval, jc.ReminderInterval)
	setDuration(&cfg.RequestTimeout, jc.RequestTimeout)
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
