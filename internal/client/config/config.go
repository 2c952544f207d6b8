package config

import (
	"log"
	"time"
)

// ConfigEnv names the environment variable consulted for the JSON config
// path when neither -c nor -config is given.
const ConfigEnv = "GOPHTODO_CLIENT_CONFIG"

// Config holds runtime settings for the to-do CLI.
type Config struct {
	ServerEndpointAddr string
	// SyncInterval must stay below the server staleness window, otherwise
	// every periodic reconcile is treated as stale and local changes are
	// never applied.
	SyncInterval     time.Duration
	ReminderInterval time.Duration
	RequestTimeout   time.Duration
	CachePath        string
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.SyncInterval = 20 * time.Second
	c.ReminderInterval = time.Minute
	c.RequestTimeout = 10 * time.Second
	c.CachePath = "todo_cache.db"
}

// LoadConfig applies defaults, then the JSON file (if any), then flags.
// Later sources win.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	cfg.fixIntervals()
	return cfg
}

// fixIntervals puts back the default for every interval that is not
// positive. Tickers cannot run on them. A zero RequestTimeout is kept and
// means no timeout.
func (c *Config) fixIntervals() {
	var d Config
	d.LoadDefaults()

	fix := func(name string, v *time.Duration, def time.Duration) {
		if *v <= 0 {
			log.Printf("%s %v is not positive, using %v", name, *v, def)
			*v = def
		}
	}
	fix("sync interval", &c.SyncInterval, d.SyncInterval)
	fix("reminder interval", &c.ReminderInterval, d.ReminderInterval)
	if c.RequestTimeout < 0 {
		c.RequestTimeout = d.RequestTimeout
	}
}
