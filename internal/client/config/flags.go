package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/flagx"
)

var clientFlags = []string{"-a", "-i", "-n", "-o", "-f"}

// parseFlags overlays config with command-line flags. Unknown arguments are
// ignored; malformed values panic. Intervals are given in whole seconds and
// only the ones actually passed replace the current values.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], clientFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ServerEndpointAddr, "a", config.ServerEndpointAddr, "server address and port")
	syncInterval := fs.Int("i", int(config.SyncInterval.Seconds()), "sync interval (in seconds)")
	reminderInterval := fs.Int("n", int(config.ReminderInterval.Seconds()), "reminder check interval (in seconds)")
	requestTimeout := fs.Int("o", int(config.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&config.CachePath, "f", config.CachePath, "local cache file")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			config.SyncInterval = time.Duration(*syncInterval) * time.Second
		case "n":
			config.ReminderInterval = time.Duration(*reminderInterval) * time.Second
		case "o":
			config.RequestTimeout = time.Duration(*requestTimeout) * time.Second
		}
	})
}
