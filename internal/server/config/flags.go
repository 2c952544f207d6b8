package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/flagx"
)

var serverFlags = []string{"-l", "-a", "-d", "-s", "-t", "-r", "-w", "-x", "-R", "-k", "-q", "-u", "-p", "-b", "-g", "-e"}

// parseFlags overlays command-line flags on config.
//
//	-l string   HTTP bind address
//	-a string   gRPC bind address
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-w int      sync staleness window, seconds
//	-x bool     register unknown emails on first login (use -x=false)
//	-R string   Redis address for the list cache
//	-k string   comma separated Kafka brokers
//	-q string   Kafka topic
//	-u, -p      S3 access key and secret
//	-b, -g, -e  S3 bucket, region and base endpoint
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], serverFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "l", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	refreshTokenValidity := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh token validity (in minutes)")
	stalenessWindow := fs.Int("w", int(config.StalenessWindow.Seconds()), "sync staleness window (in seconds)")

	fs.BoolVar(&config.AutoRegister, "x", config.AutoRegister, "register unknown users on first login")
	fs.StringVar(&config.RedisAddr, "R", config.RedisAddr, "Redis address")
	brokers := fs.String("k", strings.Join(config.KafkaBrokers, ","), "Kafka brokers")
	fs.StringVar(&config.KafkaTopic, "q", config.KafkaTopic, "Kafka topic")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 access key")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// only flags actually given replace values; rounding a JSON "1500ms"
	// through whole units would change it
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidity) * time.Minute
		case "r":
			config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidity) * time.Minute
		case "w":
			config.StalenessWindow = time.Duration(*stalenessWindow) * time.Second
		case "k":
			config.KafkaBrokers = splitList(*brokers)
		}
	})
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
