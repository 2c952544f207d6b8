// Package config loads runtime configuration for the to-do CLI.
//
// Values are layered in this order, later sources overriding earlier ones:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. An optional JSON file named by -c/-config or GOPHTODO_CLIENT_CONFIG.
//  3. Command-line flags.
//
// Flags
//
//	-a string   address:port of the gRPC endpoint
//	-i int      background sync interval (seconds)
//	-n int      reminder check interval (seconds)
//	-o int      per request timeout (seconds)
//	-f string   path of the local SQLite cache
//
// # JSON schema
//
// Intervals accept "20s" style strings or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "sync_interval": "20s",
//	  "reminder_interval": "1m",
//	  "request_timeout": "10s",
//	  "cache_path": "todo_cache.db"
//	}
package config
