// Package config loads runtime configuration for the repoboard client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJSON) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string     address:port of the backend gRPC endpoint
//	-w duration   debounce window for drag, resize and slider writes
//	-s float      wheel pan speed multiplier
//	-k float      keyboard pan step in screen pixels
//	-z float      keyboard zoom step
//	-f string     path of the local SQLite store ("" keeps tokens in memory)
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "400ms" or
// integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "debounce_window": "400ms",
//	  "pan_speed": 1,
//	  "key_pan_step": 50,
//	  "zoom_step": 0.1,
//	  "local_store_path": "repoboard.db"
//	}
package config
