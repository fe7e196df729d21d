// Package config loads runtime configuration for the credkeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string        address:port of the backend gRPC endpoint
//	-db string       path of the local SQLite session store
//	-t int           per-request timeout (seconds)
//	-device string   device token registered on login
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "session_db": "credkeeper.db",
//	  "request_timeout": "10s",
//	  "device_token": "laptop"
//	}
package config
