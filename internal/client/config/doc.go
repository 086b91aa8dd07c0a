// Package config loads runtime configuration for the passvault CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see SetDefaults).
//  2. Optional YAML file: --config, or .passvault.yaml in $HOME or ".".
//  3. Environment variables with the PASSVAULT_ prefix, dots replaced by
//     underscores (PASSVAULT_SERVER_ADDRESS, PASSVAULT_SESSION_TOKEN_FILE).
//  4. Command-line flags bound to the same viper instance.
//
// # YAML schema
//
//	server:
//	  address: 127.0.0.1:50051
//	  timeout: 10s
//	session:
//	  token_file: ~/.passvault/token
package config
