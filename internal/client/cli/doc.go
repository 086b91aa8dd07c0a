// Package cli implements the passvault command-line client on cobra.
//
// Every invocation loads configuration through viper (see package config),
// dials the server, runs one command and exits. The session token survives
// between invocations in a private file; secrets and security answers are
// read without echo and are never written to disk.
//
// Commands: register, login, logout, me, add, list, delete, reveal, ping.
package cli
