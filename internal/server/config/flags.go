package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/passvault/internal/flagx"
	"github.com/dmitrijs2005/passvault/internal/timex"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-w string   HTTP gateway bind address (e.g., ":8080")
//	-t string   store type: postgres | mongo | bolt
//	-d string   PostgreSQL DSN
//	-m string   MongoDB URI
//	-n string   MongoDB database name
//	-f string   bolt database file
//	-k string   encryption key (64 hex chars)
//	-s string   JWT HMAC secret key
//	-v string   session validity (e.g., "90d", "12h")
//	-x string   hash algorithm: bcrypt | argon2id
//	-o int      bcrypt cost
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-rate-limit int, -rate-burst int, -rate-window string
//	-audit string, -audit-file string
//	-secure-cookies bool
//	-log-level string
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-w", "-t", "-d", "-m", "-n", "-f", "-k", "-s", "-v", "-x", "-o",
		"-u", "-p", "-b", "-g", "-e",
		"-rate-limit", "-rate-burst", "-rate-window", "-audit", "-audit-file", "-secure-cookies", "-log-level",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run gRPC server")
	fs.StringVar(&config.EndpointAddrHTTP, "w", config.EndpointAddrHTTP, "address and port to run HTTP gateway")
	fs.StringVar(&config.StoreType, "t", config.StoreType, "store type (postgres, mongo, bolt)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.MongoURI, "m", config.MongoURI, "mongo URI")
	fs.StringVar(&config.MongoDatabase, "n", config.MongoDatabase, "mongo database")
	fs.StringVar(&config.BoltPath, "f", config.BoltPath, "bolt database file")
	fs.StringVar(&config.EncryptionKey, "k", config.EncryptionKey, "encryption key (hex)")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.Func("v", "session validity duration (e.g. 90d)", durationFlag(&config.SessionValidityDuration))
	fs.StringVar(&config.HashAlgorithm, "x", config.HashAlgorithm, "hash algorithm (bcrypt, argon2id)")
	fs.IntVar(&config.BcryptCost, "o", config.BcryptCost, "bcrypt cost")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 audit bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.IntVar(&config.AuthRateLimit, "rate-limit", config.AuthRateLimit, "register/login requests per window")
	fs.IntVar(&config.AuthRateBurst, "rate-burst", config.AuthRateBurst, "register/login burst")
	fs.Func("rate-window", "register/login rate window (e.g. 15m)", durationFlag(&config.AuthRateWindow))
	fs.StringVar(&config.AuditType, "audit", config.AuditType, "audit sink (log, file, s3, none)")
	fs.StringVar(&config.AuditFilePath, "audit-file", config.AuditFilePath, "audit file path")
	fs.BoolVar(&config.SecureCookies, "secure-cookies", config.SecureCookies, "mark session cookie Secure")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}

func durationFlag(target *time.Duration) func(string) error {
	return func(s string) error {
		d, err := timex.ParseDuration(s)
		if err != nil {
			return err
		}
		*target = d
		return nil
	}
}
