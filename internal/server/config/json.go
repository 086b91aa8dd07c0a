package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/passvault/internal/flagx"
	"github.com/dmitrijs2005/passvault/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// Durations use timex.Duration so both "15m"/"90d" strings and integer
// nanoseconds are accepted. Pointer fields distinguish "absent" from "false/0".
type JsonConfig struct {
	EndpointAddrGRPC        string         `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP        string         `json:"endpoint_addr_http"`
	StoreType               string         `json:"store_type"`
	DatabaseDSN             string         `json:"database_dsn"`
	MongoURI                string         `json:"mongo_uri"`
	MongoDatabase           string         `json:"mongo_database"`
	BoltPath                string         `json:"bolt_path"`
	EncryptionKey           string         `json:"encryption_key"`
	SecretKey               string         `json:"secret_key"`
	SessionValidityDuration timex.Duration `json:"session_validity_duration"`
	HashAlgorithm           string         `json:"hash_algorithm"`
	BcryptCost              int            `json:"bcrypt_cost"`
	AuthRateLimit           int            `json:"auth_rate_limit"`
	AuthRateBurst           int            `json:"auth_rate_burst"`
	AuthRateWindow          timex.Duration `json:"auth_rate_window"`
	AuditType               string         `json:"audit_type"`
	AuditFilePath           string         `json:"audit_file_path"`
	S3RootUser              string         `json:"s3_root_user"`
	S3RootPassword          string         `json:"s3_root_password"`
	S3Bucket                string         `json:"s3_bucket"`
	S3Region                string         `json:"s3_region"`
	S3BaseEndpoint          string         `json:"s3_base_endpoint"`
	SecureCookies           *bool          `json:"secure_cookies"`
	LogLevel                string         `json:"log_level"`
}

// parseJson loads configuration values from the JSON file named by -c or
// -config into config. Only keys present in the file replace the current
// values. An unreadable or invalid file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	c.applyTo(config)
}

func (c *JsonConfig) applyTo(config *Config) {
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.StoreType, c.StoreType)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.MongoURI, c.MongoURI)
	setString(&config.MongoDatabase, c.MongoDatabase)
	setString(&config.BoltPath, c.BoltPath)
	setString(&config.EncryptionKey, c.EncryptionKey)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.HashAlgorithm, c.HashAlgorithm)
	setString(&config.AuditType, c.AuditType)
	setString(&config.AuditFilePath, c.AuditFilePath)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.LogLevel, c.LogLevel)

	if c.SessionValidityDuration.Duration > 0 {
		config.SessionValidityDuration = c.SessionValidityDuration.Duration
	}
	if c.AuthRateWindow.Duration > 0 {
		config.AuthRateWindow = c.AuthRateWindow.Duration
	}
	if c.BcryptCost > 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.AuthRateLimit > 0 {
		config.AuthRateLimit = c.AuthRateLimit
	}
	if c.AuthRateBurst > 0 {
		config.AuthRateBurst = c.AuthRateBurst
	}
	if c.SecureCookies != nil {
		config.SecureCookies = *c.SecureCookies
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
