package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds runtime settings for the passvault CLI.
//
// Fields:
//   - ServerAddress: host:port of the gRPC endpoint.
//   - TokenFile: where the session token is kept between invocations.
//   - Timeout: per-call deadline.
type Config struct {
	ServerAddress string
	TokenFile     string
	Timeout       time.Duration
}

// Viper keys.
const (
	KeyServerAddress = "server.address"
	KeyTimeout       = "server.timeout"
	KeyTokenFile     = "session.token_file"
)

// EnvPrefix prefixes environment overrides, e.g. PASSVAULT_SERVER_ADDRESS.
const EnvPrefix = "PASSVAULT"

// ConfigName is the config file base name searched in $HOME and ".".
const ConfigName = ".passvault"

// SetDefaults registers built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyServerAddress, "127.0.0.1:50051")
	v.SetDefault(KeyTimeout, 10*time.Second)
	v.SetDefault(KeyTokenFile, filepath.Join("~", ".passvault", "token"))
}

// Load reads configuration into v from defaults, an optional YAML file and
// PASSVAULT_* environment variables, in increasing precedence. Flags bound
// to v beforehand win over all of them. An explicit cfgFile must exist; a
// missing default file is fine.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(ConfigName)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	tokenFile, err := expandHome(v.GetString(KeyTokenFile))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerAddress: v.GetString(KeyServerAddress),
		TokenFile:     tokenFile,
		Timeout:       v.GetDuration(KeyTimeout),
	}
	if cfg.ServerAddress == "" {
		return nil, errors.New("server address is empty")
	}
	if cfg.Timeout <= 0 {
		return nil, errors.New("timeout must be positive")
	}
	return cfg, nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}
