// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes environment variables overriding single config keys,
	// e.g. GOCINEMA_DB_PASSWORD.
	EnvPrefix = "GOCINEMA"

	// EnvConfigJSON holds a JSON document merged over the file config.
	EnvConfigJSON = "GOCINEMA_CONFIG_JSON"

	// SessionStorageMemory keeps sessions in process memory.
	SessionStorageMemory = "memory"
	// SessionStorageRedis keeps sessions in redis.
	SessionStorageRedis = "redis"

	defaultShutDownTime      = 5
	defaultSessionExpiry     = 24 * time.Hour
	defaultTokenTTL          = time.Hour
	defaultMinPasswordLength = 8
	defaultCookieName        = "session"
	defaultSessionTable      = "sessions"
)

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var (
		c             Config
		JSONConfigEnv string
		err           error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	// a .env file next to the binary may provide overrides for local runs
	if err = godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, errors.Wrap(err, "failed to read .env file")
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(path, "main.toml"))
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err = v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	if err = v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode main config file")
	}

	// override it from env
	JSONConfigEnv = os.Getenv(EnvConfigJSON)

	if JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	return c, validate(&c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read json config from env")
	}

	return c, nil
}

// DumpConfig config as TOML String.
func DumpConfig(c *Config) (string, error) {
	var buffer bytes.Buffer
	t := toml.NewEncoder(&buffer)

	if err := t.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer
	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate checks the settings the daemon can not start without
// and fills in defaults for optional ones.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	switch c.DB.GormEngine {
	case "":
		c.DB.GormEngine = EngineSQLite
	case EngineMySQL, EnginePostgres, EngineSQLite:
	default:
		return errors.Wrap(ErrUnknownGormEngine, invalidErrMessage)
	}

	switch c.Webserver.Session.Storage {
	case "":
		c.Webserver.Session.Storage = SessionStorageMemory
	case SessionStorageMemory, EngineMySQL, EnginePostgres:
	case SessionStorageRedis:
		if c.Redis.Addr == "" {
			return errors.Wrap(ErrRedisAddrEmpty, invalidErrMessage)
		}
	default:
		return errors.Wrap(ErrUnknownSessionStorage, invalidErrMessage)
	}

	if c.Auth.Token.Enabled && c.Auth.Token.Secret == "" {
		return errors.Wrap(ErrTokenSecretEmpty, invalidErrMessage)
	}

	if c.Auth.Local.AdminUser != "" && (c.Auth.Local.AdminPassword == "" || c.Auth.Local.AdminEmail == "") {
		return errors.Wrap(ErrAdminCredentialsEmpty, invalidErrMessage)
	}

	if c.Auth.OIDC.Enabled && (c.Auth.OIDC.ProviderURL == "" || c.Auth.OIDC.ClientID == "") {
		return errors.Wrap(ErrOIDCIncomplete, invalidErrMessage)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = defaultShutDownTime
	}

	if c.Webserver.Session.ExpiryTime == 0 {
		c.Webserver.Session.ExpiryTime = defaultSessionExpiry
	}

	if c.Webserver.Session.CookieName == "" {
		c.Webserver.Session.CookieName = defaultCookieName
	}

	if c.Webserver.Session.Table == "" {
		c.Webserver.Session.Table = defaultSessionTable
	}

	if c.Auth.Token.TTL == 0 {
		c.Auth.Token.TTL = defaultTokenTTL
	}

	if c.Auth.Local.MinPasswordLength == 0 {
		c.Auth.Local.MinPasswordLength = defaultMinPasswordLength
	}

	return nil
}
