package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "EBRAINS_UTIL"

	DefaultIAMURL       = "https://iam.ebrains.eu/auth/realms/hbp"
	DefaultDataProxyURL = "https://data-proxy.ebrains.eu/api"
	DefaultCollabURL    = "https://wiki.ebrains.eu/rest/v1"

	configName = "config"
	configType = "yaml"
	tokenFile  = "auth_token"
	dbFile     = "ebrains.db"
)

type Config struct {
	AuthToken    EncryptedString `mapstructure:"auth_token"`
	ClientID     string          `mapstructure:"client_id"`
	ClientSecret EncryptedString `mapstructure:"client_secret"`
	RefreshToken EncryptedString `mapstructure:"refresh_token"`
	TokenScope   string          `mapstructure:"token_scope"`
	IAMURL       string          `mapstructure:"iam_url"`
	DataProxyURL string          `mapstructure:"data_proxy_url"`
	CollabURL    string          `mapstructure:"collab_url"`
	Verbose      bool            `mapstructure:"verbose"`

	// UserPath is where the token, config file and database live.
	UserPath string `mapstructure:"-"`
}

// Keys lists every setting readable from the config file or environment.
var Keys = []string{
	"auth_token",
	"client_id",
	"client_secret",
	"refresh_token",
	"token_scope",
	"iam_url",
	"data_proxy_url",
	"collab_url",
	"verbose",
}

var secretKeys = []string{"auth_token", "client_secret", "refresh_token"}

var ErrUnknownKey = errors.New("unknown configuration key")

func (c *Config) TokenPath() string {
	return filepath.Join(c.UserPath, tokenFile)
}

func (c *Config) DBPath() string {
	return filepath.Join(c.UserPath, dbFile)
}

// Scopes splits the space separated token_scope setting.
func (c *Config) Scopes() []string {
	return strings.Fields(c.TokenScope)
}

// UserPath resolves EBRAINS_UTIL_USER_PATH, falling back to ~/.ebrains_util.
func UserPath() (string, error) {
	if p := os.Getenv(EnvPrefix + "_USER_PATH"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ebrains_util"), nil
}

// NormalizeKey accepts both flag style (client-id) and file style (client_id) keys.
func NormalizeKey(key string) (string, error) {
	k := strings.ReplaceAll(strings.ToLower(key), "-", "_")
	if !slices.Contains(Keys, k) {
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return k, nil
}

func IsSecret(key string) bool {
	return slices.Contains(secretKeys, key)
}

func newViper(userPath string, withEnv bool) *viper.Viper {
	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(userPath)

	if withEnv {
		v.SetEnvPrefix(EnvPrefix)
		v.AutomaticEnv()
		for _, k := range Keys {
			_ = v.BindEnv(k)
		}
		v.SetDefault("iam_url", DefaultIAMURL)
		v.SetDefault("data_proxy_url", DefaultDataProxyURL)
		v.SetDefault("collab_url", DefaultCollabURL)
	}
	return v
}

func readInConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}
	return nil
}

// Load reads the config file under the user path and overlays EBRAINS_UTIL_* env vars.
func Load() (*Config, error) {
	userPath, err := UserPath()
	if err != nil {
		return nil, err
	}
	v := newViper(userPath, true)
	if err := readInConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.TextUnmarshallerHookFunc())); err != nil {
		return nil, err
	}
	cfg.UserPath = userPath
	return &cfg, nil
}

// Set persists a single key to the config file. Env vars are not consulted so
// they never leak into the file. Secret values are stored encrypted.
func Set(key, value string) error {
	k, err := NormalizeKey(key)
	if err != nil {
		return err
	}
	userPath, err := UserPath()
	if err != nil {
		return err
	}
	v := newViper(userPath, false)
	if err := readInConfig(v); err != nil {
		return err
	}

	stored := value
	if IsSecret(k) && value != "" {
		encrypted, err := EncryptedString(value).MarshalText()
		if err != nil {
			return err
		}
		stored = string(encrypted)
	}
	v.Set(k, stored)

	if err := os.MkdirAll(userPath, 0o700); err != nil {
		return fmt.Errorf("failed to create %s: %w", userPath, err)
	}
	return v.WriteConfigAs(filepath.Join(userPath, configName+"."+configType))
}

// Get returns the effective value of key from the loaded configuration.
func (c *Config) Get(key string) (string, error) {
	k, err := NormalizeKey(key)
	if err != nil {
		return "", err
	}
	switch k {
	case "auth_token":
		return string(c.AuthToken), nil
	case "client_id":
		return c.ClientID, nil
	case "client_secret":
		return string(c.ClientSecret), nil
	case "refresh_token":
		return string(c.RefreshToken), nil
	case "token_scope":
		return c.TokenScope, nil
	case "iam_url":
		return c.IAMURL, nil
	case "data_proxy_url":
		return c.DataProxyURL, nil
	case "collab_url":
		return c.CollabURL, nil
	default:
		return fmt.Sprintf("%v", c.Verbose), nil
	}
}
