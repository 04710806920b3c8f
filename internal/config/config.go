package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings holds runtime configuration loaded from the environment and an
// optional config file.
type Settings struct {
	Host            string
	Port            int
	LogLevel        string
	LogFormat       string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string

	AuthEnabled       bool
	AuthPublicKeyFile string
	AuthSecretKey     string
	AuthIssuer        string
	AuthAudience      string
	AuthRequiredRole  string
}

var defaultOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 9090)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("request_timeout", "60s")
	v.SetDefault("shutdown_timeout", "5s")
	v.SetDefault("cors_origins", "")
	v.SetDefault("auth_enabled", false)
	v.SetDefault("auth_public_key_file", "")
	v.SetDefault("auth_secret_key", "")
	v.SetDefault("auth_issuer", "")
	v.SetDefault("auth_audience", "")
	v.SetDefault("auth_required_role", "")
}

// Load reads settings. An empty path searches for vehicle-api.{yaml,json,toml}
// in the working directory and ./config; a missing file there is not an error.
func Load(path string) (Settings, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("vehicle-api")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Settings{}, err
		}
	}

	return Settings{
		Host:              strings.TrimSpace(v.GetString("host")),
		Port:              v.GetInt("port"),
		LogLevel:          strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
		LogFormat:         strings.ToLower(strings.TrimSpace(v.GetString("log_format"))),
		RequestTimeout:    durationOr(v.GetDuration("request_timeout"), 60*time.Second),
		ShutdownTimeout:   durationOr(v.GetDuration("shutdown_timeout"), 5*time.Second),
		AllowedOrigins:    allowedOrigins(v.GetString("cors_origins")),
		AuthEnabled:       v.GetBool("auth_enabled"),
		AuthPublicKeyFile: strings.TrimSpace(v.GetString("auth_public_key_file")),
		AuthSecretKey:     v.GetString("auth_secret_key"),
		AuthIssuer:        strings.TrimSpace(v.GetString("auth_issuer")),
		AuthAudience:      strings.TrimSpace(v.GetString("auth_audience")),
		AuthRequiredRole:  strings.TrimSpace(v.GetString("auth_required_role")),
	}, nil
}

func allowedOrigins(extra string) []string {
	origins := append([]string(nil), defaultOrigins...)
	for _, item := range strings.Split(extra, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		origins = append(origins, item)
	}
	return origins
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

// Validate reports settings that would prevent the server from starting.
func (s Settings) Validate() error {
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("invalid port %d", s.Port)
	}
	switch s.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format %q", s.LogFormat)
	}
	if s.AuthEnabled && s.AuthPublicKeyFile == "" && s.AuthSecretKey == "" {
		return errors.New("auth is enabled but neither AUTH_PUBLIC_KEY_FILE nor AUTH_SECRET_KEY is set")
	}
	return nil
}

// Address is the listen address in host:port form.
func (s Settings) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
