package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	envPrefix            = "PRESENCE"
	envConfigDefaultPath = "PRESENCE_CONFIG_DEFAULT_PATH"
	envPort              = "PORT"
	defaultConfigName    = "config.yaml"
)

// Load builds configuration from defaults, optional config file, env vars, and returns the resolved path.
// Precedence: defaults < config file < env vars < caller overrides.
func Load(logger *zerolog.Logger, explicitPath string) (Config, string, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, cfg)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath := resolveConfigPath(explicitPath)
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			if writeErr := writeDefaultConfig(configPath, cfg); writeErr != nil && logger != nil {
				logger.Warn().Err(writeErr).Str("path", configPath).Msg("failed to write default config")
			} else if logger != nil {
				logger.Info().Str("path", configPath).Msg("created default config")
			}
			// try reading again in case it was just written
			if readErr := v.ReadInConfig(); readErr != nil && logger != nil {
				logger.Warn().Err(readErr).Str("path", configPath).Msg("failed to read config after writing default")
			}
		} else {
			return cfg, configPath, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, configPath, fmt.Errorf("unmarshal config: %w", err)
	}

	if port := os.Getenv(envPort); port != "" {
		cfg.Addr = ":" + port
	}

	return cfg, configPath, nil
}

// setDefaults registers every key so that env overrides work without a config file.
func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("addr", cfg.Addr)
	v.SetDefault("read_header_timeout", cfg.ReadHeaderTimeout)
	v.SetDefault("shutdown_timeout", cfg.ShutdownTimeout)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_format", cfg.LogFormat)

	v.SetDefault("relay.max_payload_bytes", cfg.Relay.MaxPayloadBytes)
	v.SetDefault("relay.max_name_len", cfg.Relay.MaxNameLen)
	v.SetDefault("relay.max_room_len", cfg.Relay.MaxRoomLen)
	v.SetDefault("relay.max_avatar_len", cfg.Relay.MaxAvatarLen)
	v.SetDefault("relay.max_chat_len", cfg.Relay.MaxChatLen)
	v.SetDefault("relay.max_color_len", cfg.Relay.MaxColorLen)
	v.SetDefault("relay.chat_interval", cfg.Relay.ChatInterval)
	v.SetDefault("relay.position_interval", cfg.Relay.PositionInterval)
	v.SetDefault("relay.heartbeat_interval", cfg.Relay.HeartbeatInterval)
	v.SetDefault("relay.stale_threshold", cfg.Relay.StaleThreshold)
	v.SetDefault("relay.sweep_interval", cfg.Relay.SweepInterval)

	v.SetDefault("transport.read_limit", cfg.Transport.ReadLimit)
	v.SetDefault("transport.send_queue", cfg.Transport.SendQueue)
	v.SetDefault("transport.write_timeout", cfg.Transport.WriteTimeout)
	v.SetDefault("transport.ping_timeout", cfg.Transport.PingTimeout)
}

func resolveConfigPath(explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}

	if base := os.Getenv(envConfigDefaultPath); base != "" {
		if err := os.MkdirAll(base, 0o755); err == nil {
			return filepath.Join(base, defaultConfigName)
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return defaultConfigName
	}
	return filepath.Join(cwd, defaultConfigName)
}

func writeDefaultConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
