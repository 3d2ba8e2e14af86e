package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the alarm binaries.
type Config struct {
	// ServerAddress is the gRPC address of the alarm daemon.
	ServerAddress string `yaml:"server_addr"`
	// StateFile is where the wake registry keeps pending wakes.
	StateFile string `yaml:"state_file"`
	// Timeout is the duration for RPC calls.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is the minimum level of log messages.
	LogLevel string `yaml:"log_level"`
	// WakeLockDuration bounds how long a fired alarm may keep the machine awake.
	WakeLockDuration time.Duration `yaml:"wake_lock_duration"`
	// WakeCheckInterval is how often pending wakes are compared with the wall
	// clock, so a wake still fires on time after the machine was suspended.
	WakeCheckInterval time.Duration `yaml:"wake_check_interval"`
	// Notification configures the notification center.
	Notification Notification `yaml:"notification"`
	// Alert configures the full-screen alert surface.
	Alert Alert `yaml:"alert"`
	// Permissions holds the capabilities granted when the daemon starts.
	Permissions Permissions `yaml:"permissions"`
}

// Notification configures the notification channel and its optional desktop sink.
type Notification struct {
	// ChannelID is the identifier of the alarm notification channel.
	ChannelID string `yaml:"channel_id"`
	// ChannelName is the human readable channel name.
	ChannelName string `yaml:"channel_name"`
	// Command is an optional desktop notifier invoked for each posted notification.
	// The placeholders {title} and {message} are substituted in every argument.
	Command []string `yaml:"command,omitempty"`
}

// Alert configures how the alert surface is shown.
type Alert struct {
	// Command is an optional external viewer started for the alert surface.
	// The placeholder {message} is substituted in every argument.
	Command []string `yaml:"command,omitempty"`
	// BackgroundLaunch allows the daemon to open the surface directly.
	// When false only the notification's full-screen launch can open it.
	BackgroundLaunch *bool `yaml:"background_launch,omitempty"`
}

// Permissions lists the capabilities granted at startup.
type Permissions struct {
	// ExactAlarm allows scheduling exact wakes.
	ExactAlarm *bool `yaml:"exact_alarm,omitempty"`
	// PostNotifications allows posting notifications.
	PostNotifications *bool `yaml:"post_notifications,omitempty"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "alarm-clock-settings.yaml"

	// DefaultStateFilename is the default filename for the wake registry.
	DefaultStateFilename = "alarm-clock-state.json"

	// DefaultServerAddress is used when no address is configured.
	DefaultServerAddress = "127.0.0.1:50515"

	// DefaultTimeout is the default duration for RPC calls.
	DefaultTimeout = 5 * time.Second

	// DefaultWakeLockDuration is how long a fired alarm keeps the machine awake.
	DefaultWakeLockDuration = 60 * time.Second

	// DefaultWakeCheckInterval is how often pending wakes are checked against the wall clock.
	DefaultWakeCheckInterval = 15 * time.Second

	// DefaultChannelID is the notification channel used for alarms.
	DefaultChannelID = "alarm_channel"

	// DefaultChannelName is the visible name of the alarm channel.
	DefaultChannelName = "Alarm Notifications"

	// DefaultFilePermissions is the default file permission for written files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errNegativeDuration is returned for negative durations.
	errNegativeDuration = errors.New("duration must not be negative")
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := new(Config)

	//nolint:errcheck // Defaults always validate.
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates it.
// A missing file at the default path yields the defaults.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes cfg to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the settings and fills in defaults for empty fields.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.ServerAddress == "" {
		cfg.ServerAddress = DefaultServerAddress
	}

	if _, _, err := net.SplitHostPort(cfg.ServerAddress); err != nil {
		return fmt.Errorf("invalid server address: %w", err)
	}

	if cfg.Timeout < 0 || cfg.WakeLockDuration < 0 || cfg.WakeCheckInterval < 0 {
		return errNegativeDuration
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.WakeLockDuration == 0 {
		cfg.WakeLockDuration = DefaultWakeLockDuration
	}

	if cfg.WakeCheckInterval == 0 {
		cfg.WakeCheckInterval = DefaultWakeCheckInterval
	}

	if cfg.StateFile == "" {
		cfg.StateFile = DefaultStateFilename
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.Notification.ChannelID == "" {
		cfg.Notification.ChannelID = DefaultChannelID
	}

	if cfg.Notification.ChannelName == "" {
		cfg.Notification.ChannelName = DefaultChannelName
	}

	if cfg.Alert.BackgroundLaunch == nil {
		cfg.Alert.BackgroundLaunch = boolPtr(true)
	}

	if cfg.Permissions.ExactAlarm == nil {
		cfg.Permissions.ExactAlarm = boolPtr(true)
	}

	if cfg.Permissions.PostNotifications == nil {
		cfg.Permissions.PostNotifications = boolPtr(true)
	}

	return nil
}

func boolPtr(v bool) *bool {
	return &v
}
