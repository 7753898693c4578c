// Package config handles configuration management using Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the compositor's configuration.
type Config struct {
	Socket SocketConfig `mapstructure:"socket"`
	Seat   SeatConfig   `mapstructure:"seat"`
	Output OutputConfig `mapstructure:"output"`
	Layout LayoutConfig `mapstructure:"layout"`
}

// SocketConfig controls the Wayland display socket.
type SocketConfig struct {
	// Name is the socket file created under $XDG_RUNTIME_DIR, e.g. "wayland-1".
	Name string `mapstructure:"name"`
}

// SeatConfig controls default input behavior.
type SeatConfig struct {
	Name              string `mapstructure:"name"`
	XKBLayout         string `mapstructure:"xkb_layout"`
	XKBVariant        string `mapstructure:"xkb_variant"`
	XKBOptions        string `mapstructure:"xkb_options"`
	RepeatDelayMillis int    `mapstructure:"repeat_delay_ms"`
	RepeatRateMillis  int    `mapstructure:"repeat_rate_ms"`
}

// OutputConfig controls output power policy.
type OutputConfig struct {
	IdleStandbySeconds int `mapstructure:"idle_standby_seconds"`
}

// LayoutConfig controls window-mechanics snapping behavior.
type LayoutConfig struct {
	GapPixels      int `mapstructure:"gap_pixels"`
	SnapThreshold  int `mapstructure:"snap_threshold_px"`
}

var (
	// Default provides sensible defaults for every field.
	Default = Config{
		Socket: SocketConfig{Name: "wayland-1"},
		Seat: SeatConfig{
			Name:              "seat0",
			XKBLayout:         "us",
			XKBVariant:        "",
			XKBOptions:        "",
			RepeatDelayMillis: 200,
			RepeatRateMillis:  25,
		},
		Output: OutputConfig{IdleStandbySeconds: 300},
		Layout: LayoutConfig{GapPixels: 8, SnapThreshold: 16},
	}

	cfg *Config
)

// Init loads configuration from disk, falling back to Default for any
// unset value.
func Init() error {
	viper.SetConfigName("wlcore")
	viper.SetConfigType("toml")

	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		viper.AddConfigPath(filepath.Join(home, "wlcore"))
	} else if home := os.Getenv("HOME"); home != "" {
		viper.AddConfigPath(filepath.Join(home, ".config", "wlcore"))
	}
	viper.AddConfigPath("/etc/wlcore")
	viper.AddConfigPath(".")

	viper.SetDefault("socket", Default.Socket)
	viper.SetDefault("seat", Default.Seat)
	viper.SetDefault("output", Default.Output)
	viper.SetDefault("layout", Default.Layout)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config file: %w", err)
		}
	}

	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

// Get returns the active configuration, defaults if Init was never called.
func Get() *Config {
	if cfg == nil {
		d := Default
		return &d
	}
	return cfg
}

// ConfigPath returns the path a future Save would write to.
func ConfigPath() string {
	if viper.ConfigFileUsed() != "" {
		return viper.ConfigFileUsed()
	}
	if os.Getuid() == 0 {
		return "/etc/wlcore/wlcore.toml"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "/etc/wlcore/wlcore.toml"
	}
	return filepath.Join(home, ".config", "wlcore", "wlcore.toml")
}
