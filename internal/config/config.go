package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/ini.v1"
)

// Config holds the server configuration
type Config struct {
	// Listen is the address the web server binds to
	Listen string

	// AuthSecret enables token auth on the socket when set
	AuthSecret string

	// TokenTTL is the lifetime of tokens minted by "dargo token"
	TokenTTL time.Duration

	// DeviceName is the name the virtual trackpad registers with
	DeviceName string

	// Extended reports contact size, orientation and pressure
	Extended bool

	// Debug enables development logging
	Debug bool
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Listen:     "127.0.0.1:8080",
		TokenTTL:   24 * time.Hour,
		DeviceName: "Dargo virtual trackpad",
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	if err := cfg.apply(file); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) apply(file *ini.File) error {
	server := file.Section("server")
	c.Listen = server.Key("listen").MustString(c.Listen)
	c.AuthSecret = server.Key("auth_secret").MustString(c.AuthSecret)
	c.Debug = server.Key("debug").MustBool(c.Debug)

	if server.HasKey("token_ttl") {
		ttl, err := server.Key("token_ttl").Duration()
		if err != nil {
			return fmt.Errorf("server.token_ttl: %w", err)
		}
		c.TokenTTL = ttl
	}

	device := file.Section("device")
	c.DeviceName = device.Key("name").MustString(c.DeviceName)
	c.Extended = device.Key("extended").MustBool(c.Extended)

	return c.Validate()
}

func (c *Config) Validate() error {
	if c.Listen == "" {
		return errors.New("listen address is empty")
	}
	if c.DeviceName == "" {
		return errors.New("device name is empty")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive, got %s", c.TokenTTL)
	}
	return nil
}

// Save writes c to path in the same layout Load reads.
func (c *Config) Save(path string) error {
	file := ini.Empty()

	server := file.Section("server")
	server.Key("listen").SetValue(c.Listen)
	server.Key("auth_secret").SetValue(c.AuthSecret)
	server.Key("token_ttl").SetValue(c.TokenTTL.String())
	server.Key("debug").SetValue(fmt.Sprint(c.Debug))

	device := file.Section("device")
	device.Key("name").SetValue(c.DeviceName)
	device.Key("extended").SetValue(fmt.Sprint(c.Extended))

	return file.SaveTo(path)
}
