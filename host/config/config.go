// Package config loads the host bridge configuration.
package config

import (
	"fmt"
	"os"
	"time"

	log "github.com/inconshreveable/log15"
	"gopkg.in/yaml.v3"

	"audiopeak/host/serial"
)

// Config represents the bridge configuration.
type Config struct {
	Serial  SerialConfig  `yaml:"serial"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Monitor MonitorConfig `yaml:"monitor"`
	Log     LogConfig     `yaml:"log"`
}

// SerialConfig selects the detector's USB port.
type SerialConfig struct {
	Device      string        `yaml:"device"`
	Baud        int           `yaml:"baud"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

// MQTTConfig contains the broker events are published to. An empty Host
// disables publishing.
type MQTTConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"` // random when empty
	QoS      byte   `yaml:"qos"`
	Retained bool   `yaml:"retained"`
}

// MonitorConfig controls the commands the bridge sends to the detector.
type MonitorConfig struct {
	RecalibrateOnStart bool          `yaml:"recalibrate_on_start"`
	StatusInterval     time.Duration `yaml:"status_interval"` // 0 disables polling
	CommandTimeout     time.Duration `yaml:"command_timeout"`
}

// LogConfig sets the log15 level: debug, info, warn, error or crit.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Device:      "/dev/ttyACM0",
			Baud:        250000,
			ReadTimeout: 100 * time.Millisecond,
		},
		MQTT: MQTTConfig{
			Port:  1883,
			Topic: "audiopeak",
		},
		Monitor: MonitorConfig{
			StatusInterval: 30 * time.Second,
			CommandTimeout: 2 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults fills fields a partial file left at their zero value.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Device == "" {
		c.Serial.Device = def.Serial.Device
	}
	if c.Serial.Baud == 0 {
		c.Serial.Baud = def.Serial.Baud
	}
	if c.MQTT.Port == 0 {
		c.MQTT.Port = def.MQTT.Port
	}
	if c.MQTT.Topic == "" {
		c.MQTT.Topic = def.MQTT.Topic
	}
	if c.Monitor.CommandTimeout == 0 {
		c.Monitor.CommandTimeout = def.Monitor.CommandTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}

// Validate checks values that would only fail later at runtime.
func (c *Config) Validate() error {
	if _, err := log.LvlFromString(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	if c.MQTT.QoS > 2 {
		return fmt.Errorf("invalid mqtt qos %d", c.MQTT.QoS)
	}
	if c.Monitor.StatusInterval < 0 {
		return fmt.Errorf("invalid status interval %s", c.Monitor.StatusInterval)
	}
	return nil
}

// LogLevel returns the configured log15 level.
func (c *Config) LogLevel() log.Lvl {
	lvl, err := log.LvlFromString(c.Log.Level)
	if err != nil {
		return log.LvlInfo
	}
	return lvl
}

// SerialPort returns the port configuration for serial.Open.
func (c *Config) SerialPort() *serial.Config {
	return &serial.Config{
		Device:      c.Serial.Device,
		Baud:        c.Serial.Baud,
		ReadTimeout: c.Serial.ReadTimeout,
	}
}

// MQTTEnabled reports whether a broker is configured.
func (c *Config) MQTTEnabled() bool {
	return c.MQTT.Host != ""
}

// BrokerURL returns the broker address in the form paho expects.
func (c *Config) BrokerURL() string {
	return fmt.Sprintf("tcp://%s:%d", c.MQTT.Host, c.MQTT.Port)
}
