// Package config loads the daemon configuration from configs/config.yml and VALVED_*
// environment variables through viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"irrigation_valve/internal/logger"

	"github.com/spf13/viper"
)

const (
	EnvPrefix = "VALVED"

	minResetDebounce = 200 * time.Millisecond
)

type Config struct {
	Port     string
	DBPath   string
	LogLevel string

	Control Control
	Clock   Clock
	GPIO    GPIO
	MQTT    MQTT
	WiFi    WiFi
	Metrics Metrics
}

type Control struct {
	Tick           time.Duration
	StartupGrace   time.Duration
	LockTimeout    time.Duration
	PersistTimeout time.Duration
}

type Clock struct {
	Timezone     string
	AssumeSynced bool
	Location     *time.Location
}

type GPIO struct {
	Enabled        bool
	Chip           string
	RelayPin       int
	RelayActiveLow bool
	// ResetPin < 0 disables the reset button.
	ResetPin      int
	ResetDebounce time.Duration
}

type MQTT struct {
	// Broker "" disables publishing.
	Broker   string
	Topic    string
	ClientID string
}

type WiFi struct {
	Interface string
}

type Metrics struct {
	Enabled bool
}

// SetDefaults registers every key so env overrides work without a config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db.path", "valve.db")
	v.SetDefault("log.level", "info")

	v.SetDefault("control.tick", time.Second)
	v.SetDefault("control.startup_grace", 30*time.Second)
	v.SetDefault("control.lock_timeout", 2*time.Second)
	v.SetDefault("control.persist_timeout", 3*time.Second)

	v.SetDefault("clock.timezone", "Local")
	v.SetDefault("clock.assume_synced", false)

	v.SetDefault("gpio.enabled", false)
	v.SetDefault("gpio.chip", "gpiochip0")
	v.SetDefault("gpio.relay_pin", 17)
	v.SetDefault("gpio.relay_active_low", false)
	v.SetDefault("gpio.reset_pin", 27)
	v.SetDefault("gpio.reset_debounce", minResetDebounce)

	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.topic", "irrigation/valve")
	v.SetDefault("mqtt.client_id", "valved")

	v.SetDefault("wifi.interface", "wlan0")

	v.SetDefault("metrics.enabled", true)
}

// Read prepares v: defaults, env overrides and the config file. file "" searches
// ./configs, /etc/valved and the working directory; a missing file is not an error then.
func Read(v *viper.Viper, file string) error {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", file, err)
		}
		return nil
	}

	v.AddConfigPath("configs")
	v.AddConfigPath("/etc/valved")
	v.AddConfigPath(".")
	v.SetConfigName("config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load builds a validated Config from v.
func Load(v *viper.Viper) (Config, error) {
	c := Config{
		Port:     v.GetString("port"),
		DBPath:   v.GetString("db.path"),
		LogLevel: v.GetString("log.level"),
		Control: Control{
			Tick:           v.GetDuration("control.tick"),
			StartupGrace:   v.GetDuration("control.startup_grace"),
			LockTimeout:    v.GetDuration("control.lock_timeout"),
			PersistTimeout: v.GetDuration("control.persist_timeout"),
		},
		Clock: Clock{
			Timezone:     v.GetString("clock.timezone"),
			AssumeSynced: v.GetBool("clock.assume_synced"),
		},
		GPIO: GPIO{
			Enabled:        v.GetBool("gpio.enabled"),
			Chip:           v.GetString("gpio.chip"),
			RelayPin:       v.GetInt("gpio.relay_pin"),
			RelayActiveLow: v.GetBool("gpio.relay_active_low"),
			ResetPin:       v.GetInt("gpio.reset_pin"),
			ResetDebounce:  v.GetDuration("gpio.reset_debounce"),
		},
		MQTT: MQTT{
			Broker:   v.GetString("mqtt.broker"),
			Topic:    strings.TrimSuffix(v.GetString("mqtt.topic"), "/"),
			ClientID: v.GetString("mqtt.client_id"),
		},
		WiFi:    WiFi{Interface: v.GetString("wifi.interface")},
		Metrics: Metrics{Enabled: v.GetBool("metrics.enabled")},
	}

	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port must be set"))
	}
	if !logger.ValidLevel(c.LogLevel) {
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.LogLevel))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("db.path must be set"))
	}
	if c.Control.Tick <= 0 {
		errs = append(errs, fmt.Errorf("control.tick must be positive, got %s", c.Control.Tick))
	}
	if c.Control.StartupGrace < 0 {
		errs = append(errs, fmt.Errorf("control.startup_grace must not be negative, got %s", c.Control.StartupGrace))
	}
	if c.Control.LockTimeout <= 0 || c.Control.PersistTimeout <= 0 {
		errs = append(errs, errors.New("control.lock_timeout and control.persist_timeout must be positive"))
	}
	if c.GPIO.ResetDebounce < minResetDebounce {
		errs = append(errs, fmt.Errorf("gpio.reset_debounce must be at least %s, got %s", minResetDebounce, c.GPIO.ResetDebounce))
	}
	if c.GPIO.Enabled && c.GPIO.RelayPin < 0 {
		errs = append(errs, fmt.Errorf("gpio.relay_pin must not be negative, got %d", c.GPIO.RelayPin))
	}
	if c.MQTT.Broker != "" && c.MQTT.Topic == "" {
		errs = append(errs, errors.New("mqtt.topic must be set when mqtt.broker is"))
	}

	loc, err := time.LoadLocation(c.Clock.Timezone)
	if err != nil {
		errs = append(errs, fmt.Errorf("clock.timezone: %w", err))
	}
	c.Clock.Location = loc

	return errors.Join(errs...)
}
