package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "send_marker.cfg.json"

// EnvPrefix prefixes environment overrides, e.g. MARKER_SENDER_ADDRESS.
const EnvPrefix = "MARKER"

// SenderConfig holds the endpoint and socket settings
type SenderConfig struct {
	Address      string
	Linger       time.Duration // negative waits until queued messages are sent
	DialTimeout  time.Duration
	WriteTimeout time.Duration
}

// MarkerConfig holds the fields of the marker that gets sent
type MarkerConfig struct {
	StrData string
	NumData int
	From    int
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool
	ServiceName  string
	BatchTimeout time.Duration
	Endpoint     string
	Insecure     bool
}

// setDefaults registers values that reproduce the stock marker sender.
func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "")

	viper.SetDefault("sender.address", "tcp://10.0.1.12:5555")
	viper.SetDefault("sender.linger", "-1s")
	viper.SetDefault("sender.dialTimeout", "10s")
	viper.SetDefault("sender.writeTimeout", "10s")

	viper.SetDefault("marker.strData", "")
	viper.SetDefault("marker.numData", 0)
	viper.SetDefault("marker.from", -1)

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "send-marker")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file. Defaults and
// environment overrides stay in effect when the file cannot be read.
func Load(configDir string) error {
	setDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// RegisterFlags adds the command line overrides to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config-dir", ".", "directory containing "+FileName)
	fs.String("address", "", "endpoint to send the marker to, e.g. tcp://127.0.0.1:5555")
	fs.Int("from", -1, "sender node ID written into the marker")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
}

// BindFlags maps flags that were set on the command line onto config keys.
func BindFlags(fs *pflag.FlagSet) error {
	bindings := map[string]string{
		"address":   "sender.address",
		"from":      "marker.from",
		"log-level": "logLevel",
	}
	for flag, key := range bindings {
		f := fs.Lookup(flag)
		if f == nil || !f.Changed {
			continue
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}
	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetSenderConfig returns the endpoint settings.
func GetSenderConfig() SenderConfig {
	return SenderConfig{
		Address:      viper.GetString("sender.address"),
		Linger:       viper.GetDuration("sender.linger"),
		DialTimeout:  viper.GetDuration("sender.dialTimeout"),
		WriteTimeout: viper.GetDuration("sender.writeTimeout"),
	}
}

// GetMarkerConfig returns the marker field values.
func GetMarkerConfig() MarkerConfig {
	return MarkerConfig{
		StrData: viper.GetString("marker.strData"),
		NumData: viper.GetInt("marker.numData"),
		From:    viper.GetInt("marker.from"),
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}
