// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"time"

	"github.com/spf13/viper"
)

// Lock strategies understood by the server.
const (
	LockStrategyRegistry = "registry"
	LockStrategyStriped  = "striped"
)

// Config stores all configuration of the application.
//
// The values are read by viper fron a config file or environement variables.
type Config struct {
	DBDriver          string        `mapstructure:"DB_DRIVER"`
	DBSource          string        `mapstructure:"DB_SOURCE"`
	ServerAddress     string        `mapstructure:"SERVER_ADDRESS"`
	Environement      string        `mapstructure:"GO_ENV"`
	InitialBalance    string        `mapstructure:"INITIAL_BALANCE"`
	LockStrategy      string        `mapstructure:"LOCK_STRATEGY"`
	LockStripes       int           `mapstructure:"LOCK_STRIPES"`
	LockSweepInterval time.Duration `mapstructure:"LOCK_SWEEP_INTERVAL"`
	ShutdownTimeout   time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

// Load read configuration from file or environment variables.
func Load(path string) (Config, error) {
	var c Config

	v := viper.New()

	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	v.SetDefault("DB_DRIVER", "memory")
	v.SetDefault("SERVER_ADDRESS", "0.0.0.0:8080")
	v.SetDefault("INITIAL_BALANCE", "0")
	v.SetDefault("LOCK_STRATEGY", LockStrategyRegistry)
	v.SetDefault("LOCK_STRIPES", 256)
	v.SetDefault("LOCK_SWEEP_INTERVAL", time.Minute)
	v.SetDefault("SHUTDOWN_TIMEOUT", 10*time.Second)

	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		return c, err
	}

	err = v.Unmarshal(&c)
	if err != nil {
		return c, err
	}

	return c, nil
}
