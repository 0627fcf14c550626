package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// DatabaseConnection describes one named gorm connection.
type DatabaseConnection struct {
	Driver string `mapstructure:"driver"` // mysql, postgres or sqlite
	DSN    string `mapstructure:"dsn"`
}

type DatabaseConfig struct {
	Default     string                        `mapstructure:"default"`
	Connections map[string]DatabaseConnection `mapstructure:"connections"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CacheConfig struct {
	Path  string      `mapstructure:"path"` // directory of the file store
	Redis RedisConfig `mapstructure:"redis"`
}

type ConsulConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

type Config struct {
	HTTPPort    int            `mapstructure:"http_port"`
	GRPCPort    int            `mapstructure:"grpc_port"`
	LogLevel    string         `mapstructure:"log_level"`
	ServiceName string         `mapstructure:"service_name"` // used for consul registration
	JwtSecret   string         `mapstructure:"jwt_secret"`
	Database    DatabaseConfig `mapstructure:"database"`
	Cache       CacheConfig    `mapstructure:"cache"`
	Consul      ConsulConfig   `mapstructure:"consul"`
}

// Load reads cfgFile (or config.yaml in . and ./config when empty) into v and decodes it.
// A missing default config file is not an error; defaults and environment variables apply.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variable overrides
	v.SetEnvPrefix("ADMIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http_port", 8080)
	v.SetDefault("grpc_port", 50051)
	v.SetDefault("log_level", "info")
	v.SetDefault("service_name", "admin-rbac")
	v.SetDefault("jwt_secret", "default-very-insecure-secret-key") // CHANGE THIS IN PRODUCTION
	v.SetDefault("database.default", "mysql")
	v.SetDefault("cache.path", "storage/cache")
	v.SetDefault("consul.address", "127.0.0.1:8500")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || cfgFile != "" {
			return nil, fmt.Errorf("fatal error reading config file: %w", err)
		}
		fmt.Println("Config file not found, using defaults and environment variables.")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	return &cfg, nil
}
