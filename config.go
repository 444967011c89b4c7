package main

import (
	"errors"
	"fmt"
	"net"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "POOLHTTPD"

type Config struct {
	Server    Server    `mapstructure:"server"`
	Documents Documents `mapstructure:"documents"`
}

type Server struct {
	Listen         Listen            `mapstructure:"listen"`
	Workers        int               `mapstructure:"workers" validate:"min=1"`
	ReadTimeout    time.Duration     `mapstructure:"read_timeout" validate:"min=0s"`
	WriteTimeout   time.Duration     `mapstructure:"write_timeout" validate:"min=0s"`
	MaxHeaderBytes int               `mapstructure:"max_header_bytes" validate:"min=0"`
	Logging        Logging           `mapstructure:"logging"`
	Compression    CompressionConfig `mapstructure:"compression"`
	Metrics        MetricsConfig     `mapstructure:"metrics"`
}

type Listen struct {
	Address string `mapstructure:"address" validate:"required,ip|hostname"`
	Port    int    `mapstructure:"port" validate:"min=1,max=65535"`
}

type Logging struct {
	Level      string `mapstructure:"level" validate:"omitempty,oneof=none debug info error"`
	JSON       bool   `mapstructure:"json"`
	UseSystemd bool   `mapstructure:"use_systemd"`
}

type CompressionConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address" validate:"required_if=Enabled true"`
	Port    int    `mapstructure:"port" validate:"min=0,max=65535"`
}

type Documents struct {
	Index    string        `mapstructure:"index" validate:"required"`
	NotFound string        `mapstructure:"not_found" validate:"required"`
	Sleep    time.Duration `mapstructure:"sleep" validate:"min=0s"`
	CacheTTL time.Duration `mapstructure:"cache_ttl" validate:"min=0s"`
}

// String returns the host:port the listener binds to.
func (l Listen) String() string {
	return net.JoinHostPort(l.Address, strconv.Itoa(l.Port))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen.address", "127.0.0.1")
	v.SetDefault("server.listen.port", 7878)
	v.SetDefault("server.workers", 4)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.max_header_bytes", defaultMaxHeaderBytes)
	v.SetDefault("server.logging.level", "info")
	v.SetDefault("server.logging.json", false)
	v.SetDefault("server.logging.use_systemd", false)
	v.SetDefault("server.compression.enabled", false)
	v.SetDefault("server.metrics.enabled", false)
	v.SetDefault("server.metrics.address", "127.0.0.1")
	v.SetDefault("server.metrics.port", 9787)
	v.SetDefault("documents.index", "html/hello.html")
	v.SetDefault("documents.not_found", "html/404.html")
	v.SetDefault("documents.sleep", 5*time.Second)
	v.SetDefault("documents.cache_ttl", time.Duration(0))
}

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"address":   "server.listen.address",
	"port":      "server.listen.port",
	"workers":   "server.workers",
	"log-level": "server.logging.level",
	"index":     "documents.index",
	"not-found": "documents.not_found",
	"sleep":     "documents.sleep",
}

// HandleConfig validates the configuration and reports every failing field.
func (cfg *Config) HandleConfig() error {
	validate := validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		messages = append(messages, fmt.Sprintf(
			"field '%s' (struct field: '%s') failed on the '%s' validation rule",
			fe.Field(), fe.StructField(), fe.Tag(),
		))
	}

	return fmt.Errorf("invalid configuration: %s", strings.Join(messages, "; "))
}

// NewConfigFile builds the configuration from defaults, an optional YAML file, POOLHTTPD_* environment variables
// and the given command line flags, in increasing order of precedence.
func NewConfigFile(flags *pflag.FlagSet) (*Config, error) {
	// a missing .env file is fine
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configFile := ""

	if flags != nil {
		for name, key := range flagKeys {
			if flag := flags.Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, fmt.Errorf("could not bind flag %s: %w", name, err)
				}
			}
		}

		configFile, _ = flags.GetString("config")
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("poolhttpd")
		v.SetConfigType("yaml")

		v.AddConfigPath("/usr/local/etc/poolhttpd/")
		v.AddConfigPath("/etc/poolhttpd/")
		v.AddConfigPath("$HOME/.poolhttpd")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("could not read config: %w", err)
		}
	}

	cfg := &Config{}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("could not decode config: %w", err)
	}

	if err := cfg.HandleConfig(); err != nil {
		return nil, err
	}

	return cfg, nil
}
