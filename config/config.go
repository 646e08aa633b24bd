package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "TAXENGINE"

	DefaultServerPort     = "8080"
	DefaultLogLevel       = "info"
	DefaultMaxFileSize    = 10 * 1024 * 1024 // 10 MB
	DefaultMaxPDFPages    = 20
	DefaultWorkers        = 4
	DefaultLookaheadChars = 120
	DefaultTaxYear        = 2024
)

type Config struct {
	ServerPort     string
	LogLevel       string
	MaxFileSize    int64
	MaxPDFPages    int
	Workers        int
	LookaheadChars int
	SignaturesFile string
	TaxYear        int
}

// DefaultConfig returns the built-in defaults. SERVER_PORT is honoured for
// deployments that only set the port.
func DefaultConfig() *Config {
	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = DefaultServerPort
	}

	return &Config{
		ServerPort:     serverPort,
		LogLevel:       DefaultLogLevel,
		MaxFileSize:    DefaultMaxFileSize,
		MaxPDFPages:    DefaultMaxPDFPages,
		Workers:        DefaultWorkers,
		LookaheadChars: DefaultLookaheadChars,
		TaxYear:        DefaultTaxYear,
	}
}

// flag name -> viper key
var flagKeys = map[string]string{
	"config":          "config",
	"port":            "server_port",
	"log-level":       "log_level",
	"max-file-size":   "max_file_size",
	"max-pdf-pages":   "max_pdf_pages",
	"workers":         "workers",
	"lookahead-chars": "lookahead_chars",
	"signatures-file": "signatures_file",
	"tax-year":        "tax_year",
}

// RegisterFlags defines the configuration flags on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := DefaultConfig()
	fs.String("config", "", "Optional YAML config file")
	fs.String("port", d.ServerPort, "HTTP server port")
	fs.String("log-level", d.LogLevel, "Log level (debug, info, warn, error)")
	fs.Int64("max-file-size", d.MaxFileSize, "Maximum upload size in bytes")
	fs.Int("max-pdf-pages", d.MaxPDFPages, "Maximum pages read from one PDF")
	fs.Int("workers", d.Workers, "Documents processed in parallel")
	fs.Int("lookahead-chars", d.LookaheadChars, "How far past a bare label to look for its amount")
	fs.String("signatures-file", "", "YAML file replacing the built-in classifier signatures")
	fs.Int("tax-year", d.TaxYear, "Tax year to calculate")
}

// FromFlags resolves the configuration from parsed flags, TAXENGINE_*
// environment variables, an optional config file and the defaults, in
// that order of precedence.
func FromFlags(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	d := DefaultConfig()
	v.SetDefault("server_port", d.ServerPort)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("max_file_size", d.MaxFileSize)
	v.SetDefault("max_pdf_pages", d.MaxPDFPages)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("lookahead_chars", d.LookaheadChars)
	v.SetDefault("signatures_file", "")
	v.SetDefault("tax_year", d.TaxYear)

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		ServerPort:     v.GetString("server_port"),
		LogLevel:       v.GetString("log_level"),
		MaxFileSize:    v.GetInt64("max_file_size"),
		MaxPDFPages:    v.GetInt("max_pdf_pages"),
		Workers:        v.GetInt("workers"),
		LookaheadChars: v.GetInt("lookahead_chars"),
		SignaturesFile: v.GetString("signatures_file"),
		TaxYear:        v.GetInt("tax_year"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Parse parses args against a fresh flag set and resolves the configuration.
func Parse(name string, args []string) (*Config, error) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return FromFlags(fs)
}

// LoadConfig resolves the configuration from the process arguments and
// environment.
func LoadConfig() (*Config, error) {
	return Parse(os.Args[0], os.Args[1:])
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.ServerPort)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("server port %q must be between 1 and 65535", c.ServerPort)
	}
	if c.MaxFileSize <= 0 {
		return errors.New("max file size must be positive")
	}
	if c.MaxPDFPages <= 0 {
		return errors.New("max pdf pages must be positive")
	}
	if c.Workers <= 0 {
		return errors.New("workers must be positive")
	}
	if c.LookaheadChars < 0 {
		return errors.New("lookahead chars must not be negative")
	}
	if c.TaxYear != DefaultTaxYear {
		return fmt.Errorf("tax year %d is not supported", c.TaxYear)
	}
	return nil
}
