package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	internal "github.com/ZanzyTHEbar/retail-tableview/tview"

	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

var (
	ErrInvalidPageSize  = errors.New("invalid page size")
	ErrInvalidLocale    = errors.New("invalid locale")
	ErrUnknownDBType    = errors.New("unknown database type")
	ErrInvalidTimeout   = errors.New("invalid api timeout")
	supportedDBTypes    = []string{"sqlite", "mysql", "libsql"}
	defaultSearchFolder = filepath.Join("etc", internal.DefaultAppName)
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	View     ViewConfig     `mapstructure:"view"`
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Log      LogConfig      `mapstructure:"log"`
}

// ViewConfig holds the defaults every list view starts from.
type ViewConfig struct {
	PageSize        int    `mapstructure:"pageSize"`
	PageSizeOptions []int  `mapstructure:"pageSizeOptions"`
	Locale          string `mapstructure:"locale"`
	Cache           bool   `mapstructure:"cache"`
}

// APIConfig points at the local item/transaction API.
type APIConfig struct {
	BaseURL        string `mapstructure:"baseURL"`
	Store          string `mapstructure:"store"`
	TimeoutSeconds int    `mapstructure:"timeoutSeconds"`
}

// DatabaseConfig stores database connection details.
type DatabaseConfig struct {
	DSN  string `mapstructure:"dsn"`
	Type string `mapstructure:"type"`
}

// ServerConfig stores the JSON API listen address.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// CatalogConfig overrides the embedded view catalog when Path is set.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("..")
		v.AddConfigPath(defaultSearchFolder)
		v.AddConfigPath(internal.DefaultConfigPath)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Set default values
	v.SetDefault("view.pageSize", internal.DefaultPageSize)
	v.SetDefault("view.pageSizeOptions", internal.DefaultPageSizeOptions)
	v.SetDefault("view.locale", internal.DefaultLocale)
	v.SetDefault("view.cache", true)
	v.SetDefault("api.baseURL", internal.DefaultAPIBaseURL)
	v.SetDefault("api.store", internal.DefaultStoreID)
	v.SetDefault("api.timeoutSeconds", internal.DefaultAPITimeoutSecs)
	v.SetDefault("database.dsn", internal.DefaultDatabaseDSN)
	v.SetDefault("database.type", internal.DefaultDatabaseType)
	v.SetDefault("server.addr", internal.DefaultServerAddr)
	v.SetDefault("catalog.path", "")
	v.SetDefault("log.level", internal.DefaultLogLevel)

	v.AutomaticEnv()                                   // Read in environment variables that match
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // view.pageSize becomes VIEW_PAGESIZE

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found; defaults will be used.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail deep inside a view.
func (c *Config) Validate() error {
	if c.View.PageSize < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, c.View.PageSize)
	}
	for _, n := range c.View.PageSizeOptions {
		if n < 1 {
			return fmt.Errorf("%w: option %d", ErrInvalidPageSize, n)
		}
	}
	if len(c.View.PageSizeOptions) > 0 && !slices.Contains(c.View.PageSizeOptions, c.View.PageSize) {
		return fmt.Errorf("%w: %d is not one of %v", ErrInvalidPageSize, c.View.PageSize, c.View.PageSizeOptions)
	}
	if _, err := c.LocaleTag(); err != nil {
		return err
	}
	if !slices.Contains(supportedDBTypes, c.Database.Type) {
		return fmt.Errorf("%w: %q", ErrUnknownDBType, c.Database.Type)
	}
	if c.API.TimeoutSeconds < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTimeout, c.API.TimeoutSeconds)
	}
	return nil
}

// LocaleTag parses View.Locale. An empty locale is und.
func (c *Config) LocaleTag() (language.Tag, error) {
	if c.View.Locale == "" {
		return language.Und, nil
	}
	tag, err := language.Parse(c.View.Locale)
	if err != nil {
		return language.Und, fmt.Errorf("%w: %q: %v", ErrInvalidLocale, c.View.Locale, err)
	}
	return tag, nil
}
