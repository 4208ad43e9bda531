// Package config loads textchecker settings through viper from flags,
// TEXTCHECKER_* environment variables, a .env file and an optional
// .textchecker.yaml file, and resolves the rule configuration the lint
// worker consumes.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment override, e.g. TEXTCHECKER_ADDR.
	EnvPrefix = "TEXTCHECKER"
	// DefaultConfigName is the config file looked up in the working directory.
	DefaultConfigName = ".textchecker"
)

type Config struct {
	Addr      string        `mapstructure:"addr"`
	Ext       string        `mapstructure:"ext"`
	Debounce  time.Duration `mapstructure:"debounce"`
	Codec     string        `mapstructure:"codec"`
	WorkerURL string        `mapstructure:"worker_url"`
	Spawn     bool          `mapstructure:"spawn"`
	CacheSize int           `mapstructure:"cache_size"`
	Homepage  string        `mapstructure:"homepage"`
	Log       LogConfig     `mapstructure:"log"`

	// Rules is the resolved rule configuration, with dictionaries inlined.
	Rules []RuleConfig `mapstructure:"-"`
	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RuleConfig enables one rule and carries its options.
type RuleConfig struct {
	ID      string
	Enabled bool
	Options map[string]any
}

// SetDefaults registers the default value of every setting on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("addr", "127.0.0.1:7778")
	v.SetDefault("ext", ".md")
	v.SetDefault("debounce", 200*time.Millisecond)
	v.SetDefault("codec", "json")
	v.SetDefault("worker_url", "")
	v.SetDefault("spawn", false)
	v.SetDefault("cache_size", 256)
	v.SetDefault("homepage", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// FlagKeys maps persistent command-line flags to their config keys.
var FlagKeys = map[string]string{
	"log-level":  "log.level",
	"log-format": "log.format",
	"codec":      "codec",
	"worker-url": "worker_url",
	"spawn":      "spawn",
	"addr":       "addr",
}

// BindFlags binds every flag of flags listed in FlagKeys to its key on v.
// Flags missing from the set are skipped.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range FlagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// Load reads .env, the config file (configFile, or .textchecker.* in the
// working directory when empty) and the environment into a Config.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	_ = godotenv.Load()

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	rules, err := ParseRules(v.Get("rules"))
	if err != nil {
		return nil, err
	}
	if cfg.File != "" {
		rules, err = Inline(rules, cfg.File)
		if err != nil {
			return nil, err
		}
	}
	cfg.Rules = rules

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that would otherwise fail late.
func (c *Config) Validate() error {
	if c.Debounce < 0 {
		return fmt.Errorf("debounce must not be negative, got %s", c.Debounce)
	}
	switch c.Codec {
	case "json", "msgpack":
	default:
		return fmt.Errorf("unknown codec %q", c.Codec)
	}
	if c.Ext != "" && !strings.HasPrefix(c.Ext, ".") {
		c.Ext = "." + c.Ext
	}
	return nil
}

// ParseRules turns the textlint-style rules table into rule configs sorted by
// ID. A rule value is either a boolean or an options map, which enables it.
func ParseRules(raw any) ([]RuleConfig, error) {
	if raw == nil {
		return nil, nil
	}
	table, ok := toStringMap(raw)
	if !ok {
		return nil, fmt.Errorf("rules: expected a table, got %T", raw)
	}

	rules := make([]RuleConfig, 0, len(table))
	for id, value := range table {
		rule := RuleConfig{ID: id, Enabled: true}
		switch typed := value.(type) {
		case nil:
		case bool:
			rule.Enabled = typed
		default:
			options, ok := toStringMap(typed)
			if !ok {
				return nil, fmt.Errorf("rules.%s: expected a boolean or a table, got %T", id, value)
			}
			rule.Options = options
		}
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
	return rules, nil
}

func toStringMap(v any) (map[string]any, bool) {
	switch typed := v.(type) {
	case map[string]any:
		return typed, true
	case map[any]any:
		out := make(map[string]any, len(typed))
		for k, val := range typed {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// ResolvePath resolves path relative to baseDir, expanding a leading ~.
func ResolvePath(baseDir, path string) (string, error) {
	expanded, err := untildify(path)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(expanded) {
		return filepath.Clean(expanded), nil
	}
	return filepath.Join(baseDir, expanded), nil
}
