// Package config loads qrcard settings from defaults, an optional YAML
// file, QRCARD_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/zoobzio/qrcard"
	"github.com/zoobzio/qrcard/internal/logging"
)

// EnvPrefix prefixes every environment override, e.g. QRCARD_LINK_BASE.
const EnvPrefix = "QRCARD"

// Defaults holds the built-in configuration values.
var Defaults = struct {
	SourceDelay     time.Duration
	SanitizeArrays  bool
	SanitizeDepth   int
	CodecIndent     bool
	DecodeStrict    bool
	RenderLevel     string
	RenderSize      int
	RenderBorder    bool
	LinkBase        string
	LogLevel        string
	LogFormat       string
	FingerprintAlgo string
}{
	SourceDelay:     800 * time.Millisecond,
	SanitizeArrays:  false,
	SanitizeDepth:   qrcard.DefaultMaxDepth,
	CodecIndent:     false,
	DecodeStrict:    false,
	RenderLevel:     "high",
	RenderSize:      256,
	RenderBorder:    true,
	LinkBase:        "http://localhost:5173",
	LogLevel:        "info",
	LogFormat:       "console",
	FingerprintAlgo: string(qrcard.HashBLAKE2b),
}

// AppConfig holds the application configuration.
// It is immutable after Load.
type AppConfig struct {
	Source      SourceConfig   `mapstructure:"source"`
	Sanitize    SanitizeConfig `mapstructure:"sanitize"`
	Codec       CodecConfig    `mapstructure:"codec"`
	Decode      DecodeConfig   `mapstructure:"decode"`
	Render      RenderConfig   `mapstructure:"render"`
	Link        LinkConfig     `mapstructure:"link"`
	Log         LogConfig      `mapstructure:"log"`
	Fingerprint string         `mapstructure:"fingerprint"`
}

// SourceConfig configures the record source.
type SourceConfig struct {
	Delay    time.Duration `mapstructure:"delay"`    // simulated lookup latency, 0 disables
	Fixtures string        `mapstructure:"fixtures"` // JSON or YAML fixtures file, empty for demo users
}

// SanitizeConfig configures the sanitizer.
type SanitizeConfig struct {
	Arrays   bool     `mapstructure:"arrays"`
	MaxDepth int      `mapstructure:"max_depth"`
	Masks    []string `mapstructure:"masks"` // "field=type"; a list because viper lowercases map keys
}

// CodecConfig configures payload encoding.
type CodecConfig struct {
	Indent bool `mapstructure:"indent"`
}

// DecodeConfig configures payload decoding.
type DecodeConfig struct {
	Strict bool `mapstructure:"strict"`
}

// RenderConfig configures QR rendering.
type RenderConfig struct {
	Level  string `mapstructure:"level"` // low, medium, quartile, high
	Size   int    `mapstructure:"size"`  // PNG edge in pixels
	Border bool   `mapstructure:"border"`
}

// LinkConfig configures carrier links.
type LinkConfig struct {
	Base string `mapstructure:"base"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var validRenderLevels = map[string]bool{
	"low":      true,
	"medium":   true,
	"quartile": true,
	"high":     true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
	"simple":  true,
}

// RegisterFlags adds the flags that override configuration keys.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a YAML config file")
	fs.Duration("delay", Defaults.SourceDelay, "simulated lookup latency")
	fs.String("fixtures", "", "JSON or YAML file of records keyed by ID")
	fs.Bool("sanitize-arrays", Defaults.SanitizeArrays, "also sanitize objects inside arrays")
	fs.StringSlice("mask", nil, "mask a field in encoded payloads and exports, as field=type (email, phone, card, name, last4)")
	fs.Bool("indent", Defaults.CodecIndent, "indent encoded payloads")
	fs.Bool("strict", Defaults.DecodeStrict, "reject unreadable flattened lines")
	fs.String("level", Defaults.RenderLevel, "QR recovery level: low, medium, quartile, high")
	fs.Int("size", Defaults.RenderSize, "PNG size in pixels")
	fs.String("base", Defaults.LinkBase, "base URL for carrier links")
	fs.String("log-level", Defaults.LogLevel, "log level: debug, info, warn, error")
	fs.String("log-format", Defaults.LogFormat, "log format: json, console, simple")
}

// flagKeys maps flag names to configuration keys.
var flagKeys = map[string]string{
	"delay":           "source.delay",
	"fixtures":        "source.fixtures",
	"sanitize-arrays": "sanitize.arrays",
	"mask":            "sanitize.masks",
	"indent":          "codec.indent",
	"strict":          "decode.strict",
	"level":           "render.level",
	"size":            "render.size",
	"base":            "link.base",
	"log-level":       "log.level",
	"log-format":      "log.format",
}

// Load builds the configuration. configPath may be empty, in which case
// ./qrcard.yaml and ./config/qrcard.yaml are tried. Flags in fs that were
// set explicitly take precedence over everything else; fs may be nil.
func Load(configPath string, fs *pflag.FlagSet) (*AppConfig, error) {
	v := viper.New()

	v.SetDefault("source.delay", Defaults.SourceDelay)
	v.SetDefault("source.fixtures", "")
	v.SetDefault("sanitize.arrays", Defaults.SanitizeArrays)
	v.SetDefault("sanitize.max_depth", Defaults.SanitizeDepth)
	v.SetDefault("sanitize.masks", []string{})
	v.SetDefault("codec.indent", Defaults.CodecIndent)
	v.SetDefault("decode.strict", Defaults.DecodeStrict)
	v.SetDefault("render.level", Defaults.RenderLevel)
	v.SetDefault("render.size", Defaults.RenderSize)
	v.SetDefault("render.border", Defaults.RenderBorder)
	v.SetDefault("link.base", Defaults.LinkBase)
	v.SetDefault("log.level", Defaults.LogLevel)
	v.SetDefault("log.format", Defaults.LogFormat)
	v.SetDefault("fingerprint", Defaults.FingerprintAlgo)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("qrcard")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{
		"source.delay", "source.fixtures",
		"sanitize.arrays", "sanitize.max_depth", "sanitize.masks",
		"codec.indent", "decode.strict",
		"render.level", "render.size", "render.border",
		"link.base", "log.level", "log.format", "fingerprint",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			f := fs.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// validate checks option values and normalizes case.
func validate(cfg *AppConfig) error {
	if cfg.Source.Delay < 0 {
		return fmt.Errorf("source.delay must not be negative: %s", cfg.Source.Delay)
	}
	if cfg.Sanitize.MaxDepth < 1 || cfg.Sanitize.MaxDepth > qrcard.DefaultMaxDepth {
		return fmt.Errorf("sanitize.max_depth must be between 1 and %d: %d", qrcard.DefaultMaxDepth, cfg.Sanitize.MaxDepth)
	}
	for _, m := range cfg.Sanitize.Masks {
		field, mt, err := parseMask(m)
		if err != nil {
			return err
		}
		if !qrcard.IsValidMaskType(mt) {
			return fmt.Errorf("sanitize.masks: unknown mask type %q for %s", mt, field)
		}
	}

	cfg.Render.Level = strings.ToLower(cfg.Render.Level)
	if !validRenderLevels[cfg.Render.Level] {
		return fmt.Errorf("render.level must be low, medium, quartile or high: %q", cfg.Render.Level)
	}
	if cfg.Render.Size < 21 {
		return fmt.Errorf("render.size too small: %d", cfg.Render.Size)
	}

	if cfg.Link.Base == "" {
		return fmt.Errorf("link.base is required (set %s_LINK_BASE)", EnvPrefix)
	}

	level, ok := logging.ParseLevel(cfg.Log.Level)
	if !ok {
		return fmt.Errorf("log.level must be debug, info, warn or error: %q", cfg.Log.Level)
	}
	cfg.Log.Level = string(level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	if !validLogFormats[cfg.Log.Format] {
		return fmt.Errorf("log.format must be json, console or simple: %q", cfg.Log.Format)
	}

	cfg.Fingerprint = strings.ToLower(cfg.Fingerprint)
	if !qrcard.IsValidHashAlgo(qrcard.HashAlgo(cfg.Fingerprint)) {
		return fmt.Errorf("fingerprint must be blake2b or sha256: %q", cfg.Fingerprint)
	}
	return nil
}

// SanitizerOptions converts the sanitize section into sanitizer options.
func (c *AppConfig) SanitizerOptions() []qrcard.SanitizerOption {
	opts := []qrcard.SanitizerOption{
		qrcard.WithArraySanitization(c.Sanitize.Arrays),
		qrcard.WithMaxDepth(c.Sanitize.MaxDepth),
	}
	for _, m := range c.Sanitize.Masks {
		if field, mt, err := parseMask(m); err == nil {
			opts = append(opts, qrcard.WithMask(field, mt))
		}
	}
	return opts
}

// parseMask splits a "field=type" mask entry.
func parseMask(s string) (string, qrcard.MaskType, error) {
	field, mt, ok := strings.Cut(s, "=")
	field = strings.TrimSpace(field)
	if !ok || field == "" {
		return "", "", fmt.Errorf("sanitize.masks: entry %q is not field=type", s)
	}
	return field, qrcard.MaskType(strings.ToLower(strings.TrimSpace(mt))), nil
}

// LoggerConfig converts the log section into a logger configuration.
func (c *AppConfig) LoggerConfig() logging.LoggerConfig {
	level, _ := logging.ParseLevel(c.Log.Level)
	return logging.LoggerConfig{Level: level, Format: c.Log.Format}
}
