// Package config is for app wide settings that are unmarshalled from Viper.
//
// Settings are layered: built-in defaults, an optional nanotrim.yaml, NANOTRIM_
// environment variables and finally command line flags bound by cmd/nanotrim.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/aria-lang/nanotrim/internal/alignment"
	"github.com/aria-lang/nanotrim/internal/batch"
	"github.com/aria-lang/nanotrim/internal/quality"
	"github.com/aria-lang/nanotrim/internal/trim"
)

// EnvPrefix is the prefix of environment variables read by Viper.
const EnvPrefix = "NANOTRIM"

// ScoresConfig selects the alignment scores. Zero values are taken from the
// preset.
type ScoresConfig struct {
	// "default" or "nanopore"
	Preset    string `mapstructure:"preset"`
	Match     int    `mapstructure:"match"`
	Mismatch  int    `mapstructure:"mismatch"`
	GapOpen   int    `mapstructure:"gap-open"`
	GapExtend int    `mapstructure:"gap-extend"`
}

// TrimConfig holds the settings of the trim command.
type TrimConfig struct {
	// path to a YAML catalog; the built-in catalog is used when empty
	Catalog string `mapstructure:"catalog"`

	// names of the catalog definitions to search for, in priority order
	Definitions []string `mapstructure:"definitions"`

	// threshold overrides applied to every selected adapter end; zero keeps
	// the catalog value
	Length   int     `mapstructure:"length"`
	Coverage float64 `mapstructure:"coverage"`
	Identity float64 `mapstructure:"identity"`

	Window          int  `mapstructure:"window"`
	RequireBothEnds bool `mapstructure:"require-both-ends"`
	KeepUntrimmed   bool `mapstructure:"keep-untrimmed"`
	QualityTrim     int  `mapstructure:"quality-trim"`
	Workers         int  `mapstructure:"workers"`
}

// FilterConfig is the post-trim read filter.
type FilterConfig struct {
	Disabled       bool    `mapstructure:"disabled"`
	MinLength      int     `mapstructure:"min-length"`
	MinMeanQuality float64 `mapstructure:"min-quality"`
	MaxDegenerate  int     `mapstructure:"max-degenerate"`
}

// ServerConfig is for nanotrim-server.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read-timeout"`
	WriteTimeout    time.Duration `mapstructure:"write-timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
}

// Addr is the listen address of the server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Config is the root-level settings struct.
type Config struct {
	Verbose bool         `mapstructure:"verbose"`
	Scores  ScoresConfig `mapstructure:"scores"`
	Trim    TrimConfig   `mapstructure:"trim"`
	Filter  FilterConfig `mapstructure:"filter"`
	Server  ServerConfig `mapstructure:"server"`
}

// SetDefaults registers every setting with its default value. Keys unknown
// to Viper are not resolved from the environment, so all of them are listed.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("verbose", false)

	v.SetDefault("scores.preset", "default")
	v.SetDefault("scores.match", 0)
	v.SetDefault("scores.mismatch", 0)
	v.SetDefault("scores.gap-open", 0)
	v.SetDefault("scores.gap-extend", 0)

	v.SetDefault("trim.catalog", "")
	v.SetDefault("trim.definitions", []string{})
	v.SetDefault("trim.length", 0)
	v.SetDefault("trim.coverage", 0.0)
	v.SetDefault("trim.identity", 0.0)
	v.SetDefault("trim.window", 0)
	v.SetDefault("trim.require-both-ends", true)
	v.SetDefault("trim.keep-untrimmed", false)
	v.SetDefault("trim.quality-trim", 0)
	v.SetDefault("trim.workers", 0)

	f := quality.DefaultFilter()
	v.SetDefault("filter.disabled", false)
	v.SetDefault("filter.min-length", f.MinLength)
	v.SetDefault("filter.min-quality", f.MinMeanQuality)
	v.SetDefault("filter.max-degenerate", f.MaxDegenerate)

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read-timeout", 15*time.Second)
	v.SetDefault("server.write-timeout", 60*time.Second)
	v.SetDefault("server.shutdown-timeout", 30*time.Second)
}

// NewViper returns a Viper instance with defaults, environment lookup and
// the nanotrim.yaml search path set up.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("nanotrim")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home + "/.config/nanotrim")
	}
	return v
}

// Load reads the settings file and unmarshals v. An explicit file must
// exist; without one a missing nanotrim.yaml is not an error.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading settings: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unable to decode settings: %w", err)
	}
	return c, nil
}

// AlignmentScores resolves the preset and explicit scores.
func (c Config) AlignmentScores() (alignment.Scores, error) {
	var s alignment.Scores
	switch strings.ToLower(c.Scores.Preset) {
	case "", "default":
		s = alignment.DefaultScores()
	case "nanopore":
		s = alignment.NanoporeScores()
	default:
		return alignment.Scores{}, fmt.Errorf("unknown scores preset %q", c.Scores.Preset)
	}
	if c.Scores.Match != 0 {
		s.Match = c.Scores.Match
	}
	if c.Scores.Mismatch != 0 {
		s.Mismatch = c.Scores.Mismatch
	}
	if c.Scores.GapOpen != 0 {
		s.GapOpen = c.Scores.GapOpen
	}
	if c.Scores.GapExtend != 0 {
		s.GapExtend = c.Scores.GapExtend
	}
	return alignment.BuildScores(s.Match, s.Mismatch, s.GapOpen, s.GapExtend)
}

// Override returns the threshold override of the trim settings.
func (c Config) Override() trim.Override {
	var o trim.Override
	if c.Trim.Length != 0 {
		length := c.Trim.Length
		o.Length = &length
	}
	if c.Trim.Coverage != 0 {
		coverage := c.Trim.Coverage
		o.Coverage = &coverage
	}
	if c.Trim.Identity != 0 {
		identity := c.Trim.Identity
		o.Identity = &identity
	}
	return o
}

// Definitions loads the catalog, keeps the selected definitions and applies
// the threshold override.
func (c Config) Definitions() ([]*trim.SequenceDefinition, error) {
	var catalog []*trim.SequenceDefinition
	if c.Trim.Catalog == "" {
		catalog = trim.BuiltinCatalog()
	} else {
		f, err := os.Open(c.Trim.Catalog)
		if err != nil {
			return nil, fmt.Errorf("opening catalog: %w", err)
		}
		defer f.Close()
		if catalog, err = trim.LoadCatalog(f); err != nil {
			return nil, fmt.Errorf("%s: %w", c.Trim.Catalog, err)
		}
	}

	defs := catalog
	if len(c.Trim.Definitions) > 0 {
		defs = make([]*trim.SequenceDefinition, 0, len(c.Trim.Definitions))
		for _, name := range c.Trim.Definitions {
			d, ok := trim.Find(catalog, name)
			if !ok {
				return nil, fmt.Errorf("no sequence definition named %q", name)
			}
			defs = append(defs, d)
		}
	}

	if o := c.Override(); !o.IsZero() {
		for _, d := range defs {
			if err := d.OverrideAll(o); err != nil {
				return nil, err
			}
		}
	}
	return defs, nil
}

// Batch builds the batch settings.
func (c Config) Batch() (batch.Config, error) {
	scores, err := c.AlignmentScores()
	if err != nil {
		return batch.Config{}, err
	}
	if c.Trim.Window < 0 {
		return batch.Config{}, fmt.Errorf("window must not be negative: %d", c.Trim.Window)
	}

	b := batch.Config{
		Scores:          scores,
		Window:          c.Trim.Window,
		RequireBothEnds: c.Trim.RequireBothEnds,
		KeepUntrimmed:   c.Trim.KeepUntrimmed,
		QualityTrim:     c.Trim.QualityTrim,
		Workers:         c.Trim.Workers,
	}
	if !c.Filter.Disabled {
		b.Filter = &quality.Filter{
			MinLength:      c.Filter.MinLength,
			MinMeanQuality: c.Filter.MinMeanQuality,
			MaxDegenerate:  c.Filter.MaxDegenerate,
		}
	}
	return b, nil
}
