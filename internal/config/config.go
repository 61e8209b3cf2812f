// Package config loads phylonet runtime configuration.
//
// Values come from, in increasing precedence: built-in defaults, a
// .phylonet.yaml file in the working or home directory (or the file named by
// --config), PHYLONET_* environment variables, and bound CLI flags. Nested
// keys map to environment variables with underscores, so layout.mode is read
// from PHYLONET_LAYOUT_MODE.
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/matzehuels/phylonet/pkg/errors"
	phyloio "github.com/matzehuels/phylonet/pkg/io"
	"github.com/matzehuels/phylonet/pkg/layout"
	"github.com/matzehuels/phylonet/pkg/session"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "PHYLONET"

// Config holds all runtime configuration for a phylonet invocation.
type Config struct {
	Verbose        bool         `mapstructure:"verbose"`
	DeferThreshold int          `mapstructure:"defer_threshold"`
	DefaultFormat  string       `mapstructure:"default_format"`
	StyleFile      string       `mapstructure:"style_file"`
	Layout         layout.Style `mapstructure:"layout"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		DeferThreshold: session.DefaultDeferThreshold,
		DefaultFormat:  string(phyloio.FormatNewick),
		Layout:         layout.DefaultStyle(),
	}
}

// New returns a viper instance reading configFile, or .phylonet.yaml from the
// working and home directories when configFile is empty. A missing default
// file is not an error; a missing or malformed explicit file is.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", configFile)
		}
		return v, nil
	}

	v.SetConfigName(".phylonet")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config")
		}
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	s := d.Layout
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("defer_threshold", d.DeferThreshold)
	v.SetDefault("default_format", d.DefaultFormat)
	v.SetDefault("style_file", d.StyleFile)
	v.SetDefault("layout.mode", string(s.Mode))
	v.SetDefault("layout.log_scale", s.LogScale)
	v.SetDefault("layout.log_scale_rel_offset", s.LogScaleRelOffset)
	v.SetDefault("layout.sort_nodes", s.SortNodes)
	v.SetDefault("layout.sort_nodes_descending", s.SortNodesDescending)
	v.SetDefault("layout.inline_recomb", s.InlineRecomb)
	v.SetDefault("layout.min_recomb_edge_length", s.MinRecombEdgeLength)
	v.SetDefault("layout.collapse_zero_length_edges", s.CollapseZeroLengthEdges)
	v.SetDefault("layout.minimize_hybrid_separation", s.MinimizeHybridSeparation)
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode config")
	}
	if _, err := phyloio.ParseFormat(cfg.DefaultFormat); err != nil {
		return Config{}, fmt.Errorf("default_format: %w", err)
	}
	if mode, err := layout.ParseMode(string(cfg.Layout.Mode)); err == nil {
		cfg.Layout.Mode = mode
	}
	if err := cfg.Layout.Validate(); err != nil {
		return Config{}, fmt.Errorf("layout: %w", err)
	}
	return cfg, nil
}

// Format returns the parsed default output format.
func (c Config) Format() phyloio.Format {
	f, err := phyloio.ParseFormat(c.DefaultFormat)
	if err != nil {
		return phyloio.FormatNewick
	}
	return f
}

// Style returns the named preset from StyleFile, or the configured layout
// style when name is empty.
func (c Config) Style(name string) (layout.Style, error) {
	if name == "" {
		return c.Layout, nil
	}
	if c.StyleFile == "" {
		return layout.Style{}, errors.New(errors.ErrCodeInvalidStyle, "style %q requested but no style_file is configured", name)
	}
	styles, err := layout.LoadStyleFile(c.StyleFile)
	if err != nil {
		return layout.Style{}, err
	}
	s, ok := styles[name]
	if !ok {
		return layout.Style{}, errors.New(errors.ErrCodeNotFound, "style %q not found in %s", name, c.StyleFile)
	}
	return s, nil
}
