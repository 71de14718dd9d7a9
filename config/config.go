package config

import (
	"math"
	"path/filepath"

	"github.com/kbukum/sessionscribe/dedup"
	"github.com/kbukum/sessionscribe/errors"
	"github.com/kbukum/sessionscribe/sessionio"
	"github.com/kbukum/sessionscribe/timeline"
	"github.com/kbukum/sessionscribe/validation"
)

// ServiceName names the config and env files LoadConfig searches for.
const ServiceName = "sessionscribe"

// Config is the complete sessionscribe configuration.
type Config struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Dedup DedupConfig `yaml:"dedup" mapstructure:"dedup"`
	Merge MergeConfig `yaml:"merge" mapstructure:"merge"`
	Clean CleanConfig `yaml:"clean" mapstructure:"clean"`
	// Workers bounds concurrent file loading and deduplication; 0 means one per CPU.
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// DedupConfig holds deduplicator parameters.
type DedupConfig struct {
	Enabled             bool    `yaml:"enabled" mapstructure:"enabled"`
	TimeWindow          float64 `yaml:"time_window" mapstructure:"time_window" validate:"gte=0"`
	SimilarityThreshold float64 `yaml:"similarity_threshold" mapstructure:"similarity_threshold" validate:"gt=0,lte=1"`
}

// MergeConfig holds timeline merge settings.
type MergeConfig struct {
	Pattern        string   `yaml:"pattern" mapstructure:"pattern"`
	OutputFilename string   `yaml:"output_filename" mapstructure:"output_filename"`
	Priority       []string `yaml:"priority" mapstructure:"priority"`
	// ClockOffsets by source id, for recordings whose file carries none.
	ClockOffsets map[string]float64 `yaml:"clock_offsets" mapstructure:"clock_offsets"`
}

// CleanConfig holds settings of the clean operation.
type CleanConfig struct {
	Suffix    string `yaml:"suffix" mapstructure:"suffix"`
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
}

// Defaults returns the default values as dotted keys for WithDefaults.
func Defaults() map[string]any {
	p := dedup.DefaultParams()
	return map[string]any{
		"name":                       ServiceName,
		"environment":                "development",
		"dedup.enabled":              true,
		"dedup.time_window":          p.TimeWindow,
		"dedup.similarity_threshold": p.SimilarityThreshold,
		"merge.pattern":              sessionio.DefaultPattern,
		"merge.output_filename":      sessionio.DefaultMergedFilename,
		"clean.suffix":               sessionio.DefaultCleanSuffix,
		"workers":                    0,
	}
}

// Load reads the configuration from defaults, the resolved config and .env
// files and SESSIONSCRIBE_* variables, then applies defaults and validates it.
func Load(opts ...LoaderOption) (*Config, error) {
	cfg := &Config{}
	opts = append([]LoaderOption{WithDefaults(Defaults())}, opts...)
	if err := LoadConfig(ServiceName, cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults fills unset values. A Dedup block left entirely zero gets the
// default parameters with deduplication enabled.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	if c.Dedup == (DedupConfig{}) {
		p := dedup.DefaultParams()
		c.Dedup = DedupConfig{Enabled: true, TimeWindow: p.TimeWindow, SimilarityThreshold: p.SimilarityThreshold}
	}
	if c.Merge.Pattern == "" {
		c.Merge.Pattern = sessionio.DefaultPattern
	}
	if c.Merge.OutputFilename == "" {
		c.Merge.OutputFilename = sessionio.DefaultMergedFilename
	}
	if c.Clean.Suffix == "" {
		c.Clean.Suffix = sessionio.DefaultCleanSuffix
	}
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(c); err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			return asConfigError(appErr)
		}
		return err
	}

	v := validation.New().
		Required("merge.pattern", c.Merge.Pattern).
		Required("merge.output_filename", c.Merge.OutputFilename).
		Required("clean.suffix", c.Clean.Suffix).
		Unique("merge.priority", c.Merge.Priority).
		Min("workers", c.Workers, 0)
	_, patternErr := filepath.Match(c.Merge.Pattern, "")
	v.Custom(patternErr == nil, "merge.pattern", "is not a valid glob")
	v.Custom(filepath.Base(c.Merge.OutputFilename) == c.Merge.OutputFilename, "merge.output_filename", "must be a file name, not a path")
	for source, offset := range c.Merge.ClockOffsets {
		v.Custom(!math.IsNaN(offset) && !math.IsInf(offset, 0), "merge.clock_offsets."+source, "must be finite")
	}
	if appErr := v.Validate(); appErr != nil {
		return asConfigError(appErr)
	}
	return nil
}

// DedupParams returns the deduplicator parameters.
func (c *Config) DedupParams() dedup.Params {
	return dedup.Params{TimeWindow: c.Dedup.TimeWindow, SimilarityThreshold: c.Dedup.SimilarityThreshold}
}

// MergeOptions returns the timeline merge options.
func (c *Config) MergeOptions() timeline.Options {
	return timeline.Options{Priority: c.Merge.Priority}
}
