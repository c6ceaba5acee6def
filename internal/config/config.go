// Package config provides configuration management for catalog projection.
package config

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"catalogsize/internal/measure"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Configuration validation errors.
var (
	ErrNoPatterns            = errors.New("projection.numerical_patterns must not be empty")
	ErrUnknownNotation       = errors.New("projection.numerical_patterns contains an unknown notation")
	ErrPatternOrder          = errors.New("projection.numerical_patterns must follow notation priority order")
	ErrEmptyPatternMatch     = errors.New("projection.numerical_patterns entry matches the empty string")
	ErrNoDimensionColumns    = errors.New("projection.columns.dimensions must not be empty")
	ErrMissingUnitColumn     = errors.New("projection.columns.unit is required")
	ErrMissingCountryColumn  = errors.New("projection.columns.country is required")
	ErrEmptyCorrection       = errors.New("correction find string must not be empty")
	ErrOverlappingLocales    = errors.New("a country cannot use comma as both decimal point and separator")
	ErrInvalidAliasTarget    = errors.New("projection.unit_aliases target must be one of: in, ft, cm, mm, m")
	ErrInvalidWorkers        = errors.New("processing.workers must be at least 1")
	ErrInvalidClusterRuns    = errors.New("clustering.runs must be at least 1")
	ErrInvalidMaxIterations  = errors.New("clustering.max_iterations must be at least 1")
	ErrInvalidTolerance      = errors.New("clustering.tolerance must be non-negative")
	ErrMissingNameField      = errors.New("clustering.name_field is required")
	ErrInvalidOutputFormat   = errors.New("output.format must be 'json' or 'jsonl'")
	ErrInvalidLogLevel       = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat      = errors.New("logging.format must be 'text' or 'json'")
)

// Config represents the complete projection configuration.
type Config struct {
	Projection ProjectionConfig `yaml:"projection"`
	Dataset    DatasetConfig    `yaml:"dataset"`
	Processing ProcessingConfig `yaml:"processing"`
	Clustering ClusteringConfig `yaml:"clustering"`
	Output     OutputConfig     `yaml:"output"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ProjectionConfig drives dimension normalization, matching and unit
// resolution.
type ProjectionConfig struct {
	Columns               ColumnsConfig       `yaml:"columns"`
	NumericalPatterns     []NumericalPattern  `yaml:"numerical_patterns"`
	DimensionCorrections  []Correction        `yaml:"dimension_corrections"`
	UnitCorrections       []Correction        `yaml:"unit_corrections"`
	DimensionLabels       map[string][]string `yaml:"dimension_labels"`
	CommaDecimalLocales   []string            `yaml:"comma_decimal_locales"`
	CommaSeparatorLocales []string            `yaml:"comma_separator_locales"`
	MetricLikelyLocales   []string            `yaml:"metric_likely_locales"`
	ImperialLikelyLocales []string            `yaml:"imperial_likely_locales"`
	CommonCMSizes         []string            `yaml:"common_cm_sizes"`
	UnitAliases           []UnitAlias         `yaml:"unit_aliases"`
	DiameterQualifiers    []string            `yaml:"diameter_qualifiers"`
	ThicknessComments     []string            `yaml:"thickness_comments"`
}

// ColumnsConfig names the record fields read by the projector.
type ColumnsConfig struct {
	Country          string   `yaml:"country"`
	Dimensions       []string `yaml:"dimensions"`
	Unit             string   `yaml:"unit"`
	OtherMeasurement string   `yaml:"other_measurement"`
	OtherUnit        string   `yaml:"other_unit"`
	Comments         string   `yaml:"comments"`
}

// NumericalPattern pairs a notation name with its regular expression.
type NumericalPattern struct {
	Notation string `yaml:"notation"`
	Pattern  string `yaml:"pattern"`
}

// Correction is an ordered find/replace pair.
type Correction struct {
	Find    string `yaml:"find"`
	Replace string `yaml:"replace"`
}

// UnitAlias rewrites a whole unit string. An empty country list applies
// everywhere.
type UnitAlias struct {
	From      string   `yaml:"from"`
	To        string   `yaml:"to"`
	Countries []string `yaml:"countries"`
}

// DatasetConfig describes the catalog batch.
type DatasetConfig struct {
	Countries    []string `yaml:"countries"`
	Years        []int    `yaml:"years"`
	IncludeNulls bool     `yaml:"include_nulls"`
}

// ProcessingConfig controls batch fan-out.
type ProcessingConfig struct {
	Workers int `yaml:"workers"`
}

// ClusteringConfig controls size grouping.
type ClusteringConfig struct {
	NameField     string  `yaml:"name_field"`
	IDField       string  `yaml:"id_field"`
	Seed          uint64  `yaml:"seed"`
	Runs          int     `yaml:"runs"`
	MaxIterations int     `yaml:"max_iterations"`
	Tolerance     float64 `yaml:"tolerance"`
}

// OutputConfig defines output behavior.
type OutputConfig struct {
	Format      string `yaml:"format"`
	PrettyPrint bool   `yaml:"pretty_print"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("config: embedded default is invalid: %v", err))
	}

	return cfg
}

// LoadConfig loads configuration from YAML file.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates a YAML configuration document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Fingerprint returns the SHA-256 of the marshalled configuration, so output
// documents can record which rules produced them.
func (c *Config) Fingerprint() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	sum := sha256.Sum256(data)

	return hex.EncodeToString(sum[:]), nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Projection.validate(); err != nil {
		return err
	}

	if c.Processing.Workers < 1 {
		return ErrInvalidWorkers
	}

	// Validate clustering config
	if c.Clustering.NameField == "" {
		return ErrMissingNameField
	}

	if c.Clustering.Runs < 1 {
		return ErrInvalidClusterRuns
	}

	if c.Clustering.MaxIterations < 1 {
		return ErrInvalidMaxIterations
	}

	if c.Clustering.Tolerance < 0 {
		return ErrInvalidTolerance
	}

	if c.Output.Format != "json" && c.Output.Format != "jsonl" {
		return ErrInvalidOutputFormat
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return ErrInvalidLogFormat
	}

	return nil
}

func (p *ProjectionConfig) validate() error {
	if len(p.NumericalPatterns) == 0 {
		return ErrNoPatterns
	}

	// Patterns may omit notations but never reorder them.
	last := -1

	for i, np := range p.NumericalPatterns {
		notation, err := measure.ParseNotation(np.Notation)
		if err != nil {
			return fmt.Errorf("%w: numerical_patterns[%d] %q", ErrUnknownNotation, i, np.Notation)
		}

		rank := int(notation)

		if rank <= last {
			return fmt.Errorf("%w: numerical_patterns[%d] %q", ErrPatternOrder, i, np.Notation)
		}

		last = rank

		re, err := regexp.Compile(np.Pattern)
		if err != nil {
			return fmt.Errorf("projection.numerical_patterns[%d] is invalid regex: %w", i, err)
		}

		if re.MatchString("") {
			return fmt.Errorf("%w: numerical_patterns[%d] %q", ErrEmptyPatternMatch, i, np.Notation)
		}
	}

	if len(p.Columns.Dimensions) == 0 {
		return ErrNoDimensionColumns
	}

	if p.Columns.Unit == "" {
		return ErrMissingUnitColumn
	}

	if p.Columns.Country == "" {
		return ErrMissingCountryColumn
	}

	for _, list := range [][]Correction{p.DimensionCorrections, p.UnitCorrections} {
		for i, c := range list {
			if c.Find == "" {
				return fmt.Errorf("%w: entry %d", ErrEmptyCorrection, i)
			}
		}
	}

	for _, country := range p.CommaDecimalLocales {
		if containsFold(p.CommaSeparatorLocales, country) {
			return fmt.Errorf("%w: %s", ErrOverlappingLocales, country)
		}
	}

	for _, alias := range p.UnitAliases {
		if !measure.KnownUnit(alias.To) {
			return fmt.Errorf("%w: %q -> %q", ErrInvalidAliasTarget, alias.From, alias.To)
		}
	}

	return nil
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}

	return false
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Patterns: %d, Dimensions: %v, Workers: %d, Output: %s}",
		len(c.Projection.NumericalPatterns),
		c.Projection.Columns.Dimensions,
		c.Processing.Workers,
		c.Output.Format,
	)
}
