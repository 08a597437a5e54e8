// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"

	"github.com/orefront/mineral-valuation/pkg/constants"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for mineral-valuation.
type Configuration struct {
	Valuation ValuationConfig `yaml:"valuation,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
	Output    OutputConfig    `yaml:"output,omitempty"`
}

// ValuationConfig holds engine tuning options.
type ValuationConfig struct {
	Simulations        int     `yaml:"simulations,omitempty"`        // Monte Carlo path count
	Seed               int64   `yaml:"seed,omitempty"`               // fixed random seed, 0 = clock
	VolatilityOverride float64 `yaml:"volatilityOverride,omitempty"` // replaces commodity volatility table
	DiscountRate       float64 `yaml:"discountRate,omitempty"`       // default rate for records reporting none
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// ValidateConfiguration checks option bounds and returns warnings for values
// that will be clamped or defaulted at run time.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string
	if c.Valuation.Simulations < 0 {
		warnings = append(warnings, "valuation.simulations is negative; the default will be used")
	}
	if c.Valuation.Simulations > constants.MaxSimulations {
		warnings = append(warnings, fmt.Sprintf("valuation.simulations exceeds the cap of %d and will be clamped", constants.MaxSimulations))
	}
	if c.Valuation.VolatilityOverride < 0 {
		warnings = append(warnings, "valuation.volatilityOverride is negative; the commodity table will be used")
	}
	if c.Valuation.VolatilityOverride > 1 {
		warnings = append(warnings, "valuation.volatilityOverride above 1.0 implies >100% annual volatility")
	}
	switch c.Output.Format {
	case "", constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON:
	default:
		warnings = append(warnings, fmt.Sprintf("output.format %q is not recognized; pretty output will be used", c.Output.Format))
	}
	return warnings
}
