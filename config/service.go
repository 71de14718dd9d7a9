package config

import (
	"github.com/kbukum/sessionscribe/errors"
	"github.com/kbukum/sessionscribe/logger"
	"github.com/kbukum/sessionscribe/validation"
)

// ServiceConfig contains the fields every sessionscribe binary shares.
// Config embeds it with mapstructure squash so its keys sit at the top level.
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// GetServiceConfig returns the base ServiceConfig.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// ApplyDefaults applies default values to the base configuration.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = ServiceName
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Debug && c.Logging.Level == "" {
		c.Logging.Level = "debug"
	}
	// Propagate service name into logging so Init() uses the right tag.
	if c.Logging.ServiceName == "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
}

// Validate validates the base configuration fields.
func (c *ServiceConfig) Validate() error {
	v := validation.New().
		Required("name", c.Name).
		OneOf("environment", c.Environment, []string{"development", "staging", "production"})
	if appErr := v.Validate(); appErr != nil {
		return asConfigError(appErr)
	}
	if err := c.Logging.Validate(); err != nil {
		return errors.InvalidConfig("logging", err.Error())
	}
	return nil
}

// asConfigError re-codes a validation failure as INVALID_CONFIG.
func asConfigError(appErr *errors.AppError) *errors.AppError {
	return errors.New(errors.ErrCodeInvalidConfig, appErr.Message).WithDetails(appErr.Details)
}
