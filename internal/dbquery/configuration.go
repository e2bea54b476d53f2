package dbquery

import "strings"

// CommandConfiguration captures configuration values for the db-query command.
type CommandConfiguration struct {
	DatabasePath string `mapstructure:"database"`
}

// DefaultCommandConfiguration provides baseline configuration values for database queries.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{DatabasePath: ""}
}

// sanitize trims configuration values without applying implicit defaults.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.DatabasePath = strings.TrimSpace(configuration.DatabasePath)
	return sanitized
}
