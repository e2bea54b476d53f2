package commitlog

import "strings"

// CommandConfiguration captures configuration values for the commit-log command.
type CommandConfiguration struct {
	Author       string `mapstructure:"author"`
	SinceDays    int    `mapstructure:"since_days"`
	Format       string `mapstructure:"format"`
	MaximumCount int    `mapstructure:"max_count"`
	ScanDepth    int    `mapstructure:"scan_depth"`
}

// DefaultCommandConfiguration provides baseline configuration values for commit history queries.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Author:       "",
		SinceDays:    defaultSinceDaysConstant,
		Format:       formatDetailedConstant,
		MaximumCount: 0,
		ScanDepth:    defaultScanDepthConstant,
	}
}

// sanitize trims configuration values without applying implicit defaults.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Author = strings.TrimSpace(configuration.Author)
	sanitized.Format = strings.TrimSpace(configuration.Format)
	return sanitized
}
