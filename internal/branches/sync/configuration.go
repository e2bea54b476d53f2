package sync

import "strings"

// CommandConfiguration captures configuration values for the branch synchronization command.
type CommandConfiguration struct {
	BranchName   string   `mapstructure:"branch"`
	RemoteName   string   `mapstructure:"remote"`
	Force        bool     `mapstructure:"force"`
	Prune        bool     `mapstructure:"prune"`
	SkipFetch    bool     `mapstructure:"no_fetch"`
	Repositories []string `mapstructure:"repositories"`
	ScanBase     string   `mapstructure:"scan_base"`
	ScanDepth    int      `mapstructure:"scan_depth"`
	DryRun       bool     `mapstructure:"dry_run"`
	EmitJSON     bool     `mapstructure:"json"`
}

// DefaultCommandConfiguration provides baseline configuration values for branch synchronization.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		BranchName:   "",
		RemoteName:   "",
		Force:        false,
		Prune:        true,
		SkipFetch:    false,
		Repositories: nil,
		ScanBase:     "",
		ScanDepth:    defaultScanDepthConstant,
		DryRun:       false,
		EmitJSON:     false,
	}
}

// sanitize trims configuration values without applying implicit defaults.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration

	sanitized.BranchName = strings.TrimSpace(configuration.BranchName)
	sanitized.RemoteName = strings.TrimSpace(configuration.RemoteName)
	sanitized.ScanBase = strings.TrimSpace(configuration.ScanBase)
	sanitized.Repositories = sanitizeRepositoryList(configuration.Repositories)

	return sanitized
}

func sanitizeRepositoryList(raw []string) []string {
	sanitized := make([]string, 0, len(raw))
	for _, candidate := range raw {
		trimmed := strings.TrimSpace(candidate)
		if len(trimmed) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmed)
	}
	return sanitized
}
