package configfetch

import "strings"

// CommandConfiguration captures configuration values for the config-fetch command.
type CommandConfiguration struct {
	ServerURL   string   `mapstructure:"server"`
	Application string   `mapstructure:"app"`
	Cluster     string   `mapstructure:"cluster"`
	Namespaces  []string `mapstructure:"namespaces"`
}

// DefaultCommandConfiguration provides baseline configuration values for configuration fetching.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		ServerURL:   "",
		Application: "",
		Cluster:     defaultClusterNameConstant,
		Namespaces:  nil,
	}
}

// sanitize trims configuration values without applying implicit defaults.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.ServerURL = strings.TrimSpace(configuration.ServerURL)
	sanitized.Application = strings.TrimSpace(configuration.Application)
	sanitized.Cluster = strings.TrimSpace(configuration.Cluster)

	sanitizedNamespaces := make([]string, 0, len(configuration.Namespaces))
	for _, namespaceName := range configuration.Namespaces {
		trimmedNamespace := strings.TrimSpace(namespaceName)
		if len(trimmedNamespace) == 0 {
			continue
		}
		sanitizedNamespaces = append(sanitizedNamespaces, trimmedNamespace)
	}
	sanitized.Namespaces = sanitizedNamespaces

	return sanitized
}
