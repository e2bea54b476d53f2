package configfetch

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	commandUseConstant                 = "config-fetch"
	commandShortDescriptionConstant    = "Fetch published configuration namespaces for an application"
	commandLongDescriptionConstant     = "config-fetch downloads published configuration namespaces from a central configuration server and prints them or saves them as YAML files."
	unexpectedArgumentsMessageConstant = "config-fetch does not accept positional arguments"
	flagServerNameConstant             = "server"
	flagServerDescriptionConstant      = "Base URL of the configuration server"
	flagApplicationNameConstant        = "app"
	flagApplicationDescriptionConstant = "Application identifier whose configuration is fetched"
	flagClusterNameConstant            = "cluster"
	flagClusterDescriptionConstant     = "Cluster name within the configuration server"
	flagNamespaceNameConstant          = "namespace"
	flagNamespaceDescriptionConstant   = "Namespace to fetch (repeatable)"
	flagOutputDirectoryNameConstant    = "output-dir"
	flagOutputDirectoryDescription     = "Directory where fetched namespaces are saved as YAML files"
	defaultClusterNameConstant         = "default"
	defaultNamespaceNameConstant       = "application"
	namespaceHeaderTemplateConstant    = "namespace %s (%d entries):\n"
	savedFileTemplateConstant          = "saved %s\n"
	outputFilePermissionsConstant      = 0o644
	outputDirectoryPermissionsConstant = 0o755
	yamlFileExtensionConstant          = ".yaml"
	saveFailureTemplateConstant        = "failed to save namespace %s: %w"
	jsonIndentConstant                 = "  "
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the configuration backing the command flags.
type ConfigurationProvider func() CommandConfiguration

// HTTPClientFactory builds the client used to reach the configuration server.
type HTTPClientFactory func(serverURL string, logger *zap.Logger) (*Client, error)

// CommandBuilder assembles the Cobra command for configuration fetching.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	ClientFactory         HTTPClientFactory
}

// Build constructs the config-fetch command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	configuration := builder.resolveConfiguration()

	command.Flags().String(flagServerNameConstant, configuration.ServerURL, flagServerDescriptionConstant)
	command.Flags().String(flagApplicationNameConstant, configuration.Application, flagApplicationDescriptionConstant)
	command.Flags().String(flagClusterNameConstant, configuration.Cluster, flagClusterDescriptionConstant)
	command.Flags().StringArray(flagNamespaceNameConstant, configuration.Namespaces, flagNamespaceDescriptionConstant)
	command.Flags().String(flagOutputDirectoryNameConstant, "", flagOutputDirectoryDescription)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	serverValue, _ := command.Flags().GetString(flagServerNameConstant)
	applicationValue, _ := command.Flags().GetString(flagApplicationNameConstant)
	clusterValue, _ := command.Flags().GetString(flagClusterNameConstant)
	namespaceValues, _ := command.Flags().GetStringArray(flagNamespaceNameConstant)
	outputDirectoryValue, _ := command.Flags().GetString(flagOutputDirectoryNameConstant)

	trimmedCluster := strings.TrimSpace(clusterValue)
	if len(trimmedCluster) == 0 {
		trimmedCluster = defaultClusterNameConstant
	}
	if len(namespaceValues) == 0 {
		namespaceValues = []string{defaultNamespaceNameConstant}
	}

	logger := builder.resolveLogger()
	client, clientError := builder.resolveClient(serverValue, logger)
	if clientError != nil {
		return clientError
	}

	outputWriter := command.OutOrStdout()
	trimmedOutputDirectory := strings.TrimSpace(outputDirectoryValue)

	for _, namespaceName := range namespaceValues {
		configurationEntries, fetchError := client.FetchNamespace(command.Context(), applicationValue, trimmedCluster, namespaceName)
		if fetchError != nil {
			return fetchError
		}

		if len(trimmedOutputDirectory) > 0 {
			savedPath, saveError := saveNamespaceAsYAML(trimmedOutputDirectory, namespaceName, configurationEntries)
			if saveError != nil {
				return saveError
			}
			fmt.Fprintf(outputWriter, savedFileTemplateConstant, savedPath)
			continue
		}

		fmt.Fprintf(outputWriter, namespaceHeaderTemplateConstant, namespaceName, len(configurationEntries))
		encodedEntries, encodeError := json.MarshalIndent(configurationEntries, "", jsonIndentConstant)
		if encodeError != nil {
			return encodeError
		}
		fmt.Fprintln(outputWriter, string(encodedEntries))
	}

	return nil
}

// saveNamespaceAsYAML writes one namespace to <outputDirectory>/<namespace>.yaml.
func saveNamespaceAsYAML(outputDirectory string, namespaceName string, configurationEntries map[string]string) (string, error) {
	if directoryError := os.MkdirAll(outputDirectory, outputDirectoryPermissionsConstant); directoryError != nil {
		return "", fmt.Errorf(saveFailureTemplateConstant, namespaceName, directoryError)
	}

	encodedEntries, encodeError := yaml.Marshal(configurationEntries)
	if encodeError != nil {
		return "", fmt.Errorf(saveFailureTemplateConstant, namespaceName, encodeError)
	}

	outputFileName := strings.TrimSuffix(namespaceName, filepath.Ext(namespaceName)) + yamlFileExtensionConstant
	outputPath := filepath.Join(outputDirectory, outputFileName)
	if writeError := os.WriteFile(outputPath, encodedEntries, outputFilePermissionsConstant); writeError != nil {
		return "", fmt.Errorf(saveFailureTemplateConstant, namespaceName, writeError)
	}
	return outputPath, nil
}

func (builder *CommandBuilder) resolveClient(serverURL string, logger *zap.Logger) (*Client, error) {
	if builder.ClientFactory != nil {
		return builder.ClientFactory(serverURL, logger)
	}
	return NewClient(serverURL, nil, logger)
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration().sanitize()
	}
	return builder.ConfigurationProvider().sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}
