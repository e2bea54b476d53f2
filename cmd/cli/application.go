package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	branchsync "github.com/temirov/gitsync/internal/branches/sync"
	"github.com/temirov/gitsync/internal/commitlog"
	"github.com/temirov/gitsync/internal/configfetch"
	"github.com/temirov/gitsync/internal/dbquery"
	"github.com/temirov/gitsync/internal/utils"
)

const (
	applicationNameConstant                 = "gitsync"
	applicationShortDescriptionConstant     = "Command-line interface for multi-repository Git maintenance"
	applicationLongDescriptionConstant      = "gitsync synchronizes repository branches, inspects commit history, and fetches supporting data across many working copies."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	environmentPrefixConstant               = "GITSYNC"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	rootCommandInfoMessageConstant          = "gitsync CLI executed"
	rootCommandDebugMessageConstant         = "gitsync CLI diagnostics"
	logFieldCommandNameConstant             = "command_name"
	logFieldArgumentCountConstant           = "argument_count"
	logFieldArgumentsConstant               = "arguments"
	loggerNotInitializedMessageConstant     = "logger not initialized"
	defaultConfigurationSearchPathConstant  = "."
	toolsConfigurationKeyConstant           = "tools"
	branchSyncPruneConfigKeyConstant        = toolsConfigurationKeyConstant + ".branch_sync.prune"
	branchSyncScanDepthConfigKeyConstant    = toolsConfigurationKeyConstant + ".branch_sync.scan_depth"
	commitLogSinceDaysConfigKeyConstant     = toolsConfigurationKeyConstant + ".commit_log.since_days"
	commitLogFormatConfigKeyConstant        = toolsConfigurationKeyConstant + ".commit_log.format"
	commitLogScanDepthConfigKeyConstant     = toolsConfigurationKeyConstant + ".commit_log.scan_depth"
	configFetchClusterConfigKeyConstant     = toolsConfigurationKeyConstant + ".config_fetch.cluster"
	defaultScanDepthValueConstant           = 2
	defaultSinceDaysValueConstant           = 7
	defaultCommitLogFormatValueConstant     = "detailed"
	defaultConfigFetchClusterValueConstant  = "default"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Tools  ApplicationToolsConfiguration  `mapstructure:"tools"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationToolsConfiguration holds configuration for CLI subcommands grouped by tool family.
type ApplicationToolsConfiguration struct {
	BranchSync    branchsync.CommandConfiguration  `mapstructure:"branch_sync"`
	CommitLog     commitlog.CommandConfiguration   `mapstructure:"commit_log"`
	DatabaseQuery dbquery.CommandConfiguration     `mapstructure:"db_query"`
	ConfigFetch   configfetch.CommandConfiguration `mapstructure:"config_fetch"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	commandContextAccessor utils.CommandContextAccessor
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant},
	)
	embeddedConfiguration, embeddedConfigurationType := EmbeddedDefaultConfiguration()
	configurationLoader.SetEmbeddedConfiguration(embeddedConfiguration, embeddedConfigurationType)

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)

	workingDirectory, _ := os.Getwd()

	branchSyncBuilder := branchsync.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() branchsync.CommandConfiguration {
			return application.configuration.Tools.BranchSync
		},
		WorkingDirectory: workingDirectory,
	}
	branchSyncCommand, branchSyncBuildError := branchSyncBuilder.Build()
	if branchSyncBuildError == nil {
		cobraCommand.AddCommand(branchSyncCommand)
	}

	commitLogBuilder := commitlog.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() commitlog.CommandConfiguration {
			return application.configuration.Tools.CommitLog
		},
		WorkingDirectory: workingDirectory,
	}
	commitLogCommand, commitLogBuildError := commitLogBuilder.Build()
	if commitLogBuildError == nil {
		cobraCommand.AddCommand(commitLogCommand)
	}

	databaseQueryBuilder := dbquery.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() dbquery.CommandConfiguration {
			return application.configuration.Tools.DatabaseQuery
		},
	}
	databaseQueryCommand, databaseQueryBuildError := databaseQueryBuilder.Build()
	if databaseQueryBuildError == nil {
		cobraCommand.AddCommand(databaseQueryCommand)
	}

	configFetchBuilder := configfetch.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() configfetch.CommandConfiguration {
			return application.configuration.Tools.ConfigFetch
		},
	}
	configFetchCommand, configFetchBuildError := configFetchBuilder.Build()
	if configFetchBuildError == nil {
		cobraCommand.AddCommand(configFetchCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:      string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant:     string(utils.LogFormatStructured),
		branchSyncPruneConfigKeyConstant:     true,
		branchSyncScanDepthConfigKeyConstant: defaultScanDepthValueConstant,
		commitLogSinceDaysConfigKeyConstant:  defaultSinceDaysValueConstant,
		commitLogFormatConfigKeyConstant:     defaultCommitLogFormatValueConstant,
		commitLogScanDepthConfigKeyConstant:  defaultScanDepthValueConstant,
		configFetchClusterConfigKeyConstant:  defaultConfigFetchClusterValueConstant,
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Info(
		rootCommandInfoMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Int(logFieldArgumentCountConstant, len(arguments)),
	)

	diagnosticFields := []zap.Field{zap.Strings(logFieldArgumentsConstant, arguments)}
	if configurationFilePath, available := application.commandContextAccessor.ConfigurationFilePath(command.Context()); available {
		diagnosticFields = append(diagnosticFields, zap.String(configurationFileFieldConstant, configurationFilePath))
	}
	application.logger.Debug(rootCommandDebugMessageConstant, diagnosticFields...)

	if len(arguments) == 0 {
		return command.Help()
	}

	return nil
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
