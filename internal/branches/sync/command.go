package sync

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitsync/internal/execshell"
	"github.com/temirov/gitsync/internal/repos/dependencies"
	"github.com/temirov/gitsync/internal/repos/shared"
	pathutils "github.com/temirov/gitsync/internal/utils/path"
)

const (
	commandUseConstant                      = "branch-sync"
	commandShortDescriptionConstant         = "Synchronize repositories onto a target branch"
	commandLongDescriptionConstant          = "branch-sync checks out the target branch in one or more Git repositories and updates each working tree to match the remote."
	unexpectedArgumentsMessageConstant      = "branch-sync does not accept positional arguments"
	flagBranchNameConstant                  = "branch"
	flagBranchDescriptionConstant           = "Target branch to synchronize onto"
	flagRemoteNameConstant                  = "remote"
	flagRemoteDescriptionConstant           = "Name of the remote providing the target branch"
	flagForceNameConstant                   = "force"
	flagForceDescriptionConstant            = "Discard local changes and reset to the remote branch state"
	flagRepositoryNameConstant              = "repo"
	flagRepositoryDescriptionConstant       = "Repository path to synchronize (repeatable)"
	flagScanNameConstant                    = "scan-repos"
	flagScanDescriptionConstant             = "Scan the base directory for repositories instead of naming them"
	flagBaseDirectoryNameConstant           = "base-dir"
	flagBaseDirectoryDescriptionConstant    = "Base directory for repository scanning"
	flagScanDepthNameConstant               = "scan-depth"
	flagScanDepthDescriptionConstant        = "Maximum directory depth examined during scanning"
	flagPruneNameConstant                   = "prune"
	flagPruneDescriptionConstant            = "Prune deleted remote branches while fetching"
	flagSkipFetchNameConstant               = "no-fetch"
	flagSkipFetchDescriptionConstant        = "Skip fetching and rely on previously fetched remote state"
	flagDryRunNameConstant                  = "dry-run"
	flagDryRunDescriptionConstant           = "Preview git commands without making changes"
	flagJSONNameConstant                    = "json"
	flagJSONDescriptionConstant             = "Emit the batch summary as JSON instead of progress output"
	branchRequiredMessageConstant           = "a target branch must be provided via --branch or configuration"
	repositoryMissingTemplateConstant       = "repository path does not exist: %s"
	noRepositoriesFoundTemplateConstant     = "no repositories found under %s"
	noEnclosingRepositoryMessageConstant    = "no git repository found at or above the current directory"
	workingDirectoryFailureTemplateConstant = "unable to determine working directory: %w"
	batchFailureTemplateConstant            = "%d of %d repositories failed to synchronize"
	defaultScanDepthConstant                = 2
	defaultBaseDirectoryConstant            = "."
	jsonIndentConstant                      = "  "
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// ErrBranchRequired indicates no target branch was supplied by flags or configuration.
var ErrBranchRequired = errors.New(branchRequiredMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the configuration backing the command flags.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the Cobra command for branch synchronization.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	GitExecutor           shared.GitExecutor
	Discoverer            shared.RepositoryDiscoverer
	FileSystem            shared.FileSystem
	WorkingDirectory      string
}

// Build constructs the branch-sync command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	configuration := builder.resolveConfiguration()

	command.Flags().String(flagBranchNameConstant, configuration.BranchName, flagBranchDescriptionConstant)
	command.Flags().String(flagRemoteNameConstant, configuration.RemoteName, flagRemoteDescriptionConstant)
	command.Flags().Bool(flagForceNameConstant, configuration.Force, flagForceDescriptionConstant)
	command.Flags().StringArray(flagRepositoryNameConstant, configuration.Repositories, flagRepositoryDescriptionConstant)
	command.Flags().Bool(flagScanNameConstant, false, flagScanDescriptionConstant)
	command.Flags().String(flagBaseDirectoryNameConstant, configuration.ScanBase, flagBaseDirectoryDescriptionConstant)
	command.Flags().Int(flagScanDepthNameConstant, configuration.ScanDepth, flagScanDepthDescriptionConstant)
	command.Flags().Bool(flagPruneNameConstant, configuration.Prune, flagPruneDescriptionConstant)
	command.Flags().Bool(flagSkipFetchNameConstant, configuration.SkipFetch, flagSkipFetchDescriptionConstant)
	command.Flags().Bool(flagDryRunNameConstant, configuration.DryRun, flagDryRunDescriptionConstant)
	command.Flags().Bool(flagJSONNameConstant, configuration.EmitJSON, flagJSONDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	options, repositorySelection, presentation, optionsError := builder.parseOptions(command)
	if optionsError != nil {
		return optionsError
	}

	logger := builder.resolveLogger()

	gitExecutor, executorError := dependencies.ResolveGitExecutor(builder.GitExecutor, logger, execshell.ExecutorOptions{DryRun: presentation.dryRun})
	if executorError != nil {
		return executorError
	}

	repositoryManager, managerError := dependencies.ResolveRepositoryManager(nil, gitExecutor)
	if managerError != nil {
		return managerError
	}

	repositoryPaths, resolutionError := builder.resolveRepositories(repositorySelection, logger)
	if resolutionError != nil {
		return resolutionError
	}

	service, serviceError := NewService(Dependencies{RepositoryManager: repositoryManager, Logger: logger})
	if serviceError != nil {
		return serviceError
	}

	var reporter ProgressReporter = NoopProgressReporter{}
	if !presentation.emitJSON {
		reporter = NewConsoleProgressReporter(command.OutOrStdout())
	}

	orchestrator, orchestratorError := NewOrchestrator(service, repositoryManager, reporter)
	if orchestratorError != nil {
		return orchestratorError
	}

	summary := orchestrator.SyncRepositories(command.Context(), repositoryPaths, options)

	if presentation.emitJSON {
		if renderError := renderSummaryJSON(command, summary); renderError != nil {
			return renderError
		}
	}

	if summary.Failed > 0 {
		return fmt.Errorf(batchFailureTemplateConstant, summary.Failed, summary.Total)
	}
	return nil
}

// repositorySelection carries the repository targeting inputs parsed from flags.
type repositorySelection struct {
	explicitPaths []string
	scanRequested bool
	baseDirectory string
	scanDepth     int
}

// presentationOptions carries output and execution mode inputs parsed from flags.
type presentationOptions struct {
	emitJSON bool
	dryRun   bool
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command) (Options, repositorySelection, presentationOptions, error) {
	configuration := builder.resolveConfiguration()

	branchValue, _ := command.Flags().GetString(flagBranchNameConstant)
	trimmedBranchName := strings.TrimSpace(branchValue)
	if len(trimmedBranchName) == 0 {
		return Options{}, repositorySelection{}, presentationOptions{}, ErrBranchRequired
	}

	remoteValue, _ := command.Flags().GetString(flagRemoteNameConstant)
	trimmedRemoteName := strings.TrimSpace(remoteValue)
	if len(trimmedRemoteName) == 0 {
		trimmedRemoteName = shared.OriginRemoteNameConstant
	}

	forceValue, _ := command.Flags().GetBool(flagForceNameConstant)
	pruneValue, _ := command.Flags().GetBool(flagPruneNameConstant)
	skipFetchValue, _ := command.Flags().GetBool(flagSkipFetchNameConstant)
	dryRunValue, _ := command.Flags().GetBool(flagDryRunNameConstant)
	jsonValue, _ := command.Flags().GetBool(flagJSONNameConstant)

	repositoryValues, _ := command.Flags().GetStringArray(flagRepositoryNameConstant)
	scanValue, _ := command.Flags().GetBool(flagScanNameConstant)
	baseDirectoryValue, _ := command.Flags().GetString(flagBaseDirectoryNameConstant)
	trimmedBaseDirectory := strings.TrimSpace(baseDirectoryValue)
	if len(trimmedBaseDirectory) == 0 {
		trimmedBaseDirectory = defaultBaseDirectoryConstant
	}
	scanDepthValue, _ := command.Flags().GetInt(flagScanDepthNameConstant)
	if scanDepthValue <= 0 {
		scanDepthValue = configuration.ScanDepth
	}
	if scanDepthValue <= 0 {
		scanDepthValue = defaultScanDepthConstant
	}

	options := Options{
		BranchName: trimmedBranchName,
		RemoteName: trimmedRemoteName,
		Force:      forceValue,
		Prune:      pruneValue,
		SkipFetch:  skipFetchValue,
	}

	selection := repositorySelection{
		explicitPaths: pathutils.NewRepositoryPathSanitizer().Sanitize(repositoryValues),
		scanRequested: scanValue,
		baseDirectory: trimmedBaseDirectory,
		scanDepth:     scanDepthValue,
	}

	presentation := presentationOptions{emitJSON: jsonValue, dryRun: dryRunValue}

	return options, selection, presentation, nil
}

// resolveRepositories turns the selection inputs into concrete repository paths.
//
// Scanning wins over explicit paths; with neither requested, the enclosing
// repository of the working directory is the sole target.
func (builder *CommandBuilder) resolveRepositories(selection repositorySelection, logger *zap.Logger) ([]string, error) {
	discoverer := dependencies.ResolveRepositoryDiscoverer(builder.Discoverer, logger)
	fileSystem := dependencies.ResolveFileSystem(builder.FileSystem)

	if selection.scanRequested {
		discoveredPaths := discoverer.ScanForRepositories(selection.baseDirectory, selection.scanDepth)
		if len(discoveredPaths) == 0 {
			return nil, fmt.Errorf(noRepositoriesFoundTemplateConstant, selection.baseDirectory)
		}
		return discoveredPaths, nil
	}

	if len(selection.explicitPaths) > 0 {
		resolvedPaths := make([]string, 0, len(selection.explicitPaths))
		for _, candidatePath := range selection.explicitPaths {
			absolutePath, absoluteError := fileSystem.Abs(candidatePath)
			if absoluteError != nil {
				return nil, fmt.Errorf(repositoryMissingTemplateConstant, candidatePath)
			}
			if _, statError := fileSystem.Stat(absolutePath); statError != nil {
				return nil, fmt.Errorf(repositoryMissingTemplateConstant, candidatePath)
			}
			resolvedPaths = append(resolvedPaths, absolutePath)
		}
		return resolvedPaths, nil
	}

	startDirectory := builder.WorkingDirectory
	if len(strings.TrimSpace(startDirectory)) == 0 {
		workingDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return nil, fmt.Errorf(workingDirectoryFailureTemplateConstant, workingDirectoryError)
		}
		startDirectory = workingDirectory
	}

	enclosingRepository, found := discoverer.FindEnclosingRepository(startDirectory)
	if !found {
		return nil, errors.New(noEnclosingRepositoryMessageConstant)
	}
	return []string{enclosingRepository}, nil
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

func renderSummaryJSON(command *cobra.Command, summary BatchSummary) error {
	encodedSummary, encodeError := json.MarshalIndent(summary, "", jsonIndentConstant)
	if encodeError != nil {
		return encodeError
	}
	fmt.Fprintln(command.OutOrStdout(), string(encodedSummary))
	return nil
}
