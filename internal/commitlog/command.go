package commitlog

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitsync/internal/execshell"
	"github.com/temirov/gitsync/internal/repos/dependencies"
	"github.com/temirov/gitsync/internal/repos/shared"
	pathutils "github.com/temirov/gitsync/internal/utils/path"
)

const (
	commandUseConstant                      = "commit-log"
	commandShortDescriptionConstant         = "Show commit history for one or more repositories"
	commandLongDescriptionConstant          = "commit-log prints commit history filtered by author, date range, and branch, for a single repository or a scanned set."
	unexpectedArgumentsMessageConstant      = "commit-log does not accept positional arguments"
	flagRepositoryNameConstant              = "repo"
	flagRepositoryDescriptionConstant       = "Repository path to inspect (repeatable)"
	flagScanNameConstant                    = "scan-repos"
	flagScanDescriptionConstant             = "Scan the base directory for repositories instead of naming them"
	flagBaseDirectoryNameConstant           = "base-dir"
	flagBaseDirectoryDescriptionConstant    = "Base directory for repository scanning"
	flagScanDepthNameConstant               = "scan-depth"
	flagScanDepthDescriptionConstant        = "Maximum directory depth examined during scanning"
	flagAuthorNameConstant                  = "author"
	flagAuthorDescriptionConstant           = "Restrict history to commits by this author name or email"
	flagSinceNameConstant                   = "since"
	flagSinceDescriptionConstant            = "Include commits on or after this date (YYYY-MM-DD)"
	flagUntilNameConstant                   = "until"
	flagUntilDescriptionConstant            = "Include commits on or before this date (YYYY-MM-DD)"
	flagBranchNameConstant                  = "branch"
	flagBranchDescriptionConstant           = "Inspect this branch instead of the current one"
	flagAllBranchesNameConstant             = "all-branches"
	flagAllBranchesDescriptionConstant      = "Inspect commits on every branch"
	flagMaxCountNameConstant                = "max-count"
	flagMaxCountDescriptionConstant         = "Maximum number of commits to show per repository"
	flagFormatNameConstant                  = "format"
	flagFormatDescriptionConstant           = "Output format: detailed, simple, oneline, or json"
	flagFilesNameConstant                   = "files"
	flagFilesDescriptionConstant            = "Include the changed file list for every commit"
	flagStatOnlyNameConstant                = "stat-only"
	flagStatOnlyDescriptionConstant         = "Show aggregate statistics without individual commits"
	unknownFormatTemplateConstant           = "unknown output format %q"
	noRepositoriesFoundTemplateConstant     = "no repositories found under %s"
	noEnclosingRepositoryMessageConstant    = "no git repository found at or above the current directory"
	workingDirectoryFailureTemplateConstant = "unable to determine working directory: %w"
	repositoryMissingTemplateConstant       = "repository path does not exist: %s"
	sinceDateLayoutConstant                 = "2006-01-02"
	defaultSinceDaysConstant                = 7
	defaultScanDepthConstant                = 2
	defaultBaseDirectoryConstant            = "."
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the configuration backing the command flags.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the Cobra command for commit history queries.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	GitExecutor           shared.GitExecutor
	Discoverer            shared.RepositoryDiscoverer
	FileSystem            shared.FileSystem
	WorkingDirectory      string
	TimeSource            func() time.Time
}

// Build constructs the commit-log command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	configuration := builder.resolveConfiguration()

	command.Flags().StringArray(flagRepositoryNameConstant, nil, flagRepositoryDescriptionConstant)
	command.Flags().Bool(flagScanNameConstant, false, flagScanDescriptionConstant)
	command.Flags().String(flagBaseDirectoryNameConstant, defaultBaseDirectoryConstant, flagBaseDirectoryDescriptionConstant)
	command.Flags().Int(flagScanDepthNameConstant, configuration.ScanDepth, flagScanDepthDescriptionConstant)
	command.Flags().String(flagAuthorNameConstant, configuration.Author, flagAuthorDescriptionConstant)
	command.Flags().String(flagSinceNameConstant, "", flagSinceDescriptionConstant)
	command.Flags().String(flagUntilNameConstant, "", flagUntilDescriptionConstant)
	command.Flags().String(flagBranchNameConstant, "", flagBranchDescriptionConstant)
	command.Flags().Bool(flagAllBranchesNameConstant, false, flagAllBranchesDescriptionConstant)
	command.Flags().Int(flagMaxCountNameConstant, configuration.MaximumCount, flagMaxCountDescriptionConstant)
	command.Flags().String(flagFormatNameConstant, configuration.Format, flagFormatDescriptionConstant)
	command.Flags().Bool(flagFilesNameConstant, false, flagFilesDescriptionConstant)
	command.Flags().Bool(flagStatOnlyNameConstant, false, flagStatOnlyDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	queryOptions, formatName, statisticsOnly, queryError := builder.parseQueryOptions(command)
	if queryError != nil {
		return queryError
	}

	logger := builder.resolveLogger()

	gitExecutor, executorError := dependencies.ResolveGitExecutor(builder.GitExecutor, logger, execshell.ExecutorOptions{})
	if executorError != nil {
		return executorError
	}

	service, serviceError := NewService(gitExecutor, logger)
	if serviceError != nil {
		return serviceError
	}

	repositoryPaths, resolutionError := builder.resolveRepositories(command, logger)
	if resolutionError != nil {
		return resolutionError
	}

	collectedCommits := []CommitRecord{}
	for _, repositoryPath := range repositoryPaths {
		repositoryCommits, listError := service.ListCommits(command.Context(), repositoryPath, queryOptions)
		if listError != nil {
			return listError
		}
		collectedCommits = append(collectedCommits, repositoryCommits...)
	}
	SortCommitsByDateDescending(collectedCommits)

	outputWriter := command.OutOrStdout()
	if statisticsOnly {
		RenderStatistics(outputWriter, CollectStatistics(collectedCommits))
		return nil
	}

	if renderError := RenderCommits(outputWriter, collectedCommits, formatName); renderError != nil {
		return renderError
	}
	if formatName == formatDetailedConstant || formatName == formatSimpleConstant {
		RenderStatistics(outputWriter, CollectStatistics(collectedCommits))
	}
	return nil
}

func (builder *CommandBuilder) parseQueryOptions(command *cobra.Command) (QueryOptions, string, bool, error) {
	configuration := builder.resolveConfiguration()

	authorValue, _ := command.Flags().GetString(flagAuthorNameConstant)
	sinceValue, _ := command.Flags().GetString(flagSinceNameConstant)
	untilValue, _ := command.Flags().GetString(flagUntilNameConstant)
	branchValue, _ := command.Flags().GetString(flagBranchNameConstant)
	allBranchesValue, _ := command.Flags().GetBool(flagAllBranchesNameConstant)
	maximumCountValue, _ := command.Flags().GetInt(flagMaxCountNameConstant)
	formatValue, _ := command.Flags().GetString(flagFormatNameConstant)
	includeFilesValue, _ := command.Flags().GetBool(flagFilesNameConstant)
	statisticsOnlyValue, _ := command.Flags().GetBool(flagStatOnlyNameConstant)

	trimmedSince := strings.TrimSpace(sinceValue)
	if len(trimmedSince) == 0 {
		sinceDays := configuration.SinceDays
		if sinceDays <= 0 {
			sinceDays = defaultSinceDaysConstant
		}
		trimmedSince = builder.resolveNow().AddDate(0, 0, -sinceDays).Format(sinceDateLayoutConstant)
	}

	trimmedFormat := strings.TrimSpace(formatValue)
	if len(trimmedFormat) == 0 {
		trimmedFormat = formatDetailedConstant
	}
	switch trimmedFormat {
	case formatDetailedConstant, formatSimpleConstant, formatOnelineConstant, formatJSONConstant:
	default:
		return QueryOptions{}, "", false, fmt.Errorf(unknownFormatTemplateConstant, trimmedFormat)
	}

	queryOptions := QueryOptions{
		Author:       strings.TrimSpace(authorValue),
		Since:        trimmedSince,
		Until:        strings.TrimSpace(untilValue),
		Branch:       strings.TrimSpace(branchValue),
		AllBranches:  allBranchesValue,
		MaximumCount: maximumCountValue,
		IncludeFiles: includeFilesValue,
	}

	return queryOptions, trimmedFormat, statisticsOnlyValue, nil
}

func (builder *CommandBuilder) resolveRepositories(command *cobra.Command, logger *zap.Logger) ([]string, error) {
	discoverer := dependencies.ResolveRepositoryDiscoverer(builder.Discoverer, logger)
	fileSystem := dependencies.ResolveFileSystem(builder.FileSystem)

	scanValue, _ := command.Flags().GetBool(flagScanNameConstant)
	if scanValue {
		baseDirectoryValue, _ := command.Flags().GetString(flagBaseDirectoryNameConstant)
		trimmedBaseDirectory := strings.TrimSpace(baseDirectoryValue)
		if len(trimmedBaseDirectory) == 0 {
			trimmedBaseDirectory = defaultBaseDirectoryConstant
		}
		scanDepthValue, _ := command.Flags().GetInt(flagScanDepthNameConstant)
		if scanDepthValue <= 0 {
			scanDepthValue = defaultScanDepthConstant
		}

		discoveredPaths := discoverer.ScanForRepositories(trimmedBaseDirectory, scanDepthValue)
		if len(discoveredPaths) == 0 {
			return nil, fmt.Errorf(noRepositoriesFoundTemplateConstant, trimmedBaseDirectory)
		}
		return discoveredPaths, nil
	}

	repositoryValues, _ := command.Flags().GetStringArray(flagRepositoryNameConstant)
	sanitizedPaths := pathutils.NewRepositoryPathSanitizer().Sanitize(repositoryValues)
	if len(sanitizedPaths) > 0 {
		resolvedPaths := make([]string, 0, len(sanitizedPaths))
		for _, candidatePath := range sanitizedPaths {
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

func (builder *CommandBuilder) resolveNow() time.Time {
	if builder.TimeSource == nil {
		return time.Now()
	}
	return builder.TimeSource()
}
