package commitlog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gitsync/internal/execshell"
	"github.com/temirov/gitsync/internal/repos/shared"
)

const (
	gitExecutorMissingMessageConstant  = "git executor not configured"
	gitLogSubcommandConstant           = "log"
	gitLogPrettyFormatConstant         = "--pretty=format:%H|%an|%ae|%ad|%s"
	gitLogDateFormatConstant           = "--date=iso"
	gitLogAuthorFlagConstant           = "--author"
	gitLogSinceFlagTemplateConstant    = "--since=%s"
	gitLogUntilFlagTemplateConstant    = "--until=%s"
	gitLogAllBranchesFlagConstant      = "--all"
	gitLogMaxCountFlagConstant         = "-n"
	gitShowSubcommandConstant          = "show"
	gitShowEmptyPrettyFlagConstant     = "--pretty="
	gitShowNameStatusFlagConstant      = "--name-status"
	logFieldSeparatorConstant          = "|"
	logFieldCountConstant              = 5
	abbreviatedHashLengthConstant      = 8
	fileStatusSeparatorConstant        = "\t"
	commitQueryFailureTemplateConstant = "commit query failed: %w"
	logFieldRepositoryConstant         = "repository"
	logFieldCommitConstant             = "commit"
	fileListFailureLogMessageConstant  = "failed to list changed files for commit"
)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// CommitRecord describes one commit returned by a history query.
type CommitRecord struct {
	Hash        string       `json:"hash"`
	FullHash    string       `json:"full_hash"`
	AuthorName  string       `json:"author_name"`
	AuthorEmail string       `json:"author_email"`
	Date        string       `json:"date"`
	Message     string       `json:"message"`
	Repository  string       `json:"repository"`
	Files       []FileChange `json:"files,omitempty"`
}

// FileChange describes one path touched by a commit.
type FileChange struct {
	Status string `json:"status"`
	Path   string `json:"path"`
}

// QueryOptions constrain which commits a history query returns.
type QueryOptions struct {
	Author       string
	Since        string
	Until        string
	Branch       string
	AllBranches  bool
	MaximumCount int
	IncludeFiles bool
}

// Statistics aggregates commit counts across a result set.
type Statistics struct {
	CommitsByAuthor  map[string]int
	CommitsByDate    map[string]int
	TotalFileChanges int
}

// Service queries commit history through a shell-backed git executor.
type Service struct {
	gitExecutor shared.GitExecutor
	logger      *zap.Logger
}

// NewService constructs a Service from the provided executor and logger.
func NewService(gitExecutor shared.GitExecutor, logger *zap.Logger) (*Service, error) {
	if gitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{gitExecutor: gitExecutor, logger: logger}, nil
}

// ListCommits returns the commits of the repository matching the query options.
func (service *Service) ListCommits(executionContext context.Context, repositoryPath string, options QueryOptions) ([]CommitRecord, error) {
	logResult, logError := service.executeGit(executionContext, repositoryPath, buildLogArguments(options)...)
	if logError != nil {
		return nil, fmt.Errorf(commitQueryFailureTemplateConstant, logError)
	}

	commits := parseLogOutput(logResult.StandardOutput, filepath.Base(repositoryPath))
	if !options.IncludeFiles {
		return commits, nil
	}

	for commitIndex := range commits {
		changedFiles, fileError := service.listChangedFiles(executionContext, repositoryPath, commits[commitIndex].FullHash)
		if fileError != nil {
			service.logger.Warn(
				fileListFailureLogMessageConstant,
				zap.String(logFieldRepositoryConstant, repositoryPath),
				zap.String(logFieldCommitConstant, commits[commitIndex].FullHash),
				zap.Error(fileError),
			)
			continue
		}
		commits[commitIndex].Files = changedFiles
	}
	return commits, nil
}

func (service *Service) listChangedFiles(executionContext context.Context, repositoryPath string, commitHash string) ([]FileChange, error) {
	showResult, showError := service.executeGit(executionContext, repositoryPath, gitShowSubcommandConstant, gitShowEmptyPrettyFlagConstant, gitShowNameStatusFlagConstant, commitHash)
	if showError != nil {
		return nil, showError
	}

	changedFiles := []FileChange{}
	for _, outputLine := range strings.Split(strings.TrimSpace(showResult.StandardOutput), "\n") {
		statusAndPath := strings.SplitN(outputLine, fileStatusSeparatorConstant, 2)
		if len(statusAndPath) != 2 {
			continue
		}
		changedFiles = append(changedFiles, FileChange{Status: statusAndPath[0], Path: statusAndPath[1]})
	}
	return changedFiles, nil
}

func (service *Service) executeGit(executionContext context.Context, repositoryPath string, arguments ...string) (execshell.ExecutionResult, error) {
	return service.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: repositoryPath,
	})
}

func buildLogArguments(options QueryOptions) []string {
	logArguments := []string{gitLogSubcommandConstant, gitLogPrettyFormatConstant, gitLogDateFormatConstant}

	if len(options.Author) > 0 {
		logArguments = append(logArguments, gitLogAuthorFlagConstant, options.Author)
	}
	if len(options.Since) > 0 {
		logArguments = append(logArguments, fmt.Sprintf(gitLogSinceFlagTemplateConstant, options.Since))
	}
	if len(options.Until) > 0 {
		logArguments = append(logArguments, fmt.Sprintf(gitLogUntilFlagTemplateConstant, options.Until))
	}
	if options.AllBranches {
		logArguments = append(logArguments, gitLogAllBranchesFlagConstant)
	} else if len(options.Branch) > 0 {
		logArguments = append(logArguments, options.Branch)
	}
	if options.MaximumCount > 0 {
		logArguments = append(logArguments, gitLogMaxCountFlagConstant, fmt.Sprintf("%d", options.MaximumCount))
	}

	return logArguments
}

func parseLogOutput(logOutput string, repositoryName string) []CommitRecord {
	commits := []CommitRecord{}
	for _, outputLine := range strings.Split(strings.TrimSpace(logOutput), "\n") {
		commitFields := strings.SplitN(outputLine, logFieldSeparatorConstant, logFieldCountConstant)
		if len(commitFields) != logFieldCountConstant {
			continue
		}

		fullHash := commitFields[0]
		abbreviatedHash := fullHash
		if len(abbreviatedHash) > abbreviatedHashLengthConstant {
			abbreviatedHash = abbreviatedHash[:abbreviatedHashLengthConstant]
		}

		commits = append(commits, CommitRecord{
			Hash:        abbreviatedHash,
			FullHash:    fullHash,
			AuthorName:  commitFields[1],
			AuthorEmail: commitFields[2],
			Date:        commitFields[3],
			Message:     commitFields[4],
			Repository:  repositoryName,
		})
	}
	return commits
}

// CollectStatistics aggregates per-author and per-day commit counts.
func CollectStatistics(commits []CommitRecord) Statistics {
	statistics := Statistics{
		CommitsByAuthor: map[string]int{},
		CommitsByDate:   map[string]int{},
	}
	for _, commit := range commits {
		statistics.CommitsByAuthor[commit.AuthorName]++
		if len(commit.Date) >= 10 {
			statistics.CommitsByDate[commit.Date[:10]]++
		}
		statistics.TotalFileChanges += len(commit.Files)
	}
	return statistics
}

// SortCommitsByDateDescending orders commits newest first.
//
// Useful when merging results from several repositories into one view.
func SortCommitsByDateDescending(commits []CommitRecord) {
	sort.SliceStable(commits, func(firstIndex int, secondIndex int) bool {
		return commits[firstIndex].Date > commits[secondIndex].Date
	})
}
