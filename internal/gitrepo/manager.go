package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/gitsync/internal/execshell"
	"github.com/temirov/gitsync/internal/repos/shared"
)

const (
	executorMissingMessageConstant              = "git executor not configured"
	gitRevParseSubcommandConstant               = "rev-parse"
	gitDirectoryFlagConstant                    = "--git-dir"
	gitAbbrevRefFlagConstant                    = "--abbrev-ref"
	gitVerifyFlagConstant                       = "--verify"
	gitHeadReferenceConstant                    = "HEAD"
	gitStatusSubcommandConstant                 = "status"
	gitStatusPorcelainFlagConstant              = "--porcelain"
	gitFetchSubcommandConstant                  = "fetch"
	gitFetchPruneFlagConstant                   = "--prune"
	gitCleanSubcommandConstant                  = "clean"
	gitCleanForceDirectoriesFlagConstant        = "-fd"
	gitResetSubcommandConstant                  = "reset"
	gitResetHardFlagConstant                    = "--hard"
	gitCheckoutSubcommandConstant               = "checkout"
	gitCheckoutNewBranchFlagConstant            = "-b"
	gitPullSubcommandConstant                   = "pull"
	remoteBranchReferenceTemplateConstant       = "%s/%s"
	gitTerminalPromptEnvironmentNameConstant    = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableConstant = "0"
)

// ErrExecutorNotConfigured indicates the git executor dependency was missing.
var ErrExecutorNotConfigured = errors.New(executorMissingMessageConstant)

// RepositoryManager performs repository-level git operations through a shell executor.
type RepositoryManager struct {
	executor shared.GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager from the provided executor.
func NewRepositoryManager(executor shared.GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// GetRepositoryStatus inspects the repository at repositoryPath.
//
// A path that git does not recognize as a working tree yields a status with
// IsValid false and no error; inspection itself has no side effects.
func (manager *RepositoryManager) GetRepositoryStatus(executionContext context.Context, repositoryPath string) RepositoryStatus {
	repositoryStatus := RepositoryStatus{}

	_, validityError := manager.executeGit(executionContext, repositoryPath, gitRevParseSubcommandConstant, gitDirectoryFlagConstant)
	if validityError != nil {
		return repositoryStatus
	}
	repositoryStatus.IsValid = true

	branchResult, branchError := manager.executeGit(executionContext, repositoryPath, gitRevParseSubcommandConstant, gitAbbrevRefFlagConstant, gitHeadReferenceConstant)
	if branchError == nil {
		branchName := strings.TrimSpace(branchResult.StandardOutput)
		if branchName == detachedHeadSymbolicRefConstant {
			repositoryStatus.IsDetached = true
			repositoryStatus.CurrentBranch = detachedHeadBranchLabelConstant
		} else {
			repositoryStatus.CurrentBranch = branchName
		}
	}

	statusResult, statusError := manager.executeGit(executionContext, repositoryPath, gitStatusSubcommandConstant, gitStatusPorcelainFlagConstant)
	if statusError == nil {
		repositoryStatus.ModifiedFiles, repositoryStatus.UntrackedFiles = classifyPorcelainOutput(statusResult.StandardOutput)
	}

	return repositoryStatus
}

// BranchExists reports local and remote existence of branchName in the repository.
func (manager *RepositoryManager) BranchExists(executionContext context.Context, repositoryPath string, branchName string, remoteName string) BranchExistence {
	existence := BranchExistence{}

	if _, localError := manager.executeGit(executionContext, repositoryPath, gitRevParseSubcommandConstant, gitVerifyFlagConstant, branchName); localError == nil {
		existence.LocalExists = true
	}

	remoteReference := fmt.Sprintf(remoteBranchReferenceTemplateConstant, remoteName, branchName)
	if _, remoteError := manager.executeGit(executionContext, repositoryPath, gitRevParseSubcommandConstant, gitVerifyFlagConstant, remoteReference); remoteError == nil {
		existence.RemoteExists = true
	}

	return existence
}

// Fetch retrieves updates from the named remote, optionally pruning stale remote references.
func (manager *RepositoryManager) Fetch(executionContext context.Context, repositoryPath string, remoteName string, prune bool) error {
	fetchArguments := []string{gitFetchSubcommandConstant, remoteName}
	if prune {
		fetchArguments = append(fetchArguments, gitFetchPruneFlagConstant)
	}
	_, fetchError := manager.executeGit(executionContext, repositoryPath, fetchArguments...)
	return fetchError
}

// CleanUntrackedFiles removes untracked files and directories from the working tree.
func (manager *RepositoryManager) CleanUntrackedFiles(executionContext context.Context, repositoryPath string) error {
	_, cleanError := manager.executeGit(executionContext, repositoryPath, gitCleanSubcommandConstant, gitCleanForceDirectoriesFlagConstant)
	return cleanError
}

// ResetHard discards working tree differences by resetting to the supplied reference.
func (manager *RepositoryManager) ResetHard(executionContext context.Context, repositoryPath string, reference string) error {
	_, resetError := manager.executeGit(executionContext, repositoryPath, gitResetSubcommandConstant, gitResetHardFlagConstant, reference)
	return resetError
}

// CheckoutBranch switches the working tree to an existing local branch.
func (manager *RepositoryManager) CheckoutBranch(executionContext context.Context, repositoryPath string, branchName string) error {
	_, checkoutError := manager.executeGit(executionContext, repositoryPath, gitCheckoutSubcommandConstant, branchName)
	return checkoutError
}

// CreateTrackingBranch creates a local branch tracking the remote branch of the same name.
func (manager *RepositoryManager) CreateTrackingBranch(executionContext context.Context, repositoryPath string, branchName string, remoteName string) error {
	remoteReference := fmt.Sprintf(remoteBranchReferenceTemplateConstant, remoteName, branchName)
	_, checkoutError := manager.executeGit(executionContext, repositoryPath, gitCheckoutSubcommandConstant, gitCheckoutNewBranchFlagConstant, branchName, remoteReference)
	return checkoutError
}

// Pull integrates the latest changes for branchName from the named remote.
func (manager *RepositoryManager) Pull(executionContext context.Context, repositoryPath string, remoteName string, branchName string) error {
	_, pullError := manager.executeGit(executionContext, repositoryPath, gitPullSubcommandConstant, remoteName, branchName)
	return pullError
}

func (manager *RepositoryManager) executeGit(executionContext context.Context, repositoryPath string, arguments ...string) (execshell.ExecutionResult, error) {
	return manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: repositoryPath,
		EnvironmentVariables: map[string]string{
			gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentDisableConstant,
		},
	})
}
