package sync

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gitsync/internal/gitrepo"
	"github.com/temirov/gitsync/internal/repos/shared"
)

const (
	repositoryManagerMissingMessageConstant = "repository manager not configured"
	branchNameRequiredMessageConstant       = "branch name must be provided"
	invalidRepositoryMessageConstant        = "not a valid git repository"
	uncommittedChangesMessageConstant       = "uncommitted local changes present"
	uncommittedChangesSuggestionConstant    = "retry with --force to discard them, or commit/stash the changes first"
	fetchFailureTemplateConstant            = "fetch failed: %s"
	fetchFailureSuggestionConstant          = "check network connectivity or pass --no-fetch to reuse local data"
	resetFailureTemplateConstant            = "reset failed: %s"
	missingBranchTemplateConstant           = "branch %q does not exist locally or on the remote"
	missingBranchSuggestionConstant         = "verify the branch name is correct"
	checkoutFailureTemplateConstant         = "checkout failed: %s"
	resetToRemoteFailureTemplateConstant    = "reset to remote branch failed: %s"
	divergedMessageConstant                 = "local and remote branches have diverged"
	divergedSuggestionConstant              = "retry with --force to reset to the remote state"
	pullFailureTemplateConstant             = "pull failed: %s"
	alreadyOnBranchMessageConstant          = "already on target branch, updated to latest"
	switchedBranchMessageTemplateConstant   = "switched and updated (%s -> %s)"
	pendingChangesHeaderConstant            = "Uncommitted files:"
	modifiedExampleLineTemplateConstant     = "  M %s"
	untrackedExampleLineTemplateConstant    = "  ?? %s"
	truncatedChangesNoteTemplateConstant    = "  ... and %d more files"
	maximumExamplePathsPerKindConstant      = 5
	divergedFailureFragmentConstant         = "diverged"
	conflictFailureFragmentConstant         = "conflict"
	cleanFailureLogMessageConstant          = "failed to remove untracked files"
	logFieldRepositoryConstant              = "repository"
	gitHeadReferenceConstant                = "HEAD"
)

// ErrRepositoryManagerNotConfigured indicates the repository manager dependency was missing.
var ErrRepositoryManagerNotConfigured = errors.New(repositoryManagerMissingMessageConstant)

// ErrBranchNameRequired indicates the target branch option was empty.
var ErrBranchNameRequired = errors.New(branchNameRequiredMessageConstant)

// RepositoryManager exposes the git operations the synchronizer composes.
type RepositoryManager interface {
	GetRepositoryStatus(executionContext context.Context, repositoryPath string) gitrepo.RepositoryStatus
	BranchExists(executionContext context.Context, repositoryPath string, branchName string, remoteName string) gitrepo.BranchExistence
	Fetch(executionContext context.Context, repositoryPath string, remoteName string, prune bool) error
	CleanUntrackedFiles(executionContext context.Context, repositoryPath string) error
	ResetHard(executionContext context.Context, repositoryPath string, reference string) error
	CheckoutBranch(executionContext context.Context, repositoryPath string, branchName string) error
	CreateTrackingBranch(executionContext context.Context, repositoryPath string, branchName string, remoteName string) error
	Pull(executionContext context.Context, repositoryPath string, remoteName string, branchName string) error
}

// Dependencies enumerates external collaborators required by the synchronizer.
type Dependencies struct {
	RepositoryManager RepositoryManager
	Logger            *zap.Logger
}

// Options configures a synchronization attempt shared across repositories.
type Options struct {
	BranchName string
	RemoteName string
	Force      bool
	Prune      bool
	SkipFetch  bool
}

// Service drives a repository to a clean state on the target branch.
type Service struct {
	repositoryManager RepositoryManager
	logger            *zap.Logger
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.RepositoryManager == nil {
		return nil, ErrRepositoryManagerNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repositoryManager: dependencies.RepositoryManager, logger: logger}, nil
}

// Sync brings the repository at repositoryPath onto the target branch.
//
// Every terminal path returns a fully populated SyncOutcome; failures never
// propagate as errors so one repository cannot abort a batch. No destructive
// operation runs against a dirty tree unless Force was requested.
func (service *Service) Sync(executionContext context.Context, repositoryPath string, options Options) SyncOutcome {
	remoteName := strings.TrimSpace(options.RemoteName)
	if len(remoteName) == 0 {
		remoteName = shared.OriginRemoteNameConstant
	}

	outcome := SyncOutcome{
		Repository:     repositoryPath,
		RepositoryName: filepath.Base(repositoryPath),
		ToBranch:       options.BranchName,
		Forced:         options.Force,
	}

	repositoryStatus := service.repositoryManager.GetRepositoryStatus(executionContext, repositoryPath)
	if !repositoryStatus.IsValid {
		outcome.Error = invalidRepositoryMessageConstant
		return outcome
	}
	outcome.FromBranch = repositoryStatus.CurrentBranch

	if repositoryStatus.HasChanges() && !options.Force {
		outcome.Error = uncommittedChangesMessageConstant
		outcome.Suggestion = uncommittedChangesSuggestionConstant
		outcome.Message = formatPendingChanges(repositoryStatus)
		return outcome
	}

	if !options.SkipFetch {
		if fetchError := service.repositoryManager.Fetch(executionContext, repositoryPath, remoteName, options.Prune); fetchError != nil {
			outcome.Error = fmt.Sprintf(fetchFailureTemplateConstant, fetchError)
			outcome.Suggestion = fetchFailureSuggestionConstant
			return outcome
		}
	}

	if options.Force && repositoryStatus.HasChanges() {
		if cleanError := service.repositoryManager.CleanUntrackedFiles(executionContext, repositoryPath); cleanError != nil {
			// Best effort: a failed clean is not fatal, the reset below still runs.
			service.logger.Warn(
				cleanFailureLogMessageConstant,
				zap.String(logFieldRepositoryConstant, repositoryPath),
				zap.Error(cleanError),
			)
		}
		if resetError := service.repositoryManager.ResetHard(executionContext, repositoryPath, gitHeadReferenceConstant); resetError != nil {
			outcome.Error = fmt.Sprintf(resetFailureTemplateConstant, resetError)
			return outcome
		}
	}

	branchExistence := service.repositoryManager.BranchExists(executionContext, repositoryPath, options.BranchName, remoteName)
	if !branchExistence.LocalExists && !branchExistence.RemoteExists {
		outcome.Error = fmt.Sprintf(missingBranchTemplateConstant, options.BranchName)
		outcome.Suggestion = missingBranchSuggestionConstant
		return outcome
	}

	var checkoutError error
	if branchExistence.LocalExists {
		checkoutError = service.repositoryManager.CheckoutBranch(executionContext, repositoryPath, options.BranchName)
	} else {
		checkoutError = service.repositoryManager.CreateTrackingBranch(executionContext, repositoryPath, options.BranchName, remoteName)
	}
	if checkoutError != nil {
		outcome.Error = fmt.Sprintf(checkoutFailureTemplateConstant, checkoutError)
		return outcome
	}

	if options.Force {
		remoteReference := remoteName + "/" + options.BranchName
		if resetError := service.repositoryManager.ResetHard(executionContext, repositoryPath, remoteReference); resetError != nil {
			outcome.Error = fmt.Sprintf(resetToRemoteFailureTemplateConstant, resetError)
			return outcome
		}
	} else {
		if pullError := service.repositoryManager.Pull(executionContext, repositoryPath, remoteName, options.BranchName); pullError != nil {
			if indicatesDivergence(pullError) {
				outcome.Error = divergedMessageConstant
				outcome.Suggestion = divergedSuggestionConstant
				return outcome
			}
			outcome.Error = fmt.Sprintf(pullFailureTemplateConstant, pullError)
			return outcome
		}
	}

	outcome.Success = true
	if outcome.FromBranch == options.BranchName {
		outcome.Message = alreadyOnBranchMessageConstant
	} else {
		outcome.Message = fmt.Sprintf(switchedBranchMessageTemplateConstant, outcome.FromBranch, options.BranchName)
	}
	return outcome
}

// indicatesDivergence inspects a pull failure for divergence markers.
//
// Text matching is a compatibility shim; git exposes no structured divergence
// signal through the pull exit status.
func indicatesDivergence(pullError error) bool {
	loweredFailureText := strings.ToLower(pullError.Error())
	return strings.Contains(loweredFailureText, divergedFailureFragmentConstant) ||
		strings.Contains(loweredFailureText, conflictFailureFragmentConstant)
}

// formatPendingChanges lists example paths blocking a non-forced sync.
func formatPendingChanges(repositoryStatus gitrepo.RepositoryStatus) string {
	exampleLines := make([]string, 0, 2*maximumExamplePathsPerKindConstant)
	for pathIndex, modifiedPath := range repositoryStatus.ModifiedFiles {
		if pathIndex == maximumExamplePathsPerKindConstant {
			break
		}
		exampleLines = append(exampleLines, fmt.Sprintf(modifiedExampleLineTemplateConstant, modifiedPath))
	}
	for pathIndex, untrackedPath := range repositoryStatus.UntrackedFiles {
		if pathIndex == maximumExamplePathsPerKindConstant {
			break
		}
		exampleLines = append(exampleLines, fmt.Sprintf(untrackedExampleLineTemplateConstant, untrackedPath))
	}

	messageLines := append([]string{pendingChangesHeaderConstant}, exampleLines...)
	hiddenCount := repositoryStatus.ChangeCount() - len(exampleLines)
	if hiddenCount > 0 {
		messageLines = append(messageLines, fmt.Sprintf(truncatedChangesNoteTemplateConstant, hiddenCount))
	}
	return strings.Join(messageLines, "\n")
}
