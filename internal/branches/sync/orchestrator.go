package sync

import (
	"context"
	"errors"

	"github.com/temirov/gitsync/internal/gitrepo"
)

const syncServiceMissingMessageConstant = "sync service not configured"

// ErrSyncServiceNotConfigured indicates the orchestrator was built without a synchronizer.
var ErrSyncServiceNotConfigured = errors.New(syncServiceMissingMessageConstant)

// Synchronizer abstracts the per-repository sync operation for orchestration.
type Synchronizer interface {
	Sync(executionContext context.Context, repositoryPath string, options Options) SyncOutcome
}

// StatusInspector supplies the pre-sync status shown before each attempt.
type StatusInspector interface {
	GetRepositoryStatus(executionContext context.Context, repositoryPath string) gitrepo.RepositoryStatus
}

// Orchestrator applies the synchronizer to a set of repositories sequentially.
//
// Repositories are processed in the order supplied; a repository is never
// started before the previous outcome is recorded, and one repository's
// failure never prevents processing of the rest.
type Orchestrator struct {
	synchronizer Synchronizer
	inspector    StatusInspector
	reporter     ProgressReporter
}

// NewOrchestrator constructs an Orchestrator around the provided synchronizer.
func NewOrchestrator(synchronizer Synchronizer, inspector StatusInspector, reporter ProgressReporter) (*Orchestrator, error) {
	if synchronizer == nil {
		return nil, ErrSyncServiceNotConfigured
	}
	if reporter == nil {
		reporter = NoopProgressReporter{}
	}
	return &Orchestrator{synchronizer: synchronizer, inspector: inspector, reporter: reporter}, nil
}

// SyncRepositories synchronizes every repository and aggregates the outcomes.
func (orchestrator *Orchestrator) SyncRepositories(executionContext context.Context, repositoryPaths []string, options Options) BatchSummary {
	summary := BatchSummary{Total: len(repositoryPaths)}

	orchestrator.reporter.BatchStarted(len(repositoryPaths), options)

	for repositoryIndex, repositoryPath := range repositoryPaths {
		if orchestrator.inspector != nil {
			preSyncStatus := orchestrator.inspector.GetRepositoryStatus(executionContext, repositoryPath)
			orchestrator.reporter.RepositoryStarted(repositoryPath, repositoryIndex+1, len(repositoryPaths), preSyncStatus, options)
		}

		outcome := orchestrator.synchronizer.Sync(executionContext, repositoryPath, options)
		summary.Results = append(summary.Results, outcome)

		if outcome.Success {
			summary.Succeeded++
		} else {
			summary.Failed++
		}

		orchestrator.reporter.RepositoryCompleted(outcome)
	}

	summary.Success = summary.Failed == 0
	orchestrator.reporter.BatchCompleted(summary)
	return summary
}
