// Package dependencies provides default implementations for repository tooling collaborators.
package dependencies

import (
	"go.uber.org/zap"

	"github.com/temirov/gitsync/internal/execshell"
	"github.com/temirov/gitsync/internal/gitrepo"
	"github.com/temirov/gitsync/internal/repos/discovery"
	"github.com/temirov/gitsync/internal/repos/filesystem"
	"github.com/temirov/gitsync/internal/repos/shared"
	"github.com/temirov/gitsync/internal/ui"
)

// ResolveRepositoryDiscoverer returns the provided discoverer or a filesystem-backed default.
func ResolveRepositoryDiscoverer(existing shared.RepositoryDiscoverer, logger *zap.Logger) shared.RepositoryDiscoverer {
	if existing != nil {
		return existing
	}
	return discovery.NewFilesystemRepositoryDiscoverer(logger)
}

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing shared.FileSystem) shared.FileSystem {
	if existing != nil {
		return existing
	}
	return filesystem.OSFileSystem{}
}

// ResolveGitExecutor returns the provided executor or constructs a shell-backed default.
func ResolveGitExecutor(existing shared.GitExecutor, logger *zap.Logger, options execshell.ExecutorOptions) (shared.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	shellExecutor, creationError := execshell.NewShellExecutorWithOptions(logger, commandRunner, options)
	if creationError != nil {
		return nil, creationError
	}
	shellExecutor.SetCommandEventObserver(ui.NewConsoleCommandEventLogger(logger))
	return shellExecutor, nil
}

// ResolveRepositoryManager returns the provided repository manager or constructs one from the executor.
func ResolveRepositoryManager(existing *gitrepo.RepositoryManager, executor shared.GitExecutor) (*gitrepo.RepositoryManager, error) {
	if existing != nil {
		return existing, nil
	}
	return gitrepo.NewRepositoryManager(executor)
}
