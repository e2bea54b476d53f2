package shared

import (
	"context"
	"io/fs"

	"github.com/temirov/gitsync/internal/execshell"
)

// OriginRemoteNameConstant identifies the default upstream remote.
const OriginRemoteNameConstant = "origin"

// FileSystem exposes filesystem operations required by repository services.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	Abs(path string) (string, error)
}

// GitExecutor exposes the subset of shell execution used by repository services.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryDiscoverer locates Git repositories for bulk operations.
type RepositoryDiscoverer interface {
	// FindEnclosingRepository walks ancestor directories looking for a repository root.
	FindEnclosingRepository(startDirectory string) (string, bool)
	// ScanForRepositories visits subdirectories of baseDirectory up to maximumDepth levels.
	ScanForRepositories(baseDirectory string, maximumDepth int) []string
}
