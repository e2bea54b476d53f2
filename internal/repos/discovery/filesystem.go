package discovery

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const (
	gitMetadataDirectoryNameConstant  = ".git"
	hiddenDirectoryPrefixConstant     = "."
	maximumUpwardSearchLevelsConstant = 10
	directorySkippedMessageConstant   = "directory skipped during repository scan"
	logFieldDirectoryConstant         = "directory"
)

// FilesystemRepositoryDiscoverer locates git repositories on disk.
type FilesystemRepositoryDiscoverer struct {
	logger *zap.Logger
}

// NewFilesystemRepositoryDiscoverer constructs a repository discoverer backed by the operating system.
func NewFilesystemRepositoryDiscoverer(logger *zap.Logger) *FilesystemRepositoryDiscoverer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FilesystemRepositoryDiscoverer{logger: logger}
}

// FindEnclosingRepository walks ancestor directories of startDirectory looking for a repository root.
//
// The walk is bounded to ten levels including the starting directory.
func (discoverer *FilesystemRepositoryDiscoverer) FindEnclosingRepository(startDirectory string) (string, bool) {
	currentDirectory := startDirectory
	for levelIndex := 0; levelIndex < maximumUpwardSearchLevelsConstant; levelIndex++ {
		if containsGitMetadata(currentDirectory) {
			return currentDirectory, true
		}

		parentDirectory := filepath.Dir(currentDirectory)
		if parentDirectory == currentDirectory {
			break
		}
		currentDirectory = parentDirectory
	}
	return "", false
}

type scanWorkItem struct {
	directoryPath  string
	remainingDepth int
}

// ScanForRepositories visits subdirectories of baseDirectory up to maximumDepth levels.
//
// A directory containing git metadata is recorded as a repository root and its
// subtree is not descended into, so nested repositories are never reported.
// Hidden directories are skipped, and unreadable directories are logged and
// skipped without aborting the scan. Results preserve traversal order.
func (discoverer *FilesystemRepositoryDiscoverer) ScanForRepositories(baseDirectory string, maximumDepth int) []string {
	worklist := []scanWorkItem{{directoryPath: baseDirectory, remainingDepth: maximumDepth}}
	var repositories []string

	for len(worklist) > 0 {
		currentItem := worklist[0]
		worklist = worklist[1:]

		if containsGitMetadata(currentItem.directoryPath) {
			repositories = append(repositories, currentItem.directoryPath)
			continue
		}

		if currentItem.remainingDepth <= 0 {
			continue
		}

		directoryEntries, readError := os.ReadDir(currentItem.directoryPath)
		if readError != nil {
			discoverer.logger.Warn(
				directorySkippedMessageConstant,
				zap.String(logFieldDirectoryConstant, currentItem.directoryPath),
				zap.Error(readError),
			)
			continue
		}

		childItems := make([]scanWorkItem, 0, len(directoryEntries))
		for _, directoryEntry := range directoryEntries {
			if !directoryEntry.IsDir() {
				continue
			}
			if strings.HasPrefix(directoryEntry.Name(), hiddenDirectoryPrefixConstant) {
				continue
			}
			childItems = append(childItems, scanWorkItem{
				directoryPath:  filepath.Join(currentItem.directoryPath, directoryEntry.Name()),
				remainingDepth: currentItem.remainingDepth - 1,
			})
		}

		// Depth-first preorder keeps results in traversal order.
		worklist = append(childItems, worklist...)
	}

	return repositories
}

// containsGitMetadata reports whether the directory holds a .git entry.
//
// Both directories and files count since linked worktrees store a .git file.
func containsGitMetadata(directoryPath string) bool {
	_, statError := os.Stat(filepath.Join(directoryPath, gitMetadataDirectoryNameConstant))
	return statError == nil
}
