package gitrepo

import "strings"

const (
	untrackedStatusPrefixConstant   = "??"
	modifiedStatusMarkerConstant    = 'M'
	porcelainPathOffsetConstant     = 3
	detachedHeadBranchLabelConstant = "(detached HEAD)"
	detachedHeadSymbolicRefConstant = "HEAD"
)

// RepositoryStatus describes a working tree at the moment it was inspected.
//
// Statuses are never cached; every inquiry re-queries git because external
// state changes between calls.
type RepositoryStatus struct {
	IsValid        bool
	CurrentBranch  string
	IsDetached     bool
	ModifiedFiles  []string
	UntrackedFiles []string
}

// HasChanges reports whether the working tree holds modified or untracked files.
func (status RepositoryStatus) HasChanges() bool {
	return len(status.ModifiedFiles) > 0 || len(status.UntrackedFiles) > 0
}

// ChangeCount returns the total number of pending working tree entries.
func (status RepositoryStatus) ChangeCount() int {
	return len(status.ModifiedFiles) + len(status.UntrackedFiles)
}

// BranchExistence captures local and remote existence of a branch at one point in time.
type BranchExistence struct {
	LocalExists  bool
	RemoteExists bool
}

// classifyPorcelainOutput splits machine-readable status lines into modified and untracked paths.
func classifyPorcelainOutput(porcelainOutput string) (modifiedFiles []string, untrackedFiles []string) {
	for _, statusLine := range strings.Split(porcelainOutput, "\n") {
		if len(statusLine) <= porcelainPathOffsetConstant {
			continue
		}

		entryPath := statusLine[porcelainPathOffsetConstant:]
		switch {
		case strings.HasPrefix(statusLine, untrackedStatusPrefixConstant):
			untrackedFiles = append(untrackedFiles, entryPath)
		// The marker may sit in either column, so staged-then-edited lines
		// such as "AM" count as modified alongside " M" and "M ".
		case statusLine[0] == modifiedStatusMarkerConstant || statusLine[1] == modifiedStatusMarkerConstant:
			modifiedFiles = append(modifiedFiles, entryPath)
		}
	}
	return modifiedFiles, untrackedFiles
}
