package tests

import (
	"encoding/json"
	"testing"
)

type commitPayload struct {
	Hash       string `json:"hash"`
	AuthorName string `json:"author_name"`
	Message    string `json:"message"`
	Repository string `json:"repository"`
}

func TestCommitLogListsFixtureCommits(testInstance *testing.T) {
	if testing.Short() {
		testInstance.Skip("integration test skipped in short mode")
	}

	_, clonePath := createFixtureRepositories(testInstance)

	output, runError := runCLI(testInstance, "commit-log", "--repo", clonePath, "--all-branches", "--since", "2000-01-01", "--format", "json")
	if runError != nil {
		testInstance.Fatalf("commit-log failed: %v\n%s", runError, output)
	}

	commits := []commitPayload{}
	if decodeError := json.Unmarshal([]byte(output), &commits); decodeError != nil {
		testInstance.Fatalf("unable to decode commits: %v\n%s", decodeError, output)
	}
	if len(commits) < 2 {
		testInstance.Fatalf("expected at least two commits, got %d", len(commits))
	}
	for _, commit := range commits {
		if commit.AuthorName != fixtureUserNameConstant {
			testInstance.Fatalf("unexpected author %q", commit.AuthorName)
		}
		if commit.Repository != "clone" {
			testInstance.Fatalf("unexpected repository %q", commit.Repository)
		}
	}
}
