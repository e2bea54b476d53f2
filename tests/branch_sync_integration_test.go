package tests

import (
	"encoding/json"
	"strings"
	"testing"
)

type syncOutcomePayload struct {
	Repository string `json:"repo"`
	Success    bool   `json:"success"`
	FromBranch string `json:"from_branch"`
	ToBranch   string `json:"to_branch"`
	Forced     bool   `json:"forced"`
	Message    string `json:"message"`
	Error      string `json:"error"`
	Suggestion string `json:"suggestion"`
}

type batchSummaryPayload struct {
	Success   bool                 `json:"success"`
	Total     int                  `json:"total"`
	Succeeded int                  `json:"succeeded"`
	Failed    int                  `json:"failed"`
	Results   []syncOutcomePayload `json:"results"`
}

func decodeSummary(testInstance *testing.T, rawOutput string) batchSummaryPayload {
	testInstance.Helper()

	jsonStart := strings.Index(rawOutput, "{")
	jsonEnd := strings.LastIndex(rawOutput, "}")
	if jsonStart < 0 || jsonEnd < jsonStart {
		testInstance.Fatalf("no JSON summary found in output:\n%s", rawOutput)
	}

	summary := batchSummaryPayload{}
	if decodeError := json.Unmarshal([]byte(rawOutput[jsonStart:jsonEnd+1]), &summary); decodeError != nil {
		testInstance.Fatalf("unable to decode summary: %v\n%s", decodeError, rawOutput)
	}
	return summary
}

func TestBranchSyncCreatesTrackingBranch(testInstance *testing.T) {
	if testing.Short() {
		testInstance.Skip("integration test skipped in short mode")
	}

	_, clonePath := createFixtureRepositories(testInstance)

	output, runError := runCLI(testInstance, "branch-sync", "--branch", "develop", "--repo", clonePath, "--json")
	if runError != nil {
		testInstance.Fatalf("branch-sync failed: %v\n%s", runError, output)
	}

	summary := decodeSummary(testInstance, output)
	if !summary.Success || summary.Succeeded != 1 {
		testInstance.Fatalf("expected successful summary, got %+v", summary)
	}
	if summary.Results[0].FromBranch != "main" || summary.Results[0].ToBranch != "develop" {
		testInstance.Fatalf("unexpected branch transition: %+v", summary.Results[0])
	}

	currentBranch := strings.TrimSpace(runGit(testInstance, clonePath, "rev-parse", "--abbrev-ref", "HEAD"))
	if currentBranch != "develop" {
		testInstance.Fatalf("expected clone on develop, got %s", currentBranch)
	}
}

func TestBranchSyncIsIdempotent(testInstance *testing.T) {
	if testing.Short() {
		testInstance.Skip("integration test skipped in short mode")
	}

	_, clonePath := createFixtureRepositories(testInstance)

	firstOutput, firstError := runCLI(testInstance, "branch-sync", "--branch", "develop", "--repo", clonePath, "--json")
	if firstError != nil {
		testInstance.Fatalf("initial branch-sync failed: %v\n%s", firstError, firstOutput)
	}

	secondOutput, secondError := runCLI(testInstance, "branch-sync", "--branch", "develop", "--repo", clonePath, "--json")
	if secondError != nil {
		testInstance.Fatalf("repeat branch-sync failed: %v\n%s", secondError, secondOutput)
	}

	summary := decodeSummary(testInstance, secondOutput)
	if !summary.Success {
		testInstance.Fatalf("expected repeat run to succeed, got %+v", summary)
	}
	if summary.Results[0].Message != "already on target branch, updated to latest" {
		testInstance.Fatalf("unexpected repeat message: %q", summary.Results[0].Message)
	}
}

func TestBranchSyncRefusesDirtyTreeWithoutForce(testInstance *testing.T) {
	if testing.Short() {
		testInstance.Skip("integration test skipped in short mode")
	}

	_, clonePath := createFixtureRepositories(testInstance)
	writeFixtureFile(testInstance, clonePath, "scratch.txt", "uncommitted\n")

	output, runError := runCLI(testInstance, "branch-sync", "--branch", "develop", "--repo", clonePath, "--json")
	if runError == nil {
		testInstance.Fatalf("expected non-zero exit for dirty tree, output:\n%s", output)
	}

	summary := decodeSummary(testInstance, output)
	if summary.Success || summary.Failed != 1 {
		testInstance.Fatalf("expected failed summary, got %+v", summary)
	}
	if summary.Results[0].Error != "uncommitted local changes present" {
		testInstance.Fatalf("unexpected error: %q", summary.Results[0].Error)
	}

	currentBranch := strings.TrimSpace(runGit(testInstance, clonePath, "rev-parse", "--abbrev-ref", "HEAD"))
	if currentBranch != "main" {
		testInstance.Fatalf("dirty tree should stay on main, got %s", currentBranch)
	}
}

func TestBranchSyncForceDiscardsLocalChanges(testInstance *testing.T) {
	if testing.Short() {
		testInstance.Skip("integration test skipped in short mode")
	}

	_, clonePath := createFixtureRepositories(testInstance)
	writeFixtureFile(testInstance, clonePath, "scratch.txt", "uncommitted\n")

	output, runError := runCLI(testInstance, "branch-sync", "--branch", "develop", "--repo", clonePath, "--force", "--json")
	if runError != nil {
		testInstance.Fatalf("forced branch-sync failed: %v\n%s", runError, output)
	}

	summary := decodeSummary(testInstance, output)
	if !summary.Success {
		testInstance.Fatalf("expected forced run to succeed, got %+v", summary)
	}

	statusOutput := runGit(testInstance, clonePath, "status", "--porcelain")
	if len(strings.TrimSpace(statusOutput)) != 0 {
		testInstance.Fatalf("expected clean tree after forced sync, got:\n%s", statusOutput)
	}
}

func TestBranchSyncReportsMissingBranch(testInstance *testing.T) {
	if testing.Short() {
		testInstance.Skip("integration test skipped in short mode")
	}

	_, clonePath := createFixtureRepositories(testInstance)

	output, runError := runCLI(testInstance, "branch-sync", "--branch", "ghost", "--repo", clonePath, "--json")
	if runError == nil {
		testInstance.Fatalf("expected non-zero exit for missing branch, output:\n%s", output)
	}

	summary := decodeSummary(testInstance, output)
	if summary.Success {
		testInstance.Fatalf("expected failed summary, got %+v", summary)
	}
	if !strings.Contains(summary.Results[0].Error, "does not exist locally or on the remote") {
		testInstance.Fatalf("unexpected error: %q", summary.Results[0].Error)
	}
}
