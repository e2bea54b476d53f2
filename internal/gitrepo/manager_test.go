package gitrepo_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitsync/internal/execshell"
	"github.com/temirov/gitsync/internal/gitrepo"
)

const (
	testRepositoryPathConstant = "/tmp/example-repository"
	testRemoteNameConstant     = "origin"
)

type scriptedGitExecutor struct {
	responses        map[string]scriptedResponse
	recordedCommands []execshell.CommandDetails
}

type scriptedResponse struct {
	result execshell.ExecutionResult
	err    error
}

func (executor *scriptedGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedCommands = append(executor.recordedCommands, details)
	commandKey := strings.Join(details.Arguments, " ")
	if response, exists := executor.responses[commandKey]; exists {
		return response.result, response.err
	}
	return execshell.ExecutionResult{}, nil
}

func failedCommand() scriptedResponse {
	return scriptedResponse{
		result: execshell.ExecutionResult{ExitCode: 128},
		err:    execshell.CommandFailedError{Result: execshell.ExecutionResult{ExitCode: 128}},
	}
}

func successfulOutput(standardOutput string) scriptedResponse {
	return scriptedResponse{result: execshell.ExecutionResult{StandardOutput: standardOutput}}
}

func newManager(testInstance *testing.T, executor *scriptedGitExecutor) *gitrepo.RepositoryManager {
	testInstance.Helper()
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)
	return manager
}

func TestNewRepositoryManagerRequiresExecutor(testInstance *testing.T) {
	manager, creationError := gitrepo.NewRepositoryManager(nil)
	require.ErrorIs(testInstance, creationError, gitrepo.ErrExecutorNotConfigured)
	require.Nil(testInstance, manager)
}

func TestGetRepositoryStatusInvalidRepository(testInstance *testing.T) {
	executor := &scriptedGitExecutor{responses: map[string]scriptedResponse{
		"rev-parse --git-dir": failedCommand(),
	}}

	repositoryStatus := newManager(testInstance, executor).GetRepositoryStatus(context.Background(), testRepositoryPathConstant)
	require.False(testInstance, repositoryStatus.IsValid)
	require.False(testInstance, repositoryStatus.HasChanges())
	// Remaining probes are skipped once validity fails.
	require.Len(testInstance, executor.recordedCommands, 1)
}

func TestGetRepositoryStatusReportsBranchAndChanges(testInstance *testing.T) {
	porcelainOutput := " M internal/service.go\nM  cmd/main.go\nAM docs/notes.md\n?? notes.txt\nA  staged.txt\n"
	executor := &scriptedGitExecutor{responses: map[string]scriptedResponse{
		"rev-parse --abbrev-ref HEAD": successfulOutput("main\n"),
		"status --porcelain":          successfulOutput(porcelainOutput),
	}}

	repositoryStatus := newManager(testInstance, executor).GetRepositoryStatus(context.Background(), testRepositoryPathConstant)
	require.True(testInstance, repositoryStatus.IsValid)
	require.Equal(testInstance, "main", repositoryStatus.CurrentBranch)
	require.False(testInstance, repositoryStatus.IsDetached)
	// Staged-then-edited entries ("AM") are modified; staged-only ("A ") are not.
	require.Equal(testInstance, []string{"internal/service.go", "cmd/main.go", "docs/notes.md"}, repositoryStatus.ModifiedFiles)
	require.Equal(testInstance, []string{"notes.txt"}, repositoryStatus.UntrackedFiles)
	require.True(testInstance, repositoryStatus.HasChanges())
	require.Equal(testInstance, 4, repositoryStatus.ChangeCount())
}

func TestGetRepositoryStatusDetachedHead(testInstance *testing.T) {
	executor := &scriptedGitExecutor{responses: map[string]scriptedResponse{
		"rev-parse --abbrev-ref HEAD": successfulOutput("HEAD\n"),
	}}

	repositoryStatus := newManager(testInstance, executor).GetRepositoryStatus(context.Background(), testRepositoryPathConstant)
	require.True(testInstance, repositoryStatus.IsValid)
	require.True(testInstance, repositoryStatus.IsDetached)
	require.Equal(testInstance, "(detached HEAD)", repositoryStatus.CurrentBranch)
}

func TestBranchExistsCombinations(testInstance *testing.T) {
	testCases := []struct {
		name              string
		localResponse     scriptedResponse
		remoteResponse    scriptedResponse
		expectedExistence gitrepo.BranchExistence
	}{
		{
			name:              "both_exist",
			localResponse:     successfulOutput("abc123"),
			remoteResponse:    successfulOutput("abc123"),
			expectedExistence: gitrepo.BranchExistence{LocalExists: true, RemoteExists: true},
		},
		{
			name:              "remote_only",
			localResponse:     failedCommand(),
			remoteResponse:    successfulOutput("abc123"),
			expectedExistence: gitrepo.BranchExistence{RemoteExists: true},
		},
		{
			name:              "local_only",
			localResponse:     successfulOutput("abc123"),
			remoteResponse:    failedCommand(),
			expectedExistence: gitrepo.BranchExistence{LocalExists: true},
		},
		{
			name:              "neither",
			localResponse:     failedCommand(),
			remoteResponse:    failedCommand(),
			expectedExistence: gitrepo.BranchExistence{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &scriptedGitExecutor{responses: map[string]scriptedResponse{
				"rev-parse --verify develop":        testCase.localResponse,
				"rev-parse --verify origin/develop": testCase.remoteResponse,
			}}

			existence := newManager(testInstance, executor).BranchExists(context.Background(), testRepositoryPathConstant, "develop", testRemoteNameConstant)
			require.Equal(testInstance, testCase.expectedExistence, existence)
		})
	}
}

func TestRepositoryManagerCommandConstruction(testInstance *testing.T) {
	testCases := []struct {
		name              string
		invoke            func(manager *gitrepo.RepositoryManager, executor *scriptedGitExecutor) error
		expectedArguments []string
	}{
		{
			name: "fetch_with_prune",
			invoke: func(manager *gitrepo.RepositoryManager, _ *scriptedGitExecutor) error {
				return manager.Fetch(context.Background(), testRepositoryPathConstant, testRemoteNameConstant, true)
			},
			expectedArguments: []string{"fetch", "origin", "--prune"},
		},
		{
			name: "fetch_without_prune",
			invoke: func(manager *gitrepo.RepositoryManager, _ *scriptedGitExecutor) error {
				return manager.Fetch(context.Background(), testRepositoryPathConstant, testRemoteNameConstant, false)
			},
			expectedArguments: []string{"fetch", "origin"},
		},
		{
			name: "clean_untracked",
			invoke: func(manager *gitrepo.RepositoryManager, _ *scriptedGitExecutor) error {
				return manager.CleanUntrackedFiles(context.Background(), testRepositoryPathConstant)
			},
			expectedArguments: []string{"clean", "-fd"},
		},
		{
			name: "reset_hard_to_head",
			invoke: func(manager *gitrepo.RepositoryManager, _ *scriptedGitExecutor) error {
				return manager.ResetHard(context.Background(), testRepositoryPathConstant, "HEAD")
			},
			expectedArguments: []string{"reset", "--hard", "HEAD"},
		},
		{
			name: "checkout_existing_branch",
			invoke: func(manager *gitrepo.RepositoryManager, _ *scriptedGitExecutor) error {
				return manager.CheckoutBranch(context.Background(), testRepositoryPathConstant, "develop")
			},
			expectedArguments: []string{"checkout", "develop"},
		},
		{
			name: "create_tracking_branch",
			invoke: func(manager *gitrepo.RepositoryManager, _ *scriptedGitExecutor) error {
				return manager.CreateTrackingBranch(context.Background(), testRepositoryPathConstant, "develop", testRemoteNameConstant)
			},
			expectedArguments: []string{"checkout", "-b", "develop", "origin/develop"},
		},
		{
			name: "pull_branch",
			invoke: func(manager *gitrepo.RepositoryManager, _ *scriptedGitExecutor) error {
				return manager.Pull(context.Background(), testRepositoryPathConstant, testRemoteNameConstant, "develop")
			},
			expectedArguments: []string{"pull", "origin", "develop"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &scriptedGitExecutor{}
			manager := newManager(testInstance, executor)

			require.NoError(testInstance, testCase.invoke(manager, executor))
			require.Len(testInstance, executor.recordedCommands, 1)

			recordedCommand := executor.recordedCommands[0]
			require.Equal(testInstance, testCase.expectedArguments, recordedCommand.Arguments)
			require.Equal(testInstance, testRepositoryPathConstant, recordedCommand.WorkingDirectory)
			require.Equal(testInstance, "0", recordedCommand.EnvironmentVariables["GIT_TERMINAL_PROMPT"])
		})
	}
}
