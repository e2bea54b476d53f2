package commitlog_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/gitsync/internal/commitlog"
	"github.com/temirov/gitsync/internal/execshell"
)

const stubLogKeyPrefixConstant = "log --pretty=format:%H|%an|%ae|%ad|%s --date=iso"

type stubGitExecutor struct {
	logOutput        string
	recordedCommands []execshell.CommandDetails
}

func (executor *stubGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedCommands = append(executor.recordedCommands, details)
	if strings.HasPrefix(strings.Join(details.Arguments, " "), stubLogKeyPrefixConstant) {
		return execshell.ExecutionResult{StandardOutput: executor.logOutput}, nil
	}
	return execshell.ExecutionResult{}, nil
}

type stubDiscoverer struct {
	scannedRepositories []string
	enclosingRepository string
	enclosingFound      bool
}

func (discoverer stubDiscoverer) FindEnclosingRepository(string) (string, bool) {
	return discoverer.enclosingRepository, discoverer.enclosingFound
}

func (discoverer stubDiscoverer) ScanForRepositories(string, int) []string {
	return discoverer.scannedRepositories
}

func sampleLogOutput() string {
	return strings.Repeat("a", 40) + "|Alice Example|alice@example.com|2026-08-28 10:15:00 +0000|Add request retries"
}

func executeCommitLogCommand(testInstance *testing.T, builder *commitlog.CommandBuilder, arguments ...string) (string, error) {
	testInstance.Helper()

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(outputBuffer)
	command.SetArgs(arguments)

	executionError := command.Execute()
	return outputBuffer.String(), executionError
}

func newCommitLogBuilder(executor *stubGitExecutor, discoverer stubDiscoverer) *commitlog.CommandBuilder {
	return &commitlog.CommandBuilder{
		LoggerProvider: func() *zap.Logger { return zap.NewNop() },
		GitExecutor:    executor,
		Discoverer:     discoverer,
		TimeSource:     func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) },
	}
}

func TestCommitLogCommandEmitsJSON(testInstance *testing.T) {
	executor := &stubGitExecutor{logOutput: sampleLogOutput()}
	discoverer := stubDiscoverer{enclosingRepository: "/srv/projects/gateway", enclosingFound: true}
	builder := newCommitLogBuilder(executor, discoverer)

	output, executionError := executeCommitLogCommand(testInstance, builder, "--format", "json")
	require.NoError(testInstance, executionError)

	var commits []commitlog.CommitRecord
	require.NoError(testInstance, json.Unmarshal([]byte(output), &commits))
	require.Len(testInstance, commits, 1)
	require.Equal(testInstance, "aaaaaaaa", commits[0].Hash)
	require.Equal(testInstance, "gateway", commits[0].Repository)
}

func TestCommitLogCommandDefaultsSinceToSevenDays(testInstance *testing.T) {
	executor := &stubGitExecutor{logOutput: sampleLogOutput()}
	discoverer := stubDiscoverer{enclosingRepository: "/srv/projects/gateway", enclosingFound: true}
	builder := newCommitLogBuilder(executor, discoverer)

	_, executionError := executeCommitLogCommand(testInstance, builder, "--format", "oneline")
	require.NoError(testInstance, executionError)

	require.NotEmpty(testInstance, executor.recordedCommands)
	require.Contains(testInstance, executor.recordedCommands[0].Arguments, "--since=2026-08-23")
}

func TestCommitLogCommandRejectsUnknownFormat(testInstance *testing.T) {
	builder := newCommitLogBuilder(&stubGitExecutor{}, stubDiscoverer{enclosingFound: true, enclosingRepository: "/srv/projects/gateway"})

	_, executionError := executeCommitLogCommand(testInstance, builder, "--format", "tabular")

	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), `unknown output format "tabular"`)
}

func TestCommitLogCommandScansRepositories(testInstance *testing.T) {
	executor := &stubGitExecutor{logOutput: sampleLogOutput()}
	discoverer := stubDiscoverer{scannedRepositories: []string{"/srv/alpha", "/srv/beta"}}
	builder := newCommitLogBuilder(executor, discoverer)

	output, executionError := executeCommitLogCommand(testInstance, builder, "--scan-repos", "--base-dir", "/srv", "--format", "json")
	require.NoError(testInstance, executionError)

	var commits []commitlog.CommitRecord
	require.NoError(testInstance, json.Unmarshal([]byte(output), &commits))
	require.Len(testInstance, commits, 2)
}

func TestCommitLogCommandFailsWithoutRepository(testInstance *testing.T) {
	builder := newCommitLogBuilder(&stubGitExecutor{}, stubDiscoverer{})

	_, executionError := executeCommitLogCommand(testInstance, builder, "--format", "oneline")

	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "no git repository found")
}

func TestCommitLogCommandStatisticsOnly(testInstance *testing.T) {
	executor := &stubGitExecutor{logOutput: sampleLogOutput()}
	discoverer := stubDiscoverer{enclosingRepository: "/srv/projects/gateway", enclosingFound: true}
	builder := newCommitLogBuilder(executor, discoverer)

	output, executionError := executeCommitLogCommand(testInstance, builder, "--stat-only")
	require.NoError(testInstance, executionError)

	require.Contains(testInstance, output, "Alice Example: 1 commits")
	require.NotContains(testInstance, output, "Add request retries")
}
