package tests

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

const (
	integrationCommandTimeoutConstant = 3 * time.Minute
	fixtureUserNameConstant           = "Integration Tester"
	fixtureUserEmailConstant          = "integration@example.com"
)

// repositoryRoot returns the module root that holds the main package.
func repositoryRoot(testInstance *testing.T) string {
	testInstance.Helper()
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		testInstance.Fatalf("unable to determine working directory: %v", workingDirectoryError)
	}
	return filepath.Dir(workingDirectory)
}

func runGit(testInstance *testing.T, workingDirectory string, arguments ...string) string {
	testInstance.Helper()

	command := exec.Command("git", arguments...)
	command.Dir = workingDirectory
	command.Env = append(os.Environ(),
		"GIT_TERMINAL_PROMPT=0",
		"GIT_AUTHOR_NAME="+fixtureUserNameConstant,
		"GIT_AUTHOR_EMAIL="+fixtureUserEmailConstant,
		"GIT_COMMITTER_NAME="+fixtureUserNameConstant,
		"GIT_COMMITTER_EMAIL="+fixtureUserEmailConstant,
	)
	outputBytes, runError := command.CombinedOutput()
	if runError != nil {
		testInstance.Fatalf("git %v failed: %v\n%s", arguments, runError, outputBytes)
	}
	return string(outputBytes)
}

// runCLI executes the module's main package with the provided arguments and
// returns standard output. A non-nil error reports a non-zero exit status.
func runCLI(testInstance *testing.T, arguments ...string) (string, error) {
	testInstance.Helper()

	executionContext, cancel := context.WithTimeout(context.Background(), integrationCommandTimeoutConstant)
	defer cancel()

	commandArguments := append([]string{"run", "."}, arguments...)
	command := exec.CommandContext(executionContext, "go", commandArguments...)
	command.Dir = repositoryRoot(testInstance)
	command.Env = os.Environ()

	outputBytes, runError := command.Output()
	return string(outputBytes), runError
}

func writeFixtureFile(testInstance *testing.T, directoryPath string, fileName string, contents string) {
	testInstance.Helper()
	if writeError := os.WriteFile(filepath.Join(directoryPath, fileName), []byte(contents), 0o644); writeError != nil {
		testInstance.Fatalf("unable to write fixture file %s: %v", fileName, writeError)
	}
}

// createFixtureRepositories builds a bare origin with main and develop
// branches plus a fresh clone checked out on main.
func createFixtureRepositories(testInstance *testing.T) (originPath string, clonePath string) {
	testInstance.Helper()

	workspace := testInstance.TempDir()
	originPath = filepath.Join(workspace, "origin.git")
	seedPath := filepath.Join(workspace, "seed")
	clonePath = filepath.Join(workspace, "clone")

	runGit(testInstance, workspace, "init", "--bare", "origin.git")
	runGit(testInstance, originPath, "symbolic-ref", "HEAD", "refs/heads/main")

	runGit(testInstance, workspace, "clone", originPath, "seed")
	runGit(testInstance, seedPath, "checkout", "-b", "main")
	writeFixtureFile(testInstance, seedPath, "service.txt", "revision one\n")
	runGit(testInstance, seedPath, "add", "service.txt")
	runGit(testInstance, seedPath, "commit", "-m", "Add service definition")
	runGit(testInstance, seedPath, "push", "-u", "origin", "main")

	runGit(testInstance, seedPath, "checkout", "-b", "develop")
	writeFixtureFile(testInstance, seedPath, "service.txt", "revision two\n")
	runGit(testInstance, seedPath, "commit", "-am", "Bump service revision")
	runGit(testInstance, seedPath, "push", "-u", "origin", "develop")

	runGit(testInstance, workspace, "clone", originPath, "clone")
	return originPath, clonePath
}
