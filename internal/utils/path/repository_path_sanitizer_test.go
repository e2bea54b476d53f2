package pathutils_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/gitsync/internal/utils/path"
)

const testHomeDirectoryConstant = "/home/operator"

func newTestSanitizer() *pathutils.RepositoryPathSanitizer {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return testHomeDirectoryConstant, nil
	})
	return pathutils.NewRepositoryPathSanitizerWithExpander(expander)
}

func TestRepositoryPathSanitizerNormalizesInputs(testInstance *testing.T) {
	testCases := []struct {
		name           string
		candidatePaths []string
		expectedPaths  []string
	}{
		{
			name:           "trims_whitespace",
			candidatePaths: []string{"  /srv/repos  "},
			expectedPaths:  []string{"/srv/repos"},
		},
		{
			name:           "drops_empty_values",
			candidatePaths: []string{"", "   ", "/srv/repos"},
			expectedPaths:  []string{"/srv/repos"},
		},
		{
			name:           "expands_home_prefix",
			candidatePaths: []string{"~/projects"},
			expectedPaths:  []string{filepath.Join(testHomeDirectoryConstant, "projects")},
		},
		{
			name:           "cleans_redundant_separators",
			candidatePaths: []string{"/srv//repos/./alpha"},
			expectedPaths:  []string{"/srv/repos/alpha"},
		},
		{
			name:           "all_empty_yields_nil",
			candidatePaths: []string{"", " "},
			expectedPaths:  nil,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			sanitizedPaths := newTestSanitizer().Sanitize(testCase.candidatePaths)
			require.Equal(testInstance, testCase.expectedPaths, sanitizedPaths)
		})
	}
}

func TestHomeExpanderLeavesUnprefixedPathsAlone(testInstance *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return testHomeDirectoryConstant, nil
	})
	require.Equal(testInstance, "/var/data", expander.Expand("/var/data"))
	require.Equal(testInstance, testHomeDirectoryConstant, expander.Expand("~"))
}
