package utils_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitsync/internal/utils"
)

const (
	testConfigurationNameConstant    = "config"
	testConfigurationTypeConstant    = "yaml"
	testEnvironmentPrefixConstant    = "GITSYNCTEST"
	testConfigurationFileConstant    = "config.yaml"
	testConfigurationContentConstant = `
common:
  log_level: debug
tools:
  branch_sync:
    remote: upstream
    command_timeout: 45s
`
)

type testToolConfiguration struct {
	RemoteName     string        `mapstructure:"remote"`
	CommandTimeout time.Duration `mapstructure:"command_timeout"`
}

type testConfiguration struct {
	Common struct {
		LogLevel string `mapstructure:"log_level"`
	} `mapstructure:"common"`
	Tools struct {
		BranchSync testToolConfiguration `mapstructure:"branch_sync"`
	} `mapstructure:"tools"`
}

func newTestLoader(searchPaths []string) *utils.ConfigurationLoader {
	return utils.NewConfigurationLoader(
		testConfigurationNameConstant,
		testConfigurationTypeConstant,
		testEnvironmentPrefixConstant,
		searchPaths,
	)
}

func TestLoadConfigurationAppliesDefaultsWithoutFile(testInstance *testing.T) {
	loader := newTestLoader([]string{testInstance.TempDir()})

	var loadedConfiguration testConfiguration
	defaults := map[string]any{"common.log_level": "info"}

	metadata, loadError := loader.LoadConfiguration("", defaults, &loadedConfiguration)
	require.NoError(testInstance, loadError)
	require.Empty(testInstance, metadata.ConfigFileUsed)
	require.Equal(testInstance, "info", loadedConfiguration.Common.LogLevel)
}

func TestLoadConfigurationReadsExplicitFile(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	configurationFilePath := filepath.Join(temporaryDirectory, testConfigurationFileConstant)
	require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(testConfigurationContentConstant), 0o644))

	loader := newTestLoader([]string{temporaryDirectory})

	var loadedConfiguration testConfiguration
	metadata, loadError := loader.LoadConfiguration(configurationFilePath, map[string]any{}, &loadedConfiguration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, configurationFilePath, metadata.ConfigFileUsed)
	require.Equal(testInstance, "debug", loadedConfiguration.Common.LogLevel)
	require.Equal(testInstance, "upstream", loadedConfiguration.Tools.BranchSync.RemoteName)
	require.Equal(testInstance, 45*time.Second, loadedConfiguration.Tools.BranchSync.CommandTimeout)
}

func TestLoadConfigurationRejectsMalformedFile(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	configurationFilePath := filepath.Join(temporaryDirectory, testConfigurationFileConstant)
	require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte("common: ["), 0o644))

	loader := newTestLoader([]string{temporaryDirectory})

	var loadedConfiguration testConfiguration
	_, loadError := loader.LoadConfiguration(configurationFilePath, map[string]any{}, &loadedConfiguration)
	require.Error(testInstance, loadError)
	require.Contains(testInstance, loadError.Error(), "failed to read configuration")
}

func TestLoadConfigurationMergesEmbeddedConfiguration(testInstance *testing.T) {
	loader := newTestLoader([]string{testInstance.TempDir()})
	loader.SetEmbeddedConfiguration([]byte(testConfigurationContentConstant), testConfigurationTypeConstant)

	var loadedConfiguration testConfiguration
	_, loadError := loader.LoadConfiguration("", map[string]any{}, &loadedConfiguration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "upstream", loadedConfiguration.Tools.BranchSync.RemoteName)
}
