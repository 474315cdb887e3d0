package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temirov/summarize/internal/tokenizer"
	"github.com/temirov/summarize/internal/types"
	"github.com/temirov/summarize/internal/utils"
)

func TestInitializeConfigurationDestinations(t *testing.T) {
	workingDirectory := t.TempDir()
	homeDirectory := t.TempDir()
	testCases := []struct {
		name     string
		options  InitOptions
		expected string
	}{
		{
			name:     "local",
			options:  InitOptions{WorkingDirectory: workingDirectory, HomeDirectory: homeDirectory},
			expected: filepath.Join(workingDirectory, utils.ConfigFileName),
		},
		{
			name:     "global",
			options:  InitOptions{Global: true, WorkingDirectory: workingDirectory, HomeDirectory: homeDirectory},
			expected: filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName),
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			path, err := InitializeConfiguration(testCase.options)
			require.NoError(t, err)
			assert.Equal(t, testCase.expected, path)
			written, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(string(written), configurationHeader))
			assert.Contains(t, string(written), "walk:")
		})
	}
}

func TestInitializeConfigurationOverwrite(t *testing.T) {
	workingDirectory := t.TempDir()
	path := filepath.Join(workingDirectory, utils.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("existing"), 0o600))

	_, err := InitializeConfiguration(InitOptions{WorkingDirectory: workingDirectory})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	preserved, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "existing", string(preserved))

	_, err = InitializeConfiguration(InitOptions{WorkingDirectory: workingDirectory, Force: true})
	require.NoError(t, err)
	replaced, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.NotEqual(t, "existing", string(replaced))
}

func TestDefaultConfigurationTemplateRoundTrips(t *testing.T) {
	template, err := DefaultConfigurationTemplate()
	require.NoError(t, err)

	reader := viper.New()
	reader.SetConfigType("yaml")
	require.NoError(t, reader.ReadConfig(strings.NewReader(template)))
	var configuration ApplicationConfiguration
	require.NoError(t, reader.Unmarshal(&configuration))

	require.NotNil(t, configuration.Walk.MaxFileSize)
	assert.Equal(t, types.DefaultMaxFileSize, *configuration.Walk.MaxFileSize)
	assert.Equal(t, utils.DefaultIgnoreFileNames, configuration.Walk.IgnoreFiles)
	require.NotNil(t, configuration.Walk.UseDefaults)
	assert.True(t, *configuration.Walk.UseDefaults)
	assert.Equal(t, []string{tokenizer.DefaultModel}, configuration.Tokens.Models)
	assert.Equal(t, types.FormatRaw, configuration.Output.Format)
	assert.Nil(t, configuration.Output.Color)
	assert.NotContains(t, template, "color:")
}
