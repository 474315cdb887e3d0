package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/temirov/summarize/internal/types"
	"github.com/temirov/summarize/internal/utils"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
	// HomeDirectory overrides the user home directory used for the global file.
	HomeDirectory string
}

// ApplicationConfiguration holds defaults shared by every command.
type ApplicationConfiguration struct {
	Walk   WalkConfiguration   `mapstructure:"walk" yaml:"walk"`
	Tokens TokenConfiguration  `mapstructure:"tokens" yaml:"tokens"`
	Output OutputConfiguration `mapstructure:"output" yaml:"output"`
}

// WalkConfiguration configures ignore sources and traversal limits.
type WalkConfiguration struct {
	IgnoreFiles       []string `mapstructure:"ignore_files" yaml:"ignore_files"`
	IgnoreSources     []string `mapstructure:"ignore_sources" yaml:"ignore_sources"`
	UseDefaults       *bool    `mapstructure:"use_defaults" yaml:"use_defaults"`
	NestedIgnoreFiles *bool    `mapstructure:"nested_ignore_files" yaml:"nested_ignore_files"`
	Exclude           []string `mapstructure:"exclude" yaml:"exclude"`
	MaxFileSize       *int64   `mapstructure:"max_file_size" yaml:"max_file_size"`
	MaxDepth          *int     `mapstructure:"max_depth" yaml:"max_depth"`
	FollowSymlinks    *bool    `mapstructure:"follow_symlinks" yaml:"follow_symlinks"`
	IncludeGit        *bool    `mapstructure:"include_git" yaml:"include_git"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Enabled *bool    `mapstructure:"enabled" yaml:"enabled"`
	Models  []string `mapstructure:"models" yaml:"models"`
}

// OutputConfiguration controls rendering defaults.
type OutputConfiguration struct {
	Format    string `mapstructure:"format" yaml:"format"`
	Clipboard *bool  `mapstructure:"clipboard" yaml:"clipboard"`
	Color     *bool  `mapstructure:"color" yaml:"color,omitempty"`
}

// LoadApplicationConfiguration loads configuration from global and local files.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	homeDirectory := options.HomeDirectory
	if homeDirectory == "" {
		if resolvedHome, err := os.UserHomeDir(); err == nil {
			homeDirectory = resolvedHome
		}
	}
	if homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	if options.ExplicitFilePath != "" {
		if _, statErr := os.Stat(localPath); statErr != nil {
			return ApplicationConfiguration{}, &types.ConfigError{Path: localPath, Err: statErr}
		}
	}
	localConfig, loadErr := loadConfigurationFromPath(localPath)
	if loadErr != nil {
		return ApplicationConfiguration{}, loadErr
	}
	merged = merged.Merge(localConfig)

	merged.Walk.Exclude = utils.DeduplicatePatterns(merged.Walk.Exclude)
	return merged, nil
}

// TraversalConfig projects the walk section onto a traversal configuration
// for rootDirectory. Ignore sources named in the configuration are resolved
// relative to workingDirectory.
func (config ApplicationConfiguration) TraversalConfig(rootDirectory string, workingDirectory string) types.TraversalConfig {
	traversal := types.TraversalConfig{
		RootDirectory:  rootDirectory,
		ExtraPatterns:  append([]string{}, config.Walk.Exclude...),
		FollowSymlinks: boolValue(config.Walk.FollowSymlinks, false),
	}
	for _, source := range config.Walk.IgnoreSources {
		if !filepath.IsAbs(source) && workingDirectory != "" {
			source = filepath.Join(workingDirectory, source)
		}
		traversal.IgnoreSources = append(traversal.IgnoreSources, source)
	}
	if config.Walk.MaxFileSize != nil {
		traversal.MaxFileSize = *config.Walk.MaxFileSize
	}
	if config.Walk.MaxDepth != nil {
		traversal.MaxDepth = *config.Walk.MaxDepth
	}
	return traversal
}

// SourceOptions projects the walk section onto ignore-source discovery options.
func (config ApplicationConfiguration) SourceOptions(traversal types.TraversalConfig) SourceOptions {
	fileNames := config.Walk.IgnoreFiles
	if fileNames == nil {
		fileNames = utils.DefaultIgnoreFileNames
	}
	return SourceOptions{
		FileNames:     append([]string{}, fileNames...),
		ExplicitFiles: traversal.IgnoreSources,
		ExtraPatterns: traversal.ExtraPatterns,
		UseDefaults:   boolValue(config.Walk.UseDefaults, true),
		Recursive:     boolValue(config.Walk.NestedIgnoreFiles, true),
		IncludeGit:    boolValue(config.Walk.IncludeGit, false),
	}
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		if workingDirectory == "" {
			absolute, err := filepath.Abs(explicitPath)
			if err != nil {
				return "", fmt.Errorf("resolve configuration path %s: %w", explicitPath, err)
			}
			return absolute, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	if workingDirectory == "" {
		return "", nil
	}
	return filepath.Join(workingDirectory, utils.ConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, &types.ConfigError{Path: path, Err: fmt.Errorf("stat configuration: %w", statErr)}
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, &types.ConfigError{Path: path, Err: fmt.Errorf("configuration path is a directory")}
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, &types.ConfigError{Path: path, Err: fmt.Errorf("read configuration: %w", readErr)}
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, &types.ConfigError{Path: path, Err: fmt.Errorf("decode configuration: %w", decodeErr)}
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	result.Walk = result.Walk.merge(override.Walk)
	result.Tokens = result.Tokens.merge(override.Tokens)
	result.Output = result.Output.merge(override.Output)
	return result
}

func (config WalkConfiguration) merge(override WalkConfiguration) WalkConfiguration {
	result := config
	if override.IgnoreFiles != nil {
		result.IgnoreFiles = append([]string{}, override.IgnoreFiles...)
	}
	if len(override.IgnoreSources) > 0 {
		result.IgnoreSources = append([]string{}, override.IgnoreSources...)
	}
	if override.UseDefaults != nil {
		result.UseDefaults = cloneValue(override.UseDefaults)
	}
	if override.NestedIgnoreFiles != nil {
		result.NestedIgnoreFiles = cloneValue(override.NestedIgnoreFiles)
	}
	if len(override.Exclude) > 0 {
		result.Exclude = append([]string{}, utils.DeduplicatePatterns(override.Exclude)...)
	}
	if override.MaxFileSize != nil {
		result.MaxFileSize = cloneValue(override.MaxFileSize)
	}
	if override.MaxDepth != nil {
		result.MaxDepth = cloneValue(override.MaxDepth)
	}
	if override.FollowSymlinks != nil {
		result.FollowSymlinks = cloneValue(override.FollowSymlinks)
	}
	if override.IncludeGit != nil {
		result.IncludeGit = cloneValue(override.IncludeGit)
	}
	return result
}

func (config TokenConfiguration) merge(override TokenConfiguration) TokenConfiguration {
	result := config
	if override.Enabled != nil {
		result.Enabled = cloneValue(override.Enabled)
	}
	if len(override.Models) > 0 {
		result.Models = append([]string{}, override.Models...)
	}
	return result
}

func (config OutputConfiguration) merge(override OutputConfiguration) OutputConfiguration {
	result := config
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Clipboard != nil {
		result.Clipboard = cloneValue(override.Clipboard)
	}
	if override.Color != nil {
		result.Color = cloneValue(override.Color)
	}
	return result
}

func cloneValue[T any](value *T) *T {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func boolValue(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}
