package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/temirov/summarize/internal/tokenizer"
	"github.com/temirov/summarize/internal/types"
	"github.com/temirov/summarize/internal/utils"
)

const configurationHeader = "# summarize configuration; command-line flags take precedence.\n"

// InitOptions controls where InitializeConfiguration writes.
type InitOptions struct {
	// Global writes under the home directory instead of the working directory.
	Global           bool
	Force            bool
	WorkingDirectory string
	HomeDirectory    string
}

// DefaultApplicationConfiguration returns the settings used when no
// configuration file sets them.
func DefaultApplicationConfiguration() ApplicationConfiguration {
	return ApplicationConfiguration{
		Walk: WalkConfiguration{
			IgnoreFiles:       append([]string(nil), utils.DefaultIgnoreFileNames...),
			IgnoreSources:     []string{},
			UseDefaults:       pointerTo(true),
			NestedIgnoreFiles: pointerTo(true),
			Exclude:           []string{},
			MaxFileSize:       pointerTo(types.DefaultMaxFileSize),
			MaxDepth:          pointerTo(0),
			FollowSymlinks:    pointerTo(false),
			IncludeGit:        pointerTo(false),
		},
		Tokens: TokenConfiguration{
			Enabled: pointerTo(false),
			Models:  []string{tokenizer.DefaultModel},
		},
		Output: OutputConfiguration{
			Format:    types.FormatRaw,
			Clipboard: pointerTo(false),
		},
	}
}

// DefaultConfigurationTemplate renders the defaults as YAML.
func DefaultConfigurationTemplate() (string, error) {
	rendered, err := yaml.Marshal(DefaultApplicationConfiguration())
	if err != nil {
		return "", fmt.Errorf("render default configuration: %w", err)
	}
	return configurationHeader + string(rendered), nil
}

// InitializeConfiguration writes the default configuration and returns its
// path. An existing file is replaced only when options.Force is set.
func InitializeConfiguration(options InitOptions) (string, error) {
	destinationPath, err := initDestination(options)
	if err != nil {
		return "", err
	}
	template, err := DefaultConfigurationTemplate()
	if err != nil {
		return "", err
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if options.Force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	file, err := os.OpenFile(destinationPath, flags, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("configuration file already exists at %s; use --force to overwrite", destinationPath)
		}
		return "", fmt.Errorf("create configuration %s: %w", destinationPath, err)
	}
	if _, err := file.WriteString(template); err != nil {
		file.Close()
		return "", fmt.Errorf("write configuration to %s: %w", destinationPath, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("write configuration to %s: %w", destinationPath, err)
	}
	return destinationPath, nil
}

func initDestination(options InitOptions) (string, error) {
	if !options.Global {
		workingDirectory := options.WorkingDirectory
		if workingDirectory == "" {
			current, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf("determine working directory for configuration: %w", err)
			}
			workingDirectory = current
		}
		return filepath.Join(workingDirectory, utils.ConfigFileName), nil
	}
	homeDirectory := options.HomeDirectory
	if homeDirectory == "" {
		resolvedHome, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory for configuration: %w", err)
		}
		homeDirectory = resolvedHome
	}
	configurationDirectory := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName)
	if err := os.MkdirAll(configurationDirectory, 0o755); err != nil {
		return "", fmt.Errorf("create configuration directory %s: %w", configurationDirectory, err)
	}
	return filepath.Join(configurationDirectory, utils.ConfigFileName), nil
}

func pointerTo[T any](value T) *T {
	return &value
}
