// Package tokenizer estimates token counts for text.
package tokenizer

import (
	"fmt"
	"strconv"
	"strings"
)

// Counter estimates token counts for text content.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

// Config captures tokenizer selection parameters provided by the CLI.
type Config struct {
	Model string
}

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "gpt-4o"
	// CharactersModel counts runes.
	CharactersModel = "characters"
	// CharacterRatioPrefix selects a local estimate of runes divided by a ratio,
	// for example "chars-4".
	CharacterRatioPrefix = "chars-"

	errorInvalidRatioFormat      = "invalid character ratio in model %q"
	errorFallbackTokenizerFormat = "initialize fallback tokenizer: %w"
)

// NewCounter returns a Counter for the requested model together with the
// resolved model name. OpenAI model names use their tiktoken encoding and any
// other name falls back to cl100k_base.
func NewCounter(cfg Config) (Counter, string, error) {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	lowerModel := strings.ToLower(model)

	switch {
	case lowerModel == CharactersModel:
		return characterCounter{ratio: 1, name: CharactersModel}, model, nil
	case strings.HasPrefix(lowerModel, CharacterRatioPrefix):
		ratio, parseErr := strconv.ParseFloat(strings.TrimPrefix(lowerModel, CharacterRatioPrefix), 64)
		if parseErr != nil || ratio <= 0 {
			return nil, "", fmt.Errorf(errorInvalidRatioFormat, model)
		}
		return characterCounter{ratio: ratio, name: lowerModel}, model, nil
	}

	counter, err := newTiktokenCounter(lowerModel)
	if err != nil {
		return nil, "", err
	}
	return counter, model, nil
}
