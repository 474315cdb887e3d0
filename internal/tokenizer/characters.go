package tokenizer

import (
	"math"
	"unicode/utf8"
)

// characterCounter estimates tokens as ceil(runes / ratio) without any
// model vocabulary.
type characterCounter struct {
	ratio float64
	name  string
}

func (counter characterCounter) Name() string {
	return counter.name
}

func (counter characterCounter) CountString(input string) (int, error) {
	runes := utf8.RuneCountInString(input)
	if counter.ratio == 1 {
		return runes, nil
	}
	return int(math.Ceil(float64(runes) / counter.ratio)), nil
}
