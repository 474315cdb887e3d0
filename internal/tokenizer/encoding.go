package tokenizer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const defaultEncodingName = "cl100k_base"

var openAIModelPrefixes = []string{"gpt-", "o1", "o3", "o4", "text-embedding", "davinci", "curie", "babbage", "ada", "code-"}

// encodings caches tiktoken encoders by model or encoding name.
var encodings sync.Map

// tiktokenCounter counts BPE tokens with a tiktoken encoding.
type tiktokenCounter struct {
	encoding *tiktoken.Tiktoken
	name     string
}

func (counter tiktokenCounter) Name() string {
	return counter.name
}

func (counter tiktokenCounter) CountString(input string) (int, error) {
	return len(counter.encoding.EncodeOrdinary(input)), nil
}

// newTiktokenCounter picks the encoding tiktoken registers for model, falling
// back to cl100k_base for names it does not know.
func newTiktokenCounter(model string) (Counter, error) {
	if isOpenAIModel(model) {
		if encoding, err := loadEncoding(model, tiktoken.EncodingForModel); err == nil {
			return tiktokenCounter{encoding: encoding, name: model}, nil
		}
	}
	encoding, err := loadEncoding(defaultEncodingName, tiktoken.GetEncoding)
	if err != nil {
		return nil, fmt.Errorf(errorFallbackTokenizerFormat, err)
	}
	return tiktokenCounter{encoding: encoding, name: defaultEncodingName}, nil
}

func loadEncoding(key string, load func(string) (*tiktoken.Tiktoken, error)) (*tiktoken.Tiktoken, error) {
	if cached, ok := encodings.Load(key); ok {
		return cached.(*tiktoken.Tiktoken), nil
	}
	encoding, err := load(key)
	if err != nil {
		return nil, err
	}
	actual, _ := encodings.LoadOrStore(key, encoding)
	return actual.(*tiktoken.Tiktoken), nil
}

func isOpenAIModel(model string) bool {
	for _, prefix := range openAIModelPrefixes {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}
