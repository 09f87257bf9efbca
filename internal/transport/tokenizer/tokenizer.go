// Package tokenizer counts and truncates embedding inputs with tiktoken.
package tokenizer

import (
	"fmt"
	"strings"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"
)

const fallbackEncoding = "cl100k_base"

// Tokenizer encodes text with the BPE encoding of an embedding model.
// The encoding is loaded on first use; a failed load is reported on every call.
type Tokenizer struct {
	model  string
	logger *zap.Logger
	load   func(model string) (*tiktoken.Tiktoken, error)

	once sync.Once
	enc  *tiktoken.Tiktoken
	err  error
}

// New creates a Tokenizer for the given model name.
func New(model string, logger *zap.Logger) *Tokenizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tokenizer{model: model, logger: logger, load: loadEncoding}
}

// Encode returns the token ids of text.
func (t *Tokenizer) Encode(text string) ([]int, error) {
	enc, err := t.encoding()
	if err != nil {
		return nil, err
	}
	return enc.Encode(text, nil, nil), nil
}

// Decode turns token ids back into text.
func (t *Tokenizer) Decode(tokens []int) (string, error) {
	enc, err := t.encoding()
	if err != nil {
		return "", err
	}
	return enc.Decode(tokens), nil
}

func (t *Tokenizer) encoding() (*tiktoken.Tiktoken, error) {
	t.once.Do(func() {
		t.enc, t.err = t.load(t.model)
		if t.err != nil {
			t.err = fmt.Errorf("load tiktoken encoding for %q: %w", t.model, t.err)
			t.logger.Warn("Tokenizer unavailable", zap.Error(t.err))
		}
	})
	return t.enc, t.err
}

// loadEncoding resolves the model's encoding, falling back to cl100k_base
// for models tiktoken does not know (most non-OpenAI embedding models).
func loadEncoding(model string) (*tiktoken.Tiktoken, error) {
	name := model
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if enc, err := tiktoken.EncodingForModel(strings.ToLower(name)); err == nil {
		return enc, nil
	}
	enc, err := tiktoken.GetEncoding(fallbackEncoding)
	if err != nil {
		return nil, fmt.Errorf("get encoding %s: %w", fallbackEncoding, err)
	}
	return enc, nil
}
