// Package prompts provides the LLM prompt templates, embedded at compile time.
package prompts

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Keys of the templates in prompts.json.
const (
	RankFilesSystem = "rank-files-system"
	RankFiles       = "rank-files"
	AnswerSystem    = "answer-system"
	Answer          = "answer"
	EvaluateSystem  = "evaluate-system"
	Evaluate        = "evaluate"
)

//go:embed prompts.json
var promptFile []byte

var (
	loadOnce sync.Once
	loaded   map[string]string
	loadErr  error
)

// Get retrieves a prompt template by key.
func Get(key string) (string, error) {
	loadOnce.Do(func() {
		if err := json.Unmarshal(promptFile, &loaded); err != nil {
			loadErr = fmt.Errorf("failed to parse prompt file: %w", err)
		}
	})
	if loadErr != nil {
		return "", loadErr
	}

	prompt, exists := loaded[key]
	if !exists {
		return "", fmt.Errorf("prompt key %q not found", key)
	}
	return prompt, nil
}

// MustGet is Get for templates that are required; it panics on a missing key.
func MustGet(key string) string {
	prompt, err := Get(key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return prompt
}

// Format replaces {{.Key}} placeholders with values from data.
// Values are substituted in one pass, so a value containing a placeholder is
// never expanded again.
func Format(template string, data map[string]string) string {
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(data)*2)
	for _, key := range keys {
		pairs = append(pairs, "{{."+key+"}}", data[key])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// Render fetches a template and formats it.
func Render(key string, data map[string]string) (string, error) {
	template, err := Get(key)
	if err != nil {
		return "", err
	}
	return Format(template, data), nil
}
