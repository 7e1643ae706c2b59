package prompt

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/agentx-labs/stencil/internal/template"
	"github.com/spf13/viper"
)

// Preset answers from a fixed set of values. Keys match exactly first and
// then case-insensitively. Items without a value go to Fallback; with no
// fallback, single choice takes its default and multiple choice fails.
type Preset struct {
	Answers  map[string]string
	Fallback Prompt
}

// Answer resolves item from the preset values.
func (p *Preset) Answer(ctx context.Context, item *template.PlaceholderItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	value, ok := p.lookup(item.Key)
	if !ok {
		if p.Fallback != nil {
			return p.Fallback.Answer(ctx, item)
		}
		if item.Kind == template.SingleChoice {
			item.SetAnswer(item.Default)
			return nil
		}
		return &InputError{Key: item.Key, Err: ErrNoAnswer}
	}

	if item.Kind == template.SingleChoice {
		item.SetAnswer(value)
		return nil
	}

	for _, option := range item.Options {
		if option == value {
			item.SetAnswer(option)
			return nil
		}
	}
	if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		if option, ok := selectOption(item.Options, n); ok {
			item.SetAnswer(option)
			return nil
		}
	}
	return &InputError{Key: item.Key, Input: value, Err: ErrUnknownOption}
}

func (p *Preset) lookup(key string) (string, bool) {
	if v, ok := p.Answers[key]; ok {
		return v, true
	}
	keys := make([]string, 0, len(p.Answers))
	for k := range p.Answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.EqualFold(k, key) {
			return p.Answers[k], true
		}
	}
	return "", false
}

// ParseAssignments turns key=value pairs into an answer map. Later pairs
// override earlier ones, including pairs whose keys differ only by case.
func ParseAssignments(pairs []string) (map[string]string, error) {
	answers := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid answer %q: expected key=value", pair)
		}
		setFold(answers, key, value)
	}
	return answers, nil
}

// LoadAnswersFile reads answers from a YAML, JSON, or TOML file, chosen by
// extension. Nested keys are flattened with dots. Keys come back lower-cased;
// Preset matches them case-insensitively.
func LoadAnswersFile(path string) (map[string]string, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading answers file %s: %w", path, err)
	}

	answers := make(map[string]string)
	for _, key := range v.AllKeys() {
		answers[key] = v.GetString(key)
	}
	return answers, nil
}

// Merge combines answer maps; later maps win. Keys differing only by case
// are treated as the same key and the later spelling is kept.
func Merge(maps ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, m := range maps {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			setFold(out, k, m[k])
		}
	}
	return out
}

// setFold stores key=value, replacing any existing case-insensitive match.
func setFold(m map[string]string, key, value string) {
	for k := range m {
		if k != key && strings.EqualFold(k, key) {
			delete(m, k)
		}
	}
	m[key] = value
}
