// Package wordfilter screens message text against a configured banned-word
// list.
package wordfilter

import (
	"errors"
	"regexp"
	"strings"
)

// ErrEmptyWordList is returned by New when no usable words remain after
// normalization. An empty list is a configuration error, not a runtime
// condition.
var ErrEmptyWordList = errors.New("wordfilter: banned word set must not be empty")

// Checker matches banned words as case-insensitive literal substrings.
type Checker struct {
	pattern *regexp.Regexp
}

// New builds a checker from the given words. Each word is lowercased and
// treated as a literal; blank entries are dropped.
func New(words []string) (*Checker, error) {
	seen := make(map[string]struct{}, len(words))
	var quoted []string
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		quoted = append(quoted, regexp.QuoteMeta(w))
	}
	if len(quoted) == 0 {
		return nil, ErrEmptyWordList
	}

	pattern, err := regexp.Compile("(?i)" + strings.Join(quoted, "|"))
	if err != nil {
		return nil, err
	}
	return &Checker{pattern: pattern}, nil
}

// ContainsBannedWord reports whether any banned word occurs as a substring of
// text. Blank text never matches.
func (c *Checker) ContainsBannedWord(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	return c.pattern.MatchString(text)
}
