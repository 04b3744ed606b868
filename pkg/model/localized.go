package model

import (
	"encoding/json"
	"sort"
)

// LocalizedText is a raw text field from the tour store that is either a
// plain string or a language-keyed map. The store is inconsistent about
// which form it uses, so both are accepted and resolved through Resolve.
type LocalizedText struct {
	Plain      string
	ByLanguage map[string]string
	isPlain    bool
}

// UnmarshalJSON accepts either form. Anything else decodes to an empty value.
func (l *LocalizedText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		l.Plain = s
		l.isPlain = true
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err == nil {
		l.ByLanguage = m
		return nil
	}
	*l = LocalizedText{}
	return nil
}

// IsZero reports whether no text is present in any form.
func (l LocalizedText) IsZero() bool {
	return !l.isPlain && len(l.ByLanguage) == 0
}

// Resolve picks the text for the requested language. Fallback order:
// requested -> "eng" -> "en" -> first available key (lexicographic, so the
// choice is deterministic) -> fallback.
func (l LocalizedText) Resolve(language, fallback string) string {
	if l.isPlain {
		return l.Plain
	}
	if len(l.ByLanguage) == 0 {
		return fallback
	}
	if v, ok := l.ByLanguage[language]; ok {
		return v
	}
	for _, canonical := range []string{"eng", "en"} {
		if v, ok := l.ByLanguage[canonical]; ok {
			return v
		}
	}
	keys := make([]string, 0, len(l.ByLanguage))
	for k := range l.ByLanguage {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return l.ByLanguage[keys[0]]
}
