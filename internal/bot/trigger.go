package bot

import "strings"

// TriggerConfig decides whether a message should be answered and extracts the prompt.
// Rules are checked in order: fixed prefix, substring keyword, allow-listed author.
type TriggerConfig struct {
	Prefix   string
	Keywords []string
	allowed  map[string]struct{}
}

// NewTriggerConfig builds a TriggerConfig, dropping blank keywords and author IDs
func NewTriggerConfig(prefix string, keywords, allowedAuthorIDs []string) TriggerConfig {
	tc := TriggerConfig{
		Prefix:  strings.TrimSpace(prefix),
		allowed: make(map[string]struct{}),
	}
	for _, kw := range keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			tc.Keywords = append(tc.Keywords, kw)
		}
	}
	for _, id := range allowedAuthorIDs {
		if id = strings.TrimSpace(id); id != "" {
			tc.allowed[id] = struct{}{}
		}
	}
	return tc
}

// Match reports whether text from authorID qualifies and returns the trimmed prompt.
// A qualifying message with an empty prompt does not match.
func (tc TriggerConfig) Match(authorID, text string) (string, bool) {
	trimmed := strings.TrimSpace(text)

	if tc.Prefix != "" && strings.HasPrefix(trimmed, tc.Prefix) {
		return nonEmpty(strings.TrimPrefix(trimmed, tc.Prefix))
	}

	lower := strings.ToLower(trimmed)
	for _, kw := range tc.Keywords {
		if strings.Contains(lower, kw) {
			return nonEmpty(trimmed)
		}
	}

	if _, ok := tc.allowed[authorID]; ok {
		return nonEmpty(trimmed)
	}
	return "", false
}

func nonEmpty(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != ""
}
