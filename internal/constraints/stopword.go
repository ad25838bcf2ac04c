package constraints

import (
	"strings"

	"textattack/domain/text"
)

// StopwordModification forbids modifying words found in a stopword list.
type StopwordModification struct {
	stopwords map[string]struct{}
}

// NewStopwordModification builds the constraint from words (compared case-insensitively).
// A nil list selects the default English stopwords.
func NewStopwordModification(words []string) *StopwordModification {
	if words == nil {
		words = text.EnglishStopwords()
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return &StopwordModification{stopwords: set}
}

func (c *StopwordModification) Name() string { return "stopword_modification" }

// CanModify reports whether position i holds a non-stopword.
func (c *StopwordModification) CanModify(t *text.AttackedText, i int) bool {
	_, stop := c.stopwords[strings.ToLower(t.WordAt(i))]
	return !stop
}
