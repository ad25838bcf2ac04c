// Package thesaurus loads synonym and stopword lists from YAML files.
//
//	synonyms:
//	  quick: [fast, speedy, rapid]
//	  brown: [chocolate, tan]
//	stopwords: [a, an, the]
package thesaurus

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"textattack/domain/core"
	"textattack/ports"
)

type document struct {
	Synonyms  map[string][]string `yaml:"synonyms"`
	Stopwords []string            `yaml:"stopwords"`
	// Symmetric adds the reverse of every synonym edge.
	Symmetric bool `yaml:"symmetric"`
}

// Thesaurus is an in-memory synonym table keyed by lowercase word.
type Thesaurus struct {
	synonyms  map[string][]string
	stopwords []string
}

var (
	_ ports.Thesaurus      = (*Thesaurus)(nil)
	_ ports.StopwordSource = (*Thesaurus)(nil)
)

// New builds a thesaurus from a synonym map. Keys and values are lowercased and deduplicated.
func New(synonyms map[string][]string, symmetric bool) *Thesaurus {
	t := &Thesaurus{synonyms: map[string][]string{}}
	add := func(word, syn string) {
		word, syn = strings.ToLower(strings.TrimSpace(word)), strings.ToLower(strings.TrimSpace(syn))
		if word == "" || syn == "" || word == syn {
			return
		}
		for _, existing := range t.synonyms[word] {
			if existing == syn {
				return
			}
		}
		t.synonyms[word] = append(t.synonyms[word], syn)
	}

	words := make([]string, 0, len(synonyms))
	for w := range synonyms {
		words = append(words, w)
	}
	sort.Strings(words)
	for _, w := range words {
		for _, s := range synonyms[w] {
			add(w, s)
			if symmetric {
				add(s, w)
			}
		}
	}
	return t
}

// LoadFile reads a YAML thesaurus. A missing file is a resource error.
func LoadFile(path string) (*Thesaurus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.NewResourceError("thesaurus "+path, err)
	}
	defer f.Close()
	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return t, nil
}

// Parse decodes the YAML document from r.
func Parse(r io.Reader) (*Thesaurus, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, core.NewResourceError("thesaurus", fmt.Errorf("yaml: %w", err))
	}
	t := New(doc.Synonyms, doc.Symmetric)
	for _, w := range doc.Stopwords {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			t.stopwords = append(t.stopwords, w)
		}
	}
	return t, nil
}

// Synonyms returns a copy of the synonyms of word (looked up lowercase).
func (t *Thesaurus) Synonyms(word string) []string {
	syns := t.synonyms[strings.ToLower(word)]
	if len(syns) == 0 {
		return nil
	}
	return append([]string(nil), syns...)
}

// Stopwords returns the stopword list of the file, or nil when it has none.
func (t *Thesaurus) Stopwords() []string {
	if len(t.stopwords) == 0 {
		return nil
	}
	return append([]string(nil), t.stopwords...)
}

// Len returns the number of head words.
func (t *Thesaurus) Len() int { return len(t.synonyms) }
