// Package text holds the tokenized, immutable text representation that transformations derive from
// and constraints inspect.
package text

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"textattack/domain/core"
)

// wordPattern matches a word: letters or digits, optionally joined by inner apostrophes or hyphens.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’\-][\p{L}\p{N}]+)*`)

// AttackedText is an ordered sequence of words plus the separators between them.
// Values are never mutated after construction; every edit returns a new text that remembers
// which word positions differ from the original input and which changed in the last step.
type AttackedText struct {
	words []string
	seps  []string // len(words)+1; seps[i] precedes words[i], seps[len] trails

	modified      map[int]struct{}
	newlyModified []int
	hasNewly      bool
	previous      *AttackedText
}

// New tokenizes raw input. Printable() of the result reproduces raw exactly.
func New(raw string) *AttackedText {
	spans := wordPattern.FindAllStringIndex(raw, -1)
	t := &AttackedText{
		words:    make([]string, 0, len(spans)),
		seps:     make([]string, 0, len(spans)+1),
		modified: map[int]struct{}{},
	}

	last := 0
	for _, span := range spans {
		t.seps = append(t.seps, raw[last:span[0]])
		t.words = append(t.words, raw[span[0]:span[1]])
		last = span[1]
	}
	t.seps = append(t.seps, raw[last:])
	return t
}

// Words returns a copy of the word sequence.
func (t *AttackedText) Words() []string {
	out := make([]string, len(t.words))
	copy(out, t.words)
	return out
}

// NumWords returns the number of words.
func (t *AttackedText) NumWords() int { return len(t.words) }

// WordAt returns the word at position i.
func (t *AttackedText) WordAt(i int) string {
	t.checkIndex(i)
	return t.words[i]
}

// Printable renders the text with its original separators.
func (t *AttackedText) Printable() string {
	var b strings.Builder
	for i, w := range t.words {
		b.WriteString(t.seps[i])
		b.WriteString(w)
	}
	b.WriteString(t.seps[len(t.words)])
	return b.String()
}

func (t *AttackedText) String() string { return t.Printable() }

// Equal reports whether both texts render identically.
func (t *AttackedText) Equal(other *AttackedText) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.Printable() == other.Printable()
}

// Hash fingerprints the printable rendering.
func (t *AttackedText) Hash() core.TextHash {
	return core.NewTextHash(t.Printable())
}

// ModifiedIndices returns, in ascending order, every position changed relative to the original input.
func (t *AttackedText) ModifiedIndices() []int {
	out := make([]int, 0, len(t.modified))
	for i := range t.modified {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// IsModified reports whether position i has already been changed.
func (t *AttackedText) IsModified(i int) bool {
	_, ok := t.modified[i]
	return ok
}

// NewlyModifiedIndices returns the positions changed by the last derivation step.
// ok is false when no step ever produced this text (a freshly tokenized input).
func (t *AttackedText) NewlyModifiedIndices() (indices []int, ok bool) {
	if !t.hasNewly {
		return nil, false
	}
	out := make([]int, len(t.newlyModified))
	copy(out, t.newlyModified)
	return out, true
}

// Previous returns the text this one was derived from, or nil for a fresh input.
func (t *AttackedText) Previous() *AttackedText { return t.previous }

// Unchanged derives an identical text carrying an empty newly-modified record.
func (t *AttackedText) Unchanged() *AttackedText {
	return t.derive(t.Words(), t.seps, t.copyModified(), nil)
}

// ReplaceWordAt derives a text with word i replaced by w.
func (t *AttackedText) ReplaceWordAt(i int, w string) *AttackedText {
	t.checkIndex(i)
	words := t.Words()
	words[i] = w
	modified := t.copyModified()
	modified[i] = struct{}{}
	return t.derive(words, t.seps, modified, []int{i})
}

// SwapWords derives a text with words i and j exchanged.
func (t *AttackedText) SwapWords(i, j int) *AttackedText {
	t.checkIndex(i)
	t.checkIndex(j)
	words := t.Words()
	words[i], words[j] = words[j], words[i]
	modified := t.copyModified()
	modified[i] = struct{}{}
	modified[j] = struct{}{}
	newly := []int{i, j}
	if i == j {
		newly = []int{i}
	}
	return t.derive(words, t.seps, modified, newly)
}

// DeleteWordAt derives a text without word i. Positions after i shift left by one.
// Position i, now holding the following word, is newly modified; deleting the last word
// leaves the newly-modified record empty.
func (t *AttackedText) DeleteWordAt(i int) *AttackedText {
	t.checkIndex(i)
	n := len(t.words)

	words := make([]string, 0, n-1)
	words = append(words, t.words[:i]...)
	words = append(words, t.words[i+1:]...)

	// Keep the separator in front of the deleted word and drop the one after it;
	// for the last word drop the one in front so trailing text survives.
	seps := make([]string, 0, n)
	if i < n-1 {
		seps = append(seps, t.seps[:i+1]...)
		seps = append(seps, t.seps[i+2:]...)
	} else {
		seps = append(seps, t.seps[:i]...)
		seps = append(seps, t.seps[i+1:]...)
	}

	modified := make(map[int]struct{}, len(t.modified))
	for m := range t.modified {
		switch {
		case m < i:
			modified[m] = struct{}{}
		case m > i:
			modified[m-1] = struct{}{}
		}
	}
	newly := []int{}
	if i < n-1 {
		newly = append(newly, i)
	}
	return t.derive(words, seps, modified, newly)
}

// InsertWordAt derives a text with w inserted before position i (i == NumWords appends).
// Positions at or after i shift right by one; i becomes newly modified.
func (t *AttackedText) InsertWordAt(i int, w string) *AttackedText {
	n := len(t.words)
	if i < 0 || i > n {
		panic(fmt.Sprintf("text: insert position %d out of range [0, %d]", i, n))
	}

	words := make([]string, 0, n+1)
	words = append(words, t.words[:i]...)
	words = append(words, w)
	words = append(words, t.words[i:]...)

	seps := make([]string, 0, n+2)
	switch {
	case n == 0:
		seps = append(seps, t.seps[0], "")
	case i < n:
		seps = append(seps, t.seps[:i+1]...)
		seps = append(seps, " ")
		seps = append(seps, t.seps[i+1:]...)
	default:
		seps = append(seps, t.seps[:n]...)
		seps = append(seps, " ", t.seps[n])
	}

	modified := make(map[int]struct{}, len(t.modified)+1)
	for m := range t.modified {
		if m >= i {
			modified[m+1] = struct{}{}
		} else {
			modified[m] = struct{}{}
		}
	}
	modified[i] = struct{}{}
	return t.derive(words, seps, modified, []int{i})
}

func (t *AttackedText) derive(words, seps []string, modified map[int]struct{}, newly []int) *AttackedText {
	s := make([]string, len(seps))
	copy(s, seps)
	if newly == nil {
		newly = []int{}
	}
	sort.Ints(newly)
	return &AttackedText{
		words:         words,
		seps:          s,
		modified:      modified,
		newlyModified: newly,
		hasNewly:      true,
		previous:      t,
	}
}

func (t *AttackedText) copyModified() map[int]struct{} {
	out := make(map[int]struct{}, len(t.modified))
	for i := range t.modified {
		out[i] = struct{}{}
	}
	return out
}

func (t *AttackedText) checkIndex(i int) {
	if i < 0 || i >= len(t.words) {
		panic(fmt.Sprintf("text: word index %d out of range [0, %d)", i, len(t.words)))
	}
}
