// Package ngram scores words with a back-off n-gram model read from an ARPA file.
package ngram

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"textattack/domain/core"
	"textattack/domain/text"
	"textattack/ports"
)

const (
	SentenceStart = "<s>"
	SentenceEnd   = "</s>"
	Unknown       = "<unk>"

	// unknownLog10 is the score of a word the model has never seen and that has no <unk> entry.
	unknownLog10 = -99.0
)

type entry struct {
	log10Prob    float64
	log10Backoff float64
}

// Model is a back-off n-gram model. Scores are natural-log probabilities.
type Model struct {
	order     int
	grams     []map[string]entry // grams[n-1] holds n-grams keyed by space-joined words
	lowercase bool
}

var _ ports.LanguageModel = (*Model)(nil)

// Option configures a model.
type Option func(*Model)

// WithCaseSensitive keeps word case when looking up n-grams. Lookups are lowercased by default.
func WithCaseSensitive() Option {
	return func(m *Model) { m.lowercase = false }
}

// LoadFile reads an ARPA file, gzip-compressed when the name ends in .gz.
func LoadFile(path string, opts ...Option) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.NewResourceError("language model "+path, err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gr, err := gzip.NewReader(f)
		if err != nil {
			return nil, core.NewResourceError("language model "+path, fmt.Errorf("gzip error: %w", err))
		}
		defer gr.Close()
		reader = gr
	}
	m, err := ParseARPA(reader, opts...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return m, nil
}

// ParseARPA reads the ARPA back-off format.
func ParseARPA(r io.Reader, opts ...Option) (*Model, error) {
	m := &Model{lowercase: true}
	for _, opt := range opts {
		opt(m)
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	section := 0 // 0 = header/\data\, n = inside \n-grams:
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == `\data\`:
			section = 0
			continue
		case line == `\end\`:
			return m.finish()
		case strings.HasPrefix(line, `\`) && strings.HasSuffix(line, "-grams:"):
			n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(line, `\`), "-grams:"))
			if err != nil || n < 1 {
				return nil, malformed(lineNo, "bad section header %q", line)
			}
			section = n
			for len(m.grams) < n {
				m.grams = append(m.grams, map[string]entry{})
			}
			continue
		}
		if section == 0 {
			// "ngram N=count" lines only size the model.
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != section+1 && len(fields) != section+2 {
			return nil, malformed(lineNo, "expected %d words", section)
		}
		prob, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, malformed(lineNo, "bad probability %q", fields[0])
		}
		e := entry{log10Prob: prob}
		if len(fields) == section+2 {
			if e.log10Backoff, err = strconv.ParseFloat(fields[section+1], 64); err != nil {
				return nil, malformed(lineNo, "bad back-off %q", fields[section+1])
			}
		}
		m.grams[section-1][m.key(fields[1:section+1])] = e
	}
	if err := scanner.Err(); err != nil {
		return nil, core.NewResourceError("language model", err)
	}
	return m.finish()
}

func (m *Model) finish() (*Model, error) {
	if len(m.grams) == 0 || len(m.grams[0]) == 0 {
		return nil, core.NewResourceError("language model", fmt.Errorf("no unigrams"))
	}
	m.order = len(m.grams)
	return m, nil
}

func malformed(line int, format string, args ...interface{}) error {
	return core.NewResourceError("language model", fmt.Errorf("arpa line %d: "+format, append([]interface{}{line}, args...)...))
}

func (m *Model) key(words []string) string {
	if !m.lowercase {
		return strings.Join(words, " ")
	}
	lowered := make([]string, len(words))
	for i, w := range words {
		if w == SentenceStart || w == SentenceEnd || w == Unknown {
			lowered[i] = w
		} else {
			lowered[i] = strings.ToLower(w)
		}
	}
	return strings.Join(lowered, " ")
}

// Order returns the highest n-gram order in the model.
func (m *Model) Order() int { return m.order }

// Log10Prob returns log10 P(word | history) with Katz back-off.
func (m *Model) Log10Prob(history []string, word string) float64 {
	if len(history) > m.order-1 {
		history = history[len(history)-(m.order-1):]
	}
	backoff := 0.0
	for {
		gram := append(append([]string(nil), history...), word)
		if e, ok := m.grams[len(gram)-1][m.key(gram)]; ok {
			return backoff + e.log10Prob
		}
		if len(history) == 0 {
			break
		}
		if e, ok := m.grams[len(history)-1][m.key(history)]; ok {
			backoff += e.log10Backoff
		}
		history = history[1:]
	}
	if e, ok := m.grams[0][Unknown]; ok {
		return backoff + e.log10Prob
	}
	return backoff + unknownLog10
}

// LogProbAt returns the natural-log probability of the word at index given everything before it.
// index == NumWords scores the end of the sentence.
func (m *Model) LogProbAt(t *text.AttackedText, index int) (float64, error) {
	n := t.NumWords()
	if index < 0 || index > n {
		return 0, fmt.Errorf("%w: word index %d out of range for %d words", core.ErrContractViolation, index, n)
	}
	words := t.Words()
	history := append([]string{SentenceStart}, words[:index]...)
	word := SentenceEnd
	if index < n {
		word = words[index]
	}
	return m.Log10Prob(history, word) * math.Ln10, nil
}

// LogProbsAt scores the word at index in each text.
func (m *Model) LogProbsAt(ctx context.Context, texts []*text.AttackedText, index int) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]float64, len(texts))
	for i, t := range texts {
		lp, err := m.LogProbAt(t, index)
		if err != nil {
			return nil, err
		}
		out[i] = lp
	}
	return out, nil
}
