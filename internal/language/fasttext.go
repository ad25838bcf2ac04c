package language

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"textattack/adapters/embedding"
	"textattack/domain/core"
	"textattack/domain/text"
	"textattack/internal/transformations"
	"textattack/ports"
)

var (
	resourceDirMu sync.RWMutex
	resourceDir   = defaultResourceDir()
)

func defaultResourceDir() string {
	if dir := os.Getenv("LANGUAGE_RESOURCE_DIR"); dir != "" {
		return dir
	}
	return "resources"
}

// SetResourceDir sets the directory built-in providers read embeddings from.
// It affects providers constructed afterwards.
func SetResourceDir(dir string) {
	resourceDirMu.Lock()
	defer resourceDirMu.Unlock()
	resourceDir = dir
}

// ResourceDir returns the directory built-in providers read embeddings from.
func ResourceDir() string {
	resourceDirMu.RLock()
	defer resourceDirMu.RUnlock()
	return resourceDir
}

// FastText serves fastText common-crawl vectors (cc.<code>.300.vec) for one language.
// The embedding is loaded on first use; a failed load is retried on the next call.
type FastText struct {
	name      string
	code      string
	dir       string
	stopwords []string

	mu   sync.Mutex
	swap *transformations.WordSwapEmbedding
}

// NewFastText describes a provider; nothing is read until WordSwapEmbedding is called.
func NewFastText(name, code, dir string, stopwords []string) *FastText {
	return &FastText{name: name, code: code, dir: dir, stopwords: stopwords}
}

// EnglishFactory builds the English provider over ResourceDir().
func EnglishFactory(context.Context) (Provider, error) {
	return NewFastText("English", "en", ResourceDir(), text.EnglishStopwords()), nil
}

// GermanFactory builds the German provider over ResourceDir().
func GermanFactory(context.Context) (Provider, error) {
	return NewFastText("German", "de", ResourceDir(), text.GermanStopwords()), nil
}

func (p *FastText) Name() string { return p.name }

func (p *FastText) Stopwords() []string { return append([]string(nil), p.stopwords...) }

// EmbeddingFile returns the base file name the provider looks for.
func (p *FastText) EmbeddingFile() string { return fmt.Sprintf("cc.%s.300.vec", p.code) }

// WordSwapEmbedding returns an embedding word swap backed by this language's vectors.
func (p *FastText) WordSwapEmbedding(ctx context.Context) (ports.Transformation, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.swap != nil {
		return p.swap, nil
	}

	path, err := p.locate()
	if err != nil {
		return nil, err
	}
	idx, err := embedding.LoadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	swap, err := transformations.NewWordSwapEmbedding(idx, transformations.DefaultMaxCandidates)
	if err != nil {
		return nil, err
	}
	p.swap = swap
	return swap, nil
}

// locate picks the first of <file>, <file>.gz, <file>.xz present in the resource directory.
func (p *FastText) locate() (string, error) {
	base := filepath.Join(p.dir, p.EmbeddingFile())
	for _, candidate := range []string{base, base + ".gz", base + ".xz"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", core.NewResourceError(p.name+" word embedding", err)
		}
	}
	return "", core.NewResourceError(p.name+" word embedding",
		fmt.Errorf("%s(.gz|.xz) not found in %s: %w", p.EmbeddingFile(), p.dir, os.ErrNotExist))
}
