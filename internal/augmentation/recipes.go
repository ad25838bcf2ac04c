package augmentation

import (
	"fmt"
	"sort"
	"strings"

	"textattack/domain/core"
	"textattack/internal/constraints"
	"textattack/internal/transformations"
	"textattack/ports"
)

// Resources are the shared, read-only collaborators recipes draw on.
type Resources struct {
	Thesaurus ports.Thesaurus
	Embedding ports.WordEmbedding
	// Stopwords overrides the default English list when non-nil.
	Stopwords []string
	// Extra constraints are appended to every recipe's defaults, e.g. a language-model constraint.
	Extra []ports.NamedConstraint
}

// RecipeParams configures a recipe built by name.
type RecipeParams struct {
	// Alpha is the fraction of words EDA perturbs per output.
	Alpha float64
	// NumAugmentations caps the outputs per input.
	NumAugmentations int
	// NumWordsToSwap is the budget of the single-transformation recipes. Zero means 1.
	NumWordsToSwap int
}

// Recipe names accepted by NewRecipe.
const (
	RecipeEDA              = "eda"
	RecipeWordNet          = "wordnet"
	RecipeDeletion         = "deletion"
	RecipeSwap             = "swap"
	RecipeSynonymInsertion = "synonym_insertion"
	RecipeEmbedding        = "embedding"
	RecipeCharSwap         = "charswap"
)

// EmbeddingMinCosSim is the similarity floor of the embedding recipe.
const EmbeddingMinCosSim = 0.8

// EmbeddingMaxCandidates is the neighbourhood size of the embedding recipe.
const EmbeddingMaxCandidates = 50

// RecipeNames lists every recipe NewRecipe understands, sorted.
func RecipeNames() []string {
	names := []string{RecipeEDA, RecipeWordNet, RecipeDeletion, RecipeSwap, RecipeSynonymInsertion, RecipeEmbedding, RecipeCharSwap}
	sort.Strings(names)
	return names
}

// NewRecipe builds the named recipe.
func NewRecipe(name string, params RecipeParams, res Resources, opts ...Option) (ports.Augmenter, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == RecipeEDA {
		return NewEasyDataAugmenter(params.Alpha, params.NumAugmentations, res, opts...)
	}

	var (
		a   *Augmenter
		err error
	)
	switch key {
	case RecipeWordNet:
		a, err = NewWordNetAugmenter(res, opts...)
	case RecipeDeletion:
		a, err = NewDeletionAugmenter(res, opts...)
	case RecipeSwap:
		a, err = NewSwapAugmenter(res, opts...)
	case RecipeSynonymInsertion:
		a, err = NewSynonymInsertionAugmenter(res, opts...)
	case RecipeEmbedding:
		a, err = NewEmbeddingAugmenter(res, opts...)
	case RecipeCharSwap:
		a, err = NewCharSwapAugmenter(res, opts...)
	default:
		return nil, fmt.Errorf("%w: %q (known: %s)", core.ErrUnknownRecipe, name, strings.Join(RecipeNames(), ", "))
	}
	if err != nil {
		return nil, err
	}

	if params.NumAugmentations < 0 || params.NumWordsToSwap < 0 {
		return nil, fmt.Errorf("%w: negative recipe parameter", core.ErrInvalidRecipeParams)
	}
	if params.NumAugmentations > 0 {
		a.TransformationsPerExample = params.NumAugmentations
	}
	if params.NumWordsToSwap > 0 {
		a.NumWordsToSwap = params.NumWordsToSwap
	}
	return a, nil
}

// defaultConstraints forbids touching a position twice or touching stopwords.
func defaultConstraints(res Resources) []ports.NamedConstraint {
	list := []ports.NamedConstraint{
		constraints.NewRepeatModification(),
		constraints.NewStopwordModification(res.Stopwords),
	}
	return append(list, res.Extra...)
}

// NewWordNetAugmenter replaces words with thesaurus synonyms.
func NewWordNetAugmenter(res Resources, opts ...Option) (*Augmenter, error) {
	t, err := transformations.NewWordSwapThesaurus(res.Thesaurus)
	if err != nil {
		return nil, err
	}
	return NewAugmenter(t, defaultConstraints(res), opts...)
}

// NewDeletionAugmenter deletes words.
func NewDeletionAugmenter(res Resources, opts ...Option) (*Augmenter, error) {
	return NewAugmenter(transformations.NewWordDeletion(), defaultConstraints(res), opts...)
}

// NewSwapAugmenter swaps word order.
func NewSwapAugmenter(res Resources, opts ...Option) (*Augmenter, error) {
	return NewAugmenter(transformations.NewRandomSwap(), defaultConstraints(res), opts...)
}

// NewSynonymInsertionAugmenter inserts synonyms of words already in the text.
func NewSynonymInsertionAugmenter(res Resources, opts ...Option) (*Augmenter, error) {
	t, err := transformations.NewRandomSynonymInsertion(res.Thesaurus)
	if err != nil {
		return nil, err
	}
	return NewAugmenter(t, defaultConstraints(res), opts...)
}

// NewEmbeddingAugmenter swaps words for close embedding neighbours.
func NewEmbeddingAugmenter(res Resources, opts ...Option) (*Augmenter, error) {
	t, err := transformations.NewWordSwapEmbedding(res.Embedding, EmbeddingMaxCandidates)
	if err != nil {
		return nil, err
	}
	distance, err := constraints.NewWordEmbeddingDistance(res.Embedding, EmbeddingMinCosSim)
	if err != nil {
		return nil, err
	}
	return NewAugmenter(t, append(defaultConstraints(res), distance), opts...)
}

// NewCharSwapAugmenter applies one of four character-level typos per word.
func NewCharSwapAugmenter(res Resources, opts ...Option) (*Augmenter, error) {
	t, err := transformations.NewComposite(
		transformations.NewNeighboringCharacterSwap(),
		transformations.NewRandomCharacterSubstitution(),
		transformations.NewRandomCharacterDeletion(),
		transformations.NewRandomCharacterInsertion(),
	)
	if err != nil {
		return nil, err
	}
	return NewAugmenter(t, defaultConstraints(res), opts...)
}
