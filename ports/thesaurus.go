package ports

// Thesaurus supplies synonyms for a word. Unknown words yield nil.
type Thesaurus interface {
	Synonyms(word string) []string
}

// StopwordSource supplies a stopword list.
type StopwordSource interface {
	Stopwords() []string
}
