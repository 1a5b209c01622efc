package textindex

import "math"

// Index is a TF-IDF index over a corpus that only grows. It is built once per
// scoring session and is safe for concurrent reads once no more documents are
// added.
type Index struct {
	// docs holds document text in insertion order; positions line up with the
	// caller's event index.
	docs []string
	// tokens caches each position's token sequence.
	tokens [][]string
	// tf maps the exact document string to its length-normalized term
	// frequencies. Identical strings share one entry.
	tf map[string]map[string]float64
	df map[string]int
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{
		tf: make(map[string]map[string]float64),
		df: make(map[string]int),
	}
}

// AddDocument tokenizes text, stores its normalized term frequencies and
// bumps the document frequency of each distinct term once. It returns the
// document's position.
func (x *Index) AddDocument(text string) int {
	terms := Tokenize(text)

	counts := make(map[string]int, len(terms))
	for _, term := range terms {
		counts[term]++
	}

	freqs := make(map[string]float64, len(counts))
	for term, n := range counts {
		freqs[term] = float64(n) / float64(len(terms))
	}
	for term := range counts {
		x.df[term]++
	}

	x.tf[text] = freqs
	x.docs = append(x.docs, text)
	x.tokens = append(x.tokens, terms)
	return len(x.docs) - 1
}

// Len returns the number of documents added.
func (x *Index) Len() int {
	return len(x.docs)
}

// Document returns the text stored at position i.
func (x *Index) Document(i int) (string, bool) {
	if i < 0 || i >= len(x.docs) {
		return "", false
	}
	return x.docs[i], true
}

// TermFrequency returns term's normalized frequency in document, 0 if absent.
func (x *Index) TermFrequency(term, document string) float64 {
	return x.tf[document][term]
}

// DocumentFrequency returns how many documents contain term.
func (x *Index) DocumentFrequency(term string) int {
	return x.df[term]
}

// IDF returns ln(N / (1 + df(term))). It is negative when every document
// contains the term and is not floored.
func (x *Index) IDF(term string) float64 {
	return math.Log(float64(len(x.docs)) / float64(1+x.df[term]))
}

// TfIdf returns tf(term, document) * idf(term).
func (x *Index) TfIdf(term, document string) float64 {
	return x.TermFrequency(term, document) * x.IDF(term)
}
