package textindex

import (
	"fmt"
	"math"
)

// Vocabulary is the ordered set of distinct corpus terms.
type Vocabulary struct {
	terms []string
	index map[string]int
}

// NewVocabulary collects terms in first-seen order across the index's
// documents.
func NewVocabulary(x *Index) *Vocabulary {
	v := &Vocabulary{index: make(map[string]int)}
	for _, terms := range x.tokens {
		for _, term := range terms {
			if _, ok := v.index[term]; ok {
				continue
			}
			v.index[term] = len(v.terms)
			v.terms = append(v.terms, term)
		}
	}
	return v
}

// Len returns the vocabulary size.
func (v *Vocabulary) Len() int { return len(v.terms) }

// Terms returns the terms in vector order.
func (v *Vocabulary) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// Position returns the vector slot for term.
func (v *Vocabulary) Position(term string) (int, bool) {
	i, ok := v.index[term]
	return i, ok
}

// BuildVector projects the document at position onto the vocabulary, each
// slot holding that term's TF-IDF weight.
//
// The term at vocabulary position 0 is never written: the lookup treats slot
// 0 as missing. Fixing it would shift every similarity, so it stays.
func BuildVector(position int, v *Vocabulary, x *Index) ([]float64, error) {
	doc, ok := x.Document(position)
	if !ok {
		return nil, fmt.Errorf("%w: position %d", ErrUnknownDocument, position)
	}
	vec := make([]float64, v.Len())
	for _, term := range x.tokens[position] {
		slot, ok := v.index[term]
		if !ok || slot == 0 {
			continue
		}
		vec[slot] = x.TfIdf(term, doc)
	}
	return vec, nil
}

// CosineSimilarity returns dot(a,b) / (|a||b|). A zero vector on either side
// yields NaN, as do vectors of different lengths; callers treat NaN as no
// signal.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return math.NaN()
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
