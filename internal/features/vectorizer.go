package features

import (
	"math"
	"sort"
)

// VectorizerState holds a fitted tf-idf vocabulary: term to column index,
// and the smoothed inverse document frequency per column. It is fitted
// once during training and frozen inside the model artifact.
type VectorizerState struct {
	Vocab    map[string]int `json:"vocab"`
	IDF      []float64      `json:"idf"`
	NgramMax int            `json:"ngram_max"`
}

// FitVectorizer learns a vocabulary of at most vocabSize terms from the
// documents, keeping the terms with the highest document frequency. Column
// order is alphabetical so the fitted state is independent of document
// order.
func FitVectorizer(docs []string, vocabSize, ngramMax int) VectorizerState {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, t := range Ngrams(Tokenize(doc), ngramMax) {
			if !seen[t] {
				seen[t] = true
				df[t]++
			}
		}
	}

	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	// Most frequent first; ties alphabetical so truncation is stable.
	sort.Slice(terms, func(i, j int) bool {
		if df[terms[i]] != df[terms[j]] {
			return df[terms[i]] > df[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if vocabSize > 0 && len(terms) > vocabSize {
		terms = terms[:vocabSize]
	}
	sort.Strings(terms)

	n := len(docs)
	st := VectorizerState{
		Vocab:    make(map[string]int, len(terms)),
		IDF:      make([]float64, len(terms)),
		NgramMax: ngramMax,
	}
	for i, t := range terms {
		st.Vocab[t] = i
		st.IDF[i] = math.Log(float64(1+n)/float64(1+df[t])) + 1
	}
	return st
}

// Size returns the number of vocabulary columns.
func (st VectorizerState) Size() int {
	return len(st.IDF)
}

// TermWeights computes the L2-normalized tf-idf weights for one document.
// An empty, whitespace-only, or fully out-of-vocabulary document yields an
// empty map, never an error.
func (st VectorizerState) TermWeights(doc string) map[int]float64 {
	counts := make(map[int]int)
	for _, t := range Ngrams(Tokenize(doc), st.NgramMax) {
		if col, ok := st.Vocab[t]; ok {
			counts[col]++
		}
	}
	if len(counts) == 0 {
		return map[int]float64{}
	}

	weights := make(map[int]float64, len(counts))
	var norm float64
	for col, c := range counts {
		w := float64(c) * st.IDF[col]
		weights[col] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for col := range weights {
		weights[col] /= norm
	}
	return weights
}
